package game

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/pthm-cable/hawkdove/systems"
	"github.com/pthm-cable/hawkdove/traits"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"TRACE", LevelTrace},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", "json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	logger, err = NewLogger("info", "text", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}

	if _, err := NewLogger("info", "xml", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestMatchupTracer(t *testing.T) {
	var buf bytes.Buffer
	info, _ := NewLogger("info", "text", &buf)
	if MatchupTracer(info) != nil {
		t.Error("tracer should be nil when trace is disabled")
	}

	trace, _ := NewLogger("trace", "text", &buf)
	hook := MatchupTracer(trace)
	if hook == nil {
		t.Fatal("tracer should be set at trace level")
	}
	hook(systems.Matchup{Round: 1, Food: 40, First: 1, Second: 2,
		FirstStrategy: traits.Hawk, SecondStrategy: traits.Dove, FirstDelta: 40})

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") || !strings.Contains(out, "first_strategy=hawk") {
		t.Errorf("trace output = %q", out)
	}
}
