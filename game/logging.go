package game

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pthm-cable/hawkdove/systems"
)

// LevelTrace sits below debug and carries one line per matchup.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps "info", "debug", "trace", "warn" or "error"
// (case-insensitive) to a level. Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a leveled logger writing JSON (format "json" or empty)
// or text (format "text") to w.
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}

	switch strings.ToLower(format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or text)", format)
	}
}

// MatchupTracer returns an OnMatchup hook that logs every pairing at trace
// level, or nil when the logger would drop them anyway.
func MatchupTracer(logger *slog.Logger) func(systems.Matchup) {
	if logger == nil || !logger.Enabled(context.Background(), LevelTrace) {
		return nil
	}
	return func(m systems.Matchup) {
		logger.Log(context.Background(), LevelTrace, "matchup",
			"round", m.Round,
			"food", m.Food,
			"first", m.First,
			"first_strategy", m.FirstStrategy.String(),
			"first_delta", m.FirstDelta,
			"second", m.Second,
			"second_strategy", m.SecondStrategy.String(),
			"second_delta", m.SecondDelta,
		)
	}
}
