package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/hawkdove/telemetry"
)

// flushTelemetry fans a finished round out to the callback, log, CSV sinks
// and the bookmark detector.
func (s *Simulation) flushTelemetry(stats telemetry.RoundStats) {
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	level := slog.LevelDebug
	if s.logStats {
		level = slog.LevelInfo
	}
	stats.LogStats(s.logger, level)

	if err := s.outputManager.WriteRound(stats); err != nil {
		s.logger.Error("failed to write round", "error", err)
	}

	// Perf is averaged over a window; emit once per window
	if window := s.cfg.Telemetry.PerfWindow; window > 0 && stats.Round%window == 0 {
		perfStats := s.perfCollector.Stats()
		s.logger.Log(context.Background(), level, "perf", "stats", perfStats)
		if err := s.outputManager.WritePerf(perfStats, stats.Round); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		s.bookmarks = append(s.bookmarks, bm)
		if s.logStats {
			bm.LogBookmark(s.logger)
		}
		if err := s.outputManager.WriteBookmark(bm); err != nil {
			s.logger.Error("failed to write bookmark", "error", err)
		}
	}
}
