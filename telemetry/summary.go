package telemetry

import (
	"log/slog"
	"time"
)

// Summary holds run-level totals.
type Summary struct {
	Seed            int64         `json:"seed"`
	RoundsCompleted int           `json:"rounds_completed"`
	Termination     string        `json:"termination"`
	TotalDeaths     int           `json:"total_deaths"`
	TotalBirths     int           `json:"total_births"`
	Initial         Composition   `json:"initial"`
	Final           Composition   `json:"final"`
	PeakPopulation  int           `json:"peak_population"`
	Lifespans       Lifespans     `json:"lifespans"`
	WallTime        time.Duration `json:"wall_time_ns"`
}

// Summarize folds a run history into totals. initial is the composition
// before the first round; it is also the final composition when history is
// empty.
func Summarize(history []RoundStats, initial Composition) Summary {
	s := Summary{
		RoundsCompleted: len(history),
		Initial:         initial,
		Final:           initial,
		PeakPopulation:  initial.Total(),
	}
	for _, r := range history {
		s.TotalDeaths += r.Deaths()
		s.TotalBirths += r.Births()
		if p := r.Population(); p > s.PeakPopulation {
			s.PeakPopulation = p
		}
	}
	if n := len(history); n > 0 {
		s.Final = history[n-1].Composition()
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("seed", s.Seed),
		slog.Int("rounds", s.RoundsCompleted),
		slog.String("termination", s.Termination),
		slog.Int("total_deaths", s.TotalDeaths),
		slog.Int("total_births", s.TotalBirths),
		slog.Int("population", s.Final.Total()),
		slog.Int("peak_population", s.PeakPopulation),
		slog.Duration("wall_time", s.WallTime),
	}
	if pct, ok := s.Final.HawkPercent(); ok {
		attrs = append(attrs, slog.Float64("hawk_pct", pct))
	}
	if pct, ok := s.Final.DovePercent(); ok {
		attrs = append(attrs, slog.Float64("dove_pct", pct))
	}
	return slog.GroupValue(attrs...)
}
