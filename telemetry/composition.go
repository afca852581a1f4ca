package telemetry

import "log/slog"

// Composition is the hawk/dove split of a population at one instant.
type Composition struct {
	Hawks int `json:"hawks"`
	Doves int `json:"doves"`
}

// Total returns hawks plus doves.
func (c Composition) Total() int {
	return c.Hawks + c.Doves
}

// Empty reports whether nobody is alive.
func (c Composition) Empty() bool {
	return c.Total() == 0
}

// HawkFraction returns the hawk share in [0, 1]. ok is false when the
// composition is empty.
func (c Composition) HawkFraction() (frac float64, ok bool) {
	if c.Empty() {
		return 0, false
	}
	return float64(c.Hawks) / float64(c.Total()), true
}

// DoveFraction returns the dove share in [0, 1]. ok is false when the
// composition is empty.
func (c Composition) DoveFraction() (frac float64, ok bool) {
	if c.Empty() {
		return 0, false
	}
	return float64(c.Doves) / float64(c.Total()), true
}

// HawkPercent returns the hawk share in [0, 100].
func (c Composition) HawkPercent() (pct float64, ok bool) {
	f, ok := c.HawkFraction()
	return f * 100, ok
}

// DovePercent returns the dove share in [0, 100].
func (c Composition) DovePercent() (pct float64, ok bool) {
	f, ok := c.DoveFraction()
	return f * 100, ok
}

// LogValue implements slog.LogValuer.
func (c Composition) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("hawks", c.Hawks),
		slog.Int("doves", c.Doves),
	}
	if pct, ok := c.HawkPercent(); ok {
		attrs = append(attrs, slog.Float64("hawk_pct", pct))
	}
	if pct, ok := c.DovePercent(); ok {
		attrs = append(attrs, slog.Float64("dove_pct", pct))
	}
	return slog.GroupValue(attrs...)
}
