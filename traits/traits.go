// Package traits defines the fixed behavioural strategies and lifecycle flags of agents.
package traits

import (
	"fmt"
	"strings"
)

// Strategy is one of the two behavioural types. The numeric value doubles as
// the row/column index into the payoff matrix.
type Strategy uint8

const (
	Hawk Strategy = iota // Always escalates a contest
	Dove                 // Always shares, never fights
)

// NumStrategies is the size of each payoff matrix dimension.
const NumStrategies = 2

// Strategies lists all strategies in matrix order.
var Strategies = [NumStrategies]Strategy{Hawk, Dove}

// String returns the lowercase name.
func (s Strategy) String() string {
	switch s {
	case Hawk:
		return "hawk"
	case Dove:
		return "dove"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Index returns the matrix index of the strategy.
func (s Strategy) Index() int {
	return int(s)
}

// Other returns the opposing strategy.
func (s Strategy) Other() Strategy {
	if s == Hawk {
		return Dove
	}
	return Hawk
}

// Valid reports whether s is Hawk or Dove.
func (s Strategy) Valid() bool {
	return s == Hawk || s == Dove
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid strategy %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStrategy parses a strategy name (case-insensitive).
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hawk":
		return Hawk, nil
	case "dove":
		return Dove, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
}

// Status is an agent's activity flag. It is bookkeeping only: no phase
// branches on it.
type Status uint8

const (
	Asleep Status = iota
	Active
)

// String returns the lowercase name.
func (s Status) String() string {
	switch s {
	case Asleep:
		return "asleep"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
