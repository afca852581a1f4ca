// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/hawkdove/traits"

// Agent bundles identity and strategy. Both are fixed at creation.
type Agent struct {
	ID       uint64
	Strategy traits.Strategy
}

// Energy is the agent's sole fitness resource. It may be negative between
// upkeep and cull within a round.
type Energy struct {
	Value int
}

// Activity tracks the awake/asleep lifecycle flag.
type Activity struct {
	Status traits.Status
}
