// Package systems holds the agent population and the phases of a round.
package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/traits"
)

// AgentState is a value snapshot of one agent.
type AgentState struct {
	ID       uint64          `json:"id"`
	Strategy traits.Strategy `json:"strategy"`
	Energy   int             `json:"energy"`
	Status   traits.Status   `json:"status"`
}

// Population is the set of living agents, stored as entities in an ark world.
// It owns the identity counter; identities start at 1 and are never reused.
type Population struct {
	world *ecs.World

	agentMapper *ecs.Map3[components.Agent, components.Energy, components.Activity]
	agentFilter *ecs.Filter3[components.Agent, components.Energy, components.Activity]

	agentMap    *ecs.Map1[components.Agent]
	energyMap   *ecs.Map1[components.Energy]
	activityMap *ecs.Map1[components.Activity]

	nextID uint64
	count  int
	hawks  int
}

// NewPopulation creates an empty population.
func NewPopulation() *Population {
	world := ecs.NewWorld()
	return &Population{
		world:       world,
		agentMapper: ecs.NewMap3[components.Agent, components.Energy, components.Activity](world),
		agentFilter: ecs.NewFilter3[components.Agent, components.Energy, components.Activity](world),
		agentMap:    ecs.NewMap1[components.Agent](world),
		energyMap:   ecs.NewMap1[components.Energy](world),
		activityMap: ecs.NewMap1[components.Activity](world),
		nextID:      1,
	}
}

// Seed replaces the population with doves Doves followed by hawks Hawks,
// all Asleep with startingEnergy. The identity counter keeps counting.
func (p *Population) Seed(doves, hawks, startingEnergy int) {
	for _, e := range p.Entities() {
		p.Remove(e)
	}
	for i := 0; i < doves; i++ {
		p.Spawn(traits.Dove, startingEnergy)
	}
	for i := 0; i < hawks; i++ {
		p.Spawn(traits.Hawk, startingEnergy)
	}
}

// Spawn creates an Asleep agent with the next identity.
func (p *Population) Spawn(s traits.Strategy, energy int) ecs.Entity {
	agent := components.Agent{ID: p.nextID, Strategy: s}
	p.nextID++
	en := components.Energy{Value: energy}
	act := components.Activity{Status: traits.Asleep}

	e := p.agentMapper.NewEntity(&agent, &en, &act)
	p.count++
	if s == traits.Hawk {
		p.hawks++
	}
	return e
}

// Remove deletes an agent. Must not be called during a query.
func (p *Population) Remove(e ecs.Entity) {
	if !p.world.Alive(e) {
		return
	}
	if p.agentMap.Get(e).Strategy == traits.Hawk {
		p.hawks--
	}
	p.count--
	p.world.RemoveEntity(e)
}

// Entities returns a snapshot of every living agent in world order.
func (p *Population) Entities() []ecs.Entity {
	out := make([]ecs.Entity, 0, p.count)
	query := p.agentFilter.Query()
	for query.Next() {
		out = append(out, query.Entity())
	}
	return out
}

// Len returns the number of living agents.
func (p *Population) Len() int {
	return p.count
}

// Counts returns living hawks and doves.
func (p *Population) Counts() (hawks, doves int) {
	return p.hawks, p.count - p.hawks
}

// Alive reports whether e is a living agent.
func (p *Population) Alive(e ecs.Entity) bool {
	return p.world.Alive(e)
}

// Agent returns the identity component. The pointer is invalidated by the
// next Spawn or Remove.
func (p *Population) Agent(e ecs.Entity) *components.Agent {
	return p.agentMap.Get(e)
}

// Energy returns the energy component. The pointer is invalidated by the
// next Spawn or Remove.
func (p *Population) Energy(e ecs.Entity) *components.Energy {
	return p.energyMap.Get(e)
}

// Activity returns the activity component. The pointer is invalidated by
// the next Spawn or Remove.
func (p *Population) Activity(e ecs.Entity) *components.Activity {
	return p.activityMap.Get(e)
}

// SetAllStatus sets every agent's status.
func (p *Population) SetAllStatus(status traits.Status) {
	query := p.agentFilter.Query()
	for query.Next() {
		_, _, act := query.Get()
		act.Status = status
	}
}

// AddEnergyAll adds delta to every agent's energy.
func (p *Population) AddEnergyAll(delta int) {
	query := p.agentFilter.Query()
	for query.Next() {
		_, en, _ := query.Get()
		en.Value += delta
	}
}

// States returns a value snapshot of every agent, sorted by identity.
func (p *Population) States() []AgentState {
	out := make([]AgentState, 0, p.count)
	query := p.agentFilter.Query()
	for query.Next() {
		agent, en, act := query.Get()
		out = append(out, AgentState{
			ID:       agent.ID,
			Strategy: agent.Strategy,
			Energy:   en.Value,
			Status:   act.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EnergiesByStrategy returns every agent's energy split by strategy.
func (p *Population) EnergiesByStrategy() (hawks, doves []float64) {
	hawks = make([]float64, 0, p.hawks)
	doves = make([]float64, 0, p.count-p.hawks)
	query := p.agentFilter.Query()
	for query.Next() {
		agent, en, _ := query.Get()
		if agent.Strategy == traits.Hawk {
			hawks = append(hawks, float64(en.Value))
		} else {
			doves = append(doves, float64(en.Value))
		}
	}
	return hawks, doves
}

// TotalEnergy returns the summed energy of all agents.
func (p *Population) TotalEnergy() int {
	var total int
	query := p.agentFilter.Query()
	for query.Next() {
		_, en, _ := query.Get()
		total += en.Value
	}
	return total
}

// NextID returns the identity the next spawned agent will receive.
func (p *Population) NextID() uint64 {
	return p.nextID
}
