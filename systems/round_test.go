package systems

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/payoff"
	"github.com/pthm-cable/hawkdove/telemetry"
	"github.com/pthm-cable/hawkdove/traits"
)

// fixedParams returns rules with a constant food draw and no cull or breed.
func fixedParams(food, fightCost, loss int) RoundParams {
	return RoundParams{
		MinFood:       food,
		MaxFood:       food,
		MaxAppearance: 1000,
		FightCost:     fightCost,
		LossPerRound:  loss,
		Living:        -1 << 30,
		Reproduction:  1 << 30,
	}
}

func TestContestMatchesPayoffTensor(t *testing.T) {
	for _, food := range []int{0, 1, 39, 40, 70} {
		for _, fightCost := range []int{0, 10, 60} {
			m := payoff.New(food, fightCost)
			for _, a := range traits.Strategies {
				for _, b := range traits.Strategies {
					da, db := Contest(a, b, food, fightCost)
					if cell := m.Cell(a, b); da != cell[0] || db != cell[1] {
						t.Errorf("Contest(%v, %v, %d, %d) = (%d, %d), tensor has %v",
							a, b, food, fightCost, da, db, cell)
					}
				}
			}
		}
	}
}

func TestPairCount(t *testing.T) {
	tests := []struct {
		n, maxAppearance, want int
	}{
		{0, 10, 0},
		{1, 10, 0},
		{2, 10, 1},
		{7, 10, 3},
		{10, 2, 3}, // pairs 0..2 processed, then 3 > 2 stops
		{10, 4, 5}, // exactly enough agents
		{10, 0, 1}, // the first pair is always processed
		{2000, 1000, 1000},
	}
	for _, tt := range tests {
		if got := PairCount(tt.n, tt.maxAppearance); got != tt.want {
			t.Errorf("PairCount(%d, %d) = %d, want %d", tt.n, tt.maxAppearance, got, tt.want)
		}
	}
}

func TestConcreteScenarioPerAgent(t *testing.T) {
	cfg := config.Default()
	cfg.Population.StartingDoves = 10
	cfg.Population.StartingHawks = 10
	cfg.Food.MinPerRound = 40
	cfg.Food.MaxPerRound = 40
	cfg.Energy.FightCost = 60
	cfg.Energy.LossPerRound = 4

	pop := NewPopulation()
	pop.Seed(10, 10, 100)

	engine := NewRoundEngine(ParamsFromConfig(cfg), rand.New(rand.NewSource(7)), nil, nil)
	var matchups []Matchup
	engine.OnMatchup = func(m Matchup) { matchups = append(matchups, m) }

	stats := engine.Step(pop)

	if len(matchups) != 10 || stats.Pairs != 10 || stats.Unpaired != 0 {
		t.Fatalf("got %d matchups, stats pairs=%d unpaired=%d; want 10/10/0", len(matchups), stats.Pairs, stats.Unpaired)
	}

	want := make(map[uint64]int)
	for _, m := range matchups {
		if m.Food != 40 {
			t.Errorf("food = %d, want 40", m.Food)
		}
		if m.First == m.Second {
			t.Errorf("agent %d paired with itself", m.First)
		}
		for _, id := range []uint64{m.First, m.Second} {
			if _, dup := want[id]; dup {
				t.Errorf("agent %d paired twice", id)
			}
		}
		switch {
		case m.FirstStrategy == traits.Hawk && m.SecondStrategy == traits.Hawk:
			want[m.First], want[m.Second] = 56, 56
		case m.FirstStrategy == traits.Hawk:
			want[m.First], want[m.Second] = 136, 96
		case m.SecondStrategy == traits.Hawk:
			want[m.First], want[m.Second] = 96, 136
		default:
			want[m.First], want[m.Second] = 116, 116
		}
	}

	if len(want) != 20 {
		t.Fatalf("%d distinct agents competed, want all 20", len(want))
	}

	states := pop.States()
	if len(states) != 20 {
		t.Fatalf("population = %d, want 20 (no cull, no breed)", len(states))
	}
	for _, s := range states {
		if s.Energy != want[s.ID] {
			t.Errorf("agent %d (%v) energy = %d, want %d", s.ID, s.Strategy, s.Energy, want[s.ID])
		}
		if s.Status != traits.Asleep {
			t.Errorf("agent %d left %v, want asleep", s.ID, s.Status)
		}
	}
	if stats.Deaths() != 0 || stats.Births() != 0 {
		t.Errorf("unexpected deaths/births: %+v", stats)
	}
	if stats.Hawks != 10 || stats.Doves != 10 {
		t.Errorf("composition = %d/%d, want 10/10", stats.Hawks, stats.Doves)
	}
}

func TestRoundConservesEnergyWithoutCullOrBreed(t *testing.T) {
	// Even food and free fights: every pair adds exactly food.
	params := fixedParams(30, 0, 3)

	pop := NewPopulation()
	pop.Seed(7, 8, 50)
	engine := NewRoundEngine(params, rand.New(rand.NewSource(1)), nil, nil)

	for round := 1; round <= 5; round++ {
		before := pop.TotalEnergy()
		n := pop.Len()
		stats := engine.Step(pop)

		want := before + stats.Pairs*30 - n*3
		if got := pop.TotalEnergy(); got != want {
			t.Errorf("round %d: total energy = %d, want %d", round, got, want)
		}
		if stats.TotalEnergy != want {
			t.Errorf("round %d: stats total = %d, want %d", round, stats.TotalEnergy, want)
		}
		if stats.Pairs != 7 || stats.Unpaired != 1 {
			t.Errorf("round %d: pairs=%d unpaired=%d, want 7/1", round, stats.Pairs, stats.Unpaired)
		}
	}
}

func TestPairingCutoffLeavesTailUnpaired(t *testing.T) {
	params := fixedParams(20, 0, 0)
	params.MaxAppearance = 2

	pop := NewPopulation()
	pop.Seed(10, 0, 100)
	engine := NewRoundEngine(params, rand.New(rand.NewSource(3)), nil, nil)

	var matchups int
	engine.OnMatchup = func(Matchup) { matchups++ }
	stats := engine.Step(pop)

	if matchups != 3 || stats.Pairs != 3 || stats.Unpaired != 4 {
		t.Fatalf("matchups=%d pairs=%d unpaired=%d, want 3/3/4", matchups, stats.Pairs, stats.Unpaired)
	}

	// Six doves gained 10, four got nothing
	gained := 0
	for _, s := range pop.States() {
		switch s.Energy {
		case 110:
			gained++
		case 100:
		default:
			t.Errorf("agent %d energy = %d, want 100 or 110", s.ID, s.Energy)
		}
	}
	if gained != 6 {
		t.Errorf("%d agents fed, want 6", gained)
	}
}

func TestStepCullsAndBreeds(t *testing.T) {
	params := RoundParams{
		MinFood: 0, MaxFood: 0, MaxAppearance: 1000,
		FightCost: 0, LossPerRound: 0,
		Living: 10, Reproduction: 250,
	}

	pop := NewPopulation()
	// Doves 1..4 with energies that cover cull, keep and breed cases
	for _, e := range []int{5, 9, 10, 300} {
		pop.Spawn(traits.Dove, e)
	}
	pop.Spawn(traits.Hawk, 251)
	pop.Spawn(traits.Hawk, -20)

	lifetimes := telemetry.NewLifetimeTracker()
	for _, s := range pop.States() {
		lifetimes.Register(s.ID, s.Strategy, 0, 0, s.Energy)
	}

	engine := NewRoundEngine(params, rand.New(rand.NewSource(9)), telemetry.NewPerfCollector(5), lifetimes)
	stats := engine.Step(pop)

	if stats.DeadDoves != 2 || stats.DeadHawks != 1 {
		t.Errorf("deaths = %d doves %d hawks, want 2/1", stats.DeadDoves, stats.DeadHawks)
	}
	if stats.DoveBirths != 1 || stats.HawkBirths != 1 {
		t.Errorf("births = %d doves %d hawks, want 1/1", stats.DoveBirths, stats.HawkBirths)
	}
	if stats.Doves != 3 || stats.Hawks != 2 {
		t.Errorf("composition = %d doves %d hawks, want 3/2", stats.Doves, stats.Hawks)
	}

	var energies []int
	for _, s := range pop.States() {
		energies = append(energies, s.Energy)
	}
	sort.Ints(energies)
	// 10 survives; 300 halves to 150 (+child); 251 halves to 125 (+child)
	if want := []int{10, 125, 125, 150, 150}; !reflect.DeepEqual(energies, want) {
		t.Errorf("energies = %v, want %v", energies, want)
	}

	if lifetimes.Living() != 5 {
		t.Errorf("tracked lifetimes = %d, want 5", lifetimes.Living())
	}
	if spans := lifetimes.Lifespans(); spans.DoveDeaths != 2 || spans.HawkDeaths != 1 {
		t.Errorf("lifespans = %+v", spans)
	}
}

func TestStepIsDeterministicForSeed(t *testing.T) {
	cfg := config.Default()
	cfg.Food.MinPerRound = 10
	cfg.Food.MaxPerRound = 70
	cfg.Energy.FightCost = 35

	run := func() ([]AgentState, []telemetry.RoundStats) {
		pop := NewPopulation()
		pop.Seed(50, 50, 100)
		engine := NewRoundEngine(ParamsFromConfig(cfg), rand.New(rand.NewSource(42)), nil, nil)
		var history []telemetry.RoundStats
		for i := 0; i < 20 && pop.Len() > 2; i++ {
			history = append(history, engine.Step(pop))
		}
		return pop.States(), history
	}

	s1, h1 := run()
	s2, h2 := run()
	if !reflect.DeepEqual(h1, h2) {
		t.Error("histories differ for the same seed")
	}
	if !reflect.DeepEqual(s1, s2) {
		t.Error("final populations differ for the same seed")
	}
	for i, r := range h1 {
		if r.Round != i+1 {
			t.Errorf("history[%d].Round = %d", i, r.Round)
		}
		if r.Food < 10 || r.Food > 70 {
			t.Errorf("round %d food %d outside [10, 70]", r.Round, r.Food)
		}
	}
}
