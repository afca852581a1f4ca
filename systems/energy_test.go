package systems

import (
	"testing"

	"github.com/pthm-cable/hawkdove/traits"
)

func TestUpkeepChargesEveryAgentOnce(t *testing.T) {
	tests := []struct {
		name     string
		energies []int
		loss     int
		want     []int
	}{
		{"typical", []int{100, 50, 4}, 4, []int{96, 46, 0}},
		{"goes negative", []int{2, -3}, 5, []int{-3, -8}},
		{"zero loss", []int{7, 8}, 0, []int{7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := NewPopulation()
			for _, e := range tt.energies {
				pop.Spawn(traits.Dove, e)
			}
			before := pop.TotalEnergy()

			Upkeep(pop, tt.loss)

			states := pop.States()
			for i, s := range states {
				if s.Energy != tt.want[i] {
					t.Errorf("agent %d energy = %d, want %d", s.ID, s.Energy, tt.want[i])
				}
			}
			if got, want := pop.TotalEnergy(), before-tt.loss*len(tt.energies); got != want {
				t.Errorf("total = %d, want %d", got, want)
			}
		})
	}
}

func TestCull(t *testing.T) {
	pop := NewPopulation()
	for _, e := range []int{-5, 0, 9, 10, 11} {
		pop.Spawn(traits.Dove, e)
	}
	pop.Spawn(traits.Hawk, 3)

	victims := Cull(pop, 10)
	if len(victims) != 4 {
		t.Fatalf("victims = %d, want 4", len(victims))
	}
	for _, v := range victims {
		if v.Energy >= 10 {
			t.Errorf("victim %d had energy %d", v.ID, v.Energy)
		}
	}
	for _, s := range pop.States() {
		if s.Energy < 10 {
			t.Errorf("agent %d survived with %d", s.ID, s.Energy)
		}
	}
	if hawks, doves := pop.Counts(); hawks != 0 || doves != 2 {
		t.Errorf("counts = %d/%d, want 0/2", hawks, doves)
	}
}

func TestCullThresholdIsStrict(t *testing.T) {
	pop := NewPopulation()
	pop.Spawn(traits.Hawk, 10)
	pop.Spawn(traits.Dove, 9)

	victims := Cull(pop, 10)
	if len(victims) != 1 || victims[0].Strategy != traits.Dove || victims[0].Energy != 9 {
		t.Errorf("victims = %+v, want the dove at 9", victims)
	}
	if pop.Len() != 1 {
		t.Errorf("population = %d, want 1", pop.Len())
	}
}

func TestCullEveryone(t *testing.T) {
	pop := NewPopulation()
	pop.Seed(3, 3, 1)

	victims := Cull(pop, 100)
	if len(victims) != 6 || pop.Len() != 0 {
		t.Errorf("victims = %d, remaining = %d, want 6 and 0", len(victims), pop.Len())
	}
	if Cull(pop, 100) != nil {
		t.Error("cull of an empty population should return nil")
	}
}
