package systems

import (
	"math/rand"
	"testing"

	"github.com/jtkiii/lifeform/components"
	"github.com/jtkiii/lifeform/world"
)

var testBreeding = BreedingParams{
	MinAge:           13,
	EnergyCost:       12,
	MutationRate:     0.1,
	MutationStrength: 0.03,
	Thresholds: components.Thresholds{
		ThrivingHealth:   65,
		ThrivingEnergy:   60,
		StrugglingHealth: 33,
		StrugglingEnergy: 22,
	},
}

func TestEligible(t *testing.T) {
	cases := []struct {
		name   string
		vitals components.Vitals
		want   bool
	}{
		{"healthy adult", components.Vitals{Age: 20, Health: 80, Energy: 70, Alive: true}, true},
		{"too young", components.Vitals{Age: 5, Health: 80, Energy: 70, Alive: true}, false},
		{"exactly at min age", components.Vitals{Age: 13, Health: 80, Energy: 70, Alive: true}, true},
		{"cannot pay cost", components.Vitals{Age: 20, Health: 80, Energy: 12, Alive: true}, false},
		{"struggling on health", components.Vitals{Age: 20, Health: 20, Energy: 70, Alive: true}, false},
		{"dead", components.Vitals{Age: 20, Health: 0, Energy: 70, Alive: false}, false},
	}

	for _, tc := range cases {
		if got := Eligible(tc.vitals, testBreeding); got != tc.want {
			t.Errorf("%s: Eligible = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReproductionProbabilityDamping(t *testing.T) {
	v := components.Vitals{Age: 20, Health: 80, Energy: 70, Alive: true}
	tr := components.Traits{ReproductionChance: 0.1}
	cond := world.Conditions{CarryingCapacity: 1000, GrowthRate: 1.0}

	empty := ReproductionProbability(v, tr, 0, cond)
	atCapacity := ReproductionProbability(v, tr, 1000, cond)
	crowded := ReproductionProbability(v, tr, 5000, cond)

	if !(empty > atCapacity && atCapacity > crowded) {
		t.Errorf("probability should fall with population: %g, %g, %g",
			empty, atCapacity, crowded)
	}
	// K/(N+K) is exactly 0.5 at capacity
	if atCapacity < empty*0.49 || atCapacity > empty*0.51 {
		t.Errorf("probability at capacity = %g, want half of empty-world %g", atCapacity, empty)
	}
	if crowded <= 0 {
		t.Error("damping must never reach a hard cutoff")
	}
}

func TestReproductionProbabilityHealthFactor(t *testing.T) {
	tr := components.Traits{ReproductionChance: 0.1}
	cond := world.Conditions{CarryingCapacity: 1000, GrowthRate: 1.0}

	fit := ReproductionProbability(components.Vitals{Health: 100, Alive: true}, tr, 100, cond)
	worn := ReproductionProbability(components.Vitals{Health: 40, Alive: true}, tr, 100, cond)

	if worn >= fit {
		t.Errorf("probability at health 40 (%g) should be below health 100 (%g)", worn, fit)
	}
}

func TestReproductionProbabilityClamped(t *testing.T) {
	v := components.Vitals{Health: 100, Alive: true}
	tr := components.Traits{ReproductionChance: 0.5}
	cond := world.Conditions{CarryingCapacity: 1000, GrowthRate: 100}

	if p := ReproductionProbability(v, tr, 0, cond); p > 1 {
		t.Errorf("probability %g above 1", p)
	}
}

func TestMutateTraitsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := testBreeding
	p.MutationRate = 1.0
	p.MutationStrength = 0.9

	tr := components.Traits{
		Resilience:         4.9,
		Metabolism:         0.11,
		ForagingEfficiency: 1.95,
		ReproductionChance: 0.49,
	}

	for i := 0; i < 1000; i++ {
		got := MutateTraits(tr, rng, p)
		if got.Resilience < 0.1 || got.Resilience > 5.0 {
			t.Fatalf("resilience %g out of bounds", got.Resilience)
		}
		if got.Metabolism < 0.1 || got.Metabolism > 5.0 {
			t.Fatalf("metabolism %g out of bounds", got.Metabolism)
		}
		if got.ForagingEfficiency < 0.05 || got.ForagingEfficiency > 2.0 {
			t.Fatalf("foraging %g out of bounds", got.ForagingEfficiency)
		}
		if got.ReproductionChance < 0.001 || got.ReproductionChance > 0.5 {
			t.Fatalf("reproduction chance %g out of bounds", got.ReproductionChance)
		}
	}
}

func TestMutateTraitsZeroRateKeepsMost(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := testBreeding
	p.MutationRate = 0

	tr := components.Traits{
		Resilience:         1.0,
		Metabolism:         0.3,
		ForagingEfficiency: 0.35,
		ReproductionChance: 0.05,
	}
	got := MutateTraits(tr, rng, p)

	if got.Metabolism != tr.Metabolism ||
		got.ForagingEfficiency != tr.ForagingEfficiency ||
		got.ReproductionChance != tr.ReproductionChance {
		t.Errorf("traits mutated at zero rate: %+v", got)
	}
	// Resilience always picks up birth jitter
	lo := tr.Resilience * (1 - p.MutationStrength)
	hi := tr.Resilience * (1 + p.MutationStrength)
	if got.Resilience < lo || got.Resilience > hi {
		t.Errorf("resilience %g outside jitter range [%g, %g]", got.Resilience, lo, hi)
	}
}

func TestNewbornVitals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := NewbornVitals(rng)
		if v.Age != 0 {
			t.Fatalf("newborn age %d, want 0", v.Age)
		}
		if !v.Alive {
			t.Fatal("newborn not alive")
		}
		if v.Health < 80 || v.Health > 100 {
			t.Fatalf("newborn health %g outside [80, 100]", v.Health)
		}
		if v.Energy < 80 || v.Energy > 100 {
			t.Fatalf("newborn energy %g outside [80, 100]", v.Energy)
		}
	}
}

// TestPayReproductionCostNeverKillsEligible verifies the invariant that an
// entity allowed to reproduce survives paying for it: eligibility requires
// non-struggling health, which sits far above the health cost.
func TestPayReproductionCostNeverKillsEligible(t *testing.T) {
	v := components.Vitals{Age: 20, Health: 34, Energy: 70, Alive: true}
	if !Eligible(v, testBreeding) {
		t.Fatal("test entity should be eligible")
	}
	got := PayReproductionCost(v, testBreeding)
	if !got.Alive {
		t.Error("eligible parent died paying reproduction cost")
	}
	if got.Health != v.Health-3 {
		t.Errorf("health = %g, want %g", got.Health, v.Health-3)
	}
	if got.Energy != v.Energy-12 {
		t.Errorf("energy = %g, want %g", got.Energy, v.Energy-12)
	}
}
