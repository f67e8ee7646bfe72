package systems

import (
	"math/rand"

	"github.com/jtkiii/lifeform/components"
	"github.com/jtkiii/lifeform/world"
)

// Trait bounds applied after mutation, to avoid runaway lineages.
const (
	minResilience = 0.1
	maxResilience = 5.0
	minMetabolism = 0.1
	maxMetabolism = 5.0
	minForaging   = 0.05
	maxForaging   = 2.0
	minReproPct   = 0.001
	maxReproPct   = 0.5
)

// Newborn health and energy range, matching the vigor of fresh offspring.
const (
	newbornFloor = 80.0
	newbornSpan  = 20.0
)

// parentHealthCost is the health a parent pays on reproduction.
const parentHealthCost = 3.0

// BreedingParams are the world-level reproduction coefficients.
type BreedingParams struct {
	MinAge           int
	EnergyCost       float64
	MutationRate     float64
	MutationStrength float64
	Thresholds       components.Thresholds
}

// Eligible reports whether an entity may reproduce this epoch: alive, not
// struggling, mature, and holding enough energy to pay the cost.
func Eligible(v components.Vitals, p BreedingParams) bool {
	if !v.Alive || v.Age < p.MinAge || v.Energy <= p.EnergyCost {
		return false
	}
	return v.Status(p.Thresholds) != components.StatusStruggling
}

// ReproductionProbability is the per-epoch chance an eligible entity spawns
// one offspring. It rises with health and falls smoothly as the population
// approaches carrying capacity: the damping term K/(N+K) is 1 for an empty
// world, 0.5 at capacity, and never reaches a hard cutoff.
func ReproductionProbability(v components.Vitals, t components.Traits, population int, cond world.Conditions) float64 {
	healthFactor := 0.5 + 0.5*v.Health/components.HealthCeiling
	damping := cond.CarryingCapacity / (float64(population) + cond.CarryingCapacity)
	p := t.ReproductionChance * healthFactor * damping * cond.GrowthRate
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// MutateTraits returns the offspring's traits. Resilience always picks up a
// bounded perturbation at birth; the remaining traits mutate with probability
// MutationRate. Everything is clamped to its bounds afterwards.
func MutateTraits(t components.Traits, rng *rand.Rand, p BreedingParams) components.Traits {
	out := t
	jitter := func() float64 {
		return 1 + (rng.Float64()*2-1)*p.MutationStrength
	}
	mutate := func(v float64) float64 {
		if rng.Float64() >= p.MutationRate {
			return v
		}
		return v * jitter()
	}
	out.Resilience = clamp(t.Resilience*jitter(), minResilience, maxResilience)
	out.Metabolism = clamp(mutate(t.Metabolism), minMetabolism, maxMetabolism)
	out.ForagingEfficiency = clamp(mutate(t.ForagingEfficiency), minForaging, maxForaging)
	out.ReproductionChance = clamp(mutate(t.ReproductionChance), minReproPct, maxReproPct)
	return out
}

// NewbornVitals returns the starting vitals for an offspring.
func NewbornVitals(rng *rand.Rand) components.Vitals {
	return components.Vitals{
		Age:    0,
		Health: newbornFloor + rng.Float64()*newbornSpan,
		Energy: newbornFloor + rng.Float64()*newbornSpan,
		Alive:  true,
	}
}

// PayReproductionCost deducts the parent's share of a birth.
func PayReproductionCost(v components.Vitals, p BreedingParams) components.Vitals {
	v.Health = clamp(v.Health-parentHealthCost, components.HealthFloor, components.HealthCeiling)
	v.Energy = clamp(v.Energy-p.EnergyCost, components.EnergyFloor, components.EnergyCeiling)
	if v.Health <= components.HealthFloor {
		v.Alive = false
		v.Health = 0
		v.Energy = 0
	}
	return v
}
