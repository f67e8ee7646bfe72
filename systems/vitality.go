// Package systems holds the per-entity simulation rules: the vitals
// transition and reproduction. Everything here is a pure function of the
// entity's own prior state and the world conditions, so transitions can run
// in any order, or in parallel, without changing the outcome.
package systems

import (
	"math"

	"github.com/jtkiii/lifeform/components"
	"github.com/jtkiii/lifeform/world"
)

// Energy budget constants, on the 0..100 energy scale.
const (
	forageScale     = 1.8 // energy gained per unit resource*efficiency
	sicknessDrain   = 0.1 // extra metabolism per point of health below 50
	scarcityPenalty = 2.5 // extra metabolism per unit of missing resources
)

// Health budget constants, on the 0..100 health scale.
const (
	baseDecay      = 0.005 // unavoidable per-epoch drift
	recoveryScale  = 0.04  // healing per recovery_rate per point below ceiling
	starvationRate = 0.02  // health loss per point of energy below 50
	resourceRelief = 2.0   // age decay divisor span over resource range
)

// VitalityParams are the world-level coefficients of the transition,
// taken from the profile's entity block.
type VitalityParams struct {
	MaxAge           int
	DecayCoefficient float64
	DecayExponent    float64
	RecoveryRate     float64
}

// Decay returns the base health loss for an entity of the given age.
// It is 0 at age 0, finite and non-decreasing for all ages: sub-linear
// at low age and super-linear at high age, so new entities survive easily
// while the old hit an accelerating death zone.
func Decay(age int, coefficient, exponent float64) float64 {
	if age <= 0 {
		return 0
	}
	return coefficient * math.Pow(float64(age), exponent)
}

// AdvanceVitals computes the next-epoch vitals from the current ones and the
// world conditions. Dead entities pass through unchanged. The returned vitals
// carry Alive=false when health hits the floor or the entity outlives its
// maximum age; the caller removes such entities at the end of the epoch.
func AdvanceVitals(v components.Vitals, t components.Traits, cond world.Conditions, p VitalityParams) components.Vitals {
	if !v.Alive {
		return v
	}

	next := v
	next.Age = v.Age + 1

	// Energy budget: foraging in, metabolism out. Poor health and scarce
	// resources both raise the cost of staying alive.
	gain := cond.ResourceAvailability * t.ForagingEfficiency * forageScale
	cost := t.Metabolism
	if v.Health < 50 {
		cost += (50 - v.Health) * sicknessDrain
	}
	if cond.ResourceAvailability < 1 {
		cost += (1 - cond.ResourceAvailability) * scarcityPenalty
	}
	next.Energy = clamp(v.Energy+gain-cost, components.EnergyFloor, components.EnergyCeiling)

	// Age decay, scaled up by pollution and the world's death modifier,
	// scaled down by resilience and resource availability.
	loss := baseDecay + Decay(v.Age, p.DecayCoefficient, p.DecayExponent)*
		(1+cond.Pollution)*cond.DeathRate*
		resourceDivisor(cond.ResourceAvailability)/
		math.Max(t.Resilience, 0.1)

	// Energy surplus heals toward the ceiling; deficit starves.
	var heal float64
	if v.Energy > 50 {
		heal = p.RecoveryRate * recoveryScale *
			(components.HealthCeiling - v.Health) *
			(v.Energy / components.EnergyCeiling) *
			math.Min(cond.ResourceAvailability, 1.5) / 1.5
	} else {
		loss += (50 - v.Energy) * starvationRate * cond.DeathRate
	}

	next.Health = clamp(v.Health-loss+heal, components.HealthFloor, components.HealthCeiling)

	next.Alive = next.Health > components.HealthFloor && next.Age <= p.MaxAge
	if !next.Alive {
		next.Health = 0
		next.Energy = 0
	}
	return next
}

// resourceDivisor maps resource availability to a decay multiplier: 1.0 at
// nominal resources, resourceRelief at none, monotonically relieving as
// resources grow.
func resourceDivisor(resources float64) float64 {
	return resourceRelief / (1 + math.Min(resources, 2))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
