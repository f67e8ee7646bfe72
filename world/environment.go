package world

import (
	"fmt"
	"math"

	"github.com/jtkiii/lifeform/config"
)

// Feedback shape constants. These set how hard the adaptation step leans on
// its inputs; per-world character comes from the profile's sensitivity,
// memory window, and rate coefficients.
const (
	pollutionPenalty = 0.08 // resource loss per unit pollution per epoch
	regenScale       = 0.1  // fraction of regeneration_rate applied per epoch
	capacityBase     = 0.55 // capacity multiplier at zero resources
	capacitySpan     = 0.65 // additional multiplier at full resources
	trendGain        = 8.0  // steepness of the trend response inside tanh
)

// Conditions is the read-only view of the environment handed to entity
// transitions. Single writer (Adapt), many readers.
type Conditions struct {
	ResourceAvailability float64
	Pollution            float64
	CarryingCapacity     float64
	GrowthRate           float64
	DeathRate            float64
}

// Environment holds one world's mutable parameters. It is created once per
// run from a profile and mutated only by its own Adapt step.
type Environment struct {
	CarryingCapacity     float64
	ResourceAvailability float64
	Pollution            float64
	Sensitivity          float64

	baseCapacity float64
	minCapacity  float64
	maxCapacity  float64

	minResources float64
	maxResources float64
	regenRate    float64

	pollutionRate  float64
	pollutionDecay float64
	maxPollution   float64

	growthRate float64
	deathRate  float64

	adaptive bool
}

// NewEnvironment validates the profile and instantiates the world's
// environment from it.
func NewEnvironment(p config.Profile) (*Environment, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("rejected world profile: %w", err)
	}
	return &Environment{
		CarryingCapacity:     p.CarryingCapacity,
		ResourceAvailability: p.ResourceAvailability,
		Pollution:            p.Pollution,
		Sensitivity:          p.Sensitivity,
		baseCapacity:         p.CarryingCapacity,
		minCapacity:          p.MinCapacity,
		maxCapacity:          p.MaxCapacity,
		minResources:         p.MinResources,
		maxResources:         p.MaxResources,
		regenRate:            p.RegenerationRate,
		pollutionRate:        p.PollutionRate,
		pollutionDecay:       p.PollutionDecay,
		maxPollution:         p.MaxPollution,
		growthRate:           p.GrowthRate,
		deathRate:            p.DeathRate,
		adaptive:             p.Adaptive,
	}, nil
}

// Conditions returns the read-only snapshot entity transitions consume.
func (e *Environment) Conditions() Conditions {
	return Conditions{
		ResourceAvailability: e.ResourceAvailability,
		Pollution:            e.Pollution,
		CarryingCapacity:     e.CarryingCapacity,
		GrowthRate:           e.growthRate,
		DeathRate:            e.deathRate,
	}
}

// Adaptive reports whether this world runs the feedback loop.
func (e *Environment) Adaptive() bool { return e.adaptive }

// Adapt runs one epoch of the feedback loop: population pressure accumulates
// pollution, pollution suppresses resources, and carrying capacity follows
// resources while pushing back against the population trend. Every output is
// clamped to its world-defined range, so the loop self-stabilizes instead of
// failing.
//
// trend is the memory's fitted slope in entities per epoch; population is the
// live count after culling and reproduction.
func (e *Environment) Adapt(trend float64, population int) {
	e.Pollution = clamp(
		e.Pollution+float64(population)*e.pollutionRate-e.pollutionDecay,
		0, e.maxPollution)

	e.ResourceAvailability = clamp(
		e.ResourceAvailability-e.Pollution*pollutionPenalty+e.regenRate*regenScale,
		e.minResources, e.maxResources)

	if !e.adaptive {
		return
	}

	// Normalize the slope against capacity so sensitivity means the same
	// thing in a 300-entity world and a 3000-entity world. tanh bounds the
	// reaction for any trend magnitude.
	trendNorm := trend / math.Max(e.CarryingCapacity, 1)
	resourceNorm := (e.ResourceAvailability - e.minResources) /
		(e.maxResources - e.minResources)

	f := (capacityBase + capacitySpan*resourceNorm) *
		(1 - e.Sensitivity*math.Tanh(trendGain*trendNorm))

	next := e.baseCapacity * f
	if math.IsNaN(next) || math.IsInf(next, 0) {
		next = e.baseCapacity
	}
	e.CarryingCapacity = clamp(next, e.minCapacity, e.maxCapacity)
}

// ApplyResourceShock nudges resource availability by delta, clamped to the
// world's range. Used by stochastic events.
func (e *Environment) ApplyResourceShock(delta float64) {
	e.ResourceAvailability = clamp(e.ResourceAvailability+delta, e.minResources, e.maxResources)
}

// ApplyPollutionShock nudges pollution by delta, clamped to [0, max].
func (e *Environment) ApplyPollutionShock(delta float64) {
	e.Pollution = clamp(e.Pollution+delta, 0, e.maxPollution)
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
