// Package sim drives one world: it owns the entity store, the environment,
// the rolling memory, and the epoch loop that ties them together. One epoch
// fully completes before the next begins, and a run can be stopped at any
// epoch boundary without leaving partial state behind.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/jtkiii/lifeform/components"
	"github.com/jtkiii/lifeform/config"
	"github.com/jtkiii/lifeform/systems"
	"github.com/jtkiii/lifeform/world"
)

// Options control one simulation run.
type Options struct {
	Seed            int64
	InitialEntities int
	Epochs          int
}

// Simulation is one live world. Created by New, driven by Step or Run,
// discarded afterwards. Not safe for concurrent use; the epoch loop is
// single-threaded by design.
type Simulation struct {
	profile config.Profile
	opts    Options

	env    *world.Environment
	memory *world.Memory
	rng    *rand.Rand

	store  *ecs.World
	mapper *ecs.Map3[components.Vitals, components.Traits, components.Lineage]
	filter *ecs.Filter3[components.Vitals, components.Traits, components.Lineage]
	vitals *ecs.Filter1[components.Vitals]

	vparams    systems.VitalityParams
	bparams    systems.BreedingParams
	thresholds components.Thresholds

	epoch         int
	totalSpawned  int
	totalBirths   int
	totalDeaths   int
	maxAlive      int
	boomCount     int
	lastBoomEpoch int
	lastEvent     string
}

// New validates the profile, builds the world, and spawns the seed
// population. An invalid profile is rejected here, before any epoch runs.
func New(profile config.Profile, opts Options) (*Simulation, error) {
	env, err := world.NewEnvironment(profile)
	if err != nil {
		return nil, err
	}
	if opts.InitialEntities < 1 {
		return nil, fmt.Errorf("initial entities must be >= 1, got %d", opts.InitialEntities)
	}

	store := ecs.NewWorld()
	e := profile.Entity

	s := &Simulation{
		profile: profile,
		opts:    opts,
		env:     env,
		memory:  world.NewMemory(profile.MemoryWindow),
		rng:     rand.New(rand.NewSource(opts.Seed)),
		store:   store,
		mapper: ecs.NewMap3[
			components.Vitals,
			components.Traits,
			components.Lineage,
		](store),
		filter: ecs.NewFilter3[
			components.Vitals,
			components.Traits,
			components.Lineage,
		](store),
		vitals: ecs.NewFilter1[components.Vitals](store),
		vparams: systems.VitalityParams{
			MaxAge:           e.MaxAge,
			DecayCoefficient: e.DecayCoefficient,
			DecayExponent:    e.DecayExponent,
			RecoveryRate:     e.RecoveryRate,
		},
		thresholds: components.Thresholds{
			ThrivingHealth:   e.ThrivingHealth,
			ThrivingEnergy:   e.ThrivingEnergy,
			StrugglingHealth: e.StrugglingHealth,
			StrugglingEnergy: e.StrugglingEnergy,
		},
		lastBoomEpoch: -20,
	}
	s.bparams = systems.BreedingParams{
		MinAge:           e.MinReproductionAge,
		EnergyCost:       e.ReproductionCost,
		MutationRate:     e.MutationRate,
		MutationStrength: e.MutationStrength,
		Thresholds:       s.thresholds,
	}

	for i := 0; i < opts.InitialEntities; i++ {
		s.spawnSeed()
	}

	slog.Info("world initialized",
		"world", profile.Name,
		"entities", opts.InitialEntities,
		"seed", opts.Seed,
		"adaptive", profile.Adaptive,
	)
	return s, nil
}

// Epoch returns the number of completed epochs.
func (s *Simulation) Epoch() int { return s.epoch }

// Environment exposes the world's current parameters, read-only by
// convention: only the epoch loop's adapt step writes them.
func (s *Simulation) Environment() *world.Environment { return s.env }

// Memory exposes the world's rolling population memory.
func (s *Simulation) Memory() *world.Memory { return s.memory }

// Step advances the simulation by one epoch and returns its snapshot:
// events, entity transitions, culling, reproduction, memory recording, and
// environment adaptation, strictly in that order.
func (s *Simulation) Step() Snapshot {
	s.lastEvent = ""
	s.triggerEvents()

	// All transitions read the same pre-adaptation conditions and only the
	// entity's own prior state, so iteration order cannot affect the result.
	cond := s.env.Conditions()
	query := s.filter.Query()
	for query.Next() {
		v, t, _ := query.Get()
		*v = systems.AdvanceVitals(*v, *t, cond, s.vparams)
	}

	deaths := s.cullDead()
	births := s.reproduce(cond)

	c := s.census()
	s.memory.Record(world.Sample{Size: c.alive, MeanHealth: c.meanHealth})
	trend := s.memory.Trend()

	s.maybeBabyBoom(c.alive)

	s.env.Adapt(trend, c.alive)

	s.totalDeaths += deaths
	s.totalBirths += births
	if c.alive > s.maxAlive {
		s.maxAlive = c.alive
	}
	s.epoch++

	return Snapshot{
		World:                s.profile.Name,
		Epoch:                s.epoch,
		Alive:                c.alive,
		Thriving:             c.thriving,
		Nominal:              c.nominal,
		Struggling:           c.struggling,
		Births:               births,
		Deaths:               deaths,
		MaxGeneration:        c.maxGeneration,
		MeanHealth:           c.meanHealth,
		MeanEnergy:           c.meanEnergy,
		HealthSamples:        c.healths,
		EnergySamples:        c.energies,
		ResourceAvailability: s.env.ResourceAvailability,
		Pollution:            s.env.Pollution,
		CarryingCapacity:     s.env.CarryingCapacity,
		Trend:                trend,
		Event:                s.lastEvent,
	}
}

// Run executes up to opts.Epochs epochs, handing each snapshot to observe
// (nil is allowed). The run ends early on extinction. Because every epoch's
// effects are fully applied before observe is called, stopping between
// epochs never corrupts state.
func (s *Simulation) Run(observe func(Snapshot)) Summary {
	for i := 0; i < s.opts.Epochs; i++ {
		snap := s.Step()
		if observe != nil {
			observe(snap)
		}
		if snap.Alive == 0 {
			slog.Info("all entities have died, ending run early",
				"world", s.profile.Name, "epoch", s.epoch)
			break
		}
	}
	return s.Summary()
}

// spawnSeed creates one founding entity from the profile's entity defaults.
func (s *Simulation) spawnSeed() {
	e := s.profile.Entity
	v := components.Vitals{
		Age:    0,
		Health: e.InitialHealth,
		Energy: e.InitialEnergy,
		Alive:  true,
	}
	t := components.Traits{
		Resilience:         e.Resilience * (1 + (s.rng.Float64()*2-1)*e.ResilienceJitter),
		Metabolism:         e.MetabolismRate,
		ForagingEfficiency: e.ForagingEfficiency,
		ReproductionChance: e.ReproductionChance,
	}
	s.spawn(v, t, "", 0)
}

// spawn adds an entity to the store and assigns its lineage.
func (s *Simulation) spawn(v components.Vitals, t components.Traits, parentID string, generation int) {
	l := components.Lineage{
		ID:         shortID(),
		ParentID:   parentID,
		Generation: generation,
		BornEpoch:  s.epoch,
	}
	s.mapper.NewEntity(&v, &t, &l)
	s.totalSpawned++
}

// shortID returns a compact unique entity identifier.
func shortID() string {
	return uuid.NewString()[:8]
}
