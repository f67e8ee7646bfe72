package sim

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/jtkiii/lifeform/components"
	"github.com/jtkiii/lifeform/systems"
	"github.com/jtkiii/lifeform/world"
)

// cullDead removes every entity whose Alive flag dropped this epoch and
// returns the count. Removal happens in a second pass: the query must be
// fully consumed before the store is mutated.
func (s *Simulation) cullDead() int {
	var dead []ecs.Entity
	query := s.vitals.Query()
	for query.Next() {
		if !query.Get().Alive {
			dead = append(dead, query.Entity())
		}
	}
	for _, e := range dead {
		s.mapper.Remove(e)
	}
	return len(dead)
}

// birth is one pending newborn, collected during the reproduction pass and
// created afterwards so that newborns never participate in the epoch that
// produced them.
type birth struct {
	traits     components.Traits
	parentID   string
	generation int
}

// reproduce rolls reproduction for every eligible entity, applies the
// parent's cost immediately, and creates the newborns after the query is
// done. Returns the number of births.
func (s *Simulation) reproduce(cond world.Conditions) int {
	alive := s.countAlive()

	var pending []birth
	query := s.filter.Query()
	for query.Next() {
		v, t, l := query.Get()
		if !systems.Eligible(*v, s.bparams) {
			continue
		}
		p := systems.ReproductionProbability(*v, *t, alive, cond)
		if s.rng.Float64() >= p {
			continue
		}
		*v = systems.PayReproductionCost(*v, s.bparams)
		pending = append(pending, birth{
			traits:     systems.MutateTraits(*t, s.rng, s.bparams),
			parentID:   l.ID,
			generation: l.Generation + 1,
		})
	}

	for _, b := range pending {
		s.spawn(systems.NewbornVitals(s.rng), b.traits, b.parentID, b.generation)
	}
	return len(pending)
}

// countAlive tallies living entities without touching the rest of the row.
func (s *Simulation) countAlive() int {
	n := 0
	query := s.vitals.Query()
	for query.Next() {
		if query.Get().Alive {
			n++
		}
	}
	return n
}

type censusResult struct {
	alive         int
	thriving      int
	nominal       int
	struggling    int
	meanHealth    float64
	meanEnergy    float64
	maxGeneration int
	healths       []float64
	energies      []float64
}

// census aggregates the living population: per-status counts, means, the
// deepest living generation, and the raw health/energy samples the journal
// turns into distribution columns.
func (s *Simulation) census() censusResult {
	var c censusResult
	var healthSum, energySum float64

	query := s.filter.Query()
	for query.Next() {
		v, _, l := query.Get()
		if !v.Alive {
			continue
		}
		c.alive++
		healthSum += v.Health
		energySum += v.Energy
		c.healths = append(c.healths, v.Health)
		c.energies = append(c.energies, v.Energy)
		if l.Generation > c.maxGeneration {
			c.maxGeneration = l.Generation
		}
		switch v.Status(s.thresholds) {
		case components.StatusThriving:
			c.thriving++
		case components.StatusStruggling:
			c.struggling++
		default:
			c.nominal++
		}
	}
	if c.alive > 0 {
		c.meanHealth = healthSum / float64(c.alive)
		c.meanEnergy = energySum / float64(c.alive)
	}
	return c
}

// maybeBabyBoom spawns a burst of fresh entities when the population has
// collapsed below the boom threshold. A boom answers a crash, not a cold
// start: the population must have exceeded the threshold at some point.
// Booms are rationed: at most MaxBabyBooms per run, and never within ten
// epochs of the previous one.
func (s *Simulation) maybeBabyBoom(alive int) {
	ev := s.profile.Events
	if ev.BabyBoomThreshold <= 0 || alive == 0 {
		return
	}
	if alive >= ev.BabyBoomThreshold || s.maxAlive < ev.BabyBoomThreshold {
		return
	}
	if s.boomCount >= ev.MaxBabyBooms {
		return
	}
	if s.epoch-s.lastBoomEpoch < 10 {
		return
	}

	// The boom is a burst of offspring from the healthy survivors. Collect
	// the candidate parents first; spawning mutates the store.
	type parent struct {
		traits  components.Traits
		lineage components.Lineage
	}
	var parents []parent
	query := s.filter.Query()
	for query.Next() {
		v, t, l := query.Get()
		if v.Alive && v.Status(s.thresholds) != components.StatusStruggling {
			parents = append(parents, parent{traits: *t, lineage: *l})
		}
	}

	n := ev.BabyBoomThreshold - alive
	for i := 0; i < n; i++ {
		if len(parents) == 0 {
			s.spawnSeed()
			continue
		}
		p := parents[s.rng.Intn(len(parents))]
		s.spawn(
			systems.NewbornVitals(s.rng),
			systems.MutateTraits(p.traits, s.rng, s.bparams),
			p.lineage.ID,
			p.lineage.Generation+1,
		)
	}
	s.boomCount++
	s.lastBoomEpoch = s.epoch
	s.lastEvent = "baby boom"
	slog.Info("baby boom", "world", s.profile.Name, "epoch", s.epoch, "spawned", n)
}
