package sim

import (
	"log/slog"

	"github.com/jtkiii/lifeform/components"
)

// triggerEvents rolls this epoch's world events. At most one fires per
// epoch so that a single unlucky roll sequence cannot stack shocks.
func (s *Simulation) triggerEvents() {
	ev := s.profile.Events

	// Disasters become likelier as pollution builds toward the world's cap.
	disasterChance := ev.DisasterChance * (0.5 + s.env.Pollution)
	if ev.DisasterChance > 0 && s.rng.Float64() < disasterChance {
		s.disaster(ev.DisasterImpact)
		return
	}
	if ev.PredatorChance > 0 && s.rng.Float64() < ev.PredatorChance {
		if s.countAlive() > ev.PredatorThreshold {
			s.predatorAttack(ev.PredatorImpact)
			return
		}
	}
	if ev.WildCardChance > 0 && s.rng.Float64() < ev.WildCardChance {
		s.wildCard()
	}
}

// wildCard fires one of the minor random events: resource jolts, a pollution
// spike, a disease outbreak, or a meteor strike.
func (s *Simulation) wildCard() {
	switch s.rng.Intn(5) {
	case 0:
		s.env.ApplyResourceShock(0.2 + s.rng.Float64()*0.3)
		s.lastEvent = "resource windfall"
	case 1:
		s.env.ApplyResourceShock(-(0.2 + s.rng.Float64()*0.3))
		s.lastEvent = "resource dip"
	case 2:
		s.env.ApplyPollutionShock(0.05 + s.rng.Float64()*0.1)
		s.lastEvent = "pollution spike"
	case 3:
		// Disease outbreak: a random slice of the population gets sick.
		s.damagePopulation(0.15, func() float64 { return 5 + s.rng.Float64()*10 })
		s.lastEvent = "disease outbreak"
	default:
		// Meteor strike: a resource jolt plus scattered casualties.
		s.env.ApplyResourceShock(-(0.1 + s.rng.Float64()*0.2))
		s.damagePopulation(0.05, func() float64 { return 15 + s.rng.Float64()*20 })
		s.lastEvent = "meteor strike"
	}
	slog.Debug("wild card event", "world", s.profile.Name, "epoch", s.epoch, "event", s.lastEvent)
}

// predatorAttack weakens a random slice of the living population. Impact is
// the fraction of the population hit; each victim loses a large chunk of
// health and may die during the transition pass that follows.
func (s *Simulation) predatorAttack(impact float64) {
	s.damagePopulation(impact, func() float64 { return 25 + s.rng.Float64()*20 })
	s.lastEvent = "predator attack"
	slog.Info("predator attack", "world", s.profile.Name, "epoch", s.epoch)
}

// disaster is the heavy event: resources crash and every living entity
// takes damage scaled by the impact and softened by its resilience.
func (s *Simulation) disaster(impact float64) {
	s.env.ApplyResourceShock(-impact)

	query := s.filter.Query()
	for query.Next() {
		v, t, _ := query.Get()
		if !v.Alive {
			continue
		}
		damage(v, impact*(20+s.rng.Float64()*15)/max(t.Resilience, 0.1))
	}
	s.lastEvent = "disaster"
	slog.Info("disaster", "world", s.profile.Name, "epoch", s.epoch, "impact", impact)
}

// damagePopulation hits each living entity with probability fraction,
// drawing a fresh damage roll per victim.
func (s *Simulation) damagePopulation(fraction float64, roll func() float64) {
	query := s.filter.Query()
	for query.Next() {
		v, _, _ := query.Get()
		if !v.Alive {
			continue
		}
		if s.rng.Float64() >= fraction {
			continue
		}
		damage(v, roll())
	}
}

// damage applies event damage. An entity driven to the health floor is dead
// on the spot; it cannot recover during the transition that follows.
func damage(v *components.Vitals, amount float64) {
	v.Health -= amount
	if v.Health <= components.HealthFloor {
		v.Health = 0
		v.Energy = 0
		v.Alive = false
	}
}
