// Package components defines ECS components for the simulation.
package components

// Status is the health-derived classification of an entity. It is computed
// from vitals for reporting, never stored.
type Status uint8

const (
	StatusThriving Status = iota
	StatusAlive
	StatusStruggling
	StatusDead
)

// String returns the lowercase status name used in logs and journals.
func (s Status) String() string {
	switch s {
	case StatusThriving:
		return "thriving"
	case StatusAlive:
		return "alive"
	case StatusStruggling:
		return "struggling"
	case StatusDead:
		return "dead"
	}
	return "unknown"
}

// Health and energy bounds shared by every world.
const (
	HealthFloor   = 0.0
	HealthCeiling = 100.0
	EnergyFloor   = 0.0
	EnergyCeiling = 100.0
)

// Vitals holds the mutable per-epoch state of one entity.
type Vitals struct {
	Age    int
	Health float64
	Energy float64
	Alive  bool
}

// Traits holds heritable coefficients. Sampled at birth, perturbed by
// mutation when inherited, constant for the entity's lifetime.
type Traits struct {
	Resilience         float64 // scales down age decay
	Metabolism         float64 // base energy drain per epoch
	ForagingEfficiency float64 // scales energy intake from resources
	ReproductionChance float64 // base per-epoch reproduction probability
}

// Lineage identifies an entity and its ancestry.
type Lineage struct {
	ID         string
	ParentID   string
	Generation int
	BornEpoch  int
}

// Thresholds are the world's status band boundaries.
type Thresholds struct {
	ThrivingHealth   float64
	ThrivingEnergy   float64
	StrugglingHealth float64
	StrugglingEnergy float64
}

// Status derives the entity's status band from its vitals. Thriving requires
// both health and energy above their thresholds; struggling is triggered by
// either falling below its floor.
func (v Vitals) Status(t Thresholds) Status {
	switch {
	case !v.Alive || v.Health <= HealthFloor:
		return StatusDead
	case v.Health >= t.ThrivingHealth && v.Energy >= t.ThrivingEnergy:
		return StatusThriving
	case v.Health <= t.StrugglingHealth || v.Energy <= t.StrugglingEnergy:
		return StatusStruggling
	}
	return StatusAlive
}
