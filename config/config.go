// Package config provides world profile loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed worlds.yaml
var worldsYAML []byte

// Profile is the immutable configuration bundle for one world. A simulation
// run copies its values into a live environment at start; the profile itself
// is never mutated afterwards.
type Profile struct {
	Name        string `yaml:"-"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`

	// Adaptive feedback
	Adaptive     bool    `yaml:"adaptive"`
	MemoryWindow int     `yaml:"memory_window"`
	Sensitivity  float64 `yaml:"sensitivity"`

	// Carrying capacity
	CarryingCapacity float64 `yaml:"carrying_capacity"`
	MinCapacity      float64 `yaml:"min_capacity"`
	MaxCapacity      float64 `yaml:"max_capacity"`

	// Resources
	ResourceAvailability float64 `yaml:"resource_availability"`
	MinResources         float64 `yaml:"min_resources"`
	MaxResources         float64 `yaml:"max_resources"`
	RegenerationRate     float64 `yaml:"regeneration_rate"`

	// Pollution
	Pollution      float64 `yaml:"pollution"`
	PollutionRate  float64 `yaml:"pollution_rate"` // per living entity per epoch
	PollutionDecay float64 `yaml:"pollution_decay"`
	MaxPollution   float64 `yaml:"max_pollution"`

	// Base modifiers
	GrowthRate float64 `yaml:"growth_rate"`
	DeathRate  float64 `yaml:"death_rate"`

	Events EventsConfig `yaml:"events"`
	Entity EntityConfig `yaml:"entity"`
}

// EventsConfig holds per-epoch chances for stochastic shocks. All chances are
// probabilities in [0, 1]; zero disables the event.
type EventsConfig struct {
	WildCardChance    float64 `yaml:"wild_card_chance"`
	PredatorChance    float64 `yaml:"predator_chance"`
	PredatorThreshold int     `yaml:"predator_threshold"` // population that attracts predators
	PredatorImpact    float64 `yaml:"predator_impact"`    // fraction of population removed
	DisasterChance    float64 `yaml:"disaster_chance"`
	DisasterImpact    float64 `yaml:"disaster_impact"`
	BabyBoomThreshold int     `yaml:"baby_boom_threshold"` // booms possible below this population
	MaxBabyBooms      int     `yaml:"max_baby_booms"`
}

// EntityConfig holds the per-entity coefficients a world hands to newborns.
type EntityConfig struct {
	MaxAge        int     `yaml:"max_age"`
	InitialHealth float64 `yaml:"initial_health"`
	InitialEnergy float64 `yaml:"initial_energy"`

	DecayCoefficient float64 `yaml:"decay_coefficient"`
	DecayExponent    float64 `yaml:"decay_exponent"`

	MetabolismRate     float64 `yaml:"metabolism_rate"`
	ForagingEfficiency float64 `yaml:"foraging_efficiency"`
	RecoveryRate       float64 `yaml:"recovery_rate"`
	Resilience         float64 `yaml:"resilience"`
	ResilienceJitter   float64 `yaml:"resilience_jitter"` // birth-time perturbation, +/- fraction

	ReproductionChance float64 `yaml:"reproduction_chance"`
	MinReproductionAge int     `yaml:"min_reproduction_age"`
	ReproductionCost   float64 `yaml:"reproduction_cost"` // energy paid by the parent

	ThrivingHealth   float64 `yaml:"thriving_health"`
	ThrivingEnergy   float64 `yaml:"thriving_energy"`
	StrugglingHealth float64 `yaml:"struggling_health"`
	StrugglingEnergy float64 `yaml:"struggling_energy"`

	MutationRate     float64 `yaml:"mutation_rate"`
	MutationStrength float64 `yaml:"mutation_strength"`
}

// catalogFile is the on-disk layout: shared defaults plus per-world overrides.
// Worlds are kept as raw nodes so each one can be decoded over a copy of the
// defaults, giving partial presets merge semantics.
type catalogFile struct {
	Defaults Profile              `yaml:"defaults"`
	Worlds   map[string]yaml.Node `yaml:"worlds"`
}

// Catalog holds all available world profiles.
type Catalog struct {
	worlds map[string]Profile
}

// Load builds the world catalog from the embedded presets, optionally merging
// a user YAML file over them. A user file may override existing worlds or add
// new ones; its own defaults section, if present, applies only to its worlds.
func Load(path string) (*Catalog, error) {
	c := &Catalog{worlds: make(map[string]Profile)}
	if err := c.merge(worldsYAML); err != nil {
		return nil, fmt.Errorf("parsing embedded worlds: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading worlds file: %w", err)
		}
		if err := c.merge(data); err != nil {
			return nil, fmt.Errorf("parsing worlds file %s: %w", path, err)
		}
	}
	return c, nil
}

func (c *Catalog) merge(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	for name, node := range file.Worlds {
		p := file.Defaults
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("world %q: %w", name, err)
		}
		p.Name = name
		c.worlds[name] = p
	}
	return nil
}

// Names returns all world names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.worlds))
	for name := range c.worlds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns the named world profile, validated.
func (c *Catalog) Profile(name string) (Profile, error) {
	p, ok := c.worlds[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown world %q", name)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("world %q: %w", name, err)
	}
	return p, nil
}

// Describe returns a one-line human-readable description of a world.
func (c *Catalog) Describe(name string) (string, error) {
	p, ok := c.worlds[name]
	if !ok {
		return "", fmt.Errorf("unknown world %q", name)
	}
	return fmt.Sprintf("%s: %s", p.Title, p.Description), nil
}

// Validate rejects out-of-range coefficients. It runs at world creation,
// before any epoch; a profile that passes cannot fail at runtime.
func (p *Profile) Validate() error {
	if p.MemoryWindow < 1 {
		return fmt.Errorf("memory_window must be >= 1, got %d", p.MemoryWindow)
	}
	if p.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be positive, got %g", p.Sensitivity)
	}
	if p.MinCapacity <= 0 {
		return fmt.Errorf("min_capacity must be positive, got %g", p.MinCapacity)
	}
	if p.CarryingCapacity < p.MinCapacity || p.CarryingCapacity > p.MaxCapacity {
		return fmt.Errorf("carrying_capacity %g outside [%g, %g]",
			p.CarryingCapacity, p.MinCapacity, p.MaxCapacity)
	}
	if p.MinResources < 0 || p.MaxResources <= p.MinResources {
		return fmt.Errorf("resource bounds [%g, %g] invalid", p.MinResources, p.MaxResources)
	}
	if p.ResourceAvailability < p.MinResources || p.ResourceAvailability > p.MaxResources {
		return fmt.Errorf("resource_availability %g outside [%g, %g]",
			p.ResourceAvailability, p.MinResources, p.MaxResources)
	}
	if p.RegenerationRate < 0 {
		return fmt.Errorf("regeneration_rate must be non-negative, got %g", p.RegenerationRate)
	}
	if p.PollutionRate < 0 || p.PollutionDecay < 0 {
		return fmt.Errorf("pollution rates must be non-negative")
	}
	if p.MaxPollution <= 0 || p.Pollution < 0 || p.Pollution > p.MaxPollution {
		return fmt.Errorf("pollution %g outside [0, %g]", p.Pollution, p.MaxPollution)
	}
	if p.GrowthRate <= 0 || p.DeathRate <= 0 {
		return fmt.Errorf("growth_rate and death_rate must be positive")
	}
	for _, chance := range []struct {
		name  string
		value float64
	}{
		{"wild_card_chance", p.Events.WildCardChance},
		{"predator_chance", p.Events.PredatorChance},
		{"predator_impact", p.Events.PredatorImpact},
		{"disaster_chance", p.Events.DisasterChance},
		{"disaster_impact", p.Events.DisasterImpact},
		{"mutation_rate", p.Entity.MutationRate},
		{"reproduction_chance", p.Entity.ReproductionChance},
	} {
		if chance.value < 0 || chance.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %g", chance.name, chance.value)
		}
	}
	if p.Entity.MaxAge < 1 {
		return fmt.Errorf("max_age must be >= 1, got %d", p.Entity.MaxAge)
	}
	if p.Entity.DecayCoefficient < 0 {
		return fmt.Errorf("decay_coefficient must be non-negative, got %g", p.Entity.DecayCoefficient)
	}
	if p.Entity.DecayExponent <= 0 {
		return fmt.Errorf("decay_exponent must be positive, got %g", p.Entity.DecayExponent)
	}
	if p.Entity.Resilience <= 0 {
		return fmt.Errorf("resilience must be positive, got %g", p.Entity.Resilience)
	}
	if p.Entity.InitialHealth <= 0 || p.Entity.InitialHealth > 100 {
		return fmt.Errorf("initial_health %g outside (0, 100]", p.Entity.InitialHealth)
	}
	if p.Entity.StrugglingHealth >= p.Entity.ThrivingHealth {
		return fmt.Errorf("struggling_health %g must be below thriving_health %g",
			p.Entity.StrugglingHealth, p.Entity.ThrivingHealth)
	}
	if p.Entity.MinReproductionAge < 0 {
		return fmt.Errorf("min_reproduction_age must be non-negative, got %d", p.Entity.MinReproductionAge)
	}
	return nil
}

// WriteYAML writes the resolved profile to a YAML file, for keeping a record
// of the exact coefficients a run used.
func (p *Profile) WriteYAML(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing profile file: %w", err)
	}
	return nil
}
