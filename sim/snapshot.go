package sim

import "log/slog"

// Snapshot is the read-only view of one completed epoch. It carries
// everything an observer needs; nothing in it aliases live simulation state.
type Snapshot struct {
	World string
	Epoch int

	Alive      int
	Thriving   int
	Nominal    int
	Struggling int
	Births     int
	Deaths     int

	// Deepest generation among the living.
	MaxGeneration int

	MeanHealth float64
	MeanEnergy float64

	// Raw per-entity samples at epoch end, in store order. Consumers derive
	// distributions from these; the slices are fresh copies every epoch.
	HealthSamples []float64
	EnergySamples []float64

	ResourceAvailability float64
	Pollution            float64
	CarryingCapacity     float64
	Trend                float64

	Event string
}

// LogValue renders the snapshot as a compact structured log record.
func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("epoch", s.Epoch),
		slog.Int("alive", s.Alive),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Float64("mean_health", s.MeanHealth),
		slog.Float64("resources", s.ResourceAvailability),
		slog.Float64("capacity", s.CarryingCapacity),
	}
	if s.Event != "" {
		attrs = append(attrs, slog.String("event", s.Event))
	}
	return slog.GroupValue(attrs...)
}

// Summary aggregates a finished run.
type Summary struct {
	World        string
	Epochs       int
	TotalSpawned int
	TotalBirths  int
	TotalDeaths  int
	MaxAlive     int
	FinalAlive   int
	BabyBooms    int
	Extinct      bool
}

// Summary returns the run-level aggregates accumulated so far.
func (s *Simulation) Summary() Summary {
	alive := s.countAlive()
	return Summary{
		World:        s.profile.Name,
		Epochs:       s.epoch,
		TotalSpawned: s.totalSpawned,
		TotalBirths:  s.totalBirths,
		TotalDeaths:  s.totalDeaths,
		MaxAlive:     s.maxAlive,
		FinalAlive:   alive,
		BabyBooms:    s.boomCount,
		Extinct:      alive == 0,
	}
}
