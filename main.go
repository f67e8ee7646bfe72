package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jtkiii/lifeform/config"
	"github.com/jtkiii/lifeform/sim"
	"github.com/jtkiii/lifeform/telemetry"
)

func main() {
	// CLI flags
	worldName := flag.String("world", "default", "World profile to simulate")
	listWorlds := flag.Bool("list-worlds", false, "List available world profiles and exit")
	catalogPath := flag.String("worlds-file", "", "Path to a worlds YAML overlay (empty = built-in catalog)")
	epochs := flag.Int("epochs", 100, "Number of epochs to run")
	entities := flag.Int("entities", 20, "Initial entity count")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for the epoch journal and profile snapshot")
	logStats := flag.Bool("log-stats", false, "Output per-epoch stats via slog")
	compare := flag.Int("compare", 0, "Print a comparison of the last N recorded runs and exit")
	totalsPath := flag.String("totals-file", telemetry.TotalsFile, "Path of the cumulative run totals journal")
	quiet := flag.Bool("quiet", false, "Suppress per-epoch log output")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *compare > 0 {
		out, err := telemetry.CompareLastRuns(*totalsPath, *compare)
		if err != nil {
			slog.Error("failed to read run totals", "error", err)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	catalog, err := config.Load(*catalogPath)
	if err != nil {
		slog.Error("failed to load world catalog", "error", err)
		os.Exit(1)
	}

	if *listWorlds {
		for _, name := range catalog.Names() {
			desc, _ := catalog.Describe(name)
			fmt.Printf("%-22s %s\n", name, desc)
		}
		return
	}

	profile, err := catalog.Profile(*worldName)
	if err != nil {
		slog.Error("unknown world", "world", *worldName, "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := sim.New(profile, sim.Options{
		Seed:            rngSeed,
		InitialEntities: *entities,
		Epochs:          *epochs,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteProfile(profile); err != nil {
		slog.Error("failed to write profile snapshot", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	summary := s.Run(func(snap sim.Snapshot) {
		stats := telemetry.FromSnapshot(snap)
		if *logStats {
			stats.LogStats()
		}
		if err := output.WriteEpoch(stats); err != nil {
			slog.Error("failed to write epoch journal", "error", err)
			os.Exit(1)
		}
	})

	slog.Info("run complete",
		"world", summary.World,
		"epochs", summary.Epochs,
		"spawned", humanize.Comma(int64(summary.TotalSpawned)),
		"births", humanize.Comma(int64(summary.TotalBirths)),
		"deaths", humanize.Comma(int64(summary.TotalDeaths)),
		"max_alive", summary.MaxAlive,
		"final_alive", summary.FinalAlive,
		"baby_booms", summary.BabyBooms,
		"extinct", summary.Extinct,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	totals := telemetry.TotalsFromSummary(summary, rngSeed)
	path := *totalsPath
	if *outputDir != "" && path == telemetry.TotalsFile {
		path = filepath.Join(*outputDir, telemetry.TotalsFile)
	}
	if err := telemetry.AppendTotals(path, totals); err != nil {
		slog.Error("failed to record run totals", "error", err)
		os.Exit(1)
	}
}
