// Command demiurge runs the belief-society simulation and its API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/demiurge/internal/api"
	"github.com/talgya/demiurge/internal/config"
	"github.com/talgya/demiurge/internal/guardrail"
	"github.com/talgya/demiurge/internal/moderation"
	"github.com/talgya/demiurge/internal/persistence"
	"github.com/talgya/demiurge/internal/sim"
)

var (
	cfgPath string
	worldID string
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "demiurge",
		Short: "Belief-society simulation with a divine control plane",
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation loop and HTTP API",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&worldID, "world", "", "existing world ID to resume (default: newest, or genesis)")

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create a world and save it without running",
		RunE:  runSeed,
	}

	worlds := &cobra.Command{
		Use:   "worlds",
		Short: "List saved worlds",
		RunE:  runWorlds,
	}

	root.AddCommand(serve, seed, worlds)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (*persistence.DB, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", cfg.Database.Path)
	return db, nil
}

// buildSim resumes the requested world or creates a fresh one.
func buildSim(cfg *config.Config, db *persistence.DB) (*sim.Simulation, error) {
	gateOpts := []guardrail.Option{
		guardrail.WithAudit(guardrail.MultiLogger{
			guardrail.SlogLogger{},
			persistence.NewAuditLogger(db),
		}),
	}
	if mc := moderation.NewClient(cfg.Moderation.Endpoint, cfg.Moderation.APIKey); mc.Enabled() {
		gateOpts = append(gateOpts, guardrail.WithClassifier(mc))
		slog.Info("remote moderation enabled", "endpoint", cfg.Moderation.Endpoint)
	}
	gate := guardrail.New(gateOpts...)

	if worldID != "" {
		id, err := uuid.Parse(worldID)
		if err != nil {
			return nil, fmt.Errorf("invalid world id %q: %w", worldID, err)
		}
		return sim.Load(db, id, sim.WithGate(gate))
	}

	existing, err := db.ListWorlds()
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		latest := existing[len(existing)-1]
		return sim.Load(db, latest.ID, sim.WithGate(gate))
	}

	s := sim.Genesis(cfg.World.Name, cfg.World.Population, cfg.World.Seed,
		sim.WithStore(db), sim.WithGate(gate))
	if err := s.Save(); err != nil {
		return nil, fmt.Errorf("initial save: %w", err)
	}
	return s, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := buildSim(cfg, db)
	if err != nil {
		return err
	}

	interval, err := cfg.TickInterval()
	if err != nil {
		return err
	}
	runner := sim.NewRunner(s, interval)
	runner.Speed = cfg.Loop.Speed

	server := &api.Server{
		Sim:      s,
		Runner:   runner,
		Port:     cfg.API.Port,
		AdminKey: cfg.API.AdminKey,
	}
	server.Start()

	go runner.Run()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	runner.Stop()
	if err := s.Save(); err != nil {
		slog.Error("final save failed", "error", err)
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	s := sim.Genesis(cfg.World.Name, cfg.World.Population, cfg.World.Seed,
		sim.WithStore(db))
	if err := s.Save(); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	fmt.Printf("world %s created: %s citizens, seed %d\n",
		s.World.ID, humanize.Comma(int64(len(s.Citizens))), cfg.World.Seed)
	return nil
}

func runWorlds(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	worlds, err := db.ListWorlds()
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		fmt.Println("no worlds saved")
		return nil
	}
	for _, w := range worlds {
		fmt.Printf("%s  %-20s tick %-10s instability %.2f (%s)\n",
			w.ID, w.Name, humanize.Comma(int64(w.Tick)), w.Instability, w.InstabilityTrend)
	}
	return nil
}
