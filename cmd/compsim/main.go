package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"CompSim/internal/config"
	"CompSim/internal/ledger"
	"CompSim/internal/notifier"
	"CompSim/internal/recorder"
	"CompSim/internal/roster"
	"CompSim/internal/scheduler"
	"CompSim/internal/season"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:   "compsim",
		Short: "Simulate a multi-level compensation plan season by season",
		Long: `compsim builds the sponsor tree from a roster, arranges every member's
legs, ranks members and pays the six plan bonuses once per season.

Results are written as CSV per season, recorded to SQLite and tracked in a
JSON ledger so runs can resume.`,
		SilenceUsage: true,
	}
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().String("config", defaultCfg, "Path to the YAML config file")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a fixed number of seasons and write results to disk",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().String("roster", "", "Roster CSV to start from (overrides roster.path)")
	simulateCmd.Flags().Int("seasons", 3, "Number of seasons to run")
	simulateCmd.Flags().String("out", "", "Output directory (overrides roster.output_dir)")
	simulateCmd.Flags().Bool("no-reactivate", false, "Do not charge the activation fee between seasons")
	simulateCmd.Flags().Bool("record", false, "Record each season to the SQLite database")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run seasons on the configured cron and answer Telegram commands",
		RunE:  runServe,
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic roster CSV",
		RunE:  runGenerate,
	}
	generateCmd.Flags().Int("members", 100, "Members in a binary tree roster")
	generateCmd.Flags().Int("tier", 1, "Position tier of binary tree members")
	generateCmd.Flags().IntSlice("layers", nil, "Layered roster: roots, then recruits per member per layer (e.g. 1,5,2,2)")
	generateCmd.Flags().Int64("seed", 1, "Random seed for layered rosters")
	generateCmd.Flags().Int64("fee", 20790, "Activation fee charged to active members")
	generateCmd.Flags().String("out", "data/nodes.csv", "Output roster CSV")
	generateCmd.Flags().Bool("enroll", false, "Also charge each member the enrollment cost of its tier")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the ledger and the carried-forward roster so serve starts at season 1",
		RunE:  runReset,
	}

	rootCmd.AddCommand(simulateCmd, serveCmd, generateCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func driverOptions(cfg *config.Config) (season.Options, error) {
	p, err := cfg.BonusParams()
	if err != nil {
		return season.Options{}, err
	}
	return season.Options{
		Bonus:          p,
		ActivationFee:  cfg.Engine.ActivationFee,
		StrictSponsors: cfg.Engine.StrictSponsors,
	}, nil
}

// rosterSource picks where the first season's members come from. A
// generated roster that was already carried forward is resumed from disk.
func rosterSource(cfg *config.Config, carried string) roster.Source {
	if cfg.Roster.Path != "" {
		return &roster.FileSource{Path: cfg.Roster.Path}
	}
	if carried != "" {
		if _, err := os.Stat(carried); err == nil {
			return &roster.FileSource{Path: carried}
		}
	}
	g := cfg.Roster.Generate
	return &roster.GeneratedSource{
		Members: g.Members,
		Tier:    g.Tier,
		Layers:  g.Layers,
		Seed:    g.Seed,
		Fee:     cfg.Engine.ActivationFee,
		Enroll:  g.Enroll,
	}
}

// carriedRoster is where serve keeps the roster between seasons: the
// configured roster itself, or a file in the output directory when the
// roster is generated.
func carriedRoster(cfg *config.Config) string {
	if cfg.Roster.Path != "" {
		return cfg.Roster.Path
	}
	return filepath.Join(cfg.Roster.OutputDir, "current_nodes.csv")
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return resetRun(cfg)
}

// resetRun zeroes the ledger and removes a generated carried roster. A
// configured roster file is left in place.
func resetRun(cfg *config.Config) error {
	if dir := filepath.Dir(cfg.Ledger.StateFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	lm, err := ledger.NewManager(cfg.Ledger.StateFile)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	if err := lm.Reset(); err != nil {
		return err
	}
	if cfg.Roster.Path == "" {
		carried := carriedRoster(cfg)
		if err := os.Remove(carried); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove carried roster: %w", err)
		}
		log.Printf("[INFO] removed carried roster %s", carried)
	}
	return nil
}

func openRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[WARN] create database dir failed, using noop: %v", err)
			return recorder.NewNoopRecorder()
		}
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Println("[INFO] compsim starting...")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := cfg.ValidateNotifier(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	opts, err := driverOptions(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.Ledger.StateFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	lm, err := ledger.NewManager(cfg.Ledger.StateFile)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	rec := openRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	carried := carriedRoster(cfg)
	src := rosterSource(cfg, carried)
	log.Printf("[INFO] roster source: %s", src.Name())

	runner := &scheduler.Runner{
		Source:     src,
		Options:    opts,
		Reactivate: !cfg.Engine.SkipReactivation,
		OutputDir:  cfg.Roster.OutputDir,
		RosterPath: carried,
		Ledger:     lm,
		Recorder:   rec,
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, runner, tn)
	if err := sched.RegisterAll(cfg.Schedule.SeasonCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing season task now")
		go sched.RunSeasonNow()
	}

	log.Printf("[INFO] compsim is running, next seasons on %q. Press Ctrl+C to stop.", cfg.Schedule.SeasonCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] compsim stopped")
	return nil
}
