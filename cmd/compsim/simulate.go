package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"CompSim/internal/model"
	"CompSim/internal/recorder"
	"CompSim/internal/roster"
	"CompSim/internal/scheduler"
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("roster"); path != "" {
		cfg.Roster.Path = path
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Roster.OutputDir = out
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	seasons, _ := cmd.Flags().GetInt("seasons")
	if seasons <= 0 {
		return fmt.Errorf("--seasons must be positive, got %d", seasons)
	}
	noReactivate, _ := cmd.Flags().GetBool("no-reactivate")
	record, _ := cmd.Flags().GetBool("record")

	opts, err := driverOptions(cfg)
	if err != nil {
		return err
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if record {
		rec = openRecorder(cfg.Database.SQLitePath)
	}
	defer rec.Close()

	runner := &scheduler.Runner{
		Source:     rosterSource(cfg, ""),
		Options:    opts,
		Reactivate: !noReactivate && !cfg.Engine.SkipReactivation,
		OutputDir:  cfg.Roster.OutputDir,
		Recorder:   rec,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i := 0; i < seasons; i++ {
		out, err := runner.RunSeason(ctx)
		if err != nil {
			return err
		}
		printSeason(cmd.OutOrStdout(), out)
	}
	log.Printf("[INFO] wrote %d seasons to %s", seasons, cfg.Roster.OutputDir)
	return nil
}

func printSeason(w io.Writer, out *scheduler.Outcome) {
	res := out.Result
	fmt.Fprintf(w, "season %d  members %d  active %d  paid %s  bonus %s\n",
		res.Season, res.Members, res.Active,
		humanize.Comma(res.Totals.PaidThisSeason), humanize.Comma(res.Totals.BonusThisSeason))
	for _, k := range model.BonusKinds {
		kt := res.Summary[k]
		fmt.Fprintf(w, "  %-20s %14s  %d\n", k, humanize.Comma(kt.Amount), kt.Count)
	}
	if len(res.Orphans) > 0 {
		fmt.Fprintf(w, "  unknown sponsors: %v\n", res.Orphans)
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	members, _ := cmd.Flags().GetInt("members")
	tier, _ := cmd.Flags().GetInt("tier")
	layers, _ := cmd.Flags().GetIntSlice("layers")
	seed, _ := cmd.Flags().GetInt64("seed")
	fee, _ := cmd.Flags().GetInt64("fee")
	out, _ := cmd.Flags().GetString("out")
	enroll, _ := cmd.Flags().GetBool("enroll")

	src := &roster.GeneratedSource{Members: members, Tier: tier, Layers: layers, Seed: seed, Fee: fee, Enroll: enroll}
	generated, err := src.Load(cmd.Context())
	if err != nil {
		return err
	}
	if err := roster.SaveFile(out, generated); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	log.Printf("[INFO] generated %d members (%s) into %s", len(generated), src.Name(), out)
	return nil
}
