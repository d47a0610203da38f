package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CompSim/internal/config"
	"CompSim/internal/ledger"
	"CompSim/internal/model"
	"CompSim/internal/roster"
	"CompSim/internal/scheduler"
	"CompSim/internal/season"
)

func TestRosterSource(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	src := rosterSource(cfg, "")
	assert.IsType(t, &roster.FileSource{}, src)

	cfg.Roster.Path = ""
	cfg.Roster.Generate.Members = 5
	cfg.Roster.Generate.Enroll = true
	src = rosterSource(cfg, filepath.Join(t.TempDir(), "absent.csv"))
	gen, ok := src.(*roster.GeneratedSource)
	require.True(t, ok)
	assert.Equal(t, 5, gen.Members)
	assert.Equal(t, cfg.Engine.ActivationFee, gen.Fee)
	assert.True(t, gen.Enroll)

	carried := filepath.Join(t.TempDir(), "current_nodes.csv")
	require.NoError(t, os.WriteFile(carried, []byte(strings.Join(roster.Header, ",")+"\n"), 0644))
	src = rosterSource(cfg, carried)
	assert.Equal(t, "file:"+carried, src.Name())
}

func TestDriverOptions(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Engine.StrictSponsors = true

	opts, err := driverOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(20790), opts.ActivationFee)
	assert.True(t, opts.StrictSponsors)

	cfg.Bonus.SharingRate = "abc"
	_, err = driverOptions(cfg)
	assert.Error(t, err)
}

func TestPrintSeason(t *testing.T) {
	summary := model.NewSummary()
	summary.Add(model.Breakdown{Product: 10000})
	var buf bytes.Buffer
	printSeason(&buf, &scheduler.Outcome{
		RunID: "r",
		At:    time.Now(),
		Result: &season.Result{
			Season: 1, Members: 9, Active: 9, Summary: summary,
			Totals:  model.Totals{PaidThisSeason: 187110, BonusThisSeason: 13000},
			Orphans: []string{"lost"},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "season 1  members 9  active 9  paid 187,110  bonus 13,000")
	assert.Contains(t, out, "product_free_bonus")
	assert.Contains(t, out, "10,000")
	assert.Contains(t, out, "unknown sponsors: [lost]")
}

func TestOpenRecorder_EmptyPathIsNoop(t *testing.T) {
	rec := openRecorder("")
	runs, err := rec.RecentSeasons(1)
	assert.NoError(t, err)
	assert.Empty(t, runs)

	rec = openRecorder(filepath.Join(t.TempDir(), "db", "compsim.db"))
	defer rec.Close()
	_, err = rec.RecentSeasons(1)
	assert.NoError(t, err)
}

func TestResetRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	cfg.Roster.Path = ""
	cfg.Roster.OutputDir = filepath.Join(dir, "seasons")
	cfg.Ledger.StateFile = filepath.Join(dir, "state", "ledger.json")

	lm, err := ledger.NewManager(cfg.Ledger.StateFile)
	require.NoError(t, err)
	require.NoError(t, lm.Commit("r1", 3, model.Totals{PaidThisSeason: 100}, nil, time.Now()))

	carried := carriedRoster(cfg)
	require.NoError(t, roster.SaveFile(carried, []*model.Member{{Name: "a", PositionTier: 1}}))

	require.NoError(t, resetRun(cfg))

	state, err := ledger.LoadState(cfg.Ledger.StateFile)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Season)
	assert.Zero(t, state.LifetimePaid)
	_, err = os.Stat(carried)
	assert.True(t, os.IsNotExist(err), "carried roster should be removed")

	require.NoError(t, resetRun(cfg), "reset is repeatable")
}

func TestResetRun_KeepsConfiguredRoster(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	cfg.Roster.Path = filepath.Join(dir, "nodes.csv")
	cfg.Ledger.StateFile = filepath.Join(dir, "ledger.json")
	require.NoError(t, roster.SaveFile(cfg.Roster.Path, []*model.Member{{Name: "a", PositionTier: 1}}))

	require.NoError(t, resetRun(cfg))
	_, err = os.Stat(cfg.Roster.Path)
	assert.NoError(t, err)
	assert.Equal(t, cfg.Roster.Path, carriedRoster(cfg))
}
