package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CompSim/internal/bonus"
	"CompSim/internal/ledger"
	"CompSim/internal/model"
	"CompSim/internal/recorder"
	"CompSim/internal/roster"
	"CompSim/internal/season"
)

const fee = 20790

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.err
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Load(context.Context) ([]*model.Member, error) {
	return nil, errors.New("disk on fire")
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	dir := t.TempDir()
	lm, err := ledger.NewManager(filepath.Join(dir, "ledger.json"))
	require.NoError(t, err)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "compsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	return &Runner{
		Source:     &roster.GeneratedSource{Members: 9, Tier: 1, Fee: fee},
		Options:    season.Options{Bonus: bonus.DefaultParams(), ActivationFee: fee},
		Reactivate: true,
		OutputDir:  filepath.Join(dir, "seasons"),
		RosterPath: filepath.Join(dir, "nodes.csv"),
		Ledger:     lm,
		Recorder:   rec,
	}
}

func TestRunner_PersistsEachSeason(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()

	first, err := r.RunSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Result.Season)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, int64(9*fee), first.Result.Totals.PaidThisSeason)

	second, err := r.RunSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Result.Season)
	assert.NotEqual(t, first.RunID, second.RunID)

	state := r.Ledger.GetState()
	assert.Equal(t, 2, state.Season)
	assert.Equal(t, second.RunID, state.LastRunID)
	assert.Equal(t, first.Result.Totals.PaidThisSeason+second.Result.Totals.PaidThisSeason, state.LifetimePaid)

	for _, n := range []int{1, 2} {
		nodes, points := roster.SeasonFiles(r.OutputDir, n)
		assert.FileExists(t, nodes)
		assert.FileExists(t, points)
	}

	saved, err := roster.LoadFile(r.RosterPath)
	require.NoError(t, err)
	require.Len(t, saved, 9)
	assert.Equal(t, int64(3*fee), saved[0].PaidLifetime, "generated fee plus two reactivations")

	runs, err := r.Recorder.RecentSeasons(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunner_ResumesFromLedger(t *testing.T) {
	r := newRunner(t)
	require.NoError(t, r.Ledger.Commit("old", 7, model.Totals{}, nil, r.Ledger.GetState().UpdatedAt))

	out, err := r.RunSeason(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, out.Result.Season)
}

func TestRunner_WithoutLedgerCountsInMemory(t *testing.T) {
	r := &Runner{
		Source:  &roster.GeneratedSource{Members: 3, Fee: fee},
		Options: season.Options{Bonus: bonus.DefaultParams(), ActivationFee: fee},
	}
	for want := 1; want <= 3; want++ {
		out, err := r.RunSeason(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, out.Result.Season)
	}
	assert.Len(t, r.Members(), 3)
}

func TestRunner_SourceFailure(t *testing.T) {
	r := &Runner{Source: failingSource{}, Options: season.Options{Bonus: bonus.DefaultParams(), ActivationFee: fee}}
	_, err := r.RunSeason(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Nil(t, r.Members())
}

func TestScheduler_SeasonCommandReports(t *testing.T) {
	r := newRunner(t)
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), r, sender)

	assert.Equal(t, "", s.HandleCommand("/season"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Season 1")

	reply := s.HandleCommand("/summary")
	assert.Contains(t, reply, "Last season: 1")

	reply = s.HandleCommand("/history")
	assert.Contains(t, reply, "#1 ")

	reply = s.HandleCommand("/member Node_1")
	assert.Contains(t, reply, "<b>Node_1</b>")
	assert.Contains(t, s.HandleCommand("/member"), "Usage")
	assert.Contains(t, s.HandleCommand("hello"), "/season")
	assert.Contains(t, s.HandleCommand(""), "/season")
}

func TestScheduler_FailureIsReported(t *testing.T) {
	r := &Runner{Source: failingSource{}, Options: season.Options{Bonus: bonus.DefaultParams(), ActivationFee: fee}}
	sender := &fakeSender{}
	s := NewScheduler(context.Background(), r, sender)

	s.RunSeasonNow()
	require.Len(t, sender.sent, 1)
	assert.True(t, strings.HasPrefix(sender.sent[0], "❌"))
	assert.Contains(t, s.HandleCommand("/summary"), "not configured")
	assert.Contains(t, s.HandleCommand("/history"), "No recorded seasons")
}

func TestScheduler_RegisterRejectsBadCron(t *testing.T) {
	s := NewScheduler(context.Background(), &Runner{}, nil)
	assert.Error(t, s.RegisterAll("not a cron"))
	assert.NoError(t, s.RegisterAll("0 0 9 1 1,4,7,10 *"))
}

func TestRunner_OutputDirCreated(t *testing.T) {
	r := newRunner(t)
	_, err := r.RunSeason(context.Background())
	require.NoError(t, err)
	info, err := os.Stat(r.OutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
