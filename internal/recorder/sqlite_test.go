package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CompSim/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "compsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func snapshot(runID string, season int, at time.Time) *SeasonSnapshot {
	summary := model.NewSummary()
	summary.Add(model.Breakdown{Riseup: 3000, Product: 10000})
	return &SeasonSnapshot{
		RunID:      runID,
		RecordedAt: at,
		Season:     season,
		Members:    2,
		Active:     1,
		Totals:     model.Totals{PaidThisSeason: 41580, PaidLifetime: 41580, BonusThisSeason: 13000, BonusLifetime: 13000},
		Summary:    summary,
		Roster: []*model.Member{
			{Name: "root", Rank: 1, SubtreeSize: 2, BankCount: 1, Active: true, BonusThisSeason: 13000},
			{Name: "kid", SubtreeSize: 1},
		},
	}
}

func TestSQLiteRecorder_RecordAndQuery(t *testing.T) {
	r := openTemp(t)
	base := time.Unix(1700000000, 0)

	require.NoError(t, r.RecordSeason(snapshot("run-1", 1, base)))
	require.NoError(t, r.RecordSeason(snapshot("run-2", 2, base.Add(time.Hour))))

	runs, err := r.RecentSeasons(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, 2, runs[0].Season)
	assert.Equal(t, int64(13000), runs[0].BonusThisSeason)
	assert.Equal(t, base.Add(time.Hour).Unix(), runs[0].RecordedAt().Unix())

	runs, err = r.RecentSeasons(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	s, err := r.SeasonSummary("run-1")
	require.NoError(t, err)
	assert.Equal(t, model.KindTotal{Amount: 10000, Count: 1}, s[model.BonusProduct])
	assert.Equal(t, model.KindTotal{}, s[model.BonusHouse])

	hist, err := r.MemberHistory("root", 5)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 2, hist[0].Season)
	assert.True(t, hist[0].Active)
	assert.Equal(t, int64(13000), hist[0].BonusThisSeason)

	hist, err = r.MemberHistory("kid", 5)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.False(t, hist[0].Active)
}

func TestSQLiteRecorder_DuplicateRunRollsBack(t *testing.T) {
	r := openTemp(t)
	at := time.Unix(1700000000, 0)
	require.NoError(t, r.RecordSeason(snapshot("run-1", 1, at)))
	assert.Error(t, r.RecordSeason(snapshot("run-1", 2, at)))

	hist, err := r.MemberHistory("root", 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1, "failed run left member rows")
}

func TestSQLiteRecorder_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compsim.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordSeason(snapshot("run-1", 1, time.Now())))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	runs, err := r.RecentSeasons(5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordSeason(snapshot("x", 1, time.Now())))
	runs, err := r.RecentSeasons(3)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, r.Close())
}
