package recorder

import (
	"time"

	"CompSim/internal/model"
)

// SeasonSnapshot holds everything recorded for one completed season.
type SeasonSnapshot struct {
	RunID      string
	RecordedAt time.Time
	Season     int
	Members    int
	Active     int
	Orphans    int
	Totals     model.Totals
	Summary    model.Summary
	Roster     []*model.Member
}

// SeasonRun is one row of run history.
type SeasonRun struct {
	RunID           string `db:"run_id"`
	Season          int    `db:"season"`
	Timestamp       int64  `db:"timestamp"`
	Members         int    `db:"members"`
	Active          int    `db:"active"`
	Orphans         int    `db:"orphans"`
	PaidThisSeason  int64  `db:"paid_this_season"`
	PaidLifetime    int64  `db:"paid_lifetime"`
	BonusThisSeason int64  `db:"bonus_this_season"`
	BonusLifetime   int64  `db:"bonus_lifetime"`
}

// RecordedAt returns the run timestamp.
func (r SeasonRun) RecordedAt() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// MemberRecord is one member's state at the end of a recorded season.
type MemberRecord struct {
	RunID           string `db:"run_id"`
	Season          int    `db:"season"`
	Name            string `db:"name"`
	Rank            int    `db:"rank"`
	SubtreeSize     int    `db:"subtree_size"`
	BankCount       int    `db:"bank_count"`
	Active          bool   `db:"active"`
	BonusThisSeason int64  `db:"bonus_this_season"`
}

// Recorder persists season history for analysis.
type Recorder interface {
	RecordSeason(snap *SeasonSnapshot) error
	RecentSeasons(limit int) ([]SeasonRun, error)
	SeasonSummary(runID string) (model.Summary, error)
	MemberHistory(name string, limit int) ([]MemberRecord, error)
	Close() error
}
