package model

import "time"

// RunState tracks simulation progress across process restarts.
type RunState struct {
	Season        int       `json:"season"`
	LastRunID     string    `json:"last_run_id"`
	LifetimePaid  int64     `json:"lifetime_paid"`
	LifetimeBonus int64     `json:"lifetime_bonus"`
	LastTotals    Totals    `json:"last_totals"`
	LastSummary   Summary   `json:"last_summary"`
	LastRunAt     time.Time `json:"last_run_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
