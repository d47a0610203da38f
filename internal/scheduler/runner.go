package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"CompSim/internal/ledger"
	"CompSim/internal/model"
	"CompSim/internal/recorder"
	"CompSim/internal/roster"
	"CompSim/internal/season"
)

// Outcome is one completed and persisted season.
type Outcome struct {
	RunID  string
	At     time.Time
	Result *season.Result
}

// Runner runs seasons back to back over one member set and persists each.
// The member set is loaded from Source on first use and carried forward in
// memory. A failed season drops it so the next run reloads.
type Runner struct {
	Source  roster.Source
	Options season.Options

	// Reactivate charges every member the activation fee after each season.
	Reactivate bool
	// OutputDir receives <season>_nodes.csv and <season>_points.csv.
	OutputDir string
	// RosterPath, if set, is rewritten with the carried-forward roster.
	RosterPath string

	Ledger   *ledger.Manager
	Recorder recorder.Recorder

	mu      sync.Mutex
	members []*model.Member
	season  int
}

// Members returns the carried-forward member set, or nil before the first run.
func (r *Runner) Members() []*model.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members
}

func (r *Runner) load(ctx context.Context) ([]*model.Member, error) {
	if r.members != nil {
		return r.members, nil
	}
	if r.Source == nil {
		return nil, errors.New("no roster source configured")
	}
	members, err := r.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster from %s: %w", r.Source.Name(), err)
	}
	log.Printf("[INFO] loaded %d members from %s", len(members), r.Source.Name())
	return members, nil
}

func (r *Runner) lastSeason() int {
	if r.Ledger != nil {
		return r.Ledger.Season()
	}
	return r.season
}

// RunSeason runs and persists the next season. Runs are serialized.
func (r *Runner) RunSeason(ctx context.Context) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	d, err := season.NewDriver(members, r.Options)
	if err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	d.SetSeason(r.lastSeason())

	res, err := d.RunSeason(ctx)
	if err != nil {
		r.members = nil
		return nil, err
	}
	out := &Outcome{RunID: uuid.NewString(), At: time.Now(), Result: res}
	log.Printf("[INFO] season %d done: %d/%d active, paid in %d, paid out %d",
		res.Season, res.Active, res.Members, res.Totals.PaidThisSeason, res.Totals.BonusThisSeason)

	if r.OutputDir != "" {
		nodes, points := roster.SeasonFiles(r.OutputDir, res.Season)
		if err := roster.SaveFile(nodes, members); err != nil {
			r.members = nil
			return nil, fmt.Errorf("save season roster: %w", err)
		}
		if err := roster.SaveTotalsFile(points, res.Totals); err != nil {
			r.members = nil
			return nil, fmt.Errorf("save season points: %w", err)
		}
	}

	if r.Recorder != nil {
		if err := r.Recorder.RecordSeason(&recorder.SeasonSnapshot{
			RunID:      out.RunID,
			RecordedAt: out.At,
			Season:     res.Season,
			Members:    res.Members,
			Active:     res.Active,
			Orphans:    len(res.Orphans),
			Totals:     res.Totals,
			Summary:    res.Summary,
			Roster:     members,
		}); err != nil {
			log.Printf("[ERROR] record season %d: %v", res.Season, err)
		}
	}

	if r.Ledger != nil {
		if err := r.Ledger.Commit(out.RunID, res.Season, res.Totals, res.Summary, out.At); err != nil {
			r.members = nil
			return nil, fmt.Errorf("commit season %d: %w", res.Season, err)
		}
	}
	r.season = res.Season

	if r.Reactivate {
		if err := d.Reactivate(); err != nil {
			r.members = nil
			return nil, fmt.Errorf("reactivate: %w", err)
		}
	}
	if r.RosterPath != "" {
		if err := roster.SaveFile(r.RosterPath, members); err != nil {
			log.Printf("[ERROR] save roster %s: %v", r.RosterPath, err)
		}
	}
	r.members = members
	return out, nil
}
