// Package season runs the per-season pipeline over a member set:
// build, size, arrange, size again, rank, pay, and optionally reactivate.
package season

import (
	"context"
	"errors"
	"fmt"
	"log"

	"CompSim/internal/arrange"
	"CompSim/internal/bonus"
	"CompSim/internal/metrics"
	"CompSim/internal/model"
	"CompSim/internal/tree"
)

var ErrStateTransition = errors.New("invalid state transition")

// State is the driver's position in the season pipeline.
type State int

const (
	StateIdle State = iota
	StateBuilt
	StateSized
	StateArranged
	StateRanked
	StateBonused
	StateReactivated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilt:
		return "built"
	case StateSized:
		return "sized"
	case StateArranged:
		return "arranged"
	case StateRanked:
		return "ranked"
	case StateBonused:
		return "bonused"
	case StateReactivated:
		return "reactivated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configure a Driver.
type Options struct {
	Bonus          bonus.Params
	ActivationFee  int64
	StrictSponsors bool
}

// Result describes one completed season.
type Result struct {
	Season  int
	Members int
	Active  int
	Orphans []string
	Summary model.Summary
	Totals  model.Totals
}

// Driver owns a member set for the duration of a run. It is not safe for
// concurrent use.
type Driver struct {
	members []*model.Member
	opts    Options
	engine  *bonus.Engine

	tree     *tree.Tree
	state    State
	arranged bool
	season   int
	summary  model.Summary
}

// NewDriver validates opts and returns an idle driver over members.
func NewDriver(members []*model.Member, opts Options) (*Driver, error) {
	if err := opts.Bonus.Validate(); err != nil {
		return nil, fmt.Errorf("bonus params: %w", err)
	}
	if opts.ActivationFee < 0 {
		return nil, errors.New("activation fee must not be negative")
	}
	return &Driver{
		members: members,
		opts:    opts,
		engine:  bonus.NewEngine(opts.Bonus),
	}, nil
}

// State returns the current pipeline state.
func (d *Driver) State() State { return d.state }

// Season returns the number of the current or last started season.
func (d *Driver) Season() int { return d.season }

// SetSeason sets the last completed season number, for runs resumed from a ledger.
func (d *Driver) SetSeason(n int) { d.season = n }

// Members returns the member set.
func (d *Driver) Members() []*model.Member { return d.members }

// Tree returns the hierarchy of the current season, or nil before Build.
func (d *Driver) Tree() *tree.Tree { return d.tree }

// Summary returns the bonus summary of the last Bonus stage.
func (d *Driver) Summary() model.Summary { return d.summary }

func (d *Driver) require(stage string, from ...State) error {
	for _, s := range from {
		if d.state == s {
			return nil
		}
	}
	return fmt.Errorf("%s from %s: %w", stage, d.state, ErrStateTransition)
}

// Build rebuilds the hierarchy and starts a new season.
func (d *Driver) Build() error {
	if err := d.require("build", StateIdle, StateBonused, StateReactivated); err != nil {
		return err
	}
	t, err := tree.Build(d.members, tree.Options{StrictSponsors: d.opts.StrictSponsors})
	if err != nil {
		return err
	}
	for _, i := range t.Orphans {
		m := t.Member(i)
		log.Printf("[WARN] member %q names unknown sponsor %q, treating as top of its own tree", m.Name, m.Sponsor)
	}
	d.tree = t
	d.arranged = false
	d.summary = nil
	d.season++
	d.state = StateBuilt
	return nil
}

// Size recomputes subtree sizes. It runs once before and once after Arrange.
func (d *Driver) Size() error {
	if err := d.require("size", StateBuilt, StateArranged); err != nil {
		return err
	}
	metrics.SubtreeSizes(d.tree)
	d.state = StateSized
	return nil
}

// Arrange assigns legs, binary sizes and banks.
func (d *Driver) Arrange() error {
	if err := d.require("arrange", StateSized); err != nil {
		return err
	}
	if d.arranged {
		return fmt.Errorf("arrange twice in season %d: %w", d.season, ErrStateTransition)
	}
	arrange.All(d.tree)
	d.arranged = true
	d.state = StateArranged
	return nil
}

// Rank updates every member's rank from the post-arrangement sizes.
func (d *Driver) Rank() error {
	if err := d.require("rank", StateSized); err != nil {
		return err
	}
	if !d.arranged {
		return fmt.Errorf("rank before arrange in season %d: %w", d.season, ErrStateTransition)
	}
	metrics.UpdateRanks(d.tree)
	d.state = StateRanked
	return nil
}

// Bonus pays the season and returns the per-kind summary.
func (d *Driver) Bonus() (model.Summary, error) {
	if err := d.require("bonus", StateRanked); err != nil {
		return nil, err
	}
	d.summary = d.engine.Apply(d.tree)
	d.state = StateBonused
	return d.summary, nil
}

// Reactivate charges every member the activation fee and marks them active
// for the next season.
func (d *Driver) Reactivate() error {
	if err := d.require("reactivate", StateBonused); err != nil {
		return err
	}
	for _, m := range d.members {
		m.Activate(d.opts.ActivationFee)
	}
	d.state = StateReactivated
	return nil
}

// Totals aggregates paid-in and payouts over all members.
func (d *Driver) Totals() model.Totals {
	return model.SumTotals(d.members)
}

// RunSeason executes one full season. ctx is checked between stages; a
// cancelled season leaves members partially updated and must not be saved.
func (d *Driver) RunSeason(ctx context.Context) (*Result, error) {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"build", d.Build},
		{"size", d.Size},
		{"arrange", d.Arrange},
		{"resize", d.Size},
		{"rank", d.Rank},
		{"bonus", func() error { _, err := d.Bonus(); return err }},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("season %d %s: %w", d.season, s.name, err)
		}
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("season %d %s: %w", d.season, s.name, err)
		}
	}

	res := &Result{
		Season:  d.season,
		Members: len(d.members),
		Summary: d.summary,
		Totals:  d.Totals(),
	}
	for _, m := range d.members {
		if m.Active {
			res.Active++
		}
	}
	for _, i := range d.tree.Orphans {
		res.Orphans = append(res.Orphans, d.tree.Member(i).Name)
	}
	return res, nil
}
