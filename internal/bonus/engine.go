// Package bonus computes the six per-member bonus kinds of a season.
package bonus

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"CompSim/internal/model"
	"CompSim/internal/tree"
)

// MatchingBase selects which of a recruit's bonuses the matching bonus is
// a share of.
type MatchingBase string

const (
	MatchOnProduct MatchingBase = "product"
	MatchOnRiseup  MatchingBase = "riseup"
)

// Params are the plan's rates and payouts.
type Params struct {
	// LevelRates are the rise-up rates per 4 binary units, lowest level first.
	LevelRates [4]decimal.Decimal

	Matching MatchingBase
	// MatchingRates apply to recruits, their recruits and the generation below.
	MatchingRates [3]decimal.Decimal

	CarRank    int
	CarBonus   int64
	HouseRank  int
	HouseBonus int64

	// SharingRank earns SharingRate; ranks above it earn SharingUpperRate.
	SharingRank      int
	SharingRate      decimal.Decimal
	SharingUpperRate decimal.Decimal
}

// DefaultParams returns the standard plan.
func DefaultParams() Params {
	return Params{
		LevelRates: [4]decimal.Decimal{
			decimal.NewFromInt(3000),
			decimal.NewFromInt(4000),
			decimal.NewFromInt(5000),
			decimal.NewFromInt(2000),
		},
		Matching: MatchOnProduct,
		MatchingRates: [3]decimal.Decimal{
			decimal.RequireFromString("0.15"),
			decimal.RequireFromString("0.05"),
			decimal.RequireFromString("0.05"),
		},
		CarRank:          4,
		CarBonus:         100000,
		HouseRank:        5,
		HouseBonus:       150000,
		SharingRank:      3,
		SharingRate:      decimal.RequireFromString("0.01"),
		SharingUpperRate: decimal.RequireFromString("0.002"),
	}
}

// Validate checks the params are usable.
func (p Params) Validate() error {
	switch p.Matching {
	case MatchOnProduct, MatchOnRiseup:
	default:
		return fmt.Errorf("unknown matching base %q", p.Matching)
	}
	for i, r := range p.LevelRates {
		if r.IsNegative() {
			return fmt.Errorf("level rate %d is negative", i+1)
		}
	}
	for i, r := range p.MatchingRates {
		if r.IsNegative() {
			return fmt.Errorf("matching rate %d is negative", i+1)
		}
	}
	if p.SharingRate.IsNegative() || p.SharingUpperRate.IsNegative() {
		return errors.New("sharing rates must not be negative")
	}
	if p.CarBonus < 0 || p.HouseBonus < 0 {
		return errors.New("car and house bonuses must not be negative")
	}
	return nil
}

// Engine applies a set of Params to a sized, arranged and ranked tree.
type Engine struct {
	Params Params
}

// NewEngine creates an Engine.
func NewEngine(p Params) *Engine {
	return &Engine{Params: p}
}

// base returns the per-member amount the matching bonus is computed from.
// Inactive members contribute nothing.
func (e *Engine) base(t *tree.Tree) []int64 {
	base := make([]int64, t.Len())
	for i := range base {
		m := t.Member(i)
		if !m.Active {
			continue
		}
		if e.Params.Matching == MatchOnRiseup {
			base[i] = Riseup(m, e.Params)
		} else {
			base[i] = Product(m)
		}
	}
	return base
}

// Evaluate computes the six kinds for member i.
func (e *Engine) Evaluate(t *tree.Tree, i int, base []int64, totalPaid int64) model.Breakdown {
	m := t.Member(i)
	return model.Breakdown{
		Riseup:   Riseup(m, e.Params),
		Product:  Product(m),
		Matching: Matching(t, i, base, e.Params),
		Car:      Car(m, e.Params),
		House:    House(m, e.Params),
		Sharing:  Sharing(m, totalPaid, e.Params),
	}
}

// Apply pays every active member for the season and returns the per-kind
// summary. Inactive members are paid nothing this season.
func (e *Engine) Apply(t *tree.Tree) model.Summary {
	var totalPaid int64
	for _, m := range t.Members {
		totalPaid += m.PaidThisSeason
	}
	base := e.base(t)

	summary := model.NewSummary()
	for i, m := range t.Members {
		if !m.Active {
			m.Bonuses = model.Breakdown{}
			m.BonusThisSeason = 0
			continue
		}
		b := e.Evaluate(t, i, base, totalPaid)
		m.Bonuses = b
		m.BonusThisSeason = b.Total()
		m.BonusLifetime += m.BonusThisSeason
		summary.Add(b)
	}
	return summary
}
