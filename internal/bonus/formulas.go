package bonus

import (
	"github.com/shopspring/decimal"

	"CompSim/internal/model"
	"CompSim/internal/tree"
)

// Band is one piecewise-linear segment of the rise-up bonus. A binary size
// in [Lo, Hi] pays the full units of every lower level plus Level's rate for
// each 4 units above Over.
type Band struct {
	Lo, Hi int
	Over   int
	Level  int
}

// RiseupBands are the rise-up segments. Sizes falling between bands pay nothing.
var RiseupBands = []Band{
	{Lo: 4, Hi: 60, Over: 0, Level: 0},
	{Lo: 64, Hi: 200, Over: 60, Level: 1},
	{Lo: 204, Hi: 2000, Over: 200, Level: 2},
	{Lo: 2004, Hi: 20000, Over: 2000, Level: 3},
}

// RiseupCap is the binary size above which the rise-up bonus is saturated.
const RiseupCap = 20000

// levelUnits is how many 4-unit steps each level holds when fully consumed.
var levelUnits = [4]int64{15, 35, 450, 4500}

// ProductPayouts are the exact-match flat product bonuses.
var ProductPayouts = []struct {
	BinarySize int
	Amount     int64
}{
	{4, 10000},
	{8, 7000},
	{12, 4000},
	{16, 1000},
}

var four = decimal.NewFromInt(4)

// carried returns the full payout of every level below level.
func carried(level int, rates [4]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for l := 0; l < level; l++ {
		sum = sum.Add(rates[l].Mul(decimal.NewFromInt(levelUnits[l])))
	}
	return sum
}

// riseupLeg is the untruncated rise-up bonus for one binary size.
func riseupLeg(size int, rates [4]decimal.Decimal) decimal.Decimal {
	if size > RiseupCap {
		return carried(len(levelUnits), rates)
	}
	for _, b := range RiseupBands {
		if size < b.Lo || size > b.Hi {
			continue
		}
		step := rates[b.Level].Mul(decimal.NewFromInt(int64(size - b.Over))).Div(four)
		return carried(b.Level, rates).Add(step)
	}
	return decimal.Zero
}

// Riseup is the tiered binary bonus summed over the member's qualifying leg
// pairs, truncated once.
func Riseup(m *model.Member, p Params) int64 {
	sum := decimal.Zero
	for k := 0; k < m.PairCount(); k++ {
		sum = sum.Add(riseupLeg(m.BinarySize[k], p.LevelRates))
	}
	return sum.IntPart()
}

func productLeg(size int) int64 {
	for _, pp := range ProductPayouts {
		if pp.BinarySize == size {
			return pp.Amount
		}
	}
	return 0
}

// Product is the flat product bonus summed over qualifying leg pairs.
func Product(m *model.Member) int64 {
	var sum int64
	for k := 0; k < m.PairCount(); k++ {
		sum += productLeg(m.BinarySize[k])
	}
	return sum
}

// Matching pays a share of the base bonus of active recruits three
// generations deep. base is indexed like the tree's members. A generation is
// only reached through active members.
func Matching(t *tree.Tree, i int, base []int64, p Params) int64 {
	sum := decimal.Zero
	for _, c := range t.ActiveChildren(i) {
		sum = sum.Add(p.MatchingRates[0].Mul(decimal.NewFromInt(base[c])))
		for _, g := range t.ActiveChildren(c) {
			sum = sum.Add(p.MatchingRates[1].Mul(decimal.NewFromInt(base[g])))
			for _, gg := range t.ActiveChildren(g) {
				sum = sum.Add(p.MatchingRates[2].Mul(decimal.NewFromInt(base[gg])))
			}
		}
	}
	return sum.IntPart()
}

// Car pays when the member held CarRank for two consecutive seasons.
func Car(m *model.Member, p Params) int64 {
	if m.Rank >= p.CarRank && m.PreviousRank >= p.CarRank {
		return p.CarBonus
	}
	return 0
}

// House pays when the member held HouseRank for two consecutive seasons.
func House(m *model.Member, p Params) int64 {
	if m.Rank >= p.HouseRank && m.PreviousRank >= p.HouseRank {
		return p.HouseBonus
	}
	return 0
}

// Sharing is the member's cut of the season's total paid-in.
func Sharing(m *model.Member, totalPaid int64, p Params) int64 {
	var rate decimal.Decimal
	switch {
	case m.Rank == p.SharingRank:
		rate = p.SharingRate
	case m.Rank > p.SharingRank:
		rate = p.SharingUpperRate
	default:
		return 0
	}
	return decimal.NewFromInt(totalPaid).Mul(rate).IntPart()
}
