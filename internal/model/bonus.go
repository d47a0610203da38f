package model

// BonusKind names one of the six bonus categories.
type BonusKind string

const (
	BonusRiseup   BonusKind = "riseup_binary_bonus"
	BonusProduct  BonusKind = "product_free_bonus"
	BonusMatching BonusKind = "matching_bonus"
	BonusCar      BonusKind = "car_bonus"
	BonusHouse    BonusKind = "house_bonus"
	BonusSharing  BonusKind = "sharing_bonus"
)

// BonusKinds lists every kind in reporting order.
var BonusKinds = []BonusKind{
	BonusRiseup, BonusProduct, BonusMatching, BonusCar, BonusHouse, BonusSharing,
}

// Breakdown holds one member's amounts per bonus kind for a season.
type Breakdown struct {
	Riseup   int64
	Product  int64
	Matching int64
	Car      int64
	House    int64
	Sharing  int64
}

// Get returns the amount for kind.
func (b Breakdown) Get(kind BonusKind) int64 {
	switch kind {
	case BonusRiseup:
		return b.Riseup
	case BonusProduct:
		return b.Product
	case BonusMatching:
		return b.Matching
	case BonusCar:
		return b.Car
	case BonusHouse:
		return b.House
	case BonusSharing:
		return b.Sharing
	}
	return 0
}

// Total is the sum of all six kinds.
func (b Breakdown) Total() int64 {
	return b.Riseup + b.Product + b.Matching + b.Car + b.House + b.Sharing
}

// KindTotal aggregates one bonus kind across a run.
type KindTotal struct {
	Amount int64 `json:"amount"`
	Count  int   `json:"count"` // members receiving more than zero
}

// Summary maps each bonus kind to its run-wide aggregate.
type Summary map[BonusKind]KindTotal

// NewSummary returns a summary with every kind present at zero.
func NewSummary() Summary {
	s := make(Summary, len(BonusKinds))
	for _, k := range BonusKinds {
		s[k] = KindTotal{}
	}
	return s
}

// Add folds one member's breakdown into the summary.
func (s Summary) Add(b Breakdown) {
	for _, k := range BonusKinds {
		amount := b.Get(k)
		if amount <= 0 {
			continue
		}
		kt := s[k]
		kt.Amount += amount
		kt.Count++
		s[k] = kt
	}
}

// Totals are the season-level paid-in and payout aggregates.
type Totals struct {
	PaidThisSeason  int64 `json:"paid_this_season"`
	PaidLifetime    int64 `json:"paid_lifetime"`
	BonusThisSeason int64 `json:"bonus_this_season"`
	BonusLifetime   int64 `json:"bonus_lifetime"`
}

// SumTotals aggregates the accumulators of all members.
func SumTotals(members []*Member) Totals {
	var t Totals
	for _, m := range members {
		t.PaidThisSeason += m.PaidThisSeason
		t.PaidLifetime += m.PaidLifetime
		t.BonusThisSeason += m.BonusThisSeason
		t.BonusLifetime += m.BonusLifetime
	}
	return t
}
