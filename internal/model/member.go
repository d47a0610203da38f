package model

// Position tiers a member can hold. The tier fixes how many legs (tier+1)
// the member's binary structure uses.
var PositionTiers = []int{1, 3, 5, 7}

// MaxBank is the upper bound of a member's carry-over bank.
const MaxBank = 2

// LegPairs is the number of binary leg pairs tracked per member (legs 1, 3, 5, 7).
const LegPairs = 4

// Member is one participant in the compensation plan.
type Member struct {
	Name         string
	PositionTier int
	Active       bool
	Sponsor      string // empty for a root
	BankCount    int

	SubtreeSize  int
	Rank         int
	PreviousRank int

	// BinarySize[k] is the binary size of leg pair k (leg 2k+1).
	BinarySize [LegPairs]int

	PaidThisSeason  int64
	PaidLifetime    int64
	BonusThisSeason int64
	BonusLifetime   int64

	// Bonuses is the per-kind split of BonusThisSeason.
	Bonuses Breakdown
}

// ValidTier reports whether tier is one of PositionTiers.
func ValidTier(tier int) bool {
	for _, t := range PositionTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Legs returns the number of leg slots the member's tier provides.
func (m *Member) Legs() int {
	return m.PositionTier + 1
}

// PairCount returns how many leg pairs the member's tier qualifies for.
func (m *Member) PairCount() int {
	n := m.Legs() / 2
	if n > LegPairs {
		n = LegPairs
	}
	return n
}

// Activate pays the season fee and marks the member active. Already active
// members pay again.
func (m *Member) Activate(fee int64) {
	m.PaidThisSeason = fee
	m.PaidLifetime += fee
	m.Active = true
}

// Enroll sets the position tier and charges its cost. Unknown tiers are ignored.
func (m *Member) Enroll(tier int, costs map[int]int64) {
	cost, ok := costs[tier]
	if !ok || !ValidTier(tier) {
		return
	}
	m.PositionTier = tier
	m.PaidThisSeason += cost
	m.PaidLifetime += cost
}

// DefaultPositionCosts are the enrollment prices per tier.
var DefaultPositionCosts = map[int]int64{
	1: 41580,
	3: 82060,
	5: 122540,
	7: 163020,
}
