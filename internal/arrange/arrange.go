// Package arrange places a member's largest active recruits into leg slots,
// derives the per-pair binary sizes and maintains the carry-over bank.
package arrange

import (
	"sort"

	"CompSim/internal/model"
	"CompSim/internal/tree"
)

// Placement returns the active children of i that occupy its legs, largest
// subtree first. Equal sizes are ordered by name. Children beyond the
// member's leg count are left out.
func Placement(t *tree.Tree, i int) []int {
	kids := t.ActiveChildren(i)
	sort.SliceStable(kids, func(a, b int) bool {
		ma, mb := t.Member(kids[a]), t.Member(kids[b])
		if ma.SubtreeSize != mb.SubtreeSize {
			return ma.SubtreeSize > mb.SubtreeSize
		}
		return ma.Name < mb.Name
	})
	if legs := t.Member(i).Legs(); len(kids) > legs {
		kids = kids[:legs]
	}
	return kids
}

// Node arranges a single active member. Inactive members are left alone.
func Node(t *tree.Tree, i int) {
	m := t.Member(i)
	if !m.Active {
		return
	}
	placed := Placement(t, i)

	// Columns are balanced only once every leg is filled.
	if len(placed) == m.Legs() {
		sizes := make([]int, m.Legs())
		for leg := range placed {
			sizes[leg] = 1
		}
		m.BankCount = balanceColumns(m.BankCount, sizes)
	}

	m.BinarySize = [model.LegPairs]int{}
	for k := 0; k < m.PairCount(); k++ {
		l, r := 2*k, 2*k+1
		if r >= len(placed) {
			break
		}
		left := t.Member(placed[l]).SubtreeSize
		right := t.Member(placed[r]).SubtreeSize
		m.BinarySize[k] = (min(left, right) - 1) * 2
		m.BankCount = processBank(m.BankCount, left, right)
	}
}

// All arranges every active member and clears binary sizes of inactive ones.
func All(t *tree.Tree) {
	for i := 0; i < t.Len(); i++ {
		if m := t.Member(i); !m.Active {
			m.BinarySize = [model.LegPairs]int{}
			continue
		}
		Node(t, i)
	}
}

// balanceColumns spends bank credits on legs shorter than the longest one,
// left to right, then banks the spread above the pre-spend minimum.
func balanceColumns(bank int, sizes []int) int {
	if len(sizes) == 0 {
		return clampBank(bank)
	}
	lo, hi := sizes[0], sizes[0]
	for _, s := range sizes[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}

	for leg := range sizes {
		if bank == 0 {
			break
		}
		if sizes[leg] < hi {
			sizes[leg]++
			bank--
		}
	}

	diff := 0
	for _, s := range sizes {
		if s > lo {
			diff += s - lo
		}
	}
	return clampBank(bank + diff)
}

// processBank lifts the smaller side of a pair with bank credits, then banks
// up to two units of whatever gap remains.
func processBank(bank, left, right int) int {
	if left == right {
		return bank
	}
	for bank > 0 && right < left {
		right++
		bank--
	}
	if gap := min(left-right, model.MaxBank); gap > 0 {
		bank = clampBank(bank + gap)
	}
	return bank
}

func clampBank(bank int) int {
	return max(0, min(bank, model.MaxBank))
}
