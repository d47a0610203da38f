// Package metrics derives subtree sizes and qualification ranks.
package metrics

import "CompSim/internal/tree"

// RankTier is one row of the rank qualification table.
type RankTier struct {
	MinSize     int
	MinChildren int
	Rank        int
}

// RankTable is ascending in both requirements. The highest satisfied row wins.
var RankTable = []RankTier{
	{20, 2, 1},
	{60, 3, 2},
	{200, 4, 3},
	{600, 5, 4},
	{1000, 7, 5},
	{2000, 10, 6},
	{4000, 10, 7},
	{6000, 10, 8},
	{10000, 10, 9},
	{20000, 10, 10},
}

// SubtreeSizes sets SubtreeSize on every member to one plus the sizes of its
// active children. Inactive children, and everything below them, add nothing.
// Inactive members still get their own size.
func SubtreeSizes(t *tree.Tree) {
	for _, i := range t.PostOrder() {
		size := 1
		for _, c := range t.Children(i) {
			if child := t.Member(c); child.Active {
				size += child.SubtreeSize
			}
		}
		t.Member(i).SubtreeSize = size
	}
}

// ActiveChildren counts the active direct recruits of i.
func ActiveChildren(t *tree.Tree, i int) int {
	n := 0
	for _, c := range t.Children(i) {
		if t.Member(c).Active {
			n++
		}
	}
	return n
}

// RankFor maps a subtree size and active direct count to a rank.
func RankFor(size, activeChildren int) int {
	rank := 0
	for _, tier := range RankTable {
		if size >= tier.MinSize && activeChildren >= tier.MinChildren {
			rank = tier.Rank
		}
	}
	return rank
}

// UpdateRank shifts the current rank into PreviousRank and recomputes it
// from the member's SubtreeSize, which must be current.
func UpdateRank(t *tree.Tree, i int) {
	m := t.Member(i)
	m.PreviousRank = m.Rank
	m.Rank = RankFor(m.SubtreeSize, ActiveChildren(t, i))
}

// UpdateRanks applies UpdateRank to every member.
func UpdateRanks(t *tree.Tree) {
	for i := 0; i < t.Len(); i++ {
		UpdateRank(t, i)
	}
}
