package roster

import (
	"fmt"
	"math/rand"

	"CompSim/internal/model"
)

// InactiveRate is the share of generated non-root members that start inactive.
const InactiveRate = 0.1

func nodeName(n int) string {
	return fmt.Sprintf("Node_%d", n)
}

// GenerateBinary returns n active members of one tier, wired as a near
// complete binary tree: member i is sponsored by member (i-1)/2.
func GenerateBinary(n, tier int) []*model.Member {
	members := make([]*model.Member, n)
	for i := range members {
		m := &model.Member{Name: nodeName(i + 1), PositionTier: tier, Active: true}
		if i > 0 {
			m.Sponsor = nodeName((i-1)/2 + 1)
		}
		members[i] = m
	}
	return members
}

// GenerateLayered builds a tree layer by layer. layers[0] is the number of
// roots; layers[k] is how many recruits each member of layer k-1 gets.
// Tiers are drawn uniformly and non-root members are inactive with
// probability InactiveRate.
func GenerateLayered(layers []int, rng *rand.Rand) []*model.Member {
	if len(layers) == 0 {
		return nil
	}
	var members []*model.Member
	next := 1
	add := func(sponsor string, active bool) *model.Member {
		m := &model.Member{
			Name:         nodeName(next),
			PositionTier: model.PositionTiers[rng.Intn(len(model.PositionTiers))],
			Active:       active,
			Sponsor:      sponsor,
		}
		next++
		members = append(members, m)
		return m
	}

	var prev []*model.Member
	for i := 0; i < layers[0]; i++ {
		prev = append(prev, add("", true))
	}
	for _, width := range layers[1:] {
		var cur []*model.Member
		for _, parent := range prev {
			for j := 0; j < width; j++ {
				cur = append(cur, add(parent.Name, rng.Float64() >= InactiveRate))
			}
		}
		prev = cur
	}
	return members
}
