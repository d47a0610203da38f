// Package tree turns a flat member list with sponsor names into an indexed
// arena of parent and child links.
package tree

import (
	"errors"
	"fmt"

	"CompSim/internal/model"
)

var (
	ErrDuplicateMember = errors.New("duplicate member name")
	ErrUnknownSponsor  = errors.New("unknown sponsor")
	ErrCycle           = errors.New("sponsor cycle")
)

// NoParent marks an index without a resolved sponsor.
const NoParent = -1

// Tree owns the sponsor edges of a member set. Members are addressed by
// their position in Members.
type Tree struct {
	Members []*model.Member

	// Roots are members with no sponsor, in input order.
	Roots []int
	// Orphans name a sponsor that is not in the set. They get no edge and
	// are not roots, but traversal starts from them too.
	Orphans []int

	index    map[string]int
	children [][]int
	parent   []int
	order    []int
}

// Options controls how Build treats unresolved sponsors.
type Options struct {
	StrictSponsors bool
}

// Build links every member to its sponsor and validates the result is a forest.
func Build(members []*model.Member, opts Options) (*Tree, error) {
	t := &Tree{
		Members:  members,
		index:    make(map[string]int, len(members)),
		children: make([][]int, len(members)),
		parent:   make([]int, len(members)),
	}
	for i, m := range members {
		if _, dup := t.index[m.Name]; dup {
			return nil, fmt.Errorf("build tree: %w: %q", ErrDuplicateMember, m.Name)
		}
		t.index[m.Name] = i
		t.children[i] = []int{}
		t.parent[i] = NoParent
	}

	for i, m := range members {
		if m.Sponsor == "" {
			t.Roots = append(t.Roots, i)
			continue
		}
		p, ok := t.index[m.Sponsor]
		if !ok {
			if opts.StrictSponsors {
				return nil, fmt.Errorf("build tree: %w: %q sponsored by %q", ErrUnknownSponsor, m.Name, m.Sponsor)
			}
			t.Orphans = append(t.Orphans, i)
			continue
		}
		t.addChild(p, i)
	}

	order, err := t.postOrder()
	if err != nil {
		return nil, err
	}
	t.order = order
	return t, nil
}

func (t *Tree) addChild(p, c int) {
	for _, existing := range t.children[p] {
		if existing == c {
			return
		}
	}
	t.children[p] = append(t.children[p], c)
	t.parent[c] = p
}

// postOrder walks from every root and orphan with an explicit stack. Any
// member left unvisited can only be on a sponsor cycle.
func (t *Tree) postOrder() ([]int, error) {
	type frame struct {
		node int
		next int
	}
	order := make([]int, 0, len(t.Members))
	visited := make([]bool, len(t.Members))

	starts := make([]int, 0, len(t.Roots)+len(t.Orphans))
	starts = append(starts, t.Roots...)
	starts = append(starts, t.Orphans...)

	for _, s := range starts {
		stack := []frame{{node: s}}
		visited[s] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := t.children[top.node]
			if top.next < len(kids) {
				c := kids[top.next]
				top.next++
				if !visited[c] {
					visited[c] = true
					stack = append(stack, frame{node: c})
				}
				continue
			}
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	if len(order) != len(t.Members) {
		for i, seen := range visited {
			if !seen {
				return nil, fmt.Errorf("build tree: %w through %q", ErrCycle, t.Members[i].Name)
			}
		}
	}
	return order, nil
}

// Len returns the number of members.
func (t *Tree) Len() int { return len(t.Members) }

// Member returns the member at index i.
func (t *Tree) Member(i int) *model.Member { return t.Members[i] }

// Children returns the direct recruits of i in insertion order. The slice
// must not be modified.
func (t *Tree) Children(i int) []int { return t.children[i] }

// Parent returns the sponsor index of i, or NoParent.
func (t *Tree) Parent(i int) int { return t.parent[i] }

// PostOrder returns every index with children ahead of their parent.
func (t *Tree) PostOrder() []int { return t.order }

// ActiveChildren returns the active direct recruits of i.
func (t *Tree) ActiveChildren(i int) []int {
	var out []int
	for _, c := range t.children[i] {
		if t.Members[c].Active {
			out = append(out, c)
		}
	}
	return out
}
