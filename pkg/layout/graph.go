package layout

import (
	"sort"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/network"
)

// index is the adjacency view of a network used during one layout run.
// Nodes are addressed by their position in the input slice.
type index struct {
	nodes []network.Node
	byID  map[int64]int

	children [][]int // child edges, parent -> child
	parents  [][]int // child edges, child -> parent
	queueOut [][]int
	queueIn  [][]int

	// Edges of any other type link two goals without hierarchy or sequence.
	// They count towards importance and pull neighbours together.
	linkOut [][]int
	linkIn  [][]int

	// valid[k] reports whether input edge k has both endpoints present.
	valid    []bool
	dangling []network.Edge
}

func buildIndex(g *network.Graph) (*index, error) {
	n := len(g.Nodes)
	ix := &index{
		nodes:    g.Nodes,
		byID:     make(map[int64]int, n),
		children: make([][]int, n),
		parents:  make([][]int, n),
		queueOut: make([][]int, n),
		queueIn:  make([][]int, n),
		linkOut:  make([][]int, n),
		linkIn:   make([][]int, n),
		valid:    make([]bool, len(g.Edges)),
	}
	for i, node := range g.Nodes {
		if _, dup := ix.byID[node.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %d", node.ID)
		}
		ix.byID[node.ID] = i
	}
	for k, e := range g.Edges {
		from, okFrom := ix.byID[e.From]
		to, okTo := ix.byID[e.To]
		if !okFrom || !okTo {
			ix.dangling = append(ix.dangling, e)
			continue
		}
		ix.valid[k] = true
		switch {
		case e.RelationshipType.IsChild():
			ix.children[from] = append(ix.children[from], to)
			ix.parents[to] = append(ix.parents[to], from)
		case e.RelationshipType.IsQueue():
			ix.queueOut[from] = append(ix.queueOut[from], to)
			ix.queueIn[to] = append(ix.queueIn[to], from)
		default:
			ix.linkOut[from] = append(ix.linkOut[from], to)
			ix.linkIn[to] = append(ix.linkIn[to], from)
		}
	}
	return ix, nil
}

func (ix *index) len() int { return len(ix.nodes) }

func (ix *index) pinned(i int) bool { return ix.nodes[i].Pinned() }

// importance is the total degree of a node across all edge kinds.
func (ix *index) importance(i int) int {
	return len(ix.children[i]) + len(ix.parents[i]) + len(ix.queueOut[i]) + len(ix.queueIn[i]) +
		len(ix.linkOut[i]) + len(ix.linkIn[i])
}

// score ranks nodes inside a placement class. Higher is placed earlier.
func (ix *index) score(i int) float64 {
	out := float64(len(ix.children[i]) + len(ix.queueOut[i]))
	in := float64(len(ix.parents[i]) + len(ix.queueIn[i]))
	s := 2*out + in
	if len(ix.parents[i]) > 0 && len(ix.children[i]) > 0 {
		s += bridgeBonus
	}
	if out > in {
		s -= imbalancePenalty * (out - in)
	} else {
		s -= imbalancePenalty * (in - out)
	}
	return s
}

// roots returns nodes without an incoming child edge, in input order.
// A network where every node has a parent falls back to its first node.
func (ix *index) roots() []int {
	var out []int
	for i := range ix.nodes {
		if len(ix.parents[i]) == 0 {
			out = append(out, i)
		}
	}
	if len(out) == 0 && ix.len() > 0 {
		out = []int{0}
	}
	return out
}

// roles classifies every node.
func (ix *index) roles() []Role {
	roles := make([]Role, ix.len())
	for _, r := range ix.roots() {
		roles[r] = RoleRoot
	}
	for i := range ix.nodes {
		switch {
		case ix.pinned(i):
			roles[i] = RolePinned
		case roles[i] == RoleRoot:
		case len(ix.parents[i]) > 0 && len(ix.children[i])+len(ix.queueOut[i]) > 0:
			roles[i] = RoleConnector
		case len(ix.children[i]) == 0 && len(ix.queueOut[i]) == 0:
			roles[i] = RoleLeaf
		default:
			roles[i] = RoleOther
		}
	}
	return roles
}

// order returns the unpinned nodes in placement order: roots, connectors,
// others, leaves. Each class is sorted by descending score, then by id.
func (ix *index) order(roles []Role) []int {
	classes := map[Role][]int{}
	for i, r := range roles {
		if r == RolePinned {
			continue
		}
		classes[r] = append(classes[r], i)
	}
	out := make([]int, 0, ix.len())
	for _, r := range []Role{RoleRoot, RoleConnector, RoleOther, RoleLeaf} {
		class := classes[r]
		sort.SliceStable(class, func(a, b int) bool {
			sa, sb := ix.score(class[a]), ix.score(class[b])
			if sa != sb {
				return sa > sb
			}
			return ix.nodes[class[a]].ID < ix.nodes[class[b]].ID
		})
		out = append(out, class...)
	}
	return out
}

// neighbours returns every node connected to i by any edge, without
// duplicates, in a fixed order.
func (ix *index) neighbours(i int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, list := range [][]int{ix.parents[i], ix.children[i], ix.queueIn[i], ix.queueOut[i], ix.linkIn[i], ix.linkOut[i]} {
		for _, j := range list {
			if j == i || seen[j] {
				continue
			}
			seen[j] = true
			out = append(out, j)
		}
	}
	return out
}

// descendants counts the nodes reachable from i over child edges.
// Cycles are cut by the visited set.
func (ix *index) descendants(i int) int {
	visited := make([]bool, ix.len())
	visited[i] = true
	queue := append([]int(nil), ix.children[i]...)
	count := 0
	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		if visited[j] {
			continue
		}
		visited[j] = true
		count++
		queue = append(queue, ix.children[j]...)
	}
	return count
}
