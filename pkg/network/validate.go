package network

import "slices"

// Report lists structural problems found by [Validate].
// None of them prevents a layout; callers decide whether to surface them.
type Report struct {
	// DuplicateNodes holds ids that appear more than once, in first-seen order.
	DuplicateNodes []int64
	// Dangling holds edges whose source or target is not a node of the graph.
	Dangling []Edge
}

// OK reports whether the graph has no structural problems.
func (r Report) OK() bool { return len(r.DuplicateNodes) == 0 && len(r.Dangling) == 0 }

// Validate checks node id uniqueness and edge endpoints.
func Validate(g *Graph) Report {
	var r Report
	seen := make(map[int64]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			if !slices.Contains(r.DuplicateNodes, n.ID) {
				r.DuplicateNodes = append(r.DuplicateNodes, n.ID)
			}
			continue
		}
		seen[n.ID] = true
	}
	for _, e := range g.Edges {
		if !seen[e.From] || !seen[e.To] {
			r.Dangling = append(r.Dangling, e)
		}
	}
	return r
}

// FilterKinds returns a copy of g without nodes of the excluded goal types
// and without any edge touching a removed node.
func FilterKinds(g *Graph, excluded ...GoalType) *Graph {
	out := &Graph{Nodes: []Node{}, Edges: []Edge{}}
	removed := make(map[int64]bool)
	for _, n := range g.Nodes {
		if slices.Contains(excluded, n.GoalType) {
			removed[n.ID] = true
			continue
		}
		out.Nodes = append(out.Nodes, n)
	}
	for _, e := range g.Edges {
		if removed[e.From] || removed[e.To] {
			continue
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}
