package network

import (
	"fmt"
	"math"
	"strings"
)

// RelationshipType is the type of a directed edge between two goals.
type RelationshipType string

const (
	// RelChild is a hierarchical parent → child relationship.
	RelChild RelationshipType = "child"
	// RelQueue is a sequential relationship; it never defines hierarchy.
	RelQueue RelationshipType = "queue"
)

// ParseRelationshipType normalizes a relationship type read from storage.
// Backends report types in varying case ("CHILD", "Queue"); the result is
// always lower case. Unknown types are kept as-is so they survive a round trip.
func ParseRelationshipType(s string) RelationshipType {
	return RelationshipType(strings.ToLower(strings.TrimSpace(s)))
}

// IsQueue reports whether the edge type is the sequential queue relationship.
// Case and surrounding space are ignored.
func (r RelationshipType) IsQueue() bool { return ParseRelationshipType(string(r)) == RelQueue }

// IsChild reports whether the edge type is hierarchical. Only child edges
// define parents, levels and descendants; any other type is not.
func (r RelationshipType) IsChild() bool { return ParseRelationshipType(string(r)) == RelChild }

// GoalType is the category of a goal. It is used for styling and filtering only.
type GoalType string

const (
	GoalDirective   GoalType = "directive"
	GoalProject     GoalType = "project"
	GoalAchievement GoalType = "achievement"
	GoalRoutine     GoalType = "routine"
	GoalTask        GoalType = "task"
	GoalEvent       GoalType = "event"
)

// Node is a goal in the network.
//
// PositionX and PositionY hold a previously stored position. Both must be
// present and finite for the node to count as pinned.
type Node struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Label     string   `json:"label,omitempty"`
	GoalType  GoalType `json:"goal_type,omitempty"`
	UserID    int64    `json:"user_id,omitempty"`
	PositionX *float64 `json:"position_x,omitempty"`
	PositionY *float64 `json:"position_y,omitempty"`
}

// Pinned reports whether the node carries a usable stored position.
func (n Node) Pinned() bool {
	return n.PositionX != nil && n.PositionY != nil && finite(*n.PositionX) && finite(*n.PositionY)
}

// Position returns the pinned coordinates. The result is only meaningful
// when Pinned reports true.
func (n Node) Position() (x, y float64) {
	if !n.Pinned() {
		return 0, 0
	}
	return *n.PositionX, *n.PositionY
}

// DisplayLabel returns Label if set, otherwise Name, otherwise the id.
func (n Node) DisplayLabel() string {
	switch {
	case n.Label != "":
		return n.Label
	case n.Name != "":
		return n.Name
	default:
		return fmt.Sprintf("#%d", n.ID)
	}
}

// WithPosition returns a copy of n pinned at (x, y).
func (n Node) WithPosition(x, y float64) Node {
	n.PositionX = &x
	n.PositionY = &y
	return n
}

// Edge is a directed relationship between two goals.
type Edge struct {
	From             int64            `json:"from"`
	To               int64            `json:"to"`
	RelationshipType RelationshipType `json:"relationship_type"`
}

// ID returns the derived edge identifier "{from}-{to}".
// It is not unique when the network holds duplicate edges.
func (e Edge) ID() string { return fmt.Sprintf("%d-%d", e.From, e.To) }

// Graph is a goal network: nodes plus typed edges.
// The zero value is an empty, usable graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Node returns the first node with the given id.
func (g *Graph) Node(id int64) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone returns a deep copy of the graph, including position pointers.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		if n.PositionX != nil {
			x := *n.PositionX
			n.PositionX = &x
		}
		if n.PositionY != nil {
			y := *n.PositionY
			n.PositionY = &y
		}
		out.Nodes[i] = n
	}
	copy(out.Edges, g.Edges)
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
