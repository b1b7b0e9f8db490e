package layout

import "github.com/matzehuels/goalnet/pkg/network"

// Point is a 2D position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Role is the structural role that decides a node's placement order.
type Role string

const (
	RoleRoot      Role = "root"
	RoleConnector Role = "connector"
	RoleOther     Role = "other"
	RoleLeaf      Role = "leaf"
	RolePinned    Role = "pinned"
)

// Fixed tells a rendering physics layer not to move a node on either axis.
type Fixed struct {
	X bool `json:"x"`
	Y bool `json:"y"`
}

// Font is the label style of a node.
type Font struct {
	Size  float64 `json:"size"`
	Color string  `json:"color,omitempty"`
}

// NodeColor is the fill and outline of a node.
type NodeColor struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

// PositionedNode is one laid-out node. It is a new record; the input
// network node is never modified.
type PositionedNode struct {
	ID    int64            `json:"id"`
	Label string           `json:"label"`
	Kind  network.GoalType `json:"goal_type,omitempty"`
	X     float64          `json:"x"`
	Y     float64          `json:"y"`

	Size        float64   `json:"size"`
	Font        Font      `json:"font"`
	Color       NodeColor `json:"color"`
	BorderWidth float64   `json:"borderWidth,omitempty"`
	Fixed       Fixed     `json:"fixed"`

	// Pinned reports whether the position came from the input unchanged.
	Pinned      bool `json:"pinned"`
	Role        Role `json:"role"`
	Importance  int  `json:"importance"`
	Descendants int  `json:"descendants"`
}

// Position returns the node coordinates.
func (n PositionedNode) Position() Point { return Point{X: n.X, Y: n.Y} }

// EdgeColor is the stroke of an edge.
type EdgeColor struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Arrow configures one arrow head.
type Arrow struct {
	Enabled     bool    `json:"enabled"`
	ScaleFactor float64 `json:"scaleFactor"`
}

// Arrows holds the arrow heads of an edge.
type Arrows struct {
	To Arrow `json:"to"`
}

// Smooth configures edge curvature.
type Smooth struct {
	Enabled   bool    `json:"enabled"`
	Type      string  `json:"type"`
	Roundness float64 `json:"roundness"`
}

// StyledEdge is one output edge, in input order.
type StyledEdge struct {
	ID               string                   `json:"id"`
	From             int64                    `json:"from"`
	To               int64                    `json:"to"`
	RelationshipType network.RelationshipType `json:"relationship_type"`
	Color            EdgeColor                `json:"color"`
	Width            float64                  `json:"width"`
	Arrows           Arrows                   `json:"arrows"`
	Dashes           bool                     `json:"dashes"`
	Smooth           Smooth                   `json:"smooth"`
}

// Result is the output of a layout run.
type Result struct {
	Nodes []PositionedNode `json:"nodes"`
	Edges []StyledEdge     `json:"edges"`

	// Dangling lists input edges that reference a node outside the network.
	// They are styled and returned in Edges but ignored for placement.
	Dangling []network.Edge `json:"dangling,omitempty"`

	// Saves reports persistence outcomes. Empty when saving was skipped.
	Saves SaveReport `json:"saves"`
}

// Node returns the positioned node with the given id.
func (r *Result) Node(id int64) (PositionedNode, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PositionedNode{}, false
}

// Positions returns the coordinates of every node keyed by id.
func (r *Result) Positions() map[int64]Point {
	out := make(map[int64]Point, len(r.Nodes))
	for _, n := range r.Nodes {
		out[n.ID] = n.Position()
	}
	return out
}

// Graph returns the network with every node pinned at its computed position.
// Merging a result back into stored goals goes through this copy.
func (r *Result) Graph() *network.Graph {
	g := &network.Graph{
		Nodes: make([]network.Node, 0, len(r.Nodes)),
		Edges: make([]network.Edge, 0, len(r.Edges)),
	}
	for _, n := range r.Nodes {
		g.Nodes = append(g.Nodes, network.Node{ID: n.ID, Name: n.Label, GoalType: n.Kind}.WithPosition(n.X, n.Y))
	}
	for _, e := range r.Edges {
		g.Edges = append(g.Edges, network.Edge{From: e.From, To: e.To, RelationshipType: e.RelationshipType})
	}
	return g
}
