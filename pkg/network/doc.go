// Package network provides the goal network model and its wire format.
//
// A network is the set of a user's goals (nodes) and the typed relationships
// between them (edges). It is the input of the layout engine in pkg/layout
// and the unit stored by pkg/store.
//
// # Relationship Types
//
// Only two relationship types carry meaning:
//
//	network.RelChild  // "child": hierarchical parent → child
//	network.RelQueue  // "queue": sequential, non-hierarchical
//
// Child edges define levels and ancestry. Queue edges are drawn dashed and
// never take part in hierarchy computation.
//
// # Serialization
//
// Networks use the node-link JSON format served by the goals backend:
//
//	{
//	  "nodes": [{"id": 1, "name": "Health", "goal_type": "directive"},
//	            {"id": 2, "name": "Run", "goal_type": "routine", "position_x": 100, "position_y": 200}],
//	  "edges": [{"from": 1, "to": 2, "relationship_type": "child"}]
//	}
//
// Common operations:
//
//	g, _ := network.ReadGraphFile("network.json")
//	network.WriteGraphFile(g, "copy.json")
//	report := network.Validate(g)
//
// # Pinned Positions
//
// A node whose position_x and position_y are both present and finite is
// pinned: the layout engine keeps it where it is. See [Node.Pinned].
package network
