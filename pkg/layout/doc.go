// Package layout computes 2D positions for a goal network.
//
// The engine takes a [network.Graph] (goals plus typed child/queue edges)
// and returns positioned, styled nodes and edges suitable for a node-link
// canvas. Nodes that already carry a stored position are pinned: they keep
// their coordinates exactly, but still take part in spacing for every other
// node.
//
// # Algorithm
//
// Layout runs in one pass per node, in a fixed placement order:
//
//  1. Edges are split into a child adjacency (both directions) and a queue
//     adjacency. Queue edges never define hierarchy.
//  2. Roots are nodes without an incoming child edge. If there are none
//     (the network is one big cycle) the first node is used as the root.
//  3. Every other node is classified as connector, other, or leaf, and each
//     class is ordered by a centrality score (degree, bridge bonus, balance
//     penalty), then by id.
//  4. Pinned nodes are placed first. Each remaining node is placed near the
//     centrality-weighted average of its already placed neighbours, offset
//     vertically so children settle below parents, or on a golden-ratio
//     spiral when it has no placed neighbour yet.
//  5. The candidate position is pushed away from every placed node closer
//     than the minimum distance, then corrected against its nearest neighbour
//     for at most [MaxCorrections] rounds. A node still too close after
//     that searches bounded rings of slots around itself for a free spot.
//
// With [AlgorithmForce] the greedy positions seed a bounded force
// simulation (pairwise inverse-square repulsion, springs along edges,
// degree-weighted gravity toward the origin, damped velocity). Pinned nodes
// never move in either mode, and both modes are deterministic.
//
// # Coordinates
//
// The canvas uses screen coordinates: x grows to the right and y grows
// downward. The first unpinned node without neighbours lands on the origin.
//
// # Persistence
//
// When [Options.SkipSave] is false and the [Engine] has a [PositionSaver],
// every newly positioned node is saved concurrently once the layout is
// complete. A failed save is logged and reported in [SaveReport]; it never
// fails the layout.
//
// # Example
//
//	engine := layout.New(store, logger)
//	res, err := engine.Layout(ctx, g, layout.Options{BaseSpacing: 400})
//	if err != nil {
//	    return err
//	}
//	for _, n := range res.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y)
//	}
package layout
