// Package render draws laid-out goal networks as node-link diagrams.
//
// # Overview
//
// Layout decides every coordinate, so rendering only has to reproduce it.
// [ToDOT] writes Graphviz DOT with each node pinned at its computed
// position (pos="x,y!") and [RenderSVG] runs the neato engine, which keeps
// pinned nodes where they are and only routes the edges.
//
//	res, _ := engine.Layout(ctx, g, layout.Options{SkipSave: true})
//	dot := render.ToDOT(res, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Styling
//
// Node fill, border and font colour come straight from the layout result,
// as do edge colour, opacity, width, arrow size and dashes, so the SVG
// matches what an interactive canvas would show.
//
// # Coordinates
//
// Layout coordinates are canvas pixels with y growing downward. DOT
// positions are inches with y growing upward, so ToDOT divides by
// [PointsPerInch] and flips the y axis.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package render
