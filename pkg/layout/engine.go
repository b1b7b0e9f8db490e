package layout

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/goalnet/pkg/network"
	"github.com/matzehuels/goalnet/pkg/observability"
)

var discardLogger = log.New(io.Discard)

// Engine lays out goal networks. The zero value is usable: it saves
// nothing, styles nodes with DefaultPalette and logs nowhere.
type Engine struct {
	// Saver receives newly computed positions. Nil disables persistence.
	Saver PositionSaver

	// Styler supplies node colours. Nil means DefaultPalette.
	Styler NodeStyler

	Logger *log.Logger
}

// New creates an Engine that persists through saver.
func New(saver PositionSaver, logger *log.Logger) *Engine {
	return &Engine{Saver: saver, Logger: logger}
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return discardLogger
	}
	return e.Logger
}

func (e *Engine) styler() NodeStyler {
	if e.Styler == nil {
		return DefaultPalette
	}
	return e.Styler
}

// Layout computes positions for g and, unless opts.SkipSave is set,
// persists every node that was not pinned on input. It returns once all
// saves have settled. The input graph is never modified.
//
// Errors are returned only for input that cannot be laid out at all:
// duplicate node ids or invalid options. Cycles, disconnected components and
// dangling edges are handled.
func (e *Engine) Layout(ctx context.Context, g *network.Graph, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	res, err := e.Compute(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	if !opts.SkipSave {
		res.Saves = e.Save(ctx, res, opts)
	}
	return res, nil
}

// Compute is the pure part of Layout: it never calls the saver.
func (e *Engine) Compute(ctx context.Context, g *network.Graph, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if g == nil {
		g = &network.Graph{}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(opts.Algorithm), len(g.Nodes))
	start := time.Now()
	res, err := e.compute(g, opts)
	elapsed := time.Since(start)
	hooks.OnLayoutComplete(ctx, string(opts.Algorithm), elapsed, err)
	if err != nil {
		return nil, err
	}
	e.logger().Debug("layout computed", "algorithm", opts.Algorithm, "nodes", len(res.Nodes), "edges", len(res.Edges), "took", elapsed)
	return res, nil
}

func (e *Engine) compute(g *network.Graph, opts Options) (*Result, error) {
	ix, err := buildIndex(g)
	if err != nil {
		return nil, err
	}
	for _, d := range ix.dangling {
		e.logger().Warn("edge references unknown node", "edge", d.ID(), "type", d.RelationshipType)
	}

	roles := ix.roles()
	pos := greedy(ix, ix.order(roles), opts.BaseSpacing)
	if opts.Algorithm == AlgorithmForce {
		pos = simulate(ix, pos, opts)
	}

	importance := make([]int, ix.len())
	descendants := make([]int, ix.len())
	for i := range ix.nodes {
		importance[i] = ix.importance(i)
		descendants[i] = ix.descendants(i)
	}

	res := &Result{
		Nodes:    make([]PositionedNode, ix.len()),
		Edges:    make([]StyledEdge, len(g.Edges)),
		Dangling: ix.dangling,
	}
	styler := e.styler()
	for i, n := range ix.nodes {
		size, font, color := styleNode(styler.NodeStyle(n), importance[i])
		res.Nodes[i] = PositionedNode{
			ID:          n.ID,
			Label:       n.DisplayLabel(),
			Kind:        n.GoalType,
			X:           pos[i].X,
			Y:           pos[i].Y,
			Size:        size,
			Font:        font,
			Color:       color,
			BorderWidth: 2,
			Fixed:       Fixed{X: true, Y: true},
			Pinned:      n.Pinned(),
			Role:        roles[i],
			Importance:  importance[i],
			Descendants: descendants[i],
		}
	}

	seen := make(map[string]int, len(g.Edges))
	for k, edge := range g.Edges {
		id := edge.ID()
		if c := seen[id]; c > 0 {
			id = fmt.Sprintf("%s#%d", id, c)
		}
		seen[edge.ID()]++

		var fromImp, toImp, toDesc int
		if i, ok := ix.byID[edge.From]; ok {
			fromImp = importance[i]
		}
		if i, ok := ix.byID[edge.To]; ok {
			toImp = importance[i]
			if ix.valid[k] {
				toDesc = descendants[i]
			}
		}
		res.Edges[k] = styleEdge(edge, id, edgeImportance(fromImp, toImp, toDesc))
	}
	return res, nil
}

// Save persists every node of res that was not pinned on input.
func (e *Engine) Save(ctx context.Context, res *Result, opts Options) SaveReport {
	targets := SaveTargets(res)
	if len(targets) == 0 {
		return SaveReport{}
	}
	if e.Saver == nil {
		e.logger().Debug("no position store configured, skipping save", "nodes", len(targets))
		return SaveReport{}
	}
	start := time.Now()
	report := SaveAll(ctx, e.Saver, e.logger(), targets, opts.SaveConcurrency)
	e.logger().Debug("positions saved", "saved", len(report.Saved), "failed", len(report.Failed), "took", time.Since(start))
	return report
}

// SaveTargets returns the positions of every node that was computed rather
// than pinned, in node order.
func SaveTargets(res *Result) []SaveTarget {
	var out []SaveTarget
	for _, n := range res.Nodes {
		if n.Pinned {
			continue
		}
		out = append(out, SaveTarget{ID: n.ID, X: n.X, Y: n.Y})
	}
	return out
}
