package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/goalnet/pkg/layout"
)

// PointsPerInch converts layout pixels to DOT inches.
const PointsPerInch = 72.0

// Options configures diagram generation.
type Options struct {
	// Detailed adds role, importance and descendant count to node labels.
	Detailed bool
}

// ToDOT converts a layout result to Graphviz DOT. Nodes are written in
// result order and edges in input order, so the output is deterministic.
func ToDOT(res *layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph goals {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	if res == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	for _, n := range res.Nodes {
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range res.Edges {
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\" [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.PositionedNode, detailed bool) string {
	label := n.Label
	if label == "" {
		label = fmt.Sprint(n.ID)
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nrole: %s\nimportance: %d\ndescendants: %d",
		label, n.Role, n.Importance, n.Descendants)
}

func nodeAttrs(n layout.PositionedNode, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=\"%s!\"", fmtPos(n.X, n.Y)),
	}
	if n.Color.Background != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Color.Background))
	}
	if n.Color.Border != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", n.Color.Border))
	}
	if n.Font.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", n.Font.Color))
	}
	if n.Font.Size > 0 {
		attrs = append(attrs, fmt.Sprintf("fontsize=%s", fmtNum(n.Font.Size)))
	}
	if n.BorderWidth > 0 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%s", fmtNum(n.BorderWidth)))
	}
	return attrs
}

func edgeAttrs(e layout.StyledEdge) []string {
	var attrs []string
	if e.Color.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", withAlpha(e.Color.Color, e.Color.Opacity)))
	}
	if e.Width > 0 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%s", fmtNum(e.Width)))
	}
	if e.Arrows.To.Enabled {
		attrs = append(attrs, fmt.Sprintf("arrowsize=%s", fmtNum(e.Arrows.To.ScaleFactor)))
	} else {
		attrs = append(attrs, "arrowhead=none")
	}
	if e.Dashes {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// fmtPos converts pixel coordinates (y down) to DOT inches (y up).
func fmtPos(x, y float64) string {
	return fmtNum(x/PointsPerInch) + "," + fmtNum(-y/PointsPerInch)
}

func fmtNum(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// withAlpha appends an alpha byte to a #rrggbb colour. Other colour
// spellings are returned unchanged.
func withAlpha(color string, opacity float64) string {
	if len(color) != 7 || color[0] != '#' || opacity <= 0 || opacity >= 1 {
		return color
	}
	return fmt.Sprintf("%s%02x", color, int(opacity*255+0.5))
}
