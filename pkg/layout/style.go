package layout

import (
	"math"

	"github.com/matzehuels/goalnet/pkg/network"
)

// NodeStyle is the colour set of one node, as supplied by a NodeStyler.
type NodeStyle struct {
	BackgroundColor string `json:"backgroundColor" toml:"background"`
	Border          string `json:"border" toml:"border"`
	TextColor       string `json:"textColor" toml:"text"`
	BorderColor     string `json:"borderColor" toml:"border_color"`
}

// NodeStyler maps a node to its colours. Implementations must be pure.
type NodeStyler interface {
	NodeStyle(network.Node) NodeStyle
}

// NodeStylerFunc adapts a function to NodeStyler.
type NodeStylerFunc func(network.Node) NodeStyle

func (f NodeStylerFunc) NodeStyle(n network.Node) NodeStyle { return f(n) }

// KindStyler looks colours up by goal type. Unknown kinds get the entry
// stored under the empty goal type, or DefaultNodeStyle.
type KindStyler map[network.GoalType]NodeStyle

func (k KindStyler) NodeStyle(n network.Node) NodeStyle {
	if s, ok := k[n.GoalType]; ok {
		return s
	}
	if s, ok := k[""]; ok {
		return s
	}
	return DefaultNodeStyle
}

// DefaultNodeStyle is used for goal types without a palette entry.
var DefaultNodeStyle = NodeStyle{
	BackgroundColor: "#eceff1",
	Border:          "#90a4ae",
	TextColor:       "#263238",
	BorderColor:     "#78909c",
}

// DefaultPalette is the built-in KindStyler.
var DefaultPalette = KindStyler{
	network.GoalDirective:   {BackgroundColor: "#ede7f6", Border: "#5e35b1", TextColor: "#311b92", BorderColor: "#4527a0"},
	network.GoalProject:     {BackgroundColor: "#e3f2fd", Border: "#1e88e5", TextColor: "#0d47a1", BorderColor: "#1565c0"},
	network.GoalAchievement: {BackgroundColor: "#fff8e1", Border: "#ffb300", TextColor: "#ff6f00", BorderColor: "#ffa000"},
	network.GoalRoutine:     {BackgroundColor: "#e8f5e9", Border: "#43a047", TextColor: "#1b5e20", BorderColor: "#2e7d32"},
	network.GoalTask:        {BackgroundColor: "#fce4ec", Border: "#d81b60", TextColor: "#880e4f", BorderColor: "#ad1457"},
	network.GoalEvent:       {BackgroundColor: "#e0f7fa", Border: "#00acc1", TextColor: "#006064", BorderColor: "#00838f"},
}

// Visual ranges.
const (
	MinNodeSize  = 20.0
	MaxNodeSize  = 50.0
	MinFontSize  = 14.0
	MaxFontSize  = 24.0
	MinEdgeWidth = 1.0
	MaxEdgeWidth = 6.0
	MinOpacity   = 0.35
	MaxOpacity   = 1.0

	// QueueEdgeColor is used for every queue edge regardless of importance.
	QueueEdgeColor = "#9e9e9e"

	saturationScale = 6.0
)

// childEdgeColors grade hierarchy edges from light to dark.
var childEdgeColors = []string{"#90a4ae", "#607d8b", "#455a64", "#263238"}

// saturate maps [0, ∞) monotonically onto [0, 1).
func saturate(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return 1 - math.Exp(-v/saturationScale)
}

func lerp(lo, hi, t float64) float64 { return lo + (hi-lo)*t }

func styleNode(s NodeStyle, importance int) (size float64, font Font, color NodeColor) {
	t := saturate(float64(importance))
	size = lerp(MinNodeSize, MaxNodeSize, t)
	font = Font{Size: lerp(MinFontSize, MaxFontSize, t), Color: s.TextColor}
	border := s.BorderColor
	if border == "" {
		border = s.Border
	}
	color = NodeColor{Background: s.BackgroundColor, Border: border}
	return size, font, color
}

// edgeImportance combines the average endpoint importance with the size
// of the subtree below the target.
func edgeImportance(fromImp, toImp, toDescendants int) float64 {
	return float64(fromImp+toImp)/2 + math.Sqrt(float64(toDescendants))
}

func styleEdge(e network.Edge, id string, importance float64) StyledEdge {
	t := saturate(importance)
	out := StyledEdge{
		ID:               id,
		From:             e.From,
		To:               e.To,
		RelationshipType: e.RelationshipType,
		Width:            lerp(MinEdgeWidth, MaxEdgeWidth, t),
		Arrows:           Arrows{To: Arrow{Enabled: true, ScaleFactor: lerp(0.5, 1, t)}},
	}
	if e.RelationshipType.IsQueue() {
		out.Color = EdgeColor{Color: QueueEdgeColor, Opacity: lerp(MinOpacity, MaxOpacity, t)}
		out.Dashes = true
		out.Smooth = Smooth{Enabled: true, Type: "curvedCW", Roundness: 0.2}
		return out
	}
	shade := int(t * float64(len(childEdgeColors)))
	if shade >= len(childEdgeColors) {
		shade = len(childEdgeColors) - 1
	}
	out.Color = EdgeColor{Color: childEdgeColors[shade], Opacity: lerp(MinOpacity, MaxOpacity, t)}
	out.Smooth = Smooth{Enabled: true, Type: "cubicBezier", Roundness: 0.4}
	return out
}
