package render_test

import (
	"fmt"

	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/render"
)

func ExampleToDOT() {
	res := &layout.Result{
		Nodes: []layout.PositionedNode{
			{ID: 1, Label: "Run a marathon", Color: layout.NodeColor{Background: "#1565c0", Border: "#0d47a1"},
				Font: layout.Font{Size: 14, Color: "#ffffff"}, BorderWidth: 2},
			{ID: 2, Label: "Train", Y: 420},
		},
		Edges: []layout.StyledEdge{
			{ID: "1-2", From: 1, To: 2, Color: layout.EdgeColor{Color: "#1565c0", Opacity: 0.5}, Width: 2,
				Arrows: layout.Arrows{To: layout.Arrow{Enabled: true, ScaleFactor: 0.75}}},
		},
	}

	fmt.Print(render.ToDOT(res, render.Options{}))
	// Output:
	// digraph goals {
	//   bgcolor="transparent";
	//   splines=true;
	//   outputorder=edgesfirst;
	//   node [shape=box, style="rounded,filled", margin="0.2,0.1"];
	//
	//   "1" [label="Run a marathon", pos="0,0!", fillcolor="#1565c0", color="#0d47a1", fontcolor="#ffffff", fontsize=14, penwidth=2];
	//   "2" [label="Train", pos="0,-5.83!"];
	//
	//   "1" -> "2" [color="#1565c080", penwidth=2, arrowsize=0.75];
	// }
}
