package network_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/goalnet/pkg/network"
)

func ExampleValidate() {
	g, _ := network.ReadGraph(strings.NewReader(`{
		"nodes": [{"id": 1}, {"id": 2}],
		"edges": [
			{"from": 1, "to": 2, "relationship_type": "child"},
			{"from": 2, "to": 99, "relationship_type": "queue"}
		]
	}`))

	report := network.Validate(g)
	fmt.Println("OK:", report.OK())
	for _, e := range report.Dangling {
		fmt.Println("dangling:", e.ID())
	}
	// Output:
	// OK: false
	// dangling: 2-99
}
