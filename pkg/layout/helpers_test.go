package layout

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/matzehuels/goalnet/pkg/network"
)

func node(id int64) network.Node {
	return network.Node{ID: id, Name: "goal"}
}

func pinned(id int64, x, y float64) network.Node {
	return node(id).WithPosition(x, y)
}

func child(from, to int64) network.Edge {
	return network.Edge{From: from, To: to, RelationshipType: network.RelChild}
}

func queue(from, to int64) network.Edge {
	return network.Edge{From: from, To: to, RelationshipType: network.RelQueue}
}

// sampleGraph is a small mixed network: two trees joined by a queue edge,
// one isolated node and a cycle.
func sampleGraph() *network.Graph {
	return &network.Graph{
		Nodes: []network.Node{
			node(1), node(2), node(3), node(4), node(5), node(6),
			node(7), node(8), node(9), node(10), node(11), node(12),
		},
		Edges: []network.Edge{
			child(1, 2), child(1, 3), child(2, 4), child(2, 5), child(3, 6),
			child(7, 8), child(7, 9), queue(6, 7), queue(4, 5),
			child(10, 11), child(11, 10),
		},
	}
}

// recordingSaver records saves and fails for ids listed in fail.
type recordingSaver struct {
	mu    sync.Mutex
	calls map[int64]int
	fail  map[int64]bool
}

func newRecordingSaver(fail ...int64) *recordingSaver {
	s := &recordingSaver{calls: map[int64]int{}, fail: map[int64]bool{}}
	for _, id := range fail {
		s.fail[id] = true
	}
	return s
}

func (s *recordingSaver) SavePosition(_ context.Context, id int64, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[id]++
	if s.fail[id] {
		return errors.New("backend unavailable")
	}
	return nil
}

func (s *recordingSaver) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func distance(a, b PositionedNode) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func mustLayout(t *testing.T, e *Engine, g *network.Graph, opts Options) *Result {
	t.Helper()
	res, err := e.Layout(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	return res
}
