package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/network"
)

func goal(id int64, kind network.GoalType) network.Node {
	return network.Node{ID: id, Name: "goal", GoalType: kind}
}

func sampleNetwork() *network.Graph {
	return &network.Graph{
		Nodes: []network.Node{
			goal(3, network.GoalProject),
			goal(1, network.GoalDirective).WithPosition(10, -20),
			goal(2, network.GoalRoutine),
			goal(4, network.GoalTask),
		},
		Edges: []network.Edge{
			{From: 1, To: 3, RelationshipType: network.RelChild},
			{From: 1, To: 2, RelationshipType: network.RelChild},
			{From: 3, To: 4, RelationshipType: network.RelChild},
			{From: 2, To: 3, RelationshipType: network.RelQueue},
		},
	}
}

func nodeIDs(g *network.Graph) []int64 {
	out := make([]int64, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.ID
	}
	return out
}

// testStore exercises the Store contract against a fresh backend.
func testStore(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("unknown user is empty", func(t *testing.T) {
		s := open(t)
		g, err := s.Network(ctx, 42)
		if err != nil {
			t.Fatalf("Network() error: %v", err)
		}
		if len(g.Nodes) != 0 || len(g.Edges) != 0 {
			t.Errorf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
		}
	})

	t.Run("round trip hides tasks", func(t *testing.T) {
		s := open(t)
		if err := s.PutNetwork(ctx, 7, sampleNetwork()); err != nil {
			t.Fatalf("PutNetwork() error: %v", err)
		}
		g, err := s.Network(ctx, 7)
		if err != nil {
			t.Fatalf("Network() error: %v", err)
		}
		if got := nodeIDs(g); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
			t.Errorf("node ids = %v, want [1 2 3]", got)
		}
		if len(g.Edges) != 3 {
			t.Errorf("got %d edges, want 3", len(g.Edges))
		}
		if g.Edges[2].RelationshipType != network.RelQueue {
			t.Errorf("edge order not kept: %+v", g.Edges)
		}
		n1, _ := g.Node(1)
		if x, y := n1.Position(); !n1.Pinned() || x != 10 || y != -20 {
			t.Errorf("node 1 position = (%v, %v), pinned=%v", x, y, n1.Pinned())
		}
		if n1.UserID != 7 || n1.GoalType != network.GoalDirective {
			t.Errorf("node 1 = %+v", n1)
		}
		if n2, _ := g.Node(2); n2.Pinned() {
			t.Error("node 2 should not be pinned")
		}
	})

	t.Run("save position", func(t *testing.T) {
		s := open(t)
		if err := s.PutNetwork(ctx, 7, sampleNetwork()); err != nil {
			t.Fatalf("PutNetwork() error: %v", err)
		}
		if err := s.SavePosition(ctx, 2, 123.5, -0.25); err != nil {
			t.Fatalf("SavePosition() error: %v", err)
		}
		g, _ := s.Network(ctx, 7)
		n2, _ := g.Node(2)
		if x, y := n2.Position(); x != 123.5 || y != -0.25 {
			t.Errorf("node 2 at (%v, %v), want (123.5, -0.25)", x, y)
		}
	})

	t.Run("save position errors", func(t *testing.T) {
		s := open(t)
		if err := s.PutNetwork(ctx, 7, sampleNetwork()); err != nil {
			t.Fatalf("PutNetwork() error: %v", err)
		}
		if err := s.SavePosition(ctx, 999, 1, 1); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("unknown goal: err = %v, want NOT_FOUND", err)
		}
		if err := s.SavePosition(ctx, 2, nan(), 1); !errors.Is(err, errors.ErrCodeInvalidCoordinate) {
			t.Errorf("NaN: err = %v, want INVALID_COORDINATE", err)
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		s := open(t)
		if err := s.PutNetwork(ctx, 7, sampleNetwork()); err != nil {
			t.Fatalf("PutNetwork() error: %v", err)
		}
		small := &network.Graph{Nodes: []network.Node{goal(9, network.GoalProject)}}
		if err := s.PutNetwork(ctx, 7, small); err != nil {
			t.Fatalf("PutNetwork() error: %v", err)
		}
		g, _ := s.Network(ctx, 7)
		if got := nodeIDs(g); !reflect.DeepEqual(got, []int64{9}) || len(g.Edges) != 0 {
			t.Errorf("network = %v / %d edges, want [9] / 0", got, len(g.Edges))
		}
		if err := s.SavePosition(ctx, 1, 0, 0); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("replaced goal still saveable: %v", err)
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := open(t)
		if err := s.PutNetwork(ctx, 7, sampleNetwork()); err != nil {
			t.Fatalf("PutNetwork() error: %v", err)
		}
		other := &network.Graph{Nodes: []network.Node{goal(1, network.GoalProject)}}
		if err := s.PutNetwork(ctx, 8, other); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("foreign goal: err = %v, want INVALID_INPUT", err)
		}
		dup := &network.Graph{Nodes: []network.Node{goal(5, ""), goal(5, "")}}
		if err := s.PutNetwork(ctx, 8, dup); !errors.Is(err, errors.ErrCodeDuplicateNode) {
			t.Errorf("duplicate goal: err = %v, want DUPLICATE_NODE", err)
		}
	})

	t.Run("layout persists through store", func(t *testing.T) {
		s := open(t)
		if err := s.PutNetwork(ctx, 7, sampleNetwork()); err != nil {
			t.Fatalf("PutNetwork() error: %v", err)
		}
		g, _ := s.Network(ctx, 7)
		res, err := layout.New(s, nil).Layout(ctx, g, layout.Options{})
		if err != nil {
			t.Fatalf("Layout() error: %v", err)
		}
		if res.Saves.Attempted != 2 || !res.Saves.OK() {
			t.Fatalf("Saves = %+v", res.Saves)
		}

		again, _ := s.Network(ctx, 7)
		for _, n := range again.Nodes {
			out, _ := res.Node(n.ID)
			x, y := n.Position()
			if !n.Pinned() || x != out.X || y != out.Y {
				t.Errorf("goal %d stored at (%v, %v), laid out at (%v, %v)", n.ID, x, y, out.X, out.Y)
			}
		}
	})
}

func TestMemory(t *testing.T) {
	testStore(t, func(t *testing.T) Store { return NewMemory() })
}

func TestFile(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		s, err := NewFile(t.TempDir())
		if err != nil {
			t.Fatalf("NewFile() error: %v", err)
		}
		return s
	})
}

func TestSQLite(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "goalnet.db"))
		if err != nil {
			t.Fatalf("NewSQLite() error: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "goalnet.db")

	s, err := NewSQLite(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLite() error: %v", err)
	}
	if err := s.PutNetwork(ctx, 1, sampleNetwork()); err != nil {
		t.Fatalf("PutNetwork() error: %v", err)
	}
	s.Close()

	s, err = NewSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	g, err := s.Network(ctx, 1)
	if err != nil {
		t.Fatalf("Network() error: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("got %d nodes after reopen, want 3", len(g.Nodes))
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{name: "default", cfg: Config{}, want: &Memory{}},
		{name: "memory", cfg: Config{Backend: "MEMORY"}, want: &Memory{}},
		{name: "file", cfg: Config{Backend: BackendFile, Path: dir}, want: &File{}},
		{name: "sqlite", cfg: Config{Backend: BackendSQLite, Path: filepath.Join(dir, "db.sqlite")}, want: &SQLite{}},
		{name: "retrying", cfg: Config{RetryAttempts: 3}, want: &retrying{}},
		{name: "unknown", cfg: Config{Backend: "neo4j"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidOption) {
					t.Errorf("err = %v, want INVALID_OPTION", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer s.Close()
			if reflect.TypeOf(s) != reflect.TypeOf(tt.want) {
				t.Errorf("Open() = %T, want %T", s, tt.want)
			}
		})
	}
}
