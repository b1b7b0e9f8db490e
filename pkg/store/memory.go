package store

import (
	"context"
	"sync"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/network"
)

// Memory is an in-process Store. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	goals map[int64]network.Node
	edges map[int64][]network.Edge // by user
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		goals: make(map[int64]network.Node),
		edges: make(map[int64][]network.Edge),
	}
}

func (m *Memory) Network(ctx context.Context, userID int64) (*network.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g := &network.Graph{}
	for _, n := range m.goals {
		if n.UserID == userID {
			g.Nodes = append(g.Nodes, n)
		}
	}
	sortNodes(g.Nodes)
	g.Edges = append(g.Edges, m.edges[userID]...)
	return visible(g.Clone()), nil
}

func (m *Memory) PutNetwork(ctx context.Context, userID int64, g *network.Graph) error {
	if err := checkNetwork(g); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range g.Nodes {
		if cur, ok := m.goals[n.ID]; ok && cur.UserID != userID {
			return errors.New(errors.ErrCodeInvalidInput, "goal %d belongs to another user", n.ID)
		}
	}
	for id, n := range m.goals {
		if n.UserID == userID {
			delete(m.goals, id)
		}
	}
	for _, n := range owned(g, userID) {
		m.goals[n.ID] = n
	}
	m.edges[userID] = append([]network.Edge(nil), g.Edges...)
	return nil
}

func (m *Memory) SavePosition(ctx context.Context, id int64, x, y float64) error {
	if err := errors.ValidateCoordinate(x, y); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.goals[id]
	if !ok {
		return notFound(id)
	}
	m.goals[id] = n.WithPosition(x, y)
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
