package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/network"
)

// File is a Store keeping one JSON document per user in a directory.
// Intended for single-process CLI use.
type File struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFile creates a file-backed store.
// If baseDir is empty, defaults to ~/.local/share/goalnet/networks/
func NewFile(baseDir string) (*File, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "goalnet", "networks")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create network dir: %w", err)
	}
	return &File{baseDir: baseDir}, nil
}

// Path returns the directory holding the network files.
func (s *File) Path() string { return s.baseDir }

func (s *File) userPath(userID int64) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("user-%d.json", userID))
}

func (s *File) read(path string) (*network.Graph, error) {
	g, err := network.ReadGraphFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return &network.Graph{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "read network file")
	}
	return g, nil
}

func (s *File) write(path string, g *network.Graph) error {
	data, err := network.MarshalGraph(g)
	if err != nil {
		return fmt.Errorf("marshal network: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "write network file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "replace network file")
	}
	return nil
}

func (s *File) Network(ctx context.Context, userID int64) (*network.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, err := s.read(s.userPath(userID))
	if err != nil {
		return nil, err
	}
	sortNodes(g.Nodes)
	return visible(g), nil
}

func (s *File) PutNetwork(ctx context.Context, userID int64, g *network.Graph) error {
	if err := checkNetwork(g); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	owners, err := s.owners()
	if err != nil {
		return err
	}
	for _, n := range g.Nodes {
		if owner, ok := owners[n.ID]; ok && owner != userID {
			return errors.New(errors.ErrCodeInvalidInput, "goal %d belongs to another user", n.ID)
		}
	}
	out := &network.Graph{Nodes: owned(g, userID), Edges: append([]network.Edge{}, g.Edges...)}
	return s.write(s.userPath(userID), out)
}

func (s *File) SavePosition(ctx context.Context, id int64, x, y float64) error {
	if err := errors.ValidateCoordinate(x, y); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	owners, err := s.owners()
	if err != nil {
		return err
	}
	userID, ok := owners[id]
	if !ok {
		return notFound(id)
	}
	path := s.userPath(userID)
	g, err := s.read(path)
	if err != nil {
		return err
	}
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			g.Nodes[i] = g.Nodes[i].WithPosition(x, y)
		}
	}
	return s.write(path, g)
}

// owners maps every stored goal id to its user. Callers hold the lock.
func (s *File) owners() (map[int64]int64, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "read network dir")
	}
	out := make(map[int64]int64)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "user-") || filepath.Ext(name) != ".json" {
			continue
		}
		userID, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "user-"), ".json"), 10, 64)
		if err != nil {
			continue
		}
		g, err := s.read(filepath.Join(s.baseDir, name))
		if err != nil {
			return nil, err
		}
		for _, n := range g.Nodes {
			out[n.ID] = userID
		}
	}
	return out, nil
}

func (s *File) Close() error { return nil }

var _ Store = (*File)(nil)
