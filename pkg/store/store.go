package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/network"
)

// Store persists goal networks.
type Store interface {
	// Network returns the visible network of a user. Nodes are ordered by
	// id, edges in stored order. An unknown user has an empty network.
	Network(ctx context.Context, userID int64) (*network.Graph, error)

	// PutNetwork replaces every goal and relationship of a user.
	PutNetwork(ctx context.Context, userID int64, g *network.Graph) error

	// SavePosition sets the stored position of one goal.
	SavePosition(ctx context.Context, id int64, x, y float64) error

	Close() error
}

var _ layout.PositionSaver = Store(nil)

// HiddenKinds are goal types left out of Network results.
var HiddenKinds = []network.GoalType{network.GoalTask}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every backend name in a stable order.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendMongo}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of Backends. Empty means memory.
	Backend string `toml:"backend"`

	// Path is the directory of the file backend or the database file of
	// the sqlite backend. Empty selects a default under the user's home.
	Path string `toml:"path"`

	// URL addresses the redis server (redis://host:port/db) or the mongo
	// deployment (mongodb://host:port).
	URL string `toml:"url"`

	// Database is the mongo database name. Empty means "goalnet".
	Database string `toml:"database"`

	// Prefix namespaces redis keys. Empty means "goalnet:".
	Prefix string `toml:"prefix"`

	// RetryAttempts enables the Retrying wrapper when greater than one.
	RetryAttempts int `toml:"retry_attempts"`

	// RetryDelay is the first backoff delay. Zero means one second.
	RetryDelay time.Duration `toml:"retry_delay"`
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		s = NewMemory()
	case BackendFile:
		s, err = NewFile(cfg.Path)
	case BackendSQLite:
		s, err = NewSQLite(ctx, cfg.Path)
	case BackendRedis:
		s, err = NewRedis(ctx, cfg.URL, cfg.Prefix)
	case BackendMongo:
		s, err = NewMongo(ctx, cfg.URL, cfg.Database)
	default:
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown store backend %q (must be one of: %s)",
			cfg.Backend, strings.Join(Backends, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	if cfg.RetryAttempts > 1 {
		s = Retrying(s, RetryPolicy{Attempts: cfg.RetryAttempts, Delay: cfg.RetryDelay})
	}
	return s, nil
}

// =============================================================================
// Shared helpers
// =============================================================================

func visible(g *network.Graph) *network.Graph {
	return network.FilterKinds(g, HiddenKinds...)
}

func notFound(id int64) error {
	return errors.New(errors.ErrCodeNotFound, "goal %d not found", id)
}

// checkNetwork validates a network before it replaces stored data.
func checkNetwork(g *network.Graph) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "network is nil")
	}
	if r := network.Validate(g); len(r.DuplicateNodes) > 0 {
		return errors.New(errors.ErrCodeDuplicateNode, "duplicate goal ids: %v", r.DuplicateNodes)
	}
	return nil
}

// owned returns a copy of the nodes of g stamped with userID.
func owned(g *network.Graph, userID int64) []network.Node {
	c := g.Clone()
	for i := range c.Nodes {
		c.Nodes[i].UserID = userID
	}
	return c.Nodes
}

func sortNodes(nodes []network.Node) {
	slices.SortStableFunc(nodes, func(a, b network.Node) int { return cmp.Compare(a.ID, b.ID) })
}
