package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/network"
)

// migration is one schema step, applied once and recorded.
type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "goals and relationships",
		SQL: `
CREATE TABLE IF NOT EXISTS goals (
	id         INTEGER PRIMARY KEY,
	user_id    INTEGER NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	label      TEXT NOT NULL DEFAULT '',
	goal_type  TEXT NOT NULL DEFAULT '',
	position_x REAL,
	position_y REAL
);
CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);
CREATE TABLE IF NOT EXISTS relationships (
	seq               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id           INTEGER NOT NULL,
	from_id           INTEGER NOT NULL,
	to_id             INTEGER NOT NULL,
	relationship_type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relationships_user ON relationships(user_id);`,
	},
}

// SQLite is a Store backed by a local SQLite database.
type SQLite struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLite opens (or creates) the database at path and applies pending
// migrations. An empty path defaults to ~/.local/share/goalnet/goalnet.db;
// ":memory:" opens a private in-memory database.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".local", "share", "goalnet", "goalnet.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: set pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: conn}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	const createMigTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		description TEXT
	)`
	if _, err := s.db.ExecContext(ctx, createMigTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration v%d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration v%d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration v%d: %w", m.Version, err)
		}
	}
	return nil
}

func (s *SQLite) Network(ctx context.Context, userID int64) (*network.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, err := s.goals(ctx, userID)
	if err != nil {
		return nil, err
	}
	edges, err := s.relationships(ctx, userID)
	if err != nil {
		return nil, err
	}
	return visible(&network.Graph{Nodes: nodes, Edges: edges}), nil
}

func (s *SQLite) goals(ctx context.Context, userID int64) ([]network.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, label, goal_type, position_x, position_y
		FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, sqliteErr(err, "query goals")
	}
	defer rows.Close()

	var out []network.Node
	for rows.Next() {
		n := network.Node{UserID: userID}
		var kind string
		var px, py sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.Name, &n.Label, &kind, &px, &py); err != nil {
			return nil, sqliteErr(err, "scan goal")
		}
		n.GoalType = network.GoalType(kind)
		if px.Valid && py.Valid {
			n = n.WithPosition(px.Float64, py.Float64)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteErr(err, "iterate goals")
	}
	return out, nil
}

func (s *SQLite) relationships(ctx context.Context, userID int64) ([]network.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_id, to_id, relationship_type
		FROM relationships WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, sqliteErr(err, "query relationships")
	}
	defer rows.Close()

	var out []network.Edge
	for rows.Next() {
		var e network.Edge
		var rel string
		if err := rows.Scan(&e.From, &e.To, &rel); err != nil {
			return nil, sqliteErr(err, "scan relationship")
		}
		e.RelationshipType = network.ParseRelationshipType(rel)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteErr(err, "iterate relationships")
	}
	return out, nil
}

func (s *SQLite) PutNetwork(ctx context.Context, userID int64, g *network.Graph) error {
	if err := checkNetwork(g); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sqliteErr(err, "begin tx")
	}
	defer tx.Rollback()

	for _, n := range g.Nodes {
		var owner int64
		err := tx.QueryRowContext(ctx, "SELECT user_id FROM goals WHERE id = ?", n.ID).Scan(&owner)
		if err == nil && owner != userID {
			return errors.New(errors.ErrCodeInvalidInput, "goal %d belongs to another user", n.ID)
		}
		if err != nil && err != sql.ErrNoRows {
			return sqliteErr(err, "check goal owner")
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships WHERE user_id = ?", userID); err != nil {
		return sqliteErr(err, "delete relationships")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM goals WHERE user_id = ?", userID); err != nil {
		return sqliteErr(err, "delete goals")
	}

	goalStmt, err := tx.PrepareContext(ctx, `INSERT INTO goals
		(id, user_id, name, label, goal_type, position_x, position_y)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return sqliteErr(err, "prepare goal insert")
	}
	defer goalStmt.Close()
	for _, n := range owned(g, userID) {
		var px, py sql.NullFloat64
		if n.Pinned() {
			x, y := n.Position()
			px, py = sql.NullFloat64{Float64: x, Valid: true}, sql.NullFloat64{Float64: y, Valid: true}
		}
		if _, err := goalStmt.ExecContext(ctx, n.ID, userID, n.Name, n.Label, string(n.GoalType), px, py); err != nil {
			return sqliteErr(err, fmt.Sprintf("insert goal %d", n.ID))
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `INSERT INTO relationships
		(user_id, from_id, to_id, relationship_type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return sqliteErr(err, "prepare relationship insert")
	}
	defer relStmt.Close()
	for _, e := range g.Edges {
		if _, err := relStmt.ExecContext(ctx, userID, e.From, e.To, string(e.RelationshipType)); err != nil {
			return sqliteErr(err, "insert relationship "+e.ID())
		}
	}
	if err := tx.Commit(); err != nil {
		return sqliteErr(err, "commit")
	}
	return nil
}

func (s *SQLite) SavePosition(ctx context.Context, id int64, x, y float64) error {
	if err := errors.ValidateCoordinate(x, y); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE goals SET position_x = ?, position_y = ? WHERE id = ?", x, y, id)
	if err != nil {
		return sqliteErr(err, fmt.Sprintf("update position of goal %d", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return sqliteErr(err, "rows affected")
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// sqliteErr wraps a driver error. A locked or busy database is retryable.
func sqliteErr(err error, op string) error {
	wrapped := errors.Wrap(errors.ErrCodePersistence, err, "sqlite: %s", op)
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return retryable(wrapped)
	}
	return wrapped
}

var _ Store = (*SQLite)(nil)
