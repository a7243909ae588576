// Package journal keeps a local SQLite record of completed chat turns so
// answers can be reviewed offline with "speakmcp journal".
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

const (
	// FileName is the journal database inside the speakmcp directory.
	FileName = "journal.db"

	// MemoryPath opens a throwaway in-memory journal.
	MemoryPath = ":memory:"

	// DefaultListLimit caps List when no limit is given.
	DefaultListLimit = 20
)

var (
	ErrNotFound  = errors.New("turn not found")
	ErrAmbiguous = errors.New("turn id prefix is ambiguous")
)

// Turn is one completed chat turn.
type Turn struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Prompt         string    `json:"prompt"`
	Content        string    `json:"content"`
	Model          string    `json:"model,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of turns. Zero means DefaultListLimit.
	Limit int

	// ConversationID restricts results to one conversation.
	ConversationID string
}

// Journal is a SQLite-backed turn log.
type Journal struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

// DefaultPath returns the journal path inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// Open opens (creating if needed) the journal at path and migrates its
// schema. path may be MemoryPath.
func Open(ctx context.Context, path string, l *slog.Logger) (*Journal, error) {
	if l == nil {
		l = logger.Nop()
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating journal dir: %w", err)
		}
	}

	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// A single connection keeps ":memory:" databases and the pragma below
	// on one handle.
	db.SetMaxOpenConns(1)

	// ent's SQLite migration refuses to run with foreign keys off.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)

	migrate, err := entschema.NewMigrate(drv)
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("preparing journal migration: %w", err)
	}
	if err := migrate.Create(ctx, tables...); err != nil {
		drv.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	l.Debug("journal opened", "path", path)

	return &Journal{drv: drv, logger: l}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.drv.Close()
}

// Record stores a completed turn. A missing ID or CreatedAt is filled in,
// and the stored turn is returned.
func (j *Journal) Record(ctx context.Context, t Turn) (*Turn, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.CreatedAt = t.CreatedAt.UTC()

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(turnsTableName).
		Columns(selectColumns...).
		Values(t.ID, t.ConversationID, t.Prompt, t.Content, t.Model, t.CreatedAt).
		Query()

	if err := j.drv.Exec(ctx, query, args, nil); err != nil {
		return nil, fmt.Errorf("recording turn: %w", err)
	}

	j.logger.Debug("turn recorded", "id", t.ID, "conversation_id", t.ConversationID)
	return &t, nil
}

// List returns the most recent turns, newest first.
func (j *Journal) List(ctx context.Context, opts ListOptions) ([]Turn, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	selector := entsql.Dialect(dialect.SQLite).
		Select(selectColumns...).
		From(entsql.Table(turnsTableName)).
		OrderBy(entsql.Desc(columnCreatedAt), entsql.Desc(columnID)).
		Limit(limit)

	if opts.ConversationID != "" {
		selector.Where(entsql.EQ(columnConversationID, opts.ConversationID))
	}

	return j.query(ctx, selector)
}

// Get returns the turn whose id equals or uniquely starts with id.
func (j *Journal) Get(ctx context.Context, id string) (*Turn, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	// Prefix matches are capped at two: enough to detect ambiguity.
	selector := entsql.Dialect(dialect.SQLite).
		Select(selectColumns...).
		From(entsql.Table(turnsTableName)).
		Where(entsql.HasPrefix(columnID, id)).
		OrderBy(columnID).
		Limit(2)

	turns, err := j.query(ctx, selector)
	if err != nil {
		return nil, err
	}

	for i := range turns {
		if turns[i].ID == id {
			return &turns[i], nil
		}
	}

	switch len(turns) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return &turns[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// Clear deletes every turn and reports how many were removed.
func (j *Journal) Clear(ctx context.Context) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).Delete(turnsTableName).Query()

	var res sql.Result
	if err := j.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("clearing journal: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing journal: %w", err)
	}
	return n, nil
}

func (j *Journal) query(ctx context.Context, selector *entsql.Selector) ([]Turn, error) {
	query, args := selector.Query()

	rows := &entsql.Rows{}
	if err := j.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Prompt, &t.Content, &t.Model, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}

	return turns, nil
}
