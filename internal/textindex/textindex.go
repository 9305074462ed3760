package textindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

var (
	// ErrClosed is returned when operating on a closed index
	ErrClosed = errors.New("text index is closed")
)

// InMemory is the database path of an index that lives only for the process
// lifetime. The index is rebuilt from disk on every start, so this is the
// path used in production.
const InMemory = ":memory:"

// LineRef identifies one matching line document.
type LineRef struct {
	Path string
	Line int
}

// Index is the line-oriented full-text index.
//
// The connection pool is pinned to a single connection: an in-memory SQLite
// database exists per connection, so a second connection would see an empty
// database. Queries consequently serialize at the driver, which is
// acceptable because callers already coordinate readers and the single
// writer through the shared guard.
type Index struct {
	db         *sql.DB
	generation atomic.Uint64
	closed     atomic.Bool
}

// Open creates a text index at dbPath, applying schema migrations.
// Use InMemory for a throwaway index.
func Open(dbPath string) (*Index, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (idx *Index) Close() error {
	idx.closed.Store(true)
	return idx.db.Close()
}

// Generation returns the number of commits applied so far. Generation 0 is
// the empty index before the initial build commits.
func (idx *Index) Generation() uint64 {
	return idx.generation.Load()
}

// DocCount returns the number of live line documents.
func (idx *Index) DocCount(ctx context.Context) (int, error) {
	if idx.closed.Load() {
		return 0, ErrClosed
	}

	var n int
	err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lines").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// PathDocCount returns the number of live line documents for one path.
func (idx *Index) PathDocCount(ctx context.Context, path string) (int, error) {
	if idx.closed.Load() {
		return 0, ErrClosed
	}

	var n int
	err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lines WHERE path = ?", path).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents for %s: %w", path, err)
	}
	return n, nil
}

// Search executes a free-text query against line bodies and returns the
// matching (path, line) keys, best-ranked first, up to limit. A query with
// no usable tokens matches nothing.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]LineRef, error) {
	if idx.closed.Load() {
		return nil, ErrClosed
	}

	match := buildMatch(query)
	if match == "" {
		return nil, nil
	}

	// Note: in FTS5, 'rank' is a built-in virtual column representing BM25
	// relevance. Lower values are better matches.
	sqlQuery := `
		SELECT l.path, l.line_no
		FROM lines l
		JOIN lines_fts fts ON l.id = fts.rowid
		WHERE lines_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`
	rows, err := idx.db.QueryContext(ctx, sqlQuery, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	refs := make([]LineRef, 0)
	for rows.Next() {
		var ref LineRef
		if err := rows.Scan(&ref.Path, &ref.Line); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// buildMatch converts a free-text query into an FTS5 MATCH expression.
// Each whitespace-separated token is double-quoted, making every token
// required and neutralizing FTS5 operator syntax in user input.
func buildMatch(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(fields))
	for _, field := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// Batch stages deletions and additions against the index. All staged
// mutations become visible atomically on Commit, which advances the
// generation by one.
type Batch struct {
	tx  *sql.Tx
	idx *Index
}

// Begin starts a new mutation batch. At most one batch may be open at a
// time; callers hold the exclusive side of the guard for the batch's whole
// lifetime.
func (idx *Index) Begin(ctx context.Context) (*Batch, error) {
	if idx.closed.Load() {
		return nil, ErrClosed
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	return &Batch{tx: tx, idx: idx}, nil
}

// DeletePath removes every line document for path. Deleting a path with no
// documents is a no-op, which makes first-time adds and repeated deletes
// idempotent.
func (b *Batch) DeletePath(ctx context.Context, path string) error {
	_, err := b.tx.ExecContext(ctx, "DELETE FROM lines WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete documents for %s: %w", path, err)
	}
	return nil
}

// AddLine stages one line document. Line numbers are 1-based.
func (b *Batch) AddLine(ctx context.Context, path string, line int, body string) error {
	_, err := b.tx.ExecContext(ctx,
		"INSERT INTO lines (path, line_no, body) VALUES (?, ?, ?)",
		path, line, body)
	if err != nil {
		return fmt.Errorf("failed to add document %s:%d: %w", path, line, err)
	}
	return nil
}

// AddLines stages one document per element of lines, numbered from 1.
func (b *Batch) AddLines(ctx context.Context, path string, lines []string) error {
	for i, body := range lines {
		if err := b.AddLine(ctx, path, i+1, body); err != nil {
			return err
		}
	}
	return nil
}

// Commit makes all staged mutations visible as a new generation.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	b.idx.generation.Add(1)
	return nil
}

// Rollback discards all staged mutations. Rolling back an already committed
// batch is a no-op error that callers may ignore, mirroring sql.Tx.
func (b *Batch) Rollback() error {
	return b.tx.Rollback()
}
