// Package textindex provides the full-text index over individual file lines,
// backed by SQLite FTS5.
//
// One document is one physical line of a tracked file, keyed by (path, line
// number). The schema is a `lines` content table plus a `lines_fts` FTS5
// virtual table kept in sync with triggers, so deleting rows from `lines`
// also removes them from the search index.
//
// # Generations
//
// All mutations are staged on a Batch, which wraps a single SQL transaction:
//
//	batch, _ := idx.Begin(ctx)
//	_ = batch.DeletePath(ctx, "main.go")
//	_ = batch.AddLines(ctx, "main.go", lines)
//	_ = batch.Commit()
//
// Commit is the generation boundary: the transaction becomes visible
// atomically and the generation counter advances by exactly one. A query
// therefore always observes one committed generation, never a half-applied
// delta.
//
// # Queries
//
// Search matches against the line body only. The free-text query is
// tokenized on whitespace and each token is quoted into an FTS5 MATCH
// expression, which makes all tokens required and defuses FTS5 operator
// syntax in user input.
//
// # Build Tags
//
// The package supports two build configurations, selected the same way the
// driver files describe:
//
//   - default (CGO_ENABLED=0): modernc.org/sqlite, pure Go, FTS5 built in
//   - sqlite_fts5 tag (CGO_ENABLED=1): mattn/go-sqlite3 with the FTS5
//     extension compiled in
package textindex
