//go:build !sqlite_fts5
// +build !sqlite_fts5

package textindex

// This file is compiled when building without the sqlite_fts5 tag.
// It uses a pure Go SQLite implementation with FTS5 support built in.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
