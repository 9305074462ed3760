// Package syncer keeps the text index and the line cache in step with the
// files on disk. A Synchronizer owns the fingerprint table from the previous
// pass; each Resync scans the directory, hashes the survivors, diffs against
// that table, and applies only the delta.
//
// All file reads and hashing happen before the write lock is taken. The lock
// covers only the apply phase, so searches are blocked for the commit alone
// rather than the whole scan.
package syncer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/codesearch/internal/guard"
	"github.com/dshills/codesearch/internal/linecache"
	"github.com/dshills/codesearch/internal/scanner"
	"github.com/dshills/codesearch/internal/textindex"
)

// Config holds the scan parameters for a Synchronizer.
type Config struct {
	// Root is the directory to scan for indexable files.
	Root string
	// ExcludePatterns skips any path containing one of these substrings.
	ExcludePatterns []string
	// Workers bounds concurrent file hashing. Zero means a default.
	Workers int
}

// Synchronizer drives full builds and incremental resyncs of the index.
type Synchronizer struct {
	cfg          Config
	idx          *textindex.Index
	cache        *linecache.Cache
	guard        *guard.Guard
	logger       *zap.Logger
	fingerprints map[string]scanner.Fingerprint
}

// New creates a Synchronizer over the given index and cache. The guard must
// be the same instance searchers use, so readers never observe an index
// generation paired with a stale cache.
func New(cfg Config, idx *textindex.Index, cache *linecache.Cache, g *guard.Guard, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		cfg:          cfg,
		idx:          idx,
		cache:        cache,
		guard:        g,
		logger:       logger,
		fingerprints: make(map[string]scanner.Fingerprint),
	}
}

// Stats reports what a sync pass did.
type Stats struct {
	Scanned   int
	Changed   int
	Removed   int
	Unchanged int
	Elapsed   time.Duration
}

// Build performs the initial full build. It is a Resync against an empty
// fingerprint table, so every scanned file counts as changed.
func (s *Synchronizer) Build(ctx context.Context) (Stats, error) {
	return s.Resync(ctx)
}

// Resync brings the index and cache up to date with the directory tree.
// Files whose content hash is unchanged are not touched. Files that can no
// longer be read but still exist keep their previously indexed state; only
// files that are gone from the tree are removed from the index.
func (s *Synchronizer) Resync(ctx context.Context) (Stats, error) {
	start := time.Now()

	paths, err := scanner.Scan(s.cfg.Root, s.cfg.ExcludePatterns)
	if err != nil {
		return Stats{}, fmt.Errorf("scan %s: %w", s.cfg.Root, err)
	}

	curr, failed, err := scanner.Checksum(ctx, paths, s.cfg.Workers)
	if err != nil {
		return Stats{}, fmt.Errorf("checksum: %w", err)
	}
	s.reconcileFailed(curr, failed)

	delta := scanner.Diff(s.fingerprints, curr)
	stats := Stats{
		Scanned:   len(paths),
		Changed:   len(delta.AddedOrModified),
		Removed:   len(delta.Removed),
		Unchanged: len(delta.Unchanged),
	}
	if delta.Empty() {
		stats.Elapsed = time.Since(start)
		s.fingerprints = curr
		return stats, nil
	}

	// Stage file contents before taking the write lock.
	staged := make(map[string][]string, len(delta.AddedOrModified))
	for _, path := range delta.AddedOrModified {
		lines, err := readLines(path)
		if err != nil {
			// Read failure after a successful hash. Keep whatever state the
			// file had and retry on the next pass.
			s.logger.Warn("failed to read file", zap.String("path", path), zap.Error(err))
			if fp, ok := s.fingerprints[path]; ok {
				curr[path] = fp
			} else {
				delete(curr, path)
			}
			stats.Changed--
			continue
		}
		staged[path] = lines
	}

	if len(staged) == 0 && len(delta.Removed) == 0 {
		stats.Elapsed = time.Since(start)
		s.fingerprints = curr
		return stats, nil
	}

	if err := s.apply(ctx, staged, delta.Removed); err != nil {
		return Stats{}, err
	}
	s.fingerprints = curr

	stats.Elapsed = time.Since(start)
	s.logger.Info("resync complete",
		zap.Int("scanned", stats.Scanned),
		zap.Int("changed", stats.Changed),
		zap.Int("removed", stats.Removed),
		zap.Int("unchanged", stats.Unchanged),
		zap.Uint64("generation", s.idx.Generation()),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}

// reconcileFailed sorts files whose hashing failed into unreadable versus
// deleted. A known file that is still on disk is unreadable, not deleted:
// its previous fingerprint is carried forward so the diff classifies it
// unchanged and its indexed state survives. A path that vanished between
// the scan and the hash stays out of the snapshot and classifies removed.
// A file that was never indexed and cannot be read is logged and skipped.
func (s *Synchronizer) reconcileFailed(curr map[string]scanner.Fingerprint, failed []string) {
	for _, path := range failed {
		fp, ok := s.fingerprints[path]
		if !ok {
			s.logger.Warn("skipping unreadable file", zap.String("path", path))
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		curr[path] = fp
	}
}

// apply writes one staged delta under the exclusive lock. The index commit
// and the cache swap happen inside the same critical section, so a reader
// either sees the previous generation everywhere or the new one everywhere.
func (s *Synchronizer) apply(ctx context.Context, staged map[string][]string, removed []string) error {
	s.guard.Lock()
	defer s.guard.Unlock()

	batch, err := s.idx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	for path, lines := range staged {
		if err := batch.DeletePath(ctx, path); err != nil {
			_ = batch.Rollback()
			return fmt.Errorf("reindex %s: %w", path, err)
		}
		if err := batch.AddLines(ctx, path, lines); err != nil {
			_ = batch.Rollback()
			return fmt.Errorf("reindex %s: %w", path, err)
		}
	}
	for _, path := range removed {
		if err := batch.DeletePath(ctx, path); err != nil {
			_ = batch.Rollback()
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	for path, lines := range staged {
		s.cache.Replace(path, lines)
	}
	for _, path := range removed {
		s.cache.Drop(path)
	}
	return nil
}

// readLines splits a file into lines without the terminators. A trailing
// newline does not produce an empty final line.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
