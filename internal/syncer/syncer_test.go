package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/dshills/codesearch/internal/guard"
	"github.com/dshills/codesearch/internal/linecache"
	"github.com/dshills/codesearch/internal/scanner"
	"github.com/dshills/codesearch/internal/textindex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	dir   string
	idx   *textindex.Index
	cache *linecache.Cache
	guard *guard.Guard
	sync  *Synchronizer
}

// setupFixture wires a Synchronizer over a fresh temp directory
func setupFixture(t *testing.T, excludes []string) *fixture {
	t.Helper()

	dir := t.TempDir()
	idx, err := textindex.Open(textindex.InMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	cache := linecache.New()
	g := &guard.Guard{}
	s := New(Config{Root: dir, ExcludePatterns: excludes}, idx, cache, g, zap.NewNop())

	return &fixture{dir: dir, idx: idx, cache: cache, guard: g, sync: s}
}

func (f *fixture) writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestBuild tests the initial full build
func TestBuild(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	aPath := f.writeFile(t, "a.txt", "first line\nsecond line\n")
	f.writeFile(t, "b.txt", "another file\n")

	stats, err := f.sync.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Changed)
	assert.Equal(t, 0, stats.Removed)
	assert.Equal(t, uint64(1), f.idx.Generation())

	refs, err := f.idx.Search(ctx, "second", 100)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, aPath, refs[0].Path)
	assert.Equal(t, 2, refs[0].Line)

	lines, ok := f.cache.Lines(aPath)
	require.True(t, ok)
	assert.Equal(t, []string{"first line", "second line"}, lines)
}

// TestResync_NoChanges tests that an unchanged tree commits nothing
func TestResync_NoChanges(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	f.writeFile(t, "a.txt", "stable content\n")

	_, err := f.sync.Build(ctx)
	require.NoError(t, err)
	gen := f.idx.Generation()

	stats, err := f.sync.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Changed)
	assert.Equal(t, 0, stats.Removed)
	assert.Equal(t, 1, stats.Unchanged)
	assert.Equal(t, gen, f.idx.Generation(), "no-op resync should not advance the generation")
}

// TestResync_Modification tests that edited files are reindexed
func TestResync_Modification(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	path := f.writeFile(t, "a.txt", "old content\n")
	_, err := f.sync.Build(ctx)
	require.NoError(t, err)

	f.writeFile(t, "a.txt", "new content\nextra line\n")

	stats, err := f.sync.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Changed)

	refs, err := f.idx.Search(ctx, "old", 100)
	require.NoError(t, err)
	assert.Empty(t, refs, "stale lines should be gone after reindex")

	refs, err = f.idx.Search(ctx, "extra", 100)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 2, refs[0].Line)

	lines, ok := f.cache.Lines(path)
	require.True(t, ok)
	assert.Equal(t, []string{"new content", "extra line"}, lines)
}

// TestResync_AddAndRemove tests a mixed delta in one pass
func TestResync_AddAndRemove(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	oldPath := f.writeFile(t, "old.txt", "doomed line\n")
	_, err := f.sync.Build(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(oldPath))
	newPath := f.writeFile(t, "new.txt", "fresh line\n")

	stats, err := f.sync.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Changed)
	assert.Equal(t, 1, stats.Removed)

	refs, err := f.idx.Search(ctx, "doomed", 100)
	require.NoError(t, err)
	assert.Empty(t, refs)

	refs, err = f.idx.Search(ctx, "fresh", 100)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, newPath, refs[0].Path)

	_, ok := f.cache.Lines(oldPath)
	assert.False(t, ok, "removed file should leave the cache")
	_, ok = f.cache.Lines(newPath)
	assert.True(t, ok)
}

// TestResync_DocCountTracksFiles tests that every cached line has a document
func TestResync_DocCountTracksFiles(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	aPath := f.writeFile(t, "a.txt", "one\ntwo\nthree\n")
	bPath := f.writeFile(t, "b.txt", "four\n")

	_, err := f.sync.Build(ctx)
	require.NoError(t, err)

	count, err := f.idx.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, 3, f.cache.LineCount(aPath))
	assert.Equal(t, 1, f.cache.LineCount(bPath))

	f.writeFile(t, "a.txt", "one\n")
	_, err = f.sync.Resync(ctx)
	require.NoError(t, err)

	count, err = f.idx.DocCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, f.cache.LineCount(aPath))
	assert.Equal(t, 2, f.cache.Len())
}

// TestResync_ExcludePatterns tests that excluded paths never get indexed
func TestResync_ExcludePatterns(t *testing.T) {
	f := setupFixture(t, []string{".git"})
	ctx := context.Background()

	f.writeFile(t, "a.txt", "visible\n")
	f.writeFile(t, ".git/config", "hidden\n")

	stats, err := f.sync.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)

	refs, err := f.idx.Search(ctx, "hidden", 100)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

// TestResync_UnreadableFileKeepsState tests that a file which cannot be read
// but still exists is treated as unchanged rather than deleted
func TestResync_UnreadableFileKeepsState(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	f := setupFixture(t, nil)
	ctx := context.Background()

	path := f.writeFile(t, "a.txt", "guarded content\n")
	_, err := f.sync.Build(ctx)
	require.NoError(t, err)
	gen := f.idx.Generation()

	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	stats, err := f.sync.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Removed)
	assert.Equal(t, gen, f.idx.Generation())

	refs, err := f.idx.Search(ctx, "guarded", 100)
	require.NoError(t, err)
	assert.Len(t, refs, 1, "unreadable file should keep its indexed lines")
	_, ok := f.cache.Lines(path)
	assert.True(t, ok)
}

// TestReconcileFailed tests the unreadable-versus-deleted split for files
// whose hashing failed
func TestReconcileFailed(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	keep := f.writeFile(t, "keep.txt", "tracked\n")
	gone := f.writeFile(t, "gone.txt", "tracked too\n")
	_, err := f.sync.Build(ctx)
	require.NoError(t, err)

	// Vanished after the scan would have listed it
	require.NoError(t, os.Remove(gone))

	curr := map[string]scanner.Fingerprint{}
	f.sync.reconcileFailed(curr, []string{keep, gone, filepath.Join(f.dir, "never-seen.txt")})

	assert.Contains(t, curr, keep, "still-present file keeps its fingerprint")
	assert.NotContains(t, curr, gone, "vanished file must classify as removed")
	assert.Len(t, curr, 1)
}

// TestResync_EmptyFile tests that an empty file indexes no lines but is tracked
func TestResync_EmptyFile(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()

	path := f.writeFile(t, "empty.txt", "")

	stats, err := f.sync.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Changed)

	count, err := f.idx.PathDocCount(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A second pass sees it as unchanged
	stats, err = f.sync.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unchanged)
	assert.Equal(t, 0, stats.Changed)
}

// TestResync_CancelledContext tests that cancellation surfaces as an error
func TestResync_CancelledContext(t *testing.T) {
	f := setupFixture(t, nil)
	f.writeFile(t, "a.txt", "content\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.sync.Resync(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
