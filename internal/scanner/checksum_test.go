package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChecksum_Success tests fingerprinting a set of files
func TestChecksum_Success(t *testing.T) {
	tmpDir := t.TempDir()

	pathA := createTestFile(t, tmpDir, "a.txt", "alpha\n")
	pathB := createTestFile(t, tmpDir, "b.txt", "beta\n")

	snapshot, failed, err := Checksum(context.Background(), []string{pathA, pathB}, 2)

	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, snapshot, 2)
	assert.NotEqual(t, snapshot[pathA], snapshot[pathB])
}

// TestChecksum_Deterministic tests that equal content hashes equally
func TestChecksum_Deterministic(t *testing.T) {
	tmpDir := t.TempDir()

	pathA := createTestFile(t, tmpDir, "a.txt", "same content\n")
	pathB := createTestFile(t, tmpDir, "b.txt", "same content\n")

	snapshot, _, err := Checksum(context.Background(), []string{pathA, pathB}, 1)

	require.NoError(t, err)
	assert.Equal(t, snapshot[pathA], snapshot[pathB])

	// A second pass over the same file must produce the same fingerprint
	again, _, err := Checksum(context.Background(), []string{pathA}, 1)
	require.NoError(t, err)
	assert.Equal(t, snapshot[pathA], again[pathA])
}

// TestChecksum_FailedFilesExcluded tests that unreadable files land in failed
func TestChecksum_FailedFilesExcluded(t *testing.T) {
	tmpDir := t.TempDir()

	good := createTestFile(t, tmpDir, "good.txt", "ok\n")
	missing := filepath.Join(tmpDir, "missing.txt")

	snapshot, failed, err := Checksum(context.Background(), []string{good, missing}, 2)

	require.NoError(t, err)
	assert.Len(t, snapshot, 1)
	assert.Contains(t, snapshot, good)
	assert.Equal(t, []string{missing}, failed)
}

// TestChecksum_EmptyInput tests hashing an empty path set
func TestChecksum_EmptyInput(t *testing.T) {
	snapshot, failed, err := Checksum(context.Background(), nil, 4)

	require.NoError(t, err)
	assert.Empty(t, snapshot)
	assert.Empty(t, failed)
}

// TestChecksum_BoundedConcurrency tests a large batch with few workers
func TestChecksum_BoundedConcurrency(t *testing.T) {
	tmpDir := t.TempDir()

	var paths []string
	for i := 0; i < 50; i++ {
		paths = append(paths, createTestFile(t, tmpDir, fmt.Sprintf("file%d.txt", i),
			fmt.Sprintf("content %d\n", i)))
	}

	snapshot, failed, err := Checksum(context.Background(), paths, 3)

	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Len(t, snapshot, 50)
}

// TestChecksum_ContextCancellation tests that a cancelled context aborts hashing
func TestChecksum_ContextCancellation(t *testing.T) {
	tmpDir := t.TempDir()

	var paths []string
	for i := 0; i < 100; i++ {
		paths = append(paths, createTestFile(t, tmpDir, fmt.Sprintf("file%d.txt", i), "x\n"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Checksum(ctx, paths, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestChecksum_DefaultWorkers tests that workers <= 0 falls back to a sane pool
func TestChecksum_DefaultWorkers(t *testing.T) {
	tmpDir := t.TempDir()
	path := createTestFile(t, tmpDir, "a.txt", "alpha\n")

	snapshot, _, err := Checksum(context.Background(), []string{path}, 0)

	require.NoError(t, err)
	assert.Len(t, snapshot, 1)
}

// TestFingerprint_String tests hex rendering
func TestFingerprint_String(t *testing.T) {
	var fp Fingerprint
	fp[0] = 0xab
	assert.Len(t, fp.String(), 64)
	assert.Equal(t, "ab", fp.String()[:2])
}
