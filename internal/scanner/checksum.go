package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Fingerprint is a SHA-256 content hash used for change detection.
type Fingerprint [sha256.Size]byte

// String returns the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Checksum computes content fingerprints for the given paths, hashing up to
// workers files concurrently (default runtime.NumCPU when workers <= 0).
//
// Files that cannot be opened or read are returned in failed instead of the
// snapshot, so the caller can decide whether they are gone or merely
// unreadable right now. The only error returned is context cancellation.
func Checksum(ctx context.Context, paths []string, workers int) (map[string]Fingerprint, []string, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	snapshot := make(map[string]Fingerprint, len(paths))
	var failed []string
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, workers)

	for _, path := range paths {
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			if err := gctx.Err(); err != nil {
				return err
			}

			fp, err := hashFile(path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, path)
				return nil
			}
			snapshot[path] = fp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Strings(failed)
	return snapshot, failed, nil
}

// hashFile computes the SHA-256 hash of a file's full content.
func hashFile(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return Fingerprint{}, err
	}

	var fp Fingerprint
	copy(fp[:], hash.Sum(nil))
	return fp, nil
}
