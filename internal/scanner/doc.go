// Package scanner discovers candidate files, fingerprints their content and
// classifies changes between scans.
//
// The three pieces form the read-only front half of a resync cycle:
//
//	paths, _ := scanner.Scan(root, excludes)
//	curr, failed, _ := scanner.Checksum(ctx, paths, workers)
//	delta := scanner.Diff(prev, curr)
//
// Scan enumerates regular files under a root, dropping any path containing
// an exclusion pattern. Checksum hashes file content with SHA-256 across a
// bounded worker pool; files that fail to read are reported separately
// rather than silently treated as deleted. Diff is a pure function over two
// fingerprint snapshots.
package scanner
