package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// Scan finds all regular files under root, skipping any path that contains
// one of the exclusion patterns.
//
// Directories and special files are never returned. Entries that cannot be
// read are skipped rather than failing the scan; only a root that cannot be
// walked at all produces an error. No ordering is guaranteed.
func Scan(root string, excludePatterns []string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entry, skip it
			return nil
		}

		if info.IsDir() {
			if path != root && excluded(path, excludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if excluded(path, excludePatterns) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// excluded reports whether path contains any of the patterns as a substring.
func excluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
