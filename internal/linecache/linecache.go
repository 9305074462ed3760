// Package linecache holds, per tracked file, the exact ordered lines that
// were last written to the text index.
//
// The cache is the snippet source for search results: the index answers
// "path P line N matches" and the cache supplies the surrounding text. The
// index synchronizer replaces or drops entries as part of a resync cycle;
// the search coordinator only reads. Callers serialize those two roles with
// the shared guard, so the cache itself stays a plain map.
package linecache

// Cache maps a file path to its indexed lines.
type Cache struct {
	lines map[string][]string
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{lines: make(map[string][]string)}
}

// Replace installs lines as the cached content for path, overwriting any
// previous entry. The slice is stored as-is; callers must not mutate it
// afterwards.
func (c *Cache) Replace(path string, lines []string) {
	c.lines[path] = lines
}

// Drop removes the entry for path. Dropping an unknown path is a no-op.
func (c *Cache) Drop(path string) {
	delete(c.lines, path)
}

// Lines returns the cached lines for path and whether an entry exists.
func (c *Cache) Lines(path string) ([]string, bool) {
	lines, ok := c.lines[path]
	return lines, ok
}

// LineCount returns the number of cached lines for path, or 0 when the path
// is not tracked.
func (c *Cache) LineCount(path string) int {
	return len(c.lines[path])
}

// Len returns the number of tracked files.
func (c *Cache) Len() int {
	return len(c.lines)
}

// Paths returns every tracked path, in no particular order.
func (c *Cache) Paths() []string {
	paths := make([]string, 0, len(c.lines))
	for path := range c.lines {
		paths = append(paths, path)
	}
	return paths
}
