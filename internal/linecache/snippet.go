package linecache

import "strings"

// Snippet is a context window of lines around a single matched line.
type Snippet struct {
	// Body is the window's text, lines joined with newlines.
	Body string
	// Start and End are the 1-based inclusive line numbers actually used,
	// clamped to the file's bounds.
	Start int
	End   int
}

// Snippet builds a window of up to n lines before and after the 1-based
// matched line. It returns false when the path is not tracked or the line
// number falls outside the cached content, which callers treat as a benign
// race with a concurrent resync.
func (c *Cache) Snippet(path string, line, n int) (Snippet, bool) {
	lines, ok := c.lines[path]
	if !ok {
		return Snippet{}, false
	}

	total := len(lines)
	if line < 1 || line > total {
		return Snippet{}, false
	}

	start := line - 1 - n
	if start < 0 {
		start = 0
	}
	end := line - 1 + n
	if end > total-1 {
		end = total - 1
	}

	return Snippet{
		Body:  strings.Join(lines[start:end+1], "\n"),
		Start: start + 1,
		End:   end + 1,
	}, true
}
