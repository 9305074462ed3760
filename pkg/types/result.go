package types

import "time"

// LineRange is the 1-based inclusive range of lines a snippet spans.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchResult is a single matched line together with its context snippet.
type SearchResult struct {
	// Body is the snippet text: the matched line plus surrounding context
	// lines, joined with newlines.
	Body string `json:"body"`

	// Path identifies the file the match came from.
	Path string `json:"path"`

	// Line is the 1-based number of the matched line.
	Line int `json:"line"`

	// LineRange is the range of lines actually included in Body, clamped
	// to the file's bounds.
	LineRange LineRange `json:"line_range"`
}

// SearchResponse is the full answer to one query.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	// Time is elapsed wall-clock seconds for the whole search.
	Time float64 `json:"time"`
}

// Elapsed records the duration of the search as fractional seconds.
func (r *SearchResponse) Elapsed(d time.Duration) {
	r.Time = d.Seconds()
}

// Validate checks if the search result is well formed.
func (sr *SearchResult) Validate() error {
	if sr.Path == "" {
		return ErrMissingPath
	}
	if sr.Line < 1 {
		return ErrInvalidLine
	}
	if sr.LineRange.Start < 1 || sr.LineRange.End < sr.LineRange.Start {
		return ErrInvalidLineRange
	}
	if sr.Line < sr.LineRange.Start || sr.Line > sr.LineRange.End {
		return ErrLineOutsideRange
	}
	return nil
}
