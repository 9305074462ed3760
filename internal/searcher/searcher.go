// Package searcher answers full-text queries. Each query runs the index
// lookup and the snippet reconstruction under one shared read lock, so the
// hits and the surrounding lines always come from the same sync generation.
package searcher

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/dshills/codesearch/internal/guard"
	"github.com/dshills/codesearch/internal/linecache"
	"github.com/dshills/codesearch/internal/textindex"
	"github.com/dshills/codesearch/pkg/types"
)

const (
	// DefaultMaxResults caps how many hits a single query may return.
	DefaultMaxResults = 10000
	// DefaultCacheSize bounds the memoized query results.
	DefaultCacheSize = 256
	// contextLines is the number of lines shown on each side of a hit.
	contextLines = 3
)

// Options tunes a Searcher. Zero values take the defaults above.
type Options struct {
	MaxResults int
	CacheSize  int
}

// Searcher resolves queries against the index and line cache.
type Searcher struct {
	idx        *textindex.Index
	lines      *linecache.Cache
	guard      *guard.Guard
	logger     *zap.Logger
	recent     *lru.Cache[[sha256.Size]byte, []types.SearchResult]
	maxResults int
}

// New creates a Searcher. The guard must be the instance the synchronizer
// writes under.
func New(idx *textindex.Index, lines *linecache.Cache, g *guard.Guard, logger *zap.Logger, opts Options) (*Searcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	recent, err := lru.New[[sha256.Size]byte, []types.SearchResult](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	return &Searcher{
		idx:        idx,
		lines:      lines,
		guard:      g,
		logger:     logger,
		recent:     recent,
		maxResults: opts.MaxResults,
	}, nil
}

// Search runs one query and reports the elapsed wall time in the response.
// It never fails: an empty or unmatchable query, or an index error, yields
// an empty result set.
func (s *Searcher) Search(ctx context.Context, query string) *types.SearchResponse {
	start := time.Now()

	results := s.search(ctx, query)
	if results == nil {
		results = []types.SearchResult{}
	}

	resp := &types.SearchResponse{Results: results}
	resp.Elapsed(time.Since(start))
	return resp
}

func (s *Searcher) search(ctx context.Context, query string) []types.SearchResult {
	s.guard.RLock()
	defer s.guard.RUnlock()

	// The generation keys the memo, so results cached before a resync can
	// never be served after it.
	key := cacheKey(s.idx.Generation(), query)
	if cached, ok := s.recent.Get(key); ok {
		return cached
	}

	refs, err := s.idx.Search(ctx, query, s.maxResults)
	if err != nil {
		s.logger.Warn("query failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	results := make([]types.SearchResult, 0, len(refs))
	for _, ref := range refs {
		snip, ok := s.lines.Snippet(ref.Path, ref.Line, contextLines)
		if !ok {
			// A miss here means the caller wired mismatched index and cache
			// instances; the guard rules it out in normal operation.
			s.logger.Warn("hit without cached lines",
				zap.String("path", ref.Path),
				zap.Int("line", ref.Line),
			)
			continue
		}
		results = append(results, types.SearchResult{
			Body: snip.Body,
			Path: ref.Path,
			Line: ref.Line,
			LineRange: types.LineRange{
				Start: snip.Start,
				End:   snip.End,
			},
		})
	}

	s.recent.Add(key, results)
	return results
}

func cacheKey(generation uint64, query string) [sha256.Size]byte {
	h := sha256.New()
	var gen [8]byte
	binary.BigEndian.PutUint64(gen[:], generation)
	h.Write(gen[:])
	h.Write([]byte(query))

	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))
	return key
}
