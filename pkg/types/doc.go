// Package types provides shared type definitions for the codesearch service.
//
// The wire format of a search answer is fixed:
//
//	{
//	  "results": [
//	    {
//	      "body": "line 1\nline 2\nline 3",
//	      "path": "internal/foo/foo.go",
//	      "line": 2,
//	      "line_range": {"start": 1, "end": 3}
//	    }
//	  ],
//	  "time": 0.0021
//	}
//
// SearchResult carries one matched line with a context snippet around it;
// SearchResponse wraps all results of a query with the elapsed wall-clock
// time. Both types are point-in-time views assembled from the committed
// index generation current at query time; they are never persisted.
package types
