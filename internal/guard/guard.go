// Package guard provides the reader/writer discipline shared by the index
// synchronizer and the search coordinator.
//
// The text index and the line cache must always be observed as a pair from
// the same committed generation. Searches take the shared side for the whole
// of "query index, reconstruct snippets from cache"; a resync cycle takes the
// exclusive side only for the apply-and-commit phase, after all file reading
// and hashing is done. Holding the shared side across both lookups is what
// rules out a reader pairing one generation's index with another generation's
// cache.
package guard

import "sync"

// Guard is the reader/writer lock for the shared search state.
//
// The zero value is ready to use.
type Guard struct {
	mu sync.RWMutex
}

// RLock acquires the shared side. Many searches may hold it concurrently.
func (g *Guard) RLock() { g.mu.RLock() }

// RUnlock releases the shared side.
func (g *Guard) RUnlock() { g.mu.RUnlock() }

// Lock acquires the exclusive side, blocking all searches and any other
// writer until Unlock.
func (g *Guard) Lock() { g.mu.Lock() }

// Unlock releases the exclusive side.
func (g *Guard) Unlock() { g.mu.Unlock() }
