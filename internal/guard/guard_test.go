package guard

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestGuard_WriterExcludesReaders tests that no reader section overlaps a
// writer section
func TestGuard_WriterExcludesReaders(t *testing.T) {
	var g Guard
	var writing atomic.Bool

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				g.RLock()
				if writing.Load() {
					t.Error("reader observed an active writer section")
				}
				g.RUnlock()
			}
		}()
	}

	for j := 0; j < 100; j++ {
		g.Lock()
		writing.Store(true)
		runtime.Gosched()
		writing.Store(false)
		g.Unlock()
	}
	wg.Wait()
}

// TestGuard_ConcurrentReaders tests that the shared side admits more than
// one holder at a time
func TestGuard_ConcurrentReaders(t *testing.T) {
	var g Guard
	g.RLock()
	defer g.RUnlock()

	acquired := make(chan struct{})
	go func() {
		g.RLock()
		close(acquired)
		g.RUnlock()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked by a held shared section")
	}
}

// TestGuard_ZeroValueUsable tests the documented zero-value contract
func TestGuard_ZeroValueUsable(t *testing.T) {
	var g Guard
	g.Lock()
	g.Unlock()
	g.RLock()
	g.RUnlock()
}
