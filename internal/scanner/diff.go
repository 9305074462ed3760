package scanner

import "sort"

// Delta classifies every path from two fingerprint snapshots into exactly
// one of three disjoint sets.
type Delta struct {
	// AddedOrModified holds paths present in the current snapshot that are
	// either new or carry a different fingerprint than before.
	AddedOrModified []string
	// Removed holds paths present in the previous snapshot but absent from
	// the current one.
	Removed []string
	// Unchanged holds paths whose fingerprint is identical in both.
	Unchanged []string
}

// Empty reports whether the delta contains no additions, modifications or
// removals.
func (d Delta) Empty() bool {
	return len(d.AddedOrModified) == 0 && len(d.Removed) == 0
}

// Diff compares a previous and a current fingerprint snapshot. It performs
// no I/O; fingerprints are compared by value only. Output slices are sorted
// for determinism.
func Diff(prev, curr map[string]Fingerprint) Delta {
	var delta Delta

	for path, fp := range curr {
		old, ok := prev[path]
		if ok && old == fp {
			delta.Unchanged = append(delta.Unchanged, path)
		} else {
			delta.AddedOrModified = append(delta.AddedOrModified, path)
		}
	}

	for path := range prev {
		if _, ok := curr[path]; !ok {
			delta.Removed = append(delta.Removed, path)
		}
	}

	sort.Strings(delta.AddedOrModified)
	sort.Strings(delta.Removed)
	sort.Strings(delta.Unchanged)
	return delta
}
