// Package selector implements the algorithm-selection policy (spec §4.6):
// choosing between the fast block-hash matcher and the strong suffix-array
// matcher based on input sizes and a cheap similarity probe, the way the
// teacher's level_params.go picks fixed per-level tuning by table lookup.
package selector

import "github.com/woozymasta/xdelta/internal/fastmatch"

// Algorithm identifies which matcher path produced a delta's instruction
// stream; stored as the container header's 4-bit algorithm id (spec §6).
type Algorithm uint8

const (
	Fast Algorithm = iota
	Strong
	Identity // reserved: N == B, body is empty
)

// Thresholds from spec §4.6.
const (
	SmallThreshold      = 4 << 10 // 4 KiB: below this, construction cost dominates
	LargeThreshold      = 8 << 20 // 8 MiB: above this, memory-constrained callers want the fast path
	probeSampleFraction = 100     // sample ~1% of N
	probeMatchRateFloor = 0.20    // below this hit rate, the strong path's extra cost isn't worth it
)

// Choose picks Fast or Strong for the given base/new sizes. When the larger
// of the two sizes is above SmallThreshold and base is below LargeThreshold,
// it runs a cheap similarity probe
// (a sampled fastmatch scan over ~1% of new) and falls back to Fast if the
// measured match rate is too low to justify building a suffix array.
func Choose(base, target []byte) Algorithm {
	maxLen := len(base)
	if len(target) > maxLen {
		maxLen = len(target)
	}

	if maxLen <= SmallThreshold {
		return Fast
	}
	if len(base) >= LargeThreshold {
		return Fast
	}

	if probe(base, target) < probeMatchRateFloor {
		return Fast
	}
	return Strong
}

// probe estimates how well target matches base using the fast block
// matcher over a 1-in-probeSampleFraction sample of target, cheaper than
// building a suffix array just to decide not to use one.
func probe(base, target []byte) float64 {
	if len(target) == 0 {
		return 1 // nothing to encode; path choice is moot
	}

	idx := fastmatch.Build(base, fastmatch.DefaultBlockSize)
	defer fastmatch.Release(idx)
	step := probeSampleFraction
	if step < 1 {
		step = 1
	}

	sampled, matched := 0, 0
	for j := 0; j < len(target); j += step {
		sampled++
		if _, length := idx.LongestMatch(target, j, 1); length > 0 {
			matched++
		}
	}

	if sampled == 0 {
		return 0
	}
	return float64(matched) / float64(sampled)
}
