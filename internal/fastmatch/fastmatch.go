// Package fastmatch implements the fast-path matcher (spec §4.4): a
// non-overlapping block hash index over the base sequence, scanned with a
// rolling hash over the new sequence and verified/extended on each hit.
// Construction is O(|B|); scanning is O(|N|) total, since the per-position
// fingerprint (spec §4.2) is maintained incrementally rather than
// recomputed from scratch at each position.
package fastmatch

import (
	"sync"

	"github.com/woozymasta/xdelta/internal/rollinghash"
)

// DefaultBlockSize is the non-overlapping block size used to index the base
// sequence, chosen in the 16-64 byte range the spec recommends (§4.4).
const DefaultBlockSize = 32

// blockEntry is a base block's table entry: its first occurrence offset plus
// the strong (xxhash) key for that offset's bytes, used to reject a rolling-
// hash collision before paying for a byte compare.
type blockEntry struct {
	offset int
	strong uint64
}

// Index is a block hash table over a base sequence, built once and queried
// by LongestMatch as the new sequence is walked left to right. Scanning
// maintains a rolling-hash Window over the current position in N (spec
// §4.2/§4.4: "slide a window of size W across N, maintain its rolling
// hash"), advancing it in O(1) per step rather than rehashing the window
// from scratch; the window's value only serves as a candidate filter, so a
// hit still confirms against the table's strong (xxhash) key and finally
// against the raw bytes before it is trusted.
type Index struct {
	base      []byte
	blockSize int
	// table maps a block's rolling-hash value to its blockEntry (spec:
	// "only the first occurrence per hash bucket need be kept").
	table map[uint64]blockEntry

	// Incremental scan state: the rolling Window currently covering
	// n[lastJ : lastJ+blockSize] for whichever n was last scanned, so a
	// LongestMatch call at lastJ+1 can Slide instead of rehashing.
	window *rollinghash.Window
	lastN  []byte
	lastJ  int
}

// indexPool recycles Index values (and their table maps) across Build/Release
// pairs, the way the teacher pools sliding window dictionaries.
var indexPool = sync.Pool{
	New: func() any {
		return &Index{}
	},
}

// Build indexes base into non-overlapping blocks of blockSize bytes.
// blockSize must be >= 1; DefaultBlockSize is used if blockSize <= 0.
func Build(base []byte, blockSize int) *Index {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	idx := indexPool.Get().(*Index)
	idx.base = base
	idx.blockSize = blockSize
	idx.window = nil
	idx.lastN = nil
	idx.lastJ = -1
	if idx.table == nil {
		idx.table = make(map[uint64]blockEntry)
	} else {
		clear(idx.table)
	}

	for pos := 0; pos+blockSize <= len(base); pos += blockSize {
		block := base[pos : pos+blockSize]
		key := rollinghash.New(block, blockSize).Sum()
		if _, exists := idx.table[key]; !exists {
			idx.table[key] = blockEntry{offset: pos, strong: rollinghash.BlockKey(block)}
		}
	}
	return idx
}

// Release returns idx to the pool for reuse by a future Build call. Callers
// must not use idx after calling Release.
func Release(idx *Index) {
	if idx == nil {
		return
	}
	idx.base = nil
	idx.window = nil
	idx.lastN = nil
	indexPool.Put(idx)
}

// rollingKey returns the rolling-hash value of window (== n[j:j+blockSize]),
// sliding the incrementally maintained Window by one position when this call
// continues the previous one (same n, j == lastJ+1), and rehashing from
// scratch otherwise (a fresh scan, or the lazy-lookahead/jump-ahead call
// patterns match.Run also makes).
func (idx *Index) rollingKey(n, window []byte, j int) uint64 {
	if idx.window != nil && len(idx.lastN) == len(n) && &idx.lastN[0] == &n[0] && j == idx.lastJ+1 {
		idx.window.Slide(n[idx.lastJ], window[len(window)-1])
	} else {
		idx.window = rollinghash.New(window, idx.blockSize)
	}
	idx.lastN = n
	idx.lastJ = j
	return idx.window.Sum()
}

// LongestMatch scans the blockSize-wide window starting at n[j:] for a hit
// against the block index, verifies it byte-for-byte (hash collisions are
// expected per spec §4.2), and extends the match forward as far as it
// agrees in both sequences. The match is not extended backward: it always
// starts at n[j]. minMatch rejects matches shorter than that floor. It satisfies the same Matcher contract as suffixarray.Index.
func (idx *Index) LongestMatch(n []byte, j int, minMatch int) (offset, length int) {
	if idx.blockSize <= 0 || j+idx.blockSize > len(n) || len(n) == 0 {
		return 0, 0
	}

	window := n[j : j+idx.blockSize]
	entry, ok := idx.table[idx.rollingKey(n, window, j)]
	if !ok {
		return 0, 0 // rolling-hash fingerprint has no candidate block
	}

	// Confirm with the strong (xxhash) key before paying for a byte compare;
	// the rolling hash is a cheap filter and is expected to collide (§4.2).
	if entry.strong != rollinghash.BlockKey(window) {
		return 0, 0
	}

	basePos := entry.offset
	baseWindow := idx.base[basePos : basePos+idx.blockSize]
	for i := range window {
		if window[i] != baseWindow[i] {
			return 0, 0 // hash collision; §4.2 requires byte verification
		}
	}

	// Extend forward past the matched block. The spec allows bidirectional
	// extension (§4.4); backward extension is skipped here because the
	// Matcher contract (shared with suffixarray.Index) always reports a
	// match anchored at n[j:] so the greedy driver's already-emitted
	// literal run is never retroactively revised. (Documented tradeoff; see
	// DESIGN.md.)
	end := j + idx.blockSize
	baseEnd := basePos + idx.blockSize
	for end < len(n) && baseEnd < len(idx.base) && n[end] == idx.base[baseEnd] {
		end++
		baseEnd++
	}

	length = end - j
	if length < minMatch {
		return 0, 0
	}
	return basePos, length
}
