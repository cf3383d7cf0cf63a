// Package rollinghash implements the content-defined fingerprint used by the
// fast-path matcher (spec §4.2): a fixed-window polynomial hash supporting
// O(1) slide, plus a block-key hash used to index non-overlapping blocks of
// the base sequence. Neither appears on the wire; both are encoder-internal
// and may change freely across versions.
package rollinghash

import "github.com/cespare/xxhash/v2"

// base is the polynomial multiplier. Chosen the way the teacher's head3
// helper picks its constants: an odd multiplier with good bit dispersion,
// not meant to be cryptographically meaningful.
const base uint64 = 0x100000001b3

// pow is base^(window-1) mod 2^64, precomputed so Slide can remove the
// outgoing byte's contribution in O(1).
type Window struct {
	size uint64
	pow  uint64
	hash uint64
}

// New builds a rolling hash over the first len(data) bytes (which must equal
// size), ready for Slide calls as the window advances one byte at a time.
func New(data []byte, size int) *Window {
	w := &Window{size: uint64(size)}
	w.pow = 1
	for i := 1; i < size; i++ {
		w.pow *= base
	}
	for _, b := range data {
		w.hash = w.hash*base + uint64(b)
	}
	return w
}

// Sum returns the current window's hash.
func (w *Window) Sum() uint64 {
	return w.hash
}

// Slide removes outByte (leaving the window) and adds inByte (entering it),
// updating the hash in O(1).
func (w *Window) Slide(outByte, inByte byte) {
	w.hash -= uint64(outByte) * w.pow
	w.hash = w.hash*base + uint64(inByte)
}

// BlockKey returns a stable 64-bit key for a fixed-size block, used by the
// fast-path matcher's block index (spec §4.4). This is a distinct hash from
// the sliding Window above: it has no O(1) slide requirement, so it uses
// xxhash64 the way arloliu/mebo's internal/hash package hashes identifiers.
func BlockKey(block []byte) uint64 {
	return xxhash.Sum64(block)
}
