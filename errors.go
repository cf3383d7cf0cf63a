// SPDX-License-Identifier: GPL-2.0-only

package xdelta

import "errors"

// Sentinel errors for Decode and PeekTag (spec §7). Each is a distinct,
// errors.Is-inspectable kind; wrapped errors from internal packages carry
// the lower-level detail alongside these.
var (
	// ErrMalformedHeader is returned when a delta's header is missing its
	// magic byte, names an unknown algorithm id, or has a nonzero reserved
	// bit.
	ErrMalformedHeader = errors.New("xdelta: malformed header")
	// ErrTruncatedBody is returned when the body ends mid-instruction or
	// mid-literal.
	ErrTruncatedBody = errors.New("xdelta: truncated body")
	// ErrCopyOutOfRange is returned when a Copy instruction references
	// bytes outside the base sequence.
	ErrCopyOutOfRange = errors.New("xdelta: copy out of range")
	// ErrLengthMismatch is returned when the decoded output length differs
	// from the length declared in the header.
	ErrLengthMismatch = errors.New("xdelta: decoded length mismatch")
	// ErrVarintOverflow is returned when a varint (header or instruction
	// stream) exceeds 64 bits.
	ErrVarintOverflow = errors.New("xdelta: varint overflow")
	// ErrPostcompressFailure is returned when the block compressor's
	// inverse rejects a post-compressed body.
	ErrPostcompressFailure = errors.New("xdelta: postcompress failure")
)
