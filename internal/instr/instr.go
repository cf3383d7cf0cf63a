// Package instr implements the instruction stream (spec §4.5): a compact
// encoding of COPY(base_offset, length) and ADD(literal bytes) operations
// whose concatenated output reproduces the new sequence given the base.
//
// Tag-byte partition (this project's own choice; not wire-stable across
// major versions per spec §4.5/§9):
//
//	tag 0..59    Add,  inline length = tag+1          (1..60 literal bytes follow)
//	tag 60       Add,  varint(length-61) follows, then that many literal bytes
//	tag 61..254  Copy, inline length = tag-57          (MinMatch..197), then
//	             a varint zigzag delta of base_offset from the previous copy's end
//	tag 255      Copy, varint(length-198) follows, then a varint zigzag
//	             base_offset delta
//
// MinMatch is 4: the shortest inline Copy (tag 61) encodes length 4.
package instr

import (
	"errors"
	"fmt"

	"github.com/woozymasta/xdelta/internal/varint"
)

// MinMatch is the shortest length a Copy instruction may encode.
const MinMatch = 4

const (
	litInlineMax  = 59  // tags 0..59: inline Add length 1..60
	litLongTag    = 60  // tag 60: Add with varint length
	copyShortBase = 61  // first Copy-inline tag
	copyShortMax  = 254 // last Copy-inline tag (inclusive)
	copyLongTag   = 255 // tag 255: Copy with varint length

	copyShortLenMax = (copyShortMax - copyShortBase) + MinMatch // 197
)

// Errors the decoder can return; each is a distinct, inspectable kind
// per spec §7.
var (
	ErrTruncatedBody  = errors.New("instr: truncated instruction stream")
	ErrCopyOutOfRange = errors.New("instr: copy references bytes outside base")
	ErrVarintOverflow = errors.New("instr: varint exceeds 64 bits")
)

// Kind distinguishes the two instruction shapes.
type Kind uint8

const (
	KindAdd Kind = iota
	KindCopy
)

// Instruction is a single COPY or ADD step (spec §3). Length is always >= 1
// for Add (== len(Literal)) and >= MinMatch for Copy.
type Instruction struct {
	Kind       Kind
	BaseOffset uint64
	Length     uint64
	Literal    []byte
}

// Add builds an Add instruction. literal must be non-empty.
func Add(literal []byte) Instruction {
	return Instruction{Kind: KindAdd, Length: uint64(len(literal)), Literal: literal}
}

// Copy builds a Copy instruction.
func Copy(baseOffset, length uint64) Instruction {
	return Instruction{Kind: KindCopy, BaseOffset: baseOffset, Length: length}
}

// Encode serializes instrs into the wire format described above. Adjacent
// Add instructions are not merged here; callers (the matcher drivers)
// SHOULD already emit merged literal runs per spec §3.
func Encode(instrs []Instruction) []byte {
	var out []byte
	prevCopyEnd := uint64(0)

	for _, ins := range instrs {
		switch ins.Kind {
		case KindAdd:
			out = appendAdd(out, ins.Literal)
		case KindCopy:
			out = appendCopy(out, ins.BaseOffset, ins.Length, &prevCopyEnd)
		}
	}
	return out
}

func appendAdd(out []byte, literal []byte) []byte {
	n := len(literal)
	if n == 0 {
		return out
	}

	if n <= litInlineMax+1 {
		out = append(out, byte(n-1))
	} else {
		out = append(out, litLongTag)
		out = varint.Append(out, uint64(n-(litInlineMax+2)))
	}
	return append(out, literal...)
}

func appendCopy(out []byte, baseOffset, length uint64, prevCopyEnd *uint64) []byte {
	delta := varint.ZigZagEncode(int64(baseOffset) - int64(*prevCopyEnd))

	if length >= MinMatch && length <= copyShortLenMax {
		tag := copyShortBase + (length - MinMatch)
		out = append(out, byte(tag))
	} else {
		out = append(out, copyLongTag)
		out = varint.Append(out, length-(copyShortLenMax+1))
	}

	out = varint.Append(out, delta)
	*prevCopyEnd = baseOffset + length
	return out
}

// Decode applies the instruction stream in body against base, writing the
// reconstructed bytes directly into a buffer of declaredLen and returning
// it. It fails with ErrTruncatedBody if the stream ends mid-instruction or
// mid-literal, ErrCopyOutOfRange if a Copy references bytes outside base,
// or ErrVarintOverflow if an embedded varint exceeds 64 bits.
func Decode(body []byte, base []byte, declaredLen uint64) ([]byte, error) {
	out := make([]byte, 0, declaredLen)
	prevCopyEnd := uint64(0)
	pos := 0

	for pos < len(body) {
		tag := body[pos]
		pos++

		switch {
		case tag <= litInlineMax:
			n := int(tag) + 1
			if pos+n > len(body) {
				return nil, ErrTruncatedBody
			}
			out = append(out, body[pos:pos+n]...)
			pos += n

		case tag == litLongTag:
			extra, adv, err := decodeVarint(body, pos)
			if err != nil {
				return nil, err
			}
			pos += adv
			n := extra + uint64(litInlineMax+2)
			if n > uint64(len(body)-pos) {
				return nil, ErrTruncatedBody
			}
			out = append(out, body[pos:pos+int(n)]...)
			pos += int(n)

		case tag >= copyShortBase && tag <= copyShortMax:
			length := uint64(tag-copyShortBase) + MinMatch
			delta, adv, err := decodeVarint(body, pos)
			if err != nil {
				return nil, err
			}
			pos += adv

			baseOffset := uint64(int64(prevCopyEnd) + varint.ZigZagDecode(delta))
			if err := appendCopyRange(&out, base, baseOffset, length); err != nil {
				return nil, err
			}
			prevCopyEnd = baseOffset + length

		default: // copyLongTag
			extra, adv, err := decodeVarint(body, pos)
			if err != nil {
				return nil, err
			}
			pos += adv
			length := extra + copyShortLenMax + 1

			delta, adv2, err := decodeVarint(body, pos)
			if err != nil {
				return nil, err
			}
			pos += adv2

			baseOffset := uint64(int64(prevCopyEnd) + varint.ZigZagDecode(delta))
			if err := appendCopyRange(&out, base, baseOffset, length); err != nil {
				return nil, err
			}
			prevCopyEnd = baseOffset + length
		}
	}

	return out, nil
}

func decodeVarint(body []byte, pos int) (uint64, int, error) {
	v, n, err := varint.Decode(body[pos:])
	switch {
	case errors.Is(err, varint.ErrOverflow):
		return 0, 0, ErrVarintOverflow
	case errors.Is(err, varint.ErrTruncated):
		return 0, 0, ErrTruncatedBody
	case err != nil:
		return 0, 0, fmt.Errorf("instr: %w", err)
	}
	return v, n, nil
}

func appendCopyRange(out *[]byte, base []byte, baseOffset, length uint64) error {
	if length == 0 {
		return nil
	}
	if baseOffset > uint64(len(base)) || length > uint64(len(base))-baseOffset {
		return ErrCopyOutOfRange
	}
	*out = append(*out, base[baseOffset:baseOffset+length]...)
	return nil
}
