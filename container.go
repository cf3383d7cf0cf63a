// SPDX-License-Identifier: GPL-2.0-only

package xdelta

import (
	"errors"
	"fmt"

	"github.com/woozymasta/xdelta/internal/postcompress"
	"github.com/woozymasta/xdelta/internal/selector"
	"github.com/woozymasta/xdelta/internal/varint"
)

// Container layout (spec §6), a self-describing header followed by a
// (possibly post-compressed) instruction stream body:
//
//	byte 0      : 0x58                      magic
//	byte 1 high : 4-bit algorithm id        (Fast=0, Strong=1, Identity=2)
//	byte 1 low  : 4-bit tag slot            (0..14 literal; 15 = extended tag follows)
//	byte 2 bit0 : postcompress flag
//	byte 2 bit1 : reserved, must be 0
//	byte 2 bits2..7 : format-version minor  (must be 0; this is v1)
//	[varint]    : extended tag              (present iff tag slot == 15)
//	[varint]    : decoded length |N|
//	[byte]      : postcompress algorithm id (present iff postcompress flag set;
//	              this project's own extension beyond the distilled spec's
//	              single-flag postcompress bit, needed because three block
//	              compressors are wired in instead of one — see DESIGN.md)
//	body        : instruction stream, optionally post-compressed
const magic = 0x58

const maxTagSlot = 14
const extendedTagSentinel = 15

type header struct {
	algo             selector.Algorithm
	tag              uint64
	postcompress     bool
	postcompressAlgo postcompress.Algorithm
	decodedLen       uint64
}

func encodeHeader(h header) []byte {
	out := make([]byte, 0, 16)
	out = append(out, magic)

	tagSlot := byte(extendedTagSentinel)
	if h.tag <= maxTagSlot {
		tagSlot = byte(h.tag)
	}
	out = append(out, (byte(h.algo)<<4)|tagSlot)

	var b2 byte
	if h.postcompress {
		b2 |= 0x01
	}
	out = append(out, b2)

	if tagSlot == extendedTagSentinel {
		out = varint.Append(out, h.tag)
	}

	out = varint.Append(out, h.decodedLen)

	if h.postcompress {
		out = append(out, byte(h.postcompressAlgo))
	}

	return out
}

// decodeHeader parses d's header, returning the parsed fields and the
// offset at which the body begins.
func decodeHeader(d []byte) (h header, bodyStart int, err error) {
	if len(d) < 3 {
		return header{}, 0, fmt.Errorf("%w: delta shorter than fixed header", ErrMalformedHeader)
	}
	if d[0] != magic {
		return header{}, 0, fmt.Errorf("%w: bad magic byte", ErrMalformedHeader)
	}

	algo := selector.Algorithm(d[1] >> 4)
	if algo > selector.Identity {
		return header{}, 0, fmt.Errorf("%w: unknown algorithm id %d", ErrMalformedHeader, algo)
	}
	tagSlot := d[1] & 0x0F
	if tagSlot > extendedTagSentinel {
		return header{}, 0, fmt.Errorf("%w: invalid tag slot", ErrMalformedHeader)
	}

	b2 := d[2]
	if b2&0x02 != 0 {
		return header{}, 0, fmt.Errorf("%w: reserved bit set", ErrMalformedHeader)
	}
	if b2>>2 != 0 {
		return header{}, 0, fmt.Errorf("%w: unsupported format version", ErrMalformedHeader)
	}
	h.postcompress = b2&0x01 != 0

	pos := 3
	if tagSlot == extendedTagSentinel {
		tag, n, verr := decodeHeaderVarint(d, pos)
		if verr != nil {
			return header{}, 0, verr
		}
		h.tag = tag
		pos += n
	} else {
		h.tag = uint64(tagSlot)
	}

	decodedLen, n, verr := decodeHeaderVarint(d, pos)
	if verr != nil {
		return header{}, 0, verr
	}
	h.decodedLen = decodedLen
	pos += n

	h.algo = algo
	if h.postcompress {
		if pos >= len(d) {
			return header{}, 0, fmt.Errorf("%w: truncated postcompress algorithm byte", ErrMalformedHeader)
		}
		pcAlgo := postcompress.Algorithm(d[pos])
		if pcAlgo > postcompress.LZ4 {
			return header{}, 0, fmt.Errorf("%w: unknown postcompress algorithm %d", ErrMalformedHeader, pcAlgo)
		}
		h.postcompressAlgo = pcAlgo
		pos++
	}

	return h, pos, nil
}

// peekTagHeader parses only as much of d's header as is needed to recover
// the tag, per spec §6(e): "allow peek_tag to succeed after reading only
// the first few bytes."
func peekTagHeader(d []byte) (uint64, error) {
	if len(d) < 3 {
		return 0, fmt.Errorf("%w: delta shorter than fixed header", ErrMalformedHeader)
	}
	if d[0] != magic {
		return 0, fmt.Errorf("%w: bad magic byte", ErrMalformedHeader)
	}

	tagSlot := d[1] & 0x0F
	if tagSlot > extendedTagSentinel {
		return 0, fmt.Errorf("%w: invalid tag slot", ErrMalformedHeader)
	}
	if tagSlot != extendedTagSentinel {
		return uint64(tagSlot), nil
	}

	tag, _, err := decodeHeaderVarint(d, 3)
	if err != nil {
		return 0, err
	}
	return tag, nil
}

func decodeHeaderVarint(d []byte, pos int) (uint64, int, error) {
	if pos > len(d) {
		return 0, 0, fmt.Errorf("%w: header ends before varint", ErrMalformedHeader)
	}
	v, n, err := varint.Decode(d[pos:])
	switch {
	case errors.Is(err, varint.ErrOverflow):
		return 0, 0, fmt.Errorf("%w: header varint", ErrVarintOverflow)
	case errors.Is(err, varint.ErrTruncated):
		return 0, 0, fmt.Errorf("%w: header ends mid-varint", ErrMalformedHeader)
	case err != nil:
		return 0, 0, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	return v, n, nil
}
