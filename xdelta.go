// SPDX-License-Identifier: GPL-2.0-only

package xdelta

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/woozymasta/xdelta/internal/fastmatch"
	"github.com/woozymasta/xdelta/internal/instr"
	"github.com/woozymasta/xdelta/internal/match"
	"github.com/woozymasta/xdelta/internal/postcompress"
	"github.com/woozymasta/xdelta/internal/selector"
	"github.com/woozymasta/xdelta/internal/suffixarray"
)

// identityMaxSize bounds the Identity-shortcut delta size (spec §8 property
// 4: "bounded size, e.g. <= 16 bytes regardless of |B|"). Magic + algo/tag
// byte + flags byte + up to two small varints comfortably fits under this.
const identityMaxSize = 16

// Encode produces a delta D from which Decode(base, D) reconstructs new
// given base, embedding tag (opaque metadata; 0..14 stored at zero extra
// space, 15 and above as a trailing varint) in the container header. allowPostcompress enables the
// post-compression envelope (spec §4.7) with its default algorithm (zstd);
// use EncodeWithOptions to pick a different one or tune matcher parameters.
func Encode(tag uint64, base, newData []byte, allowPostcompress bool) ([]byte, error) {
	opts := DefaultEncodeOptions()
	opts.AllowPostcompress = allowPostcompress
	return EncodeWithOptions(tag, base, newData, opts)
}

// EncodeWithOptions is Encode with full control over post-compression
// algorithm and matcher tuning. opts may be nil (equivalent to
// DefaultEncodeOptions()).
func EncodeWithOptions(tag uint64, base, newData []byte, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}

	if bytes.Equal(base, newData) {
		return encodeHeader(header{
			algo:       selector.Identity,
			tag:        tag,
			decodedLen: uint64(len(newData)),
		}), nil
	}

	algo := selector.Choose(base, newData)

	var instrs []instr.Instruction
	switch algo {
	case selector.Strong:
		instrs = match.Run(suffixarray.Build(base), newData, opts.MinMatch)
	default:
		idx := fastmatch.Build(base, opts.BlockSize)
		instrs = match.Run(idx, newData, opts.MinMatch)
		fastmatch.Release(idx)
	}

	body := instr.Encode(instrs)

	h := header{algo: algo, tag: tag, decodedLen: uint64(len(newData))}
	if opts.AllowPostcompress {
		compressed, ok, err := postcompress.Compress(opts.PostcompressAlgo, body)
		if err != nil {
			return nil, fmt.Errorf("xdelta: postcompress: %w", err)
		}
		if ok {
			h.postcompress = true
			h.postcompressAlgo = opts.PostcompressAlgo
			body = compressed
		}
	}

	out := encodeHeader(h)
	out = append(out, body...)
	return out, nil
}

// Decode reconstructs new from base and a delta D produced by Encode. It
// returns the distinct error kinds in spec §7 (wrapped so both the
// xdelta.Err* sentinel and the lower-level detail are inspectable via
// errors.Is), and never returns partial output: on any error the returned
// slice is nil.
func Decode(base, delta []byte) ([]byte, error) {
	h, bodyStart, err := decodeHeader(delta)
	if err != nil {
		return nil, err
	}

	if h.algo == selector.Identity {
		if uint64(len(base)) != h.decodedLen {
			return nil, fmt.Errorf("%w: identity delta expected base of length %d, got %d",
				ErrLengthMismatch, h.decodedLen, len(base))
		}
		return append([]byte(nil), base...), nil
	}

	body := delta[bodyStart:]
	if h.postcompress {
		body, err = postcompress.Decompress(h.postcompressAlgo, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPostcompressFailure, err)
		}
	}

	out, err := instr.Decode(body, base, h.decodedLen)
	if err != nil {
		return nil, mapInstrError(err)
	}

	if uint64(len(out)) != h.decodedLen {
		return nil, fmt.Errorf("%w: declared %d, got %d", ErrLengthMismatch, h.decodedLen, len(out))
	}

	return out, nil
}

// PeekTag reads only the header of delta and returns the embedded tag,
// without decoding the body (spec §6).
func PeekTag(delta []byte) (uint64, error) {
	return peekTagHeader(delta)
}

func mapInstrError(err error) error {
	switch {
	case errors.Is(err, instr.ErrCopyOutOfRange):
		return fmt.Errorf("%w: %w", ErrCopyOutOfRange, err)
	case errors.Is(err, instr.ErrVarintOverflow):
		return fmt.Errorf("%w: %w", ErrVarintOverflow, err)
	case errors.Is(err, instr.ErrTruncatedBody):
		return fmt.Errorf("%w: %w", ErrTruncatedBody, err)
	default:
		return err
	}
}
