// Package postcompress implements the optional post-compression envelope
// (spec §4.7): after the instruction stream is produced, optionally wrap it
// in a general-purpose block compressor and keep the result only if it's
// strictly smaller than the raw stream.
package postcompress

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies which block compressor produced a post-compressed
// body; stored in the container header alongside the postcompress flag so
// the decoder knows which inverse to apply (spec §4.7/§6).
type Algorithm uint8

const (
	// Zstd is the default envelope: best ratio among the three, and the
	// one arloliu/mebo reaches for first in its own go.mod.
	Zstd Algorithm = iota
	// Flate is a lower-memory fallback for constrained environments.
	Flate
	// LZ4 trades ratio for substantially faster encode/decode.
	LZ4
)

// ErrPostcompressFailure wraps any error the underlying compressor's
// inverse returns while decoding a post-compressed body (spec §7).
var ErrPostcompressFailure = errors.New("postcompress: corrupted payload")

// Compress runs algo over body and returns the compressed bytes, or body
// unchanged (with ok=false) if compression did not strictly shrink it.
// Per spec §4.7, the caller is responsible for only keeping the compressed
// form when ok is true.
func Compress(algo Algorithm, body []byte) (compressed []byte, ok bool, err error) {
	var out []byte
	switch algo {
	case Zstd:
		out, err = compressZstd(body)
	case Flate:
		out, err = compressFlate(body)
	case LZ4:
		out, err = compressLZ4(body)
	default:
		return nil, false, errors.New("postcompress: unknown algorithm")
	}
	if err != nil {
		return nil, false, err
	}

	if len(out) >= len(body) {
		return body, false, nil
	}
	return out, true, nil
}

// Decompress inverts Compress for the given algorithm.
func Decompress(algo Algorithm, body []byte) ([]byte, error) {
	var out []byte
	var err error
	switch algo {
	case Zstd:
		out, err = decompressZstd(body)
	case Flate:
		out, err = decompressFlate(body)
	case LZ4:
		out, err = decompressLZ4(body)
	default:
		return nil, errors.New("postcompress: unknown algorithm")
	}
	if err != nil {
		return nil, errors.Join(ErrPostcompressFailure, err)
	}
	return out, nil
}

func compressZstd(body []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(body, nil), nil
}

func decompressZstd(body []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(body, nil)
}

func compressFlate(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressFlate(body []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	return io.ReadAll(r)
}

func compressLZ4(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(body []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(body))
	return io.ReadAll(r)
}
