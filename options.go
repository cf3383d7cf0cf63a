// SPDX-License-Identifier: GPL-2.0-only

package xdelta

import (
	"github.com/woozymasta/xdelta/internal/fastmatch"
	"github.com/woozymasta/xdelta/internal/instr"
	"github.com/woozymasta/xdelta/internal/postcompress"
)

// PostcompressAlgo selects which block compressor the post-compression
// envelope (spec §4.7) uses. The zero value is PostcompressZstd.
type PostcompressAlgo = postcompress.Algorithm

// Post-compression algorithm choices (internal/postcompress.Algorithm
// re-exported under this package's naming).
const (
	PostcompressZstd  = postcompress.Zstd
	PostcompressFlate = postcompress.Flate
	PostcompressLZ4   = postcompress.LZ4
)

// EncodeOptions configures Encode beyond the spec-mandated
// (tag, base, new, allowPostcompress) signature: the matcher's minimum
// match length, the fast-path block size, and which post-compression
// algorithm to try. Mirrors the teacher's CompressOptions/DecompressOptions
// + Default*Options() pairing.
type EncodeOptions struct {
	// AllowPostcompress enables the post-compression envelope (spec §4.7).
	AllowPostcompress bool
	// PostcompressAlgo selects the block compressor used when
	// AllowPostcompress is true.
	PostcompressAlgo PostcompressAlgo
	// MinMatch is the shortest match either matcher will emit as a Copy;
	// shorter runs stay literal (spec §4.3/§4.4).
	MinMatch int
	// BlockSize is the fast-path matcher's non-overlapping block size
	// (spec §4.4, typically 16-64 bytes).
	BlockSize int
}

// DefaultEncodeOptions returns options with post-compression enabled via
// zstd, MinMatch at the spec's suggested floor, and the default block size.
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		AllowPostcompress: true,
		PostcompressAlgo:  PostcompressZstd,
		MinMatch:          instr.MinMatch,
		BlockSize:         fastmatch.DefaultBlockSize,
	}
}
