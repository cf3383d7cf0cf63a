// SPDX-License-Identifier: GPL-2.0-only

/*
Package xdelta implements a byte-oriented delta (patch) codec: given a base
byte sequence B and a new byte sequence N, Encode produces a compact delta D
from which Decode reconstructs N exactly given B. It targets the same
problem space as VCDIFF/xdelta3 and bsdiff.

# Encode

tag is opaque caller metadata (e.g. "which base generation is this from");
values 0..14 are stored in the container header at zero extra space cost;
15 and above take a trailing varint.

	delta, err := xdelta.Encode(0, base, newData, true)

allowPostcompress enables an optional zstd/flate/lz4 envelope over the
instruction stream, kept only if it strictly shrinks the result. For control
over which compressor or matcher tuning to use:

	delta, err := xdelta.EncodeWithOptions(0, base, newData, &xdelta.EncodeOptions{
		AllowPostcompress: true,
		PostcompressAlgo:  xdelta.PostcompressLZ4,
	})

# Decode

	out, err := xdelta.Decode(base, delta)

# PeekTag

Reads only the header, without decoding the body:

	tag, err := xdelta.PeekTag(delta)
*/
package xdelta
