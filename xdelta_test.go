package xdelta

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTripScenarios(t *testing.T) {
	cases := []struct {
		name string
		base []byte
		new  []byte
		tag  uint64
	}{
		{"hello world to hello rust", []byte("Hello, World!"), []byte("Hello, Rust!"), 0},
		{"empty to empty", []byte(""), []byte(""), 7},
		{"identical", []byte("same"), []byte("same"), 3},
		{"extended tag", []byte("Hello"), []byte("World"), 1000},
		{"empty base", []byte(""), []byte("freshly added content"), 2},
		{"empty new", []byte("content that disappears"), []byte(""), 5},
		{"doubled", []byte("abcdefgh"), []byte("abcdefghabcdefgh"), 0},
	}

	for _, tc := range cases {
		for _, allowPC := range []bool{false, true} {
			t.Run(tc.name, func(t *testing.T) {
				delta, err := Encode(tc.tag, tc.base, tc.new, allowPC)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}

				gotTag, err := PeekTag(delta)
				if err != nil {
					t.Fatalf("PeekTag failed: %v", err)
				}
				if gotTag != tc.tag {
					t.Fatalf("PeekTag = %d, want %d", gotTag, tc.tag)
				}

				out, err := Decode(tc.base, delta)
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if !bytes.Equal(out, tc.new) {
					t.Fatalf("round-trip mismatch: got=%q want=%q", out, tc.new)
				}
			})
		}
	}
}

func TestIdentityShortcutIsBounded(t *testing.T) {
	base := bytes.Repeat([]byte{0x42}, 1<<20)
	delta, err := Encode(5, base, base, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(delta) > identityMaxSize {
		t.Fatalf("identity delta size = %d, want <= %d regardless of |B|", len(delta), identityMaxSize)
	}

	out, err := Decode(base, delta)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(out, base) {
		t.Fatal("identity decode mismatch")
	}
}

func TestTagFidelity(t *testing.T) {
	base := []byte("abcdefgh")
	newData := []byte("abXYdefgh")
	for _, tag := range []uint64{0, 1, 14, 15, 16, 1000, 1 << 40, (1 << 64) - 1} {
		delta, err := Encode(tag, base, newData, false)
		if err != nil {
			t.Fatalf("tag=%d Encode failed: %v", tag, err)
		}
		got, err := PeekTag(delta)
		if err != nil {
			t.Fatalf("tag=%d PeekTag failed: %v", tag, err)
		}
		if got != tag {
			t.Fatalf("tag=%d PeekTag = %d", tag, got)
		}
	}
}

func TestZeroOverheadTags(t *testing.T) {
	base := []byte("the quick brown fox jumps over the lazy dog")
	newData := []byte("the quick brown fox leaps over the lazy dog")

	baseline, err := Encode(0, base, newData, false)
	if err != nil {
		t.Fatalf("Encode(0) failed: %v", err)
	}

	for tag := uint64(1); tag <= 14; tag++ {
		delta, err := Encode(tag, base, newData, false)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", tag, err)
		}
		if len(delta) != len(baseline) {
			t.Fatalf("tag=%d delta length = %d, want %d (zero overhead for tags 0-14)", tag, len(delta), len(baseline))
		}
	}
}

func TestDeterministicEncode(t *testing.T) {
	base := bytes.Repeat([]byte("determinism-check-payload "), 50)
	newData := append(append([]byte{}, base...), []byte("-appended-tail")...)

	first, err := Encode(0, base, newData, true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Encode(0, base, newData, true)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Encode is not deterministic across repeated calls")
		}
	}
}

func TestPostcompressNeverEnlargesOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := make([]byte, 2000)
	rng.Read(base)
	newData := append([]byte{}, base...)
	newData[1000] ^= 0xFF

	without, err := Encode(0, base, newData, false)
	if err != nil {
		t.Fatalf("Encode(false) failed: %v", err)
	}
	with, err := Encode(0, base, newData, true)
	if err != nil {
		t.Fatalf("Encode(true) failed: %v", err)
	}

	// Postcompress adds at most one extra header byte (the algorithm id)
	// versus the uncompressed form, and the compressor itself is only used
	// when it strictly shrinks the body (spec §4.7), so the compressed
	// form is never larger by more than that fixed slack.
	if len(with) > len(without)+1 {
		t.Fatalf("postcompress enlarged output: with=%d without=%d", len(with), len(without))
	}
}

func TestDecodeCorruptedDeltaNeverReturnsWrongOutput(t *testing.T) {
	base := bytes.Repeat([]byte("corruption-resistance-payload "), 30)
	newData := append(append([]byte{}, base...), []byte("-tail-bytes-appended-here")...)

	delta, err := Encode(0, base, newData, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for i := 3; i < len(delta); i += 7 {
		corrupted := append([]byte{}, delta...)
		corrupted[i] ^= 0xFF

		out, err := Decode(base, corrupted)
		if err == nil && !bytes.Equal(out, newData) {
			t.Fatalf("corrupted delta at byte %d decoded to wrong output without error", i)
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	delta, _ := Encode(0, []byte("a"), []byte("b"), false)
	corrupted := append([]byte{}, delta...)
	corrupted[0] = 0x00

	if _, err := Decode([]byte("a"), corrupted); err == nil {
		t.Fatal("expected an error for a bad magic byte")
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	// An identity delta carries only the declared length, so decoding it
	// against a base of a different length fails the length check.
	base := []byte("abcdefgh")
	delta, err := Encode(0, base, base, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if _, err := Decode([]byte("completely unrelated base data"), delta); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("error = %v, want ErrLengthMismatch when decoding against the wrong base", err)
	}
}

func TestPeekTagMalformedHeader(t *testing.T) {
	if _, err := PeekTag([]byte{0x00, 0x00}); err == nil {
		t.Fatal("expected ErrMalformedHeader for a too-short, bad-magic delta")
	}
}
