package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/woozymasta/xdelta"
)

func TestRunEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.bin")
	newPath := filepath.Join(dir, "new.bin")
	deltaPath := filepath.Join(dir, "out.delta")
	outPath := filepath.Join(dir, "out.bin")

	require.NoError(t, os.WriteFile(basePath, []byte("the quick brown fox"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("the quick brown fox jumps"), 0o644))

	err := runEncode([]string{"-output", deltaPath, "-tag", "3", basePath, newPath})
	require.NoError(t, err)

	delta, err := os.ReadFile(deltaPath)
	require.NoError(t, err)
	require.NotEmpty(t, delta)

	tag, err := xdelta.PeekTag(delta)
	require.NoError(t, err)
	require.Equal(t, uint64(3), tag)

	err = runDecode([]string{"-output", outPath, basePath, deltaPath})
	require.NoError(t, err)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, "the quick brown fox jumps", string(out))
}

func TestRunEncodeWithPostcompress(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.bin")
	newPath := filepath.Join(dir, "new.bin")
	deltaPath := filepath.Join(dir, "out.delta")

	base := make([]byte, 5000)
	for i := range base {
		base[i] = byte(i % 7)
	}
	require.NoError(t, os.WriteFile(basePath, base, 0o644))
	require.NoError(t, os.WriteFile(newPath, base, 0o644))

	err := runEncode([]string{"-output", deltaPath, "-zstd", basePath, newPath})
	require.NoError(t, err)

	delta, err := os.ReadFile(deltaPath)
	require.NoError(t, err)
	require.NotEmpty(t, delta)
}

func TestRunInfoReportsTagAndSize(t *testing.T) {
	dir := t.TempDir()
	deltaPath := filepath.Join(dir, "out.delta")

	delta, err := xdelta.Encode(9, []byte("abc"), []byte("abcd"), false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(deltaPath, delta, 0o644))

	err = runInfo([]string{deltaPath})
	require.NoError(t, err)
}

func TestRunDecodeRejectsMismatchedBase(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.bin")
	wrongBasePath := filepath.Join(dir, "wrong.bin")
	newPath := filepath.Join(dir, "new.bin")
	deltaPath := filepath.Join(dir, "out.delta")
	outPath := filepath.Join(dir, "out.bin")

	require.NoError(t, os.WriteFile(basePath, []byte("abcdefgh"), 0o644))
	require.NoError(t, os.WriteFile(wrongBasePath, []byte("completely different data"), 0o644))
	// Identical base and new give an identity delta, which records |N| and
	// so rejects a base of a different length.
	require.NoError(t, os.WriteFile(newPath, []byte("abcdefgh"), 0o644))

	require.NoError(t, runEncode([]string{"-output", deltaPath, basePath, newPath}))

	err := runDecode([]string{"-output", outPath, wrongBasePath, deltaPath})
	require.Error(t, err)
}

func TestReadInputMissingFile(t *testing.T) {
	_, err := readInput(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
