// SPDX-License-Identifier: GPL-2.0-only

// Command xdelta encodes and decodes byte-oriented deltas from the command
// line, modeled on the encode/decode/info subcommand shape of the reference
// xpatch tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/woozymasta/xdelta"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "xdelta: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "xdelta: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: xdelta <command> [flags]

commands:
  encode <base> <new>   create a delta between two files ('-' for stdin)
  decode <base> <delta>  apply a delta to reconstruct a file
  info <delta>           show header information about a delta file`)
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	output := fs.String("output", "", "output delta path (default: stdout)")
	tag := fs.Uint64("tag", 0, "user-defined metadata tag")
	zstd := fs.Bool("zstd", false, "enable post-compression envelope")
	verbose := fs.Bool("v", false, "print timing and size diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("encode requires <base> <new>")
	}

	start := time.Now()
	base, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	newData, err := readInput(fs.Arg(1))
	if err != nil {
		return err
	}
	readElapsed := time.Since(start)

	start = time.Now()
	delta, err := xdelta.Encode(*tag, base, newData, *zstd)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	encodeElapsed := time.Since(start)

	if err := writeOutput(*output, delta); err != nil {
		return err
	}

	if *verbose {
		verboseLogger().Info("encoded",
			"base_bytes", len(base), "delta_bytes", len(delta),
			"encode_time", encodeElapsed, "read_time", readElapsed)
	}
	return nil
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	output := fs.String("output", "", "output path for reconstructed data (default: stdout)")
	verbose := fs.Bool("v", false, "print timing and size diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("decode requires <base> <delta>")
	}

	start := time.Now()
	base, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	delta, err := readInput(fs.Arg(1))
	if err != nil {
		return err
	}
	readElapsed := time.Since(start)

	start = time.Now()
	out, err := xdelta.Decode(base, delta)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	decodeElapsed := time.Since(start)

	if err := writeOutput(*output, out); err != nil {
		return err
	}

	if *verbose {
		verboseLogger().Info("decoded",
			"delta_bytes", len(delta), "output_bytes", len(out),
			"decode_time", decodeElapsed, "read_time", readElapsed)
	}
	return nil
}

// verboseLogger returns a slog.Logger writing human-readable key/value pairs
// to stderr, used only behind the -v flag so the default run stays quiet.
func verboseLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info requires <delta>")
	}

	delta, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	tag, err := xdelta.PeekTag(delta)
	if err != nil {
		return fmt.Errorf("reading tag: %w", err)
	}

	fmt.Printf("Tag: %d\n", tag)
	fmt.Printf("Size: %d bytes\n", len(delta))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("writing stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
