// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command taco reads one or more text files, autocompresses each file's
// lines as a batch of values, and reports the chosen engine's weight in
// bits. It is a thin driver around the taco package, not part of its public
// API.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/dsnet/golib/bits"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/cpuid"
	"github.com/ulikunitz/xz"

	taco "github.com/purplesyringa/taco"
	"github.com/purplesyringa/taco/internal/bitio"
)

var (
	verbose = flag.Bool("v", false, "enable planner trace, CPU diagnostics, and a raw bitstream dump")
	compare = flag.Bool("compare", false, "compare against flate and xz baselines")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(taco.Error); ok {
				fmt.Fprintf(os.Stderr, "taco: %v\n", e)
				os.Exit(1)
			}
			panic(r)
		}
	}()

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: taco [-v] [-compare] file...")
		os.Exit(2)
	}

	if *verbose {
		printCPUBanner(os.Stderr)
	}

	for _, path := range flag.Args() {
		if err := runFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "taco: %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

// runFile autocompresses one file's lines as a single batch and prints the
// resulting weight, optionally alongside a raw bitstream dump and
// flate/xz comparison baselines.
func runFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	batch := parseLines(raw)

	opts := taco.DefaultOptions()
	opts.Verbose = *verbose
	opts.Trace = os.Stderr

	data := taco.Autocompress(batch, opts)
	fmt.Printf("%s: %d values, %d bits (%.1f bytes)\n", path, len(batch), data.Weight(), float64(data.Weight())/8)

	if *verbose {
		dumpBitstream(os.Stderr, data)
	}
	if *compare {
		printComparison(os.Stdout, path, raw, data.Weight())
	}
	return nil
}

// parseLines splits raw into newline-separated values. When every line
// parses as an integer the batch holds integers; otherwise every line is
// kept as a string, so the batch always holds a single value kind.
func parseLines(raw []byte) []taco.Value {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	batch := make([]taco.Value, len(lines))
	for i, line := range lines {
		n, ok := new(big.Int).SetString(line, 10)
		if !ok {
			for j, l := range lines {
				batch[j] = taco.Str{V: l}
			}
			return batch
		}
		batch[i] = taco.Int{V: n}
	}
	return batch
}

// printCPUBanner surfaces host diagnostics ahead of a verbose run, the same
// incidental context the teacher's bench tool prints when comparing codec
// throughput across hosts.
func printCPUBanner(w io.Writer) {
	c := cpuid.CPU
	fmt.Fprintf(w, "cpu: %s (%s), %d physical / %d logical cores\n",
		c.BrandName, c.VendorID, c.PhysicalCores, c.LogicalCores)
}

// dumpBitstream replays the header and payload through a dsnet/golib/bits
// buffer and prints the result as a secondary, order-independent rendering
// of the bits for human inspection. It is not the canonical encoding: the
// canonical MSB-first, zero-padded bitstream is produced by bitio.Bits
// alone, per spec.md §6.
func dumpBitstream(w io.Writer, data taco.CompressedData) {
	header := taco.Header(data.Engine)
	var bb bits.Buffer
	dumpBits(&bb, header)
	for _, p := range data.Payload {
		dumpBits(&bb, p)
	}
	fmt.Fprintf(w, "raw bitstream (%d bits, dsnet/golib/bits rendering): % x\n", bb.BitsWritten(), bb.Bytes())
}

func dumpBits(bb *bits.Buffer, b *bitio.Bits) {
	for i := 0; i < b.Len(); i++ {
		bb.WriteBits(uint(bits.Btoi(b.Bit(i))), 1)
	}
}

// printComparison re-encodes raw with flate and xz as familiar baselines
// next to taco's own weight, mirroring the teacher's internal/tool/bench
// comparison posture.
func printComparison(w io.Writer, path string, raw []byte, tacoBits int) {
	flateSize, err := flateSize(raw)
	if err != nil {
		fmt.Fprintf(w, "%s: flate: %v\n", path, err)
		flateSize = -1
	}
	xzSize, err := xzSize(raw)
	if err != nil {
		fmt.Fprintf(w, "%s: xz: %v\n", path, err)
		xzSize = -1
	}
	fmt.Fprintf(w, "%s: taco %.1fB, flate %dB, xz %dB\n", path, float64(tacoBits)/8, flateSize, xzSize)
}

func flateSize(raw []byte) (int, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return 0, err
	}
	if _, err := fw.Write(raw); err != nil {
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

func xzSize(raw []byte) (int, error) {
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		return 0, err
	}
	if _, err := xw.Write(raw); err != nil {
		return 0, err
	}
	if err := xw.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}
