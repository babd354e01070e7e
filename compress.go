// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"fmt"
	"io"
	"os"

	"github.com/purplesyringa/taco/internal/bitio"
)

// Options controls the autocompress planner's search space. The zero value
// is not useful; call DefaultOptions.
type Options struct {
	// EnableDedupAndCategories lets the planner try the dedup/Huffman/
	// Alphabet pass and the category-split pass before falling back to the
	// type's direct encoding. The planner disables this on its own
	// recursive sub-calls (index lists, category tags) to bound recursion,
	// per §4.8.
	EnableDedupAndCategories bool

	// EnableStateful mirrors original_source/src/autocompress.rs's
	// AutoCompressOpts.enable_stateful field. It is plumbed through every
	// recursive call the same way the original threads it, but never
	// changes the chosen encoding: see Open Question 1 in SPEC_FULL.md for
	// why a Stateful engine has no representable wire encoding.
	EnableStateful bool

	// Verbose enables indented recursion-depth debug tracing of planner
	// decisions to Trace (or os.Stderr if Trace is nil). It must never be
	// relied on for correctness; it exists purely for humans debugging the
	// search (Design Note "Depth counter").
	Verbose bool
	Trace   io.Writer
}

// DefaultOptions returns the planner's default search configuration: dedup,
// categories, and stateful comparison all enabled, tracing off.
func DefaultOptions() Options {
	return Options{EnableDedupAndCategories: true, EnableStateful: true}
}

// CompressedData pairs an Engine with one Bits payload per input object.
// Some payload entries may be empty (e.g. every entry under a Constant
// engine, per §3).
type CompressedData struct {
	Engine  Engine
	Payload []*bitio.Bits
}

// Weight is the total bit cost of this (engine, payload) pair: the header's
// bit length plus the sum of every payload entry's length.
func (c CompressedData) Weight() int {
	w := HeaderBits(c.Engine)
	for _, p := range c.Payload {
		w += p.Len()
	}
	return w
}

// Autocompress runs the planner over a batch of homogeneously-typed values
// and returns the cheapest encoding it finds (§4.8).
func Autocompress(batch []Value, opts Options) CompressedData {
	return autocompress(batch, opts, 0)
}

// AutocompressOne treats a single object as a one-element batch and
// compresses it with the given options (§4.8, "autocompress_one").
func AutocompressOne(v Value, opts Options) CompressedData {
	return autocompressOne(v, opts, 0)
}

func autocompressOne(v Value, opts Options, depth int) CompressedData {
	return autocompress([]Value{v}, opts, depth)
}

func autocompress(batch []Value, opts Options, depth int) CompressedData {
	n := len(batch)
	if n == 0 {
		return CompressedData{Engine: EngineVarInt{}, Payload: nil}
	}

	traceAutocompress(opts, depth, batch)

	if opts.EnableDedupAndCategories {
		if data, ok := tryAutocompressDedup(batch, opts, depth); ok {
			if _, isConstant := data.Engine.(EngineConstant); isConstant {
				return data
			}
			// Huffman or Alphabet may still cost more than direct compression.
			direct := compressMultiple(batch, opts, depth)
			if direct.Weight() < data.Weight() {
				return direct
			}
			return data
		}
		if data, ok := tryAutocompressCategories(batch, opts, depth); ok {
			// This may be less efficient than direct compression.
			direct := compressMultiple(batch, opts, depth)
			if direct.Weight() < data.Weight() {
				return direct
			}
			return data
		}
	}

	// The stateful pass is deliberately a no-op; see Options.EnableStateful.
	data := compressMultiple(batch, opts, depth)
	if len(data.Payload) != n {
		panic(Error("autocompress: payload length does not match batch size"))
	}
	return data
}

func tryAutocompressDedup(batch []Value, _ Options, depth int) (CompressedData, bool) {
	n := len(batch)
	var valuesList []Value
	indexOfValue := make(map[string]int, n)
	indices := make([]int, n)
	for i, x := range batch {
		k := valueKey(x)
		idx, ok := indexOfValue[k]
		if !ok {
			idx = len(valuesList)
			indexOfValue[k] = idx
			valuesList = append(valuesList, x)
		}
		indices[i] = idx
	}

	if n > 1 && len(valuesList) == 1 {
		data := autocompressOne(batch[0], DefaultOptions(), depth+1)
		payload := make([]*bitio.Bits, n)
		for i := range payload {
			payload[i] = bitio.New()
		}
		return CompressedData{
			Engine:  EngineConstant{Inner: data.Engine, Data: data.Payload[0]},
			Payload: payload,
		}, true
	}

	threshold := n
	if alt := n/2 + 3; alt < threshold {
		threshold = alt
	}
	if len(valuesList) >= threshold {
		return CompressedData{}, false
	}

	huffData := huffman(batch, DefaultOptions(), depth+1)

	alphaEngine, alphaData := compressAlphabet(valuesList, depth+1)
	indexValues := make([]Value, n)
	for i, idx := range indices {
		indexValues[i] = NewInt(int64(idx))
	}
	indicesCompressed := autocompress(indexValues, Options{EnableDedupAndCategories: false, EnableStateful: true}, depth+1)
	alphaData2 := CompressedData{
		Engine: EngineAlphabet{
			Alphabet:     alphaEngine,
			AlphabetData: alphaData,
			Index:        indicesCompressed.Engine,
		},
		Payload: indicesCompressed.Payload,
	}

	if huffData.Weight() < alphaData2.Weight() {
		return huffData, true
	}
	return alphaData2, true
}

// compressAlphabet compresses a list of distinct values as a single vector
// object, so the entire alphabet is represented by one engine and one Bits
// blob in the caller's header (§4.8 step 2, "recursively compressed value
// list as header"). Dedup/categories are disabled on this call per Open
// Question 4: the alphabet still benefits from per-type lowering, it just
// cannot recurse into another dedup/category pass over itself.
func compressAlphabet(values []Value, depth int) (Engine, *bitio.Bits) {
	data := autocompress([]Value{Seq{V: values}}, Options{EnableDedupAndCategories: false, EnableStateful: false}, depth)
	return data.Engine, data.Payload[0]
}

func tryAutocompressCategories(batch []Value, _ Options, depth int) (CompressedData, bool) {
	categories, ok := splitCategories(batch)
	if !ok || len(categories) < 2 {
		return CompressedData{}, false
	}

	n := len(batch)
	categoryOf := make([]int, n)
	for ci, cat := range categories {
		for _, j := range cat {
			categoryOf[j] = ci
		}
	}
	categoryValues := make([]Value, n)
	for i, ci := range categoryOf {
		categoryValues[i] = NewInt(int64(ci))
	}
	catCompressed := autocompress(categoryValues, Options{EnableDedupAndCategories: false, EnableStateful: true}, depth+1)

	payload := make([]*bitio.Bits, n)
	for i, p := range catCompressed.Payload {
		payload[i] = p.Clone()
	}

	categoryEngines := make([]Engine, len(categories))
	for ci, cat := range categories {
		catObjs := make([]Value, len(cat))
		for i, j := range cat {
			catObjs[i] = batch[j]
		}
		dataCompressed := autocompress(catObjs, DefaultOptions(), depth+1)
		categoryEngines[ci] = dataCompressed.Engine
		for i, j := range cat {
			payload[j].Extend(dataCompressed.Payload[i])
		}
	}

	return CompressedData{
		Engine:  EngineCategorySplit{Categories: categoryEngines, Category: catCompressed.Engine},
		Payload: payload,
	}, true
}

// compressMultiple dispatches to the per-kind direct encoding (the type's
// own compress_multiple in spec terms), assuming batch is non-empty and
// every element shares batch[0]'s kind.
func compressMultiple(batch []Value, opts Options, depth int) CompressedData {
	switch batch[0].(type) {
	case Int:
		return intCompressMultiple(batch, opts, depth)
	case Str:
		return stringCompressMultiple(batch, opts, depth)
	case Seq:
		return vecCompressMultiple(batch, opts, depth)
	default:
		panic(Error("compressMultiple: unsupported value kind"))
	}
}

// splitCategories dispatches to the per-kind category splitter (§4.7),
// returning (nil, false) when the kind offers none (e.g. integers).
func splitCategories(batch []Value) ([][]int, bool) {
	switch batch[0].(type) {
	case Int:
		return intSplitCategories(batch)
	case Str:
		return stringSplitCategories(batch)
	case Seq:
		return vecSplitCategories(batch)
	default:
		return nil, false
	}
}

func traceAutocompress(opts Options, depth int, batch []Value) {
	if !opts.Verbose {
		return
	}
	w := opts.Trace
	if w == nil {
		w = os.Stderr
	}
	indent := make([]byte, depth)
	for i := range indent {
		indent[i] = ' '
	}
	fmt.Fprintf(w, "%sautocompress n=%d kind=%T\n", indent, len(batch), batch[0])
}
