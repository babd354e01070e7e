// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"math/big"

	"github.com/purplesyringa/taco/internal/bitio"
)

// vecCompressMultiple implements §4.5's three-strategy cascade for batches
// of sequences: run-length encoding, the sorted-integer-set bisection
// encoding, and finally the raw length-plus-flattened-items fallback.
func vecCompressMultiple(batch []Value, opts Options, depth int) CompressedData {
	if data, ok := tryVecRLE(batch, opts, depth); ok {
		return data
	}
	if data, ok := tryVecIntSet(batch, depth); ok {
		return data
	}
	return vecCompressRaw(batch, opts, depth)
}

func tryVecRLE(batch []Value, opts Options, depth int) (CompressedData, bool) {
	n := len(batch)
	runLengths := make([][]int, n)
	runValues := make([][]Value, n)
	totalElems := 0
	totalRuns := 0
	for i, v := range batch {
		seq := v.(Seq)
		totalElems += len(seq.V)
		var lens []int
		var vals []Value
		for _, item := range seq.V {
			if len(vals) > 0 && compareValues(vals[len(vals)-1], item) == 0 {
				lens[len(lens)-1]++
			} else {
				vals = append(vals, item)
				lens = append(lens, 1)
			}
		}
		runLengths[i] = lens
		runValues[i] = vals
		totalRuns += len(lens)
	}
	if totalElems == 0 || totalRuns*2 >= totalElems {
		return CompressedData{}, false
	}

	lengthSeqs := make([]Value, n)
	valueSeqs := make([]Value, n)
	for i := range batch {
		items := make([]Value, len(runLengths[i]))
		for j, l := range runLengths[i] {
			items[j] = NewInt(int64(l))
		}
		lengthSeqs[i] = Seq{V: items}
		valueSeqs[i] = Seq{V: runValues[i]}
	}
	lengthsCompressed := autocompress(lengthSeqs, opts, depth+1)
	valuesCompressed := autocompress(valueSeqs, opts, depth+1)

	payload := make([]*bitio.Bits, n)
	for i := range payload {
		p := lengthsCompressed.Payload[i].Clone()
		p.Extend(valuesCompressed.Payload[i])
		payload[i] = p
	}
	return CompressedData{
		Engine:  EngineVecRLE{Length: lengthsCompressed.Engine, Item: valuesCompressed.Engine},
		Payload: payload,
	}, true
}

// intSetApplicable reports whether every sequence in batch consists solely
// of Int elements in non-decreasing order (the sorted-set precondition) and,
// if so, whether the stricter "unique" flag also holds: every sequence has
// length >= 2 and is strictly increasing (§4.5).
func intSetApplicable(batch []Value) (ok bool, unique bool) {
	unique = true
	for _, v := range batch {
		seq := v.(Seq)
		if len(seq.V) == 0 {
			return false, false
		}
		for _, item := range seq.V {
			if _, isInt := item.(Int); !isInt {
				return false, false
			}
		}
		strictlyIncreasing := len(seq.V) >= 2
		for k := 1; k < len(seq.V); k++ {
			c := seq.V[k-1].(Int).V.Cmp(seq.V[k].(Int).V)
			if c > 0 {
				return false, false
			}
			if c >= 0 {
				strictlyIncreasing = false
			}
		}
		if !strictlyIncreasing {
			unique = false
		}
	}
	return true, unique
}

func tryVecIntSet(batch []Value, depth int) (CompressedData, bool) {
	ok, unique := intSetApplicable(batch)
	if !ok {
		return CompressedData{}, false
	}
	n := len(batch)

	mins := make([]Value, n)
	maxs := make([]Value, n)
	for i, v := range batch {
		seq := v.(Seq)
		mins[i] = seq.V[0]
		maxs[i] = seq.V[len(seq.V)-1]
	}
	minCompressed := autocompress(mins, DefaultOptions(), depth+1)
	maxCompressed := autocompress(maxs, DefaultOptions(), depth+1)

	payload := make([]*bitio.Bits, n)
	for i, v := range batch {
		seq := v.(Seq)
		p := minCompressed.Payload[i].Clone()
		p.Extend(maxCompressed.Payload[i])

		lo := seq.V[0].(Int).V
		hi := seq.V[len(seq.V)-1].(Int).V
		var interior []*big.Int
		if len(seq.V) > 2 {
			for _, item := range seq.V[1 : len(seq.V)-1] {
				interior = append(interior, item.(Int).V)
			}
		}
		bisectIntSet(p, interior, lo, hi, unique)
		payload[i] = p
	}

	return CompressedData{
		Engine:  EngineIntSet{Min: minCompressed.Engine, Max: maxCompressed.Engine, Unique: unique},
		Payload: payload,
	}, true
}

// bisectIntSet writes slice's elements (already known to lie in [lo, hi],
// sorted, strictly increasing iff unique) into b via recursive bisection
// (§4.5): the median is written as a fixed-width offset from its tightened
// bounds, then the two halves recurse with bounds narrowed around it.
func bisectIntSet(b *bitio.Bits, slice []*big.Int, lo, hi *big.Int, unique bool) {
	n := len(slice)
	if n == 0 {
		return
	}
	m := n / 2
	val := slice[m]

	if unique {
		effLo := new(big.Int).Add(lo, big.NewInt(int64(m)))
		effHi := new(big.Int).Sub(hi, big.NewInt(int64(n-m-1)))
		width := bitLength(new(big.Int).Sub(effHi, effLo))
		offset := new(big.Int).Sub(val, effLo)
		b.Extend(compressFixintBig(offset, width))

		leftHi := new(big.Int).Sub(val, one)
		rightLo := new(big.Int).Add(val, one)
		bisectIntSet(b, slice[:m], lo, leftHi, unique)
		bisectIntSet(b, slice[m+1:], rightLo, hi, unique)
	} else {
		width := bitLength(new(big.Int).Sub(hi, lo))
		offset := new(big.Int).Sub(val, lo)
		b.Extend(compressFixintBig(offset, width))

		bisectIntSet(b, slice[:m], lo, val, unique)
		bisectIntSet(b, slice[m+1:], val, hi, unique)
	}
}

// vecCompressRaw is the fallback of last resort: lengths recursively
// compressed, elements flattened across the whole batch and recursively
// compressed as one pool, per-object payload is length bits followed by
// that object's slice of item payloads (§4.5 step 3, grounded on
// original_source/src/compress_vec.rs's compress_multiple).
func vecCompressRaw(batch []Value, opts Options, depth int) CompressedData {
	n := len(batch)
	lengths := make([]Value, n)
	itemCounts := make([]int, n)
	var items []Value
	for i, v := range batch {
		seq := v.(Seq)
		lengths[i] = NewInt(int64(len(seq.V)))
		itemCounts[i] = len(seq.V)
		items = append(items, seq.V...)
	}
	lengthsCompressed := autocompress(lengths, DefaultOptions(), depth+1)

	var itemsCompressed CompressedData
	if len(items) > 0 {
		itemsCompressed = autocompress(items, opts, depth+1)
	} else {
		itemsCompressed = CompressedData{Engine: EngineVarInt{}}
	}

	payload := make([]*bitio.Bits, n)
	offset := 0
	for i := range batch {
		p := lengthsCompressed.Payload[i].Clone()
		for _, ib := range itemsCompressed.Payload[offset : offset+itemCounts[i]] {
			p.Extend(ib)
		}
		offset += itemCounts[i]
		payload[i] = p
	}

	return CompressedData{
		Engine:  EngineVec{Length: lengthsCompressed.Engine, Item: itemsCompressed.Engine},
		Payload: payload,
	}
}

// vecSplitCategories implements §4.5's category splitter: first try
// partitioning by sequence length, then by the k-th element for increasing
// k up to the shortest sequence's length.
func vecSplitCategories(batch []Value) ([][]int, bool) {
	n := len(batch)
	if cats, ok := splitByKey(n, func(i int) int { return len(batch[i].(Seq).V) }); ok {
		return cats, true
	}

	minLen := -1
	for _, v := range batch {
		l := len(v.(Seq).V)
		if minLen == -1 || l < minLen {
			minLen = l
		}
	}
	for k := 0; k < minLen; k++ {
		kk := k
		if cats, ok := splitByKey(n, func(i int) string { return valueKey(batch[i].(Seq).V[kk]) }); ok {
			return cats, true
		}
	}
	return nil, false
}
