// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"math/big"

	"github.com/purplesyringa/taco/internal/bitio"
)

// intCompressMultiple implements §4.3: a batch of at most one integer is
// VarInt-encoded directly; larger batches are biased to their minimum and
// packed into a fixed-width field sized from the batch's range. There is no
// weight comparison here (unlike the Rust original's average-biased
// BiasedVarInt, which spec.md supersedes) — min/max-biased FixedInt is the
// only non-VarInt integer strategy this primitive offers.
func intCompressMultiple(batch []Value, _ Options, _ int) CompressedData {
	n := len(batch)
	if n <= 1 {
		payload := make([]*bitio.Bits, n)
		for i, v := range batch {
			payload[i] = compressVarintBig(v.(Int).V)
		}
		return CompressedData{Engine: EngineVarInt{}, Payload: payload}
	}

	min := batch[0].(Int).V
	max := batch[0].(Int).V
	for _, v := range batch[1:] {
		x := v.(Int).V
		if x.Cmp(min) < 0 {
			min = x
		}
		if x.Cmp(max) > 0 {
			max = x
		}
	}
	length := bitLength(new(big.Int).Sub(max, min))

	payload := make([]*bitio.Bits, n)
	for i, v := range batch {
		offset := new(big.Int).Sub(v.(Int).V, min)
		payload[i] = compressFixintBig(offset, length)
	}

	return CompressedData{
		Engine:  EngineFixedInt{Bias: min, Length: length},
		Payload: payload,
	}
}

// intSplitCategories mirrors the Rust original's impl_int! macro: integers
// never offer a category split.
func intSplitCategories(_ []Value) ([][]int, bool) {
	return nil, false
}
