// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"math/big"
	"testing"

	"github.com/purplesyringa/taco/internal/bitio"
)

func intSeq(vs ...int64) Value {
	items := make([]Value, len(vs))
	for i, v := range vs {
		items[i] = NewInt(v)
	}
	return Seq{V: items}
}

func TestIntSetApplicable(t *testing.T) {
	ok, unique := intSetApplicable([]Value{intSeq(1, 2, 3), intSeq(5, 8, 13)})
	if !ok || !unique {
		t.Fatalf("intSetApplicable() = (%v, %v), want (true, true)", ok, unique)
	}

	ok, unique = intSetApplicable([]Value{intSeq(1, 1, 2)})
	if !ok || unique {
		t.Fatalf("intSetApplicable() with a repeat = (%v, %v), want (true, false)", ok, unique)
	}

	ok, _ = intSetApplicable([]Value{intSeq(3, 2, 1)})
	if ok {
		t.Fatalf("intSetApplicable() accepted a decreasing sequence")
	}

	ok, _ = intSetApplicable([]Value{Seq{V: []Value{NewInt(1), Str{V: "x"}}}})
	if ok {
		t.Fatalf("intSetApplicable() accepted a non-integer element")
	}

	ok, _ = intSetApplicable([]Value{Seq{}})
	if ok {
		t.Fatalf("intSetApplicable() accepted an empty sequence")
	}
}

func TestTryVecIntSetScenarioD(t *testing.T) {
	// §8 scenario D: [1,2,3,5,8,13] presented as a single sorted sequence.
	batch := []Value{intSeq(1, 2, 3, 5, 8, 13)}
	data, ok := tryVecIntSet(batch, 0)
	if !ok {
		t.Fatalf("tryVecIntSet() ok = false, want true")
	}
	is, ok := data.Engine.(EngineIntSet)
	if !ok {
		t.Fatalf("Engine = %T, want EngineIntSet", data.Engine)
	}
	if !is.Unique {
		t.Fatalf("Unique = false, want true (strictly increasing)")
	}
	if len(data.Payload) != 1 {
		t.Fatalf("len(Payload) = %d, want 1", len(data.Payload))
	}
}

func TestBisectIntSetWritesExpectedBitCount(t *testing.T) {
	b := bitio.New()
	slice := []*big.Int{big.NewInt(2), big.NewInt(5), big.NewInt(8)}
	bisectIntSet(b, slice, big.NewInt(1), big.NewInt(10), false)
	// Median 5 in [1, 10] takes bitLength(9)=4 bits; 2 in [1, 5] and 8 in
	// [5, 10] take bitLength(4)=3 and bitLength(5)=3 bits.
	if b.Len() != 10 {
		t.Fatalf("bisectIntSet wrote %d bits, want 10", b.Len())
	}
}

func TestTryVecRLEAppliesWhenRunsAreFewerThanElements(t *testing.T) {
	batch := []Value{intSeq(1, 1, 1, 1, 2, 2, 2, 2)}
	data, ok := tryVecRLE(batch, DefaultOptions(), 0)
	if !ok {
		t.Fatalf("tryVecRLE() ok = false, want true for a highly-repetitive sequence")
	}
	if _, ok := data.Engine.(EngineVecRLE); !ok {
		t.Fatalf("Engine = %T, want EngineVecRLE", data.Engine)
	}
}

func TestTryVecRLEDeclinesWithoutRepeats(t *testing.T) {
	batch := []Value{intSeq(1, 2, 3, 4, 5)}
	_, ok := tryVecRLE(batch, DefaultOptions(), 0)
	if ok {
		t.Fatalf("tryVecRLE() ok = true for a batch with no repeated runs")
	}
}

func TestVecSplitCategoriesByLength(t *testing.T) {
	batch := []Value{intSeq(1), intSeq(1), intSeq(2), intSeq(1, 2, 3), intSeq(4, 5, 6), intSeq(7, 8, 9)}
	cats, ok := vecSplitCategories(batch)
	if !ok {
		t.Fatalf("vecSplitCategories() ok = false, want true")
	}
	if len(cats) != 2 {
		t.Fatalf("len(cats) = %d, want 2 (by length)", len(cats))
	}
}

func TestVecCompressRawFallsBackWhenNoBetterStrategyApplies(t *testing.T) {
	batch := []Value{
		Seq{V: []Value{Str{V: "a"}, Str{V: "c"}}},
		Seq{V: []Value{Str{V: "b"}}},
	}
	data := vecCompressRaw(batch, DefaultOptions(), 0)
	if _, ok := data.Engine.(EngineVec); !ok {
		t.Fatalf("Engine = %T, want EngineVec", data.Engine)
	}
	if len(data.Payload) != len(batch) {
		t.Fatalf("len(Payload) = %d, want %d", len(data.Payload), len(batch))
	}
}
