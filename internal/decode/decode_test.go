// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package decode

import (
	"math/big"
	"testing"

	"github.com/purplesyringa/taco/internal/bitio"
)

func TestReaderTagIsMostSignificantBitFirst(t *testing.T) {
	b := bitio.New()
	b.Push(true)
	b.Push(false)
	b.Push(true)
	b.Push(false)
	r := newReader(b)
	if got := r.tag(4); got != 0b1010 {
		t.Fatalf("tag(4) = %#b, want %#b", got, 0b1010)
	}
}

func TestReaderFixuintIsLeastSignificantBitFirst(t *testing.T) {
	b := bitio.New()
	// 13 = 0b1101, pushed LSB-first: 1,0,1,1.
	for _, bit := range []bool{true, false, true, true} {
		b.Push(bit)
	}
	r := newReader(b)
	if got := r.fixuint(4); got != 13 {
		t.Fatalf("fixuint(4) = %d, want 13", got)
	}
}

func TestReaderVaruintSmallCases(t *testing.T) {
	cases := []struct {
		bits []bool
		want int64
	}{
		{[]bool{false, false}, 0},
		{[]bool{true, false}, 1},
		{[]bool{false, true}, 2},
	}
	for _, c := range cases {
		b := bitio.New()
		for _, bit := range c.bits {
			b.Push(bit)
		}
		r := newReader(b)
		if got := r.varuint(); got.Cmp(big.NewInt(c.want)) != 0 {
			t.Errorf("varuint() with bits %v = %s, want %d", c.bits, got, c.want)
		}
	}
}

// TestReaderVaruintRecursiveCase hand-encodes 10 the way compressVaruint
// would: prefix 11, then k=2 encoded as the small value 2, then the 4
// low bits of 10 (bitLength(10)=4) pushed least-significant-bit first.
func TestReaderVaruintRecursiveCase(t *testing.T) {
	b := bitio.New()
	for _, bit := range []bool{
		true, true, // 11 prefix: recursive case
		false, true, // k = 2, encoded as the small value "2"
		false, true, false, true, // 10 = 0b1010, LSB-first
	} {
		b.Push(bit)
	}
	r := newReader(b)
	if got := r.varuint(); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("varuint() = %s, want 10", got)
	}
}

// TestReaderVarintNegative hand-encodes -5 the way compressVarintBig would:
// a sign bit, then the magnitude (|-5| - 1 = 4) as a varuint.
func TestReaderVarintNegative(t *testing.T) {
	b := bitio.New()
	for _, bit := range []bool{
		true,       // negative
		true, true, // varuint(4) prefix: recursive case
		true, false, // k = 1, encoded as the small value "1"
		false, false, true, // 4 = 0b100, LSB-first, 3 bits
	} {
		b.Push(bit)
	}
	r := newReader(b)
	if got := r.varint(); got.Cmp(big.NewInt(-5)) != 0 {
		t.Fatalf("varint() = %s, want -5", got)
	}
}

func TestReaderFixbigMatchesFixuintForSmallWidths(t *testing.T) {
	b := bitio.New()
	for _, bit := range []bool{true, false, true, true} {
		b.Push(bit)
	}
	r := newReader(b)
	got := r.fixbig(4)
	if got.Cmp(big.NewInt(13)) != 0 {
		t.Fatalf("fixbig(4) = %s, want 13", got)
	}
}

func TestBitLengthMatchesBigIntBitLen(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{30, 5},
		{31, 5},
		{32, 6},
	}
	for _, c := range cases {
		if got := bitLength(c.n); got != c.want {
			t.Errorf("bitLength(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
