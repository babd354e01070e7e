// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"math/big"
	"testing"
)

// decodeVaruint is a tiny standalone reader used only to verify
// compressVaruint is injective without pulling in internal/decode.
func decodeVaruint(b *bitsCursor) *big.Int {
	b0 := b.next()
	b1 := b.next()
	switch {
	case !b0 && !b1:
		return big.NewInt(0)
	case b0 && !b1:
		return big.NewInt(1)
	case !b0 && b1:
		return big.NewInt(2)
	default:
		k := int(decodeVaruint(b).Int64())
		v := new(big.Int)
		for i := 0; i < k+2; i++ {
			if b.next() {
				v.SetBit(v, i, 1)
			}
		}
		return v
	}
}

type bitsCursor struct {
	get func(i int) bool
	len int
	pos int
}

func (c *bitsCursor) next() bool {
	v := c.get(c.pos)
	c.pos++
	return v
}

func TestCompressVaruintRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 15, 16, 17, 255, 256, 1000, 1 << 20} {
		bits := compressVaruint(big.NewInt(n))
		cur := &bitsCursor{get: bits.Bit, len: bits.Len()}
		got := decodeVaruint(cur)
		if got.Int64() != n {
			t.Errorf("compressVaruint(%d) round-trips to %s", n, got)
		}
	}
}

// TestCompressVaruintDistinguishes4And6 pins the bug found in
// original_source/src/varint.rs: its default-case loop only emits the low k
// bits of num (k = bitLength(num)-2), which makes 4 and 6 indistinguishable
// (both have bitLength 3, so k=1 and only bit 0 is written, while they
// differ in bit 1). spec.md's "low k+2 bits" formula, which
// this package implements, must keep them distinct.
func TestCompressVaruintDistinguishes4And6(t *testing.T) {
	a := compressVaruint(big.NewInt(4))
	b := compressVaruint(big.NewInt(6))
	if a.Equal(b) {
		t.Fatalf("compressVaruint(4) and compressVaruint(6) collide: %s", a)
	}
}

func TestCompressVarintRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 2, -2, 100, -100, 1 << 30, -(1 << 30)} {
		bits := compressVarintBig(big.NewInt(n))
		cur := &bitsCursor{get: bits.Bit, len: bits.Len()}
		neg := cur.next()
		mag := decodeVaruint(cur)
		if neg {
			mag.Add(mag, one)
			mag.Neg(mag)
		}
		if mag.Int64() != n {
			t.Errorf("compressVarintBig(%d) round-trips to %s", n, mag)
		}
	}
}

func TestCompressFixintIsLeastSignificantBitFirst(t *testing.T) {
	bits := compressFixint(0b10110, 5)
	if bits.String() != "01101" {
		t.Fatalf("compressFixint(0b10110, 5) = %q, want %q (LSB first)", bits.String(), "01101")
	}
}

func TestBitLength(t *testing.T) {
	cases := []struct {
		n    int64
		want int
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {7, 3}, {8, 4},
	}
	for _, c := range cases {
		if got := bitLength(big.NewInt(c.n)); got != c.want {
			t.Errorf("bitLength(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
