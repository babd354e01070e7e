// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"math/big"

	"github.com/purplesyringa/taco/internal/bitio"
)

// bitLength returns the number of bits required to hold num: 0 for num == 0,
// otherwise floor(log2(num))+1. num must be non-negative.
func bitLength(num *big.Int) int {
	return num.BitLen()
}

// compressVaruint encodes a non-negative integer with a recursive
// length-prefixed scheme (§4.1):
//
//	00           num == 0
//	10           num == 1
//	01           num == 2
//	11 <k> <low> otherwise, where k = bitLength(num)-2 written recursively
//	             via compressVaruint, followed by the low k+2 bits of num
//	             (i.e. all of num's bits, since bitLength(num) == k+2),
//	             least-significant bit first. The recursive k tells the
//	             reader exactly how many raw bits follow; num's top bit
//	             being 1 is then a consequence, not a separately-checked
//	             fact, which is what makes it "implicit".
func compressVaruint(num *big.Int) *bitio.Bits {
	b := bitio.New()
	switch {
	case num.Sign() == 0:
		b.Push(false)
		b.Push(false)
	case num.Cmp(one) == 0:
		b.Push(true)
		b.Push(false)
	case num.Cmp(two) == 0:
		b.Push(false)
		b.Push(true)
	default:
		b.Push(true)
		b.Push(true)
		k := bitLength(num) - 2
		b.Extend(compressVaruint(big.NewInt(int64(k))))
		for i := 0; i < k+2; i++ {
			b.Push(num.Bit(i) != 0)
		}
	}
	return b
}

// compressVarintBig encodes a signed integer by prefixing a sign bit (0 for
// non-negative, 1 for negative) followed by compressVaruint(num) or
// compressVaruint(-num-1) respectively.
func compressVarintBig(num *big.Int) *bitio.Bits {
	b := bitio.New()
	if num.Sign() < 0 {
		b.Push(true)
		mag := new(big.Int).Neg(num)
		mag.Sub(mag, one)
		b.Extend(compressVaruint(mag))
	} else {
		b.Push(false)
		b.Extend(compressVaruint(num))
	}
	return b
}

// compressVarint is the int-sized convenience wrapper used everywhere the
// value is known to fit comfortably in a machine word (lengths, indices,
// counts, small parameters).
func compressVarint(num int) *bitio.Bits {
	return compressVarintBig(big.NewInt(int64(num)))
}

// compressFixint emits bitLen bits of num, least-significant bit first.
func compressFixint(num uint64, bitLen int) *bitio.Bits {
	b := bitio.New()
	b.PushUint(num, bitLen)
	return b
}

// compressFixintBig is the big.Int-sized counterpart of compressFixint, used
// for FixedInt payloads whose bias makes the offset itself possibly exceed a
// machine word (see compress_int.go).
func compressFixintBig(num *big.Int, bitLen int) *bitio.Bits {
	b := bitio.New()
	for i := 0; i < bitLen; i++ {
		b.Push(num.Bit(i) != 0)
	}
	return b
}

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)
