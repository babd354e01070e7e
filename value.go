// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"fmt"
	"math/big"
	"strings"
)

// Value is the closed set of object kinds the planner knows how to compress:
// integers, strings, and sequences of Value (which lets sequences nest
// arbitrarily deeply). This mirrors the Rust original's use of a generic
// Compress trait implemented for i128, String, and Vec<T>: rather than Go
// generics (which would need one instantiation per concrete element type and
// cannot express "a batch of values whose element type is only known to be
// homogeneous at runtime"), taco closes the type universe up front and
// dispatches on the Value's dynamic kind.
type Value interface {
	isValue()
}

// Int wraps an arbitrary-precision integer. All narrower Go integer types
// reduce to Int at the call site (§4.3).
type Int struct {
	V *big.Int
}

// Str wraps a UTF-8 string.
type Str struct {
	V string
}

// Seq wraps a sequence of Value, i.e. a "vector" in spec terms.
type Seq struct {
	V []Value
}

func (Int) isValue() {}
func (Str) isValue() {}
func (Seq) isValue() {}

// NewInt is a convenience constructor for integer literals.
func NewInt(n int64) Int { return Int{V: big.NewInt(n)} }

// valueKey returns a canonical string uniquely identifying v's value, used
// as a map key for deduplication and category bucketing (the Go stand-in for
// Rust's derived Hash+Eq on T).
func valueKey(v Value) string {
	var sb strings.Builder
	writeValueKey(&sb, v)
	return sb.String()
}

func writeValueKey(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case Int:
		sb.WriteString("I:")
		sb.WriteString(x.V.String())
	case Str:
		sb.WriteString("S:")
		fmt.Fprintf(sb, "%d:%s", len(x.V), x.V)
	case Seq:
		sb.WriteString("V:")
		fmt.Fprintf(sb, "%d:", len(x.V))
		for _, item := range x.V {
			writeValueKey(sb, item)
			sb.WriteByte(',')
		}
	default:
		panic(Error("unreachable: value kind not in closed set"))
	}
}

// compareValues imposes a total order over Value, used by the ordered
// Huffman path (§4.6) and by run detection in vector RLE compression
// (§4.5). Every Value kind in this closed universe is always orderable:
// integers numerically, strings byte-lexicographically, and sequences
// lexicographically by element (the same order Rust derives for Vec<T>
// where T: Ord).
func compareValues(a, b Value) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case Int:
		return x.V.Cmp(b.(Int).V)
	case Str:
		return strings.Compare(x.V, b.(Str).V)
	case Seq:
		y := b.(Seq)
		n := len(x.V)
		if len(y.V) < n {
			n = len(y.V)
		}
		for i := 0; i < n; i++ {
			if c := compareValues(x.V[i], y.V[i]); c != 0 {
				return c
			}
		}
		return len(x.V) - len(y.V)
	default:
		panic(Error("unreachable: value kind not in closed set"))
	}
}

func kindRank(v Value) int {
	switch v.(type) {
	case Int:
		return 0
	case Str:
		return 1
	case Seq:
		return 2
	default:
		panic(Error("unreachable: value kind not in closed set"))
	}
}

func isIntValue(v Value) bool {
	_, ok := v.(Int)
	return ok
}
