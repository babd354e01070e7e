// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package decode is a reference decoder derived directly from the engine
// tag table. It exists only to drive round-trip tests in the taco package's
// test files; it is not part of any public API and is never used by the
// encoder itself.
package decode

import (
	"math/big"
	"strings"

	"github.com/purplesyringa/taco/internal/bitio"

	taco "github.com/purplesyringa/taco"
)

type reader struct {
	b   *bitio.Bits
	pos int
}

func newReader(b *bitio.Bits) *reader { return &reader{b: b} }

func (r *reader) bit() bool {
	v := r.b.Bit(r.pos)
	r.pos++
	return v
}

func (r *reader) tag(nbits int) int {
	v := 0
	for i := 0; i < nbits; i++ {
		v <<= 1
		if r.bit() {
			v |= 1
		}
	}
	return v
}

// fixuint reads nb bits least-significant-bit first, the inverse of
// compressFixint.
func (r *reader) fixuint(nb int) uint64 {
	var v uint64
	for i := 0; i < nb; i++ {
		if r.bit() {
			v |= 1 << uint(i)
		}
	}
	return v
}

func (r *reader) fixbig(nb int) *big.Int {
	v := new(big.Int)
	for i := 0; i < nb; i++ {
		if r.bit() {
			v.SetBit(v, i, 1)
		}
	}
	return v
}

// varuint is the inverse of compressVaruint: once the 11-prefixed case's
// recursively-encoded k is known, the following k+2 bits are num's entire
// bit pattern (see DESIGN.md's varint.go entry on why this, not the original
// Rust source's k-bit loop, is the injective reading of spec.md §4.1).
func (r *reader) varuint() *big.Int {
	b0 := r.bit()
	b1 := r.bit()
	switch {
	case !b0 && !b1:
		return big.NewInt(0)
	case b0 && !b1:
		return big.NewInt(1)
	case !b0 && b1:
		return big.NewInt(2)
	default:
		k := int(r.varuint().Int64())
		return r.fixbig(k + 2)
	}
}

func (r *reader) varint() *big.Int {
	neg := r.bit()
	mag := r.varuint()
	if neg {
		mag.Add(mag, big.NewInt(1))
		mag.Neg(mag)
	}
	return mag
}

func bitLength(n int) int {
	return big.NewInt(int64(n)).BitLen()
}

const (
	tagVarInt             = 0b0000
	tagFixedInt           = 0b0001
	tagSpecificHuffman    = 0b0010
	tagCanonicalHuffman   = 0b0011
	tagString             = 0b0100
	tagStringConcat       = 0b0101
	tagIntSetNotUnique    = 0b0110
	tagIntSetUnique       = 0b0111
	tagVec                = 0b1000
	tagVecRLE             = 0b1001
	tagCategorySplit      = 0b1010
	tagConstant           = 0b1100
	tagAlphabet           = 0b1101
	tagStringifiedInt     = 0b1110
	tagStringifiedDecimal = 0b1111
)

type kind int

const (
	kVarInt kind = iota
	kFixedInt
	kSpecificHuffman
	kCanonicalHuffman
	kString
	kStringConcat
	kIntSet
	kVec
	kVecRLE
	kCategorySplit
	kConstant
	kAlphabet
	kStringifiedInt
	kStringifiedDecimal
)

type treeNode struct {
	leaf        bool
	idx         int
	left, right *treeNode
}

type canonTrie struct {
	leaf     bool
	idx      int
	children [2]*canonTrie
}

// engine is this package's own parsed mirror of the wire format's engine
// tree. It intentionally does not reuse taco's unexported Engine variants:
// a reference decoder built from the tag table is the point, not reflection
// into the encoder's internals.
type engine struct {
	kind kind

	fixedBias *big.Int
	fixedLen  int

	alphabet []taco.Value
	tree     *treeNode

	lengths []int
	trie    *canonTrie

	chars *engine

	wordsEngine *engine
	separator   rune

	minEngine, maxEngine *engine
	unique               bool

	lengthEngine *engine
	itemEngine   *engine

	categories []*engine
	category   *engine

	constValue taco.Value

	index *engine

	inner     *engine
	precision *engine
}

func parseEngine(r *reader) *engine {
	switch t := r.tag(4); t {
	case tagVarInt:
		return &engine{kind: kVarInt}
	case tagFixedInt:
		bias := r.varint()
		length := int(r.varint().Int64())
		return &engine{kind: kFixedInt, fixedBias: bias, fixedLen: length}
	case tagSpecificHuffman:
		alpha := parseEngine(r)
		alphaSeq := decodeOne(alpha, r, nil).(taco.Seq).V
		bitLen := bitLength(len(alphaSeq))
		tree := parseHuffmanTree(r, bitLen)
		return &engine{kind: kSpecificHuffman, alphabet: alphaSeq, tree: tree}
	case tagCanonicalHuffman:
		alpha := parseEngine(r)
		alphaSeq := decodeOne(alpha, r, nil).(taco.Seq).V
		lengthsEngine := parseEngine(r)
		lengthsSeq := decodeOne(lengthsEngine, r, nil).(taco.Seq).V
		lengths := make([]int, len(lengthsSeq))
		for i, v := range lengthsSeq {
			lengths[i] = int(v.(taco.Int).V.Int64())
		}
		return &engine{kind: kCanonicalHuffman, alphabet: alphaSeq, lengths: lengths}
	case tagString:
		return &engine{kind: kString, chars: parseEngine(r)}
	case tagStringConcat:
		sep := rune(r.varint().Int64())
		words := parseEngine(r)
		return &engine{kind: kStringConcat, separator: sep, wordsEngine: words}
	case tagIntSetNotUnique, tagIntSetUnique:
		min := parseEngine(r)
		max := parseEngine(r)
		return &engine{kind: kIntSet, minEngine: min, maxEngine: max, unique: t == tagIntSetUnique}
	case tagVec:
		length := parseEngine(r)
		item := parseEngine(r)
		return &engine{kind: kVec, lengthEngine: length, itemEngine: item}
	case tagVecRLE:
		length := parseEngine(r)
		item := parseEngine(r)
		return &engine{kind: kVecRLE, lengthEngine: length, itemEngine: item}
	case tagCategorySplit:
		count := int(r.varint().Int64())
		categories := make([]*engine, count)
		for i := range categories {
			categories[i] = parseEngine(r)
		}
		category := parseEngine(r)
		return &engine{kind: kCategorySplit, categories: categories, category: category}
	case tagConstant:
		inner := parseEngine(r)
		val := decodeOne(inner, r, nil)
		return &engine{kind: kConstant, constValue: val}
	case tagAlphabet:
		alpha := parseEngine(r)
		alphaSeq := decodeOne(alpha, r, nil).(taco.Seq).V
		index := parseEngine(r)
		return &engine{kind: kAlphabet, alphabet: alphaSeq, index: index}
	case tagStringifiedInt:
		return &engine{kind: kStringifiedInt, inner: parseEngine(r)}
	case tagStringifiedDecimal:
		inner := parseEngine(r)
		precision := parseEngine(r)
		return &engine{kind: kStringifiedDecimal, inner: inner, precision: precision}
	default:
		panic("decode: unknown or reserved engine tag")
	}
}

func parseHuffmanTree(r *reader, bitLen int) *treeNode {
	if r.bit() {
		return &treeNode{leaf: true, idx: int(r.fixuint(bitLen))}
	}
	left := parseHuffmanTree(r, bitLen)
	right := parseHuffmanTree(r, bitLen)
	return &treeNode{left: left, right: right}
}

func walkTree(n *treeNode, r *reader) int {
	if n.leaf {
		return n.idx
	}
	if r.bit() {
		return walkTree(n.right, r)
	}
	return walkTree(n.left, r)
}

// buildCanonTrie reconstructs the canonical code assignment (pop-ones-
// push-true increment, same as huffman.go's huffmanUnordered) from already
// length-sorted alphabet/lengths, then indexes it as a trie for streaming
// bit-by-bit decode.
func buildCanonTrie(e *engine) *canonTrie {
	root := &canonTrie{}
	code := bitio.New()
	for i := range e.alphabet {
		length := e.lengths[i]
		if i > 0 {
			cnt := 0
			for code.Pop() {
				cnt++
			}
			code.Push(true)
			for j := 0; j < cnt; j++ {
				code.Push(false)
			}
		}
		for code.Len() < length {
			code.Push(false)
		}
		node := root
		for b := 0; b < code.Len(); b++ {
			bit := 0
			if code.Bit(b) {
				bit = 1
			}
			if node.children[bit] == nil {
				node.children[bit] = &canonTrie{}
			}
			node = node.children[bit]
		}
		node.leaf = true
		node.idx = i
	}
	return root
}

func decodeCanonical(e *engine, r *reader) int {
	if e.trie == nil {
		e.trie = buildCanonTrie(e)
	}
	node := e.trie
	for !node.leaf {
		bit := 0
		if r.bit() {
			bit = 1
		}
		node = node.children[bit]
	}
	return node.idx
}

// bisectDecode is the inverse of compress_vec.go's bisectIntSet.
func bisectDecode(r *reader, n int, lo, hi *big.Int, unique bool) []taco.Value {
	if n == 0 {
		return nil
	}
	m := n / 2
	var val *big.Int
	var left, right []taco.Value
	if unique {
		effLo := new(big.Int).Add(lo, big.NewInt(int64(m)))
		effHi := new(big.Int).Sub(hi, big.NewInt(int64(n-m-1)))
		width := effHi.Sub(effHi, effLo).BitLen()
		effLo = new(big.Int).Add(lo, big.NewInt(int64(m)))
		offset := r.fixbig(width)
		val = new(big.Int).Add(offset, effLo)
		leftHi := new(big.Int).Sub(val, big.NewInt(1))
		rightLo := new(big.Int).Add(val, big.NewInt(1))
		left = bisectDecode(r, m, lo, leftHi, unique)
		right = bisectDecode(r, n-m-1, rightLo, hi, unique)
	} else {
		width := new(big.Int).Sub(hi, lo).BitLen()
		offset := r.fixbig(width)
		val = new(big.Int).Add(offset, lo)
		left = bisectDecode(r, m, lo, val, unique)
		right = bisectDecode(r, n-m-1, val, hi, unique)
	}
	out := make([]taco.Value, 0, n)
	out = append(out, left...)
	out = append(out, taco.Int{V: val})
	out = append(out, right...)
	return out
}

func decodeOne(e *engine, r *reader, lenHint *int) taco.Value {
	switch e.kind {
	case kVarInt:
		return taco.Int{V: r.varint()}
	case kFixedInt:
		off := r.fixbig(e.fixedLen)
		return taco.Int{V: new(big.Int).Add(off, e.fixedBias)}
	case kSpecificHuffman:
		return e.alphabet[walkTree(e.tree, r)]
	case kCanonicalHuffman:
		return e.alphabet[decodeCanonical(e, r)]
	case kString:
		runes := decodeOne(e.chars, r, nil).(taco.Seq).V
		out := make([]rune, len(runes))
		for i, rv := range runes {
			out[i] = rune(rv.(taco.Int).V.Int64())
		}
		return taco.Str{V: string(out)}
	case kStringConcat:
		words := decodeOne(e.wordsEngine, r, nil).(taco.Seq).V
		parts := make([]string, len(words))
		for i, wv := range words {
			parts[i] = wv.(taco.Str).V
		}
		return taco.Str{V: strings.Join(parts, string(e.separator))}
	case kIntSet:
		lo := decodeOne(e.minEngine, r, nil).(taco.Int).V
		hi := decodeOne(e.maxEngine, r, nil).(taco.Int).V
		if lenHint == nil {
			panic("decode: IntSet needs a sequence-length hint; see Decode's doc comment")
		}
		n := *lenHint
		if n == 0 {
			return taco.Seq{}
		}
		items := make([]taco.Value, n)
		items[0] = taco.Int{V: lo}
		if n >= 2 {
			items[n-1] = taco.Int{V: hi}
		}
		if n > 2 {
			copy(items[1:n-1], bisectDecode(r, n-2, lo, hi, e.unique))
		}
		return taco.Seq{V: items}
	case kVec:
		n := int(decodeOne(e.lengthEngine, r, nil).(taco.Int).V.Int64())
		items := make([]taco.Value, n)
		for i := range items {
			items[i] = decodeOne(e.itemEngine, r, nil)
		}
		return taco.Seq{V: items}
	case kVecRLE:
		runLens := decodeOne(e.lengthEngine, r, nil).(taco.Seq).V
		runVals := decodeOne(e.itemEngine, r, nil).(taco.Seq).V
		var items []taco.Value
		for i, lv := range runLens {
			cnt := int(lv.(taco.Int).V.Int64())
			for j := 0; j < cnt; j++ {
				items = append(items, runVals[i])
			}
		}
		return taco.Seq{V: items}
	case kCategorySplit:
		idx := int(decodeOne(e.category, r, nil).(taco.Int).V.Int64())
		return decodeOne(e.categories[idx], r, lenHint)
	case kConstant:
		return e.constValue
	case kAlphabet:
		idx := int(decodeOne(e.index, r, nil).(taco.Int).V.Int64())
		return e.alphabet[idx]
	case kStringifiedInt:
		v := decodeOne(e.inner, r, lenHint).(taco.Int).V
		return taco.Str{V: v.String()}
	case kStringifiedDecimal:
		combined := decodeOne(e.inner, r, nil).(taco.Int).V.String()
		prec := int(decodeOne(e.precision, r, nil).(taco.Int).V.Int64())
		cut := len(combined) - prec
		return taco.Str{V: combined[:cut] + "." + combined[cut:]}
	default:
		panic("decode: unhandled engine kind")
	}
}

// Decode parses header (an engine header as produced by taco.Header) and
// payload (the concatenation of n per-object payloads in object order) back
// into n Values.
//
// intSetLengths supplies, for each of the n output positions, the original
// sequence length to use if the root engine turns out to be a bare IntSet.
// This is necessary because the wire format's IntSet operands are only
// `min engine, max engine` (§6): a sequence's length is ordinarily implied
// by whichever Vec/VecRLE/CategorySplit ancestor produced the batch, except
// when IntSet is chosen as the root engine of the whole batch (the length
// for each object's IntSet interior-bisection has nowhere to live). Callers
// whose root engine is never IntSet — the overwhelming majority of batches —
// can pass nil.
func Decode(header, payload *bitio.Bits, n int, intSetLengths []int) []taco.Value {
	e := parseEngine(newReader(header))
	pr := newReader(payload)
	out := make([]taco.Value, n)
	for i := 0; i < n; i++ {
		var hint *int
		if intSetLengths != nil {
			hint = &intSetLengths[i]
		}
		out[i] = decodeOne(e, pr, hint)
	}
	return out
}
