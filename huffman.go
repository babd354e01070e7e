// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"container/heap"
	"math/big"
	"sort"

	"github.com/purplesyringa/taco/internal/bitio"
)

// huffmanNode is a node of the Huffman merge tree: either a leaf holding an
// alphabet index, or a branch with two children.
type huffmanNode struct {
	leaf        bool
	alphabetIdx int
	left, right *huffmanNode
}

// huffmanHeapItem is a min-heap entry ordered by weight, with a monotonic
// sequence number breaking ties in FIFO order so that tree shape (and hence
// the resulting codes) is a deterministic function of input order, matching
// the original's BinaryHeap-of-(weight, subtree) behavior where push order
// for equal weights follows alphabet/subtree construction order.
type huffmanHeapItem struct {
	weight int
	seq    int
	node   *huffmanNode
}

type huffmanHeap []*huffmanHeapItem

func (h huffmanHeap) Len() int { return len(h) }
func (h huffmanHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].seq < h[j].seq
}
func (h huffmanHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *huffmanHeap) Push(x any)        { *h = append(*h, x.(*huffmanHeapItem)) }
func (h *huffmanHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// buildHuffmanTree runs the classical min-heap merge (pop two lightest,
// push the merged subtree) over one count per alphabet entry, shared by
// both the ordered and canonical paths (§4.6, Supplemented features). It
// returns each alphabet entry's code as a Bits value plus the merge tree
// itself (used only by the ordered path, to serialize the tree shape).
func buildHuffmanTree(counts []int) ([]*bitio.Bits, *huffmanNode) {
	h := make(huffmanHeap, len(counts))
	seq := 0
	for i, c := range counts {
		h[i] = &huffmanHeapItem{weight: c, seq: seq, node: &huffmanNode{leaf: true, alphabetIdx: i}}
		seq++
	}
	heap.Init(&h)

	for h.Len() > 1 {
		a := heap.Pop(&h).(*huffmanHeapItem)
		b := heap.Pop(&h).(*huffmanHeapItem)
		merged := &huffmanHeapItem{
			weight: a.weight + b.weight,
			seq:    seq,
			node:   &huffmanNode{left: a.node, right: b.node},
		}
		seq++
		heap.Push(&h, merged)
	}

	representations := make([]*bitio.Bits, len(counts))
	if h.Len() == 0 {
		return representations, nil
	}
	root := h[0].node
	prefix := bitio.New()
	walkHuffmanTree(root, representations, prefix)
	return representations, root
}

func walkHuffmanTree(n *huffmanNode, representations []*bitio.Bits, prefix *bitio.Bits) {
	if n.leaf {
		representations[n.alphabetIdx] = prefix.Clone()
		return
	}
	prefix.Push(false)
	walkHuffmanTree(n.left, representations, prefix)
	prefix.Pop()
	prefix.Push(true)
	walkHuffmanTree(n.right, representations, prefix)
	prefix.Pop()
}

// huffman runs both the ordered and canonical strategies and returns the
// cheaper. Every Value kind in this closed universe has a total order
// (compareValues), so unlike the Rust original's T: Ord specialization,
// the ordered path is always attempted here, not gated by a capability
// check (Design Note "Specialization").
func huffman(batch []Value, opts Options, depth int) CompressedData {
	unordered := huffmanUnordered(batch, opts, depth)
	ordered := huffmanOrdered(batch, opts, depth)
	if unordered.Weight() < ordered.Weight() {
		return unordered
	}
	return ordered
}

// distinctAlphabet returns batch's distinct values in first-seen order,
// plus a map from valueKey to index into that slice and per-index counts.
func distinctAlphabet(batch []Value) (alphabet []Value, indexOf map[string]int, counts []int) {
	indexOf = make(map[string]int)
	for _, v := range batch {
		k := valueKey(v)
		if _, ok := indexOf[k]; !ok {
			indexOf[k] = len(alphabet)
			alphabet = append(alphabet, v)
			counts = append(counts, 0)
		}
		counts[indexOf[k]]++
	}
	return alphabet, indexOf, counts
}

func huffmanOrdered(batch []Value, _ Options, depth int) CompressedData {
	alphabet, _, _ := distinctAlphabet(batch)
	sort.Slice(alphabet, func(i, j int) bool { return compareValues(alphabet[i], alphabet[j]) < 0 })

	indexOf := make(map[string]int, len(alphabet))
	for i, v := range alphabet {
		indexOf[valueKey(v)] = i
	}
	counts := make([]int, len(alphabet))
	for _, v := range batch {
		counts[indexOf[valueKey(v)]]++
	}

	representations, root := buildHuffmanTree(counts)

	bitLen := bitLength(big.NewInt(int64(len(alphabet))))
	tree := bitio.New()
	var walk func(n *huffmanNode)
	walk = func(n *huffmanNode) {
		if n == nil {
			return
		}
		if n.leaf {
			tree.Push(true)
			tree.Extend(compressFixint(uint64(n.alphabetIdx), bitLen))
			return
		}
		tree.Push(false)
		walk(n.left)
		walk(n.right)
	}
	walk(root)

	alphaEngine, alphaData := compressAlphabet(alphabet, depth+1)

	payload := make([]*bitio.Bits, len(batch))
	for i, v := range batch {
		payload[i] = representations[indexOf[valueKey(v)]].Clone()
	}

	return CompressedData{
		Engine: EngineSpecificHuffman{
			Alphabet:     alphaEngine,
			AlphabetData: alphaData,
			Tree:         tree,
		},
		Payload: payload,
	}
}

func huffmanUnordered(batch []Value, _ Options, depth int) CompressedData {
	alphabet, _, counts := distinctAlphabet(batch)

	representations, _ := buildHuffmanTree(counts)

	type codeLength struct {
		length int
		idx    int
	}
	codeLengths := make([]codeLength, len(alphabet))
	for i, r := range representations {
		codeLengths[i] = codeLength{length: r.Len(), idx: i}
	}
	sort.Slice(codeLengths, func(i, j int) bool {
		if codeLengths[i].length != codeLengths[j].length {
			return codeLengths[i].length < codeLengths[j].length
		}
		return codeLengths[i].idx < codeLengths[j].idx
	})

	lengthValues := make([]Value, len(codeLengths))
	for i, cl := range codeLengths {
		lengthValues[i] = NewInt(int64(cl.length))
	}
	lengthsEngine, lengthsData := compressAlphabet(lengthValues, depth+1)

	sortedAlphabet := make([]Value, len(codeLengths))
	for i, cl := range codeLengths {
		sortedAlphabet[i] = alphabet[cl.idx]
	}
	alphaEngine, alphaData := compressAlphabet(sortedAlphabet, depth+1)

	codeOf := make(map[string]*bitio.Bits, len(sortedAlphabet))
	code := bitio.New()
	for i, v := range sortedAlphabet {
		length := codeLengths[i].length
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
		codeOf[valueKey(v)] = code.Clone()
	}

	payload := make([]*bitio.Bits, len(batch))
	for i, v := range batch {
		payload[i] = codeOf[valueKey(v)].Clone()
	}

	return CompressedData{
		Engine: EngineCanonicalHuffman{
			Alphabet:     alphaEngine,
			AlphabetData: alphaData,
			Lengths:      lengthsEngine,
			LengthsData:  lengthsData,
		},
		Payload: payload,
	}
}
