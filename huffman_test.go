// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import "testing"

func TestBuildHuffmanTreeCodesArePrefixFree(t *testing.T) {
	representations, _ := buildHuffmanTree([]int{5, 1, 1, 3, 9})
	for i := range representations {
		for j := range representations {
			if i == j {
				continue
			}
			a, b := representations[i], representations[j]
			n := a.Len()
			if b.Len() < n {
				n = b.Len()
			}
			same := true
			for k := 0; k < n; k++ {
				if a.Bit(k) != b.Bit(k) {
					same = false
					break
				}
			}
			if same {
				t.Fatalf("code %d (%s) is a prefix of code %d (%s)", i, a, j, b)
			}
		}
	}
}

func TestBuildHuffmanTreeSingleSymbolHasEmptyCode(t *testing.T) {
	representations, _ := buildHuffmanTree([]int{7})
	if representations[0].Len() != 0 {
		t.Fatalf("single-symbol alphabet code length = %d, want 0", representations[0].Len())
	}
}

func TestHuffmanOrderedPayloadLengthsMatchTree(t *testing.T) {
	batch := []Value{NewInt(1), NewInt(1), NewInt(1), NewInt(2), NewInt(3)}
	data := huffmanOrdered(batch, DefaultOptions(), 0)
	if len(data.Payload) != len(batch) {
		t.Fatalf("huffmanOrdered: payload count = %d, want %d", len(data.Payload), len(batch))
	}
	// The most frequent symbol (1, appearing 3 times) should get the
	// shortest-or-equal code among this tiny alphabet.
	if data.Payload[0].Len() > data.Payload[3].Len() {
		t.Fatalf("more frequent symbol got a longer code: %d vs %d", data.Payload[0].Len(), data.Payload[3].Len())
	}
}

func TestHuffmanUnorderedUsesCanonicalEngine(t *testing.T) {
	batch := []Value{NewInt(9), NewInt(9), NewInt(9), NewInt(9), NewInt(8), NewInt(7)}
	data := huffmanUnordered(batch, DefaultOptions(), 0)
	if _, ok := data.Engine.(EngineCanonicalHuffman); !ok {
		t.Fatalf("huffmanUnordered: Engine = %T, want EngineCanonicalHuffman", data.Engine)
	}
}

func TestHuffmanPicksCheaperOfOrderedAndUnordered(t *testing.T) {
	batch := []Value{NewInt(1), NewInt(1), NewInt(1), NewInt(1), NewInt(2)}
	data := huffman(batch, DefaultOptions(), 0)
	ordered := huffmanOrdered(batch, DefaultOptions(), 0)
	unordered := huffmanUnordered(batch, DefaultOptions(), 0)
	want := ordered.Weight()
	if unordered.Weight() < want {
		want = unordered.Weight()
	}
	if data.Weight() != want {
		t.Fatalf("huffman() weight = %d, want min(ordered, unordered) = %d", data.Weight(), want)
	}
}

func TestDistinctAlphabetCountsFrequencies(t *testing.T) {
	batch := []Value{NewInt(1), NewInt(2), NewInt(1), NewInt(1)}
	alphabet, indexOf, counts := distinctAlphabet(batch)
	if len(alphabet) != 2 {
		t.Fatalf("distinctAlphabet: len(alphabet) = %d, want 2", len(alphabet))
	}
	if counts[indexOf[valueKey(NewInt(1))]] != 3 {
		t.Fatalf("distinctAlphabet: count of 1 = %d, want 3", counts[indexOf[valueKey(NewInt(1))]])
	}
	if counts[indexOf[valueKey(NewInt(2))]] != 1 {
		t.Fatalf("distinctAlphabet: count of 2 = %d, want 1", counts[indexOf[valueKey(NewInt(2))]])
	}
}
