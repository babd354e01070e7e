// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import (
	"math/big"
	"strings"

	"github.com/purplesyringa/taco/internal/bitio"
)

// stringCompressMultiple implements §4.4's four-strategy cascade, trying
// each in order and returning the first applicable one.
func stringCompressMultiple(batch []Value, opts Options, depth int) CompressedData {
	n := len(batch)

	for _, sep := range []rune{'\n', ' '} {
		total := 0
		for _, v := range batch {
			total += strings.Count(v.(Str).V, string(sep))
		}
		if total < n {
			continue
		}
		wordSeqs := make([]Value, n)
		for i, v := range batch {
			parts := strings.Split(v.(Str).V, string(sep))
			words := make([]Value, len(parts))
			for j, w := range parts {
				words[j] = Str{V: w}
			}
			wordSeqs[i] = Seq{V: words}
		}
		compressed := autocompress(wordSeqs, opts, depth+1)
		return CompressedData{
			Engine:  EngineStringConcat{Words: compressed.Engine, Separator: sep},
			Payload: compressed.Payload,
		}
	}

	if intValues, ok := tryParseStringifiedInts(batch); ok {
		compressed := autocompress(intValues, opts, depth+1)
		return CompressedData{
			Engine:  EngineStringifiedInt{Inner: compressed.Engine},
			Payload: compressed.Payload,
		}
	}

	if intValues, precValues, ok := tryParseStringifiedDecimals(batch); ok {
		intsCompressed := autocompress(intValues, opts, depth+1)
		precCompressed := autocompress(precValues, opts, depth+1)
		payload := make([]*bitio.Bits, n)
		for i := range payload {
			b := intsCompressed.Payload[i].Clone()
			b.Extend(precCompressed.Payload[i])
			payload[i] = b
		}
		return CompressedData{
			Engine:  EngineStringifiedDecimal{Inner: intsCompressed.Engine, Precision: precCompressed.Engine},
			Payload: payload,
		}
	}

	charSeqs := make([]Value, n)
	for i, v := range batch {
		runes := []rune(v.(Str).V)
		items := make([]Value, len(runes))
		for j, r := range runes {
			items[j] = NewInt(int64(r))
		}
		charSeqs[i] = Seq{V: items}
	}
	compressed := autocompress(charSeqs, opts, depth+1)
	return CompressedData{
		Engine:  EngineString{Chars: compressed.Engine},
		Payload: compressed.Payload,
	}
}

// tryParseStringifiedInts checks that every string decimally round-trips
// through math/big: this naturally rejects leading zeros, a leading '+',
// internal whitespace, and (per Open Question 5) forms like "-0" whose
// canonical big.Int.String() would never reproduce them.
func tryParseStringifiedInts(batch []Value) ([]Value, bool) {
	out := make([]Value, len(batch))
	for i, v := range batch {
		s := v.(Str).V
		num, ok := new(big.Int).SetString(s, 10)
		if !ok || num.String() != s {
			return nil, false
		}
		out[i] = Int{V: num}
	}
	return out, true
}

// tryParseStringifiedDecimals checks that every string contains exactly one
// '.' and that removing it yields a round-tripping integer (§4.4 step 3).
func tryParseStringifiedDecimals(batch []Value) ([]Value, []Value, bool) {
	ints := make([]Value, len(batch))
	precs := make([]Value, len(batch))
	for i, v := range batch {
		s := v.(Str).V
		if strings.Count(s, ".") != 1 {
			return nil, nil, false
		}
		parts := strings.SplitN(s, ".", 2)
		combined := parts[0] + parts[1]
		num, ok := new(big.Int).SetString(combined, 10)
		if !ok || num.String() != combined {
			return nil, nil, false
		}
		ints[i] = Int{V: num}
		precs[i] = NewInt(int64(len(parts[1])))
	}
	return ints, precs, true
}

// stringKind classifies s per §4.4's category table; classifyStringKind
// checks the kinds in the order listed and returns the first that matches.
type stringKind int

const (
	stringKindEmpty stringKind = iota
	stringKindDecimalNumber
	stringKindExtendedDecimalNumber
	stringKindLatin
	stringKindLatinNumeric
	stringKindText
	stringKindGeneric
)

func classifyStringKind(s string) stringKind {
	if s == "" {
		return stringKindEmpty
	}
	all := func(pred func(rune) bool) bool {
		for _, c := range s {
			if !pred(c) {
				return false
			}
		}
		return true
	}
	isDigit := func(c rune) bool { return c >= '0' && c <= '9' }
	isLatin := func(c rune) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
	switch {
	case all(isDigit):
		return stringKindDecimalNumber
	case all(func(c rune) bool {
		return c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E' || isDigit(c)
	}):
		return stringKindExtendedDecimalNumber
	case all(isLatin):
		return stringKindLatin
	case all(func(c rune) bool { return isLatin(c) || isDigit(c) }):
		return stringKindLatinNumeric
	case all(func(c rune) bool { return c < 128 }):
		return stringKindText
	default:
		return stringKindGeneric
	}
}

func stringSplitCategories(batch []Value) ([][]int, bool) {
	return splitByKey(len(batch), func(i int) stringKind {
		return classifyStringKind(batch[i].(Str).V)
	})
}
