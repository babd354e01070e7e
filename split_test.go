// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

import "testing"

func TestSplitByKeyGroups(t *testing.T) {
	keys := []string{"a", "b", "a", "a", "b", "c", "a", "b"}
	cats, ok := splitByKey(len(keys), func(i int) string { return keys[i] })
	if !ok {
		t.Fatalf("splitByKey() ok = false, want true")
	}
	total := 0
	for _, cat := range cats {
		total += len(cat)
		k := keys[cat[0]]
		for _, i := range cat {
			if keys[i] != k {
				t.Fatalf("category mixes keys: %v", cat)
			}
		}
	}
	if total != len(keys) {
		t.Fatalf("splitByKey covered %d indices, want %d", total, len(keys))
	}
}

func TestSplitByKeyRejectsTooManyBuckets(t *testing.T) {
	// 4 distinct keys over 4 elements: len(buckets) >= n/2 (4 >= 2) fails.
	keys := []string{"a", "b", "c", "d"}
	_, ok := splitByKey(len(keys), func(i int) string { return keys[i] })
	if ok {
		t.Fatalf("splitByKey() ok = true, want false when every element is its own bucket")
	}
}

func TestSplitByKeyAllSameBucket(t *testing.T) {
	keys := []string{"a", "a", "a", "a"}
	cats, ok := splitByKey(len(keys), func(i int) string { return keys[i] })
	if !ok || len(cats) != 1 || len(cats[0]) != 4 {
		t.Fatalf("splitByKey() = %v, %v, want one bucket of 4", cats, ok)
	}
}
