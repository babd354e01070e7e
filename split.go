// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

// splitByKey partitions indices 0..len(n)-1 into buckets keyed by keyFn,
// returning the buckets in first-seen key order iff doing so is worthwhile:
// the number of distinct keys must be strictly less than n/2 (§4.7).
// Otherwise it returns (nil, false) and the caller should try another key
// function or give up on categorization.
//
// Bucket order is never observable externally (§4.7): the planner always
// pairs each CategorySplit with a category-index-per-object engine, so any
// consistent encoder/decoder agreement on iteration order is sufficient.
func splitByKey[K comparable](n int, keyFn func(i int) K) ([][]int, bool) {
	buckets := make(map[K][]int)
	order := make([]K, 0)
	for i := 0; i < n; i++ {
		k := keyFn(i)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], i)
	}
	if len(buckets) >= n/2 {
		return nil, false
	}
	out := make([][]int, 0, len(buckets))
	for _, k := range order {
		out = append(out, buckets[k])
	}
	return out, true
}
