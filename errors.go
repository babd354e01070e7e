// Copyright 2024, The Taco Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package taco

// Error is the wrapper type for errors specific to this library.
//
// Per spec, invariant breaches (payload-length mismatches, malformed sorted
// slices, heap underflow) are programmer errors, not recoverable conditions:
// they are raised via panic(Error(...)) rather than returned.
type Error string

func (e Error) Error() string { return "taco: " + string(e) }
