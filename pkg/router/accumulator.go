// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package router

import "maps"

// Accumulator folds a stream of partial-result maps into one result using
// shallow, last-write-wins merge semantics: a key appearing in a later chunk
// replaces the value from an earlier one wholesale, nested maps included.
//
// An Accumulator is call-local and not safe for concurrent use; the router
// creates one per streamed call.
type Accumulator struct {
	state map[string]any
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{state: make(map[string]any)}
}

// Merge folds one chunk into the accumulated state.
func (a *Accumulator) Merge(chunk map[string]any) {
	maps.Copy(a.state, chunk)
}

// Len returns the number of accumulated keys.
func (a *Accumulator) Len() int {
	return len(a.state)
}

// Snapshot returns an independent copy of the accumulated state.
func (a *Accumulator) Snapshot() map[string]any {
	out := make(map[string]any, len(a.state))
	maps.Copy(out, a.state)
	return out
}
