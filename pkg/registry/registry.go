// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package registry keeps the cheapest known combo for every value reached
// during a search.
package registry

import (
	"slices"
	"sync"

	"github.com/NVIDIA/onedigit/pkg/combo"
)

// Outcome reports what Merge did with a candidate.
type Outcome int

const (
	// Discarded means an equal or cheaper combo was already known.
	Discarded Outcome = iota
	// Inserted means the value was not known before.
	Inserted
	// Improved means the candidate replaced a costlier combo.
	Improved
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Improved:
		return "improved"
	default:
		return "discarded"
	}
}

// Accepted reports whether the candidate is now the best for its value.
func (o Outcome) Accepted() bool {
	return o == Inserted || o == Improved
}

// Registry maps each value to its cheapest known combo. Merge is the only
// mutation; it is safe for concurrent use.
type Registry struct {
	digit int

	mu    sync.RWMutex
	best  map[int64]combo.Combo
	order []int64
}

// New returns an empty registry for digit.
func New(digit int) *Registry {
	return &Registry{
		digit: digit,
		best:  make(map[int64]combo.Combo),
	}
}

// Digit returns the base digit the registry holds combos for.
func (r *Registry) Digit() int {
	return r.digit
}

// Seed merges the generation 0 combo.
func (r *Registry) Seed() Outcome {
	return r.Merge(combo.Seed(r.digit))
}

// Merge inserts c when its value is new, replaces the known combo when c is
// strictly cheaper and otherwise discards c. A replaced value keeps its
// original discovery position.
func (r *Registry) Merge(c combo.Combo) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	known, ok := r.best[c.Value]
	switch {
	case !ok:
		r.best[c.Value] = c
		r.order = append(r.order, c.Value)
		return Inserted
	case c.Cost < known.Cost:
		r.best[c.Value] = c
		return Improved
	default:
		return Discarded
	}
}

// Improves reports whether a combo for value at cost would be accepted by
// Merge. It lets callers skip rendering candidates that cannot win.
func (r *Registry) Improves(value int64, cost int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	known, ok := r.best[value]
	return !ok || cost < known.Cost
}

// Best returns the cheapest known combo for value.
func (r *Registry) Best(value int64) (combo.Combo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.best[value]
	return c, ok
}

// Len returns the number of distinct values known.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.best)
}

// Values returns the known values in ascending order.
func (r *Registry) Values() []int64 {
	r.mu.RLock()
	values := slices.Clone(r.order)
	r.mu.RUnlock()

	slices.Sort(values)
	return values
}

// Snapshot returns the known combos in discovery order.
func (r *Registry) Snapshot() []combo.Combo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]combo.Combo, 0, len(r.order))
	for _, v := range r.order {
		out = append(out, r.best[v])
	}
	return out
}

// Sorted returns the known combos in ascending value order.
func (r *Registry) Sorted() []combo.Combo {
	out := r.Snapshot()
	slices.SortFunc(out, func(a, b combo.Combo) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Bounds limits which combos Load accepts.
type Bounds struct {
	MaxValue int64
	MaxCost  int
}

// Contains reports whether c lies within the bounds.
func (b Bounds) Contains(c combo.Combo) bool {
	return c.Value >= 1 && c.Value <= b.MaxValue && c.Cost >= 1 && c.Cost <= b.MaxCost
}

// Load merges prior combos that lie within bounds and returns how many were
// accepted. Out of bound combos are skipped.
func (r *Registry) Load(prior []combo.Combo, bounds Bounds) (accepted, skipped int) {
	for _, c := range prior {
		if !bounds.Contains(c) {
			skipped++
			continue
		}
		if r.Merge(c).Accepted() {
			accepted++
		}
	}
	return accepted, skipped
}
