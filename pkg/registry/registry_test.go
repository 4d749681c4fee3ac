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

package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/onedigit/pkg/combo"
)

func TestMerge(t *testing.T) {
	r := New(3)
	assert.Equal(t, Inserted, r.Seed())
	assert.Equal(t, 3, r.Digit())

	tests := []struct {
		name  string
		combo combo.Combo
		want  Outcome
	}{
		{"new value", combo.New(9, 3, "3 + 3 + 3", "6 + 3"), Inserted},
		{"equal cost", combo.New(9, 3, "(3 + 3) + 3", "6 + 3"), Discarded},
		{"higher cost", combo.New(9, 4, "x", "x"), Discarded},
		{"cheaper", combo.New(9, 2, "3! + 3", "6 + 3"), Improved},
		{"seed again", combo.Seed(3), Discarded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Merge(tt.combo))
		})
	}

	best, ok := r.Best(9)
	require.True(t, ok)
	assert.Equal(t, 2, best.Cost)
	assert.Equal(t, "3! + 3", best.ExprFull)
	assert.Equal(t, 2, r.Len())
}

func TestImproveKeepsDiscoverySlot(t *testing.T) {
	r := New(3)
	r.Seed()
	r.Merge(combo.New(27, 3, "3 * 3 * 3", "9 * 3"))
	r.Merge(combo.New(6, 1, "3!", "3!"))
	r.Merge(combo.New(27, 2, "3 ^ 3", "3 ^ 3"))

	var values []int64
	for _, c := range r.Snapshot() {
		values = append(values, c.Value)
	}
	assert.Equal(t, []int64{3, 27, 6}, values)
	assert.Equal(t, []int64{3, 6, 27}, r.Values())

	sorted := r.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, int64(27), sorted[2].Value)
	assert.Equal(t, 2, sorted[2].Cost)
}

func TestImproves(t *testing.T) {
	r := New(3)
	r.Merge(combo.New(9, 2, "3! + 3", "6 + 3"))

	assert.True(t, r.Improves(10, 5))
	assert.True(t, r.Improves(9, 1))
	assert.False(t, r.Improves(9, 2))
	assert.False(t, r.Improves(9, 3))
}

func TestLoad(t *testing.T) {
	r := New(3)
	prior := []combo.Combo{
		combo.Seed(3),
		combo.New(6, 1, "3!", "3!"),
		combo.New(720, 1, "(3!)!", "6!"),
		combo.New(9, 2, "3! + 3", "6 + 3"),
		combo.New(18, 3, "(3! + 3!) + 3!", "12 + 6"),
	}

	accepted, skipped := r.Load(prior, Bounds{MaxValue: 100, MaxCost: 2})
	assert.Equal(t, 3, accepted)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []int64{3, 6, 9}, r.Values())
}

func TestConcurrentMerge(t *testing.T) {
	r := New(3)

	var wg sync.WaitGroup
	for cost := 10; cost >= 1; cost-- {
		wg.Add(1)
		go func(cost int) {
			defer wg.Done()
			r.Merge(combo.New(42, cost, "e", "e"))
		}(cost)
	}
	wg.Wait()

	best, ok := r.Best(42)
	require.True(t, ok)
	assert.Equal(t, 1, best.Cost, "cheapest combo must survive any merge order")
	assert.Equal(t, 1, r.Len())
}

func TestOutcome(t *testing.T) {
	assert.True(t, Inserted.Accepted())
	assert.True(t, Improved.Accepted())
	assert.False(t, Discarded.Accepted())
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "improved", Improved.String())
	assert.Equal(t, "discarded", Discarded.String())
}
