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

// Package engine runs the generation search for single digit expressions.
//
// A search starts from the seed combo (the digit itself at cost 1) and any
// combos loaded from a prior snapshot. Each generation combines the
// frontier, the values that were inserted or improved by the previous
// generation, with everything known when the generation started:
//
//   - every enabled unary operation is applied to each frontier combo
//   - every enabled binary operation is applied to each pair of a frontier
//     combo and a known combo, each unordered pair once
//   - ordered operations (+ - * /) take the larger value on the left, ^ is
//     tried in both directions
//
// Candidates outside MaxValue or MaxCost are dropped before rendering.
// The survivors are merged into the registry, which keeps the cheapest
// expression per value; the first candidate wins a tie. The search stops
// after MaxSteps generations or as soon as a generation changes nothing.
//
// Usage:
//
//	e, err := engine.New(engine.Config{
//	    Digit:      3,
//	    MaxValue:   100,
//	    MaxCost:    4,
//	    MaxSteps:   3,
//	    Operations: []string{"+", "-", "!"},
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := e.Run(ctx, nil)
//
// The context is checked between generations. Metrics are registered with
// the default prometheus registry and can be dumped with WriteMetrics.
package engine
