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

package defaults

// Search defaults applied when a flag or config field is not supplied.
const (
	// DefaultMaxValue is the largest value kept when none is requested.
	DefaultMaxValue int64 = 9999

	// DefaultMaxCost is the default cost ceiling.
	DefaultMaxCost = 2

	// DefaultMaxSteps is the default number of generations.
	DefaultMaxSteps = 5

	// DefaultCompareWorkers bounds concurrent runs in the compare command.
	DefaultCompareWorkers = 4
)

// Server request limits.
const (
	// ServerPort is the default listen port of the solve API.
	ServerPort = 8080

	// ServerRateLimit is the sustained request rate per second.
	ServerRateLimit = 20

	// ServerRateLimitBurst is the token bucket size.
	ServerRateLimitBurst = 40

	// ServerMaxCost caps max_cost for a single API search; a generation
	// cannot be interrupted, so the solve timeout alone cannot bound it.
	ServerMaxCost = 6

	// ServerMaxBodyBytes caps request bodies accepted by the API.
	ServerMaxBodyBytes int64 = 8 << 20
)

// Search limits. Configurations outside these bounds are rejected before
// generation 0.
const (
	// MaxValueLimit is the upper bound for max_value.
	MaxValueLimit int64 = 1_000_000

	// MaxCostLimit is the upper bound for max_cost.
	MaxCostLimit = 30

	// MaxStepsLimit is the upper bound for max_steps.
	MaxStepsLimit = 100
)

// Operation domain guards.
const (
	// MaxFactorialOperand is the largest operand factorial is applied to.
	// 20! is the largest factorial that fits an int64.
	MaxFactorialOperand int64 = 20

	// MaxExponent is the largest exponent exponentiation is applied with.
	MaxExponent int64 = 40
)
