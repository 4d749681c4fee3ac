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

// Package defaults provides centralized configuration constants for onedigit.
//
// It holds the search defaults and limits (max_value, max_cost, max_steps),
// the operation domain guards (factorial operand, exponent), the solve API
// limits and the timeouts used by the server, storage and publishing layers.
//
// # Usage
//
//	import "github.com/NVIDIA/onedigit/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
//	defer cancel()
//
// Limits are enforced by engine.Config validation; changing them here changes
// what the CLI accepts.
package defaults
