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

// Package snapshot defines the persisted registry document.
//
// A snapshot stores the best known combination for every value found for
// one digit, together with the bounds of the run that produced them:
//
//	{
//	  "kind": "Snapshot",
//	  "apiVersion": "onedigit.nvidia.com/v1alpha1",
//	  "metadata": {"timestamp": "...", "run-id": "...", "max-steps": "5"},
//	  "digit": 3,
//	  "max_value": 9999,
//	  "max_cost": 2,
//	  "combinations": [
//	    {"value": 3, "cost": 1, "expr_simple": "3", "expr_full": "3"},
//	    {"value": 6, "cost": 1, "expr_simple": "3!", "expr_full": "3!"}
//	  ]
//	}
//
// The header fields are optional on load. Numeric fields must be positive
// and every combination needs both expressions; expressions themselves are
// trusted and not re-evaluated. Use the verify command to check them.
package snapshot
