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

// Package errors provides structured error types for onedigit.
//
// A StructuredError carries a machine readable code, a human readable
// message, an optional wrapped cause and optional key/value context:
//
//	if cfg.Digit < 1 {
//	    return errors.NewWithContext(errors.ErrCodeInvalidConfig,
//	        "digit out of range", map[string]any{"digit": cfg.Digit})
//	}
//
// Wrapped errors keep working with the standard library:
//
//	err := errors.Wrap(errors.ErrCodeInvalidSnapshot, "failed to read snapshot", ioErr)
//	stderrors.Is(err, ioErr) // true
//
// Codes used across the tool:
//   - INVALID_CONFIG: search parameters outside their bounds or unknown operations
//   - INVALID_SNAPSHOT: a persisted snapshot that fails to parse or validate
//   - INVALID_REQUEST: malformed command input (bad URI, bad format)
//   - NOT_FOUND: missing file, ConfigMap or key
//   - INTERNAL: unexpected failures
//   - UNAVAILABLE: cluster or registry not reachable
//   - TIMEOUT: an operation exceeded its deadline
//
// Candidate expressions rejected during search are never reported as errors.
package errors
