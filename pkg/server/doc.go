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

// Package server serves the onedigit search over HTTP.
//
// The server is stateless: every request runs its own engine with its own
// registry, so concurrent requests never share search state.
//
// # Endpoints
//
//	GET  /v1/solve    run a search from query parameters
//	POST /v1/solve    run a search from a JSON or YAML SolveRequest body,
//	                  optionally resuming from the snapshot in "prior"
//	POST /v1/verify   re-evaluate every expression of a posted snapshot
//	GET  /health      liveness
//	GET  /ready       readiness, false before Start and during shutdown
//	GET  /metrics     Prometheus exposition, HTTP and engine metrics
//
// Query parameters of GET /v1/solve are digit, max_value, max_cost,
// max_steps, operations (comma separated or repeated) and format (json or
// yaml). Omitted fields take the server's search defaults. A literal + in a
// query string decodes to a space, so addition must be sent as %2B:
//
//	curl "http://localhost:8080/v1/solve?digit=3&max_cost=4&operations=%2B,-,!"
//
// The response is the snapshot document the solve command writes; its
// run-id metadata equals the X-Request-Id response header.
//
// # Middleware
//
// API routes pass through metrics, API version negotiation, request ID,
// panic recovery, token bucket rate limiting (golang.org/x/time/rate) and
// request logging. Errors are ErrorResponse bodies whose code is the
// pkg/errors code of the failure; INVALID_* codes map to 400, TIMEOUT to
// 504 and UNAVAILABLE to 503.
//
// # Limits
//
// Each search is bounded by the solve timeout. The engine checks its
// context between generations only, so max_cost is additionally capped by
// the server (defaults.ServerMaxCost).
//
// # Usage
//
//	s := server.New(
//	    server.WithVersion(version),
//	    server.WithPort(8080),
//	    server.WithSearchDefaults(engine.DefaultConfig()),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
package server
