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

// Package api runs the onedigit solve API as a standalone daemon.
//
// Serve configures structured logging and starts pkg/server with every
// setting taken from the environment, which suits container deployment
// where flags are awkward. The onedigit serve command exposes the same
// server with flags.
//
// # Endpoints
//
// Application endpoints (with rate limiting):
//   - GET /v1/solve   - search with query parameters
//   - POST /v1/solve  - search from a JSON or YAML body, optionally resuming a prior snapshot
//   - POST /v1/verify - verify a posted snapshot
//
// System endpoints (no rate limiting):
//   - GET /health  - liveness probe
//   - GET /ready   - readiness probe
//   - GET /metrics - Prometheus metrics
//
// # Configuration
//
//   - PORT: HTTP server port (default: 8080)
//   - SHUTDOWN_TIMEOUT_SECONDS: graceful shutdown bound (default: 30)
//   - LOG_LEVEL: debug, info, warn or error
//   - ONEDIGIT_RATE_LIMIT: sustained requests per second
//   - ONEDIGIT_RATE_BURST: rate limiter burst
//   - ONEDIGIT_COST_LIMIT: largest max_cost a request may ask for
//   - ONEDIGIT_SOLVE_TIMEOUT: per request search bound, e.g. 20s
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/onedigit/pkg/api.version=1.0.0'"
package api
