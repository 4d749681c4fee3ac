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

// Package cli implements the onedigit command line interface.
//
// # Commands
//
// solve - Search for the cheapest expression of every value:
//
//	onedigit solve --operations +,-,! --max-value 100 --max-cost 4 --max-steps 3 3
//
// Runs the generation search for one digit, prints the best expression per
// value sorted by value and saves a snapshot (model.<timestamp>.json unless
// --output or --no-save is given). --input resumes from a stored snapshot.
// --deploy-agent runs the same search as a Kubernetes Job and reads its
// snapshot back from a ConfigMap.
//
// show - Print a stored snapshot:
//
//	onedigit show --min-value 10 --max-value 20 model.json
//
// verify - Re-evaluate every expression in a snapshot:
//
//	onedigit verify model.json
//
// compare - Search several digits concurrently:
//
//	onedigit compare --digits 2,3,4 --max-value 50
//
// ops - List the operation catalog.
//
// publish - Push snapshots to an OCI registry:
//
//	onedigit publish --to oci://ghcr.io/nvidia/onedigit-snapshots:digit-3 model.json
//
// serve - Serve the solve API over HTTP:
//
//	onedigit serve --port 8080 --cost-limit 6
//
// # Inputs and Outputs
//
// Snapshots are read from file paths, HTTP/HTTPS URLs or ConfigMap URIs
// (cm://namespace/name) and written to files or ConfigMaps. The --format
// flag selects the terminal listing (text, the default) or json, yaml and
// table output.
//
// # Configuration
//
// Search settings come from defaults, then an optional --config file, then
// flags. Every search flag has an ONEDIGIT_* environment variable; the log
// level reads LOG_LEVEL.
package cli
