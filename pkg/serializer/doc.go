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

// Package serializer reads and writes onedigit documents in multiple formats.
//
// # Supported Formats
//
// JSON:
//   - Machine-parseable, the default for snapshots
//   - Standard encoding/json package
//
// YAML:
//   - Human-readable, suitable for config files and version control
//   - gopkg.in/yaml.v3 package
//
// Table:
//   - Column aligned text for terminals
//   - Only values implementing Tabular can be written
//   - Write only
//
// # Destinations
//
// NewFileWriter picks the destination from the path:
//
//	""  or "-"           stdout
//	cm://namespace/name  Kubernetes ConfigMap, created or updated with server-side apply
//	anything else        a local file
//
// # Sources
//
// FromFile decodes a document of any type from:
//
//	/path/model.json                    local file, format from the extension
//	https://example.com/model.yaml      HTTP(S) URL, read with HttpReader
//	cm://namespace/name                 ConfigMap data key
//
// Example:
//
//	snap, err := serializer.FromFile[snapshot.Snapshot](ctx, "cm://default/onedigit-3",
//	    serializer.WithKubeconfig(kubeconfig))
//
// ConfigMaps store the document under "<key>.<ext>" (key "snapshot" by
// default, see WithConfigMapKey) together with "format" and "timestamp"
// entries, and carry app.kubernetes.io labels for discovery.
//
// Failures are StructuredErrors: NOT_FOUND for missing files and ConfigMaps,
// INVALID_REQUEST for undecodable input and bad URIs, UNAVAILABLE when the
// cluster or URL cannot be reached.
package serializer
