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

// Package header provides the common header embedded in onedigit documents.
//
// Snapshots and comparison reports carry a Kubernetes style header:
//
//	kind: Snapshot
//	apiVersion: onedigit.nvidia.com/v1alpha1
//	metadata:
//	  timestamp: "2025-01-15T10:30:00Z"
//	  version: v0.4.0
//	  run-id: 5f0c...
//
// The header is embedded inline so its fields appear at the top level of the
// document:
//
//	type Snapshot struct {
//	    header.Header `json:",inline" yaml:",inline"`
//	    Digit int `json:"digit" yaml:"digit"`
//	}
//
//	var s Snapshot
//	s.Init(header.KindSnapshot, APIVersion, version,
//	    header.WithMetadata(header.MetadataRunID, runID))
//
// Every header field is optional when a document is read back.
package header
