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

// Package oci publishes snapshot files to OCI-compliant registries.
//
// Snapshots are stored as OCI 1.1 artifacts using ORAS (OCI Registry As
// Storage). Each file becomes one layer, typed by its extension:
//
//	application/vnd.nvidia.onedigit.snapshot.v1+json
//	application/vnd.nvidia.onedigit.snapshot.v1+yaml
//
// and the manifest carries the artifact type
// "application/vnd.nvidia.onedigit.snapshot", so registries and clients do
// not mistake it for a runnable image.
//
// # Usage
//
// Package and push in two steps:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/nvidia/onedigit-snapshots:digit-3")
//	if err != nil {
//	    return err
//	}
//	pkg, err := oci.Package(ctx, oci.PackageOptions{
//	    Files:     []string{"model.json"},
//	    OutputDir: "/tmp/layout",
//	    Reference: ref,
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := oci.PushFromStore(ctx, pkg.StorePath, oci.PushOptions{Reference: ref})
//
// or in one with Publish, which uses a temporary layout.
//
// # Authentication
//
// Credentials come from the Docker configuration (~/.docker/config.json)
// and its credential helpers through the ORAS credentials package.
// PlainHTTP and InsecureTLS exist for local development registries.
package oci
