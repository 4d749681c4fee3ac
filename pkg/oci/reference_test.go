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

package oci

import (
	"testing"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		registry   string
		repository string
		tag        string
		wantErr    bool
	}{
		{
			name:       "ghcr with tag",
			target:     "oci://ghcr.io/nvidia/onedigit-snapshots:digit-3",
			registry:   "ghcr.io",
			repository: "nvidia/onedigit-snapshots",
			tag:        "digit-3",
		},
		{
			name:       "localhost with port",
			target:     "oci://localhost:5000/test/snapshots:v1",
			registry:   "localhost:5000",
			repository: "test/snapshots",
			tag:        "v1",
		},
		{
			name:       "docker hub short name",
			target:     "oci://nvidia/snapshots:latest",
			registry:   "docker.io",
			repository: "nvidia/snapshots",
			tag:        "latest",
		},
		{name: "missing scheme", target: "ghcr.io/nvidia/snapshots:v1", wantErr: true},
		{name: "missing tag", target: "oci://ghcr.io/nvidia/snapshots", wantErr: true},
		{name: "uppercase repository", target: "oci://ghcr.io/NVIDIA/Snapshots:v1", wantErr: true},
		{
			name:    "digest",
			target:  "oci://ghcr.io/nvidia/snapshots@sha256:" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseReference(tt.target)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseReference(%q) expected error, got %+v", tt.target, ref)
				}
				if code := errors.CodeOf(err); code != errors.ErrCodeInvalidRequest {
					t.Errorf("ParseReference(%q) code = %s, want %s", tt.target, code, errors.ErrCodeInvalidRequest)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReference(%q) unexpected error: %v", tt.target, err)
			}
			if ref.Registry != tt.registry {
				t.Errorf("Registry = %q, want %q", ref.Registry, tt.registry)
			}
			if ref.Repository != tt.repository {
				t.Errorf("Repository = %q, want %q", ref.Repository, tt.repository)
			}
			if ref.Tag != tt.tag {
				t.Errorf("Tag = %q, want %q", ref.Tag, tt.tag)
			}
		})
	}
}

func TestReferenceStrings(t *testing.T) {
	ref := &Reference{Registry: "ghcr.io", Repository: "nvidia/snapshots", Tag: "v1"}

	if got := ref.String(); got != "oci://ghcr.io/nvidia/snapshots:v1" {
		t.Errorf("String() = %q", got)
	}
	if got := ref.ImageReference(); got != "ghcr.io/nvidia/snapshots:v1" {
		t.Errorf("ImageReference() = %q", got)
	}

	other := ref.WithTag("v2")
	if other.Tag != "v2" || ref.Tag != "v1" {
		t.Errorf("WithTag() changed the original or did not set the tag: %+v %+v", ref, other)
	}
}

func TestValidateRegistryReference(t *testing.T) {
	tests := []struct {
		name       string
		registry   string
		repository string
		wantErr    bool
	}{
		{"valid ghcr.io", "ghcr.io", "nvidia/onedigit", false},
		{"valid localhost with port", "localhost:5000", "test/repo", false},
		{"valid with https prefix", "https://ghcr.io", "nvidia/onedigit", false},
		{"invalid registry with spaces", "invalid registry", "test/repo", true},
		{"invalid repository with uppercase", "ghcr.io", "NVIDIA/OneDigit", true},
		{"invalid repository with special chars", "ghcr.io", "test/repo@latest", true},
		{"valid nested repository", "registry.example.com:5000", "org/team/project", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistryReference(tt.registry, tt.repository)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegistryReference() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
