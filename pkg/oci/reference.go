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
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

// URIScheme is the prefix of OCI publish targets.
const URIScheme = "oci://"

// Reference is a parsed OCI publish target.
type Reference struct {
	// Registry is the registry host, e.g. "ghcr.io" or "localhost:5000".
	Registry string
	// Repository is the repository path, e.g. "nvidia/onedigit-snapshots".
	Repository string
	// Tag is the tag the artifact is pushed under.
	Tag string
}

// IsOCIURI reports whether target uses the oci:// scheme.
func IsOCIURI(target string) bool {
	return strings.HasPrefix(target, URIScheme)
}

// ParseReference parses "oci://registry/repository:tag". The tag is
// required; digests are not accepted since the artifact does not exist yet.
func ParseReference(target string) (*Reference, error) {
	if !IsOCIURI(target) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"publish target must start with "+URIScheme, map[string]any{"target": target})
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid OCI reference", err,
			map[string]any{"target": target})
	}
	if _, ok := ref.(reference.Digested); ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"digest references cannot be published to", map[string]any{"target": target})
	}

	tagged, ok := ref.(reference.Tagged)
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"tag is required for OCI publishing", map[string]any{"target": target})
	}

	r := &Reference{
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
		Tag:        tagged.Tag(),
	}
	if err := ValidateRegistryReference(r.Registry, r.Repository); err != nil {
		return nil, err
	}
	return r, nil
}

// ValidateRegistryReference checks that registry and repository form a
// valid image name. A leading http:// or https:// on registry is ignored.
func ValidateRegistryReference(registry, repository string) error {
	name := fmt.Sprintf("%s/%s", stripProtocol(registry), repository)
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid registry reference", err,
			map[string]any{"registry": registry, "repository": repository})
	}
	return nil
}

// String returns the reference with the oci:// scheme.
func (r *Reference) String() string {
	return URIScheme + r.ImageReference()
}

// ImageReference returns the reference without the scheme.
func (r *Reference) ImageReference() string {
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with the given tag.
func (r *Reference) WithTag(tag string) *Reference {
	c := *r
	c.Tag = tag
	return &c
}

func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}
