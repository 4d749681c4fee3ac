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

// Package version parses onedigit release versions and orders them.
//
// Release builds carry a version such as "v0.4.2" or "v0.5.0-rc.1" in the
// metadata of every document they write. Development builds carry "dev",
// which does not parse and is never compared.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

// Version is a release version. Extras holds any pre-release or build
// suffix, including its leading '-' or '+'.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Extras string
}

// New returns the version major.minor.patch.
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// String returns the version with a "v" prefix and its extras.
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Extras)
}

// Parse reads "1", "1.2", "1.2.3", with an optional "v" prefix and a
// "-suffix" or "+metadata" tail. Missing components are zero.
func Parse(s string) (Version, error) {
	raw := s
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return Version{}, errors.New(errors.ErrCodeInvalidRequest, "version string is empty")
	}

	var v Version
	main := s
	if i := strings.IndexAny(s, "-+"); i > 0 {
		main, v.Extras = s[:i], s[i:]
	}

	parts := strings.Split(main, ".")
	if len(parts) > 3 {
		return Version{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"version has more than 3 components", map[string]any{"version": raw})
	}

	fields := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || strings.HasPrefix(part, "+") {
			return Version{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("version component %q is not a non-negative number", part),
				map[string]any{"version": raw})
		}
		*fields[i] = n
	}
	return v, nil
}

// MustParse is Parse for literals; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("MustParse: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than
// other. A pre-release is older than the release it precedes; build
// metadata is ignored.
func (v Version) Compare(other Version) int {
	for _, d := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		switch {
		case d[0] < d[1]:
			return -1
		case d[0] > d[1]:
			return 1
		}
	}

	a, b := v.preRelease(), other.preRelease()
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// IsNewer reports whether v is strictly newer than other.
func (v Version) IsNewer(other Version) bool {
	return v.Compare(other) > 0
}

func (v Version) preRelease() string {
	pre, _, _ := strings.Cut(v.Extras, "+")
	return strings.TrimPrefix(pre, "-")
}

// NewerThanRunning reports whether written, the version recorded in a
// document, is newer than running, the version of this build. Versions
// that do not parse, such as development builds, are never newer.
func NewerThanRunning(written, running string) bool {
	w, err := Parse(written)
	if err != nil {
		return false
	}
	r, err := Parse(running)
	if err != nil {
		return false
	}
	return w.IsNewer(r)
}
