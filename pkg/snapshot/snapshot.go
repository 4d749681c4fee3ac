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

package snapshot

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/NVIDIA/onedigit/pkg/combo"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/header"
	"github.com/NVIDIA/onedigit/pkg/registry"
	"github.com/NVIDIA/onedigit/pkg/serializer"
	"github.com/NVIDIA/onedigit/pkg/validation"
)

// APIVersion is the schema version written into new snapshots.
const APIVersion = "onedigit.nvidia.com/v1alpha1"

// Snapshot is the persisted form of a registry.
type Snapshot struct {
	header.Header `json:",inline" yaml:",inline"`

	// Digit is the base digit every expression is built from.
	Digit int `json:"digit" yaml:"digit" validate:"min=1,max=9"`

	// MaxValue and MaxCost are the bounds the combinations were found under.
	MaxValue int64 `json:"max_value" yaml:"max_value" validate:"gt=0"`
	MaxCost  int   `json:"max_cost" yaml:"max_cost" validate:"gt=0"`

	// Combinations holds the best combo per value in discovery order.
	Combinations []combo.Combo `json:"combinations" yaml:"combinations" validate:"required,dive"`
}

// Params describes the run a snapshot is built from.
type Params struct {
	Digit      int
	MaxValue   int64
	MaxCost    int
	MaxSteps   int
	Operations []string
	RunID      string
	StopReason string
	Version    string
}

// New builds a snapshot of reg in discovery order.
func New(reg *registry.Registry, p Params) *Snapshot {
	s := &Snapshot{
		Digit:        p.Digit,
		MaxValue:     p.MaxValue,
		MaxCost:      p.MaxCost,
		Combinations: reg.Snapshot(),
	}

	opts := []header.Option{
		header.WithMetadata(header.MetadataMaxSteps, strconv.Itoa(p.MaxSteps)),
	}
	if len(p.Operations) > 0 {
		opts = append(opts, header.WithMetadata(header.MetadataOperations, strings.Join(p.Operations, ",")))
	}
	if p.RunID != "" {
		opts = append(opts, header.WithMetadata(header.MetadataRunID, p.RunID))
	}
	if p.StopReason != "" {
		opts = append(opts, header.WithMetadata(header.MetadataStopReason, p.StopReason))
	}
	s.Init(header.KindSnapshot, APIVersion, p.Version, opts...)
	return s
}

// Validate checks the numeric fields and that every combination has
// positive value and cost and both expressions. Expressions are not
// evaluated.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot is empty")
	}
	if s.Kind != "" && s.Kind != header.KindSnapshot {
		return errors.NewWithContext(errors.ErrCodeInvalidSnapshot, "document is not a snapshot",
			map[string]any{"kind": s.Kind})
	}
	return validation.Struct(s, errors.ErrCodeInvalidSnapshot, "invalid snapshot")
}

// Load reads and validates a snapshot from a file, an http(s) URL or a
// cm://namespace/name ConfigMap.
func Load(ctx context.Context, path string, opts ...serializer.Option) (*Snapshot, error) {
	s, err := serializer.FromFile[Snapshot](ctx, path, opts...)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidSnapshot, "failed to load snapshot", err,
			map[string]any{"path": path})
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry rebuilds a registry holding the snapshot's combinations.
// Combinations outside the snapshot's own bounds are skipped.
func (s *Snapshot) Registry() *registry.Registry {
	reg := registry.New(s.Digit)
	reg.Load(s.Combinations, registry.Bounds{MaxValue: s.MaxValue, MaxCost: s.MaxCost})
	return reg
}

// Sorted returns the combinations ordered by value.
func (s *Snapshot) Sorted() []combo.Combo {
	out := slices.Clone(s.Combinations)
	slices.SortStableFunc(out, func(a, b combo.Combo) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	})
	return out
}

// TableColumns implements serializer.Tabular.
func (s *Snapshot) TableColumns() []string {
	return []string{"VALUE", "COST", "EXPRESSION"}
}

// TableRows lists the combinations by value with their full expressions.
func (s *Snapshot) TableRows() [][]string {
	sorted := s.Sorted()
	rows := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, []string{strconv.FormatInt(c.Value, 10), strconv.Itoa(c.Cost), c.ExprFull})
	}
	return rows
}

// Filter selects combinations for display.
type Filter struct {
	MinValue int64
	MaxValue int64
	MaxCost  int
}

// Match reports whether c passes the filter. Zero fields do not filter.
func (f Filter) Match(c combo.Combo) bool {
	if f.MinValue > 0 && c.Value < f.MinValue {
		return false
	}
	if f.MaxValue > 0 && c.Value > f.MaxValue {
		return false
	}
	if f.MaxCost > 0 && c.Cost > f.MaxCost {
		return false
	}
	return true
}

// Select returns the sorted combinations that pass f.
func (s *Snapshot) Select(f Filter) []combo.Combo {
	var out []combo.Combo
	for _, c := range s.Sorted() {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}
