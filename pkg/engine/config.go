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

package engine

import (
	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/operation"
	"github.com/NVIDIA/onedigit/pkg/registry"
	"github.com/NVIDIA/onedigit/pkg/validation"
)

// Config holds the search parameters. The validate tags mirror the limits
// in pkg/defaults.
type Config struct {
	// Digit is the base digit, 1 through 9.
	Digit int `json:"digit" yaml:"digit" validate:"min=1,max=9"`

	// MaxValue is the largest value kept.
	MaxValue int64 `json:"max_value" yaml:"max_value" validate:"min=1,max=1000000"`

	// MaxCost is the largest number of digit occurrences kept.
	MaxCost int `json:"max_cost" yaml:"max_cost" validate:"min=1,max=30"`

	// MaxSteps is the number of generations to run. Zero loads and returns.
	MaxSteps int `json:"max_steps" yaml:"max_steps" validate:"min=0,max=100"`

	// Operations lists the enabled operation identifiers or aliases.
	Operations []string `json:"operations" yaml:"operations" validate:"required,min=1,dive,operation"`
}

// DefaultConfig returns the defaults with every operation enabled. Digit is
// left unset and must be supplied.
func DefaultConfig() Config {
	return Config{
		MaxValue:   defaults.DefaultMaxValue,
		MaxCost:    defaults.DefaultMaxCost,
		MaxSteps:   defaults.DefaultMaxSteps,
		Operations: operation.IDs(),
	}
}

// Validate reports the first parameter outside its bounds as an
// INVALID_CONFIG error.
func (c Config) Validate() error {
	return validation.Struct(c, errors.ErrCodeInvalidConfig, "invalid search configuration")
}

// Bounds returns the value and cost limits combos must satisfy.
func (c Config) Bounds() registry.Bounds {
	return registry.Bounds{MaxValue: c.MaxValue, MaxCost: c.MaxCost}
}

// Overrides is a partial Config, as read from a config file. Nil fields
// leave the base value alone, so an explicit zero is kept.
type Overrides struct {
	Digit      *int     `json:"digit,omitempty" yaml:"digit,omitempty"`
	MaxValue   *int64   `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	MaxCost    *int     `json:"max_cost,omitempty" yaml:"max_cost,omitempty"`
	MaxSteps   *int     `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	Operations []string `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// Merge returns c with every field set in o applied.
func (c Config) Merge(o Overrides) Config {
	if o.Digit != nil {
		c.Digit = *o.Digit
	}
	if o.MaxValue != nil {
		c.MaxValue = *o.MaxValue
	}
	if o.MaxCost != nil {
		c.MaxCost = *o.MaxCost
	}
	if o.MaxSteps != nil {
		c.MaxSteps = *o.MaxSteps
	}
	if len(o.Operations) > 0 {
		c.Operations = o.Operations
	}
	return c
}
