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

// Package combo defines the best known expression record for a value.
package combo

import (
	"fmt"
	"strconv"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/validation"
)

// Combo is an expression built from a single repeated digit together with
// its value and the number of digit occurrences it uses. A Combo is never
// mutated after it is built.
type Combo struct {
	// Value is the integer the expression evaluates to.
	Value int64 `json:"value" yaml:"value" validate:"gt=0"`

	// Cost is the number of base digit occurrences in ExprFull.
	Cost int `json:"cost" yaml:"cost" validate:"gt=0"`

	// ExprSimple shows the operation applied to the operand values.
	ExprSimple string `json:"expr_simple" yaml:"expr_simple" validate:"required"`

	// ExprFull is the complete expression using only the base digit.
	ExprFull string `json:"expr_full" yaml:"expr_full" validate:"required"`
}

// Seed returns the generation 0 combo for digit: the digit itself at cost 1.
func Seed(digit int) Combo {
	s := strconv.Itoa(digit)
	return Combo{
		Value:      int64(digit),
		Cost:       1,
		ExprSimple: s,
		ExprFull:   s,
	}
}

// New builds a combo from rendered parts.
func New(value int64, cost int, full, simple string) Combo {
	return Combo{
		Value:      value,
		Cost:       cost,
		ExprSimple: simple,
		ExprFull:   full,
	}
}

// Validate reports a non-positive value or cost, or a missing expression.
func (c Combo) Validate() error {
	return validation.Struct(c, errors.ErrCodeInvalidSnapshot, "invalid combination")
}

// String renders the combo as "value = simple    [cost]".
func (c Combo) String() string {
	return fmt.Sprintf("%d = %s    [%d]", c.Value, c.ExprSimple, c.Cost)
}
