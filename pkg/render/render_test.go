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

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/onedigit/pkg/combo"
	"github.com/NVIDIA/onedigit/pkg/operation"
)

var (
	three   = combo.Seed(3)
	fact3   = combo.New(6, 1, "3!", "3!")
	nine    = combo.New(9, 2, "3! + 3", "6 + 3")
	sqrt9   = combo.New(3, 2, "√(3! + 3)", "√(9)")
	twelve  = combo.New(12, 2, "3! + 3!", "6 + 6")
	sqrtSum = combo.New(15, 4, "√(3! + 3) + √(3! + 3)", "3 + 3")
)

func TestUnary(t *testing.T) {
	tests := []struct {
		name       string
		op         operation.ID
		in         combo.Combo
		wantFull   string
		wantSimple string
	}{
		{"factorial of digit", operation.Factorial, three, "3!", "3!"},
		{"factorial of factorial", operation.Factorial, fact3, "(3!)!", "6!"},
		{"factorial of sum", operation.Factorial, nine, "(3! + 3)!", "9!"},
		{"factorial of sqrt group", operation.Factorial, sqrt9, "(√(3! + 3))!", "3!"},
		{"factorial of sqrt sum", operation.Factorial, sqrtSum, "(√(3! + 3) + √(3! + 3))!", "15!"},
		{"sqrt of sum", operation.Sqrt, nine, "√(3! + 3)", "√(9)"},
		{"sqrt of digit", operation.Sqrt, combo.Seed(9), "√(9)", "√(9)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, simple := Unary(tt.op, tt.in)
			assert.Equal(t, tt.wantFull, full)
			assert.Equal(t, tt.wantSimple, simple)
		})
	}
}

func TestBinary(t *testing.T) {
	tests := []struct {
		name       string
		op         operation.ID
		a, b       combo.Combo
		wantFull   string
		wantSimple string
	}{
		{"simple operands", operation.Add, fact3, three, "3! + 3", "6 + 3"},
		{"compound left", operation.Add, nine, fact3, "(3! + 3) + 3!", "9 + 6"},
		{"both compound", operation.Add, twelve, nine, "(3! + 3!) + (3! + 3)", "12 + 9"},
		{"sqrt operand not wrapped", operation.Multiply, sqrt9, three, "√(3! + 3) * 3", "3 * 3"},
		{"power", operation.Power, three, fact3, "3 ^ 3!", "3 ^ 6"},
		{"wrapped factorial operand", operation.Subtract, combo.New(479001600, 2, "(3! + 3!)!", "12!"), nine, "(3! + 3!)! - (3! + 3)", "479001600 - 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, simple := Binary(tt.op, tt.a, tt.b)
			assert.Equal(t, tt.wantFull, full)
			assert.Equal(t, tt.wantSimple, simple)
		})
	}
}
