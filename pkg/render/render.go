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

// Package render builds the two textual forms of a new combo from its
// operands: the full expression over the base digit and the simple form
// over the operand values.
package render

import (
	"strconv"

	"github.com/NVIDIA/onedigit/pkg/combo"
	"github.com/NVIDIA/onedigit/pkg/operation"
)

const sqrtSymbol = "√"

// Unary renders op applied to c.
func Unary(op operation.ID, c combo.Combo) (full, simple string) {
	value := strconv.FormatInt(c.Value, 10)
	switch op {
	case operation.Sqrt:
		return sqrtSymbol + "(" + c.ExprFull + ")", sqrtSymbol + "(" + value + ")"
	case operation.Factorial:
		return factorialOperand(c.ExprFull) + "!", value + "!"
	default:
		return string(op) + "(" + c.ExprFull + ")", string(op) + "(" + value + ")"
	}
}

// Binary renders a op b with compound operands wrapped in parentheses.
func Binary(op operation.ID, a, b combo.Combo) (full, simple string) {
	sym := " " + string(op) + " "
	full = operand(a.ExprFull) + sym + operand(b.ExprFull)
	simple = strconv.FormatInt(a.Value, 10) + sym + strconv.FormatInt(b.Value, 10)
	return full, simple
}

// operand wraps expressions with an infix operator outside parentheses.
func operand(expr string) string {
	depth := 0
	for _, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ' ':
			if depth == 0 {
				return "(" + expr + ")"
			}
		}
	}
	return expr
}

// factorialOperand wraps everything but a bare digit, so a repeated
// factorial renders as (3!)! and a square root as (√(9))!.
func factorialOperand(expr string) string {
	if isDigits(expr) {
		return expr
	}
	return "(" + expr + ")"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
