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

package operation

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
	"strings"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
)

// ID identifies a catalog operation.
type ID string

// Catalog identifiers.
const (
	Add       ID = "+"
	Subtract  ID = "-"
	Multiply  ID = "*"
	Divide    ID = "/"
	Power     ID = "^"
	Sqrt      ID = "sqrt"
	Factorial ID = "!"
)

// Arity is the number of operands an operation consumes.
type Arity int

const (
	Unary  Arity = 1
	Binary Arity = 2
)

// String implements fmt.Stringer.
func (a Arity) String() string {
	switch a {
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("arity(%d)", int(a))
	}
}

// Operator is the common surface of unary and binary operations.
type Operator interface {
	ID() ID
	Name() string
	Arity() Arity
	// Symbol is the token used when rendering and parsing expressions.
	Symbol() string
}

// UnaryOperator transforms a single operand. ok is false when the operand
// is outside the operation's domain.
type UnaryOperator interface {
	Operator
	ApplyUnary(v int64) (result int64, ok bool)
}

// BinaryOperator combines two operands. ok is false when the pair is
// outside the operation's domain or the result overflows.
type BinaryOperator interface {
	Operator
	ApplyBinary(a, b int64) (result int64, ok bool)
	// Ordered reports whether only the (larger, smaller) operand order is
	// generated. Unordered operations are tried in both orders.
	Ordered() bool
}

type unary struct {
	id     ID
	name   string
	symbol string
	apply  func(int64) (int64, bool)
}

func (u *unary) ID() ID { return u.id }
func (u *unary) Name() string { return u.name }
func (u *unary) Arity() Arity { return Unary }
func (u *unary) Symbol() string { return u.symbol }
func (u *unary) ApplyUnary(v int64) (int64, bool) { return u.apply(v) }
func (u *unary) String() string { return string(u.id) }

type binary struct {
	id      ID
	name    string
	symbol  string
	ordered bool
	apply   func(a, b int64) (int64, bool)
}

func (b *binary) ID() ID { return b.id }
func (b *binary) Name() string { return b.name }
func (b *binary) Arity() Arity { return Binary }
func (b *binary) Symbol() string { return b.symbol }
func (b *binary) Ordered() bool { return b.ordered }
func (b *binary) ApplyBinary(x, y int64) (int64, bool) { return b.apply(x, y) }
func (b *binary) String() string { return string(b.id) }

// catalog lists every operation in generation order: unary first, then binary.
var catalog = []Operator{
	&unary{id: Factorial, name: "factorial", symbol: "!", apply: factorial},
	&unary{id: Sqrt, name: "square root", symbol: "√", apply: sqrt},
	&binary{id: Add, name: "addition", symbol: "+", ordered: true, apply: add},
	&binary{id: Subtract, name: "subtraction", symbol: "-", ordered: true, apply: subtract},
	&binary{id: Multiply, name: "multiplication", symbol: "*", ordered: true, apply: multiply},
	&binary{id: Divide, name: "division", symbol: "/", ordered: true, apply: divide},
	&binary{id: Power, name: "exponentiation", symbol: "^", ordered: false, apply: power},
}

var aliases = map[string]ID{
	"x":    Multiply,
	"**":   Power,
	"fact": Factorial,
	"√":    Sqrt,
}

// All returns the full catalog in generation order.
func All() []Operator {
	out := make([]Operator, len(catalog))
	copy(out, catalog)
	return out
}

// IDs returns the identifiers of the full catalog in generation order.
func IDs() []string {
	out := make([]string, 0, len(catalog))
	for _, op := range catalog {
		out = append(out, string(op.ID()))
	}
	return out
}

// Aliases returns the accepted alternative spellings of id, sorted.
func Aliases(id ID) []string {
	var out []string
	for alias, target := range aliases {
		if target == id {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// Lookup resolves an identifier or alias to its operator.
func Lookup(id string) (Operator, bool) {
	id = strings.TrimSpace(id)
	if canonical, ok := aliases[strings.ToLower(id)]; ok {
		id = string(canonical)
	}
	for _, op := range catalog {
		if string(op.ID()) == id {
			return op, true
		}
	}
	return nil, false
}

func add(a, b int64) (int64, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 || sum > math.MaxInt64 {
		return 0, false
	}
	return int64(sum), true
}

func subtract(a, b int64) (int64, bool) {
	if a <= b {
		return 0, false
	}
	return a - b, true
}

func multiply(a, b int64) (int64, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func divide(a, b int64) (int64, bool) {
	if b == 0 || a%b != 0 {
		return 0, false
	}
	q := a / b
	if q <= 0 {
		return 0, false
	}
	return q, true
}

func power(base, exp int64) (int64, bool) {
	if exp > defaults.MaxExponent {
		return 0, false
	}
	result := int64(1)
	for range exp {
		next, ok := multiply(result, base)
		if !ok {
			return 0, false
		}
		result = next
	}
	return result, true
}

func factorial(v int64) (int64, bool) {
	if v > defaults.MaxFactorialOperand {
		return 0, false
	}
	result := int64(1)
	for i := int64(2); i <= v; i++ {
		result *= i
	}
	return result, true
}

// sqrt accepts perfect squares only.
func sqrt(v int64) (int64, bool) {
	r := ISqrt(v)
	if r*r != v {
		return 0, false
	}
	return r, true
}

// ISqrt returns floor(sqrt(v)) for v >= 0.
func ISqrt(v int64) int64 {
	if v < 2 {
		return v
	}
	r := int64(math.Sqrt(float64(v)))
	for r > v/r {
		r--
	}
	for r+1 <= v/(r+1) {
		r++
	}
	return r
}

// Set is a validated, de-duplicated selection of operations in catalog order.
type Set struct {
	unary  []UnaryOperator
	binary []BinaryOperator
}

// Parse validates identifiers and returns them as a Set in catalog order.
// Duplicates are ignored; unknown identifiers fail with INVALID_CONFIG.
func Parse(ids []string) (Set, error) {
	if len(ids) == 0 {
		return Set{}, errors.New(errors.ErrCodeInvalidConfig, "at least one operation is required")
	}

	selected := make(map[ID]bool, len(ids))
	for _, raw := range ids {
		op, ok := Lookup(raw)
		if !ok {
			return Set{}, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("unknown operation %q", raw),
				map[string]any{"operation": raw, "known": IDs()})
		}
		selected[op.ID()] = true
	}

	var s Set
	for _, op := range catalog {
		if !selected[op.ID()] {
			continue
		}
		switch o := op.(type) {
		case UnaryOperator:
			s.unary = append(s.unary, o)
		case BinaryOperator:
			s.binary = append(s.binary, o)
		}
	}
	return s, nil
}

// Unary returns the selected unary operations in catalog order.
func (s Set) Unary() []UnaryOperator { return s.unary }

// Binary returns the selected binary operations in catalog order.
func (s Set) Binary() []BinaryOperator { return s.binary }

// IDs returns the selected identifiers in catalog order.
func (s Set) IDs() []string {
	out := make([]string, 0, len(s.unary)+len(s.binary))
	for _, op := range s.unary {
		out = append(out, string(op.ID()))
	}
	for _, op := range s.binary {
		out = append(out, string(op.ID()))
	}
	return out
}

// Has reports whether id is part of the set.
func (s Set) Has(id ID) bool {
	for _, op := range s.unary {
		if op.ID() == id {
			return true
		}
	}
	for _, op := range s.binary {
		if op.ID() == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected operations.
func (s Set) Len() int { return len(s.unary) + len(s.binary) }
