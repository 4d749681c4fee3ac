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

package expr

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r >= '0' && r <= '9':
			start := i
			for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[start:i]), pos: start})
		case strings.ContainsRune("+-*/^!√", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case strings.HasPrefix(string(runes[i:]), "sqrt"):
			toks = append(toks, token{kind: tokOp, text: "√", pos: i})
			i += len("sqrt")
		default:
			return nil, syntaxError(s, i, fmt.Sprintf("unexpected character %q", r))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

// expr := term (("+" | "-") term)*
func (p *parser) expr() (*big.Int, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if left, err = p.apply(op, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// term := power (("*" | "/") power)*
func (p *parser) term() (*big.Int, error) {
	left, err := p.power()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") {
		op := p.next()
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		if left, err = p.apply(op, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// power := postfix ("^" power)?
func (p *parser) power() (*big.Int, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	op := p.next()
	exp, err := p.power()
	if err != nil {
		return nil, err
	}
	return p.apply(op, base, exp)
}

// postfix := prefix "!"*
func (p *parser) postfix() (*big.Int, error) {
	v, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for p.isOp("!") {
		op := p.next()
		if !v.IsInt64() || v.Int64() > defaults.MaxFactorialOperand {
			return nil, domainError(p.src, op, fmt.Sprintf("factorial operand %s exceeds %d", v, defaults.MaxFactorialOperand))
		}
		v = new(big.Int).MulRange(1, v.Int64())
	}
	return v, nil
}

// prefix := "√" prefix | primary
func (p *parser) prefix() (*big.Int, error) {
	if !p.isOp("√") {
		return p.primary()
	}
	op := p.next()
	v, err := p.prefix()
	if err != nil {
		return nil, err
	}
	r := new(big.Int).Sqrt(v)
	if new(big.Int).Mul(r, r).Cmp(v) != 0 {
		return nil, domainError(p.src, op, fmt.Sprintf("%s is not a perfect square", v))
	}
	return r, nil
}

// primary := number | "(" expr ")"
func (p *parser) primary() (*big.Int, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		if len(t.text) > 1 && t.text[0] == '0' {
			return nil, syntaxError(p.src, t.pos, "number with leading zero")
		}
		v, _ := new(big.Int).SetString(t.text, 10)
		return v, nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxError(p.src, closing.pos, "expected )")
		}
		return v, nil
	case tokEOF:
		return nil, syntaxError(p.src, t.pos, "unexpected end of expression")
	default:
		return nil, syntaxError(p.src, t.pos, fmt.Sprintf("unexpected %q", t.text))
	}
}

func (p *parser) apply(op token, a, b *big.Int) (*big.Int, error) {
	switch op.text {
	case "+":
		return new(big.Int).Add(a, b), nil
	case "-":
		if a.Cmp(b) <= 0 {
			return nil, domainError(p.src, op, fmt.Sprintf("%s - %s is not positive", a, b))
		}
		return new(big.Int).Sub(a, b), nil
	case "*":
		return new(big.Int).Mul(a, b), nil
	case "/":
		if b.Sign() == 0 {
			return nil, domainError(p.src, op, "division by zero")
		}
		q, m := new(big.Int).QuoRem(a, b, new(big.Int))
		if m.Sign() != 0 {
			return nil, domainError(p.src, op, fmt.Sprintf("%s / %s is not exact", a, b))
		}
		return q, nil
	case "^":
		if !b.IsInt64() || b.Int64() > defaults.MaxExponent {
			return nil, domainError(p.src, op, fmt.Sprintf("exponent %s exceeds %d", b, defaults.MaxExponent))
		}
		return new(big.Int).Exp(a, b, nil), nil
	default:
		return nil, syntaxError(p.src, op.pos, fmt.Sprintf("unknown operator %q", op.text))
	}
}

// Eval parses and evaluates an expression under the catalog semantics.
// Intermediate results are exact; any step outside an operation's domain
// is an error.
func Eval(s string) (*big.Int, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{src: s, toks: toks}
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxError(s, t.pos, fmt.Sprintf("unexpected %q", t.text))
	}
	return v, nil
}

// CountDigit returns how many times digit occurs in s and whether any other
// digit occurs.
func CountDigit(s string, digit int) (count int, foreign bool) {
	want := rune('0' + digit)
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if r == want {
			count++
		} else {
			foreign = true
		}
	}
	return count, foreign
}

// Check verifies that full evaluates to value and uses digit exactly cost
// times and no other digit.
func Check(full string, digit int, value int64, cost int) error {
	ctx := map[string]any{"expr_full": full, "value": value}

	got, err := Eval(full)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidSnapshot, "expression does not evaluate", err, ctx)
	}
	if got.Cmp(big.NewInt(value)) != 0 {
		ctx["evaluated"] = got.String()
		return errors.NewWithContext(errors.ErrCodeInvalidSnapshot,
			fmt.Sprintf("expression evaluates to %s, want %d", got, value), ctx)
	}

	count, foreign := CountDigit(full, digit)
	if foreign {
		return errors.NewWithContext(errors.ErrCodeInvalidSnapshot,
			fmt.Sprintf("expression uses digits other than %d", digit), ctx)
	}
	if count != cost {
		ctx["digits"] = count
		return errors.NewWithContext(errors.ErrCodeInvalidSnapshot,
			fmt.Sprintf("expression uses %d digits, cost is %d", count, cost), ctx)
	}
	return nil
}

func syntaxError(src string, pos int, msg string) error {
	return errors.NewWithContext(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("syntax error at %d: %s", pos, msg),
		map[string]any{"expression": src, "position": pos})
}

func domainError(src string, op token, msg string) error {
	return errors.NewWithContext(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("%s at %d", msg, op.pos),
		map[string]any{"expression": src, "operator": op.text, "position": op.pos})
}
