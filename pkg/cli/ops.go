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

package cli

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/onedigit/pkg/operation"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

type opInfo struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Symbol  string   `json:"symbol" yaml:"symbol"`
	Arity   string   `json:"arity" yaml:"arity"`
	Ordered bool     `json:"ordered" yaml:"ordered"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

type opTable []opInfo

func (t opTable) TableColumns() []string {
	return []string{"ID", "NAME", "SYMBOL", "ARITY", "OPERAND ORDER", "ALIASES"}
}

func (t opTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, op := range t {
		order := "both"
		if op.Ordered {
			order = "larger first"
		}
		if op.Arity == operation.Unary.String() {
			order = "-"
		}
		rows = append(rows, []string{op.ID, op.Name, op.Symbol, op.Arity, order, strings.Join(op.Aliases, " ")})
	}
	return rows
}

func catalog() opTable {
	title := cases.Title(language.English)
	var out opTable
	for _, op := range operation.All() {
		info := opInfo{
			ID:      string(op.ID()),
			Name:    title.String(op.Name()),
			Symbol:  op.Symbol(),
			Arity:   op.Arity().String(),
			Aliases: operation.Aliases(op.ID()),
		}
		if b, ok := op.(operation.BinaryOperator); ok {
			info.Ordered = b.Ordered()
		}
		out = append(out, info)
	}
	return out
}

func opsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "ops",
		EnableShellCompletion: true,
		Usage:                 "List the available operations",
		Description: `List every operation in the order searches apply them. Identifiers and
aliases are accepted by --operations.`,
		Flags: []cli.Flag{
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, text, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			if text {
				format = serializer.FormatTable
			}
			return serializer.NewWriter(format, stdout(cmd)).Serialize(ctx, catalog())
		},
	}
}
