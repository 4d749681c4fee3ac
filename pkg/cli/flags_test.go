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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/combo"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantText   bool
		wantErr    bool
	}{
		{name: "text", format: "text", wantText: true},
		{name: "text upper case", format: "TEXT", wantText: true},
		{name: "yaml", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "json", format: "json", wantFormat: serializer.FormatJSON},
		{name: "table", format: "table", wantFormat: serializer.FormatTable},
		{name: "xml", format: "xml", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					format, text, err := outputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					require.NoError(t, err)
					assert.Equal(t, tt.wantFormat, format)
					assert.Equal(t, tt.wantText, text)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func TestParseDigit(t *testing.T) {
	for _, s := range []string{"1", "5", " 9 "} {
		_, err := parseDigit(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"0", "10", "-3", "three", ""} {
		_, err := parseDigit(s)
		assert.Error(t, err, s)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"+", "-", "!", "sqrt"}, splitList([]string{"+, -", "!", " ", "sqrt,"}))
	assert.Empty(t, splitList(nil))
}

func TestPrintCombos(t *testing.T) {
	combos := []combo.Combo{
		combo.New(3, 1, "3", "3"),
		combo.New(12, 2, "3! + 3!", "6 + 6"),
	}

	var buf bytes.Buffer
	require.NoError(t, printCombos(&buf, combos, false))
	assert.Equal(t, "   3 = 3                 [  1]\n  12 = 6 + 6             [  2]\n", buf.String())

	buf.Reset()
	require.NoError(t, printCombos(&buf, combos[1:], true))
	assert.Contains(t, buf.String(), "  12 = 3! + 3!  ")
}

func TestListingTable(t *testing.T) {
	l := listing{combos: []combo.Combo{combo.New(6, 1, "3!", "3!"), combo.New(9, 2, "3! + 3", "6 + 3")}}
	assert.Equal(t, []string{"VALUE", "COST", "EXPRESSION"}, l.TableColumns())
	assert.Equal(t, [][]string{{"6", "1", "3!"}, {"9", "2", "6 + 3"}}, l.TableRows())

	l.full = true
	assert.Equal(t, "3! + 3", l.TableRows()[1][2])
}
