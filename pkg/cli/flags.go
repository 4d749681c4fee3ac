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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/combo"
	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/engine"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

// formatText is the terminal listing, the default for commands that print
// combinations.
const formatText = "text"

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("output format (%s)", strings.Join(append([]string{formatText}, serializer.SupportedFormats()...), ", ")),
		Value:   formatText,
		Sources: cli.EnvVars("ONEDIGIT_FORMAT"),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "path to kubeconfig for cm:// snapshots (default: KUBECONFIG or ~/.kube/config)",
	}
}

func fullFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "full",
		Usage: "print expressions in the base digit instead of intermediate values",
	}
}

// searchFlags are shared by the commands that run searches.
func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:    "max-value",
			Usage:   "largest value to keep",
			Value:   defaults.DefaultMaxValue,
			Sources: cli.EnvVars("ONEDIGIT_MAX_VALUE"),
		},
		&cli.IntFlag{
			Name:    "max-cost",
			Usage:   "largest number of digit occurrences to keep",
			Value:   defaults.DefaultMaxCost,
			Sources: cli.EnvVars("ONEDIGIT_MAX_COST"),
		},
		&cli.IntFlag{
			Name:    "max-steps",
			Aliases: []string{"s"},
			Usage:   "number of generations to run",
			Value:   defaults.DefaultMaxSteps,
			Sources: cli.EnvVars("ONEDIGIT_MAX_STEPS"),
		},
		&cli.StringSliceFlag{
			Name:    "operations",
			Aliases: []string{"ops"},
			Usage:   "enabled operations, comma separated (default: all)",
			Sources: cli.EnvVars("ONEDIGIT_OPERATIONS"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML or JSON file with search settings; flags override it",
			Sources: cli.EnvVars("ONEDIGIT_CONFIG"),
		},
	}
}

// searchConfig builds the engine config from defaults, the optional config
// file and explicitly set flags, in that order.
func searchConfig(ctx context.Context, cmd *cli.Command) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		fileCfg, err := serializer.FromFile[engine.Overrides](ctx, path)
		if err != nil {
			return cfg, errors.WrapWithContext(errors.ErrCodeInvalidConfig, "failed to load search config", err,
				map[string]any{"path": path})
		}
		cfg = cfg.Merge(*fileCfg)
	}

	if cmd.IsSet("max-value") {
		cfg.MaxValue = cmd.Int64("max-value")
	}
	if cmd.IsSet("max-cost") {
		cfg.MaxCost = cmd.Int("max-cost")
	}
	if cmd.IsSet("max-steps") {
		cfg.MaxSteps = cmd.Int("max-steps")
	}
	if cmd.IsSet("operations") {
		cfg.Operations = splitList(cmd.StringSlice("operations"))
	}
	return cfg, nil
}

// parseDigit parses a base digit argument.
func parseDigit(s string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || d < 1 || d > 9 {
		return 0, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("digit must be between 1 and 9, got %q", s), map[string]any{"digit": s})
	}
	return d, nil
}

// splitList flattens repeated and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// outputFormat returns the structured format selected by --format, or
// text=true for the terminal listing.
func outputFormat(cmd *cli.Command) (format serializer.Format, text bool, err error) {
	raw := strings.ToLower(strings.TrimSpace(cmd.String("format")))
	if raw == formatText {
		return "", true, nil
	}
	format, err = serializer.ParseFormat(raw)
	return format, false, err
}

// stdout returns the writer commands print to.
func stdout(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

// printCombos writes the sorted terminal listing.
func printCombos(w io.Writer, combos []combo.Combo, full bool) error {
	for _, c := range combos {
		var err error
		if full {
			_, err = fmt.Fprintf(w, "%4d = %-70s   [%3d]\n", c.Value, c.ExprFull, c.Cost)
		} else {
			_, err = fmt.Fprintf(w, "%4d = %-15s   [%3d]\n", c.Value, c.ExprSimple, c.Cost)
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to write listing", err)
		}
	}
	return nil
}

// listing is a table view of combinations.
type listing struct {
	combos []combo.Combo
	full   bool
}

func (l listing) TableColumns() []string {
	return []string{"VALUE", "COST", "EXPRESSION"}
}

func (l listing) TableRows() [][]string {
	rows := make([][]string, 0, len(l.combos))
	for _, c := range l.combos {
		e := c.ExprSimple
		if l.full {
			e = c.ExprFull
		}
		rows = append(rows, []string{strconv.FormatInt(c.Value, 10), strconv.Itoa(c.Cost), e})
	}
	return rows
}
