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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/engine/compare"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

func compareCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "digits",
			Usage:   "digits to compare, comma separated",
			Value:   []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
			Sources: cli.EnvVars("ONEDIGIT_DIGITS"),
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "number of searches to run at once",
			Value:   defaults.DefaultCompareWorkers,
			Sources: cli.EnvVars("ONEDIGIT_WORKERS"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "write the comparison to a file or cm:// URI instead of stdout",
		},
		formatFlag(),
		kubeconfigFlag(),
	}
	flags = append(flags, searchFlags()...)

	return &cli.Command{
		Name:                  "compare",
		EnableShellCompletion: true,
		Usage:                 "Search several digits and tabulate the cost per value",
		Description: `Run an independent search for every digit in --digits with the same
bounds and operations, and print a table with one row per value and one
column per digit. A "-" means the digit did not reach the value.

Searches run concurrently, at most --workers at a time. The first search
that fails cancels the rest.

# Examples

  onedigit compare --max-value 50 --max-cost 3
  onedigit compare --digits 2,3,4 --format yaml --output compare.yaml`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := searchConfig(ctx, cmd)
			if err != nil {
				return err
			}
			format, text, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			if text {
				format = serializer.FormatTable
			}

			var digits []int
			for _, raw := range splitList(cmd.StringSlice("digits")) {
				d, err := parseDigit(raw)
				if err != nil {
					return err
				}
				digits = append(digits, d)
			}

			m, err := compare.Digits(ctx, cfg, digits,
				compare.WithWorkers(cmd.Int("workers")),
				compare.WithVersion(version))
			if err != nil {
				return err
			}

			if out := cmd.String("output"); out != "" {
				w, err := serializer.NewFileWriter(format, out, serializer.WithKubeconfig(cmd.String("kubeconfig")))
				if err != nil {
					return err
				}
				if c, ok := w.(serializer.Closer); ok {
					defer func() { _ = c.Close() }()
				}
				return w.Serialize(ctx, m)
			}
			return serializer.NewWriter(format, stdout(cmd)).Serialize(ctx, m)
		},
	}
}
