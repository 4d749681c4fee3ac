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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

// snapshotSource returns the SNAPSHOT argument or the --input flag.
func snapshotSource(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		return cmd.Args().First(), nil
	}
	if in := cmd.String("input"); in != "" {
		return in, nil
	}
	return "", errors.New(errors.ErrCodeInvalidRequest, "a snapshot path, URL or cm:// URI is required")
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage: `snapshot to read (alternative to the SNAPSHOT argument).
	Supports: file paths, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).`,
		Sources: cli.EnvVars("ONEDIGIT_INPUT"),
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:                  "show",
		EnableShellCompletion: true,
		Usage:                 "Print a stored snapshot",
		ArgsUsage:             "SNAPSHOT",
		Description: `Print the combinations of a snapshot sorted by value, optionally
restricted to a value range or a maximum cost.

# Examples

  onedigit show model.json
  onedigit show --min-value 10 --max-value 20 --full model.json
  onedigit show --format yaml cm://default/onedigit-3`,
		Flags: []cli.Flag{
			inputFlag(),
			&cli.Int64Flag{
				Name:  "min-value",
				Usage: "smallest value to print",
			},
			&cli.Int64Flag{
				Name:  "max-value",
				Usage: "largest value to print",
			},
			&cli.IntFlag{
				Name:  "max-cost",
				Usage: "largest cost to print",
			},
			formatFlag(),
			fullFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			source, err := snapshotSource(cmd)
			if err != nil {
				return err
			}
			format, text, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(ctx, source, cmd.String("kubeconfig"))
			if err != nil {
				return err
			}

			combos := snap.Select(snapshot.Filter{
				MinValue: cmd.Int64("min-value"),
				MaxValue: cmd.Int64("max-value"),
				MaxCost:  cmd.Int("max-cost"),
			})
			slog.Debug("selected combinations", "uri", source, "total", len(snap.Combinations), "selected", len(combos))

			return emit(ctx, cmd, format, text, cmd.Bool("full"), snap, combos)
		},
	}
}
