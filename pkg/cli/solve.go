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
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/combo"
	"github.com/NVIDIA/onedigit/pkg/engine"
	"github.com/NVIDIA/onedigit/pkg/header"
	"github.com/NVIDIA/onedigit/pkg/serializer"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
	onedigitversion "github.com/NVIDIA/onedigit/pkg/version"
)

type solveCmdOptions struct {
	config      engine.Config
	input       string
	output      string
	save        bool
	format      serializer.Format
	text        bool
	full        bool
	quiet       bool
	metricsFile string
	kubeconfig  string
}

// defaultOutputPath names the snapshot written when --output is omitted.
func defaultOutputPath(now time.Time) string {
	return fmt.Sprintf("model.%s.json", now.Format("20060102150405"))
}

func parseSolveCmdOptions(ctx context.Context, cmd *cli.Command) (*solveCmdOptions, error) {
	cfg, err := searchConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}

	switch {
	case cmd.Args().Len() > 0:
		if cfg.Digit, err = parseDigit(cmd.Args().First()); err != nil {
			return nil, err
		}
	case cmd.IsSet("digit"):
		if cfg.Digit, err = parseDigit(cmd.String("digit")); err != nil {
			return nil, err
		}
	}

	format, text, err := outputFormat(cmd)
	if err != nil {
		return nil, err
	}

	opts := &solveCmdOptions{
		config:      cfg,
		input:       cmd.String("input"),
		output:      cmd.String("output"),
		save:        !cmd.Bool("no-save"),
		format:      format,
		text:        text,
		full:        cmd.Bool("full"),
		quiet:       cmd.Bool("quiet"),
		metricsFile: cmd.String("metrics-file"),
		kubeconfig:  cmd.String("kubeconfig"),
	}
	if opts.output == "" {
		opts.output = defaultOutputPath(time.Now())
	}
	return opts, nil
}

func solveCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "digit",
			Aliases: []string{"d"},
			Usage:   "base digit, 1-9 (the DIGIT argument takes precedence)",
			Sources: cli.EnvVars("ONEDIGIT_DIGIT"),
		},
	}
	flags = append(flags, searchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage: `snapshot to resume from.
	Supports: file paths, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).`,
			Sources: cli.EnvVars("ONEDIGIT_INPUT"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage: `where to save the snapshot (default: model.<timestamp>.json).
	Supports: file paths (.json, .yaml) or ConfigMap URIs (cm://namespace/name).`,
			Sources: cli.EnvVars("ONEDIGIT_OUTPUT"),
		},
		&cli.BoolFlag{
			Name:  "no-save",
			Usage: "do not write a snapshot",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "do not print the combinations",
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "write search metrics in Prometheus text format to this file",
			Sources: cli.EnvVars("ONEDIGIT_METRICS_FILE"),
		},
		formatFlag(),
		fullFlag(),
		kubeconfigFlag(),
	)
	flags = append(flags, agentFlags()...)

	return &cli.Command{
		Name:                  "solve",
		EnableShellCompletion: true,
		Usage:                 "Search for the cheapest expression of every value",
		ArgsUsage:             "[DIGIT]",
		Description: `Run the generation search for one digit and print the best expression
found for every value, sorted by value.

Each generation applies the enabled unary operations to the values found
in the previous generation and combines them with every known value using
the binary operations. Only strictly positive integer results within
--max-value and --max-cost are kept; a value is replaced only by a
strictly cheaper expression.

The result is saved as a snapshot that --input can resume from. When
--input is given without a digit, the snapshot's digit is used.

# Examples

Search with the defaults:
  onedigit solve 3

Restrict the operations and bounds:
  onedigit solve --operations +,-,! --max-value 100 --max-cost 4 --max-steps 3 3

Resume from a snapshot and store the result in a ConfigMap:
  onedigit solve --input model.json --max-steps 2 --output cm://default/onedigit-3

# Agent Deployment Mode

Use --deploy-agent to run the search as a Kubernetes Job:

  onedigit solve --deploy-agent --namespace onedigit --max-cost 8 3

The agent mode will:
  1. Deploy RBAC resources (ServiceAccount, Role, RoleBinding)
  2. Deploy a Job that runs the search and stores the snapshot in a ConfigMap
  3. Wait for the Job to complete
  4. Read the snapshot back from the ConfigMap and print it
  5. Clean up the Job and RBAC resources (unless --no-cleanup)

The snapshot is written to --output, which must be a ConfigMap in
--namespace (default: cm://<namespace>/<job-name>). --input must be a URL
or ConfigMap URI the Job can reach.

Schedule on tainted nodes:
  onedigit solve --deploy-agent \
    --node-selector pool=batch \
    --toleration dedicated=batch:NoSchedule \
    --max-cost 10 4`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseSolveCmdOptions(ctx, cmd)
			if err != nil {
				return err
			}
			if cmd.Bool("deploy-agent") {
				return runAgent(ctx, cmd, opts)
			}

			var prior *snapshot.Snapshot
			if opts.input != "" {
				slog.Info("loading snapshot", "uri", opts.input)
				prior, err = loadSnapshot(ctx, opts.input, opts.kubeconfig)
				if err != nil {
					return err
				}
				if opts.config.Digit == 0 {
					opts.config.Digit = prior.Digit
				}
			}

			e, err := engine.New(opts.config)
			if err != nil {
				return err
			}
			res, err := e.Run(ctx, prior)
			if err != nil {
				return err
			}
			snap := res.Snapshot(version)

			if opts.save {
				if err := saveSnapshot(ctx, snap, opts.output, opts.kubeconfig); err != nil {
					return err
				}
			}
			if opts.metricsFile != "" {
				if err := engine.WriteMetrics(opts.metricsFile); err != nil {
					return err
				}
			}
			if opts.quiet {
				return nil
			}
			return emit(ctx, cmd, opts.format, opts.text, opts.full, snap, snap.Sorted())
		},
	}
}

// loadSnapshot reads the snapshot at uri and warns when it was written by
// a newer onedigit than this build.
func loadSnapshot(ctx context.Context, uri, kubeconfig string) (*snapshot.Snapshot, error) {
	snap, err := snapshot.Load(ctx, uri, serializer.WithKubeconfig(kubeconfig))
	if err != nil {
		return nil, err
	}
	if written := snap.Metadata[header.MetadataVersion]; onedigitversion.NewerThanRunning(written, version) {
		slog.Warn("snapshot was written by a newer onedigit, fields it added are ignored",
			"uri", uri, "written", written, "running", version)
	}
	return snap, nil
}

// saveSnapshot writes snap to path in the format its extension implies.
func saveSnapshot(ctx context.Context, snap *snapshot.Snapshot, path, kubeconfig string) error {
	w, err := serializer.NewFileWriter(serializer.FormatFromPath(path), path, serializer.WithKubeconfig(kubeconfig))
	if err != nil {
		return err
	}
	defer func() {
		if c, ok := w.(serializer.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close snapshot writer", "error", err)
			}
		}
	}()

	if err := w.Serialize(ctx, snap); err != nil {
		return err
	}
	slog.Info("snapshot saved", "uri", path, "combinations", len(snap.Combinations))
	return nil
}

// emit prints combos as the terminal listing, or snap with combos in a
// structured format. Tables list the combinations only.
func emit(ctx context.Context, cmd *cli.Command, format serializer.Format, text, full bool,
	snap *snapshot.Snapshot, combos []combo.Combo) error {
	out := stdout(cmd)
	if text {
		return printCombos(out, combos, full)
	}

	w := serializer.NewWriter(format, out)
	if format == serializer.FormatTable {
		return w.Serialize(ctx, listing{combos: combos, full: full})
	}
	doc := *snap
	doc.Combinations = combos
	return w.Serialize(ctx, &doc)
}
