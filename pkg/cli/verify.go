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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/serializer"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "verify",
		EnableShellCompletion: true,
		Usage:                 "Re-evaluate every expression in a snapshot",
		ArgsUsage:             "SNAPSHOT",
		Description: `Parse and evaluate the expr_full of every combination in a snapshot and
check that it equals the stored value and uses the snapshot's digit exactly
cost times. Loading a snapshot never evaluates expressions; this command
does.

The command fails when any combination does not verify.

# Examples

  onedigit verify model.json
  onedigit verify --format json https://example.com/model.json`,
		Flags: []cli.Flag{
			inputFlag(),
			formatFlag(),
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

			report := snap.Verify(version)
			slog.Info("snapshot verified", "uri", source, "checked", report.Checked, "failed", len(report.Failures))

			if err := printReport(ctx, cmd, format, text, report); err != nil {
				return err
			}
			if !report.Passed() {
				return errors.NewWithContext(errors.ErrCodeInvalidSnapshot,
					fmt.Sprintf("%d of %d combinations failed verification", len(report.Failures), report.Checked),
					map[string]any{"uri": source})
			}
			return nil
		},
	}
}

func printReport(ctx context.Context, cmd *cli.Command, format serializer.Format, text bool, r *snapshot.Report) error {
	out := stdout(cmd)
	if !text {
		return serializer.NewWriter(format, out).Serialize(ctx, r)
	}

	for _, f := range r.Failures {
		if _, err := fmt.Fprintf(out, "FAIL %d = %s    [%d]: %s\n", f.Value, f.ExprFull, f.Cost, f.Reason); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to write report", err)
		}
	}
	if _, err := fmt.Fprintf(out, "%d combinations checked for digit %d, %d failed\n",
		r.Checked, r.Digit, len(r.Failures)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write report", err)
	}
	return nil
}
