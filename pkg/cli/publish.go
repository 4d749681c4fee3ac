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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/oci"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:                  "publish",
		EnableShellCompletion: true,
		Usage:                 "Push snapshot files to an OCI registry",
		ArgsUsage:             "SNAPSHOT...",
		Description: `Package one or more snapshot files as an OCI artifact and push it to a
registry. Every file is validated as a snapshot first and becomes one
layer of the artifact. Files must be local and share one digit, which is
recorded as the com.nvidia.onedigit.digit annotation.

Credentials are read from the Docker configuration (~/.docker/config.json).

# Examples

  onedigit publish --to oci://ghcr.io/nvidia/onedigit-snapshots:digit-3 model.json
  onedigit publish --plain-http --to oci://localhost:5000/snapshots:v1 model.json model.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Usage:    "target reference, oci://registry/repository:tag",
				Required: true,
				Sources:  cli.EnvVars("ONEDIGIT_PUBLISH_TO"),
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "use HTTP instead of HTTPS (local development registries)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "skip TLS certificate verification",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return errors.New(errors.ErrCodeInvalidRequest, "at least one snapshot file is required")
			}

			ref, err := oci.ParseReference(cmd.String("to"))
			if err != nil {
				return err
			}

			digit, err := publishDigit(ctx, files)
			if err != nil {
				return err
			}

			res, err := oci.Publish(ctx, oci.PublishOptions{
				Files:       files,
				Reference:   ref,
				Version:     version,
				Digit:       digit,
				PlainHTTP:   cmd.Bool("plain-http"),
				InsecureTLS: cmd.Bool("insecure-tls"),
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(stdout(cmd), "%s@%s\n", res.Reference, res.Digest)
			return err
		},
	}
}

// publishDigit validates every file as a local snapshot and returns their
// common digit.
func publishDigit(ctx context.Context, files []string) (int, error) {
	digit := 0
	for _, f := range files {
		if remoteInput(f) {
			return 0, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				"publish takes local snapshot files", map[string]any{"path": f})
		}
		snap, err := snapshot.Load(ctx, f)
		if err != nil {
			return 0, err
		}
		switch {
		case digit == 0:
			digit = snap.Digit
		case snap.Digit != digit:
			return 0, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				"snapshots in one artifact must share a digit",
				map[string]any{"path": f, "digit": snap.Digit, "expected": digit})
		}
	}
	return digit, nil
}
