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
	"golang.org/x/time/rate"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/operation"
	"github.com/NVIDIA/onedigit/pkg/server"
)

func serveCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Usage:   "host to listen on (default: all interfaces)",
			Sources: cli.EnvVars("ONEDIGIT_ADDRESS"),
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "port to listen on",
			Value:   defaults.ServerPort,
			Sources: cli.EnvVars("ONEDIGIT_PORT", "PORT"),
		},
		&cli.IntFlag{
			Name:    "rate-limit",
			Usage:   "sustained API requests per second",
			Value:   defaults.ServerRateLimit,
			Sources: cli.EnvVars("ONEDIGIT_RATE_LIMIT"),
		},
		&cli.IntFlag{
			Name:    "rate-burst",
			Usage:   "API request burst size",
			Value:   defaults.ServerRateLimitBurst,
			Sources: cli.EnvVars("ONEDIGIT_RATE_BURST"),
		},
		&cli.IntFlag{
			Name:    "cost-limit",
			Usage:   "largest max_cost a request may ask for",
			Value:   defaults.ServerMaxCost,
			Sources: cli.EnvVars("ONEDIGIT_COST_LIMIT"),
		},
		&cli.DurationFlag{
			Name:    "solve-timeout",
			Usage:   "time limit for a single search",
			Value:   defaults.ServerSolveTimeout,
			Sources: cli.EnvVars("ONEDIGIT_SOLVE_TIMEOUT"),
		},
	}
	flags = append(flags, searchFlags()...)

	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve the search over HTTP",
		Description: `Start an HTTP server that runs a search per request and returns the
resulting snapshot. The search flags set the defaults for fields a
request omits; every request must name its digit.

Routes:
  GET|POST /v1/solve   run a search
  POST     /v1/verify  re-evaluate a posted snapshot
  GET      /health, /ready, /metrics

# Examples

  onedigit serve --port 8080 --max-cost 3
  curl "http://localhost:8080/v1/solve?digit=4&max_value=100"`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := searchConfig(ctx, cmd)
			if err != nil {
				return err
			}
			if _, err := operation.Parse(cfg.Operations); err != nil {
				return err
			}
			limit := cmd.Int("cost-limit")
			if cfg.MaxCost > limit {
				return errors.NewWithContext(errors.ErrCodeInvalidConfig,
					fmt.Sprintf("default max-cost %d exceeds the cost limit %d", cfg.MaxCost, limit),
					map[string]any{"max_cost": cfg.MaxCost, "cost_limit": limit})
			}

			s := server.New(
				server.WithName(name),
				server.WithVersion(version),
				server.WithAddress(cmd.String("address")),
				server.WithPort(cmd.Int("port")),
				server.WithRateLimit(rate.Limit(cmd.Int("rate-limit")), cmd.Int("rate-burst")),
				server.WithMaxCost(limit),
				server.WithSolveTimeout(cmd.Duration("solve-timeout")),
				server.WithSearchDefaults(cfg),
			)
			return s.Run(ctx)
		},
	}
}
