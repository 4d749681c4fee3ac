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
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/k8s/agent"
	"github.com/NVIDIA/onedigit/pkg/k8s/client"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

func agentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "deploy-agent",
			Usage: "run the search as a Kubernetes Job and read its snapshot back",
		},
		&cli.StringFlag{
			Name:    "namespace",
			Usage:   "Kubernetes namespace for agent deployment",
			Sources: cli.EnvVars("ONEDIGIT_NAMESPACE"),
			Value:   "onedigit",
		},
		&cli.StringFlag{
			Name:    "image",
			Usage:   "container image for the agent Job",
			Sources: cli.EnvVars("ONEDIGIT_IMAGE"),
			Value:   "ghcr.io/nvidia/onedigit:latest",
		},
		&cli.StringFlag{
			Name:  "job-name",
			Usage: "override default Job name",
			Value: "onedigit",
		},
		&cli.StringFlag{
			Name:  "service-account-name",
			Usage: "override default ServiceAccount name",
			Value: "onedigit",
		},
		&cli.StringSliceFlag{
			Name:  "image-pull-secret",
			Usage: "secret used to pull the agent image (can be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "node-selector",
			Usage: "node selector for Job scheduling (format: key=value, can be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "toleration",
			Usage: "toleration for Job scheduling (format: key=value:effect or key:effect, can be repeated)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "timeout for the agent Job",
			Value: defaults.AgentJobTimeout,
		},
		&cli.BoolFlag{
			Name:  "no-cleanup",
			Usage: "keep the Job and its RBAC resources after the run",
		},
	}
}

// agentArgs returns the solve arguments the Job runs with. The effective
// search settings are passed explicitly so a local --config file is not
// needed in the cluster.
func agentArgs(opts *solveCmdOptions) []string {
	cfg := opts.config
	args := []string{
		"--max-value", strconv.FormatInt(cfg.MaxValue, 10),
		"--max-cost", strconv.Itoa(cfg.MaxCost),
		"--max-steps", strconv.Itoa(cfg.MaxSteps),
	}
	if len(cfg.Operations) > 0 {
		args = append(args, "--operations", strings.Join(cfg.Operations, ","))
	}
	if opts.input != "" {
		args = append(args, "--input", opts.input)
	}
	if cfg.Digit != 0 {
		args = append(args, strconv.Itoa(cfg.Digit))
	}
	return args
}

// remoteInput reports whether the Job can read uri itself.
func remoteInput(uri string) bool {
	return strings.HasPrefix(uri, "http://") ||
		strings.HasPrefix(uri, "https://") ||
		strings.HasPrefix(uri, serializer.ConfigMapURIScheme)
}

// agentConfig builds the Job configuration for a solve.
func agentConfig(cmd *cli.Command, opts *solveCmdOptions) (agent.Config, error) {
	if opts.input != "" && !remoteInput(opts.input) {
		return agent.Config{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"--input must be a URL or ConfigMap URI with --deploy-agent", map[string]any{"input": opts.input})
	}
	if opts.metricsFile != "" {
		return agent.Config{}, errors.New(errors.ErrCodeInvalidRequest,
			"--metrics-file is not supported with --deploy-agent")
	}

	nodeSelector, err := agent.ParseNodeSelectors(cmd.StringSlice("node-selector"))
	if err != nil {
		return agent.Config{}, err
	}
	tolerations, err := agent.ParseTolerations(cmd.StringSlice("toleration"))
	if err != nil {
		return agent.Config{}, err
	}

	namespace := cmd.String("namespace")
	output := cmd.String("output")
	if output == "" {
		output = agent.DefaultOutput(namespace, cmd.String("job-name"))
	}

	cfg := agent.Config{
		Namespace:          namespace,
		ServiceAccountName: cmd.String("service-account-name"),
		JobName:            cmd.String("job-name"),
		Image:              cmd.String("image"),
		ImagePullSecrets:   splitList(cmd.StringSlice("image-pull-secret")),
		NodeSelector:       nodeSelector,
		Tolerations:        tolerations,
		Args:               agentArgs(opts),
		Output:             output,
		LogLevel:           cmd.String("log-level"),
		Timeout:            cmd.Duration("timeout"),
	}
	return cfg, cfg.Validate()
}

// runAgent runs the solve in the cluster and prints the snapshot it
// stored.
func runAgent(ctx context.Context, cmd *cli.Command, opts *solveCmdOptions) error {
	if !opts.save {
		return errors.New(errors.ErrCodeInvalidRequest, "--no-save is not supported with --deploy-agent")
	}
	// With --input the Job takes the digit from the snapshot.
	if opts.input == "" {
		if err := opts.config.Validate(); err != nil {
			return err
		}
	}

	cfg, err := agentConfig(cmd, opts)
	if err != nil {
		return err
	}

	clientset, _, err := client.BuildKubeClient(opts.kubeconfig)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to build kubernetes client", err)
	}

	slog.Info("deploying agent",
		"namespace", cfg.Namespace,
		"job", cfg.JobName,
		"image", cfg.Image,
		"output", cfg.Output)

	snap, err := agent.NewDeployer(clientset, cfg).Run(ctx, agent.CleanupOptions{Enabled: !cmd.Bool("no-cleanup")})
	if err != nil {
		return err
	}
	slog.Info("snapshot saved", "uri", cfg.Output, "combinations", len(snap.Combinations))

	if opts.quiet {
		return nil
	}
	return emit(ctx, cmd, opts.format, opts.text, opts.full, snap, snap.Sorted())
}
