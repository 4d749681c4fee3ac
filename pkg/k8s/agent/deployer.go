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

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/serializer"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

// cleanupTimeout bounds Cleanup when Run removes resources on exit.
const cleanupTimeout = 30 * time.Second

// Deploy checks permissions, ensures the RBAC objects and recreates the Job.
func (d *Deployer) Deploy(ctx context.Context) error {
	if err := d.config.Validate(); err != nil {
		return err
	}

	if _, err := d.CheckPermissions(ctx); err != nil {
		return err
	}

	if err := d.ensureRBAC(ctx); err != nil {
		return err
	}

	return d.ensureJob(ctx)
}

// WaitForCompletion blocks until the Job completes, fails or timeout elapses.
func (d *Deployer) WaitForCompletion(ctx context.Context, timeout time.Duration) error {
	return d.waitForJobCompletion(ctx, timeout)
}

// GetSnapshot loads and validates the snapshot the Job wrote.
func (d *Deployer) GetSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	return snapshot.Load(ctx, d.config.Output, serializer.WithKubeClient(d.clientset))
}

// Run deploys the Job, waits for it and returns its snapshot. On failure
// the pod logs are attached to the error. Cleanup runs on every exit.
func (d *Deployer) Run(ctx context.Context, opts CleanupOptions) (*snapshot.Snapshot, error) {
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		if err := d.Cleanup(cleanupCtx, opts); err != nil {
			slog.Warn("cleanup failed - resources may remain in cluster",
				"error", err,
				"command", fmt.Sprintf("kubectl delete job/%s sa/%s role/%s rolebinding/%s -n %s",
					d.config.JobName, d.config.ServiceAccountName, d.config.ServiceAccountName,
					d.config.ServiceAccountName, d.config.Namespace))
		}
	}()

	slog.Info("deploying agent", "namespace", d.config.Namespace, "job", d.config.JobName)
	if err := d.Deploy(ctx); err != nil {
		return nil, err
	}

	slog.Info("waiting for Job completion", "job", d.config.JobName, "timeout", d.config.Timeout)
	if err := d.WaitForCompletion(ctx, d.config.Timeout); err != nil {
		if logs, logErr := d.GetPodLogs(ctx); logErr == nil && logs != "" {
			code := errors.CodeOf(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.WrapWithContext(code, "agent Job did not complete", err,
				map[string]any{"logs": logs})
		}
		return nil, err
	}

	snap, err := d.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("agent snapshot retrieved", "uri", d.config.Output, "combinations", len(snap.Combinations))
	return snap, nil
}

// Cleanup removes the Job and the RBAC objects. The output ConfigMap is kept.
func (d *Deployer) Cleanup(ctx context.Context, opts CleanupOptions) error {
	// Skip cleanup if not enabled (keep resources for debugging)
	if !opts.Enabled {
		return nil
	}

	if err := d.deleteJob(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to delete Job", err)
	}
	return d.deleteRBAC(ctx)
}

func ignoreAlreadyExists(err error) error {
	if apierrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

func ignoreNotFound(err error) error {
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}
