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

// Package agent runs a onedigit search as a Kubernetes Job.
//
// A Deployer creates a ServiceAccount, a Role granting ConfigMap access in
// one namespace and its RoleBinding, then a Job that runs
//
//	onedigit solve --quiet --output cm://<namespace>/<name> <args>
//
// and waits for it through the watch API. The snapshot the Job stores is
// read back with snapshot.Load, so it is validated like any other input.
// No cluster scoped objects are created and the pod runs as non-root with
// a read-only root filesystem.
//
// # Usage
//
//	d := agent.NewDeployer(clientset, agent.Config{
//	    Namespace:          "onedigit",
//	    ServiceAccountName: "onedigit",
//	    JobName:            "onedigit",
//	    Image:              "ghcr.io/nvidia/onedigit:latest",
//	    Args:               []string{"--max-cost", "6", "4"},
//	    Output:             agent.DefaultOutput("onedigit", "onedigit-4"),
//	    Timeout:            30 * time.Minute,
//	})
//	snap, err := d.Run(ctx, agent.CleanupOptions{Enabled: true})
//
// Cleanup removes the Job and the RBAC objects; the output ConfigMap is
// kept so the snapshot can be loaded again with --input.
package agent
