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

// Package k8s groups the Kubernetes integration of onedigit.
//
// # Sub-packages
//
// client: shared Kubernetes client used by the cm:// snapshot readers and
// writers in pkg/serializer.
//
//	clientset, config, err := client.GetKubeClient()
//	if err != nil {
//	    return err
//	}
//
// agent: runs a solve as a Kubernetes Job that stores its snapshot in a
// ConfigMap, then reads the snapshot back.
//
//	deployer := agent.NewDeployer(clientset, agent.Config{
//	    Namespace:          "onedigit",
//	    ServiceAccountName: "onedigit",
//	    JobName:            "onedigit",
//	    Image:              "ghcr.io/nvidia/onedigit:latest",
//	    Args:               []string{"--max-cost", "8", "3"},
//	    Output:             agent.DefaultOutput("onedigit", "onedigit"),
//	    Timeout:            10 * time.Minute,
//	})
//	snap, err := deployer.Run(ctx, agent.CleanupOptions{Enabled: true})
//
// The client detects in-cluster service account credentials and falls
// back to KUBECONFIG or ~/.kube/config. It is built once per process;
// each Deployer is independent.
package k8s
