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

// Package client provides the shared Kubernetes client used for ConfigMap
// snapshot storage.
//
// The client is built once on first use and cached:
//
//	clientset, _, err := client.GetKubeClient()
//	if err != nil {
//	    return err
//	}
//	cm, err := clientset.CoreV1().ConfigMaps("default").Get(ctx, "onedigit-3", metav1.GetOptions{})
//
// Kubeconfig discovery order:
//   - an explicit path passed to BuildKubeClient
//   - the KUBECONFIG environment variable
//   - ~/.kube/config when present
//   - in-cluster service account configuration
//
// Use BuildKubeClient for an explicit kubeconfig; it bypasses the cache.
// Tests pass a fake clientset to the serializer instead of touching this
// package's state.
package client
