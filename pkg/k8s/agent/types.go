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
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/k8s/client"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

// Labels put on every object the deployer creates.
const (
	labelName  = "app.kubernetes.io/name"
	labelValue = "onedigit"
)

// Config describes the solve Job.
type Config struct {
	Namespace          string
	ServiceAccountName string
	JobName            string
	Image              string
	ImagePullSecrets   []string
	NodeSelector       map[string]string
	Tolerations        []corev1.Toleration

	// Args are the solve arguments, without --output.
	Args []string

	// Output is the cm://namespace/name the Job writes its snapshot to.
	// It must be in Namespace, where the Role grants ConfigMap access.
	Output string

	// LogLevel is passed to the container's --log-level.
	LogLevel string

	// Timeout bounds the Job through activeDeadlineSeconds and the wait.
	Timeout time.Duration
}

// Validate reports a configuration the deployer cannot run.
func (c Config) Validate() error {
	missing := []string{}
	for name, v := range map[string]string{
		"namespace":       c.Namespace,
		"job name":        c.JobName,
		"service account": c.ServiceAccountName,
		"image":           c.Image,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig, "incomplete agent configuration",
			map[string]any{"missing": missing})
	}

	namespace, _, err := parseConfigMapName(c.Output)
	if err != nil {
		return err
	}
	if namespace != c.Namespace {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("agent output must be a ConfigMap in namespace %q", c.Namespace),
			map[string]any{"output": c.Output})
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "agent timeout must be positive")
	}
	return nil
}

// Deployer runs a solve as a Kubernetes Job.
type Deployer struct {
	clientset client.Interface
	config    Config
}

// NewDeployer returns a Deployer for config.
func NewDeployer(clientset client.Interface, config Config) *Deployer {
	return &Deployer{
		clientset: clientset,
		config:    config,
	}
}

// CleanupOptions controls resource removal after a run.
type CleanupOptions struct {
	Enabled bool // If true, removes the Job and all RBAC resources
}

// DefaultOutput returns the ConfigMap URI used when none is given.
func DefaultOutput(namespace, name string) string {
	return serializer.ConfigMapURIScheme + namespace + "/" + name
}
