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

package serializer

import (
	"github.com/NVIDIA/onedigit/pkg/k8s/client"
)

const (
	// DefaultConfigMapKey is the data key prefix used in ConfigMaps.
	DefaultConfigMapKey = "snapshot"

	// FieldManager identifies onedigit in server side apply.
	FieldManager = "onedigit"
)

// Option configures readers and writers that reach beyond the local file
// system.
type Option func(*options)

type options struct {
	kubeClient   client.Interface
	kubeconfig   string
	configMapKey string
	httpReader   *HttpReader
}

func newOptions(opts ...Option) *options {
	o := &options{configMapKey: DefaultConfigMapKey}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithKubeClient uses c for ConfigMap access instead of the shared client.
func WithKubeClient(c client.Interface) Option {
	return func(o *options) {
		o.kubeClient = c
	}
}

// WithKubeconfig builds the ConfigMap client from an explicit kubeconfig.
func WithKubeconfig(path string) Option {
	return func(o *options) {
		o.kubeconfig = path
	}
}

// WithConfigMapKey sets the data key prefix; data is stored under
// "<key>.<extension>".
func WithConfigMapKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.configMapKey = key
		}
	}
}

// WithHTTPReader uses r for http(s) sources.
func WithHTTPReader(r *HttpReader) Option {
	return func(o *options) {
		o.httpReader = r
	}
}

func (o *options) kube() (client.Interface, error) {
	if o.kubeClient != nil {
		return o.kubeClient, nil
	}
	if o.kubeconfig != "" {
		c, _, err := client.BuildKubeClient(o.kubeconfig)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, _, err := client.GetKubeClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (o *options) http() *HttpReader {
	if o.httpReader != nil {
		return o.httpReader
	}
	return NewHttpReader()
}
