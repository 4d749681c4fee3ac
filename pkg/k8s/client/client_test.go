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

package client

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

func resetSingleton(t *testing.T) {
	t.Helper()
	reset := func() {
		clientOnce = sync.Once{}
		cachedClient = nil
		cachedConfig = nil
		clientErr = nil
	}
	reset()
	t.Cleanup(reset)
}

func TestResolveKubeconfig(t *testing.T) {
	t.Setenv(EnvKubeconfig, "/from/env")
	assert.Equal(t, "/explicit", ResolveKubeconfig("/explicit"))
	assert.Equal(t, "/from/env", ResolveKubeconfig(""))
}

func TestBuildKubeClientInvalidPaths(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "invalid-kubeconfig")
	require.NoError(t, os.WriteFile(invalid, []byte("invalid yaml content"), 0o600))

	tests := []struct {
		name string
		arg  string
		env  string
	}{
		{name: "explicit missing path", arg: "/nonexistent/path/to/kubeconfig"},
		{name: "env var with missing path", env: "/nonexistent/env/kubeconfig"},
		{name: "explicit invalid content", arg: invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvKubeconfig, tt.env)

			_, _, err := BuildKubeClient(tt.arg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to build kube config")
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
		})
	}
}

func TestGetKubeClientSingleton(t *testing.T) {
	resetSingleton(t)
	t.Setenv(EnvKubeconfig, "/nonexistent/kubeconfig")

	c1, cfg1, err1 := GetKubeClient()
	c2, cfg2, err2 := GetKubeClient()

	require.Error(t, err1)
	assert.Same(t, err1, err2)
	assert.Nil(t, c1)
	assert.Nil(t, c2)
	assert.Nil(t, cfg1)
	assert.Nil(t, cfg2)
}

func TestGetKubeClientConcurrent(t *testing.T) {
	resetSingleton(t)
	t.Setenv(EnvKubeconfig, "/nonexistent/kubeconfig")

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = GetKubeClient()
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, errs[0], errs[i])
	}
}
