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


package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/operation"
)

func TestConfigValidation(t *testing.T) {
	valid := func() Config { return scenarioConfig(2) }

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"digit zero", func(c *Config) { c.Digit = 0 }, "digit"},
		{"digit ten", func(c *Config) { c.Digit = 10 }, "digit"},
		{"max value zero", func(c *Config) { c.MaxValue = 0 }, "max_value"},
		{"max value too large", func(c *Config) { c.MaxValue = 1_000_001 }, "max_value"},
		{"max cost zero", func(c *Config) { c.MaxCost = 0 }, "max_cost"},
		{"max cost too large", func(c *Config) { c.MaxCost = 31 }, "max_cost"},
		{"max steps negative", func(c *Config) { c.MaxSteps = -1 }, "max_steps"},
		{"max steps too large", func(c *Config) { c.MaxSteps = 101 }, "max_steps"},
		{"no operations", func(c *Config) { c.Operations = nil }, "operations"},
		{"unknown operation", func(c *Config) { c.Operations = []string{"+", "mod"} }, "operations[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			_, err := New(cfg)
			require.Error(t, err)

			var se *errors.StructuredError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, errors.ErrCodeInvalidConfig, se.Code)
			assert.Equal(t, tt.field, se.Context["field"])
		})
	}
}

func TestNewCanonicalizesOperations(t *testing.T) {
	cfg := scenarioConfig(2)
	cfg.Operations = []string{"fact", "+", "-", "+"}
	e, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"!", "+", "-"}, e.Config().Operations)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(), "digit must be supplied")

	cfg.Digit = 5
	require.NoError(t, cfg.Validate())
	assert.Equal(t, operation.IDs(), cfg.Operations)
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	got := base.Merge(Overrides{Digit: ptr.To(7), MaxCost: ptr.To(3)})
	assert.Equal(t, 7, got.Digit)
	assert.Equal(t, 3, got.MaxCost)
	assert.Equal(t, base.MaxValue, got.MaxValue)
	assert.Equal(t, base.MaxSteps, got.MaxSteps)
	assert.Equal(t, base.Operations, got.Operations)
}

func TestConfigMergeExplicitZero(t *testing.T) {
	got := DefaultConfig().Merge(Overrides{MaxSteps: ptr.To(0)})
	assert.Equal(t, 0, got.MaxSteps)

	var o Overrides
	require.NoError(t, yaml.Unmarshal([]byte("max_steps: 0\n"), &o))
	require.NotNil(t, o.MaxSteps)
	assert.Equal(t, 0, DefaultConfig().Merge(o).MaxSteps)
	assert.Nil(t, o.MaxCost)
}

func TestConfigBounds(t *testing.T) {
	b := scenarioConfig(4).Bounds()
	assert.Equal(t, int64(100), b.MaxValue)
	assert.Equal(t, 4, b.MaxCost)
}
