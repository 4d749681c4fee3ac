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
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

var scenarioFlags = []string{"--operations", "+,-,!", "--max-value", "100", "--max-cost", "4", "--max-steps", "3"}

func solveArgs(extra ...string) []string {
	args := append([]string{"solve"}, scenarioFlags...)
	return append(args, extra...)
}

func TestSolveListing(t *testing.T) {
	out, err := execute(t, solveArgs("--no-save", "3")...)
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 8)
	assert.Equal(t, "   3 = 3                 [  1]", got[0])
	assert.Equal(t, "  21 = 12 + 9            [  4]", got[6])
}

func TestSolveListingFull(t *testing.T) {
	out, err := execute(t, solveArgs("--no-save", "--full", "3")...)
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 8)
	assert.Equal(t, "  24 = (3! + 3!) + (3! + 3!)                                                    [  4]", got[7])
}

func TestSolveDigitFlag(t *testing.T) {
	out, err := execute(t, solveArgs("--no-save", "--digit", "3")...)
	require.NoError(t, err)
	assert.Len(t, lines(out), 8)
}

func TestSolveSaveAndResume(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")

	out, err := execute(t, solveArgs("--quiet", "--output", path, "3")...)
	require.NoError(t, err)
	assert.Empty(t, out)

	snap, err := snapshot.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Digit)
	assert.Len(t, snap.Combinations, 8)
	assert.Equal(t, "max-steps", snap.Metadata["stop-reason"])

	out, err = execute(t, "solve", "--operations", "+,-,!", "--max-value", "100", "--max-cost", "4",
		"--max-steps", "0", "--no-save", "--format", "json", "--input", path)
	require.NoError(t, err)

	var resumed snapshot.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &resumed))
	assert.Equal(t, 3, resumed.Digit, "digit comes from the snapshot")
	assert.ElementsMatch(t, snap.Combinations, resumed.Combinations)
}

func TestSolveConfigFile(t *testing.T) {
	cfg := writeFile(t, "run.yaml", "digit: 3\nmax_value: 100\nmax_cost: 4\nmax_steps: 3\noperations: [\"+\", \"-\", \"!\"]\n")

	out, err := execute(t, "solve", "--config", cfg, "--no-save")
	require.NoError(t, err)
	assert.Len(t, lines(out), 8)

	out, err = execute(t, "solve", "--config", cfg, "--max-cost", "2", "--no-save")
	require.NoError(t, err)
	assert.Len(t, lines(out), 4, "flags override the config file")
}

func TestSolveConfigFileZeroSteps(t *testing.T) {
	cfg := writeFile(t, "seed.yaml", "digit: 3\nmax_steps: 0\n")

	out, err := execute(t, "solve", "--config", cfg, "--no-save")
	require.NoError(t, err)
	assert.Equal(t, []string{"   3 = 3                 [  1]"}, lines(out))
}

func TestSolveMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.prom")
	_, err := execute(t, solveArgs("--no-save", "--quiet", "--metrics-file", path, "3")...)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "onedigit_runs_total")
}

func TestSolveTable(t *testing.T) {
	out, err := execute(t, solveArgs("--no-save", "--format", "table", "3")...)
	require.NoError(t, err)
	got := lines(out)
	assert.Contains(t, got[0], "VALUE")
	assert.Contains(t, got[0], "EXPRESSION")
	assert.Len(t, got, 10)
}

func TestSolveErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"digit zero", solveArgs("--no-save", "0"), errors.ErrCodeInvalidConfig},
		{"digit not a number", solveArgs("--no-save", "x"), errors.ErrCodeInvalidConfig},
		{"no digit", solveArgs("--no-save"), errors.ErrCodeInvalidConfig},
		{"max cost too large", []string{"solve", "--max-cost", "31", "--no-save", "3"}, errors.ErrCodeInvalidConfig},
		{"unknown operation", []string{"solve", "--operations", "+,mod", "--no-save", "3"}, errors.ErrCodeInvalidConfig},
		{"unknown format", solveArgs("--no-save", "--format", "xml", "3"), errors.ErrCodeInvalidRequest},
		{"missing config", []string{"solve", "--config", "/does/not/exist.yaml", "--no-save", "3"}, errors.ErrCodeInvalidConfig},
		{"missing input", solveArgs("--no-save", "--input", "/does/not/exist.json", "3"), errors.ErrCodeInvalidSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestSolveDigitMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	_, err := execute(t, solveArgs("--quiet", "--output", path, "3")...)
	require.NoError(t, err)

	_, err = execute(t, solveArgs("--no-save", "--input", path, "4")...)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidSnapshot, errors.CodeOf(err))
}

func TestDefaultOutputPath(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "model.20250102030405.json", defaultOutputPath(now))
}

func TestLoadSnapshotNewerVersion(t *testing.T) {
	saved := version
	version = "v0.1.0"
	t.Cleanup(func() { version = saved })

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := writeFile(t, "model.yaml", `kind: Snapshot
apiVersion: onedigit.nvidia.com/v1alpha1
metadata:
  version: v9.0.0
digit: 3
max_value: 100
max_cost: 1
combinations:
  - value: 3
    cost: 1
    expr_full: "3"
    expr_simple: "3"
`)

	snap, err := loadSnapshot(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Digit)
	assert.Contains(t, logs.String(), "newer onedigit")
	assert.Contains(t, logs.String(), "written=v9.0.0")
}
