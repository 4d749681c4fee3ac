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

package oci

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

func writeSnapshotFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestMediaTypeFor(t *testing.T) {
	tests := map[string]string{
		"model.json": MediaTypeSnapshotJSON,
		"model.yaml": MediaTypeSnapshotYAML,
		"model.YML":  MediaTypeSnapshotYAML,
		"model":      MediaTypeSnapshotJSON,
		"a/b/c.json": MediaTypeSnapshotJSON,
	}
	for path, want := range tests {
		if got := MediaTypeFor(path); got != want {
			t.Errorf("MediaTypeFor(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestPackage_Validation(t *testing.T) {
	ctx := context.Background()
	ref := &Reference{Registry: "ghcr.io", Repository: "test/repo", Tag: "v1"}

	tests := []struct {
		name string
		opts PackageOptions
		code errors.ErrorCode
	}{
		{"no reference", PackageOptions{Files: []string{"x.json"}, OutputDir: t.TempDir()}, errors.ErrCodeInvalidRequest},
		{"no tag", PackageOptions{Files: []string{"x.json"}, OutputDir: t.TempDir(), Reference: ref.WithTag("")}, errors.ErrCodeInvalidRequest},
		{"no files", PackageOptions{OutputDir: t.TempDir(), Reference: ref}, errors.ErrCodeInvalidRequest},
		{"missing file", PackageOptions{Files: []string{filepath.Join(t.TempDir(), "none.json")}, OutputDir: t.TempDir(), Reference: ref}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Package(ctx, tt.opts)
			if err == nil {
				t.Fatal("Package() expected error")
			}
			if code := errors.CodeOf(err); code != tt.code {
				t.Errorf("Package() code = %s, want %s", code, tt.code)
			}
		})
	}
}

func TestPackage_CreatesOCILayout(t *testing.T) {
	ctx := context.Background()
	jsonFile := writeSnapshotFile(t, "model.json", `{"digit":3,"max_value":100,"max_cost":2,"combinations":[]}`)
	yamlFile := writeSnapshotFile(t, "model.yaml", "digit: 3\nmax_value: 100\nmax_cost: 2\ncombinations: []\n")

	result, err := Package(ctx, PackageOptions{
		Files:                 []string{jsonFile, yamlFile},
		OutputDir:             t.TempDir(),
		Reference:             &Reference{Registry: "ghcr.io", Repository: "test/repo", Tag: "v1.0.0"},
		Annotations:           map[string]string{ociv1.AnnotationTitle: "test"},
		ReproducibleTimestamp: "2025-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if result.Reference != "ghcr.io/test/repo:v1.0.0" {
		t.Errorf("Package() reference = %q", result.Reference)
	}

	for _, name := range []string{"oci-layout", "index.json"} {
		if _, err := os.Stat(filepath.Join(result.StorePath, name)); err != nil {
			t.Errorf("Package() did not create %s: %v", name, err)
		}
	}

	manifestPath := filepath.Join(result.StorePath, "blobs", "sha256", strings.TrimPrefix(result.Digest, "sha256:"))
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	var manifest ociv1.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("failed to decode manifest: %v", err)
	}

	if manifest.ArtifactType != ArtifactType {
		t.Errorf("ArtifactType = %q, want %q", manifest.ArtifactType, ArtifactType)
	}
	if len(manifest.Layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(manifest.Layers))
	}
	if manifest.Layers[0].MediaType != MediaTypeSnapshotJSON || manifest.Layers[1].MediaType != MediaTypeSnapshotYAML {
		t.Errorf("unexpected layer media types: %s, %s", manifest.Layers[0].MediaType, manifest.Layers[1].MediaType)
	}
	if got := manifest.Layers[0].Annotations[ociv1.AnnotationTitle]; got != "model.json" {
		t.Errorf("layer title = %q, want model.json", got)
	}
	if got := manifest.Annotations[ociv1.AnnotationCreated]; got != "2025-01-01T00:00:00Z" {
		t.Errorf("created annotation = %q", got)
	}
}

func TestPackage_Reproducible(t *testing.T) {
	ctx := context.Background()
	file := writeSnapshotFile(t, "model.json", `{"digit":4}`)
	opts := PackageOptions{
		Files:                 []string{file},
		Reference:             &Reference{Registry: "ghcr.io", Repository: "test/repo", Tag: "v1"},
		ReproducibleTimestamp: "2025-01-01T00:00:00Z",
	}

	opts.OutputDir = t.TempDir()
	first, err := Package(ctx, opts)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	opts.OutputDir = t.TempDir()
	second, err := Package(ctx, opts)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if first.Digest != second.Digest {
		t.Errorf("digests differ: %s vs %s", first.Digest, second.Digest)
	}
}

func TestPushFromStore_Validation(t *testing.T) {
	ctx := context.Background()

	if _, err := PushFromStore(ctx, t.TempDir(), PushOptions{}); err == nil {
		t.Error("PushFromStore() without reference expected error")
	}

	bad := &Reference{Registry: "ghcr.io", Repository: "Bad/Repo", Tag: "v1"}
	if _, err := PushFromStore(ctx, t.TempDir(), PushOptions{Reference: bad}); err == nil {
		t.Error("PushFromStore() with invalid repository expected error")
	}
}

func TestCreateAuthClient(t *testing.T) {
	t.Setenv("DOCKER_CONFIG", t.TempDir())

	client, err := createAuthClient(false, true)
	if err != nil {
		t.Fatalf("createAuthClient() without docker config error = %v", err)
	}
	if _, err := client.Credential(context.Background(), "ghcr.io"); err != nil {
		t.Errorf("Credential() error = %v", err)
	}
}

func TestCreateAuthClient_MalformedDockerConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCKER_CONFIG", dir)

	if _, err := createAuthClient(false, false); !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("createAuthClient() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}

	ref := &Reference{Registry: "ghcr.io", Repository: "test/repo", Tag: "v1"}
	_, err := PushFromStore(context.Background(), t.TempDir(), PushOptions{Reference: ref})
	if code := errors.CodeOf(err); code != errors.ErrCodeInvalidConfig {
		t.Errorf("PushFromStore() code = %s, want %s", code, errors.ErrCodeInvalidConfig)
	}
}

func TestPushFromStore_Unreachable(t *testing.T) {
	t.Setenv("DOCKER_CONFIG", t.TempDir())
	ctx := context.Background()
	file := writeSnapshotFile(t, "model.json", `{"digit":5}`)
	ref := &Reference{Registry: "127.0.0.1:1", Repository: "test/repo", Tag: "v1"}

	pkg, err := Package(ctx, PackageOptions{Files: []string{file}, OutputDir: t.TempDir(), Reference: ref})
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	_, err = PushFromStore(ctx, pkg.StorePath, PushOptions{Reference: ref, PlainHTTP: true, Timeout: 5 * time.Second})
	if err == nil {
		t.Fatal("PushFromStore() to a closed port expected error")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeUnavailable {
		t.Errorf("PushFromStore() code = %s, want %s", code, errors.ErrCodeUnavailable)
	}
}
