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
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	ocilayout "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
)

const (
	// ArtifactType identifies onedigit snapshot artifacts.
	ArtifactType = "application/vnd.nvidia.onedigit.snapshot"

	// MediaTypeSnapshotJSON is the layer media type of a JSON snapshot.
	MediaTypeSnapshotJSON = "application/vnd.nvidia.onedigit.snapshot.v1+json"

	// MediaTypeSnapshotYAML is the layer media type of a YAML snapshot.
	MediaTypeSnapshotYAML = "application/vnd.nvidia.onedigit.snapshot.v1+yaml"
)

// PackageOptions configures local packaging.
type PackageOptions struct {
	// Files are the snapshot files stored as layers, one per file.
	Files []string
	// OutputDir receives the OCI image layout.
	OutputDir string
	// Reference names the artifact. Only the tag is used locally.
	Reference *Reference
	// Annotations are set on the manifest.
	Annotations map[string]string
	// ReproducibleTimestamp fixes the manifest creation annotation.
	ReproducibleTimestamp string
}

// PackageResult describes a packaged artifact.
type PackageResult struct {
	Digest    string
	Reference string
	StorePath string
}

// PushOptions configures a push from a local layout to a registry.
type PushOptions struct {
	Reference   *Reference
	PlainHTTP   bool
	InsecureTLS bool
	// Timeout bounds the push, defaults.OCIPushTimeout when zero.
	Timeout time.Duration
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Digest    string
	Reference string
}

// MediaTypeFor returns the layer media type for a snapshot file.
func MediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return MediaTypeSnapshotYAML
	default:
		return MediaTypeSnapshotJSON
	}
}

// Package stores files as an OCI artifact in an image layout under
// OutputDir and tags it with the reference tag.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	if opts.Reference == nil || opts.Reference.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "tag is required for OCI packaging")
	}
	if len(opts.Files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "at least one file is required for OCI packaging")
	}

	staging, err := os.MkdirTemp("", "onedigit-oci-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create staging directory", err)
	}
	defer os.RemoveAll(staging)

	fs, err := file.New(staging)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	layers := make([]ociv1.Descriptor, 0, len(opts.Files))
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to resolve file", err,
				map[string]any{"file": f})
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "snapshot file not found", err,
				map[string]any{"file": f})
		}
		desc, err := fs.Add(ctx, filepath.Base(abs), MediaTypeFor(abs), abs)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to add file to store", err,
				map[string]any{"file": f})
		}
		layers = append(layers, desc)
	}

	packOpts := oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: map[string]string{},
	}
	for k, v := range opts.Annotations {
		packOpts.ManifestAnnotations[k] = v
	}
	if opts.ReproducibleTimestamp != "" {
		packOpts.ManifestAnnotations[ociv1.AnnotationCreated] = opts.ReproducibleTimestamp
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, packOpts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to pack manifest", err)
	}
	tag := opts.Reference.Tag
	if err := fs.Tag(ctx, manifestDesc, tag); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to tag manifest in file store", err)
	}

	storePath, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve output directory", err)
	}
	store, err := ocilayout.New(storePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create OCI layout store", err)
	}

	desc, err := oras.Copy(ctx, fs, tag, store, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to copy artifact into OCI layout", err)
	}

	slog.Debug("packaged OCI artifact",
		"reference", opts.Reference.ImageReference(),
		"digest", desc.Digest.String(),
		"layers", len(layers),
		"store_path", storePath)

	return &PackageResult{
		Digest:    desc.Digest.String(),
		Reference: opts.Reference.ImageReference(),
		StorePath: storePath,
	}, nil
}

// PushFromStore copies the tagged artifact from the OCI layout at
// storePath to the remote repository. Docker credential helpers supply
// authentication.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	if opts.Reference == nil || opts.Reference.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}
	ref := opts.Reference
	if err := ValidateRegistryReference(ref.Registry, ref.Repository); err != nil {
		return nil, err
	}

	store, err := ocilayout.New(storePath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to open OCI layout store", err,
			map[string]any{"path": storePath})
	}

	host := stripProtocol(ref.Registry)
	repo, err := remote.NewRepository(host + "/" + ref.Repository)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	client, err := createAuthClient(opts.PlainHTTP, opts.InsecureTLS)
	if err != nil {
		return nil, err
	}
	repo.Client = client

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaults.OCIPushTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	desc, err := oras.Copy(ctx, store, ref.Tag, repo, ref.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to push artifact to registry", err,
			map[string]any{"reference": ref.ImageReference()})
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: host + "/" + ref.Repository + ":" + ref.Tag,
	}, nil
}

// PublishOptions configures Publish.
type PublishOptions struct {
	Files       []string
	Reference   *Reference
	Version     string
	Digit       int
	PlainHTTP   bool
	InsecureTLS bool
}

// Publish packages files into a temporary layout and pushes it.
func Publish(ctx context.Context, opts PublishOptions) (*PushResult, error) {
	dir, err := os.MkdirTemp("", "onedigit-layout-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create layout directory", err)
	}
	defer os.RemoveAll(dir)

	annotations := map[string]string{
		ociv1.AnnotationTitle:   "onedigit snapshot",
		ociv1.AnnotationVendor:  "NVIDIA",
		ociv1.AnnotationVersion: opts.Version,
		ociv1.AnnotationSource:  "https://github.com/NVIDIA/onedigit",
	}
	if opts.Digit > 0 {
		annotations["com.nvidia.onedigit.digit"] = strconv.Itoa(opts.Digit)
	}

	slog.Info("packaging snapshot as OCI artifact",
		"registry", opts.Reference.Registry,
		"repository", opts.Reference.Repository,
		"tag", opts.Reference.Tag)

	pkg, err := Package(ctx, PackageOptions{
		Files:       opts.Files,
		OutputDir:   dir,
		Reference:   opts.Reference,
		Annotations: annotations,
	})
	if err != nil {
		return nil, err
	}

	res, err := PushFromStore(ctx, pkg.StorePath, PushOptions{
		Reference:   opts.Reference,
		PlainHTTP:   opts.PlainHTTP,
		InsecureTLS: opts.InsecureTLS,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("snapshot published", "reference", res.Reference, "digest", res.Digest)
	return res, nil
}

// createAuthClient reads credentials from the docker config ($DOCKER_CONFIG
// or ~/.docker). A missing config is fine, a malformed one is not.
func createAuthClient(plainHTTP, insecureTLS bool) (*auth.Client, error) {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to load docker credentials", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	return &auth.Client{
		Client:     &http.Client{Transport: transport},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}, nil
}
