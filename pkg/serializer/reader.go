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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

// FormatFromPath determines the serialization format based on file extension.
// Supported extensions:
//   - .json → FormatJSON
//   - .yaml, .yml → FormatYAML
//   - .table, .txt → FormatTable
//
// Returns FormatJSON as default for unknown extensions.
// Extension matching is case-insensitive; URL query strings are ignored.
func FormatFromPath(filePath string) Format {
	lowerPath := strings.ToLower(filePath)
	if u, err := url.Parse(lowerPath); err == nil && u.Scheme != "" && u.Path != "" {
		lowerPath = u.Path
	}
	switch {
	case strings.HasSuffix(lowerPath, ".json"):
		return FormatJSON
	case strings.HasSuffix(lowerPath, ".yaml"), strings.HasSuffix(lowerPath, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lowerPath, ".table"), strings.HasSuffix(lowerPath, ".txt"):
		return FormatTable
	default:
		slog.Debug("unknown file extension, defaulting to JSON", "filePath", filePath)
		return FormatJSON
	}
}

// Reader decodes JSON or YAML from an io.Reader.
// Close releases the underlying source when it is closeable.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader creates a Reader for input. Table format cannot be read back.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	if format.IsUnknown() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown format: %s", format))
	}
	if format == FormatTable {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "table format does not support deserialization")
	}

	r := &Reader{
		format: format,
		input:  input,
	}
	if closer, ok := input.(io.Closer); ok {
		r.closer = closer
	}
	return r, nil
}

// NewFileReader opens filePath for reading. http:// and https:// locations
// are fetched into memory first.
func NewFileReader(ctx context.Context, format Format, filePath string, opts ...Option) (*Reader, error) {
	if isURL(filePath) {
		data, err := newOptions(opts...).http().ReadWithContext(ctx, filePath)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to download remote file", err,
				map[string]any{"url": filePath})
		}
		return NewReader(format, bytes.NewReader(data))
	}

	file, err := os.Open(filePath)
	if err != nil {
		code := errors.ErrCodeInternal
		if os.IsNotExist(err) {
			code = errors.ErrCodeNotFound
		}
		return nil, errors.WrapWithContext(code, "failed to open file", err, map[string]any{"path": filePath})
	}

	r, err := NewReader(format, file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

// Deserialize decodes the input into v, which must be a pointer.
func (r *Reader) Deserialize(v any) error {
	if r == nil {
		return errors.New(errors.ErrCodeInternal, "reader is nil")
	}
	if r.input == nil {
		return errors.New(errors.ErrCodeInternal, "input source is nil")
	}

	switch r.format {
	case FormatJSON:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode JSON", err)
		}
		return nil
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode YAML", err)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unsupported format for deserialization: %s", r.format))
	}
}

// Close releases the underlying source. It is safe to call more than once.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// FromFile reads a T from a local path, an http(s) URL or a
// cm://namespace/name ConfigMap URI. The format comes from the extension
// for paths and URLs and from the ConfigMap's format key otherwise.
//
//	snap, err := FromFile[snapshot.Snapshot](ctx, "cm://default/onedigit-3")
func FromFile[T any](ctx context.Context, path string, opts ...Option) (*T, error) {
	r, err := openSource(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			slog.Warn("failed to close reader", "error", closeErr)
		}
	}()

	var v T
	if err := r.Deserialize(&v); err != nil {
		return nil, errors.WrapWithContext(errors.CodeOf(err), "failed to deserialize", err,
			map[string]any{"path": path})
	}
	return &v, nil
}

// openSource resolves path to a Reader in the format its source declares.
func openSource(ctx context.Context, path string, opts ...Option) (*Reader, error) {
	if !IsConfigMapURI(path) {
		format := FormatFromPath(path)
		slog.Debug("determined file format", "path", path, "format", format)
		return NewFileReader(ctx, format, path, opts...)
	}

	namespace, name, err := parseConfigMapURI(path)
	if err != nil {
		return nil, err
	}
	content, format, err := readConfigMap(ctx, namespace, name, newOptions(opts...))
	if err != nil {
		return nil, err
	}
	slog.Debug("reading from ConfigMap", "namespace", namespace, "name", name,
		"format", format, "size", len(content))
	return NewReader(format, bytes.NewReader(content))
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
