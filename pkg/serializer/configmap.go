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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/header"
)

// ConfigMapURIScheme prefixes ConfigMap locations: cm://namespace/name.
const ConfigMapURIScheme = "cm://"

// ConfigMap data keys besides the payload.
const (
	configMapFormatKey    = "format"
	configMapTimestampKey = "timestamp"
)

// IsConfigMapURI reports whether path names a ConfigMap.
func IsConfigMapURI(path string) bool {
	return strings.HasPrefix(strings.TrimSpace(path), ConfigMapURIScheme)
}

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap using
// server side apply, creating it when missing.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	opts      *options
}

// NewConfigMapWriter creates a writer for namespace/name. Table format is
// stored as text.
func NewConfigMapWriter(namespace, name string, format Format, opts ...Option) *ConfigMapWriter {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    format,
		opts:      newOptions(opts...),
	}
}

// Serialize stores v under data["<key>.<ext>"] together with the format and
// a timestamp. Header metadata, when v carries it, becomes labels.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	content, err := encode(w.format, v)
	if err != nil {
		return err
	}

	kind := header.KindSnapshot.String()
	version := "unknown"
	timestamp := time.Now().UTC().Format(time.RFC3339)
	if h, ok := v.(interface {
		GetKind() header.Kind
		GetMetadata() map[string]string
	}); ok {
		if k := h.GetKind(); k != "" {
			kind = k.String()
		}
		if md := h.GetMetadata(); md != nil {
			if s := md[header.MetadataVersion]; s != "" {
				version = s
			}
			if s := md[header.MetadataTimestamp]; s != "" {
				timestamp = s
			}
		}
	}

	c, err := w.opts.kube()
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to get kubernetes client", err)
	}

	configMap := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "onedigit",
			"app.kubernetes.io/component": strings.ToLower(kind),
			"app.kubernetes.io/version":   labelValue(version),
		}).
		WithData(map[string]string{
			w.dataKey():           string(content),
			configMapFormatKey:    string(w.format),
			configMapTimestampKey: timestamp,
		})

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"format", w.format,
		"bytes", len(content))

	_, err = c.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, configMap, metav1.ApplyOptions{
		FieldManager: FieldManager,
		Force:        true,
	})
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to apply ConfigMap", err,
			map[string]any{"namespace": w.namespace, "name": w.name})
	}
	return nil
}

// Close is a no-op.
func (w *ConfigMapWriter) Close() error {
	return nil
}

func (w *ConfigMapWriter) dataKey() string {
	return w.opts.configMapKey + "." + w.format.Extension()
}

// labelValue keeps a version usable as a label value.
func labelValue(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, s)
	if len(s) > 63 {
		s = s[:63]
	}
	return strings.Trim(s, "-_.")
}

// readConfigMap returns the payload of namespace/name and the format it
// was stored in.
func readConfigMap(ctx context.Context, namespace, name string, o *options) ([]byte, Format, error) {
	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	c, err := o.kube()
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeUnavailable, "failed to get kubernetes client", err)
	}

	cm, err := c.CoreV1().ConfigMaps(namespace).Get(readCtx, name, metav1.GetOptions{})
	if err != nil {
		code := errors.ErrCodeUnavailable
		if apierrors.IsNotFound(err) {
			code = errors.ErrCodeNotFound
		}
		return nil, "", errors.WrapWithContext(code, "failed to get ConfigMap", err,
			map[string]any{"namespace": namespace, "name": name})
	}

	format := FormatYAML
	if s, ok := cm.Data[configMapFormatKey]; ok && !Format(s).IsUnknown() {
		format = Format(s)
	}

	if content, ok := cm.Data[o.configMapKey+"."+format.Extension()]; ok {
		return []byte(content), format, nil
	}
	for _, f := range []Format{FormatYAML, FormatJSON} {
		if content, ok := cm.Data[o.configMapKey+"."+f.Extension()]; ok {
			return []byte(content), f, nil
		}
	}

	return nil, "", errors.NewWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("ConfigMap %s/%s has no %s data", namespace, name, o.configMapKey),
		map[string]any{"namespace": namespace, "name": name})
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme))
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, ConfigMapURIScheme), "/", 2)
	if len(parts) != 2 {
		return "", "", errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri))
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])

	if namespace == "" {
		return "", "", errors.New(errors.ErrCodeInvalidRequest, "invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" || strings.Contains(name, "/") {
		return "", "", errors.New(errors.ErrCodeInvalidRequest, "invalid ConfigMap URI: name must be a single path segment")
	}

	return namespace, name, nil
}
