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

package server

import (
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

// decodeBody reads a JSON or YAML body, chosen by Content-Type, into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	reader, err := serializer.NewReader(bodyFormat(r.Header.Get("Content-Type")), body)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	if err := reader.Deserialize(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode request body", err)
	}
	return nil
}

func bodyFormat(contentType string) serializer.Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return serializer.FormatJSON
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return serializer.FormatYAML
	default:
		return serializer.FormatJSON
	}
}

// responseFormat reads the format query parameter; json is the default.
func responseFormat(r *http.Request) (serializer.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return serializer.FormatJSON, nil
	}
	format, err := serializer.ParseFormat(raw)
	if err != nil || format == serializer.FormatTable {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest, "unsupported response format",
			map[string]any{"format": raw, "supported": []string{"json", "yaml"}})
	}
	return format, nil
}

// intParam parses an optional integer query parameter into dst.
func intParam[T int | int64](q url.Values, key string, dst *T) (bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return false, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, errors.NewWithContext(errors.ErrCodeInvalidRequest, "parameter must be an integer",
			map[string]any{"parameter": key, "value": raw})
	}
	*dst = T(n)
	return true, nil
}

// listParam collects a repeated or comma separated query parameter.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
