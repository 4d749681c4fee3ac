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

	corev1 "k8s.io/api/core/v1"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

// ParseNodeSelectors parses node selector strings in format "key=value".
func ParseNodeSelectors(selectors []string) (map[string]string, error) {
	if len(selectors) == 0 {
		return nil, nil
	}
	result := make(map[string]string, len(selectors))
	for _, s := range selectors {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid node selector %q, expected key=value", s),
				map[string]any{"selector": s})
		}
		result[key] = value
	}
	return result, nil
}

// ParseTolerations parses "key=value:effect" (Equal) or "key:effect"
// (Exists) strings. No input yields no tolerations.
func ParseTolerations(tolerations []string) ([]corev1.Toleration, error) {
	if len(tolerations) == 0 {
		return nil, nil
	}

	result := make([]corev1.Toleration, 0, len(tolerations))
	for _, t := range tolerations {
		spec, effect, ok := strings.Cut(t, ":")
		if !ok || spec == "" || strings.Contains(effect, ":") {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid toleration %q, expected key=value:effect or key:effect", t),
				map[string]any{"toleration": t})
		}

		switch corev1.TaintEffect(effect) {
		case corev1.TaintEffectNoSchedule, corev1.TaintEffectPreferNoSchedule, corev1.TaintEffectNoExecute:
		default:
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid toleration effect %q", effect),
				map[string]any{"toleration": t})
		}

		toleration := corev1.Toleration{
			Effect:   corev1.TaintEffect(effect),
			Operator: corev1.TolerationOpExists,
		}
		if key, value, hasValue := strings.Cut(spec, "="); hasValue {
			toleration.Key = key
			toleration.Value = value
			toleration.Operator = corev1.TolerationOpEqual
		} else {
			toleration.Key = spec
		}
		result = append(result, toleration)
	}
	return result, nil
}
