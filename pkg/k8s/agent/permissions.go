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
	"context"
	"fmt"
	"strings"

	authv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

// PermissionCheck is the result of one access review.
type PermissionCheck struct {
	Resource  string
	Verb      string
	Namespace string
	Allowed   bool
	Reason    string
}

// CheckPermissions reviews every permission Deploy, Run and Cleanup need.
// Missing permissions are a single UNAVAILABLE error listing all of them.
func (d *Deployer) CheckPermissions(ctx context.Context) ([]PermissionCheck, error) {
	required := []struct {
		resource string
		verb     string
	}{
		{"serviceaccounts", "create"},
		{"roles", "create"},
		{"rolebindings", "create"},
		{"jobs", "create"},
		{"jobs", "watch"},
		{"jobs", "delete"},
		{"configmaps", "get"},
		{"pods", "list"},
	}

	checks := make([]PermissionCheck, 0, len(required))
	var missing []string

	for _, r := range required {
		allowed, reason, err := d.checkPermission(ctx, r.resource, r.verb, d.config.Namespace)
		if err != nil {
			return checks, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to check permission", err,
				map[string]any{"resource": r.resource, "verb": r.verb})
		}

		checks = append(checks, PermissionCheck{
			Resource:  r.resource,
			Verb:      r.verb,
			Namespace: d.config.Namespace,
			Allowed:   allowed,
			Reason:    reason,
		})
		if !allowed {
			missing = append(missing, fmt.Sprintf("%s %s", r.verb, r.resource))
		}
	}

	if len(missing) > 0 {
		return checks, errors.NewWithContext(errors.ErrCodeUnavailable,
			fmt.Sprintf("insufficient permissions to deploy agent in namespace %q: %s",
				d.config.Namespace, strings.Join(missing, ", ")),
			map[string]any{"missing": missing})
	}

	return checks, nil
}

func (d *Deployer) checkPermission(ctx context.Context, resource, verb, namespace string) (bool, string, error) {
	review := &authv1.SelfSubjectAccessReview{
		Spec: authv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authv1.ResourceAttributes{
				Verb:      verb,
				Resource:  resource,
				Namespace: namespace,
			},
		},
	}

	result, err := d.clientset.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, "", err
	}

	return result.Status.Allowed, result.Status.Reason, nil
}
