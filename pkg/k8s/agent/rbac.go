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
	"slices"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

// The Job only writes its snapshot ConfigMap, so every grant is namespaced
// and the three RBAC objects share the ServiceAccount name.

// snapshotRule is the only permission the Job's pod holds.
var snapshotRule = rbacv1.PolicyRule{
	APIGroups: []string{""},
	Resources: []string{"configmaps"},
	Verbs:     []string{"create", "get", "update", "patch"},
}

func (d *Deployer) objectMeta() metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      d.config.ServiceAccountName,
		Namespace: d.config.Namespace,
		Labels: map[string]string{
			labelName: labelValue,
		},
	}
}

func (d *Deployer) serviceAccount() *corev1.ServiceAccount {
	return &corev1.ServiceAccount{ObjectMeta: d.objectMeta()}
}

func (d *Deployer) role() *rbacv1.Role {
	return &rbacv1.Role{
		ObjectMeta: d.objectMeta(),
		Rules:      []rbacv1.PolicyRule{snapshotRule},
	}
}

func (d *Deployer) roleBinding() *rbacv1.RoleBinding {
	return &rbacv1.RoleBinding{
		ObjectMeta: d.objectMeta(),
		Subjects: []rbacv1.Subject{{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      d.config.ServiceAccountName,
			Namespace: d.config.Namespace,
		}},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "Role",
			Name:     d.config.ServiceAccountName,
		},
	}
}

// ensureRBAC creates the ServiceAccount, Role and RoleBinding. Existing
// objects are kept, except that a Role with other rules is reset to
// snapshotRule.
func (d *Deployer) ensureRBAC(ctx context.Context) error {
	ns := d.config.Namespace
	steps := []struct {
		kind   string
		create func() error
	}{
		{"ServiceAccount", func() error {
			_, err := d.clientset.CoreV1().ServiceAccounts(ns).Create(ctx, d.serviceAccount(), metav1.CreateOptions{})
			return ignoreAlreadyExists(err)
		}},
		{"Role", func() error {
			_, err := d.clientset.RbacV1().Roles(ns).Create(ctx, d.role(), metav1.CreateOptions{})
			if err == nil || ignoreAlreadyExists(err) != nil {
				return err
			}
			return d.resetRole(ctx)
		}},
		{"RoleBinding", func() error {
			_, err := d.clientset.RbacV1().RoleBindings(ns).Create(ctx, d.roleBinding(), metav1.CreateOptions{})
			return ignoreAlreadyExists(err)
		}},
	}

	for _, s := range steps {
		if err := s.create(); err != nil {
			return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to create "+s.kind, err,
				map[string]any{"namespace": ns, "name": d.config.ServiceAccountName})
		}
	}
	return nil
}

func (d *Deployer) resetRole(ctx context.Context) error {
	roles := d.clientset.RbacV1().Roles(d.config.Namespace)
	existing, err := roles.Get(ctx, d.config.ServiceAccountName, metav1.GetOptions{})
	if err != nil {
		return err
	}
	want := d.role().Rules
	if slices.EqualFunc(existing.Rules, want, equalRule) {
		return nil
	}
	existing.Rules = want
	_, err = roles.Update(ctx, existing, metav1.UpdateOptions{})
	return err
}

func equalRule(a, b rbacv1.PolicyRule) bool {
	return slices.Equal(a.APIGroups, b.APIGroups) &&
		slices.Equal(a.Resources, b.Resources) &&
		slices.Equal(a.Verbs, b.Verbs) &&
		slices.Equal(a.ResourceNames, b.ResourceNames)
}

// deleteRBAC removes the RBAC objects, binding first. Missing objects are
// not an error.
func (d *Deployer) deleteRBAC(ctx context.Context) error {
	ns, name := d.config.Namespace, d.config.ServiceAccountName
	steps := []struct {
		kind   string
		delete func() error
	}{
		{"RoleBinding", func() error {
			return d.clientset.RbacV1().RoleBindings(ns).Delete(ctx, name, metav1.DeleteOptions{})
		}},
		{"Role", func() error {
			return d.clientset.RbacV1().Roles(ns).Delete(ctx, name, metav1.DeleteOptions{})
		}},
		{"ServiceAccount", func() error {
			return d.clientset.CoreV1().ServiceAccounts(ns).Delete(ctx, name, metav1.DeleteOptions{})
		}},
	}

	for _, s := range steps {
		if err := ignoreNotFound(s.delete()); err != nil {
			return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to delete "+s.kind, err,
				map[string]any{"namespace": ns, "name": name})
		}
	}
	return nil
}
