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
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

const (
	// jobDeletionTimeout bounds the wait for a previous Job to disappear.
	jobDeletionTimeout = 30 * time.Second

	// jobTTL keeps a finished Job around long enough to read its logs.
	jobTTL = int32(3600)

	// nonRootID is the distroless nonroot user and group.
	nonRootID = int64(65532)

	tmpVolume = "tmp"
)

// solverResources sizes the container for the registry of a full search.
var solverResources = corev1.ResourceRequirements{
	Requests: corev1.ResourceList{
		corev1.ResourceCPU:    resource.MustParse("500m"),
		corev1.ResourceMemory: resource.MustParse("512Mi"),
	},
	Limits: corev1.ResourceList{
		corev1.ResourceCPU:    resource.MustParse("2"),
		corev1.ResourceMemory: resource.MustParse("4Gi"),
	},
}

// ensureJob replaces any Job of the same name with a freshly built one.
func (d *Deployer) ensureJob(ctx context.Context) error {
	deleted, err := d.removeJob(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to delete existing Job", err)
	}
	if deleted {
		if err := d.waitForJobDeletion(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, "timeout waiting for Job deletion", err)
		}
	}

	jobs := d.clientset.BatchV1().Jobs(d.config.Namespace)
	if _, err := jobs.Create(ctx, d.buildJob(), metav1.CreateOptions{}); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to create Job", err)
	}
	return nil
}

// containerArgs are the onedigit arguments the container runs.
func (d *Deployer) containerArgs() []string {
	var args []string
	if d.config.LogLevel != "" {
		args = append(args, "--log-level", d.config.LogLevel)
	}
	args = append(args, "solve", "--quiet", "--output", d.config.Output)
	return append(args, d.config.Args...)
}

func (d *Deployer) buildJob() *batchv1.Job {
	labels := map[string]string{labelName: labelValue}

	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.config.JobName,
			Namespace: d.config.Namespace,
			Labels:    labels,
		},
		Spec: batchv1.JobSpec{
			Completions:             ptr.To(int32(1)),
			Parallelism:             ptr.To(int32(1)),
			CompletionMode:          ptr.To(batchv1.NonIndexedCompletion),
			BackoffLimit:            ptr.To(int32(0)),
			TTLSecondsAfterFinished: ptr.To(jobTTL),
			ActiveDeadlineSeconds:   ptr.To(int64(d.config.Timeout.Seconds())),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       d.podSpec(),
			},
		},
	}
}

func (d *Deployer) podSpec() corev1.PodSpec {
	return corev1.PodSpec{
		ServiceAccountName: d.config.ServiceAccountName,
		RestartPolicy:      corev1.RestartPolicyNever,
		NodeSelector:       d.config.NodeSelector,
		Tolerations:        d.config.Tolerations,
		ImagePullSecrets:   toLocalObjectReferences(d.config.ImagePullSecrets),
		SecurityContext: &corev1.PodSecurityContext{
			RunAsNonRoot:   ptr.To(true),
			RunAsUser:      ptr.To(nonRootID),
			RunAsGroup:     ptr.To(nonRootID),
			SeccompProfile: &corev1.SeccompProfile{Type: corev1.SeccompProfileTypeRuntimeDefault},
		},
		Containers: []corev1.Container{d.solverContainer()},
		// The root filesystem is read-only, /tmp is the only scratch space.
		Volumes: []corev1.Volume{{
			Name:         tmpVolume,
			VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}},
		}},
	}
}

func (d *Deployer) solverContainer() corev1.Container {
	return corev1.Container{
		Name:      labelValue,
		Image:     d.config.Image,
		Args:      d.containerArgs(),
		Resources: *solverResources.DeepCopy(),
		SecurityContext: &corev1.SecurityContext{
			AllowPrivilegeEscalation: ptr.To(false),
			ReadOnlyRootFilesystem:   ptr.To(true),
			Capabilities:             &corev1.Capabilities{Drop: []corev1.Capability{"ALL"}},
		},
		VolumeMounts: []corev1.VolumeMount{{Name: tmpVolume, MountPath: "/tmp"}},
	}
}

// removeJob deletes the Job and its pods. It reports whether a Job existed.
func (d *Deployer) removeJob(ctx context.Context) (bool, error) {
	err := d.clientset.BatchV1().Jobs(d.config.Namespace).Delete(ctx, d.config.JobName,
		metav1.DeleteOptions{PropagationPolicy: ptr.To(metav1.DeletePropagationForeground)})
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return true, nil
}

func (d *Deployer) deleteJob(ctx context.Context) error {
	_, err := d.removeJob(ctx)
	return err
}

func (d *Deployer) waitForJobDeletion(ctx context.Context) error {
	jobs := d.clientset.BatchV1().Jobs(d.config.Namespace)
	return wait.PollUntilContextTimeout(ctx, 500*time.Millisecond, jobDeletionTimeout, true,
		func(ctx context.Context) (bool, error) {
			_, err := jobs.Get(ctx, d.config.JobName, metav1.GetOptions{})
			switch {
			case err == nil:
				return false, nil
			case ignoreNotFound(err) == nil:
				return true, nil
			default:
				return false, err
			}
		},
	)
}

func toLocalObjectReferences(names []string) []corev1.LocalObjectReference {
	if len(names) == 0 {
		return nil
	}
	refs := make([]corev1.LocalObjectReference, 0, len(names))
	for _, name := range names {
		refs = append(refs, corev1.LocalObjectReference{Name: name})
	}
	return refs
}
