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
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

const (
	// maxLogBytes caps the pod log attached to a failure.
	maxLogBytes = 16 << 10

	// maxLogLines is the tail requested from the API server.
	maxLogLines = int64(500)
)

// jobFinished reports whether job has a terminal condition, and its error
// when the condition is failure.
func jobFinished(job *batchv1.Job) (bool, error) {
	for _, condition := range job.Status.Conditions {
		if condition.Status != corev1.ConditionTrue {
			continue
		}
		switch condition.Type {
		case batchv1.JobComplete:
			return true, nil
		case batchv1.JobFailed:
			return true, errors.NewWithContext(errors.ErrCodeInternal,
				fmt.Sprintf("job failed: %s", condition.Message),
				map[string]any{"job": job.Name, "reason": condition.Reason})
		}
	}
	return false, nil
}

// waitForJobCompletion watches the Job. The current state is read after
// the watch is established so a Job that finished earlier is not missed.
func (d *Deployer) waitForJobCompletion(ctx context.Context, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	jobs := d.clientset.BatchV1().Jobs(d.config.Namespace)
	watcher, err := jobs.Watch(timeoutCtx, metav1.ListOptions{
		FieldSelector: fmt.Sprintf("metadata.name=%s", d.config.JobName),
		Watch:         true,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to watch Job", err)
	}
	defer watcher.Stop()

	if job, err := jobs.Get(timeoutCtx, d.config.JobName, metav1.GetOptions{}); err == nil {
		if done, jobErr := jobFinished(job); done {
			return jobErr
		}
	} else if ignoreNotFound(err) != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to get Job", err)
	}

	for {
		select {
		case <-timeoutCtx.Done():
			if ctx.Err() != nil {
				return errors.Wrap(errors.ErrCodeInternal, "wait cancelled", ctx.Err())
			}
			return errors.NewWithContext(errors.ErrCodeTimeout,
				fmt.Sprintf("timeout waiting for Job completion after %v", timeout),
				map[string]any{"job": d.config.JobName})

		case event, ok := <-watcher.ResultChan():
			if !ok {
				return errors.New(errors.ErrCodeUnavailable, "watch channel closed unexpectedly")
			}
			if event.Type == watch.Error {
				return errors.New(errors.ErrCodeUnavailable, fmt.Sprintf("watch error: %v", event.Object))
			}

			job, ok := event.Object.(*batchv1.Job)
			if !ok || job.Name != d.config.JobName {
				continue
			}
			if done, jobErr := jobFinished(job); done {
				return jobErr
			}
		}
	}
}

// GetPodLogs returns the end of the Job's pod log, at most maxLogLines
// lines and maxLogBytes bytes.
func (d *Deployer) GetPodLogs(ctx context.Context) (string, error) {
	pods, err := d.clientset.CoreV1().Pods(d.config.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("%s=%s,job-name=%s", labelName, labelValue, d.config.JobName),
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "failed to list Pods", err)
	}
	if len(pods.Items) == 0 {
		return "", errors.New(errors.ErrCodeNotFound, fmt.Sprintf("no Pods found for Job %s", d.config.JobName))
	}

	// There is only one Pod: completions and parallelism are 1.
	req := d.clientset.CoreV1().Pods(d.config.Namespace).GetLogs(pods.Items[0].Name, &corev1.PodLogOptions{
		TailLines: ptr.To(maxLogLines),
	})
	logs, err := req.Stream(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "failed to stream logs", err)
	}
	defer func() { _ = logs.Close() }()

	tail := &tailBuffer{max: maxLogBytes}
	if _, err := io.Copy(tail, logs); err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable, "failed to read logs", err)
	}
	return tail.String(), nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max       int
	buf       []byte
	truncated bool
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
		b.truncated = true
	}
	return len(p), nil
}

// String returns the kept bytes. After truncation the partial first line
// is dropped.
func (b *tailBuffer) String() string {
	out := b.buf
	if b.truncated {
		if i := bytes.IndexByte(out, '\n'); i >= 0 {
			out = out[i+1:]
		}
	}
	return string(out)
}

// parseConfigMapName splits cm://namespace/name.
func parseConfigMapName(uri string) (namespace, name string, err error) {
	path, ok := strings.CutPrefix(uri, serializer.ConfigMapURIScheme)
	if ok {
		namespace, name, ok = strings.Cut(path, "/")
	}
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid ConfigMap URI format: expected %snamespace/name, got %q",
				serializer.ConfigMapURIScheme, uri),
			map[string]any{"output": uri})
	}
	return namespace, name, nil
}
