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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{
			name:          "valid URI",
			uri:           "cm://default/onedigit-3",
			wantNamespace: "default",
			wantName:      "onedigit-3",
		},
		{
			name:          "valid URI with spaces",
			uri:           "cm://search / onedigit-3 ",
			wantNamespace: "search",
			wantName:      "onedigit-3",
		},
		{name: "missing scheme", uri: "default/onedigit", wantErr: true},
		{name: "wrong scheme", uri: "http://default/onedigit", wantErr: true},
		{name: "missing name", uri: "cm://default/", wantErr: true},
		{name: "missing namespace", uri: "cm:///onedigit", wantErr: true},
		{name: "missing separator", uri: "cm://default", wantErr: true},
		{name: "nested name", uri: "cm://default/a/b", wantErr: true},
		{name: "empty URI", uri: "", wantErr: true},
		{name: "only scheme", uri: "cm://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			namespace, name, err := parseConfigMapURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamespace, namespace)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestNewConfigMapWriter(t *testing.T) {
	w := NewConfigMapWriter("default", "onedigit", Format("unknown"))
	assert.Equal(t, FormatJSON, w.format)
	assert.Equal(t, "snapshot.json", w.dataKey())

	w = NewConfigMapWriter("default", "onedigit", FormatYAML, WithConfigMapKey("config"))
	assert.Equal(t, "config.yaml", w.dataKey())
	require.NoError(t, w.Close())
}

func TestConfigMapRoundTrip(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewClientset()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			uri := "cm://default/onedigit-" + string(format)
			s, err := NewFileWriter(format, uri, WithKubeClient(clientset))
			require.NoError(t, err)

			want := sampleDocument()
			require.NoError(t, s.Serialize(ctx, want))

			cm, err := clientset.CoreV1().ConfigMaps("default").Get(ctx, "onedigit-"+string(format), metav1.GetOptions{})
			require.NoError(t, err)
			assert.Equal(t, string(format), cm.Data["format"])
			assert.Contains(t, cm.Data, "snapshot."+format.Extension())
			assert.Equal(t, "onedigit", cm.Labels["app.kubernetes.io/name"])
			assert.Equal(t, "snapshot", cm.Labels["app.kubernetes.io/component"])
			assert.Equal(t, "v0.0.1", cm.Labels["app.kubernetes.io/version"])

			got, err := FromFile[document](ctx, uri, WithKubeClient(clientset))
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		})
	}
}

func TestFromConfigMapFallbackKey(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "legacy", Namespace: "default"},
		Data: map[string]string{
			"snapshot.json": `{"digit": 8, "entries": []}`,
		},
	})

	got, err := FromFile[document](ctx, "cm://default/legacy", WithKubeClient(clientset))
	require.NoError(t, err)
	assert.Equal(t, 8, got.Digit)
}

func TestFromConfigMapErrors(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "empty", Namespace: "default"},
		Data:       map[string]string{"other": "x"},
	})

	_, err := FromFile[document](ctx, "cm://default/missing", WithKubeClient(clientset))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = FromFile[document](ctx, "cm://default/empty", WithKubeClient(clientset))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestLabelValue(t *testing.T) {
	assert.Equal(t, "v1.2.3", labelValue("v1.2.3"))
	assert.Equal(t, "v1.2.3-dirty", labelValue("v1.2.3+dirty"))
	assert.Len(t, labelValue(string(make([]byte, 100))), 0)
}
