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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

func TestNewHttpReaderDefaults(t *testing.T) {
	r := NewHttpReader()
	assert.Equal(t, HttpReaderUserAgent, r.UserAgent)
	require.NotNil(t, r.Client)
	assert.Equal(t, r.TotalTimeout, r.Client.Timeout)

	tr, ok := r.Client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.False(t, tr.TLSClientConfig.InsecureSkipVerify)
}

func TestNewHttpReaderOptions(t *testing.T) {
	r := NewHttpReader(
		WithUserAgent("test/1.0"),
		WithTotalTimeout(3*time.Second),
		WithInsecureSkipVerify(true),
	)
	assert.Equal(t, "test/1.0", r.UserAgent)
	assert.Equal(t, 3*time.Second, r.Client.Timeout)
	tr := r.Client.Transport.(*http.Transport)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)

	custom := &http.Client{}
	r = NewHttpReader(WithClient(custom))
	assert.Same(t, custom, r.Client)
}

func TestReadWithContext(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotAgent = req.UserAgent()
		if req.URL.Path == "/missing.json" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte(`{"digit": 7}`))
	}))
	t.Cleanup(srv.Close)

	r := NewHttpReader()
	data, err := r.ReadWithContext(context.Background(), srv.URL+"/model.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"digit": 7}`, string(data))
	assert.Equal(t, HttpReaderUserAgent, gotAgent)

	_, err = r.ReadWithContext(context.Background(), srv.URL+"/missing.json")
	require.Error(t, err)

	_, err = r.ReadWithContext(context.Background(), "")
	require.Error(t, err)
}

func TestFromFileURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/down.yaml" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("digit: 5\nentries:\n  - value: 5\n    expr: \"5\"\n"))
	}))
	t.Cleanup(srv.Close)

	got, err := FromFile[document](context.Background(), srv.URL+"/model.yaml")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Digit)
	require.Len(t, got.Entries, 1)

	_, err = FromFile[document](context.Background(), srv.URL+"/down.yaml",
		WithHTTPReader(NewHttpReader(WithTotalTimeout(time.Second))))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnavailable))
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name        string
		format      Format
		contentType string
		body        string
	}{
		{"json", FormatJSON, "application/json", "\"digit\": 4"},
		{"yaml", FormatYAML, "application/yaml", "digit: 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Respond(rec, http.StatusCreated, tt.format, document{Digit: 4})

			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRespondEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
