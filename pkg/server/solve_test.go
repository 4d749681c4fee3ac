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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/NVIDIA/onedigit/pkg/header"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) *snapshot.Snapshot {
	t.Helper()
	var snap snapshot.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot %q: %v", rec.Body.String(), err)
	}
	return &snap
}

func values(snap *snapshot.Snapshot) []int64 {
	out := make([]int64, 0, len(snap.Combinations))
	for _, c := range snap.Sorted() {
		out = append(out, c.Value)
	}
	return out
}

func TestSolveGet(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet,
		"/v1/solve?digit=3&max_value=100&max_cost=4&max_steps=3&operations=%2B,-,!", nil)
	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	snap := decodeSnapshot(t, rec)
	want := []int64{3, 6, 9, 12, 15, 18, 21, 24}
	if got := values(snap); !slices.Equal(got, want) {
		t.Errorf("expected values %v, got %v", want, got)
	}
	if snap.Digit != 3 || snap.MaxValue != 100 || snap.MaxCost != 4 {
		t.Errorf("unexpected bounds digit=%d max_value=%d max_cost=%d", snap.Digit, snap.MaxValue, snap.MaxCost)
	}

	id := rec.Header().Get("X-Request-Id")
	if id == "" {
		t.Fatal("expected X-Request-Id header")
	}
	if got := snap.Metadata[header.MetadataRunID]; got != id {
		t.Errorf("expected run id %s to match request id, got %s", id, got)
	}
	if got := snap.Metadata[header.MetadataVersion]; got != "test" {
		t.Errorf("expected version test, got %s", got)
	}
}

func TestSolveRepeatedOperations(t *testing.T) {
	s := newTestServer()

	rec := serve(s, httptest.NewRequest(http.MethodGet,
		"/v1/solve?digit=3&max_value=100&max_cost=2&max_steps=3&operations=%2B&operations=-&operations=fact", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if got := decodeSnapshot(t, rec).Metadata[header.MetadataOperations]; got != "!,+,-" {
		t.Errorf("expected canonical operations !,+,-, got %s", got)
	}
}

func TestSolvePost(t *testing.T) {
	s := newTestServer()

	body := `{"digit": 3, "max_value": 100, "max_cost": 2, "max_steps": 0, "operations": ["+", "-", "!"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	// max_steps 0 returns the seed only.
	if got := values(decodeSnapshot(t, rec)); !slices.Equal(got, []int64{3}) {
		t.Errorf("expected only the seed, got %v", got)
	}
}

func TestSolvePostWithPrior(t *testing.T) {
	s := newTestServer()

	seed := serve(s, httptest.NewRequest(http.MethodGet,
		"/v1/solve?digit=3&max_value=100&max_cost=2&max_steps=1&operations=%2B,-,!", nil))
	if seed.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, seed.Code)
	}
	prior := decodeSnapshot(t, seed)

	payload, err := json.Marshal(SolveRequest{
		Digit:      3,
		MaxValue:   100,
		MaxCost:    4,
		MaxSteps:   intPtr(2),
		Operations: []string{"+", "-", "!"},
		Prior:      prior,
	})
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	want := []int64{3, 6, 9, 12, 15, 18, 21, 24}
	if got := values(decodeSnapshot(t, rec)); !slices.Equal(got, want) {
		t.Errorf("expected resumed values %v, got %v", want, got)
	}
}

func TestSolveYAML(t *testing.T) {
	s := newTestServer()

	body := "digit: 4\nmax_steps: 1\n"
	req := httptest.NewRequest(http.MethodPost, "/v1/solve?format=yaml", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	rec := serve(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("expected application/yaml, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "digit: 4") {
		t.Errorf("expected YAML snapshot, got %s", rec.Body.String())
	}
}

func TestSolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"missing digit", http.MethodGet, "/v1/solve", "", http.StatusBadRequest, "INVALID_CONFIG"},
		{"digit out of range", http.MethodGet, "/v1/solve?digit=12", "", http.StatusBadRequest, "INVALID_CONFIG"},
		{"non numeric digit", http.MethodGet, "/v1/solve?digit=abc", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"non numeric steps", http.MethodGet, "/v1/solve?digit=3&max_steps=x", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"cost over server limit", http.MethodGet, "/v1/solve?digit=3&max_cost=7", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown operation", http.MethodGet, "/v1/solve?digit=3&operations=mod", "", http.StatusBadRequest, "INVALID_CONFIG"},
		{"table format", http.MethodGet, "/v1/solve?digit=3&format=table", "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad body", http.MethodPost, "/v1/solve", "{", http.StatusBadRequest, "INVALID_REQUEST"},
		{"wrong prior digit", http.MethodPost, "/v1/solve",
			`{"digit": 3, "prior": {"digit": 4, "max_value": 10, "max_cost": 1, "combinations": []}}`,
			http.StatusBadRequest, "INVALID_SNAPSHOT"},
		{"method", http.MethodPut, "/v1/solve", "", http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			resp := decodeError(t, rec)
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
			if resp.RequestID == "" {
				t.Error("expected request id in error response")
			}
		})
	}
}

func TestSolveDeadline(t *testing.T) {
	s := newTestServer()

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/solve?digit=3&max_steps=2", nil).WithContext(ctx)
	rec := serve(s, req)
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected status %d, got %d: %s", http.StatusGatewayTimeout, rec.Code, rec.Body.String())
	}
	resp := decodeError(t, rec)
	if resp.Code != "TIMEOUT" || !resp.Retryable {
		t.Errorf("expected retryable TIMEOUT, got %+v", resp)
	}
}

func TestSolveRequestConfig(t *testing.T) {
	s := newTestServer()
	base := s.config.Search

	cfg := (&SolveRequest{Digit: 5}).config(base)
	if cfg.Digit != 5 || cfg.MaxValue != base.MaxValue || cfg.MaxSteps != base.MaxSteps {
		t.Errorf("expected defaults with digit 5, got %+v", cfg)
	}

	cfg = (&SolveRequest{Digit: 5, MaxSteps: intPtr(0), Operations: []string{"sqrt"}}).config(base)
	if cfg.MaxSteps != 0 {
		t.Errorf("expected explicit max_steps 0, got %d", cfg.MaxSteps)
	}
	if !slices.Equal(cfg.Operations, []string{"sqrt"}) {
		t.Errorf("expected operations [sqrt], got %v", cfg.Operations)
	}
}

func intPtr(v int) *int {
	return &v
}
