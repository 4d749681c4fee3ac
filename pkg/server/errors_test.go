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
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code      errors.ErrorCode
		status    int
		retryable bool
	}{
		{errors.ErrCodeInvalidRequest, http.StatusBadRequest, false},
		{errors.ErrCodeInvalidConfig, http.StatusBadRequest, false},
		{errors.ErrCodeInvalidSnapshot, http.StatusBadRequest, false},
		{errors.ErrCodeNotFound, http.StatusNotFound, false},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{errors.ErrCodeUnavailable, http.StatusServiceUnavailable, true},
		{errors.ErrCodeInternal, http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			status, retryable := statusFor(tt.code)
			if status != tt.status || retryable != tt.retryable {
				t.Errorf("statusFor(%s) = %d, %v; want %d, %v", tt.code, status, retryable, tt.status, tt.retryable)
			}
		})
	}
}

func TestWriteFailure(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/solve", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-1"))

	rec := httptest.NewRecorder()
	s.writeFailure(rec, req, errors.WrapWithContext(errors.ErrCodeInvalidSnapshot, "bad snapshot",
		stderrors.New("digit mismatch"), map[string]any{"digit": 3}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != string(errors.ErrCodeInvalidSnapshot) || resp.Message != "bad snapshot" {
		t.Errorf("unexpected error response %+v", resp)
	}
	if resp.RequestID != "req-1" {
		t.Errorf("expected request id req-1, got %q", resp.RequestID)
	}
	if resp.Details["cause"] != "digit mismatch" {
		t.Errorf("expected cause in details, got %v", resp.Details)
	}
	if resp.Details["digit"] != float64(3) {
		t.Errorf("expected context in details, got %v", resp.Details)
	}
}

func TestWriteFailureUnstructured(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.writeFailure(rec, httptest.NewRequest(http.MethodGet, "/v1/solve", nil), stderrors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Message != "internal server error" || !resp.Retryable {
		t.Errorf("unexpected error response %+v", resp)
	}
	if resp.RequestID == "" {
		t.Error("expected a generated request id")
	}
}
