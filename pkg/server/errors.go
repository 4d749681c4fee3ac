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
	stderrors "errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/serializer"
)

// Codes used only by the HTTP layer. Handler failures carry the
// pkg/errors code of the underlying error.
const (
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code      string         `json:"code" yaml:"code"`
	Message   string         `json:"message" yaml:"message"`
	Details   map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	RequestID string         `json:"requestId" yaml:"requestId"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Retryable bool           `json:"retryable" yaml:"retryable"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, statusCode int,
	code, message string, retryable bool, details map[string]any) {

	id := requestID(r)
	if id == "" {
		id = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: id,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// writeFailure maps err to a status code through its structured error code.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var se *errors.StructuredError
	if !stderrors.As(err, &se) {
		s.logger.Error("request failed", "requestID", requestID(r), "error", err)
		s.writeError(w, r, http.StatusInternalServerError, string(errors.ErrCodeInternal),
			"internal server error", true, nil)
		return
	}

	status, retryable := statusFor(se.Code)
	details := maps.Clone(se.Context)
	if se.Cause != nil {
		if details == nil {
			details = map[string]any{}
		}
		details["cause"] = se.Cause.Error()
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "requestID", requestID(r), "error", err)
	}
	s.writeError(w, r, status, string(se.Code), se.Message, retryable, details)
}

func statusFor(code errors.ErrorCode) (status int, retryable bool) {
	switch code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidSnapshot:
		return http.StatusBadRequest, false
	case errors.ErrCodeNotFound:
		return http.StatusNotFound, false
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, true
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, true
	default:
		return http.StatusInternalServerError, true
	}
}
