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
	"net/http"
	"net/url"

	"github.com/NVIDIA/onedigit/pkg/engine"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/serializer"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

// SolveRequest describes one search. Omitted fields take the server's
// search defaults; Prior resumes from a stored snapshot.
type SolveRequest struct {
	Digit      int                `json:"digit" yaml:"digit"`
	MaxValue   int64              `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	MaxCost    int                `json:"max_cost,omitempty" yaml:"max_cost,omitempty"`
	MaxSteps   *int               `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	Operations []string           `json:"operations,omitempty" yaml:"operations,omitempty"`
	Prior      *snapshot.Snapshot `json:"prior,omitempty" yaml:"prior,omitempty"`
}

func (req *SolveRequest) config(base engine.Config) engine.Config {
	cfg := base
	cfg.Operations = append([]string(nil), base.Operations...)
	cfg.Digit = req.Digit
	if req.MaxValue != 0 {
		cfg.MaxValue = req.MaxValue
	}
	if req.MaxCost != 0 {
		cfg.MaxCost = req.MaxCost
	}
	if req.MaxSteps != nil {
		cfg.MaxSteps = *req.MaxSteps
	}
	if len(req.Operations) > 0 {
		cfg.Operations = req.Operations
	}
	return cfg
}

// parseSolveQuery reads a GET request. A literal + in a query string
// decodes to a space, so addition must be sent as %2B.
func parseSolveQuery(q url.Values) (*SolveRequest, error) {
	req := &SolveRequest{}
	if _, err := intParam(q, "digit", &req.Digit); err != nil {
		return nil, err
	}
	if _, err := intParam(q, "max_value", &req.MaxValue); err != nil {
		return nil, err
	}
	if _, err := intParam(q, "max_cost", &req.MaxCost); err != nil {
		return nil, err
	}
	var steps int
	set, err := intParam(q, "max_steps", &steps)
	if err != nil {
		return nil, err
	}
	if set {
		req.MaxSteps = &steps
	}
	req.Operations = listParam(q, "operations")
	return req, nil
}

// handleSolve runs a search and returns the resulting snapshot.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var (
		req *SolveRequest
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = parseSolveQuery(r.URL.Query())
	case http.MethodPost:
		req = &SolveRequest{}
		err = s.decodeBody(w, r, req)
	default:
		s.methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		return
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	format, err := responseFormat(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	cfg := req.config(s.config.Search)
	if cfg.MaxCost > s.config.MaxCost {
		s.writeFailure(w, r, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"max_cost exceeds the server limit",
			map[string]any{"max_cost": cfg.MaxCost, "limit": s.config.MaxCost}))
		return
	}

	eng, err := engine.New(cfg, engine.WithLogger(s.logger), engine.WithRunID(requestID(r)))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.SolveTimeout)
	defer cancel()

	res, err := eng.Run(ctx, req.Prior)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	serializer.Respond(w, http.StatusOK, format, res.Snapshot(s.config.Version))
}
