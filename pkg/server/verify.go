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
	"net/http"

	"github.com/NVIDIA/onedigit/pkg/serializer"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

// handleVerify re-evaluates every expression of the posted snapshot. A
// snapshot with failing entries still gets 200; the report lists them.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	snap := &snapshot.Snapshot{}
	if err := s.decodeBody(w, r, snap); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := snap.Validate(); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	format, err := responseFormat(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	serializer.Respond(w, http.StatusOK, format, snap.Verify(s.config.Version))
}
