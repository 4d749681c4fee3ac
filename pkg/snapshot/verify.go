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

package snapshot

import (
	"strconv"

	"github.com/NVIDIA/onedigit/pkg/expr"
	"github.com/NVIDIA/onedigit/pkg/header"
)

// Failure is a combination whose expression does not check out.
type Failure struct {
	Value    int64  `json:"value" yaml:"value"`
	Cost     int    `json:"cost" yaml:"cost"`
	ExprFull string `json:"expr_full" yaml:"expr_full"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Report is the result of re-evaluating a snapshot.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Digit    int       `json:"digit" yaml:"digit"`
	Checked  int       `json:"checked" yaml:"checked"`
	Failures []Failure `json:"failures" yaml:"failures"`
}

// Passed reports whether every combination verified.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

// TableColumns implements serializer.Tabular.
func (r *Report) TableColumns() []string {
	return []string{"VALUE", "COST", "EXPRESSION", "REASON"}
}

// TableRows implements serializer.Tabular.
func (r *Report) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		rows = append(rows, []string{strconv.FormatInt(f.Value, 10), strconv.Itoa(f.Cost), f.ExprFull, f.Reason})
	}
	return rows
}

// Verify evaluates every expr_full and checks it against the stored value
// and that it uses the digit exactly cost times.
func (s *Snapshot) Verify(version string) *Report {
	r := &Report{Digit: s.Digit, Failures: []Failure{}}
	for _, c := range s.Combinations {
		r.Checked++
		if err := expr.Check(c.ExprFull, s.Digit, c.Value, c.Cost); err != nil {
			r.Failures = append(r.Failures, Failure{
				Value:    c.Value,
				Cost:     c.Cost,
				ExprFull: c.ExprFull,
				Reason:   err.Error(),
			})
		}
	}
	r.Init(header.KindVerifyReport, APIVersion, version)
	return r
}
