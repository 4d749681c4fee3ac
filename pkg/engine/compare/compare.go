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

package compare

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/engine"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/header"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

// Run summarizes the search for one digit.
type Run struct {
	Digit       int               `json:"digit" yaml:"digit"`
	RunID       string            `json:"run_id" yaml:"run_id"`
	Combos      int               `json:"combos" yaml:"combos"`
	Generations int               `json:"generations" yaml:"generations"`
	Stopped     engine.StopReason `json:"stopped" yaml:"stopped"`
	Duration    time.Duration     `json:"duration" yaml:"duration"`
}

// Row holds the cost of one value for every compared digit. A zero cost
// means the digit did not reach the value.
type Row struct {
	Value int64 `json:"value" yaml:"value"`
	Costs []int `json:"costs" yaml:"costs"`
}

// Matrix is a value by digit cost table.
type Matrix struct {
	header.Header `json:",inline" yaml:",inline"`

	Digits   []int `json:"digits" yaml:"digits"`
	MaxValue int64 `json:"max_value" yaml:"max_value"`
	MaxCost  int   `json:"max_cost" yaml:"max_cost"`
	Runs     []Run `json:"runs" yaml:"runs"`
	Rows     []Row `json:"rows" yaml:"rows"`
}

// Cost returns the cost of value for digit.
func (m *Matrix) Cost(digit int, value int64) (int, bool) {
	col := slices.Index(m.Digits, digit)
	if col < 0 {
		return 0, false
	}
	i, found := slices.BinarySearchFunc(m.Rows, value, func(r Row, v int64) int {
		switch {
		case r.Value < v:
			return -1
		case r.Value > v:
			return 1
		default:
			return 0
		}
	})
	if !found || m.Rows[i].Costs[col] == 0 {
		return 0, false
	}
	return m.Rows[i].Costs[col], true
}

// TableColumns implements serializer.Tabular.
func (m *Matrix) TableColumns() []string {
	cols := []string{"VALUE"}
	for _, d := range m.Digits {
		cols = append(cols, "DIGIT "+strconv.Itoa(d))
	}
	return cols
}

// TableRows implements serializer.Tabular.
func (m *Matrix) TableRows() [][]string {
	rows := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		row := []string{strconv.FormatInt(r.Value, 10)}
		for _, c := range r.Costs {
			if c == 0 {
				row = append(row, "-")
				continue
			}
			row = append(row, strconv.Itoa(c))
		}
		rows = append(rows, row)
	}
	return rows
}

// Option configures a comparison.
type Option func(*options)

type options struct {
	workers int
	logger  *slog.Logger
	version string
}

// WithWorkers bounds the number of searches running at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger passed to every engine.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVersion sets the tool version recorded in the matrix header.
func WithVersion(v string) Option {
	return func(o *options) {
		o.version = v
	}
}

// Digits runs one independent search per digit using cfg for everything
// but the digit, and collects the costs into a Matrix. The first failing
// search cancels the others.
func Digits(ctx context.Context, cfg engine.Config, digits []int, opts ...Option) (*Matrix, error) {
	o := &options{
		workers: defaults.DefaultCompareWorkers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := checkDigits(digits); err != nil {
		return nil, err
	}

	engines := make([]*engine.Engine, len(digits))
	for i, d := range digits {
		c := cfg
		c.Digit = d
		e, err := engine.New(c, engine.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		engines[i] = e
	}

	results := make([]*engine.Result, len(digits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, e := range engines {
		g.Go(func() error {
			res, err := e.Run(gctx, nil)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := build(digits, results)
	m.MaxValue = engines[0].Config().MaxValue
	m.MaxCost = engines[0].Config().MaxCost
	m.Init(header.KindComparison, snapshot.APIVersion, o.version,
		header.WithMetadata(header.MetadataMaxSteps, strconv.Itoa(engines[0].Config().MaxSteps)))

	o.logger.Info("comparison finished", "digits", digits, "values", len(m.Rows))
	return m, nil
}

func checkDigits(digits []int) error {
	if len(digits) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one digit is required")
	}
	seen := make(map[int]bool, len(digits))
	for _, d := range digits {
		if d < 1 || d > 9 {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("digit %d is out of range", d), map[string]any{"digit": d})
		}
		if seen[d] {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("digit %d listed twice", d), map[string]any{"digit": d})
		}
		seen[d] = true
	}
	return nil
}

func build(digits []int, results []*engine.Result) *Matrix {
	m := &Matrix{Digits: slices.Clone(digits)}

	costs := make(map[int64][]int)
	for col, res := range results {
		m.Runs = append(m.Runs, Run{
			Digit:       digits[col],
			RunID:       res.RunID,
			Combos:      res.Registry.Len(),
			Generations: res.Generations,
			Stopped:     res.Stopped,
			Duration:    res.Duration,
		})
		for _, c := range res.Registry.Snapshot() {
			row, ok := costs[c.Value]
			if !ok {
				row = make([]int, len(digits))
				costs[c.Value] = row
			}
			row[col] = c.Cost
		}
	}

	values := make([]int64, 0, len(costs))
	for v := range costs {
		values = append(values, v)
	}
	slices.Sort(values)
	for _, v := range values {
		m.Rows = append(m.Rows, Row{Value: v, Costs: costs[v]})
	}
	return m
}
