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

package engine

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/onedigit/pkg/combo"
	"github.com/NVIDIA/onedigit/pkg/defaults"
	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/operation"
	"github.com/NVIDIA/onedigit/pkg/registry"
	"github.com/NVIDIA/onedigit/pkg/render"
	"github.com/NVIDIA/onedigit/pkg/snapshot"
)

// StopReason records why a search ended.
type StopReason string

const (
	// StopMaxSteps means the configured number of generations ran.
	StopMaxSteps StopReason = "max-steps"
	// StopExhausted means a generation produced no new or cheaper combo.
	StopExhausted StopReason = "exhausted"
)

// GenerationStats summarizes one generation. Candidates counts operation
// applications whose operand costs fit the cost bound; pairs over the bound
// are never applied.
type GenerationStats struct {
	Generation     int           `json:"generation" yaml:"generation"`
	Frontier       int           `json:"frontier" yaml:"frontier"`
	Candidates     int           `json:"candidates" yaml:"candidates"`
	Accepted       int           `json:"accepted" yaml:"accepted"`
	Improved       int           `json:"improved" yaml:"improved"`
	Rejected       int           `json:"rejected" yaml:"rejected"`
	DomainRejected int           `json:"domain_rejected" yaml:"domain_rejected"`
	BoundsRejected int           `json:"bounds_rejected" yaml:"bounds_rejected"`
	Discarded      int           `json:"discarded" yaml:"discarded"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
}

// Result is the outcome of a search.
type Result struct {
	RunID       string
	Config      Config
	Registry    *registry.Registry
	Generations int
	Stopped     StopReason
	Stats       []GenerationStats
	Loaded      int
	Skipped     int
	Duration    time.Duration
}

// Snapshot builds the persisted document for the result.
func (r *Result) Snapshot(version string) *snapshot.Snapshot {
	return snapshot.New(r.Registry, snapshot.Params{
		Digit:      r.Config.Digit,
		MaxValue:   r.Config.MaxValue,
		MaxCost:    r.Config.MaxCost,
		MaxSteps:   r.Config.MaxSteps,
		Operations: r.Config.Operations,
		RunID:      r.RunID,
		StopReason: string(r.Stopped),
		Version:    version,
	})
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRunID sets the run identifier; the default is a random UUID.
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// WithProgressInterval sets the minimum interval between progress records.
func WithProgressInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.progressInterval = d
	}
}

// Engine runs the breadth first search for one configuration.
type Engine struct {
	cfg              Config
	ops              operation.Set
	logger           *slog.Logger
	runID            string
	progressInterval time.Duration
}

// New validates cfg and returns an Engine for it.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ops, err := operation.Parse(cfg.Operations)
	if err != nil {
		return nil, err
	}
	cfg.Operations = ops.IDs()

	e := &Engine{
		cfg:              cfg,
		ops:              ops,
		logger:           slog.Default(),
		runID:            uuid.NewString(),
		progressInterval: defaults.CLIProgressInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("run_id", e.runID, "digit", cfg.Digit)
	return e, nil
}

// Config returns the validated configuration with canonical operation ids.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run searches from the seed and, when prior is non-nil, from its
// combinations. Prior combos outside the configured bounds are skipped.
// The context is checked between generations.
func (e *Engine) Run(ctx context.Context, prior *snapshot.Snapshot) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:    e.runID,
		Config:   e.cfg,
		Registry: registry.New(e.cfg.Digit),
		Stopped:  StopMaxSteps,
	}

	if prior != nil {
		if err := prior.Validate(); err != nil {
			return nil, err
		}
		if prior.Digit != e.cfg.Digit {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidSnapshot,
				"snapshot digit does not match the search digit",
				map[string]any{"snapshot_digit": prior.Digit, "digit": e.cfg.Digit})
		}
		res.Loaded, res.Skipped = res.Registry.Load(prior.Combinations, e.cfg.Bounds())
		e.logger.Debug("loaded snapshot", "accepted", res.Loaded, "skipped", res.Skipped)
	}
	res.Registry.Seed()

	e.logger.Info("search started",
		"max_value", e.cfg.MaxValue,
		"max_cost", e.cfg.MaxCost,
		"max_steps", e.cfg.MaxSteps,
		"operations", e.cfg.Operations,
		"known", res.Registry.Len())

	progress := rate.Sometimes{Interval: e.progressInterval}
	frontier := res.Registry.Values()

	for g := 1; g <= e.cfg.MaxSteps; g++ {
		if err := ctx.Err(); err != nil {
			return nil, contextError(err, g)
		}

		next, stats := e.step(res.Registry, frontier, g)
		res.Generations = g
		res.Stats = append(res.Stats, stats)
		recordGeneration(e.cfg.Digit, stats, res.Registry.Len(), len(next))

		e.logger.Debug("generation complete",
			"generation", g,
			"frontier", stats.Frontier,
			"candidates", stats.Candidates,
			"accepted", stats.Accepted,
			"improved", stats.Improved,
			"rejected", stats.Rejected,
			"duration", stats.Duration)
		progress.Do(func() {
			e.logger.Info("search progress",
				"generation", g,
				"known", res.Registry.Len(),
				"next_frontier", len(next))
		})

		if len(next) == 0 {
			res.Stopped = StopExhausted
			break
		}
		frontier = next
	}

	res.Duration = time.Since(start)
	recordRun(res.Stopped)
	e.logger.Info("search finished",
		"generations", res.Generations,
		"stopped", res.Stopped,
		"known", res.Registry.Len(),
		"duration", res.Duration)
	return res, nil
}

// step runs one generation over the ascending frontier and returns the
// ascending values inserted or improved. Operands are read from the
// registry as it was when the generation started.
func (e *Engine) step(reg *registry.Registry, frontier []int64, g int) ([]int64, GenerationStats) {
	start := time.Now()
	stats := GenerationStats{Generation: g, Frontier: len(frontier)}

	known := reg.Snapshot()
	slices.SortFunc(known, func(a, b combo.Combo) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	})
	byValue := make(map[int64]combo.Combo, len(known))
	for _, c := range known {
		byValue[c.Value] = c
	}
	inFrontier := make(map[int64]bool, len(frontier))
	for _, v := range frontier {
		inFrontier[v] = true
	}

	changed := make(map[int64]bool)
	offer := func(value int64, cost int, build func() (full, simple string)) {
		stats.Candidates++
		if value < 1 || value > e.cfg.MaxValue || cost > e.cfg.MaxCost {
			stats.BoundsRejected++
			return
		}
		if !reg.Improves(value, cost) {
			stats.Discarded++
			return
		}
		full, simple := build()
		switch reg.Merge(combo.New(value, cost, full, simple)) {
		case registry.Inserted:
			stats.Accepted++
			changed[value] = true
		case registry.Improved:
			stats.Improved++
			changed[value] = true
		default:
			stats.Discarded++
		}
	}

	for _, fv := range frontier {
		f := byValue[fv]

		for _, op := range e.ops.Unary() {
			v, ok := op.ApplyUnary(f.Value)
			if !ok {
				stats.Candidates++
				stats.DomainRejected++
				continue
			}
			offer(v, f.Cost, func() (string, string) { return render.Unary(op.ID(), f) })
		}

		for _, k := range known {
			if inFrontier[k.Value] && k.Value > f.Value {
				continue
			}
			cost := f.Cost + k.Cost
			if cost > e.cfg.MaxCost {
				continue
			}
			for _, op := range e.ops.Binary() {
				if op.Ordered() {
					a, b := f, k
					if b.Value > a.Value {
						a, b = b, a
					}
					tryBinary(op, a, b, cost, &stats, offer)
					continue
				}
				tryBinary(op, f, k, cost, &stats, offer)
				if k.Value != f.Value {
					tryBinary(op, k, f, cost, &stats, offer)
				}
			}
		}
	}

	stats.Rejected = stats.DomainRejected + stats.BoundsRejected + stats.Discarded
	stats.Duration = time.Since(start)

	next := make([]int64, 0, len(changed))
	for v := range changed {
		next = append(next, v)
	}
	slices.Sort(next)
	return next, stats
}

func tryBinary(op operation.BinaryOperator, a, b combo.Combo, cost int,
	stats *GenerationStats, offer func(int64, int, func() (string, string))) {
	v, ok := op.ApplyBinary(a.Value, b.Value)
	if !ok {
		stats.Candidates++
		stats.DomainRejected++
		return
	}
	offer(v, cost, func() (string, string) { return render.Binary(op.ID(), a, b) })
}

func contextError(err error, generation int) error {
	code := errors.ErrCodeInternal
	msg := "search cancelled"
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.ErrCodeTimeout
		msg = "search deadline exceeded"
	}
	return errors.WrapWithContext(code, msg, err, map[string]any{"generation": generation})
}
