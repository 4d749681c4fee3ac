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

package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/onedigit/pkg/errors"
	"github.com/NVIDIA/onedigit/pkg/logging"
	"github.com/NVIDIA/onedigit/pkg/server"
)

const (
	name           = "onedigit-api-server"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/onedigit/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Environment variables read by Serve in addition to PORT,
// SHUTDOWN_TIMEOUT_SECONDS and LOG_LEVEL.
const (
	EnvRateLimit    = "ONEDIGIT_RATE_LIMIT"
	EnvRateBurst    = "ONEDIGIT_RATE_BURST"
	EnvCostLimit    = "ONEDIGIT_COST_LIMIT"
	EnvSolveTimeout = "ONEDIGIT_SOLVE_TIMEOUT"
)

// Serve starts the API server and blocks until ctx is cancelled.
func Serve(ctx context.Context) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	opts, err := Options(os.Getenv)
	if err != nil {
		slog.Error("invalid server configuration", "error", err)
		return err
	}
	opts = append(opts,
		server.WithName(name),
		server.WithVersion(version),
		server.WithHooks(systemdHooks(daemon.SdNotify)),
	)

	if err := server.New(opts...).Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// Options returns the server options set through the environment. Unset
// variables keep the server defaults.
func Options(getenv func(string) string) ([]server.Option, error) {
	var opts []server.Option

	limit, burst := -1.0, -1
	if v := getenv(EnvRateLimit); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, invalidEnv(EnvRateLimit, v)
		}
		limit = f
	}
	if v := getenv(EnvRateBurst); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, invalidEnv(EnvRateBurst, v)
		}
		burst = n
	}
	if limit > 0 || burst > 0 {
		cfg := server.NewConfig()
		l, b := cfg.RateLimit, cfg.RateLimitBurst
		if limit > 0 {
			l = rate.Limit(limit)
		}
		if burst > 0 {
			b = burst
		}
		opts = append(opts, server.WithRateLimit(l, b))
	}

	if v := getenv(EnvCostLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, invalidEnv(EnvCostLimit, v)
		}
		opts = append(opts, server.WithMaxCost(n))
	}

	if v := getenv(EnvSolveTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, invalidEnv(EnvSolveTimeout, v)
		}
		opts = append(opts, server.WithSolveTimeout(d))
	}

	return opts, nil
}

// notifyFunc matches daemon.SdNotify.
type notifyFunc func(unsetEnvironment bool, state string) (bool, error)

// systemdHooks reports readiness and shutdown to systemd when the daemon
// runs as a Type=notify unit. Outside systemd notify is a no-op.
func systemdHooks(notify notifyFunc) server.Hooks {
	send := func(state string) {
		sent, err := notify(false, state)
		switch {
		case err != nil:
			slog.Warn("failed to notify systemd", "state", state, "error", err)
		case sent:
			slog.Debug("notified systemd", "state", state)
		}
	}
	return server.Hooks{
		OnReady: func(addr string) {
			send(daemon.SdNotifyReady + "\nSTATUS=listening on " + addr)
		},
		OnShutdown: func() {
			send(daemon.SdNotifyStopping)
		},
	}
}

func invalidEnv(key, value string) error {
	return errors.NewWithContext(errors.ErrCodeInvalidConfig,
		fmt.Sprintf("invalid value for %s: %q", key, value),
		map[string]any{"env": key})
}
