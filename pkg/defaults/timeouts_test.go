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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// HTTP client timeouts
		{"HTTPClientTimeout", HTTPClientTimeout, 10 * time.Second, 60 * time.Second},
		{"HTTPConnectTimeout", HTTPConnectTimeout, 1 * time.Second, 15 * time.Second},
		{"HTTPResponseHeaderTimeout", HTTPResponseHeaderTimeout, 1 * time.Second, 30 * time.Second},

		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 15 * time.Second, 60 * time.Second},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},
		{"ServerSolveTimeout", ServerSolveTimeout, 5 * time.Second, 60 * time.Second},

		// ConfigMap timeouts
		{"ConfigMapWriteTimeout", ConfigMapWriteTimeout, 5 * time.Second, 60 * time.Second},
		{"ConfigMapReadTimeout", ConfigMapReadTimeout, 5 * time.Second, 60 * time.Second},

		// OCI
		{"OCIPushTimeout", OCIPushTimeout, 30 * time.Second, 10 * time.Minute},

		// Agent
		{"AgentJobTimeout", AgentJobTimeout, time.Minute, time.Hour},

		// CLI
		{"CLIProgressInterval", CLIProgressInterval, 500 * time.Millisecond, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestHTTPTimeoutRelationships(t *testing.T) {
	if HTTPConnectTimeout >= HTTPClientTimeout {
		t.Errorf("HTTPConnectTimeout (%v) should be less than HTTPClientTimeout (%v)",
			HTTPConnectTimeout, HTTPClientTimeout)
	}
	if HTTPResponseHeaderTimeout >= HTTPClientTimeout {
		t.Errorf("HTTPResponseHeaderTimeout (%v) should be less than HTTPClientTimeout (%v)",
			HTTPResponseHeaderTimeout, HTTPClientTimeout)
	}
}

func TestServerTimeoutRelationships(t *testing.T) {
	if ServerReadTimeout > ServerWriteTimeout {
		t.Errorf("ServerReadTimeout (%v) should not exceed ServerWriteTimeout (%v)",
			ServerReadTimeout, ServerWriteTimeout)
	}
	if ServerSolveTimeout >= ServerWriteTimeout {
		t.Errorf("ServerSolveTimeout (%v) should be less than ServerWriteTimeout (%v)",
			ServerSolveTimeout, ServerWriteTimeout)
	}
	if ServerIdleTimeout < ServerWriteTimeout {
		t.Errorf("ServerIdleTimeout (%v) should be at least ServerWriteTimeout (%v)",
			ServerIdleTimeout, ServerWriteTimeout)
	}
}

func TestSearchDefaultsWithinLimits(t *testing.T) {
	if DefaultMaxValue < 1 || DefaultMaxValue > MaxValueLimit {
		t.Errorf("DefaultMaxValue (%d) outside 1..%d", DefaultMaxValue, MaxValueLimit)
	}
	if DefaultMaxCost < 1 || DefaultMaxCost > MaxCostLimit {
		t.Errorf("DefaultMaxCost (%d) outside 1..%d", DefaultMaxCost, MaxCostLimit)
	}
	if DefaultMaxSteps < 0 || DefaultMaxSteps > MaxStepsLimit {
		t.Errorf("DefaultMaxSteps (%d) outside 0..%d", DefaultMaxSteps, MaxStepsLimit)
	}
	if ServerMaxCost < DefaultMaxCost || ServerMaxCost > MaxCostLimit {
		t.Errorf("ServerMaxCost (%d) outside %d..%d", ServerMaxCost, DefaultMaxCost, MaxCostLimit)
	}
	if DefaultCompareWorkers < 1 {
		t.Errorf("DefaultCompareWorkers (%d) must be positive", DefaultCompareWorkers)
	}
}

func TestOperationGuards(t *testing.T) {
	if MaxFactorialOperand != 20 {
		t.Errorf("MaxFactorialOperand = %d, want 20", MaxFactorialOperand)
	}
	if MaxExponent != 40 {
		t.Errorf("MaxExponent = %d, want 40", MaxExponent)
	}
}
