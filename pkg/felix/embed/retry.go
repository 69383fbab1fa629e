// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"math/rand/v2"
	"strings"
	"time"
)

// RetryConfig controls the exponential-backoff retry loop around a
// provider's Embed call.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryConfig mirrors the teacher's embedding-generator default.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialBackoff: 200 * time.Millisecond, MaxBackoff: 2 * time.Second, Multiplier: 2.0}
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
	if c.Multiplier <= 1.0 {
		c.Multiplier = 2.0
	}
	return c
}

// isRetryableError classifies provider errors: network/timeout and
// HTTP 429/5xx responses are retryable, everything else (bad request,
// auth failure, unknown model) is not worth retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"timeout", "temporarily unavailable", "connection refused", "connection reset", "deadline exceeded", "eof"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	for _, s := range []string{" 429 ", " 500 ", " 502 ", " 503 ", " 504 ", "status 429", "status 500", "status 502", "status 503", "status 504"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// backoffWithJitter returns an exponential backoff with full jitter:
// a uniformly random duration in [0, base*multiplier^attempt], capped.
func backoffWithJitter(base time.Duration, attempt int, multiplier float64, cap time.Duration) time.Duration {
	exp := float64(base)
	for i := 0; i < attempt; i++ {
		exp *= multiplier
	}
	d := time.Duration(exp)
	if d > cap {
		d = cap
	}
	if d <= 0 {
		return base
	}
	return time.Duration(rand.Int64N(int64(d) + 1))
}
