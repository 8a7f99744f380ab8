// Copyright 2026 The OpenRigTools Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package rigclone

import "time"

// sessionConfig holds per-session settings applied by Open.
type sessionConfig struct {
	progress    ProgressFunc
	retryConfig *RetryConfig
	portName    string
	readTimeout time.Duration
}

// Option configures a Session at Open time.
type Option func(*sessionConfig)

// WithProgress installs a callback invoked after every transferred block.
func WithProgress(fn ProgressFunc) Option {
	return func(c *sessionConfig) {
		c.progress = fn
	}
}

// WithPortName attaches a port identifier to errors for diagnostics.
func WithPortName(name string) Option {
	return func(c *sessionConfig) {
		c.portName = name
	}
}

// WithRetryConfig overrides the identify-handshake retry behavior. It has
// no effect on block transfers, which never retry.
func WithRetryConfig(config *RetryConfig) Option {
	return func(c *sessionConfig) {
		c.retryConfig = config
	}
}

// WithReadTimeout overrides the profile's per-read deadline.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *sessionConfig) {
		c.readTimeout = timeout
	}
}
