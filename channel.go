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

import (
	"time"

	"github.com/OpenRigTools/go-rigclone/internal/syncutil"
)

// Channel is the byte-oriented serial line a clone session runs over.
// The transport/serial subpackage provides the real implementation; tests
// substitute simulators.
//
// Read must honor the configured read timeout: when the deadline passes
// with fewer bytes than requested available, it returns what it has (which
// may be zero bytes) rather than blocking indefinitely. The session treats
// a short result as a protocol failure, never as a reason to wait longer.
type Channel interface {
	// Write sends bytes down the line
	Write(p []byte) (int, error)

	// Read fills p with available bytes, returning short on timeout
	Read(p []byte) (int, error)

	// SetReadTimeout sets the per-read deadline
	SetReadTimeout(timeout time.Duration) error

	// Close releases the underlying line
	Close() error
}

// MockChannel is a scripted Channel for tests: written bytes are recorded,
// reads are served from a queue of canned responses. It has no protocol
// knowledge; for a protocol-aware peer use the internal VirtualRadio
// simulator.
type MockChannel struct {
	mu       syncutil.RWMutex
	writes   [][]byte
	pending  []byte
	writeErr error
	readErr  error
	timeout  time.Duration
	closed   bool
}

// NewMockChannel creates an open MockChannel with no queued responses.
func NewMockChannel() *MockChannel {
	return &MockChannel{timeout: time.Second}
}

// QueueResponse appends bytes that subsequent Reads will return in order.
func (m *MockChannel) QueueResponse(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, data...)
}

// SetWriteError makes every following Write fail with err.
func (m *MockChannel) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetReadError makes every following Read fail with err.
func (m *MockChannel) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Writes returns a copy of every buffer written so far.
func (m *MockChannel) Writes() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(m.writes))
	for i, w := range m.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Written returns the concatenation of every buffer written so far.
func (m *MockChannel) Written() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []byte
	for _, w := range m.writes {
		out = append(out, w...)
	}
	return out
}

// Timeout returns the last read timeout configured on the channel.
func (m *MockChannel) Timeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeout
}

// Write implements Channel.
func (m *MockChannel) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrChannelClosed
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes = append(m.writes, append([]byte(nil), p...))
	return len(p), nil
}

// Read implements Channel. When the response queue is empty it returns
// (0, nil), modeling a serial read timeout with no data.
func (m *MockChannel) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrChannelClosed
	}
	if m.readErr != nil {
		return 0, m.readErr
	}
	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

// SetReadTimeout implements Channel.
func (m *MockChannel) SetReadTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Close implements Channel.
func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Ensure MockChannel implements Channel
var _ Channel = (*MockChannel)(nil)
