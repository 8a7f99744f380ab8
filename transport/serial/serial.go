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

// Package serial implements the rigclone.Channel contract on top of a
// real serial port. Radios clone over plain 8N1 (a few vendors use even
// parity), so the port is configured straight from the radio profile.
package serial

import (
	"fmt"
	"strings"
	"time"

	rigclone "github.com/OpenRigTools/go-rigclone"
	goserial "go.bug.st/serial"
)

// Port wraps a serial port as a rigclone.Channel. A Port also holds an
// advisory lock on the device node so two clone runs cannot interleave
// on the same cable.
type Port struct {
	port     goserial.Port
	lock     *portLock
	portName string
}

// ModeFor translates a radio profile's line settings into a serial mode.
// Clone firmware is always 8 data bits, one stop bit.
func ModeFor(profile *rigclone.Profile) *goserial.Mode {
	parity := goserial.NoParity
	switch profile.Parity {
	case rigclone.ParityEven:
		parity = goserial.EvenParity
	case rigclone.ParityOdd:
		parity = goserial.OddParity
	}
	return &goserial.Mode{
		BaudRate: profile.BaudRate,
		DataBits: 8,
		Parity:   parity,
		StopBits: goserial.OneStopBit,
	}
}

// Open opens and locks portName with the line settings the profile asks
// for. The caller owns the returned Port and must Close it.
func Open(portName string, profile *rigclone.Profile) (*Port, error) {
	lock, err := acquirePortLock(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to lock serial port %s: %w", portName, err)
	}

	port, err := goserial.Open(portName, ModeFor(profile))
	if err != nil {
		lock.release()
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	p := &Port{
		port:     port,
		lock:     lock,
		portName: portName,
	}

	if err := port.SetReadTimeout(profile.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set serial read timeout: %w", err)
	}

	// Stale bytes from a previous aborted clone would desync the
	// handshake, so start from an empty input buffer.
	if err := port.ResetInputBuffer(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to flush serial port %s: %w", portName, err)
	}

	return p, nil
}

// Name returns the device node the port was opened on.
func (p *Port) Name() string {
	return p.portName
}

// Write sends data and waits for it to leave the output buffer. The
// session layer reads back its own echo immediately after a write, so
// the bytes must actually be on the wire when Write returns.
func (p *Port) Write(data []byte) (int, error) {
	n, err := p.port.Write(data)
	if err != nil {
		return n, fmt.Errorf("serial write failed: %w", err)
	}
	if err := p.drainWithRetry("write"); err != nil {
		return n, err
	}
	return n, nil
}

// Read fills buf with whatever arrives before the read deadline. A zero
// count with a nil error means the deadline elapsed.
func (p *Port) Read(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if err != nil {
		return n, fmt.Errorf("serial read failed: %w", err)
	}
	return n, nil
}

// SetReadTimeout sets the per-read deadline.
func (p *Port) SetReadTimeout(timeout time.Duration) error {
	if err := p.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("serial set timeout failed: %w", err)
	}
	return nil
}

// Close closes the port and drops the advisory lock.
func (p *Port) Close() error {
	err := p.port.Close()
	p.lock.release()
	if err != nil {
		return fmt.Errorf("serial close failed: %w", err)
	}
	return nil
}

// isInterruptedSystemCall checks if an error is caused by an interrupted
// system call. USB-serial adapters surface EINTR from drain under load.
func isInterruptedSystemCall(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "interrupted system call") ||
		strings.Contains(errStr, "eintr")
}

// drainWithRetry performs port drain with retry logic for interrupted
// system calls.
func (p *Port) drainWithRetry(operation string) error {
	const maxRetries = 3
	baseDelay := 2 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := p.port.Drain()
		if err == nil {
			return nil
		}

		if isInterruptedSystemCall(err) {
			if attempt < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<attempt)
				time.Sleep(delay)
				continue
			}
		}

		return fmt.Errorf("serial %s drain failed: %w", operation, err)
	}

	return fmt.Errorf("serial %s drain failed after %d retries", operation, maxRetries)
}

// Ensure Port implements rigclone.Channel
var _ rigclone.Channel = (*Port)(nil)
