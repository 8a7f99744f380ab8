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
	"errors"
	"fmt"
	"io"
	"syscall"
)

// Error categories for clone-session failure handling
var (
	// Handshake errors - the radio never reached programming mode
	ErrHandshake     = errors.New("radio did not enter programming mode")
	ErrModelMismatch = errors.New("radio model not supported by this profile")
	ErrEchoMismatch  = errors.New("serial echo did not match written data")

	// Transfer errors - a block-level failure mid-session
	ErrChecksumMismatch = errors.New("block checksum mismatch")
	ErrNoAck            = errors.New("radio NAK'd block")
	ErrShortRead        = errors.New("short read from radio")
	ErrBlockMismatch    = errors.New("radio returned an unexpected block")

	// Channel errors
	ErrChannelTimeout = errors.New("channel timeout")
	ErrChannelWrite   = errors.New("channel write failed")
	ErrChannelRead    = errors.New("channel read failed")
	ErrChannelClosed  = errors.New("channel is closed")

	// Usage errors - not retryable
	ErrSessionClosed = errors.New("session is closed")
	ErrImageSize     = errors.New("image size does not match profile memory size")
	ErrInvalidParam  = errors.New("invalid parameter")
)

// ErrorType categorizes a protocol error for retry decisions.
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable error
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable error
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a timeout error (special handling)
	ErrorTypeTimeout
)

// ProtocolError wraps a clone-protocol failure with the operation, port and
// address context needed to diagnose it. Addr is only meaningful for
// block-level failures (HasAddr reports whether it is set).
type ProtocolError struct {
	Err       error
	Op        string
	Port      string
	Addr      uint16
	HasAddr   bool
	Type      ErrorType
	Retryable bool
}

func (e *ProtocolError) Error() string {
	switch {
	case e.HasAddr && e.Port != "":
		return fmt.Sprintf("%s %s at 0x%04X: %v", e.Op, e.Port, e.Addr, e.Err)
	case e.HasAddr:
		return fmt.Sprintf("%s at 0x%04X: %v", e.Op, e.Addr, e.Err)
	case e.Port != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth another attempt. Only the
// identify handshake consults this; block transfer errors abort the session
// regardless.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Retryable
	}

	switch {
	case errors.Is(err, ErrHandshake),
		errors.Is(err, ErrChannelTimeout),
		errors.Is(err, ErrChannelRead),
		errors.Is(err, ErrChannelWrite),
		errors.Is(err, ErrShortRead):
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error indicates the serial device is gone and
// further attempts on this channel cannot succeed.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Type == ErrorTypePermanent
	}

	if isDeviceGoneError(err) {
		return true
	}

	switch {
	case errors.Is(err, ErrChannelClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// isDeviceGoneError checks for OS-level errors indicating the programming
// cable was unplugged during I/O.
func isDeviceGoneError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		//nolint:exhaustive // only device-gone errno values matter here
		switch errno {
		case syscall.EIO, syscall.ENXIO, syscall.ENODEV:
			return true
		}
	}
	return false
}

// IsHandshakeError reports whether err represents a failure to enter
// programming mode or an identity mismatch.
func IsHandshakeError(err error) bool {
	return errors.Is(err, ErrHandshake) || errors.Is(err, ErrModelMismatch)
}

// IsChecksumError reports whether err represents a block integrity failure.
func IsChecksumError(err error) bool {
	return errors.Is(err, ErrChecksumMismatch)
}

// Error constructors for consistent error creation

// NewProtocolError creates a protocol error with the given category.
func NewProtocolError(op, port string, err error, errType ErrorType) *ProtocolError {
	return &ProtocolError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewBlockError creates a block-level protocol error carrying the block address.
func NewBlockError(op, port string, addr uint16, err error) *ProtocolError {
	return &ProtocolError{
		Op:      op,
		Port:    port,
		Addr:    addr,
		HasAddr: true,
		Err:     err,
		Type:    ErrorTypePermanent,
	}
}

// NewHandshakeError creates a handshake failure (retryable within the
// session's handshake attempt budget).
func NewHandshakeError(op, port string) *ProtocolError {
	return NewProtocolError(op, port, ErrHandshake, ErrorTypeTransient)
}

// NewModelMismatchError creates an identity mismatch error (permanent).
func NewModelMismatchError(op, port string) *ProtocolError {
	return NewProtocolError(op, port, ErrModelMismatch, ErrorTypePermanent)
}

// NewTimeoutError creates a timeout error for channel operations.
func NewTimeoutError(op, port string) *ProtocolError {
	return NewProtocolError(op, port, ErrChannelTimeout, ErrorTypeTimeout)
}

// NewShortReadError creates a short read error carrying the block address.
func NewShortReadError(op, port string, addr uint16) *ProtocolError {
	e := NewBlockError(op, port, addr, ErrShortRead)
	e.Type = ErrorTypeTimeout
	return e
}

// NewChecksumError creates a block checksum mismatch error.
func NewChecksumError(op, port string, addr uint16) *ProtocolError {
	return NewBlockError(op, port, addr, ErrChecksumMismatch)
}

// NewAckError creates a missing/wrong ACK error for a block write.
func NewAckError(op, port string, addr uint16) *ProtocolError {
	return NewBlockError(op, port, addr, ErrNoAck)
}
