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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ProtocolError
		want string
	}{
		{
			name: "Op_Only",
			err:  &ProtocolError{Op: "identify", Err: ErrHandshake},
			want: "identify: radio did not enter programming mode",
		},
		{
			name: "With_Port",
			err:  &ProtocolError{Op: "identify", Port: "/dev/ttyUSB0", Err: ErrHandshake},
			want: "identify /dev/ttyUSB0: radio did not enter programming mode",
		},
		{
			name: "With_Address",
			err:  &ProtocolError{Op: "read block", Addr: 0x0120, HasAddr: true, Err: ErrChecksumMismatch},
			want: "read block at 0x0120: block checksum mismatch",
		},
		{
			name: "With_Port_And_Address",
			err: &ProtocolError{
				Op: "write block", Port: "COM3", Addr: 0x4000, HasAddr: true, Err: ErrNoAck,
			},
			want: "write block COM3 at 0x4000: radio NAK'd block",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestProtocolErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewChecksumError("read block", "/dev/ttyUSB0", 0x0040)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	var perr *ProtocolError
	wrapped := fmt.Errorf("download failed: %w", err)
	require.ErrorAs(t, wrapped, &perr)
	assert.Equal(t, uint16(0x0040), perr.Addr)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "Nil", err: nil, want: false},
		{name: "Handshake", err: NewHandshakeError("identify", ""), want: true},
		{name: "Timeout", err: NewTimeoutError("read", ""), want: true},
		{name: "Model_Mismatch", err: NewModelMismatchError("identify", ""), want: false},
		{name: "Checksum", err: NewChecksumError("read block", "", 0), want: false},
		{name: "Ack", err: NewAckError("write block", "", 0), want: false},
		{name: "Bare_Handshake_Sentinel", err: ErrHandshake, want: true},
		{name: "Bare_Timeout_Sentinel", err: ErrChannelTimeout, want: true},
		{name: "Unrelated", err: errors.New("boom"), want: false},
		{
			name: "Wrapped_Protocol_Error",
			err:  fmt.Errorf("open: %w", NewHandshakeError("enter programming mode", "")),
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "Nil", err: nil, want: false},
		{name: "Model_Mismatch", err: NewModelMismatchError("identify", ""), want: true},
		{name: "Handshake", err: NewHandshakeError("identify", ""), want: false},
		{name: "Channel_Closed", err: ErrChannelClosed, want: true},
		{name: "EOF", err: io.EOF, want: true},
		{name: "Closed_Pipe", err: io.ErrClosedPipe, want: true},
		{name: "Cable_Unplugged_EIO", err: fmt.Errorf("read: %w", syscall.EIO), want: true},
		{name: "Cable_Unplugged_ENXIO", err: fmt.Errorf("read: %w", syscall.ENXIO), want: true},
		{name: "Cable_Unplugged_ENODEV", err: fmt.Errorf("read: %w", syscall.ENODEV), want: true},
		{name: "EAGAIN_Is_Not_Fatal", err: fmt.Errorf("read: %w", syscall.EAGAIN), want: false},
		{name: "Unrelated", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHandshakeError(NewHandshakeError("identify", "")))
	assert.True(t, IsHandshakeError(NewModelMismatchError("identify", "")))
	assert.False(t, IsHandshakeError(NewChecksumError("read block", "", 0)))

	assert.True(t, IsChecksumError(NewChecksumError("read block", "", 0)))
	assert.False(t, IsChecksumError(NewAckError("write block", "", 0)))
}

func TestNewShortReadErrorIsTimeoutTyped(t *testing.T) {
	t.Parallel()

	err := NewShortReadError("read block", "", 0x0200)
	assert.ErrorIs(t, err, ErrShortRead)
	assert.Equal(t, ErrorTypeTimeout, err.Type)
	assert.True(t, err.HasAddr)
}
