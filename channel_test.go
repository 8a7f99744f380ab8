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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockChannelRecordsWrites(t *testing.T) {
	t.Parallel()

	ch := NewMockChannel()
	_, err := ch.Write([]byte("PROGRAM"))
	require.NoError(t, err)
	_, err = ch.Write([]byte{0x02})
	require.NoError(t, err)

	writes := ch.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, []byte("PROGRAM"), writes[0])
	assert.Equal(t, []byte{0x02}, writes[1])
	assert.Equal(t, []byte("PROGRAM\x02"), ch.Written())
}

func TestMockChannelServesQueuedResponses(t *testing.T) {
	t.Parallel()

	ch := NewMockChannel()
	ch.QueueResponse([]byte{'Q', 'X'})
	ch.QueueResponse([]byte{0x06})

	buf := make([]byte, 2)
	n, err := ch.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{'Q', 'X'}, buf)

	n, err = ch.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x06), buf[0])
}

func TestMockChannelEmptyQueueReadsAsTimeout(t *testing.T) {
	t.Parallel()

	ch := NewMockChannel()
	buf := make([]byte, 8)
	n, err := ch.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMockChannelInjectedErrors(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("write boom")
	readErr := errors.New("read boom")

	ch := NewMockChannel()
	ch.SetWriteError(writeErr)
	ch.SetReadError(readErr)

	_, err := ch.Write([]byte{0x01})
	assert.ErrorIs(t, err, writeErr)

	_, err = ch.Read(make([]byte, 1))
	assert.ErrorIs(t, err, readErr)
}

func TestMockChannelClose(t *testing.T) {
	t.Parallel()

	ch := NewMockChannel()
	require.NoError(t, ch.Close())

	_, err := ch.Write([]byte{0x01})
	assert.ErrorIs(t, err, ErrChannelClosed)

	_, err = ch.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrChannelClosed)
}

func TestMockChannelTimeoutTracking(t *testing.T) {
	t.Parallel()

	ch := NewMockChannel()
	require.NoError(t, ch.SetReadTimeout(250*time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, ch.Timeout())
}
