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

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{name: "Empty", data: nil, want: 0x00},
		{name: "Single_Byte", data: []byte{0x42}, want: 0x42},
		{name: "Wraps_Modulo_256", data: []byte{0xFF, 0x02}, want: 0x01},
		{name: "Typical_Header", data: []byte{0x00, 0x40, 0x10}, want: 0x50},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Sum(tt.data))
		})
	}
}

func TestChecksumWidths(t *testing.T) {
	t.Parallel()

	data := []byte{0x12, 0x34, 0xAB}

	// 0x12+0x34+0xAB = 0xF1
	assert.Equal(t, byte(0xF1), Checksum(data, Width8))
	assert.Equal(t, byte(0x01), Checksum(data, Width4))
}

func TestBuildRead(t *testing.T) {
	t.Parallel()

	frm := BuildRead('R', 0x1234, 0x10)
	assert.Equal(t, []byte{'R', 0x12, 0x34, 0x10}, frm)
}

func TestBuildWriteLayout(t *testing.T) {
	t.Parallel()

	payload := []byte{0xAA, 0xBB}
	frm := BuildWrite('W', 0x0100, payload, 1, Width8, []byte{0x06})

	// cmd, addr hi, addr lo, len, payload, checksum, trailer
	require.Len(t, frm, HeaderLen+len(payload)+2)
	assert.Equal(t, byte('W'), frm[0])
	assert.Equal(t, byte(0x01), frm[1])
	assert.Equal(t, byte(0x00), frm[2])
	assert.Equal(t, byte(0x02), frm[3])
	assert.Equal(t, payload, frm[HeaderLen:HeaderLen+2])

	// Checksum covers everything after the command byte.
	want := Sum(frm[1 : HeaderLen+2])
	assert.Equal(t, want, frm[HeaderLen+2])
	assert.Equal(t, byte(0x06), frm[HeaderLen+3])
}

func TestBuildWriteZeroSkipIncludesCommand(t *testing.T) {
	t.Parallel()

	payload := []byte{0x01}
	frm := BuildWrite('W', 0x0000, payload, 0, Width8, nil)

	want := Sum(frm[:HeaderLen+1])
	assert.Equal(t, want, frm[HeaderLen+1])
}

func TestParseHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	frm := BuildRead('R', 0xBEEF, 0x20)
	cmd, addr, length := ParseHeader(frm)
	assert.Equal(t, byte('R'), cmd)
	assert.Equal(t, uint16(0xBEEF), addr)
	assert.Equal(t, byte(0x20), length)
}

func TestVerifyChecksum(t *testing.T) {
	t.Parallel()

	payload := []byte{0x10, 0x20, 0x30, 0x40}
	resp := make([]byte, 0, ResponseLen(len(payload), false))
	resp = append(resp, 'W', 0x01, 0x80, byte(len(payload)))
	resp = append(resp, payload...)
	resp = append(resp, Checksum(resp[1:], Width8))

	assert.True(t, VerifyChecksum(resp, 1, len(payload), Width8))

	// Any single corrupted payload byte must be caught.
	for i := HeaderLen; i < HeaderLen+len(payload); i++ {
		corrupted := make([]byte, len(resp))
		copy(corrupted, resp)
		corrupted[i] ^= 0x01
		assert.False(t, VerifyChecksum(corrupted, 1, len(payload), Width8),
			"corruption at offset %d not detected", i)
	}

	// A forged checksum byte must be caught too.
	forged := make([]byte, len(resp))
	copy(forged, resp)
	forged[len(forged)-1] ^= 0xFF
	assert.False(t, VerifyChecksum(forged, 1, len(payload), Width8))
}

func TestVerifyChecksumWidth4IgnoresHighNibble(t *testing.T) {
	t.Parallel()

	payload := []byte{0x55}
	resp := append([]byte{'W', 0x00, 0x10, 0x01}, payload...)
	sum := Checksum(resp[1:], Width4)
	require.Less(t, sum, byte(0x10))
	resp = append(resp, sum)

	assert.True(t, VerifyChecksum(resp, 1, len(payload), Width4))

	// The radio only compares the low nibble, so a response with garbage
	// in the high nibble still verifies.
	resp[len(resp)-1] = sum | 0xA0
	assert.True(t, VerifyChecksum(resp, 1, len(payload), Width4))

	resp[len(resp)-1] = (sum + 1) & 0x0F
	assert.False(t, VerifyChecksum(resp, 1, len(payload), Width4))
}

func TestResponseLen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 21, ResponseLen(16, false))
	assert.Equal(t, 22, ResponseLen(16, true))
}

func TestPayloadAndAck(t *testing.T) {
	t.Parallel()

	payload := []byte{0xDE, 0xAD}
	resp := append([]byte{'R', 0x00, 0x00, 0x02}, payload...)
	resp = append(resp, Checksum(resp[1:], Width8), 0x06)

	assert.Equal(t, payload, Payload(resp, 2))
	assert.Equal(t, byte(0x06), Ack(resp, 2))
}
