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

// Package frame builds and validates the wire frames of the clone
// protocol's block transfer phase.
//
// Every block request/response shares the same header layout:
//
//	cmd(1) | addr(2, big-endian) | len(1)
//
// A read request is the bare header. A read response and a write request
// append len payload bytes and a trailing checksum byte; some vendor
// variants add a fixed ACK byte after the checksum.
package frame

import "encoding/binary"

// HeaderLen is the fixed size of the block frame header.
const HeaderLen = 4

// BuildRead builds a read-block request frame.
func BuildRead(cmd byte, addr uint16, length byte) []byte {
	frm := make([]byte, HeaderLen)
	frm[0] = cmd
	binary.BigEndian.PutUint16(frm[1:3], addr)
	frm[3] = length
	return frm
}

// BuildWrite builds a write-block request frame. The checksum covers the
// frame bytes from skip (normally 1, excluding the command byte) through
// the end of the payload. trailer, if non-empty, is appended verbatim
// after the checksum byte.
func BuildWrite(cmd byte, addr uint16, payload []byte, skip int, w Width, trailer []byte) []byte {
	frm := make([]byte, 0, HeaderLen+len(payload)+1+len(trailer))
	frm = append(frm, BuildRead(cmd, addr, byte(len(payload)))...)
	frm = append(frm, payload...)
	frm = append(frm, Checksum(frm[skip:], w))
	frm = append(frm, trailer...)
	return frm
}

// ResponseLen returns the expected byte count of a read-block response
// for the given payload length.
func ResponseLen(blockLen int, hasAck bool) int {
	n := HeaderLen + blockLen + 1
	if hasAck {
		n++
	}
	return n
}

// ParseHeader decodes the frame header fields from buf, which must hold at
// least HeaderLen bytes.
func ParseHeader(buf []byte) (cmd byte, addr uint16, length byte) {
	return buf[0], binary.BigEndian.Uint16(buf[1:3]), buf[3]
}

// Payload returns the payload bytes of a read-block response.
func Payload(buf []byte, blockLen int) []byte {
	return buf[HeaderLen : HeaderLen+blockLen]
}

// VerifyChecksum reports whether the response checksum byte matches the sum
// over [skip, header+payload) at the given width. At Width4 only the low
// nibble of the received byte is compared; radios with 4-bit checksum
// hardware leave garbage in the high nibble.
func VerifyChecksum(buf []byte, skip, blockLen int, w Width) bool {
	end := HeaderLen + blockLen
	if skip < 0 || end+1 > len(buf) || skip > end {
		return false
	}
	received := buf[end]
	if w == Width4 {
		received &= 0x0F
	}
	return Checksum(buf[skip:end], w) == received
}

// Ack returns the trailing ACK byte of a read-block response that carries
// one. Call only when the response was sized with hasAck true.
func Ack(buf []byte, blockLen int) byte {
	return buf[HeaderLen+blockLen+1]
}
