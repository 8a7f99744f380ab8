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

// Width selects how many bits of the byte sum form the check value.
// Most clone protocols use the full 8-bit sum; a few vendors transmit
// only the low nibble.
type Width int

const (
	// Width8 uses the full sum modulo 256
	Width8 Width = 8
	// Width4 uses only the low 4 bits of the sum
	Width4 Width = 4
)

// Sum computes the unsigned byte sum modulo 256 over data.
func Sum(data []byte) byte {
	chk := byte(0)
	for _, b := range data {
		chk += b
	}
	return chk
}

// Checksum computes the check value for data at the given width.
func Checksum(data []byte, w Width) byte {
	chk := Sum(data)
	if w == Width4 {
		chk &= 0x0F
	}
	return chk
}
