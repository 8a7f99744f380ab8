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

// Image is a byte-for-byte snapshot of a radio's programmable memory: the
// concatenation, in address order, of every block the profile's ranges
// cover. Download builds one; Upload consumes one. The session owns the
// slice exclusively for the duration of a transfer.
type Image []byte

// block describes one request/response step of a transfer.
type block struct {
	addr   uint16
	length int    // uniform except a possibly short final block
	offset int    // position of this block's payload within the Image
	write  bool   // false for blocks below the profile's write guard
}

// blocks expands the profile's address ranges into the ordered block
// sequence of one transfer, including any short trailing block.
func (p *Profile) blocks() []block {
	var out []block
	offset := 0
	for _, r := range p.Ranges {
		for addr := int(r.Start); addr < int(r.End); addr += p.BlockSize {
			length := p.BlockSize
			if remain := int(r.End) - addr; remain < length {
				length = remain
			}
			out = append(out, block{
				addr:   uint16(addr),
				length: length,
				offset: offset,
				write:  addr >= int(p.WriteGuard),
			})
			offset += length
		}
	}
	return out
}
