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
	"fmt"
	"time"

	"github.com/OpenRigTools/go-rigclone/internal/frame"
)

// Parity names the serial parity setting a radio expects.
type Parity string

const (
	// ParityNone - 8N1, the common case
	ParityNone Parity = "none"
	// ParityEven - 8E1
	ParityEven Parity = "even"
	// ParityOdd - 8O1
	ParityOdd Parity = "odd"
)

// AddrRange is a half-open [Start, End) span of the radio's address space
// transferred during a clone.
type AddrRange struct {
	Start uint16
	End   uint32 // exclusive; uint32 so a range may end at 0x10000
}

// Size returns the byte count covered by the range.
func (r AddrRange) Size() int {
	return int(r.End) - int(r.Start)
}

// ProbeRead describes a fixed-address read some radios require before the
// upload write loop begins, to reset an internal block counter.
type ProbeRead struct {
	Addr   uint16
	Length byte
}

// Profile is the complete data description of one radio variant's clone
// protocol. Vendor behavior differences are expressed here as values, never
// as engine subclasses; a single Session serves every profile.
//
// The zero value is not usable: at minimum Model, Magic, IdentCommand,
// IdentLength, Models, BlockSize and Ranges must be set. Defaults for the
// remaining fields are applied by Open.
type Profile struct {
	Vendor string
	Model  string

	// Serial line configuration, applied once when the port is opened
	BaudRate int
	Parity   Parity

	// Handshake
	Magic             []byte   // enter-programming-mode command
	MagicAck          []byte   // expected response token; leading bytes must match exactly
	IdentCommand      []byte   // model inquiry command
	IdentLength       int      // fixed identity frame size
	IdentSkip         int      // identity frame bytes preceding the model string
	Models            []string // allow-listed model/version strings, compared exactly
	HandshakeAttempts int      // identify retry budget, default 5

	// Block transfer
	ReadCommand   byte // default 'R'
	WriteCommand  byte // default 'W'
	Ack           byte // acknowledgement byte, default 0x06
	BlockSize     int
	ChecksumWidth frame.Width // default Width8
	ChecksumSkip  *int        // frame bytes excluded from the sum; nil means 1 (the command byte), explicit 0 sums the whole frame
	EchoesWrites  bool        // radio echoes every byte written on a shared TX/RX line
	ReadAck       bool        // read responses carry a trailing ACK byte after the checksum
	WriteTrailer  []byte      // bytes appended after the checksum on write frames

	// Upload behavior
	ProbeRead  *ProbeRead // optional fixed read before the write loop
	WriteGuard uint16     // addresses below this are downloaded but never written back

	// Session teardown
	ExitCommand []byte
	ExitAckLen  int // response bytes read (and discarded) after the exit command

	// Memory layout
	Ranges []AddrRange

	// Per-read deadline on the channel, default 1s
	ReadTimeout time.Duration
}

// MemorySize returns the total number of image bytes the profile transfers.
func (p *Profile) MemorySize() int {
	total := 0
	for _, r := range p.Ranges {
		total += r.Size()
	}
	return total
}

// Validate checks that the profile describes a usable protocol.
func (p *Profile) Validate() error {
	switch {
	case p.Model == "":
		return fmt.Errorf("%w: profile has no model name", ErrInvalidParam)
	case len(p.Magic) == 0:
		return fmt.Errorf("%w: profile %q has no programming-mode magic", ErrInvalidParam, p.Model)
	case len(p.IdentCommand) == 0:
		return fmt.Errorf("%w: profile %q has no identify command", ErrInvalidParam, p.Model)
	case p.IdentLength <= 0:
		return fmt.Errorf("%w: profile %q has no identity frame length", ErrInvalidParam, p.Model)
	case len(p.Models) == 0:
		return fmt.Errorf("%w: profile %q has an empty model allow-list", ErrInvalidParam, p.Model)
	case p.BlockSize <= 0 || p.BlockSize > 0xFF:
		return fmt.Errorf("%w: profile %q block size %d out of range", ErrInvalidParam, p.Model, p.BlockSize)
	case len(p.Ranges) == 0:
		return fmt.Errorf("%w: profile %q has no address ranges", ErrInvalidParam, p.Model)
	}

	for _, id := range p.Models {
		if p.IdentSkip+len(id) > p.IdentLength {
			return fmt.Errorf("%w: profile %q model id %q does not fit the identity frame",
				ErrInvalidParam, p.Model, id)
		}
	}

	for _, r := range p.Ranges {
		if r.Size() <= 0 || r.End > 0x10000 {
			return fmt.Errorf("%w: profile %q range 0x%04X-0x%05X invalid",
				ErrInvalidParam, p.Model, r.Start, r.End)
		}
	}

	if p.ChecksumWidth != 0 && p.ChecksumWidth != frame.Width8 && p.ChecksumWidth != frame.Width4 {
		return fmt.Errorf("%w: profile %q checksum width %d", ErrInvalidParam, p.Model, p.ChecksumWidth)
	}

	if p.ChecksumSkip != nil && *p.ChecksumSkip < 0 {
		return fmt.Errorf("%w: profile %q checksum skip %d", ErrInvalidParam, p.Model, *p.ChecksumSkip)
	}

	return nil
}

// withDefaults returns a copy of the profile with unset fields filled in.
func (p *Profile) withDefaults() *Profile {
	out := *p
	if out.ReadCommand == 0 {
		out.ReadCommand = 'R'
	}
	if out.WriteCommand == 0 {
		out.WriteCommand = 'W'
	}
	if out.Ack == 0 {
		out.Ack = 0x06
	}
	if out.ChecksumWidth == 0 {
		out.ChecksumWidth = frame.Width8
	}
	if out.ChecksumSkip == nil {
		skip := defaultChecksumSkip
		out.ChecksumSkip = &skip
	}
	if out.HandshakeAttempts == 0 {
		out.HandshakeAttempts = defaultHandshakeAttempts
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaultReadTimeout
	}
	if out.BaudRate == 0 {
		out.BaudRate = 9600
	}
	if out.Parity == "" {
		out.Parity = ParityNone
	}
	return &out
}

const (
	defaultHandshakeAttempts = 5
	defaultChecksumSkip      = 1
	defaultReadTimeout       = time.Second
)
