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

// Package testing provides test utilities including a wire-level clone-mode
// radio simulator.
//
// The VirtualRadio type simulates a transceiver's clone firmware at the
// serial protocol level: the programming-mode wake-up, the identity
// exchange, and checksummed block reads and writes. It speaks the same
// byte stream a real radio would, including TX/RX echo, so session code
// exercised against it takes the exact paths it takes against hardware.
package testing

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/OpenRigTools/go-rigclone/internal/frame"
	"github.com/OpenRigTools/go-rigclone/internal/syncutil"
)

// RadioConfig describes the protocol dialect a VirtualRadio speaks. The
// zero value is not usable; tests normally start from DefaultRadioConfig
// and tweak the fields under test.
type RadioConfig struct {
	// Magic is the enter-programming-mode command the radio expects.
	Magic []byte
	// MagicAck is sent back once the magic is accepted. Empty means the
	// radio acknowledges silently.
	MagicAck []byte
	// IdentCommand triggers the identity response.
	IdentCommand []byte
	// Ident is the raw identity frame, model string included.
	Ident []byte
	// ReadCommand and WriteCommand are the block transfer command bytes.
	ReadCommand  byte
	WriteCommand byte
	// Ack is the byte the radio sends to confirm a write (and trails read
	// responses when ReadAck is set).
	Ack byte
	// ChecksumSkip is how many leading frame bytes stay outside the sum.
	ChecksumSkip int
	// ChecksumWidth selects full-byte or low-nibble checksums.
	ChecksumWidth frame.Width
	// ReadAck appends an ACK byte after each read response's checksum.
	ReadAck bool
	// TrailerLen is the number of opaque bytes the host appends after a
	// write frame's checksum. The radio consumes and ignores them.
	TrailerLen int
	// Echo mirrors every received byte back before the response, the way
	// single-wire programming cables do.
	Echo bool
	// ExitCommand ends programming mode; ExitAck is the reply, if any.
	ExitCommand []byte
	ExitAck     []byte
	// MemorySize is the size of the simulated memory in bytes.
	MemorySize int
}

// DefaultRadioConfig returns the dialect the packaged AnyTone-style
// profiles expect: "PROGRAM" wake-up with a "QX\x06" token, 16-byte
// identity, echoed writes, ACK-trailed reads.
func DefaultRadioConfig() RadioConfig {
	ident := make([]byte, 16)
	ident[0] = 'I'
	copy(ident[1:], "QX588UV")
	return RadioConfig{
		Magic:         []byte("PROGRAM"),
		MagicAck:      []byte{'Q', 'X', 0x06},
		IdentCommand:  []byte{0x02},
		Ident:         ident,
		ReadCommand:   'R',
		WriteCommand:  'W',
		Ack:           0x06,
		ChecksumSkip:  1,
		ChecksumWidth: frame.Width8,
		ReadAck:       true,
		TrailerLen:    1,
		Echo:          true,
		ExitCommand:   []byte("END"),
		ExitAck:       []byte{0x06},
		MemorySize:    0x8000,
	}
}

// radioState tracks where the simulated firmware is in its session.
type radioState int

const (
	stateAwaitingMagic radioState = iota
	stateProgramming
	stateDone
)

// VirtualRadio simulates a transceiver's clone firmware at the wire level.
// It implements io.ReadWriter plus the no-op timeout and close methods the
// session's channel contract wants, so it plugs in directly.
//
// Fault injection methods let tests provoke the protocol's failure paths:
// a forged checksum, a refused write, a radio that stops answering.
type VirtualRadio struct {
	memory        []byte
	rxBuffer      bytes.Buffer
	txBuffer      bytes.Buffer
	config        RadioConfig
	state         radioState
	mu            syncutil.Mutex
	readsServed   int
	writesServed  int
	forgeChecksum bool
	nakNextWrite  bool
	dead          bool
}

// NewVirtualRadio creates a simulator speaking the given dialect, with
// memory initialized to a repeating address pattern so downloads have
// recognizable content.
func NewVirtualRadio(config RadioConfig) *VirtualRadio {
	mem := make([]byte, config.MemorySize)
	for i := range mem {
		mem[i] = byte(i)
	}
	return &VirtualRadio{
		memory: mem,
		config: config,
		state:  stateAwaitingMagic,
	}
}

// Write implements io.Writer, receiving bytes from the host side.
func (v *VirtualRadio) Write(data []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.dead {
		// A dead radio still has a wire: bytes go out, nothing comes back.
		return len(data), nil
	}

	if v.config.Echo {
		v.txBuffer.Write(data)
	}
	v.rxBuffer.Write(data)
	v.process()
	return len(data), nil
}

// Read implements io.Reader. An empty transmit buffer reads as (0, nil),
// which is how the serial layer reports an elapsed deadline.
func (v *VirtualRadio) Read(buf []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.txBuffer.Len() == 0 {
		return 0, nil
	}
	return v.txBuffer.Read(buf)
}

// SetReadTimeout satisfies the session's channel contract. The simulator
// answers instantly, so the deadline is irrelevant.
func (*VirtualRadio) SetReadTimeout(time.Duration) error { return nil }

// Close satisfies the channel contract.
func (*VirtualRadio) Close() error { return nil }

// Memory returns the backing memory. Tests may pre-fill it before a
// download or inspect it after an upload.
func (v *VirtualRadio) Memory() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.memory
}

// SetIdent replaces the identity frame, letting tests present a model the
// host does not expect.
func (v *VirtualRadio) SetIdent(ident []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config.Ident = ident
}

// ForgeNextChecksum corrupts the checksum of the next read response.
func (v *VirtualRadio) ForgeNextChecksum() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.forgeChecksum = true
}

// NAKNextWrite makes the radio refuse the next block write.
func (v *VirtualRadio) NAKNextWrite() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nakNextWrite = true
}

// GoDead simulates a radio that was unplugged or powered off: writes are
// swallowed, the echo stops, and no response ever arrives.
func (v *VirtualRadio) GoDead() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dead = true
	v.txBuffer.Reset()
}

// ReadsServed reports how many block reads completed.
func (v *VirtualRadio) ReadsServed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.readsServed
}

// WritesServed reports how many block writes were accepted.
func (v *VirtualRadio) WritesServed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.writesServed
}

// InProgrammingMode reports whether the wake-up handshake completed and
// no exit command has been seen yet.
func (v *VirtualRadio) InProgrammingMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == stateProgramming
}

// process consumes complete commands from the receive buffer. Called with
// the lock held.
func (v *VirtualRadio) process() {
	for {
		data := v.rxBuffer.Bytes()
		if len(data) == 0 {
			return
		}

		switch v.state {
		case stateAwaitingMagic:
			if !v.handleMagic(data) {
				return
			}
		case stateProgramming:
			if !v.handleCommand(data) {
				return
			}
		case stateDone:
			// Post-exit bytes fall on deaf ears.
			v.rxBuffer.Reset()
			return
		}
	}
}

// handleMagic waits for the full magic sequence. Reports false when more
// bytes are needed.
func (v *VirtualRadio) handleMagic(data []byte) bool {
	if len(data) < len(v.config.Magic) {
		return false
	}
	v.rxBuffer.Next(len(v.config.Magic))
	if bytes.Equal(data[:len(v.config.Magic)], v.config.Magic) {
		v.txBuffer.Write(v.config.MagicAck)
		v.state = stateProgramming
	}
	// Wrong magic: real firmware just stays silent.
	return true
}

// handleCommand dispatches one command in programming mode. Reports false
// when the buffered bytes do not yet form a complete command.
func (v *VirtualRadio) handleCommand(data []byte) bool {
	if bytes.HasPrefix(data, v.config.ExitCommand) {
		v.rxBuffer.Next(len(v.config.ExitCommand))
		v.txBuffer.Write(v.config.ExitAck)
		v.state = stateDone
		return true
	}
	if bytes.HasPrefix(data, v.config.IdentCommand) {
		v.rxBuffer.Next(len(v.config.IdentCommand))
		v.txBuffer.Write(v.config.Ident)
		return true
	}

	switch data[0] {
	case v.config.ReadCommand:
		return v.handleRead(data)
	case v.config.WriteCommand:
		return v.handleWrite(data)
	default:
		// Unknown byte, drop it and keep going.
		v.rxBuffer.Next(1)
		return true
	}
}

// handleRead serves one block read request: cmd, addr (big endian), length.
func (v *VirtualRadio) handleRead(data []byte) bool {
	if len(data) < frame.HeaderLen {
		return false
	}
	addr := binary.BigEndian.Uint16(data[1:3])
	length := int(data[3])
	v.rxBuffer.Next(frame.HeaderLen)

	if int(addr)+length > len(v.memory) {
		// Out-of-range read: silence, like firmware that wedges.
		return true
	}

	resp := make([]byte, 0, frame.ResponseLen(length, v.config.ReadAck))
	resp = append(resp, v.config.ReadCommand, byte(addr>>8), byte(addr), byte(length))
	resp = append(resp, v.memory[addr:int(addr)+length]...)

	sum := frame.Checksum(resp[v.config.ChecksumSkip:], v.config.ChecksumWidth)
	if v.forgeChecksum {
		sum ^= 0xFF
		v.forgeChecksum = false
	}
	resp = append(resp, sum)
	if v.config.ReadAck {
		resp = append(resp, v.config.Ack)
	}

	v.txBuffer.Write(resp)
	v.readsServed++
	return true
}

// handleWrite consumes one block write frame and verifies its checksum
// before committing the payload to memory.
func (v *VirtualRadio) handleWrite(data []byte) bool {
	if len(data) < frame.HeaderLen {
		return false
	}
	length := int(data[3])
	frameLen := frame.HeaderLen + length + 1 + v.config.TrailerLen
	if len(data) < frameLen {
		return false
	}

	addr := binary.BigEndian.Uint16(data[1:3])
	body := data[:frame.HeaderLen+length]
	sum := data[frame.HeaderLen+length]
	v.rxBuffer.Next(frameLen)

	if v.nakNextWrite {
		v.nakNextWrite = false
		v.txBuffer.Write([]byte{0x15})
		return true
	}
	if frame.Checksum(body[v.config.ChecksumSkip:], v.config.ChecksumWidth) != sum {
		v.txBuffer.Write([]byte{0x15})
		return true
	}
	if int(addr)+length > len(v.memory) {
		v.txBuffer.Write([]byte{0x15})
		return true
	}

	copy(v.memory[addr:], body[frame.HeaderLen:])
	v.txBuffer.Write([]byte{v.config.Ack})
	v.writesServed++
	return true
}
