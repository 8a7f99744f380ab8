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
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/OpenRigTools/go-rigclone/internal/frame"
)

// State tracks where a session is in its lifecycle. States only ever
// advance; Closed is terminal.
type State int

const (
	// StateIdle - session created, handshake not yet attempted
	StateIdle State = iota
	// StateIdentifying - programming-mode handshake in flight
	StateIdentifying
	// StateTransferring - identity confirmed, block transfer allowed
	StateTransferring
	// StateClosed - exit command sent (or session abandoned), terminal
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIdentifying:
		return "identifying"
	case StateTransferring:
		return "transferring"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// errShortFill is internal to readFull; callers wrap it with the
// operation-appropriate error type.
var errShortFill = errors.New("short fill")

// Session drives one complete clone-mode transfer (download or upload)
// over a Channel, enforcing the vendor handshake and per-block integrity
// checks described by its Profile.
//
// A Session is not safe for concurrent use: it assumes exclusive ownership
// of its channel from Open until Close, and exactly one Download or Upload
// runs to completion on the calling goroutine. There is no cancellation
// primitive beyond the context checked between blocks and the caller
// closing the channel out of band.
type Session struct {
	ch      Channel
	profile *Profile
	cfg     sessionConfig
	state   State
}

// Open performs the enter-programming-mode handshake and identity check on
// an already-open channel and returns a session ready to transfer.
//
// The handshake tolerates a bounded number of attempts (Profile
// HandshakeAttempts, default 5) before giving up; an identity that does
// not match the profile's allow-list fails immediately. The channel is
// left unmodified on failure apart from its read timeout.
func Open(ch Channel, profile *Profile, opts ...Option) (*Session, error) {
	if ch == nil {
		return nil, fmt.Errorf("%w: nil channel", ErrInvalidParam)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: nil profile", ErrInvalidParam)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		ch:      ch,
		profile: profile.withDefaults(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(&s.cfg)
	}

	timeout := s.profile.ReadTimeout
	if s.cfg.readTimeout > 0 {
		timeout = s.cfg.readTimeout
	}
	if err := ch.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("failed to set channel read timeout: %w", err)
	}

	retryConfig := s.cfg.retryConfig
	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
		retryConfig.MaxAttempts = s.profile.HandshakeAttempts
	}

	s.state = StateIdentifying
	err := RetryWithConfig(context.Background(), retryConfig, func() error {
		if err := s.enterProgramming(); err != nil {
			return err
		}
		return s.identify()
	})
	if err != nil {
		s.state = StateClosed
		return nil, err
	}

	s.state = StateTransferring
	return s, nil
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Profile returns the (defaulted) profile the session runs with.
func (s *Session) Profile() *Profile {
	return s.profile
}

// Download reads every block the profile's ranges cover and returns the
// assembled memory image. A checksum or framing failure aborts the whole
// transfer; the exit command is still attempted so the radio is not left
// stuck in programming mode. There is no per-block retry.
func (s *Session) Download(ctx context.Context) (Image, error) {
	if s.state != StateTransferring {
		return nil, fmt.Errorf("%w: cannot download in state %s", ErrSessionClosed, s.state)
	}

	total := s.profile.MemorySize()
	img := make(Image, 0, total)

	for _, b := range s.profile.blocks() {
		if err := ctx.Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("download cancelled: %w", err)
		}

		payload, err := s.readBlock(b.addr, b.length)
		if err != nil {
			s.Close()
			return nil, err
		}
		img = append(img, payload...)

		s.reportProgress(len(img), total, "Cloning from radio")
	}

	s.Close()
	return img, nil
}

// Upload writes image back to the radio block by block. Blocks below the
// profile's write guard are skipped (the radio's OEM area is read-only in
// practice). The exit command is always attempted, success or failure.
func (s *Session) Upload(ctx context.Context, img Image) error {
	if s.state != StateTransferring {
		return fmt.Errorf("%w: cannot upload in state %s", ErrSessionClosed, s.state)
	}
	if len(img) != s.profile.MemorySize() {
		return fmt.Errorf("%w: have %d bytes, profile wants %d",
			ErrImageSize, len(img), s.profile.MemorySize())
	}

	defer s.Close()

	// Some radios need a fixed-address read first to reset their
	// internal block counter before accepting writes.
	if probe := s.profile.ProbeRead; probe != nil {
		if _, err := s.readBlock(probe.Addr, int(probe.Length)); err != nil {
			return err
		}
	}

	total := s.profile.MemorySize()
	for _, b := range s.profile.blocks() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("upload cancelled: %w", err)
		}
		if !b.write {
			continue
		}

		payload := img[b.offset : b.offset+b.length]
		if err := s.writeBlock(b.addr, payload); err != nil {
			return err
		}

		s.reportProgress(b.offset+b.length, total, "Cloning to radio")
	}

	return nil
}

// Close sends the vendor end-programming command. It never fails the
// caller: the session may already be unusable, so channel errors are
// logged and swallowed. Close does not close the underlying channel,
// which the caller owns.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed

	if len(s.profile.ExitCommand) == 0 {
		return
	}
	if err := s.writeEcho("end programming mode", s.profile.ExitCommand); err != nil {
		Debugf("exit command failed: %v", err)
		return
	}
	if s.profile.ExitAckLen > 0 {
		ack := make([]byte, s.profile.ExitAckLen)
		if err := s.readFull(ack); err != nil {
			Debugf("no response to exit command: %v", err)
		} else if ack[0] != s.profile.Ack {
			// Seen in the wild: some radios answer the exit command
			// with 0x00 instead of the usual ACK. Harmless.
			Debugf("unexpected exit response: %s", hexdump(ack))
		}
	}
}

// enterProgramming sends the profile's magic and waits for the wake-up
// token, if the profile defines one.
func (s *Session) enterProgramming() error {
	if err := s.writeEcho("enter programming mode", s.profile.Magic); err != nil {
		// A radio that is off or absent never echoes the magic. That is
		// a failed handshake, not a transport fault.
		if errors.Is(err, ErrChannelTimeout) {
			Debugf("magic went unanswered")
			return NewHandshakeError("enter programming mode", s.cfg.portName)
		}
		return err
	}

	if len(s.profile.MagicAck) == 0 {
		return nil
	}

	token := make([]byte, len(s.profile.MagicAck))
	if err := s.readFull(token); err != nil {
		if errors.Is(err, errShortFill) {
			Debugf("no programming-mode response")
			return NewHandshakeError("enter programming mode", s.cfg.portName)
		}
		return err
	}
	if !bytes.Equal(token, s.profile.MagicAck) {
		Debugf("programming-mode response was: %s", hexdump(token))
		return NewHandshakeError("enter programming mode", s.cfg.portName)
	}
	return nil
}

// identify asks the radio for its model string and compares it against the
// profile's allow-list. Comparison is exact byte equality over each
// candidate's length, starting at the profile's ident offset.
func (s *Session) identify() error {
	if err := s.writeEcho("identify", s.profile.IdentCommand); err != nil {
		if errors.Is(err, ErrChannelTimeout) {
			Debugf("identify command went unanswered")
			return NewHandshakeError("identify", s.cfg.portName)
		}
		return err
	}

	ident := make([]byte, s.profile.IdentLength)
	if err := s.readFull(ident); err != nil {
		if errors.Is(err, errShortFill) {
			Debugf("short identity frame")
			return NewHandshakeError("identify", s.cfg.portName)
		}
		return err
	}

	for _, model := range s.profile.Models {
		candidate := ident[s.profile.IdentSkip : s.profile.IdentSkip+len(model)]
		if string(candidate) == model {
			Debugf("identified radio as %q", model)
			return nil
		}
	}

	Debugf("identity frame was: %s", hexdump(ident))
	return NewModelMismatchError("identify", s.cfg.portName)
}

// readBlock requests one block and validates the response framing,
// header echo, checksum and (when the variant carries one) trailing ACK.
func (s *Session) readBlock(addr uint16, length int) ([]byte, error) {
	p := s.profile

	req := frame.BuildRead(p.ReadCommand, addr, byte(length))
	if err := s.writeEcho("read block", req); err != nil {
		return nil, err
	}

	resp := make([]byte, frame.ResponseLen(length, p.ReadAck))
	if err := s.readFull(resp); err != nil {
		if errors.Is(err, errShortFill) {
			return nil, NewShortReadError("read block", s.cfg.portName, addr)
		}
		return nil, err
	}
	Debugf("block 0x%04X: %s", addr, hexdump(resp))

	if p.ReadAck && frame.Ack(resp, length) != p.Ack {
		return nil, NewAckError("read block", s.cfg.portName, addr)
	}

	_, gotAddr, gotLen := frame.ParseHeader(resp)
	if gotAddr != addr || int(gotLen) != length {
		Debugf("expected addr 0x%04X len %d, got addr 0x%04X len %d",
			addr, length, gotAddr, gotLen)
		return nil, NewBlockError("read block", s.cfg.portName, addr, ErrBlockMismatch)
	}

	if !frame.VerifyChecksum(resp, *p.ChecksumSkip, length, p.ChecksumWidth) {
		return nil, NewChecksumError("read block", s.cfg.portName, addr)
	}

	payload := make([]byte, length)
	copy(payload, frame.Payload(resp, length))
	return payload, nil
}

// writeBlock sends one block and waits for the single-byte ACK.
func (s *Session) writeBlock(addr uint16, payload []byte) error {
	p := s.profile

	req := frame.BuildWrite(p.WriteCommand, addr, payload, *p.ChecksumSkip, p.ChecksumWidth, p.WriteTrailer)
	if err := s.writeEcho("write block", req); err != nil {
		return err
	}

	ack := make([]byte, 1)
	if err := s.readFull(ack); err != nil {
		if errors.Is(err, errShortFill) {
			return NewAckError("write block", s.cfg.portName, addr)
		}
		return err
	}
	if ack[0] != p.Ack {
		Debugf("ack was: %s", hexdump(ack))
		return NewAckError("write block", s.cfg.portName, addr)
	}
	return nil
}

// writeEcho writes data to the channel and, when the radio shares a single
// TX/RX line, reads back and verifies exactly len(data) bytes of echo
// before the caller interprets the real response. The cutoff is length
// based, never a fixed delay.
func (s *Session) writeEcho(op string, data []byte) error {
	n, err := s.ch.Write(data)
	if err != nil {
		return NewProtocolError(op, s.cfg.portName,
			fmt.Errorf("%w: %w", ErrChannelWrite, err), ErrorTypeTransient)
	}
	if n != len(data) {
		return NewProtocolError(op, s.cfg.portName, ErrChannelWrite, ErrorTypeTransient)
	}

	if !s.profile.EchoesWrites {
		return nil
	}

	echo := make([]byte, len(data))
	if err := s.readFull(echo); err != nil {
		if errors.Is(err, errShortFill) {
			return NewTimeoutError(op, s.cfg.portName)
		}
		return err
	}
	if !bytes.Equal(echo, data) {
		Debugf("echo was: %s, sent: %s", hexdump(echo), hexdump(data))
		return NewProtocolError(op, s.cfg.portName, ErrEchoMismatch, ErrorTypePermanent)
	}
	return nil
}

// readFull fills buf completely, polling the channel until it stops
// producing bytes. A read that returns nothing means the per-read deadline
// elapsed with the frame incomplete; readFull fails fast with errShortFill
// rather than waiting for a device that has gone quiet.
func (s *Session) readFull(buf []byte) error {
	filled := 0
	for filled < len(buf) {
		n, err := s.ch.Read(buf[filled:])
		if err != nil {
			return NewProtocolError("read", s.cfg.portName,
				fmt.Errorf("%w: %w", ErrChannelRead, err), ErrorTypeTransient)
		}
		if n == 0 {
			return fmt.Errorf("%w: got %d of %d bytes", errShortFill, filled, len(buf))
		}
		filled += n
	}
	return nil
}

// reportProgress invokes the progress callback, if any. Purely
// observational; the callback cannot alter control flow.
func (s *Session) reportProgress(current, maximum int, message string) {
	if s.cfg.progress != nil {
		s.cfg.progress(Progress{
			Current: current,
			Maximum: maximum,
			Message: message,
		})
	}
}
