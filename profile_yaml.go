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
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/OpenRigTools/go-rigclone/internal/frame"
)

// hexBytes decodes YAML byte-sequence fields written as hex strings,
// e.g. "50 52 4F 47 52 41 4D" or "0x06".
type hexBytes []byte

func (h *hexBytes) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, " ", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex byte string %q: %w", s, err)
	}
	*h = b
	return nil
}

// yamlProfile is the on-disk profile schema. Byte-valued fields are hex
// strings; model strings stay literal.
type yamlProfile struct {
	Vendor            string   `yaml:"vendor"`
	Model             string   `yaml:"model"`
	BaudRate          int      `yaml:"baud_rate"`
	Parity            string   `yaml:"parity"`
	Magic             hexBytes `yaml:"magic"`
	MagicAck          hexBytes `yaml:"magic_ack"`
	IdentCommand      hexBytes `yaml:"ident_command"`
	IdentLength       int      `yaml:"ident_length"`
	IdentSkip         int      `yaml:"ident_skip"`
	Models            []string `yaml:"models"`
	HandshakeAttempts int      `yaml:"handshake_attempts"`
	ReadCommand       hexBytes `yaml:"read_command"`
	WriteCommand      hexBytes `yaml:"write_command"`
	Ack               hexBytes `yaml:"ack"`
	BlockSize         int      `yaml:"block_size"`
	ChecksumWidth     int      `yaml:"checksum_width"`
	ChecksumSkip      *int     `yaml:"checksum_skip"`
	EchoesWrites      bool     `yaml:"echoes_writes"`
	ReadAck           bool     `yaml:"read_ack"`
	WriteTrailer      hexBytes `yaml:"write_trailer"`
	ProbeReadAddr     *uint16  `yaml:"probe_read_addr"`
	ProbeReadLength   byte     `yaml:"probe_read_length"`
	WriteGuard        uint16   `yaml:"write_guard"`
	ExitCommand       hexBytes `yaml:"exit_command"`
	ExitAckLen        int      `yaml:"exit_ack_len"`
	Ranges            []struct {
		Start uint16 `yaml:"start"`
		End   uint32 `yaml:"end"`
	} `yaml:"ranges"`
	ReadTimeoutMs int `yaml:"read_timeout_ms"`
}

func (y *yamlProfile) toProfile() (*Profile, error) {
	p := &Profile{
		Vendor:            y.Vendor,
		Model:             y.Model,
		BaudRate:          y.BaudRate,
		Parity:            Parity(y.Parity),
		Magic:             []byte(y.Magic),
		MagicAck:          []byte(y.MagicAck),
		IdentCommand:      []byte(y.IdentCommand),
		IdentLength:       y.IdentLength,
		IdentSkip:         y.IdentSkip,
		Models:            y.Models,
		HandshakeAttempts: y.HandshakeAttempts,
		BlockSize:         y.BlockSize,
		ChecksumWidth:     frame.Width(y.ChecksumWidth),
		ChecksumSkip:      y.ChecksumSkip,
		EchoesWrites:      y.EchoesWrites,
		ReadAck:           y.ReadAck,
		WriteTrailer:      []byte(y.WriteTrailer),
		WriteGuard:        y.WriteGuard,
		ExitCommand:       []byte(y.ExitCommand),
		ExitAckLen:        y.ExitAckLen,
		ReadTimeout:       time.Duration(y.ReadTimeoutMs) * time.Millisecond,
	}

	for _, single := range []struct {
		name string
		val  hexBytes
		dst  *byte
	}{
		{"read_command", y.ReadCommand, &p.ReadCommand},
		{"write_command", y.WriteCommand, &p.WriteCommand},
		{"ack", y.Ack, &p.Ack},
	} {
		switch len(single.val) {
		case 0:
		case 1:
			*single.dst = single.val[0]
		default:
			return nil, fmt.Errorf("%w: %s must be a single byte", ErrInvalidParam, single.name)
		}
	}

	if y.ProbeReadAddr != nil {
		length := y.ProbeReadLength
		if length == 0 {
			length = byte(y.BlockSize)
		}
		p.ProbeRead = &ProbeRead{Addr: *y.ProbeReadAddr, Length: length}
	}

	for _, r := range y.Ranges {
		p.Ranges = append(p.Ranges, AddrRange{Start: r.Start, End: r.End})
	}

	return p, nil
}

// LoadProfiles parses radio profiles from a YAML file and registers each
// one. The file holds a list of profile documents under a top-level
// "profiles" key.
func LoadProfiles(path string) ([]*Profile, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var doc struct {
		Profiles []yamlProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}

	profiles := make([]*Profile, 0, len(doc.Profiles))
	for i := range doc.Profiles {
		p, err := doc.Profiles[i].toProfile()
		if err != nil {
			return nil, fmt.Errorf("profile %d in %s: %w", i, path, err)
		}
		if err := RegisterProfile(p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}
