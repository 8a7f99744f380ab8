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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileYAML = `
profiles:
  - vendor: Acme
    model: YAMLRIG-1
    baud_rate: 4800
    parity: even
    magic: "50 52 4f 47 52 41 4d"
    magic_ack: "51 58 06"
    ident_command: "02"
    ident_length: 16
    ident_skip: 1
    models:
      - "YAMLRIG"
    read_command: "52"
    write_command: "57"
    ack: "06"
    block_size: 32
    checksum_width: 4
    checksum_skip: 0
    echoes_writes: true
    read_ack: true
    write_trailer: "06"
    probe_read_addr: 0
    write_guard: 256
    exit_command: "454e44"
    exit_ack_len: 1
    read_timeout_ms: 1500
    ranges:
      - start: 0
        end: 16384
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProfiles(t *testing.T) {
	t.Parallel()

	profiles, err := LoadProfiles(writeTempYAML(t, profileYAML))
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, "Acme", p.Vendor)
	assert.Equal(t, "YAMLRIG-1", p.Model)
	assert.Equal(t, 4800, p.BaudRate)
	assert.Equal(t, ParityEven, p.Parity)
	assert.Equal(t, []byte("PROGRAM"), p.Magic)
	assert.Equal(t, []byte{'Q', 'X', 0x06}, p.MagicAck)
	assert.Equal(t, []byte{0x02}, p.IdentCommand)
	assert.Equal(t, byte('R'), p.ReadCommand)
	assert.Equal(t, byte('W'), p.WriteCommand)
	assert.Equal(t, 32, p.BlockSize)
	assert.EqualValues(t, 4, p.ChecksumWidth)
	// Whole-frame checksum: an explicit zero skip must survive loading.
	require.NotNil(t, p.ChecksumSkip)
	assert.Equal(t, 0, *p.ChecksumSkip)
	assert.True(t, p.EchoesWrites)
	assert.True(t, p.ReadAck)
	assert.Equal(t, []byte{0x06}, p.WriteTrailer)
	assert.Equal(t, uint16(0x0100), p.WriteGuard)
	assert.Equal(t, []byte("END"), p.ExitCommand)
	assert.Equal(t, 1500*time.Millisecond, p.ReadTimeout)
	require.Len(t, p.Ranges, 1)
	assert.Equal(t, 0x4000, p.Ranges[0].Size())

	// Probe read with no explicit length falls back to the block size.
	require.NotNil(t, p.ProbeRead)
	assert.Equal(t, uint16(0), p.ProbeRead.Addr)
	assert.Equal(t, byte(32), p.ProbeRead.Length)

	// Loading also registers.
	got, ok := LookupProfile("YAMLRIG-1")
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestLoadProfilesRejectsMultiByteCommand(t *testing.T) {
	t.Parallel()

	bad := `
profiles:
  - model: BADRIG
    magic: "50"
    ident_command: "02"
    ident_length: 16
    models: ["BAD"]
    read_command: "5252"
    block_size: 16
    ranges:
      - start: 0
        end: 256
`
	_, err := LoadProfiles(writeTempYAML(t, bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestLoadProfilesRejectsBadHex(t *testing.T) {
	t.Parallel()

	bad := `
profiles:
  - model: BADHEX
    magic: "not hex"
`
	_, err := LoadProfiles(writeTempYAML(t, bad))
	require.Error(t, err)
}

func TestLoadProfilesMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
