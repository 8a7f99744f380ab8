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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	content := `
device: /dev/ttyUSB0
model: 5888UV
debug: true
logging:
  file: /tmp/rigclone.log
  max_size_mb: 5
  compress: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)
	assert.Equal(t, "5888UV", cfg.Model)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/rigclone.log", cfg.Logging.File)
	assert.Equal(t, 5, cfg.Logging.MaxSizeMB)
	assert.True(t, cfg.Logging.Compress)
	// Unset fields keep their defaults.
	assert.Equal(t, 3, cfg.Logging.MaxBackups)
	assert.Equal(t, 30, cfg.Logging.MaxAgeDays)
}

func TestLoadConfigMissingDefaultIsFine(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Empty(t, cfg.Device)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
}

func TestLoadConfigMissingExplicitFails(t *testing.T) {
	t.Parallel()

	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), true)
	require.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: [unterminated"), 0o600))

	_, err := loadConfig(path, true)
	require.Error(t, err)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
}
