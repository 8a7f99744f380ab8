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
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/lumberjack.v2"
	"gopkg.in/yaml.v2"
)

// toolConfig is the on-disk configuration for rigclone-tool. Every field
// has a flag equivalent; flags win.
type toolConfig struct {
	// Device is the default serial port
	Device string `yaml:"device"`
	// Model is the default radio model
	Model string `yaml:"model"`
	// Profiles points at an extra profile definitions file
	Profiles string `yaml:"profiles"`
	// Logging controls the rotating log file
	Logging logConfig `yaml:"logging"`
	// Debug enables protocol-level debug output
	Debug bool `yaml:"debug"`
}

type logConfig struct {
	// File is the log file path; empty logs to stderr only
	File string `yaml:"file"`
	// MaxSizeMB rotates the file past this size (default 10)
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups keeps this many rotated files (default 3)
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays drops rotated files older than this (default 30)
	MaxAgeDays int `yaml:"max_age_days"`
	// Compress gzips rotated files
	Compress bool `yaml:"compress"`
}

// defaultConfigPath returns ~/.config/rigclone/config.yaml, or empty if
// the home directory cannot be resolved.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rigclone", "config.yaml")
}

// loadConfig reads a YAML config file. A missing file at the default path
// is not an error; an explicitly named missing file is.
func loadConfig(path string, explicit bool) (*toolConfig, error) {
	cfg := &toolConfig{
		Logging: logConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user's own flag or home dir
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// setupLogging points the standard logger at stderr plus, when configured,
// a size-rotated log file. Returns a closer for the rotating file.
func setupLogging(cfg *logConfig) io.Closer {
	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		log.Printf("cannot create log directory: %v, logging to stderr only", err)
		return nil
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotating))
	return rotating
}
