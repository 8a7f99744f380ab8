//go:build linux

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

package serial

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrPortBusy is returned when another process already holds the clone
// lock for a device.
var ErrPortBusy = errors.New("serial port is locked by another process")

// portLock holds a flock(2) on a UUCP-style lock file. Advisory only,
// but enough to keep two clone runs off the same cable.
type portLock struct {
	file *os.File
	path string
}

// lockDir is a variable so tests can point it at a temp directory.
var lockDir = "/var/lock"

func acquirePortLock(portName string) (*portLock, error) {
	dir := lockDir
	if _, err := os.Stat(dir); err != nil {
		// No /var/lock on this system, fall back to tmp.
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "LCK.."+filepath.Base(portName))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrPortBusy, path)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	fmt.Fprintf(f, "%10d\n", os.Getpid())
	return &portLock{file: f, path: path}, nil
}

func (l *portLock) release() {
	if l == nil || l.file == nil {
		return
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	_ = os.Remove(l.path)
	l.file = nil
}
