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

// Package rigclone implements the serial "clone mode" memory transfer
// protocol spoken by many amateur-radio transceivers: enter programming
// mode, verify the radio's model string, then stream fixed-size memory
// blocks with per-block checksums until a full image of the radio's
// programmable memory has been read or written.
//
// The protocol engine is generic; everything vendor-specific (magic bytes,
// block size, checksum width, echo behavior, memory ranges) lives in a
// Profile value, so one Session implementation serves every supported
// radio variant. A Session drives exactly one download or upload over a
// Channel, which is usually a serial port from the transport/serial
// subpackage but can be anything byte-oriented with a read timeout.
//
// Basic usage:
//
//	port, err := serial.Open("/dev/ttyUSB0", profile)
//	if err != nil { ... }
//	defer port.Close()
//
//	session, err := rigclone.Open(port, profile,
//	    rigclone.WithProgress(func(p rigclone.Progress) {
//	        fmt.Printf("\r%d/%d bytes", p.Current, p.Maximum)
//	    }))
//	if err != nil { ... }
//	img, err := session.Download(context.Background())
package rigclone
