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

// Package detection finds serial ports that look like radio programming
// cables. Programming cables are almost always one of a handful of
// USB-serial bridge chips, so detection is purely descriptor based: no
// bytes are ever sent to a candidate port, because poking random serial
// devices with vendor magic is how you reboot someone's UPS.
package detection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Confidence represents how likely a port is to be a programming cable.
type Confidence int

const (
	// Low confidence - a serial port with no identifying USB metadata
	Low Confidence = iota
	// Medium confidence - a USB-serial bridge, vendor unknown
	Medium
	// High confidence - a bridge chip known to ship in programming cables
	High
)

// DeviceInfo describes one detected candidate port.
type DeviceInfo struct {
	// Path is the device node, e.g. /dev/ttyUSB0 or COM3
	Path string
	// Name is a human-readable description of the bridge chip, if known
	Name string
	// VIDPID is the USB vendor:product pair, uppercase hex
	VIDPID string
	// SerialNumber is the USB serial, when the adapter reports one
	SerialNumber string
	// Confidence is the detection confidence level
	Confidence Confidence
}

// String returns a human-readable representation of the device.
func (d DeviceInfo) String() string {
	confidence := "low"
	switch d.Confidence {
	case Medium:
		confidence = "medium"
	case High:
		confidence = "high"
	}
	name := d.Name
	if name == "" {
		name = "serial port"
	}
	return fmt.Sprintf("%s at %s (confidence: %s)", name, d.Path, confidence)
}

// Options configures detection behavior.
type Options struct {
	// Blocklist lists VID:PID pairs to skip (e.g. "1234:ABCD")
	Blocklist []string
	// IgnorePaths lists device paths to skip (e.g. "/dev/ttyS0")
	IgnorePaths []string
	// IncludeUnknown also reports ports with no USB metadata
	IncludeUnknown bool
}

// ErrNoDevicesFound indicates no candidate ports were detected.
var ErrNoDevicesFound = errors.New("no programming cables found")

// knownBridges maps USB VID:PID pairs to the bridge chips found in
// commercial programming cables. The same four chips cover nearly every
// cable on the market.
var knownBridges = map[string]string{
	"0403:6001": "FTDI FT232R",
	"0403:6015": "FTDI FT231X",
	"067B:2303": "Prolific PL2303",
	"067B:23A3": "Prolific PL2303GC",
	"10C4:EA60": "Silicon Labs CP210x",
	"1A86:7523": "WCH CH340",
	"1A86:55D4": "WCH CH9102",
}

// Detect enumerates serial ports and reports candidates ordered as the
// enumerator returns them. Purely passive; safe to call while other
// software owns some of the ports.
func Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = &Options{}
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var devices []DeviceInfo
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, ctx.Err()
		default:
		}

		device, ok := classifyPort(port, opts)
		if ok {
			devices = append(devices, device)
		}
	}

	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	return devices, nil
}

// classifyPort maps one enumerated port to a DeviceInfo, or rejects it.
func classifyPort(port *enumerator.PortDetails, opts *Options) (DeviceInfo, bool) {
	if isPathIgnored(port.Name, opts.IgnorePaths) {
		return DeviceInfo{}, false
	}

	if !port.IsUSB {
		if !opts.IncludeUnknown {
			return DeviceInfo{}, false
		}
		return DeviceInfo{Path: port.Name, Confidence: Low}, true
	}

	vidpid := strings.ToUpper(port.VID + ":" + port.PID)
	if isBlocked(vidpid, opts.Blocklist) {
		return DeviceInfo{}, false
	}

	device := DeviceInfo{
		Path:         port.Name,
		VIDPID:       vidpid,
		SerialNumber: port.SerialNumber,
		Confidence:   Medium,
	}
	if name, known := knownBridges[vidpid]; known {
		device.Name = name
		device.Confidence = High
	}
	return device, true
}

// isBlocked checks a VID:PID pair against the blocklist, case insensitive.
func isBlocked(vidpid string, blocklist []string) bool {
	for _, blocked := range blocklist {
		if strings.EqualFold(vidpid, blocked) {
			return true
		}
	}
	return false
}

// isPathIgnored checks a device path against the ignore list.
func isPathIgnored(path string, ignorePaths []string) bool {
	for _, ignored := range ignorePaths {
		if path == ignored {
			return true
		}
	}
	return false
}
