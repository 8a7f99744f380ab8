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
	"testing"

	rigclone "github.com/OpenRigTools/go-rigclone"
	"github.com/stretchr/testify/assert"
	goserial "go.bug.st/serial"
)

func TestModeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		parity     rigclone.Parity
		wantParity goserial.Parity
	}{
		{name: "None", parity: rigclone.ParityNone, wantParity: goserial.NoParity},
		{name: "Even", parity: rigclone.ParityEven, wantParity: goserial.EvenParity},
		{name: "Odd", parity: rigclone.ParityOdd, wantParity: goserial.OddParity},
		{name: "Unset_Defaults_To_None", parity: "", wantParity: goserial.NoParity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			profile := &rigclone.Profile{BaudRate: 4800, Parity: tt.parity}
			mode := ModeFor(profile)
			assert.Equal(t, 4800, mode.BaudRate)
			assert.Equal(t, 8, mode.DataBits)
			assert.Equal(t, tt.wantParity, mode.Parity)
			assert.Equal(t, goserial.OneStopBit, mode.StopBits)
		})
	}
}

func TestIsInterruptedSystemCall(t *testing.T) {
	t.Parallel()

	assert.True(t, isInterruptedSystemCall(errors.New("drain: interrupted system call")))
	assert.True(t, isInterruptedSystemCall(errors.New("ioctl: EINTR")))
	assert.False(t, isInterruptedSystemCall(errors.New("device not configured")))
	assert.False(t, isInterruptedSystemCall(nil))
}
