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
	"fmt"
	"sort"

	"github.com/OpenRigTools/go-rigclone/internal/syncutil"
)

// Built-in profiles for the AnyTone clone protocol family. The 5888UV
// mobile and its OEM rebrands share one wire protocol and memory layout;
// the TERMN-8R/OBLTR-8R handhelds speak the same framing with a different
// identity string.
var (
	// ProfileAnyTone5888UV covers the AnyTone 5888UV and its rebrands
	// (Intek HR-2040, Polmar DB-50M, Powerwerx DB-750X).
	ProfileAnyTone5888UV = &Profile{
		Vendor:       "AnyTone",
		Model:        "5888UV",
		BaudRate:     9600,
		Magic:        []byte("PROGRAM"),
		MagicAck:     []byte{'Q', 'X', 0x06},
		IdentCommand: []byte{0x02},
		IdentLength:  16,
		IdentSkip:    1,
		Models:       []string{"QX588UV", "HR-2040", "DB-50M\x00", "DB-750X"},
		BlockSize:    0x10,
		EchoesWrites: true,
		ReadAck:      true,
		WriteTrailer: []byte{0x06},
		WriteGuard:   0x0100,
		ExitCommand:  []byte{0x45, 0x4E, 0x44}, // "END"
		ExitAckLen:   1,
		Ranges:       []AddrRange{{Start: 0x0000, End: 0x8000}},
	}

	// ProfileAnyToneTERMN8R covers the TERMN-8R handheld.
	ProfileAnyToneTERMN8R = &Profile{
		Vendor:       "AnyTone",
		Model:        "TERMN-8R",
		BaudRate:     9600,
		Magic:        []byte("PROGRAM"),
		MagicAck:     []byte{'Q', 'X', 0x06},
		IdentCommand: []byte{0x02},
		IdentLength:  16,
		IdentSkip:    1,
		Models:       []string{"TERMN8R"},
		BlockSize:    0x10,
		EchoesWrites: true,
		ReadAck:      true,
		WriteTrailer: []byte{0x06},
		WriteGuard:   0x0100,
		ExitCommand:  []byte{0x45, 0x4E, 0x44},
		ExitAckLen:   1,
		Ranges:       []AddrRange{{Start: 0x0000, End: 0x8000}},
	}

	// ProfileAnyTone5888UVIII covers the 5888UV III mobile. It speaks the
	// same dialect as the 5888UV but identifies with the command byte
	// folded into the model string, so the ident is matched from offset
	// zero.
	ProfileAnyTone5888UVIII = &Profile{
		Vendor:       "AnyTone",
		Model:        "5888UVIII",
		BaudRate:     9600,
		Magic:        []byte("PROGRAM"),
		MagicAck:     []byte{'Q', 'X', 0x06},
		IdentCommand: []byte{0x02},
		IdentLength:  16,
		IdentSkip:    0,
		Models:       []string{"I588UVP"},
		BlockSize:    0x10,
		EchoesWrites: true,
		ReadAck:      true,
		WriteTrailer: []byte{0x06},
		WriteGuard:   0x0100,
		ExitCommand:  []byte{0x45, 0x4E, 0x44},
		ExitAckLen:   1,
		Ranges:       []AddrRange{{Start: 0x0000, End: 0x8000}},
	}

	// ProfileAnyToneOBLTR8R covers the OBLTR-8R handheld.
	ProfileAnyToneOBLTR8R = &Profile{
		Vendor:       "AnyTone",
		Model:        "OBLTR-8R",
		BaudRate:     9600,
		Magic:        []byte("PROGRAM"),
		MagicAck:     []byte{'Q', 'X', 0x06},
		IdentCommand: []byte{0x02},
		IdentLength:  16,
		IdentSkip:    1,
		Models:       []string{"OBLTR8R"},
		BlockSize:    0x10,
		EchoesWrites: true,
		ReadAck:      true,
		WriteTrailer: []byte{0x06},
		WriteGuard:   0x0100,
		ExitCommand:  []byte{0x45, 0x4E, 0x44},
		ExitAckLen:   1,
		Ranges:       []AddrRange{{Start: 0x0000, End: 0x8000}},
	}
)

var (
	registryMu syncutil.RWMutex
	registry   = make(map[string]*Profile)
)

func init() {
	for _, p := range []*Profile{
		ProfileAnyTone5888UV,
		ProfileAnyTone5888UVIII,
		ProfileAnyToneTERMN8R,
		ProfileAnyToneOBLTR8R,
	} {
		if err := RegisterProfile(p); err != nil {
			panic(err)
		}
	}
}

// RegisterProfile adds a profile to the global registry, keyed by its model
// name. Registering a model twice is an error.
func RegisterProfile(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[p.Model]; exists {
		return fmt.Errorf("%w: profile %q already registered", ErrInvalidParam, p.Model)
	}
	registry[p.Model] = p
	return nil
}

// LookupProfile returns the registered profile for a model name.
func LookupProfile(model string) (*Profile, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[model]
	return p, ok
}

// RegisteredModels returns the sorted model names of all registered profiles.
func RegisteredModels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	models := make([]string, 0, len(registry))
	for model := range registry {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
