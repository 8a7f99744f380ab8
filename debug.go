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
	"os"
	"strings"
)

// debugEnabled controls wire-level debug logging to stderr
var debugEnabled = false

func init() {
	if os.Getenv("RIGCLONE_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

// SetDebugEnabled allows programmatic control of debug logging.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// Debugf prints debug information to stderr when debug mode is enabled.
func Debugf(format string, args ...any) {
	if debugEnabled {
		_, _ = fmt.Fprintf(os.Stderr, "DEBUG: "+format+"\n", args...)
	}
}

// hexdump formats a byte slice as space-separated hex values, truncated
// past 32 bytes.
func hexdump(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	limit := len(data)
	truncated := false
	if limit > 32 {
		limit = 32
		truncated = true
	}
	parts := make([]string, limit)
	for i := 0; i < limit; i++ {
		parts[i] = fmt.Sprintf("%02X", data[i])
	}
	out := strings.Join(parts, " ")
	if truncated {
		out += fmt.Sprintf(" ... (%d bytes total)", len(data))
	}
	return out
}
