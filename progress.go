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

import "fmt"

// Progress reports transfer position after each completed block. It is
// purely observational: the return path carries nothing back into the
// session, and a slow callback only slows the clone.
type Progress struct {
	Message string
	Current int // image bytes transferred so far
	Maximum int // total image bytes for this transfer
}

// String renders the familiar ten-tick progress bar.
func (p Progress) String() string {
	if p.Maximum <= 0 {
		return fmt.Sprintf("|%-10s| ?%% %s", "??????????", p.Message)
	}
	pct := float64(p.Current) / float64(p.Maximum) * 100
	ticks := ""
	for i := 0; i < int(pct)/10; i++ {
		ticks += "="
	}
	return fmt.Sprintf("|%-10s| %2.1f%% %s", ticks, pct, p.Message)
}

// ProgressFunc receives Progress updates during Download and Upload.
// Implementations should return quickly; the transfer blocks until the
// callback does.
type ProgressFunc func(Progress)
