// Copyright 2025 Jigsaw Operations LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package partition

import "github.com/Jigsaw-Code/outline-bufsource/bufsource"

// ThresholdValidator is a reference PartValidator: bytes at or above
// Threshold belong to the part's interior, and the first run of bytes
// below Threshold marks the part's epilogue. The epilogue run must be
// fully contained in a single buffered window; a validator run that
// straddles a fill boundary mid-run will only see the portion visible so
// far, which is adequate for fixed-width markers but not open-ended ones.
type ThresholdValidator struct {
	Threshold byte

	endFound     bool
	epilogueSize int
}

var _ PartValidator = (*ThresholdValidator)(nil)

// NewThresholdValidator creates a ThresholdValidator with the given
// threshold.
func NewThresholdValidator(threshold byte) *ThresholdValidator {
	return &ThresholdValidator{Threshold: threshold}
}

func (v *ThresholdValidator) ValidatePartData(inner bufsource.BufferedSource, validated int) int {
	if validated == 0 {
		v.endFound = false
		v.epilogueSize = 0
	}
	if v.endFound {
		return validated
	}

	buf := inner.Buffer()
	start := inner.Offset()
	end := start + inner.Count()
	i := start + validated
	for i < end {
		if buf[i] < v.Threshold {
			j := i
			for j < end && buf[j] < v.Threshold {
				j++
			}
			v.endFound = true
			v.epilogueSize = j - i
			return i - start
		}
		i++
	}
	return i - start
}

func (v *ThresholdValidator) IsEndOfPartFound() bool { return v.endFound }
func (v *ThresholdValidator) PartEpilogueSize() int  { return v.epilogueSize }
