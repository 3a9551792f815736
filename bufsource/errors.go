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

package bufsource

import "errors"

var (
	// ErrArgRange is returned when a size argument falls outside the range
	// documented for the operation.
	ErrArgRange = errors.New("bufsource: argument out of range")

	// ErrInsufficientData is returned by EnsureBuffer when the source is
	// exhausted before the requested size is reached.
	ErrInsufficientData = errors.New("bufsource: source exhausted before requested size was reached")

	// ErrBufferTooSmall is returned by a partitioned source's TrySkipPart
	// when a full refill doesn't reveal the end of the current part.
	ErrBufferTooSmall = errors.New("bufsource: buffer too small to find end of part")

	// ErrInvariantViolation is returned when an inner source's buffer is
	// too small to ever hold one transform input block.
	ErrInvariantViolation = errors.New("bufsource: inner source buffer too small to hold one transform block")
)
