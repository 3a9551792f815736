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

// BufferedSource is a pull-based view over a byte stream: a window
// (Buffer, Offset, Count) that the consumer inspects in place, plus
// operations to grow or shrink that window.
//
// Implementations are not safe for concurrent use, and no operation is
// reentrant. Once IsExhausted returns true it stays true: Count can only
// decrease from that point on.
type BufferedSource interface {
	// Buffer returns the source's backing array. Its identity is fixed for
	// the lifetime of the source; only the bytes in [Offset, Offset+Count)
	// are meaningful, and only until the next call that moves data.
	Buffer() []byte

	// Offset is the index of the first valid byte in Buffer.
	Offset() int

	// Count is the number of valid bytes starting at Offset.
	Count() int

	// IsExhausted reports whether the source will ever produce bytes beyond
	// what is already in the window.
	IsExhausted() bool

	// FillBuffer attempts to grow the window by reading from upstream. It
	// may shift the window's bytes to the front of Buffer to make room.
	// After a successful call, Count() > 0 or IsExhausted() is true, except
	// for splitting sources (template.Source, partition.Source): they fill
	// the inner source once, and return with Count() == 0 and IsExhausted()
	// false when none of the newly read bytes can be classified yet (a
	// partial template match, or a validator that needs more lookahead). It
	// is a no-op once the source is exhausted.
	FillBuffer() (int, error)

	// EnsureBuffer reads until Count() >= size or the source is exhausted,
	// in which case it returns ErrInsufficientData. size must be in
	// [0, len(Buffer())] or EnsureBuffer returns ErrArgRange.
	EnsureBuffer(size int) error

	// SkipBuffer consumes size bytes from the head of the window without
	// reading. size must be in [0, Count()] or SkipBuffer returns
	// ErrArgRange. It never changes IsExhausted.
	SkipBuffer(size int) error

	// TrySkip consumes up to size bytes from the source, reading upstream
	// as needed, and returns exactly how many were skipped. The returned
	// count is less than size only if the source is now exhausted. size
	// must be >= 0 or TrySkip returns ErrArgRange.
	TrySkip(size int64) (int64, error)
}

// TrySkipVisible implements the generic "skip what's validated, refill,
// repeat" loop shared by sources whose visible Count() is a prefix of a
// larger, not-yet-discovered region (template and predicate splits): it
// never looks past Count(), so it naturally stops at a part boundary.
// Exported for reuse by the template and partition subpackages.
func TrySkipVisible(s BufferedSource, size int64) (int64, error) {
	if size < 0 {
		return 0, ErrArgRange
	}
	var skipped int64
	for {
		avail := int64(s.Count())
		if avail >= size {
			if size > 0 {
				if err := s.SkipBuffer(int(size)); err != nil {
					return skipped, err
				}
			}
			return skipped + size, nil
		}
		if avail > 0 {
			if err := s.SkipBuffer(int(avail)); err != nil {
				return skipped, err
			}
			skipped += avail
			size -= avail
		}
		if s.IsExhausted() {
			return skipped, nil
		}
		if _, err := s.FillBuffer(); err != nil {
			return skipped, err
		}
	}
}
