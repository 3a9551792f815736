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

import "io"

// StreamSource adapts an [io.Reader] into a BufferedSource, using buf as
// its backing storage. If the reader also implements [io.Seeker], TrySkip
// uses it to skip large spans without reading them.
type StreamSource struct {
	r         io.Reader
	buf       []byte
	offset    int
	count     int
	exhausted bool
}

var _ BufferedSource = (*StreamSource)(nil)

// NewStreamSource creates a StreamSource reading from r into buf, which
// must have length >= 1.
func NewStreamSource(r io.Reader, buf []byte) (*StreamSource, error) {
	if r == nil {
		return nil, ErrArgRange
	}
	if len(buf) < 1 {
		return nil, ErrArgRange
	}
	return &StreamSource{r: r, buf: buf}, nil
}

func (s *StreamSource) Buffer() []byte    { return s.buf }
func (s *StreamSource) Offset() int       { return s.offset }
func (s *StreamSource) Count() int        { return s.count }
func (s *StreamSource) IsExhausted() bool { return s.exhausted }

// defragment shifts the window to the front of buf, opening up trailing
// capacity for the next read.
func (s *StreamSource) defragment() {
	if s.offset == 0 {
		return
	}
	copy(s.buf, s.buf[s.offset:s.offset+s.count])
	s.offset = 0
}

func (s *StreamSource) FillBuffer() (int, error) {
	if s.exhausted {
		return s.count, nil
	}
	s.defragment()
	free := len(s.buf) - s.count
	if free == 0 {
		return s.count, nil
	}
	n, err := s.r.Read(s.buf[s.count : s.count+free])
	s.count += n
	if n == 0 {
		s.exhausted = true
	}
	if err != nil && err != io.EOF {
		return s.count, err
	}
	return s.count, nil
}

func (s *StreamSource) EnsureBuffer(size int) error {
	if size < 0 || size > len(s.buf) {
		return ErrArgRange
	}
	for s.count < size {
		if s.exhausted {
			return ErrInsufficientData
		}
		if _, err := s.FillBuffer(); err != nil {
			return err
		}
	}
	return nil
}

func (s *StreamSource) SkipBuffer(size int) error {
	if size < 0 || size > s.count {
		return ErrArgRange
	}
	s.offset += size
	s.count -= size
	return nil
}

// TrySkip implements the three paths of spec §4.3: satisfy from the
// window, else try a seek-based fast skip, else fall back to sequential
// reads that discard everything but the overflow past the requested size.
func (s *StreamSource) TrySkip(size int64) (int64, error) {
	if size < 0 {
		return 0, ErrArgRange
	}
	if size <= int64(s.count) {
		n := int(size)
		s.offset += n
		s.count -= n
		return size, nil
	}

	discarded := int64(s.count)
	s.offset = 0
	s.count = 0
	remainingRequest := size - discarded

	if seeker, ok := s.r.(io.Seeker); ok {
		if n, ok := s.trySeekSkip(seeker, remainingRequest); ok {
			return n + discarded, nil
		}
	}

	skipped, err := s.sequentialSkip(remainingRequest)
	return skipped + discarded, err
}

// trySeekSkip attempts the seek-based fast path. The boolean result is
// false if the reader turned out not to support seeking after all, in
// which case the caller falls back to sequentialSkip without error.
func (s *StreamSource) trySeekSkip(seeker io.Seeker, size int64) (int64, bool) {
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	remaining := end - cur
	if remaining < 0 {
		remaining = 0
	}
	toSkip := size
	if toSkip > remaining {
		toSkip = remaining
	}
	if _, err := seeker.Seek(cur+toSkip, io.SeekStart); err != nil {
		return 0, false
	}
	if toSkip >= remaining {
		s.exhausted = true
	}
	return toSkip, true
}

// sequentialSkip discards bytes by reading them into buf from position 0,
// keeping whatever overflows past the requested amount as the new window.
func (s *StreamSource) sequentialSkip(remaining int64) (int64, error) {
	var skipped int64
	for remaining > 0 {
		n, err := s.r.Read(s.buf)
		if n == 0 {
			s.exhausted = true
			if err != nil && err != io.EOF {
				return skipped, err
			}
			return skipped, nil
		}
		if int64(n) <= remaining {
			skipped += int64(n)
			remaining -= int64(n)
		} else {
			over := int64(n) - remaining
			skipped += remaining
			s.offset = int(remaining)
			s.count = int(over)
			remaining = 0
		}
		if err != nil && err != io.EOF {
			return skipped, err
		}
		if err == io.EOF {
			s.exhausted = true
			return skipped, nil
		}
	}
	return skipped, nil
}
