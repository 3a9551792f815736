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

// LimitedSource wraps an inner BufferedSource and exposes at most limit
// bytes of it, sharing the inner source's Buffer directly. limit is an
// int64 because callers may cap a source far larger than any single
// buffer (see the 2^62-scale limit in the package tests).
type LimitedSource struct {
	inner          BufferedSource
	countInBuffer  int
	countRemainder int64
}

var _ BufferedSource = (*LimitedSource)(nil)

// NewLimitedSource caps inner to at most limit bytes, limit >= 0.
func NewLimitedSource(inner BufferedSource, limit int64) (*LimitedSource, error) {
	if limit < 0 {
		return nil, ErrArgRange
	}
	s := &LimitedSource{inner: inner}
	s.updateLimits(limit)
	return s, nil
}

func (s *LimitedSource) Buffer() []byte { return s.inner.Buffer() }
func (s *LimitedSource) Offset() int    { return s.inner.Offset() }
func (s *LimitedSource) Count() int     { return s.countInBuffer }

func (s *LimitedSource) IsExhausted() bool {
	return s.inner.IsExhausted() || s.countRemainder == 0
}

// updateLimits recomputes the countInBuffer/countRemainder split for a
// total budget of limit bytes (bytes already in the inner window plus
// whatever is still reachable beyond it).
func (s *LimitedSource) updateLimits(limit int64) {
	r := limit - int64(s.inner.Count())
	if r > 0 {
		s.countInBuffer = s.inner.Count()
		s.countRemainder = r
	} else {
		s.countInBuffer = int(limit)
		s.countRemainder = 0
	}
}

func (s *LimitedSource) FillBuffer() (int, error) {
	if s.countRemainder > 0 {
		if _, err := s.inner.FillBuffer(); err != nil {
			return s.countInBuffer, err
		}
	}
	s.updateLimits(int64(s.countInBuffer) + s.countRemainder)
	return s.countInBuffer, nil
}

func (s *LimitedSource) EnsureBuffer(size int) error {
	if size < 0 || size > len(s.inner.Buffer()) {
		return ErrArgRange
	}
	for size > s.countInBuffer {
		if s.IsExhausted() {
			return ErrInsufficientData
		}
		if _, err := s.FillBuffer(); err != nil {
			return err
		}
	}
	return nil
}

func (s *LimitedSource) SkipBuffer(size int) error {
	if size < 0 || size > s.countInBuffer {
		return ErrArgRange
	}
	if err := s.inner.SkipBuffer(size); err != nil {
		return err
	}
	s.countInBuffer -= size
	return nil
}

func (s *LimitedSource) TrySkip(size int64) (int64, error) {
	if size < 0 {
		return 0, ErrArgRange
	}
	total := int64(s.countInBuffer) + s.countRemainder
	if size < total {
		skipped, err := s.inner.TrySkip(size)
		if err != nil {
			return skipped, err
		}
		s.updateLimits(total - skipped)
		return skipped, nil
	}
	skipped, err := s.inner.TrySkip(total)
	s.countInBuffer = 0
	s.countRemainder = 0
	return skipped, err
}
