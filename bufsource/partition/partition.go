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

// Package partition generalizes template splitting to an arbitrary,
// consumer-supplied predicate over the buffered bytes.
package partition

import (
	"github.com/Jigsaw-Code/outline-bufsource/bufsource"
)

// PartValidator inspects an inner source's window and decides how much of
// it, starting at the part's head, belongs to the current part. It is
// strategy collaborator for Source, the way a template is the strategy
// input for the template package's splitter.
type PartValidator interface {
	// ValidatePartData inspects inner starting at inner.Offset()+validated
	// and returns the new validated-prefix length. It may decide the end
	// of the part has been found, in which case IsEndOfPartFound must
	// start reporting true and PartEpilogueSize must report the size of
	// the trailing marker to discard when TrySkipPart advances past it.
	// Called with validated == 0 at the start of each part's scan.
	ValidatePartData(inner bufsource.BufferedSource, validated int) (newValidated int)

	// IsEndOfPartFound reports whether the most recent ValidatePartData
	// call located the end of the current part.
	IsEndOfPartFound() bool

	// PartEpilogueSize is the number of trailing bytes, immediately after
	// the validated prefix, that mark the end of the part and should be
	// discarded (not exposed as part of either part's content) when
	// TrySkipPart advances to the next part.
	PartEpilogueSize() int
}

// Source wraps an inner BufferedSource and exposes only the bytes that a
// PartValidator has classified as belonging to the current part.
type Source struct {
	inner     bufsource.BufferedSource
	validator PartValidator
	validated int
}

var _ bufsource.BufferedSource = (*Source)(nil)

// New wraps inner, partitioning it according to validator.
func New(inner bufsource.BufferedSource, validator PartValidator) (*Source, error) {
	if validator == nil {
		return nil, bufsource.ErrArgRange
	}
	s := &Source{inner: inner, validator: validator}
	s.validated = validator.ValidatePartData(inner, 0)
	return s, nil
}

func (s *Source) Buffer() []byte { return s.inner.Buffer() }
func (s *Source) Offset() int    { return s.inner.Offset() }
func (s *Source) Count() int     { return s.validated }

func (s *Source) IsExhausted() bool {
	return s.validator.IsEndOfPartFound() ||
		(s.inner.IsExhausted() && s.validated >= s.inner.Count())
}

// FillBuffer fills the inner source once and re-validates. When the
// validator cannot classify any of the newly buffered bytes, it returns 0
// with IsExhausted still false.
func (s *Source) FillBuffer() (int, error) {
	if !s.validator.IsEndOfPartFound() {
		if _, err := s.inner.FillBuffer(); err != nil {
			return s.validated, err
		}
		s.validated = s.validator.ValidatePartData(s.inner, s.validated)
	}
	return s.validated, nil
}

func (s *Source) EnsureBuffer(size int) error {
	if size < 0 || size > len(s.inner.Buffer()) {
		return bufsource.ErrArgRange
	}
	for size > s.validated && !s.inner.IsExhausted() && !s.validator.IsEndOfPartFound() {
		if _, err := s.FillBuffer(); err != nil {
			return err
		}
	}
	if size > s.validated {
		return bufsource.ErrInsufficientData
	}
	return nil
}

func (s *Source) SkipBuffer(size int) error {
	if size < 0 || size > s.validated {
		return bufsource.ErrArgRange
	}
	if err := s.inner.SkipBuffer(size); err != nil {
		return err
	}
	s.validated -= size
	return nil
}

func (s *Source) TrySkip(size int64) (int64, error) {
	return bufsource.TrySkipVisible(s, size)
}

// TrySkipPart advances past the current part's end-of-part marker and
// into the next part. It reports false if the inner source ran dry
// without ever producing a fully buffered part. It fails with
// ErrBufferTooSmall if a full refill stops making any progress before the
// end of the part is found: the caller's buffer cannot hold enough
// context for the validator to ever decide.
func (s *Source) TrySkipPart() (bool, error) {
	if s.inner.IsExhausted() && s.inner.Count() == 0 {
		return false, nil
	}

	for !s.validator.IsEndOfPartFound() {
		if err := s.inner.SkipBuffer(s.validated); err != nil {
			return false, err
		}
		s.validated = 0
		before := s.inner.Count()
		if _, err := s.inner.FillBuffer(); err != nil {
			return false, err
		}
		s.validated = s.validator.ValidatePartData(s.inner, 0)
		if !s.validator.IsEndOfPartFound() && s.inner.Count() == before {
			return false, bufsource.ErrBufferTooSmall
		}
	}

	if err := s.inner.SkipBuffer(s.validated + s.validator.PartEpilogueSize()); err != nil {
		return false, err
	}
	s.validated = s.validator.ValidatePartData(s.inner, 0)
	return true, nil
}
