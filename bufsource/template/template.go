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

// Package template provides a BufferedSource that exposes the bytes of an
// inner source up to (but not including) the next occurrence of a fixed
// byte template, with a way to skip past a found template into the next
// part.
package template

import (
	"github.com/Jigsaw-Code/outline-bufsource/bufsource"
)

// Source wraps an inner BufferedSource and exposes only the bytes before
// the next occurrence of tmpl. Once a full match is found it stays found
// (IsExhausted becomes true) until TrySkipPart advances past it.
type Source struct {
	inner bufsource.BufferedSource
	tmpl  []byte

	// foundOffset anchors a potential template match at an absolute index
	// into inner.Buffer(); foundLen is how many leading bytes of tmpl have
	// matched starting there. foundLen == len(tmpl) is a full, sticky match.
	foundOffset int
	foundLen    int
}

var _ bufsource.BufferedSource = (*Source)(nil)

// New wraps inner, splitting it on occurrences of tmpl. len(tmpl) must be
// in [1, len(inner.Buffer())].
func New(inner bufsource.BufferedSource, tmpl []byte) (*Source, error) {
	if len(tmpl) < 1 || len(tmpl) > len(inner.Buffer()) {
		return nil, bufsource.ErrArgRange
	}
	s := &Source{inner: inner, tmpl: tmpl, foundOffset: inner.Offset()}
	s.searchBuffer(false)
	return s, nil
}

func (s *Source) Buffer() []byte { return s.inner.Buffer() }
func (s *Source) Offset() int    { return s.inner.Offset() }
func (s *Source) Count() int     { return s.foundOffset - s.inner.Offset() }

func (s *Source) IsExhausted() bool {
	return s.inner.IsExhausted() || s.foundLen == len(s.tmpl)
}

// searchBuffer extends the scan over bytes newly added to inner. If reset
// is true, the anchor is reestablished at inner.Offset() first, which is
// required whenever upstream defragmentation has moved the data the
// anchor was tracking. It reports whether the scan has stopped forever
// (the source exhausted without ever completing a match).
func (s *Source) searchBuffer(reset bool) bool {
	if reset {
		s.foundOffset = s.inner.Offset()
		s.foundLen = 0
	}

	end := s.inner.Offset() + s.inner.Count()
	for s.foundLen != len(s.tmpl) {
		cursor := s.foundOffset + s.foundLen
		if cursor < s.inner.Offset() || cursor >= end {
			break
		}
		if s.inner.Buffer()[cursor] == s.tmpl[s.foundLen] {
			s.foundLen++
		} else {
			s.foundOffset++
			s.foundLen = 0
		}
	}

	if s.inner.IsExhausted() && s.foundLen != len(s.tmpl) {
		s.foundOffset = end
		s.foundLen = 0
		return true
	}
	return false
}

func (s *Source) FillBuffer() (int, error) {
	if s.IsExhausted() {
		return s.Count(), nil
	}
	prevOffset := s.inner.Offset()
	if _, err := s.inner.FillBuffer(); err != nil {
		return s.Count(), err
	}
	s.searchBuffer(s.inner.Offset() != prevOffset)
	return s.Count(), nil
}

func (s *Source) EnsureBuffer(size int) error {
	if size < 0 || size > len(s.inner.Buffer()) {
		return bufsource.ErrArgRange
	}
	for size > s.Count() {
		if s.IsExhausted() {
			return bufsource.ErrInsufficientData
		}
		if _, err := s.FillBuffer(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) SkipBuffer(size int) error {
	if size < 0 || size > s.Count() {
		return bufsource.ErrArgRange
	}
	return s.inner.SkipBuffer(size)
}

func (s *Source) TrySkip(size int64) (int64, error) {
	return bufsource.TrySkipVisible(s, size)
}

// TrySkipPart advances past a fully matched template and into the next
// part, reporting false if the source ran out before ever finding one. If
// a match was already pending, this consumes it directly; otherwise it
// fills and re-scans until a match is found or the source is exhausted.
func (s *Source) TrySkipPart() (bool, error) {
	for s.foundLen != len(s.tmpl) {
		if err := s.inner.SkipBuffer(s.Count()); err != nil {
			return false, err
		}
		if s.inner.IsExhausted() {
			if err := s.inner.SkipBuffer(s.inner.Count()); err != nil {
				return false, err
			}
			s.searchBuffer(true)
			return false, nil
		}
		if _, err := s.FillBuffer(); err != nil {
			return false, err
		}
	}

	if err := s.inner.SkipBuffer(s.Count() + len(s.tmpl)); err != nil {
		return false, err
	}
	s.searchBuffer(true)
	return true, nil
}
