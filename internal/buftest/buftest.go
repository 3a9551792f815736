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

// Package buftest provides small, deterministic io.Reader fixtures shared
// by the bufsource test suites: a byte-position filler function and an
// effectively bottomless reader built from it, optionally seekable.
package buftest

import (
	"errors"
	"io"
	"math"
)

// Filler is the position-keyed byte generator used throughout the
// bufsource tests: filler(p) = 0xAA XOR (p & 0xFF).
func Filler(p int64) byte {
	return byte(0xAA ^ (p & 0xFF))
}

// ErrSeekUnsupported is returned by FillerReader.Seek when the reader was
// constructed with seekable=false, exercising the "seek not supported"
// fallback path of bufsource.StreamSource.TrySkip.
var ErrSeekUnsupported = errors.New("buftest: seek not supported")

// FillerReader is an io.Reader that yields Filler(pos) at every position,
// advancing pos on every byte read. It always implements io.Seeker; when
// seekable, Seek treats the reader as an enormous but finite stream so that
// remaining-bytes arithmetic in the seek-aware skip path stays well
// defined, and otherwise Seek returns ErrSeekUnsupported.
type FillerReader struct {
	pos      int64
	seekable bool
}

var _ io.Reader = (*FillerReader)(nil)
var _ io.Seeker = (*FillerReader)(nil)

// NewFillerReader creates a FillerReader starting at position 0.
func NewFillerReader(seekable bool) *FillerReader {
	return &FillerReader{seekable: seekable}
}

// End is the position FillerReader reports for io.SeekEnd: effectively
// unbounded, but finite so remaining-byte arithmetic doesn't overflow.
const End = math.MaxInt64 / 2

func (f *FillerReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = Filler(f.pos)
		f.pos++
	}
	return len(p), nil
}

func (f *FillerReader) Seek(offset int64, whence int) (int64, error) {
	if !f.seekable {
		return 0, ErrSeekUnsupported
	}
	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = End + offset
	default:
		return 0, errors.New("buftest: invalid whence")
	}
	return f.pos, nil
}

// Pos reports the reader's current position, mainly so tests can assert
// on it directly.
func (f *FillerReader) Pos() int64 { return f.pos }
