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

// Stream is a read-only [io.Reader]/[io.ByteReader] view of a
// BufferedSource. It deliberately does not implement io.Writer or
// io.Seeker: a consumer that needs those on a concrete type simply can't
// get them from a Stream, which is a stricter and more idiomatic rejection
// than a runtime error from an interface a type only pretends to satisfy.
type Stream struct {
	src BufferedSource
}

var _ io.Reader = (*Stream)(nil)
var _ io.ByteReader = (*Stream)(nil)

// NewStream wraps src as an io.Reader.
func NewStream(src BufferedSource) *Stream {
	return &Stream{src: src}
}

// Read implements io.Reader by returning whatever is already buffered,
// filling once if the window is empty.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.src.Count() == 0 {
		if s.src.IsExhausted() {
			return 0, io.EOF
		}
		if _, err := s.src.FillBuffer(); err != nil {
			return 0, err
		}
		if s.src.Count() == 0 {
			return 0, io.EOF
		}
	}
	n := copy(p, s.src.Buffer()[s.src.Offset():s.src.Offset()+s.src.Count()])
	if err := s.src.SkipBuffer(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	var b [1]byte
	n, err := s.Read(b[:])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	return b[0], nil
}
