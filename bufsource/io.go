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

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding"
)

// IsEmpty reports whether s has no more bytes to offer, filling it once if
// its current window is empty but it isn't known to be exhausted yet.
func IsEmpty(s BufferedSource) (bool, error) {
	if s.Count() > 0 {
		return false, nil
	}
	if s.IsExhausted() {
		return true, nil
	}
	if _, err := s.FillBuffer(); err != nil {
		return false, err
	}
	return s.Count() == 0, nil
}

// IndexOf returns the offset of the first occurrence of b in s, measured
// from the source's current position, or -1 if s is exhausted without
// producing b. Being a forward-only scan, it cannot un-consume the parts
// of the window it rules out along the way: on return, everything before
// the match (if any) has been skipped, but the match itself has not.
func IndexOf(s BufferedSource, b byte) (int, error) {
	var scanned int
	for {
		window := s.Buffer()[s.Offset() : s.Offset()+s.Count()]
		if idx := bytes.IndexByte(window, b); idx >= 0 {
			if err := s.SkipBuffer(idx); err != nil {
				return -1, err
			}
			return scanned + idx, nil
		}
		scanned += s.Count()
		if err := s.SkipBuffer(s.Count()); err != nil {
			return -1, err
		}
		if s.IsExhausted() {
			return -1, nil
		}
		if _, err := s.FillBuffer(); err != nil {
			return -1, err
		}
	}
}

// ReadInto copies bytes from s into dst until dst is full or s is
// exhausted, returning the number of bytes copied.
func ReadInto(s BufferedSource, dst []byte) (int, error) {
	var total int
	for total < len(dst) {
		if s.Count() == 0 {
			if s.IsExhausted() {
				break
			}
			if _, err := s.FillBuffer(); err != nil {
				return total, err
			}
			if s.Count() == 0 {
				break
			}
		}
		n := copy(dst[total:], s.Buffer()[s.Offset():s.Offset()+s.Count()])
		if err := s.SkipBuffer(n); err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ReadAll drains s and returns every remaining byte, as a non-nil (possibly
// empty) slice.
func ReadAll(s BufferedSource) ([]byte, error) {
	out := []byte{}
	for {
		if s.Count() == 0 {
			if s.IsExhausted() {
				return out, nil
			}
			if _, err := s.FillBuffer(); err != nil {
				return out, err
			}
			if s.Count() == 0 {
				return out, nil
			}
			continue
		}
		out = append(out, s.Buffer()[s.Offset():s.Offset()+s.Count()]...)
		if err := s.SkipBuffer(s.Count()); err != nil {
			return out, err
		}
	}
}

// ReadAllText drains s and decodes it as text using enc. A nil enc treats
// the bytes as already being UTF-8, matching the common case where the
// caller has resolved (or assumed) the charset ahead of time.
func ReadAllText(s BufferedSource, enc encoding.Encoding) (string, error) {
	raw, err := ReadAll(s)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(raw), nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// WriteTo drains s into w, in the source's own buffer-sized chunks.
func WriteTo(s BufferedSource, w io.Writer) (int64, error) {
	var total int64
	for {
		if s.Count() == 0 {
			if s.IsExhausted() {
				return total, nil
			}
			if _, err := s.FillBuffer(); err != nil {
				return total, err
			}
			if s.Count() == 0 {
				return total, nil
			}
			continue
		}
		n, err := w.Write(s.Buffer()[s.Offset() : s.Offset()+s.Count()])
		total += int64(n)
		if skipErr := s.SkipBuffer(n); skipErr != nil {
			return total, skipErr
		}
		if err != nil {
			return total, err
		}
	}
}
