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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jigsaw-Code/outline-bufsource/internal/buftest"
)

// nonSeekingReader hides bytes.Reader's io.Seeker so the fallback skip
// path can be exercised deliberately.
type nonSeekingReader struct{ io.Reader }

func TestStreamSource_ReadAllBufferSizes(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5}
	for _, bufSize := range []int{1, 2, 3, 65536} {
		s, err := NewStreamSource(nonSeekingReader{bytes.NewReader(data)}, make([]byte, bufSize))
		require.NoError(t, err)

		var got []byte
		for {
			if err := s.EnsureBuffer(1); err != nil {
				require.ErrorIs(t, err, ErrInsufficientData)
				break
			}
			got = append(got, s.Buffer()[s.Offset()])
			require.NoError(t, s.SkipBuffer(1))
		}
		require.Equal(t, data, got)
		require.True(t, s.IsExhausted())

		n, err := s.TrySkip(1000)
		require.NoError(t, err)
		require.EqualValues(t, 0, n)
	}
}

func TestStreamSource_Empty(t *testing.T) {
	s, err := NewStreamSource(nonSeekingReader{bytes.NewReader(nil)}, make([]byte, 4))
	require.NoError(t, err)

	n, err := s.FillBuffer()
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.True(t, s.IsExhausted())

	for _, k := range []int64{0, 1, 1000} {
		skipped, err := s.TrySkip(k)
		require.NoError(t, err)
		require.EqualValues(t, 0, skipped)
	}
}

func TestStreamSource_EnsureBufferArgRange(t *testing.T) {
	s, err := NewStreamSource(nonSeekingReader{bytes.NewReader([]byte("hi"))}, make([]byte, 4))
	require.NoError(t, err)
	require.ErrorIs(t, s.EnsureBuffer(-1), ErrArgRange)
	require.ErrorIs(t, s.EnsureBuffer(5), ErrArgRange)
}

// TestStreamSource_SeekFallbackParity asserts that skipping far past the
// end of the stream is observably identical whether or not the underlying
// reader supports seeking.
func TestStreamSource_SeekFallbackParity(t *testing.T) {
	data := make([]byte, 500)
	for i := range data {
		data[i] = buftest.Filler(int64(i))
	}

	seekable, err := NewStreamSource(bytes.NewReader(data), make([]byte, 16))
	require.NoError(t, err)
	notSeekable, err := NewStreamSource(nonSeekingReader{bytes.NewReader(data)}, make([]byte, 16))
	require.NoError(t, err)

	for _, s := range []*StreamSource{seekable, notSeekable} {
		n, err := s.TrySkip(200)
		require.NoError(t, err)
		require.EqualValues(t, 200, n)
		require.False(t, s.IsExhausted())

		require.NoError(t, s.EnsureBuffer(1))
		require.Equal(t, buftest.Filler(200), s.Buffer()[s.Offset()])

		n, err = s.TrySkip(10000)
		require.NoError(t, err)
		require.EqualValues(t, 300, n)
		require.True(t, s.IsExhausted())
	}
}

func TestStreamSource_InfiniteSeekableSkip(t *testing.T) {
	r := buftest.NewFillerReader(true)
	s, err := NewStreamSource(r, make([]byte, 8))
	require.NoError(t, err)

	const skipBefore = int64(1<<31 - 1)
	n, err := s.TrySkip(skipBefore)
	require.NoError(t, err)
	require.Equal(t, skipBefore, n)
	require.False(t, s.IsExhausted())

	require.NoError(t, s.EnsureBuffer(3))
	for i := 0; i < 3; i++ {
		require.Equal(t, buftest.Filler(skipBefore+int64(i)), s.Buffer()[s.Offset()+i])
	}
}

func TestStreamSource_ConstructorValidation(t *testing.T) {
	_, err := NewStreamSource(bytes.NewReader(nil), nil)
	require.ErrorIs(t, err, ErrArgRange)
	_, err = NewStreamSource(nil, make([]byte, 1))
	require.ErrorIs(t, err, ErrArgRange)
}
