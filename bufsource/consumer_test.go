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
)

func TestStream_ReadExactAcrossChunking(t *testing.T) {
	data := []byte("the quick brown fox")
	for _, bufSize := range []int{1, 3, 64} {
		s, err := NewStreamSource(nonSeekingReader{bytes.NewReader(data)}, make([]byte, bufSize))
		require.NoError(t, err)
		stream := NewStream(s)

		got, err := io.ReadAll(stream)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
}

func TestStream_ReadByte(t *testing.T) {
	s := NewArraySource([]byte("ab"))
	stream := NewStream(s)

	b, err := stream.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), b)

	b, err = stream.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('b'), b)

	_, err = stream.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestStream_ReadEmptySource(t *testing.T) {
	stream := NewStream(NewArraySource(nil))
	n, err := stream.Read(make([]byte, 4))
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestStream_ReadZeroLengthBuffer(t *testing.T) {
	stream := NewStream(NewArraySource([]byte("x")))
	n, err := stream.Read(nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
