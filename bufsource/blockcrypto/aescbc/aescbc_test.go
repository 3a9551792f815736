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

package aescbc

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jigsaw-Code/outline-bufsource/bufsource"
	"github.com/Jigsaw-Code/outline-bufsource/bufsource/blockcrypto"
)

type nonSeekingReader struct{ io.Reader }

func randomKeyAndIV(t *testing.T) ([]byte, []byte) {
	t.Helper()
	key := make([]byte, 32)
	iv := make([]byte, aes.BlockSize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	_, err = rand.Read(iv)
	require.NoError(t, err)
	return key, iv
}

func encryptAll(t *testing.T, key, iv, plaintext []byte, innerBuf, outBuf int) []byte {
	t.Helper()
	enc, err := NewEncryptor(key, iv)
	require.NoError(t, err)
	inner, err := bufsource.NewStreamSource(nonSeekingReader{bytes.NewReader(plaintext)}, make([]byte, innerBuf))
	require.NoError(t, err)
	s, err := blockcrypto.New(inner, enc, make([]byte, outBuf))
	require.NoError(t, err)
	out, err := bufsource.ReadAll(s)
	require.NoError(t, err)
	return out
}

func decryptAll(t *testing.T, key, iv, ciphertext []byte, innerBuf, outBuf int) []byte {
	t.Helper()
	dec, err := NewDecryptor(key, iv)
	require.NoError(t, err)
	inner, err := bufsource.NewStreamSource(nonSeekingReader{bytes.NewReader(ciphertext)}, make([]byte, innerBuf))
	require.NoError(t, err)
	s, err := blockcrypto.New(inner, dec, make([]byte, outBuf))
	require.NoError(t, err)
	out, err := bufsource.ReadAll(s)
	require.NoError(t, err)
	return out
}

func TestRoundTrip_VariousLengthsAndChunking(t *testing.T) {
	key, iv := randomKeyAndIV(t)

	lengths := []int{0, 1, 15, 16, 17, 31, 32, 100, 1000}
	// outBuf must be >= aes.BlockSize (the Source's OutputBlockSize floor);
	// innerBuf must be >= aes.BlockSize too, so the wrapped plaintext or
	// ciphertext source can ever hold one whole block at a time.
	chunkings := [][2]int{{64, 64}, {aes.BlockSize, aes.BlockSize}, {aes.BlockSize + 3, aes.BlockSize}, {200, 17}}

	for _, n := range lengths {
		plaintext := make([]byte, n)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		for _, c := range chunkings {
			ciphertext := encryptAll(t, key, iv, plaintext, c[0], c[1])
			require.Zero(t, len(ciphertext)%aes.BlockSize, "n=%d chunking=%v", n, c)
			require.NotZero(t, len(ciphertext), "PKCS#7 always adds at least one padding block")

			decrypted := decryptAll(t, key, iv, ciphertext, c[0], c[1])
			require.Equal(t, plaintext, decrypted, "n=%d chunking=%v", n, c)
		}
	}
}

func TestEncryptor_EmptyPlaintextProducesOnePaddingBlock(t *testing.T) {
	key, iv := randomKeyAndIV(t)
	ciphertext := encryptAll(t, key, iv, nil, 64, 64)
	require.Len(t, ciphertext, aes.BlockSize)
}

func TestDecryptor_RejectsNonBlockAlignedCiphertext(t *testing.T) {
	key, iv := randomKeyAndIV(t)
	bad := make([]byte, aes.BlockSize+3)
	_, err := rand.Read(bad)
	require.NoError(t, err)

	dec, err := NewDecryptor(key, iv)
	require.NoError(t, err)
	inner, err := bufsource.NewStreamSource(nonSeekingReader{bytes.NewReader(bad)}, make([]byte, 64))
	require.NoError(t, err)
	s, err := blockcrypto.New(inner, dec, make([]byte, 64))
	require.NoError(t, err)

	_, err = bufsource.ReadAll(s)
	require.Error(t, err)
}

func TestPKCS7Unpad_RejectsMalformedPadding(t *testing.T) {
	_, err := pkcs7Unpad([]byte{}, aes.BlockSize)
	require.ErrorIs(t, err, ErrInvalidPadding)

	zeroPad := make([]byte, aes.BlockSize)
	_, err = pkcs7Unpad(zeroPad, aes.BlockSize)
	require.ErrorIs(t, err, ErrInvalidPadding)

	inconsistent := make([]byte, aes.BlockSize)
	inconsistent[aes.BlockSize-1] = 3
	inconsistent[aes.BlockSize-2] = 99
	_, err = pkcs7Unpad(inconsistent, aes.BlockSize)
	require.ErrorIs(t, err, ErrInvalidPadding)
}

func TestNewEncryptor_RejectsBadIVSize(t *testing.T) {
	key := make([]byte, 32)
	_, err := NewEncryptor(key, make([]byte, 4))
	require.Error(t, err)
}
