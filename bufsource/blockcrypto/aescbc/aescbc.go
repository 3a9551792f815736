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

// Package aescbc is a concrete blockcrypto.BlockTransform: AES in CBC
// mode with PKCS#7 padding, the same stdlib primitives
// transport/shadowsocks composes for its own ciphers, just a different
// block mode.
package aescbc

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/Jigsaw-Code/outline-bufsource/bufsource/blockcrypto"
)

// ErrInvalidPadding is returned by a Decryptor's TransformFinalBlock when
// the trailing PKCS#7 padding is malformed.
var ErrInvalidPadding = errors.New("aescbc: invalid padding")

// Encryptor pads its final block and never needs more than one block of
// lookahead, so it can transform any whole multiple of the block size in
// a single TransformBlock call.
type Encryptor struct {
	mode cipher.BlockMode
}

var _ blockcrypto.BlockTransform = (*Encryptor)(nil)

// NewEncryptor creates an Encryptor using key (16, 24, or 32 bytes,
// selecting AES-128/192/256) and iv (exactly aes.BlockSize bytes).
func NewEncryptor(key, iv []byte) (*Encryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aescbc: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("aescbc: iv must be %d bytes", aes.BlockSize)
	}
	return &Encryptor{mode: cipher.NewCBCEncrypter(block, iv)}, nil
}

func (e *Encryptor) InputBlockSize() int             { return aes.BlockSize }
func (e *Encryptor) OutputBlockSize() int             { return aes.BlockSize }
func (e *Encryptor) CanTransformMultipleBlocks() bool { return true }

// TransformBlock encrypts src into dst; len(src) must be a
// positive multiple of aes.BlockSize.
func (e *Encryptor) TransformBlock(dst, src []byte) (int, error) {
	e.mode.CryptBlocks(dst[:len(src)], src)
	return len(src), nil
}

// TransformFinalBlock pads src to a whole block with PKCS#7 padding and
// encrypts it. Called once, even if src is empty: the padding alone then
// forms a full block, matching PKCS#7's requirement that padding is
// always present.
func (e *Encryptor) TransformFinalBlock(src []byte) ([]byte, error) {
	padded := pkcs7Pad(src, aes.BlockSize)
	out := make([]byte, len(padded))
	e.mode.CryptBlocks(out, padded)
	return out, nil
}

// Decryptor always holds back the most recently decrypted block instead
// of emitting it immediately. Valid CBC ciphertext is a whole multiple of
// the block size, so blockcrypto.Source's "remainder below one input
// block" never fires on real data before the source drains to nothing:
// the block actually carrying the PKCS#7 padding would otherwise be
// handed out through the ordinary multi-block path with its padding
// never stripped. Holding one block back guarantees TransformFinalBlock
// is always the one that unpads it.
type Decryptor struct {
	mode        cipher.BlockMode
	pending     []byte
	havePending bool
}

var _ blockcrypto.BlockTransform = (*Decryptor)(nil)

// NewDecryptor creates a Decryptor using key and iv, matching the pair
// passed to NewEncryptor on the encrypting side.
func NewDecryptor(key, iv []byte) (*Decryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aescbc: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("aescbc: iv must be %d bytes", aes.BlockSize)
	}
	return &Decryptor{mode: cipher.NewCBCDecrypter(block, iv)}, nil
}

func (d *Decryptor) InputBlockSize() int             { return aes.BlockSize }
func (d *Decryptor) OutputBlockSize() int             { return aes.BlockSize }
func (d *Decryptor) CanTransformMultipleBlocks() bool { return true }

// TransformBlock decrypts every block in src, to keep the CBC chaining
// state advancing in ciphertext order, but only copies out all but the
// last of them: the last becomes the new pending block, and whatever was
// pending before (if anything) is emitted first.
func (d *Decryptor) TransformBlock(dst, src []byte) (int, error) {
	blockSize := aes.BlockSize
	plain := make([]byte, len(src))
	d.mode.CryptBlocks(plain, src)

	produced := 0
	if d.havePending {
		produced += copy(dst, d.pending)
	}
	emit := len(plain) - blockSize
	if emit > 0 {
		produced += copy(dst[produced:], plain[:emit])
	}
	d.pending = append(d.pending[:0], plain[emit:]...)
	d.havePending = true
	return produced, nil
}

// TransformFinalBlock rejects a non-empty src, which blockcrypto.Source
// only passes when fed malformed (non-block-aligned) ciphertext, and
// otherwise unpads the block TransformBlock has been holding back.
func (d *Decryptor) TransformFinalBlock(src []byte) ([]byte, error) {
	if len(src) != 0 {
		return nil, fmt.Errorf("aescbc: ciphertext not a multiple of the block size")
	}
	if !d.havePending {
		return nil, ErrInvalidPadding
	}
	return pkcs7Unpad(d.pending, aes.BlockSize)
}

func pkcs7Pad(src []byte, blockSize int) []byte {
	padLen := blockSize - len(src)%blockSize
	out := make([]byte, len(src)+padLen)
	copy(out, src)
	for i := len(src); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

func pkcs7Unpad(src []byte, blockSize int) ([]byte, error) {
	if len(src) == 0 || len(src)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	padLen := int(src[len(src)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(src) {
		return nil, ErrInvalidPadding
	}
	for _, b := range src[len(src)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidPadding
		}
	}
	return src[:len(src)-padLen], nil
}
