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

// Package blockcrypto provides a BufferedSource that exposes the result
// of running an inner source through a block-oriented transform, with
// independent input and output block sizes.
package blockcrypto

import (
	"github.com/vmihailenco/bufpool"

	"github.com/Jigsaw-Code/outline-bufsource/bufsource"
)

// BlockTransform is the collaborator a Source drives: a block cipher, a
// compressor, or any other transform that consumes fixed-size input
// blocks and produces output independently sized from them.
type BlockTransform interface {
	// InputBlockSize is the size, in bytes, of one input block.
	InputBlockSize() int

	// OutputBlockSize is the size, in bytes, TransformBlock produces for
	// one input block.
	OutputBlockSize() int

	// CanTransformMultipleBlocks reports whether TransformBlock accepts
	// src lengths that are a multiple of InputBlockSize greater than one
	// block, producing their concatenated output in a single call.
	CanTransformMultipleBlocks() bool

	// TransformBlock transforms src, whose length is a positive multiple
	// of InputBlockSize (exactly InputBlockSize if
	// CanTransformMultipleBlocks is false), writing the result into dst
	// and returning the number of bytes produced. dst is at least as
	// long as the expected output.
	TransformBlock(dst, src []byte) (int, error)

	// TransformFinalBlock transforms the last, possibly short or empty,
	// remaining input (len(src) < InputBlockSize) and returns the final
	// output, including any padding the transform adds. Called exactly
	// once per source.
	TransformFinalBlock(src []byte) ([]byte, error)
}

// Source wraps an inner BufferedSource and exposes transform(inner) a
// block at a time. It owns its own buffer, and keeps a one-unit overflow
// cache for transformed output that didn't fit on a previous fill.
type Source struct {
	inner     bufsource.BufferedSource
	transform BlockTransform

	buf    []byte
	offset int
	count  int

	sourceEnded bool
	exhausted   bool

	cache      []byte
	cacheStart int
	cacheEnd   int

	inputMaxBlocks int
}

var _ bufsource.BufferedSource = (*Source)(nil)

// New wraps inner, running its bytes through transform into buf, which
// must be at least as long as max(1, transform.OutputBlockSize()).
func New(inner bufsource.BufferedSource, transform BlockTransform, buf []byte) (*Source, error) {
	ob := transform.OutputBlockSize()
	minLen := ob
	if minLen < 1 {
		minLen = 1
	}
	if len(buf) < minLen {
		return nil, bufsource.ErrArgRange
	}
	ib := transform.InputBlockSize()
	return &Source{
		inner:          inner,
		transform:      transform,
		buf:            buf,
		inputMaxBlocks: len(inner.Buffer()) / ib,
	}, nil
}

func (s *Source) Buffer() []byte    { return s.buf }
func (s *Source) Offset() int       { return s.offset }
func (s *Source) Count() int        { return s.count }
func (s *Source) IsExhausted() bool { return s.exhausted }

func (s *Source) defragment() {
	if s.offset == 0 {
		return
	}
	copy(s.buf, s.buf[s.offset:s.offset+s.count])
	s.offset = 0
}

// inputSizeToFillOutput computes how many inner-source bytes are needed
// to produce up to outFree bytes of output, in whole input blocks.
func (s *Source) inputSizeToFillOutput(outFree int) int {
	if s.inputMaxBlocks < 1 {
		return len(s.inner.Buffer())
	}
	ib := s.transform.InputBlockSize()
	ob := s.transform.OutputBlockSize()
	blocks := outFree / ob
	if blocks > s.inputMaxBlocks {
		blocks = s.inputMaxBlocks
	}
	if blocks < 1 {
		blocks = 1
	}
	return blocks * ib
}

// loadFromCache drains the overflow cache into buf, returning the number
// of bytes produced.
func (s *Source) loadFromCache(outFree int) int {
	if s.cacheStart >= s.cacheEnd {
		return 0
	}
	n := s.cacheEnd - s.cacheStart
	if n > outFree {
		n = outFree
	}
	copy(s.buf[s.offset+s.count:], s.cache[s.cacheStart:s.cacheStart+n])
	s.cacheStart += n
	if s.cacheStart >= s.cacheEnd && s.sourceEnded {
		s.exhausted = true
	}
	return n
}

// stashOverflow saves a copy of out in the cache for later draining by
// loadFromCache.
func (s *Source) stashOverflow(out []byte) {
	s.cache = append(s.cache[:0], out...)
	s.cacheStart = 0
	s.cacheEnd = len(out)
}

// loadFromTransformedSource runs the transform against the inner
// source's current window, writing up to outFree bytes into buf.
func (s *Source) loadFromTransformedSource(outFree int) (int, error) {
	ib := s.transform.InputBlockSize()
	ob := s.transform.OutputBlockSize()

	if s.inner.Count() >= ib {
		outBlocks := outFree / ob
		if outBlocks >= 1 {
			blocks := 1
			if s.transform.CanTransformMultipleBlocks() {
				blocks = s.inner.Count() / ib
				if blocks > outBlocks {
					blocks = outBlocks
				}
			}
			inLen := blocks * ib
			src := s.inner.Buffer()[s.inner.Offset() : s.inner.Offset()+inLen]
			dst := s.buf[s.offset+s.count:]
			n, err := s.transform.TransformBlock(dst, src)
			if err != nil {
				return 0, err
			}
			if err := s.inner.SkipBuffer(inLen); err != nil {
				return 0, err
			}
			return n, nil
		}

		// Output space holds less than one output block: transform one
		// input block into scratch space and spill whatever doesn't fit.
		src := s.inner.Buffer()[s.inner.Offset() : s.inner.Offset()+ib]
		scratch := bufpool.Get(ob)
		defer bufpool.Put(scratch)
		block := scratch.Bytes()
		produced, err := s.transform.TransformBlock(block, src)
		if err != nil {
			return 0, err
		}
		if err := s.inner.SkipBuffer(ib); err != nil {
			return 0, err
		}
		n := produced
		if n > outFree {
			n = outFree
		}
		copy(s.buf[s.offset+s.count:], block[:n])
		if produced > outFree {
			s.stashOverflow(block[outFree:produced])
		}
		return n, nil
	}

	// Fewer than one input block remains, and by the caller's precondition
	// the inner source is exhausted: this is the final, possibly padded,
	// block.
	s.sourceEnded = true
	src := s.inner.Buffer()[s.inner.Offset() : s.inner.Offset()+s.inner.Count()]
	final, err := s.transform.TransformFinalBlock(src)
	if err != nil {
		return 0, err
	}
	if err := s.inner.SkipBuffer(s.inner.Count()); err != nil {
		return 0, err
	}

	n := len(final)
	if n > outFree {
		copy(s.buf[s.offset+s.count:], final[:outFree])
		s.stashOverflow(final[outFree:])
		return outFree, nil
	}
	copy(s.buf[s.offset+s.count:], final)
	s.exhausted = true
	return n, nil
}

func (s *Source) FillBuffer() (int, error) {
	for !s.exhausted {
		s.defragment()
		outFree := len(s.buf) - s.offset - s.count
		if outFree == 0 {
			return s.count, nil
		}

		produced := s.loadFromCache(outFree)
		if produced == 0 && s.cacheStart >= s.cacheEnd {
			ib := s.transform.InputBlockSize()
			needed := ib
			if s.transform.CanTransformMultipleBlocks() {
				needed = s.inputSizeToFillOutput(outFree)
			}
			for needed > s.inner.Count() && !s.inner.IsExhausted() {
				if _, err := s.inner.FillBuffer(); err != nil {
					return s.count, err
				}
			}
			if s.inner.Count() < ib && !s.inner.IsExhausted() {
				return s.count, bufsource.ErrInvariantViolation
			}
			n, err := s.loadFromTransformedSource(outFree)
			if err != nil {
				return s.count, err
			}
			produced = n
		}

		s.count += produced
		if produced > 0 {
			return s.count, nil
		}
	}
	return s.count, nil
}

func (s *Source) EnsureBuffer(size int) error {
	if size < 0 || size > len(s.buf) {
		return bufsource.ErrArgRange
	}
	for size > s.count {
		if s.exhausted {
			return bufsource.ErrInsufficientData
		}
		if _, err := s.FillBuffer(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) SkipBuffer(size int) error {
	if size < 0 || size > s.count {
		return bufsource.ErrArgRange
	}
	s.offset += size
	s.count -= size
	return nil
}

// TrySkip consumes the visible window first, then alternates FillBuffer
// and draining until size is covered or the source is exhausted; there
// is no fast path through the transform.
func (s *Source) TrySkip(size int64) (int64, error) {
	return bufsource.TrySkipVisible(s, size)
}
