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

/*
Package bufsource provides a pull-based, buffer-windowed contract for
sequential reads over byte streams, plus the handful of concrete sources
that every consumer of the contract needs: an adapter over an already
populated byte slice, an adapter over an [io.Reader], and a source that
caps another source to a fixed number of bytes.

Every [BufferedSource] exposes a buffer window ([BufferedSource.Buffer],
[BufferedSource.Offset] and [BufferedSource.Count]) that a consumer may
read in place. [BufferedSource.FillBuffer] and [BufferedSource.EnsureBuffer]
pull more bytes into the window; [BufferedSource.SkipBuffer] and
[BufferedSource.TrySkip] consume bytes out of it. Sources are not safe for
concurrent use and do not support random access, writing, or cancellation;
the only blocking point is the underlying reader.

Subpackages add behaviors on top of the contract: [template] splits a
stream at a fixed byte template, [partition] splits a stream using a
consumer-supplied predicate, and [blockcrypto] applies a block-oriented
cryptographic transform to a source.
*/
package bufsource
