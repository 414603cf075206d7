// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frame

import "sync"

// Buffer size classes. SmallBufferSize covers status reads and response
// headers; LargeBufferSize covers the biggest command and response frames
// the driver exchanges.
const (
	SmallBufferSize = 16
	LargeBufferSize = 256
)

// BufferPool recycles scratch buffers for SPI transfers. Exchanges happen
// on every poll iteration, so pooling keeps the hot path allocation-free.
type BufferPool struct {
	smallPool sync.Pool
	largePool sync.Pool
}

// NewBufferPool creates a buffer pool with the standard size classes.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		smallPool: sync.Pool{
			New: func() any {
				buf := make([]byte, SmallBufferSize)
				return &buf
			},
		},
		largePool: sync.Pool{
			New: func() any {
				buf := make([]byte, LargeBufferSize)
				return &buf
			},
		},
	}
}

// GetBuffer acquires a zeroed buffer of the requested size. Oversized
// requests are allocated directly so they do not pollute the pool.
func (p *BufferPool) GetBuffer(size int) []byte {
	switch {
	case size <= SmallBufferSize:
		bufPtr, ok := p.smallPool.Get().(*[]byte)
		if !ok {
			return make([]byte, size)
		}
		return (*bufPtr)[:size]
	case size <= LargeBufferSize:
		bufPtr, ok := p.largePool.Get().(*[]byte)
		if !ok {
			return make([]byte, size)
		}
		return (*bufPtr)[:size]
	default:
		return make([]byte, size)
	}
}

// PutBuffer returns a buffer to the pool. The buffer must not be used
// after this call; its contents are cleared before reuse.
func (p *BufferPool) PutBuffer(buf []byte) {
	if buf == nil {
		return
	}
	for i := range buf {
		buf[i] = 0
	}
	switch cap(buf) {
	case SmallBufferSize:
		fullBuf := buf[:SmallBufferSize]
		p.smallPool.Put(&fullBuf)
	case LargeBufferSize:
		fullBuf := buf[:LargeBufferSize]
		p.largePool.Put(&fullBuf)
	default:
		// Directly allocated buffer, let the GC have it.
	}
}

var defaultPool = NewBufferPool()

// GetBuffer acquires a buffer from the default pool.
func GetBuffer(size int) []byte {
	return defaultPool.GetBuffer(size)
}

// PutBuffer returns a buffer to the default pool.
func PutBuffer(buf []byte) {
	defaultPool.PutBuffer(buf)
}
