/*
   Copyright 2023 The python-template Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package mem reads values the host writes into guest memory.
package mem

import "unsafe"

// BufLimit is the possibly zero maximum length of a result value to write in
// bytes. If the actual value is larger than this, nothing is written to
// memory.
type BufLimit = uint32

// Buffer is guest memory the host writes string results into. It grows to
// the largest result read so far, so repeated calls for the same greeting
// reach the host once.
type Buffer struct {
	b []byte
}

// NewBuffer returns a Buffer with room for size bytes.
func NewBuffer(size uint32) *Buffer {
	return &Buffer{b: make([]byte, size)}
}

// String calls fn with the buffer and returns the string it wrote. When the
// length fn returns exceeds the buffer, the buffer grows to that length and
// fn is called again.
func (r *Buffer) String(fn func(ptr uint32, limit BufLimit) (len uint32)) string {
	size := fn(r.ptr(), r.limit())
	if size > r.limit() {
		r.b = make([]byte, size)
		size = fn(r.ptr(), r.limit())
	}
	if size > r.limit() {
		// The host result changed between calls.
		size = r.limit()
	}
	return string(r.b[:size])
}

func (r *Buffer) ptr() uint32 {
	return uint32(uintptr(unsafe.Pointer(unsafe.SliceData(r.b))))
}

func (r *Buffer) limit() BufLimit {
	return BufLimit(len(r.b))
}
