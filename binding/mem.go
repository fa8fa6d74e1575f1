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

package binding

import wazeroapi "github.com/tetratelabs/wazero/api"

// bufLimit is the possibly zero maximum length of a result value to write in
// bytes. If the actual value is larger than this, nothing is written to
// memory.
type bufLimit = uint32

// writeStringIfUnderLimit writes v to memory at offset when it fits in limit.
// It returns the length of v either way, so the caller can retry with a
// larger buffer.
func writeStringIfUnderLimit(mem wazeroapi.Memory, offset uint32, limit bufLimit, v string) (vLen uint32) {
	vLen = uint32(len(v))
	if vLen > limit {
		return // caller can retry with a larger limit
	} else if vLen == 0 {
		return // nothing to write
	}
	if !mem.WriteString(offset, v) {
		panic("out of memory") // Bug: caller passed a buffer outside memory
	}
	return
}
