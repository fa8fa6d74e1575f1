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

// Package ext is the guest side of the greeter extension. It calls the host
// functions a binding exports under the module name "_ext".
//
// For example:
//
//	func main() {
//		g := ext.NewGreeter()
//		defer g.Close()
//		fmt.Println(g.SimpleGreet())
//	}
package ext

import "github.com/LinHeLurking/python-template/guest/internal/mem"

// results is sharable because there is no parallelism in wasm.
var results = mem.NewBuffer(256)

// Doc returns the doc string of the extension module.
func Doc() string {
	// Wrap to avoid TinyGo 0.27: cannot use an exported function as value
	return results.String(func(ptr uint32, limit mem.BufLimit) (len uint32) {
		return extDoc(ptr, limit)
	})
}

// Greeter is a handle to a greeter the host constructed. The host owns the
// object until Close.
type Greeter struct {
	handle uint32
}

// NewGreeter constructs a greeter on the host.
func NewGreeter() *Greeter {
	return &Greeter{handle: greeterNew()}
}

// SimpleGreet returns the host greeter's simple greeting.
func (g *Greeter) SimpleGreet() string {
	return results.String(func(ptr uint32, limit mem.BufLimit) (len uint32) {
		return greeterSimpleGreet(g.handle, ptr, limit)
	})
}

// ComplexGreet returns the host greeter's complex greeting.
func (g *Greeter) ComplexGreet() string {
	return results.String(func(ptr uint32, limit mem.BufLimit) (len uint32) {
		return greeterComplexGreet(g.handle, ptr, limit)
	})
}

// Close releases the host object. Calling methods afterwards traps.
func (g *Greeter) Close() {
	if g.handle == 0 {
		return
	}
	greeterDrop(g.handle)
	g.handle = 0
}
