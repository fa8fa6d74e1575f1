//go:build tinygo.wasm

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

package ext

import "github.com/LinHeLurking/python-template/guest/internal/mem"

// The module name is fixed when the guest is compiled. Guests for a host built
// with another binding.ModuleName need these directives changed to match.

//go:wasmimport _ext __doc__
func extDoc(buf uint32, limit mem.BufLimit) (len uint32)

//go:wasmimport _ext Greeter
func greeterNew() (handle uint32)

//go:wasmimport _ext Greeter.drop
func greeterDrop(handle uint32)

//go:wasmimport _ext Greeter.simple_greet
func greeterSimpleGreet(handle, buf uint32, limit mem.BufLimit) (len uint32)

//go:wasmimport _ext Greeter.complex_greet
func greeterComplexGreet(handle, buf uint32, limit mem.BufLimit) (len uint32)
