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

// Package binding registers native Go types with a WebAssembly guest. A
// Module is a declarative table of classes, constructors and methods which
// Instantiate turns into a wazero host module named after the module.
package binding

// DefaultModuleName is used when ModuleName is set to the empty string.
const DefaultModuleName = "_ext"

// ModuleName is the name guests import the extension from. It is meant to be
// substituted at build time, for example:
//
//	go build -ldflags "-X github.com/LinHeLurking/python-template/binding.ModuleName=_ext_debug" ./cmd/greetbind
var ModuleName = DefaultModuleName

// Name returns ModuleName, or DefaultModuleName when ModuleName is empty.
func Name() string {
	if ModuleName == "" {
		return DefaultModuleName
	}
	return ModuleName
}
