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

// Package ext exposes greeter.Greeter to WebAssembly guests.
package ext

import (
	"github.com/LinHeLurking/python-template/binding"
	"github.com/LinHeLurking/python-template/greeter"
)

// Doc is the module doc guests read with "__doc__".
const Doc = "Sample wazero Go extension"

// New declares the extension under the module name guests import.
func New(name string) *binding.Module {
	m := binding.NewModule(name).SetDoc(Doc)
	binding.Class[*greeter.Greeter](m, "Greeter").
		Init(greeter.New).
		Def("simple_greet", (*greeter.Greeter).SimpleGreet).
		Def("complex_greet", (*greeter.Greeter).ComplexGreet)
	return m
}

// Default declares the extension under binding.Name.
func Default() *binding.Module {
	return New(binding.Name())
}
