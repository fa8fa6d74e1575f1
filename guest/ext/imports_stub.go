//go:build !tinygo.wasm

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

// extDoc is stubbed for compilation outside TinyGo.
func extDoc(uint32, mem.BufLimit) (len uint32) { return }

// greeterNew is stubbed for compilation outside TinyGo.
func greeterNew() (handle uint32) { return }

// greeterDrop is stubbed for compilation outside TinyGo.
func greeterDrop(uint32) {}

// greeterSimpleGreet is stubbed for compilation outside TinyGo.
func greeterSimpleGreet(uint32, uint32, mem.BufLimit) (len uint32) { return }

// greeterComplexGreet is stubbed for compilation outside TinyGo.
func greeterComplexGreet(uint32, uint32, mem.BufLimit) (len uint32) { return }
