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

// Package test builds small guest binaries so tests do not depend on a
// TinyGo toolchain.
package test

import (
	"github.com/tetratelabs/wabin/binary"
	"github.com/tetratelabs/wabin/leb128"
	"github.com/tetratelabs/wabin/wasm"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// GreetBufLimit is the buffer size guests pass to the host. Results are
// written at offset zero of the guest memory.
const GreetBufLimit = 1024

// iovec is where MainGuest places the fd_write iovec and its result.
const iovec = GreetBufLimit * 2

const i32 = wasm.ValueTypeI32

var (
	typeHandle    = &wasm.FunctionType{Results: []wasm.ValueType{i32}}
	typeMethod    = &wasm.FunctionType{Params: []wasm.ValueType{i32, i32, i32}, Results: []wasm.ValueType{i32}}
	typeDrop      = &wasm.FunctionType{Params: []wasm.ValueType{i32}}
	typeDoc       = &wasm.FunctionType{Params: []wasm.ValueType{i32, i32}, Results: []wasm.ValueType{i32}}
	typeFdWrite   = &wasm.FunctionType{Params: []wasm.ValueType{i32, i32, i32, i32}, Results: []wasm.ValueType{i32}}
	typeNoResults = &wasm.FunctionType{}
)

// GreetGuest returns a guest importing class and class.method from module,
// as well as the module doc. It exports "memory" and two functions:
//
//   - "greet" constructs an object, calls method with a buffer at offset zero,
//     drops the object and returns the length the host reported.
//   - "doc" reads the module doc into the same buffer and returns its length.
func GreetGuest(module, class, method string) []byte {
	const ctor, call, drop, doc = 0, 1, 2, 3
	return binary.EncodeModule(&wasm.Module{
		TypeSection: []*wasm.FunctionType{typeHandle, typeMethod, typeDrop, typeDoc},
		ImportSection: []*wasm.Import{
			importFunc(module, class, 0),
			importFunc(module, class+"."+method, 1),
			importFunc(module, class+".drop", 2),
			importFunc(module, "__doc__", 3),
		},
		FunctionSection: []wasm.Index{0, 0},
		MemorySection:   &wasm.Memory{Min: 1},
		ExportSection: []*wasm.Export{
			exportMemory(),
			{Type: wasm.ExternTypeFunc, Name: "greet", Index: 4},
			{Type: wasm.ExternTypeFunc, Name: "doc", Index: 5},
		},
		CodeSection: []*wasm.Code{
			{
				LocalTypes: []wasm.ValueType{i32}, // handle
				Body: body(
					opCall(ctor), opLocalSet(0),
					opLocalGet(0), opI32Const(0), opI32Const(GreetBufLimit), opCall(call),
					opLocalGet(0), opCall(drop),
				),
			},
			{Body: body(opI32Const(0), opI32Const(GreetBufLimit), opCall(doc))},
		},
	})
}

// MainGuest returns a command guest whose "_start" calls class.method from
// module and writes the result to stdout with WASI fd_write.
func MainGuest(module, class, method string) []byte {
	const ctor, call, drop, fdWrite = 0, 1, 2, 3
	return binary.EncodeModule(&wasm.Module{
		TypeSection: []*wasm.FunctionType{typeHandle, typeMethod, typeDrop, typeFdWrite, typeNoResults},
		ImportSection: []*wasm.Import{
			importFunc(module, class, 0),
			importFunc(module, class+"."+method, 1),
			importFunc(module, class+".drop", 2),
			importFunc(wasi_snapshot_preview1.ModuleName, "fd_write", 3),
		},
		FunctionSection: []wasm.Index{4},
		MemorySection:   &wasm.Memory{Min: 1},
		ExportSection: []*wasm.Export{
			exportMemory(),
			{Type: wasm.ExternTypeFunc, Name: "_start", Index: 4},
		},
		CodeSection: []*wasm.Code{
			{
				LocalTypes: []wasm.ValueType{i32, i32}, // handle, len
				Body: body(
					opCall(ctor), opLocalSet(0),
					opLocalGet(0), opI32Const(0), opI32Const(GreetBufLimit), opCall(call), opLocalSet(1),
					opLocalGet(0), opCall(drop),
					// iovec{buf: 0, len: len}
					opI32Const(iovec), opI32Const(0), opI32Store(),
					opI32Const(iovec+4), opLocalGet(1), opI32Store(),
					// fd_write(stdout, iovec, 1, &nwritten)
					opI32Const(1), opI32Const(iovec), opI32Const(1), opI32Const(iovec+8), opCall(fdWrite),
					[]byte{wasm.OpcodeDrop},
				),
			},
		},
	})
}

// DropGuest returns a guest importing class.drop from module. Its "drop"
// export passes its parameter through as the handle.
func DropGuest(module, class string) []byte {
	return binary.EncodeModule(&wasm.Module{
		TypeSection:     []*wasm.FunctionType{typeDrop},
		ImportSection:   []*wasm.Import{importFunc(module, class+".drop", 0)},
		FunctionSection: []wasm.Index{0},
		MemorySection:   &wasm.Memory{Min: 1},
		ExportSection: []*wasm.Export{
			exportMemory(),
			{Type: wasm.ExternTypeFunc, Name: "drop", Index: 1},
		},
		CodeSection: []*wasm.Code{{Body: body(opLocalGet(0), opCall(0))}},
	})
}

// ImportGuest returns a guest that only imports module.name with the given
// signature and exports "memory".
func ImportGuest(module, name string, params, results []wasm.ValueType) []byte {
	return binary.EncodeModule(&wasm.Module{
		TypeSection:   []*wasm.FunctionType{{Params: params, Results: results}},
		ImportSection: []*wasm.Import{importFunc(module, name, 0)},
		MemorySection: &wasm.Memory{Min: 1},
		ExportSection: []*wasm.Export{exportMemory()},
	})
}

// MemoryGuest returns a guest without imports, exporting "memory".
func MemoryGuest() []byte {
	return binary.EncodeModule(&wasm.Module{
		MemorySection: &wasm.Memory{Min: 1},
		ExportSection: []*wasm.Export{exportMemory()},
	})
}

func importFunc(module, name string, typeIdx wasm.Index) *wasm.Import {
	return &wasm.Import{Type: wasm.ExternTypeFunc, Module: module, Name: name, DescFunc: typeIdx}
}

func exportMemory() *wasm.Export {
	return &wasm.Export{Type: wasm.ExternTypeMemory, Name: "memory", Index: 0}
}

func body(instructions ...[]byte) (b []byte) {
	for _, in := range instructions {
		b = append(b, in...)
	}
	return append(b, wasm.OpcodeEnd)
}

func opCall(funcIdx wasm.Index) []byte {
	return append([]byte{wasm.OpcodeCall}, leb128.EncodeUint32(funcIdx)...)
}

func opLocalGet(idx uint32) []byte {
	return append([]byte{wasm.OpcodeLocalGet}, leb128.EncodeUint32(idx)...)
}

func opLocalSet(idx uint32) []byte {
	return append([]byte{wasm.OpcodeLocalSet}, leb128.EncodeUint32(idx)...)
}

func opI32Const(v int32) []byte {
	return append([]byte{wasm.OpcodeI32Const}, leb128.EncodeInt32(v)...)
}

// opI32Store stores with 4 byte alignment and no offset.
func opI32Store() []byte {
	return []byte{wasm.OpcodeI32Store, 0x02, 0x00}
}
