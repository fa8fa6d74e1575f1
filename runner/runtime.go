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

package runner

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/LinHeLurking/python-template/binding"
)

const guestExportMemory = "memory"

// prepareRuntime compiles the guest and instantiates any host modules it
// needs. host is nil when the guest does not import the extension.
func prepareRuntime(ctx context.Context, guestBin []byte, m *binding.Module) (runtime wazero.Runtime, guest wazero.CompiledModule, host *binding.Host, err error) {
	// Create the runtime, which when closed releases any resources associated with it.
	runtime = wazero.NewRuntime(ctx)

	// Close the runtime on any error
	defer func() {
		if err != nil {
			_ = runtime.Close(context.Background())
			runtime = nil
		}
	}()

	// Compile the guest to ensure any errors are known up front.
	if guest, err = compileGuest(ctx, runtime, guestBin); err != nil {
		return
	}

	// Check imports before instantiating anything, so that a guest built
	// against different exports fails with a clear error.
	var imports imports
	if imports, err = detectImports(guest.ImportedFunctions(), m); err != nil {
		return
	}

	if imports&importWasiP1 != 0 {
		if _, err = wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
			err = fmt.Errorf("wasm: error instantiating wasi: %w", err)
			return
		}
	}
	if imports&importBinding != 0 {
		if host, err = binding.Instantiate(ctx, runtime, m); err != nil {
			err = fmt.Errorf("wasm: error instantiating %s host functions: %w", m.Name(), err)
			return
		}
	}
	return
}

func compileGuest(ctx context.Context, runtime wazero.Runtime, guestBin []byte) (guest wazero.CompiledModule, err error) {
	if guest, err = runtime.CompileModule(ctx, guestBin); err != nil {
		err = fmt.Errorf("wasm: error compiling guest: %w", err)
	} else if _, ok := guest.ExportedMemories()[guestExportMemory]; !ok {
		err = fmt.Errorf("wasm: guest doesn't export memory[%s]", guestExportMemory)
	}
	return
}

type imports uint

const (
	importWasiP1 imports = 1 << iota
	importBinding
)

// detectImports returns the host modules the guest needs. It fails when the
// guest imports a module other than WASI or m, or a function m doesn't export
// with the same signature.
func detectImports(importedFns []wazeroapi.FunctionDefinition, m *binding.Module) (imports, error) {
	var imports imports
	for _, f := range importedFns {
		moduleName, name, _ := f.Import()
		switch moduleName {
		case wasi_snapshot_preview1.ModuleName:
			imports |= importWasiP1
		case m.Name():
			e, ok := m.Export(name)
			if !ok {
				if _, err := m.Exports(); err != nil {
					return 0, err
				}
				return 0, fmt.Errorf("wasm: guest imports func[%s.%s], which is not exported", moduleName, name)
			}
			if !bytes.Equal(f.ParamTypes(), e.Params) || !bytes.Equal(f.ResultTypes(), e.Results) {
				return 0, fmt.Errorf("wasm: guest imports the wrong signature for func[%s.%s]. should be %s", moduleName, name, e.Signature())
			}
			imports |= importBinding
		default:
			return 0, fmt.Errorf("wasm: guest imports unknown module %q", moduleName)
		}
	}
	return imports, nil
}
