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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/LinHeLurking/python-template/binding"
	"github.com/LinHeLurking/python-template/ext"
	"github.com/LinHeLurking/python-template/greeter"
	"github.com/LinHeLurking/python-template/internal/test"
)

const i32 = wazeroapi.ValueTypeI32

func writeGuest(t *testing.T, bin []byte) string {
	path := filepath.Join(t.TempDir(), "guest.wasm")
	if err := os.WriteFile(path, bin, 0o600); err != nil {
		t.Fatal(err)
	}
	return "file://" + path
}

func TestNew(t *testing.T) {
	native := greeter.New()

	tests := []struct {
		name     string
		method   string
		expected string
	}{
		{
			name:     "simple_greet",
			method:   "simple_greet",
			expected: native.SimpleGreet(),
		},
		{
			name:     "complex_greet",
			method:   "complex_greet",
			expected: native.ComplexGreet(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := Config{GuestURL: writeGuest(t, test.GreetGuest("_ext", "Greeter", tc.method))}
			r, err := New(ctx, config, ext.New(config.Module()))
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close(ctx)

			if r.Host() == nil {
				t.Fatal("expected the extension to be linked")
			}

			// Each instance works against the same extension.
			for i := 0; i < 2; i++ {
				g, err := r.Instantiate(ctx)
				if err != nil {
					t.Fatal(err)
				}

				results, err := g.ExportedFunction("greet").Call(ctx)
				if err != nil {
					t.Fatal(err)
				}
				b, ok := g.Memory().Read(0, uint32(results[0]))
				if !ok {
					t.Fatalf("result length %d is outside memory", results[0])
				}
				if want, have := tc.expected, string(b); want != have {
					t.Fatalf("unexpected greeting: want %q, have %q", want, have)
				}
			}

			if want, have := 0, r.Host().Live(); want != have {
				t.Fatalf("unexpected live objects: want %d, have %d", want, have)
			}
		})
	}
}

func TestNew_customModule(t *testing.T) {
	config := Config{
		GuestURL:   writeGuest(t, test.GreetGuest("python_template._ext", "Greeter", "simple_greet")),
		ModuleName: "python_template._ext",
	}
	r, err := New(ctx, config, ext.New(config.Module()))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close(ctx)

	g, err := r.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want, have := DefaultGuestName+"-1", g.Name(); want != have {
		t.Fatalf("unexpected instance name: want %q, have %q", want, have)
	}
}

func TestNew_noImports(t *testing.T) {
	r, err := New(ctx, Config{GuestURL: writeGuest(t, test.MemoryGuest())}, ext.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close(ctx)

	if r.Host() != nil {
		t.Fatal("expected the extension not to be linked")
	}
	if _, err = r.Instantiate(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestNew_errors(t *testing.T) {
	tests := []struct {
		name          string
		config        Config
		guest         []byte
		moduleName    string
		expectedError string
	}{
		{
			name:          "module mismatch",
			config:        Config{ModuleName: "other"},
			guest:         test.MemoryGuest(),
			moduleName:    "_ext",
			expectedError: `wasm: module "_ext" doesn't match configured module "other"`,
		},
		{
			name:          "not wasm",
			guest:         []byte("not wasm"),
			moduleName:    "_ext",
			expectedError: "wasm: error compiling guest",
		},
		{
			name:          "wrong signature",
			guest:         test.ImportGuest("_ext", "Greeter.simple_greet", []wazeroapi.ValueType{i32}, []wazeroapi.ValueType{i32}),
			moduleName:    "_ext",
			expectedError: "wasm: guest imports the wrong signature for func[_ext.Greeter.simple_greet]. should be Greeter.simple_greet(handle i32, buf i32, buf_limit i32) -> (len i32)",
		},
		{
			name:          "guest built for another module name",
			guest:         test.GreetGuest("python_template._ext", "Greeter", "simple_greet"),
			moduleName:    "_ext",
			expectedError: `wasm: guest imports unknown module "python_template._ext"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.config.GuestURL = writeGuest(t, tc.guest)
			_, err := New(ctx, tc.config, ext.New(tc.moduleName))
			if err == nil {
				t.Fatal("expected an error")
			}
			if want, have := tc.expectedError, err.Error(); !strings.HasPrefix(have, want) {
				t.Fatalf("unexpected error: want %q, have %q", want, have)
			}
		})
	}
}

func TestNew_missingGuest(t *testing.T) {
	_, err := New(ctx, Config{GuestURL: "file://" + filepath.Join(t.TempDir(), "missing.wasm")}, ext.Default())
	if err == nil || !strings.HasPrefix(err.Error(), "wasm: error reading guest binary at file://") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_detectImports(t *testing.T) {
	m := ext.New("_ext")

	tests := []struct {
		name          string
		guest         []byte
		expected      imports
		expectedError string
	}{
		{
			name:  "none",
			guest: test.MemoryGuest(),
		},
		{
			name:     "wasi",
			guest:    test.ImportGuest(wasi_snapshot_preview1.ModuleName, "proc_exit", []wazeroapi.ValueType{i32}, nil),
			expected: importWasiP1,
		},
		{
			name:     "extension",
			guest:    test.GreetGuest("_ext", "Greeter", "complex_greet"),
			expected: importBinding,
		},
		{
			name:          "unexported function",
			guest:         test.ImportGuest("_ext", "Greeter.shout", []wazeroapi.ValueType{i32, i32, i32}, []wazeroapi.ValueType{i32}),
			expectedError: "wasm: guest imports func[_ext.Greeter.shout], which is not exported",
		},
		{
			name:          "unknown module",
			guest:         test.ImportGuest("env", "abort", nil, nil),
			expectedError: `wasm: guest imports unknown module "env"`,
		},
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			guest, err := rt.CompileModule(ctx, tc.guest)
			if err != nil {
				t.Fatal(err)
			}

			have, err := detectImports(guest.ImportedFunctions(), m)
			if tc.expectedError != "" {
				if err == nil || err.Error() != tc.expectedError {
					t.Fatalf("unexpected error: want %q, have %v", tc.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if want := tc.expected; want != have {
				t.Fatalf("unexpected imports: want %b, have %b", want, have)
			}
		})
	}
}

func Test_detectImports_invalidModule(t *testing.T) {
	m := binding.NewModule("_ext")
	binding.Class[*greeter.Greeter](m, "Greeter")

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	guest, err := rt.CompileModule(ctx, test.GreetGuest("_ext", "Greeter", "simple_greet"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = detectImports(guest.ImportedFunctions(), m); err == nil || err.Error() != `binding: class "Greeter" has no constructor` {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunner_Instantiate_wasi(t *testing.T) {
	guest := test.ImportGuest(wasi_snapshot_preview1.ModuleName, "proc_exit", []wazeroapi.ValueType{i32}, nil)
	r, err := New(ctx, Config{GuestURL: writeGuest(t, guest)}, ext.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close(ctx)

	if r.Host() != nil {
		t.Fatal("expected the extension not to be linked")
	}
	if _, err = r.Instantiate(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestRunner_Instantiate_start(t *testing.T) {
	native := greeter.New()

	tests := []struct {
		name     string
		method   string
		expected string
	}{
		{
			name:     "simple_greet",
			method:   "simple_greet",
			expected: native.SimpleGreet(),
		},
		{
			name:     "complex_greet",
			method:   "complex_greet",
			expected: native.ComplexGreet(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			config := Config{
				GuestURL: writeGuest(t, test.MainGuest("_ext", "Greeter", tc.method)),
				Stdout:   &stdout,
				Stderr:   &stderr,
			}
			r, err := New(ctx, config, ext.Default())
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close(ctx)

			if _, err = r.Instantiate(ctx); err != nil {
				t.Fatal(err)
			}
			if want, have := tc.expected, stdout.String(); want != have {
				t.Fatalf("unexpected stdout: want %q, have %q", want, have)
			}
			if want, have := "", stderr.String(); want != have {
				t.Fatalf("unexpected stderr: want %q, have %q", want, have)
			}
			if want, have := 0, r.Host().Live(); want != have {
				t.Fatalf("unexpected live objects: want %d, have %d", want, have)
			}
		})
	}
}
