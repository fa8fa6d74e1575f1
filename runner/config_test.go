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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/LinHeLurking/python-template/binding"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "greetbind.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		expected      Config
		expectedError bool
	}{
		{
			name: "all keys",
			content: `
guest_url = " file://guest.wasm "
guest_name = "greet"
module_name = "python_template._ext"
args = ["-v", "world"]
`,
			expected: Config{
				GuestURL:   "file://guest.wasm",
				GuestName:  "greet",
				ModuleName: "python_template._ext",
				Args:       []string{"-v", "world"},
			},
		},
		{
			name:    "defaults",
			content: `guest_url = "https://example.com/guest.wasm"`,
			expected: Config{
				GuestURL:  "https://example.com/guest.wasm",
				GuestName: DefaultGuestName,
			},
		},
		{
			name:          "unknown key",
			content:       `guest_path = "guest.wasm"`,
			expectedError: true,
		},
		{
			name:          "invalid toml",
			content:       `guest_url = `,
			expectedError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			cfg, err := LoadConfig(path)
			if tc.expectedError {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tc.expected.BaseDir = filepath.Dir(path)
			if diff := cmp.Diff(tc.expected, cfg, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("unexpected config (-want +have):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig_missingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestConfig_Module(t *testing.T) {
	t.Cleanup(func() { binding.ModuleName = binding.DefaultModuleName })

	if want, have := "_ext", (Config{}).Module(); want != have {
		t.Fatalf("unexpected module: want %q, have %q", want, have)
	}

	binding.ModuleName = "built_in"
	if want, have := "built_in", (Config{}).Module(); want != have {
		t.Fatalf("unexpected module: want %q, have %q", want, have)
	}

	if want, have := "configured", (Config{ModuleName: "configured"}).Module(); want != have {
		t.Fatalf("unexpected module: want %q, have %q", want, have)
	}
}
