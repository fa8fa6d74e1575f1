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
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/LinHeLurking/python-template/binding"
)

// DefaultGuestName prefixes guest instance names when Config.GuestName is
// empty.
const DefaultGuestName = "guest"

// Config is how a guest is found and run. Zero values fall back to defaults,
// so Config{GuestURL: url} is enough to run a guest against binding.Name.
type Config struct {
	// GuestURL is the URL to the guest wasm.
	// Valid schemes are file:// for a local file or http[s]:// for one
	// retrieved via HTTP.
	GuestURL string `json:"guestURL" toml:"guest_url"`

	// GuestName prefixes the name of each guest instance.
	GuestName string `json:"guestName" toml:"guest_name"`

	// ModuleName overrides the name the guest imports the extension from.
	// When empty, binding.Name is used.
	ModuleName string `json:"moduleName" toml:"module_name"`

	// Args are the os.Args the guest will receive, after its name.
	Args []string `json:"args" toml:"args"`

	// BaseDir resolves a relative file:// GuestURL. LoadConfig sets it to the
	// directory of the config file.
	BaseDir string `json:"-" toml:"-"`

	// Stdout and Stderr receive the guest's output, in addition to any error
	// returned by Instantiate.
	Stdout io.Writer `json:"-" toml:"-"`
	Stderr io.Writer `json:"-" toml:"-"`
}

// Module returns the name the guest imports the extension from.
func (c Config) Module() string {
	if c.ModuleName != "" {
		return c.ModuleName
	}
	return binding.Name()
}

// LoadConfig reads a TOML file with the keys guest_url, guest_name,
// module_name and args.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load runner config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("load runner config: unknown keys %s", strings.Join(keys, ", "))
	}

	if !meta.IsDefined("guest_name") {
		cfg.GuestName = DefaultGuestName
	}
	cfg.GuestURL = strings.TrimSpace(cfg.GuestURL)
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}
