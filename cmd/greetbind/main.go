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

// Command greetbind runs a WebAssembly guest linked to the greeter extension,
// or describes the functions the extension exports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"

	"github.com/LinHeLurking/python-template/binding"
	"github.com/LinHeLurking/python-template/ext"
	"github.com/LinHeLurking/python-template/runner"
)

type options struct {
	configFile string
	guestURL   string
	moduleName string
	describe   bool
	args       []string
}

func main() {
	klog.InitFlags(nil)

	var opts options
	flag.StringVar(&opts.configFile, "config", "", "path to a TOML file with guest_url, guest_name, module_name and args")
	flag.StringVar(&opts.guestURL, "guest", "", "URL of the guest wasm: file://path or http[s]://...")
	flag.StringVar(&opts.moduleName, "module", "", "module name the guest imports the extension from (default "+binding.Name()+")")
	flag.BoolVar(&opts.describe, "describe", false, "print the functions the extension exports and exit")
	flag.Parse()
	opts.args = flag.Args()

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		klog.ErrorS(err, "greetbind failed")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	klog.Flush()
}

// loadConfig merges the config file, if any, with flags. Flags win.
func loadConfig(opts options) (runner.Config, error) {
	var config runner.Config
	if opts.configFile != "" {
		var err error
		if config, err = runner.LoadConfig(opts.configFile); err != nil {
			return runner.Config{}, err
		}
	}
	if opts.guestURL != "" {
		// Relative to the working directory, not the config file.
		config.GuestURL, config.BaseDir = opts.guestURL, ""
	}
	if opts.moduleName != "" {
		config.ModuleName = opts.moduleName
	}
	if len(opts.args) > 0 {
		config.Args = opts.args
	}
	return config, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	config, err := loadConfig(opts)
	if err != nil {
		return err
	}

	m := ext.New(config.Module())
	if opts.describe {
		return m.Describe(stdout)
	}

	if config.GuestURL == "" {
		return errors.New("no guest: set -guest or guest_url in -config")
	}
	config.Stdout, config.Stderr = stdout, stderr

	r, err := runner.New(ctx, config, m)
	if err != nil {
		return err
	}
	defer r.Close(ctx)

	if _, err = r.Instantiate(ctx); err != nil {
		return fmt.Errorf("run %s: %w", config.GuestURL, err)
	}
	return nil
}
