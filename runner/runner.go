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

// Package runner loads a WebAssembly guest and links it against an extension
// declared with package binding.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"k8s.io/klog/v2"

	"github.com/LinHeLurking/python-template/binding"
)

// Runner instantiates one compiled guest, possibly many times.
type Runner struct {
	runtime           wazero.Runtime
	guestName         string
	guestModule       wazero.CompiledModule
	guestModuleConfig wazero.ModuleConfig
	instanceCounter   atomic.Uint64
	stdout, stderr    io.Writer

	// host is nil when the guest doesn't import the extension.
	host *binding.Host
}

// New reads the guest at config.GuestURL and prepares a runtime linking it to
// m. m must be named config.Module().
func New(ctx context.Context, config Config, m *binding.Module) (*Runner, error) {
	guestBin, err := readGuest(ctx, config.GuestURL, config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("wasm: error reading guest binary at %s: %w", config.GuestURL, err)
	}
	return newRunner(ctx, config, m, guestBin)
}

func newRunner(ctx context.Context, config Config, m *binding.Module, guestBin []byte) (*Runner, error) {
	if want, have := config.Module(), m.Name(); want != have {
		return nil, fmt.Errorf("wasm: module %q doesn't match configured module %q", have, want)
	}

	runtime, guestModule, host, err := prepareRuntime(ctx, guestBin, m)
	if err != nil {
		return nil, err
	}

	guestName := config.GuestName
	if guestName == "" {
		guestName = DefaultGuestName
	}
	args := append([]string{guestName}, config.Args...)

	klog.V(2).InfoS("Prepared guest", "guest", guestName, "module", m.Name(), "linked", host != nil)
	return &Runner{
		runtime:           runtime,
		guestName:         guestName,
		guestModule:       guestModule,
		guestModuleConfig: wazero.NewModuleConfig().WithArgs(args...),
		stdout:            config.Stdout,
		stderr:            config.Stderr,
		host:              host,
	}, nil
}

// Host returns the instantiated extension, or nil if the guest doesn't
// import it.
func (r *Runner) Host() *binding.Host {
	return r.host
}

// Instantiate creates a new guest instance, running its start function if
// it has one. The guest's output goes to the configured writers.
//
// A guest that exits with code zero is not an error. The exit closed its
// module, so the returned module is nil. Any other guest stays open, and the
// caller may call its exports until Close.
func (r *Runner) Instantiate(ctx context.Context) (wazeroapi.Module, error) {
	// Concurrent modules can conflict on name. Make sure we have a unique one.
	instanceNum := r.instanceCounter.Add(1)
	instanceName := r.guestName + "-" + strconv.FormatUint(instanceNum, 10)
	guestModuleConfig := r.guestModuleConfig.WithName(instanceName)

	// A guest may have an instantiation error, which writes to stdout or
	// stderr. Capture both, so the error can include them.
	var out bytes.Buffer
	guestModuleConfig = guestModuleConfig.
		WithStdout(teeWriter(&out, r.stdout)).
		WithStderr(teeWriter(&out, r.stderr))

	g, err := r.runtime.InstantiateModule(ctx, r.guestModule, guestModuleConfig)
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 {
		err = nil
	}
	if err != nil {
		return nil, decorateError(&out, "instantiate", err)
	}
	klog.V(4).InfoS("Instantiated guest", "name", instanceName)
	return g, nil
}

// Close implements io.Closer
func (r *Runner) Close(ctx context.Context) error {
	if r.host != nil {
		if err := r.host.Close(ctx); err != nil {
			klog.ErrorS(err, "Failed to close extension", "module", r.host.Module().Name())
		}
	}
	// wazero's runtime closes everything.
	if rt := r.runtime; rt != nil {
		return rt.Close(ctx)
	}
	return nil
}

func teeWriter(out *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return out
	}
	return io.MultiWriter(out, w)
}

func decorateError(out fmt.Stringer, fn string, err error) error {
	detail := out.String()
	if detail != "" {
		err = fmt.Errorf("wasm: %s error: %s\n%v", fn, detail, err)
	} else {
		err = fmt.Errorf("wasm: %s error: %v", fn, err)
	}
	return err
}
