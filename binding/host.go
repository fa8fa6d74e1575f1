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

package binding

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"
	"k8s.io/klog/v2"
)

// Host is a Module instantiated in a wazero runtime. It owns the objects
// guests construct through the module.
type Host struct {
	m         *Module
	module    wazeroapi.Module
	instances *instances
}

// Instantiate registers every export of m as a host module in runtime. Guests
// instantiated afterwards in the same runtime can import it by m.Name().
func Instantiate(ctx context.Context, runtime wazero.Runtime, m *Module) (*Host, error) {
	exports, err := m.Exports()
	if err != nil {
		return nil, err
	}

	h := newHost(m)
	builder := runtime.NewHostModuleBuilder(m.Name())
	for _, e := range exports {
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(h.goFunc(e), e.Params, e.Results).
			WithParameterNames(e.ParamNames...).
			WithResultNames(e.ResultNames...).
			Export(e.Name)
	}

	if h.module, err = builder.Instantiate(ctx); err != nil {
		return nil, fmt.Errorf("binding: error instantiating module %q: %w", m.Name(), err)
	}
	klog.V(2).InfoS("Instantiated binding", "module", m.Name(), "exports", len(exports))
	return h, nil
}

func newHost(m *Module) *Host {
	return &Host{m: m, instances: newInstances()}
}

// Module returns the export table h was instantiated from.
func (h *Host) Module() *Module {
	return h.m
}

// Live returns the count of objects guests constructed and did not drop.
func (h *Host) Live() int {
	return h.instances.len()
}

// Close closes the host module. Objects still held by guests are released.
func (h *Host) Close(ctx context.Context) error {
	if live := h.instances.releaseAll(); live > 0 {
		klog.V(2).InfoS("Released objects the guest did not drop", "module", h.m.Name(), "count", live)
	}
	if h.module == nil {
		return nil
	}
	return h.module.Close(ctx)
}

func (h *Host) goFunc(e Export) wazeroapi.GoModuleFunc {
	switch e.Kind {
	case KindDoc:
		return h.docFn
	case KindConstructor:
		return func(_ context.Context, _ wazeroapi.Module, stack []uint64) {
			h.constructFn(e.class, stack)
		}
	case KindDestructor:
		return func(_ context.Context, _ wazeroapi.Module, stack []uint64) {
			h.dropFn(e.class, stack)
		}
	case KindMethod:
		return func(_ context.Context, mod wazeroapi.Module, stack []uint64) {
			h.methodFn(e.class, e.method, mod, stack)
		}
	}
	panic(fmt.Sprintf("binding: unexpected export kind %v", e.Kind)) // Bug: in Exports.
}

// docFn is used by the wasm guest to read the module doc.
func (h *Host) docFn(_ context.Context, mod wazeroapi.Module, stack []uint64) {
	buf := uint32(stack[0])
	bufLimit := bufLimit(stack[1])

	stack[0] = uint64(writeStringIfUnderLimit(mod.Memory(), buf, bufLimit, h.m.doc))
}

// constructFn is used by the wasm guest to create an object of class c. The
// result is the handle the guest passes to methods and the destructor.
func (h *Host) constructFn(c *class, stack []uint64) {
	handle := h.instances.add(c.name, c.init())
	klog.V(4).InfoS("Constructed object", "class", c.name, "handle", handle)
	stack[0] = uint64(handle)
}

// dropFn is used by the wasm guest to release an object of class c.
func (h *Host) dropFn(c *class, stack []uint64) {
	handle := uint32(stack[0])

	h.instances.remove(c.name, handle)
	klog.V(4).InfoS("Dropped object", "class", c.name, "handle", handle)
}

// methodFn is used by the wasm guest to invoke method mt on an object of
// class c. The string result is written to the guest's buffer.
func (h *Host) methodFn(c *class, mt *method, mod wazeroapi.Module, stack []uint64) {
	handle := uint32(stack[0])
	buf := uint32(stack[1])
	bufLimit := bufLimit(stack[2])

	result := mt.fn(h.instances.get(c.name, handle))
	stack[0] = uint64(writeStringIfUnderLimit(mod.Memory(), buf, bufLimit, result))
}
