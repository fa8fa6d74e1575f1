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
	"errors"
	"fmt"
	"strings"

	wazeroapi "github.com/tetratelabs/wazero/api"
)

const (
	i32 = wazeroapi.ValueTypeI32

	// exportDoc is the function guests call to read the module doc.
	exportDoc = "__doc__"
	// methodDrop is the method suffix of a class destructor.
	methodDrop = "drop"
)

// Module is the export table of one extension. Declarations are recorded in
// order. The first call to Exports seals the module, after which it cannot
// change.
type Module struct {
	name    string
	doc     string
	classes []*class

	// err is the first invalid declaration.
	err     error
	sealed  bool
	exports []Export
}

type class struct {
	name    string
	init    func() any
	methods []*method
}

type method struct {
	name string
	fn   func(any) string
}

// NewModule returns an empty module which guests import as name.
func NewModule(name string) *Module {
	m := &Module{name: name}
	if name == "" {
		m.fail(errors.New("binding: empty module name"))
	}
	return m
}

// Name returns the name guests import the module as.
func (m *Module) Name() string {
	return m.name
}

// Doc returns the module doc.
func (m *Module) Doc() string {
	return m.doc
}

// SetDoc sets the doc string guests can read with the "__doc__" export.
func (m *Module) SetDoc(doc string) *Module {
	if m.checkOpen() {
		m.doc = doc
	}
	return m
}

// ClassBuilder declares the constructor and methods of a class of T.
type ClassBuilder[T any] struct {
	m *Module
	c *class
}

// Class declares a class exported as name. T is the Go type the constructor
// returns and the methods receive.
//
// For example:
//
//	binding.Class[*greeter.Greeter](m, "Greeter").
//		Init(greeter.New).
//		Def("simple_greet", (*greeter.Greeter).SimpleGreet)
func Class[T any](m *Module, name string) *ClassBuilder[T] {
	c := &class{name: name}
	switch {
	case !m.checkOpen():
	case !validName(name):
		m.fail(fmt.Errorf("binding: invalid class name %q", name))
	case name == exportDoc:
		m.fail(fmt.Errorf("binding: class name %q is reserved", name))
	case m.class(name) != nil:
		m.fail(fmt.Errorf("binding: class %q already registered", name))
	default:
		m.classes = append(m.classes, c)
	}
	return &ClassBuilder[T]{m: m, c: c}
}

// Init sets the default constructor of the class.
func (b *ClassBuilder[T]) Init(fn func() T) *ClassBuilder[T] {
	switch {
	case !b.m.checkOpen():
	case fn == nil:
		b.m.fail(fmt.Errorf("binding: nil constructor for class %q", b.c.name))
	case b.c.init != nil:
		b.m.fail(fmt.Errorf("binding: class %q already has a constructor", b.c.name))
	default:
		b.c.init = func() any { return fn() }
	}
	return b
}

// Def exports fn as the method name of the class. The guest receives the
// string fn returns.
func (b *ClassBuilder[T]) Def(name string, fn func(T) string) *ClassBuilder[T] {
	switch {
	case !b.m.checkOpen():
	case fn == nil:
		b.m.fail(fmt.Errorf("binding: nil method %s.%s", b.c.name, name))
	case !validName(name):
		b.m.fail(fmt.Errorf("binding: invalid method name %q in class %q", name, b.c.name))
	case name == methodDrop:
		b.m.fail(fmt.Errorf("binding: method name %s.%s is reserved", b.c.name, name))
	case b.c.method(name) != nil:
		b.m.fail(fmt.Errorf("binding: method %s.%s already registered", b.c.name, name))
	default:
		b.c.methods = append(b.c.methods, &method{
			name: name,
			fn:   func(obj any) string { return fn(obj.(T)) },
		})
	}
	return b
}

// Kind is the role of an exported host function.
type Kind uint8

const (
	// KindDoc is the "__doc__" export, which reads the module doc.
	KindDoc Kind = iota
	// KindConstructor is exported as the class name and returns a handle.
	KindConstructor
	// KindDestructor is exported as "<class>.drop" and releases a handle.
	KindDestructor
	// KindMethod is exported as "<class>.<method>" and writes a string
	// result to a guest buffer.
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindDoc:
		return "doc"
	case KindConstructor:
		return "constructor"
	case KindDestructor:
		return "destructor"
	case KindMethod:
		return "method"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Export is one host function of the module.
type Export struct {
	// Name is the function name guests import, such as "Greeter.simple_greet".
	Name string
	Kind Kind
	// Class is empty for KindDoc.
	Class string
	// Method is only set for KindMethod.
	Method string

	ParamNames  []string
	Params      []wazeroapi.ValueType
	ResultNames []string
	Results     []wazeroapi.ValueType

	class  *class
	method *method
}

// Exports seals the module and returns its host functions in declaration
// order, or the first invalid declaration.
func (m *Module) Exports() ([]Export, error) {
	m.sealed = true
	if m.err != nil {
		return nil, m.err
	}
	if m.exports != nil {
		return m.exports, nil
	}

	exports := []Export{{
		Name:        exportDoc,
		Kind:        KindDoc,
		ParamNames:  []string{"buf", "buf_limit"},
		Params:      []wazeroapi.ValueType{i32, i32},
		ResultNames: []string{"len"},
		Results:     []wazeroapi.ValueType{i32},
	}}
	for _, c := range m.classes {
		if c.init == nil {
			m.err = fmt.Errorf("binding: class %q has no constructor", c.name)
			return nil, m.err
		}
		exports = append(exports, Export{
			Name:        c.name,
			Kind:        KindConstructor,
			Class:       c.name,
			ResultNames: []string{"handle"},
			Results:     []wazeroapi.ValueType{i32},
			class:       c,
		}, Export{
			Name:       c.name + "." + methodDrop,
			Kind:       KindDestructor,
			Class:      c.name,
			ParamNames: []string{"handle"},
			Params:     []wazeroapi.ValueType{i32},
			class:      c,
		})
		for _, mt := range c.methods {
			exports = append(exports, Export{
				Name:        c.name + "." + mt.name,
				Kind:        KindMethod,
				Class:       c.name,
				Method:      mt.name,
				ParamNames:  []string{"handle", "buf", "buf_limit"},
				Params:      []wazeroapi.ValueType{i32, i32, i32},
				ResultNames: []string{"len"},
				Results:     []wazeroapi.ValueType{i32},
				class:       c,
				method:      mt,
			})
		}
	}
	m.exports = exports
	return exports, nil
}

// Export returns the host function exported as name.
func (m *Module) Export(name string) (Export, bool) {
	exports, err := m.Exports()
	if err != nil {
		return Export{}, false
	}
	for _, e := range exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

func (m *Module) class(name string) *class {
	for _, c := range m.classes {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (c *class) method(name string) *method {
	for _, mt := range c.methods {
		if mt.name == name {
			return mt
		}
	}
	return nil
}

// checkOpen records an error if the module is already sealed.
func (m *Module) checkOpen() bool {
	if m.sealed {
		m.fail(fmt.Errorf("binding: module %q is sealed", m.name))
		return false
	}
	return true
}

// fail records err unless an earlier declaration already failed.
func (m *Module) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

// validName accepts names without whitespace or dots. Dots separate class and
// method in export names.
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, ". \t\r\n")
}
