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

// Package greeter holds the native Greeter type exposed by the extension.
package greeter

import "strings"

// Greeter is default-constructible and holds no state.
type Greeter struct{}

// New returns a Greeter. It never fails.
func New() *Greeter {
	return &Greeter{}
}

// SimpleGreet returns the one-line greeting.
func (g *Greeter) SimpleGreet() string {
	return "Hello, World!"
}

var complexGreetings = []string{
	"Hello, World!",
	"Bonjour, le monde!",
	"Hola, Mundo!",
	"Hallo, Welt!",
}

// ComplexGreet returns one greeting per line, each line ending in a newline.
func (g *Greeter) ComplexGreet() string {
	var sb strings.Builder
	for _, greeting := range complexGreetings {
		sb.WriteString(greeting)
		sb.WriteByte('\n')
	}
	return sb.String()
}
