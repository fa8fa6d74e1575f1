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
	"bufio"
	"io"
	"strings"

	wazeroapi "github.com/tetratelabs/wazero/api"
)

// Describe writes a stub of the exported surface of m: the module doc, then
// each host function with its signature, grouped by class.
//
// For example:
//
//	module _ext
//	    Sample wazero Go extension
//
//	__doc__(buf i32, buf_limit i32) -> (len i32)
//
//	class Greeter
//	    Greeter() -> (handle i32)
//	    Greeter.drop(handle i32)
func (m *Module) Describe(w io.Writer) error {
	exports, err := m.Exports()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("module " + m.name + "\n")
	for _, line := range strings.Split(m.doc, "\n") {
		if line != "" {
			bw.WriteString("    " + line + "\n")
		}
	}

	var class string
	for _, e := range exports {
		indent := ""
		if e.Class != "" {
			indent = "    "
		}
		if e.Class != class || e.Kind == KindDoc {
			bw.WriteString("\n")
			if e.Class != "" {
				bw.WriteString("class " + e.Class + "\n")
			}
			class = e.Class
		}
		bw.WriteString(indent + e.Signature() + "\n")
	}
	return bw.Flush()
}

// Signature formats e like "Greeter.simple_greet(handle i32, buf i32,
// buf_limit i32) -> (len i32)".
func (e Export) Signature() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	sb.WriteString("(")
	writeValues(&sb, e.ParamNames, e.Params)
	sb.WriteString(")")
	if len(e.Results) > 0 {
		sb.WriteString(" -> (")
		writeValues(&sb, e.ResultNames, e.Results)
		sb.WriteString(")")
	}
	return sb.String()
}

func writeValues(sb *strings.Builder, names []string, types []wazeroapi.ValueType) {
	for i, t := range types {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i < len(names) {
			sb.WriteString(names[i])
			sb.WriteString(" ")
		}
		sb.WriteString(wazeroapi.ValueTypeName(t))
	}
}
