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
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// wasmMagic is the preamble of every WebAssembly binary.
var wasmMagic = []byte("\x00asm")

// readGuest returns the guest binary at url. A relative file path, such as
// "file://greet.wasm", resolves against dir when dir is set. Anything not
// starting with the WebAssembly preamble is rejected before compilation.
func readGuest(ctx context.Context, url, dir string) ([]byte, error) {
	// The URL is split manually, so that "file://../greet.wasm" keeps its
	// relative path instead of becoming a host.
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return nil, fmt.Errorf("invalid URL: %s", url)
	}

	var bin []byte
	var err error
	switch scheme {
	case "http", "https":
		bin, err = httpGet(ctx, http.DefaultClient, url)
	case "file":
		bin, err = os.ReadFile(guestPath(rest, dir))
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s", scheme)
	}
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(bin, wasmMagic) {
		return nil, fmt.Errorf("%s is not a WebAssembly binary", url)
	}
	return bin, nil
}

func guestPath(path, dir string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// httpGet returns the body of a successful GET of url.
func httpGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
