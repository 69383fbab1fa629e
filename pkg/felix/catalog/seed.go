// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package catalog

// Default returns the built-in minimal seed catalog. It covers enough
// of each supported language's standard library that the resolver can
// classify the common cases out of the box; an operator pointing
// config at a catalogs/ directory (see Load) can extend or override
// any language's list without a rebuild.
func Default() *Catalog {
	c := &Catalog{
		stdlib:  make(map[string]map[string]bool),
		vendors: make(map[string][]string),
	}
	for lang, entries := range seedData {
		c.merge(languageFile{
			Language:       lang,
			Stdlib:         entries.stdlib,
			VendorPrefixes: entries.vendors,
		})
	}
	return c
}

type seedEntry struct {
	stdlib  []string
	vendors []string
}

var seedData = map[string]seedEntry{
	"go": {
		stdlib: []string{
			"fmt", "strings", "strconv", "errors", "os", "io", "bufio",
			"bytes", "context", "encoding/json", "encoding/xml", "net",
			"net/http", "net/url", "path", "path/filepath", "time",
			"sync", "sync/atomic", "regexp", "sort", "math", "math/rand",
			"crypto/sha256", "crypto/md5", "crypto/rand", "reflect",
			"runtime", "testing", "log", "log/slog", "unicode",
			"unicode/utf8", "container/list", "container/heap", "flag",
		},
		vendors: []string{"/vendor/"},
	},
	"python": {
		stdlib: []string{
			"os", "sys", "re", "json", "math", "time", "datetime",
			"collections", "itertools", "functools", "typing", "abc",
			"asyncio", "threading", "multiprocessing", "subprocess",
			"pathlib", "logging", "unittest", "io", "string", "random",
			"hashlib", "base64", "socket", "http", "urllib", "argparse",
			"dataclasses", "enum", "contextlib",
		},
		vendors: []string{"/site-packages/", "/.venv/", "/venv/"},
	},
	"typescript": {
		stdlib: []string{
			"fs", "path", "os", "util", "events", "stream", "http",
			"https", "crypto", "child_process", "assert", "url",
			"querystring", "readline", "zlib", "buffer", "process",
		},
		vendors: []string{"/node_modules/"},
	},
	"javascript": {
		stdlib: []string{
			"fs", "path", "os", "util", "events", "stream", "http",
			"https", "crypto", "child_process", "assert", "url",
			"querystring", "readline", "zlib", "buffer", "process",
		},
		vendors: []string{"/node_modules/"},
	},
	"java": {
		stdlib: []string{
			"java.lang", "java.util", "java.io", "java.nio", "java.net",
			"java.time", "java.math", "java.text", "java.util.concurrent",
			"java.util.stream", "java.util.function", "java.sql",
		},
		vendors: []string{"/target/", "/.m2/"},
	},
	"csharp": {
		stdlib: []string{
			"System", "System.Linq", "System.Collections.Generic",
			"System.Text", "System.IO", "System.Net", "System.Threading",
			"System.Threading.Tasks", "System.Text.Json", "System.Reflection",
		},
		vendors: []string{"/bin/", "/obj/", "/packages/"},
	},
	"php": {
		stdlib: []string{
			"DateTime", "Exception", "ArrayObject", "PDO", "Closure",
			"Iterator", "Countable", "JsonSerializable", "SplStack",
		},
		vendors: []string{"/vendor/"},
	},
}
