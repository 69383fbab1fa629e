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

package treesitter

import (
	"github.com/smacker/go-tree-sitter/python"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

var pythonSpec = languageSpec{
	name:    "python",
	grammar: python.GetLanguage(),
	backend: "tree-sitter",
	tier:    types.LevelSemantic,
	declKinds: map[string]types.ComponentKind{
		"function_definition": types.KindFunction,
		"class_definition":    types.KindClass,
	},
	nameField:     "name",
	importKinds:   map[string]bool{"import_statement": true, "import_from_statement": true},
	callKind:      "call",
	callFuncField: "function",
}

// PythonBackend returns the semantic Python backend (spec.md §4.2).
func PythonBackend() parser.Backend {
	return parser.Backend{
		Name: "tree-sitter", Tier: types.LevelSemantic, Priority: 10,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			return Parse(pythonSpec, content, path, opts)
		},
		SupportedExtensions: func() []string { return []string{".py", ".pyi"} },
		CanParseFile:        extMatcher(".py", ".pyi"),
	}
}
