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
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

var typescriptSpec = languageSpec{
	name:    "typescript",
	grammar: typescript.GetLanguage(),
	backend: "tree-sitter",
	tier:    types.LevelSemantic,
	declKinds: map[string]types.ComponentKind{
		"function_declaration": types.KindFunction,
		"method_definition":    types.KindMethod,
		"class_declaration":    types.KindClass,
		"interface_declaration": types.KindInterface,
	},
	nameField:   "name",
	importKinds: map[string]bool{"import_statement": true},
	callKind:      "call_expression",
	callFuncField: "function",
}

var tsxSpec = func() languageSpec {
	s := typescriptSpec
	s.grammar = tsx.GetLanguage()
	return s
}()

// TypeScriptBackend returns the semantic TS/TSX backend (spec.md §4.2
// lists TS/JS among the AST-based semantic-tier languages).
func TypeScriptBackend() parser.Backend {
	return parser.Backend{
		Name: "tree-sitter", Tier: types.LevelSemantic, Priority: 10,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			spec := typescriptSpec
			if extMatcher(".tsx")(path) {
				spec = tsxSpec
			}
			return Parse(spec, content, path, opts)
		},
		SupportedExtensions: func() []string { return []string{".ts", ".tsx"} },
		CanParseFile:        extMatcher(".ts", ".tsx"),
	}
}
