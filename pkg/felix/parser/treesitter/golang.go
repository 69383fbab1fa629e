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
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

var goSpec = languageSpec{
	name:    "go",
	grammar: golang.GetLanguage(),
	backend: "tree-sitter",
	tier:    types.LevelStructural,
	declKinds: map[string]types.ComponentKind{
		"function_declaration": types.KindFunction,
		"method_declaration":   types.KindFunction, // promoted to KindMethod when a receiver is present
		"type_spec":            types.KindStruct,
	},
	nameField:     "name",
	receiverField: "receiver",
	importKinds:   map[string]bool{"import_spec": true},
	callKind:      "call_expression",
	callFuncField: "function",
}

// GoBackend returns the tree-sitter Go backend (spec.md §4.2 Structural
// tier; Go's own compiler AST would be semantic, but this engine uses
// tree-sitter uniformly, as the teacher's TreeSitterParser does).
func GoBackend() parser.Backend {
	return parser.Backend{
		Name: "tree-sitter", Tier: types.LevelStructural, Priority: 10,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			return Parse(goSpec, content, path, opts)
		},
		SupportedExtensions: func() []string { return []string{".go"} },
		CanParseFile:        extMatcher(".go"),
	}
}
