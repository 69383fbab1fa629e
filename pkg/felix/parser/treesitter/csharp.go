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
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

var csharpSpec = languageSpec{
	name:    "csharp",
	grammar: csharp.GetLanguage(),
	backend: "tree-sitter",
	tier:    types.LevelSemantic,
	declKinds: map[string]types.ComponentKind{
		"method_declaration":    types.KindMethod,
		"class_declaration":     types.KindClass,
		"interface_declaration": types.KindInterface,
		"struct_declaration":    types.KindStruct,
	},
	nameField:     "name",
	importKinds:   map[string]bool{"using_directive": true},
	callKind:      "invocation_expression",
	callFuncField: "function",
}

// CSharpBackend returns the semantic C# backend (spec.md §4.2).
func CSharpBackend() parser.Backend {
	return parser.Backend{
		Name: "tree-sitter", Tier: types.LevelSemantic, Priority: 10,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			return Parse(csharpSpec, content, path, opts)
		},
		SupportedExtensions: func() []string { return []string{".cs"} },
		CanParseFile:        extMatcher(".cs"),
	}
}
