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

package ingest

import (
	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/parser/basic"
	"github.com/felix-ide/felix/pkg/felix/parser/treesitter"
)

// DefaultRegistry builds a parser.Registry with every backend this
// module ships, registered under the language keys detect.go resolves
// to. It lives here rather than in package parser because registering
// the tree-sitter and basic backends would otherwise cycle back
// through package parser itself.
func DefaultRegistry() *parser.Registry {
	reg := parser.NewRegistry()

	reg.Register("go", treesitter.GoBackend())
	reg.Register("python", treesitter.PythonBackend())
	reg.Register("java", treesitter.JavaBackend())
	reg.Register("csharp", treesitter.CSharpBackend())
	reg.Register("php", treesitter.PHPBackend())
	reg.Register("typescript", treesitter.TypeScriptBackend())

	reg.Register("html", basic.HTMLBackend())
	reg.Register("markdown", basic.MarkdownBackend())
	reg.Register("protobuf", basic.ProtobufBackend())
	reg.Register("text", basic.TextBackend())

	return reg
}
