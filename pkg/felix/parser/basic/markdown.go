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

// Package basic implements the detectors-only parser backends for
// formats with no AST library in the corpus: Markdown, HTML, and plain
// text (spec.md §4.2 "basic" tier, confidence <= 0.5), plus protobuf
// IDL, whose backend declares the structural tier.
package basic

import (
	"strings"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// MarkdownBackend extracts heading outline sections by line-prefix
// scanning — no AST, matching the basic tier's "detectors only" charter.
func MarkdownBackend() parser.Backend {
	return parser.Backend{
		Name: "detectors-only", Tier: types.LevelBasic, Priority: 5,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			return parseHeadingOutline(content, path, "markdown", isMarkdownHeading, markdownHeadingText)
		},
		SupportedExtensions: func() []string { return []string{".md", ".markdown"} },
		CanParseFile:        extMatcher(".md", ".markdown"),
	}
}

func isMarkdownHeading(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#")
}

func markdownHeadingText(trimmed string) string {
	return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
}
