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

// Package parser defines the backend contract every language parser
// implements (C2) and the registry that maps a file to the best
// available backend for it (C1).
package parser

import (
	"github.com/felix-ide/felix/pkg/felix/types"
)

// Options carries per-call parse tuning; backends may ignore fields
// they have no use for.
type Options struct {
	MaxCodeTextBytes int64
	IncludeCodeText  bool
}

// Backend is the contract every parser implements (spec.md §4.2). The
// same (bytes, path, options) triple must always yield the same IDs
// and edge set (contract guarantee a).
type Backend struct {
	// Name identifies the backend for capability-block provenance, e.g.
	// "tree-sitter", "ast", "detectors-only".
	Name string
	// Tier is the capability tier this backend declares for every
	// ParseResult it emits (never promoted beyond, per the resolved
	// Open Question on semantic vs. structural promotion).
	Tier types.ParsingLevel
	// Priority breaks ties between backends that both claim a
	// language; higher wins. Detection falls back to alphabetical
	// Name when priorities tie.
	Priority int

	ParseContent func(content []byte, path string, opts Options) (types.ParseResult, error)
	SupportedExtensions func() []string
	CanParseFile func(path string) bool
	ValidateSyntax func(content []byte) []types.Diagnostic
	DetectBoundaries func(content []byte, path string) []types.Boundary
}

// ParseFile reads path and delegates to ParseContent.
func (b Backend) ParseFile(read func(string) ([]byte, error), path string, opts Options) (types.ParseResult, error) {
	content, err := read(path)
	if err != nil {
		return types.ParseResult{}, err
	}
	return b.ParseContent(content, path, opts)
}
