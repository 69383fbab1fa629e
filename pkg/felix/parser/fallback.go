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

package parser

import (
	"bytes"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// DetectorsOnlyBackend is the pseudo-parser returned when no registered
// backend claims a file (spec.md §4.1 "Failure mode: ... return a
// detectors-only pseudo-parser that still produces a file component
// and a coarse outline"). It never claims an extension so it is only
// ever reached through Registry.Resolve's fallback path.
func DetectorsOnlyBackend() Backend {
	return Backend{
		Name:     "detectors-only",
		Tier:     types.LevelBasic,
		Priority: 0,
		ParseContent: func(content []byte, path string, opts Options) (types.ParseResult, error) {
			return parseDetectorsOnly(content, path)
		},
		SupportedExtensions: func() []string { return nil },
		CanParseFile:        func(string) bool { return false },
		ValidateSyntax:      func([]byte) []types.Diagnostic { return nil },
		DetectBoundaries:    func([]byte, string) []types.Boundary { return nil },
	}
}

func parseDetectorsOnly(content []byte, path string) (types.ParseResult, error) {
	lineCount := bytes.Count(content, []byte("\n")) + 1
	cap := types.CapabilityBlock{
		ParsingLevel: types.LevelBasic,
		Backend:      "detectors-only",
	}
	fileID := types.FileComponentID(path)
	file := types.Component{
		ID:         fileID,
		Name:       path,
		Kind:       types.KindFile,
		Language:   "unknown",
		FilePath:   path,
		Location:   types.Location{StartLine: 1, EndLine: lineCount},
		Capability: cap,
	}
	return types.ParseResult{
		FilePath:   path,
		Language:   "unknown",
		Components: []types.Component{file},
		Capability: cap,
	}, nil
}
