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

package basic

import (
	"bytes"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// TextBackend produces a bare file component for plain text — the
// degenerate case of the basic tier with no sub-structure to extract.
func TextBackend() parser.Backend {
	return parser.Backend{
		Name: "detectors-only", Tier: types.LevelBasic, Priority: 1,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			lineCount := bytes.Count(content, []byte("\n")) + 1
			fileID := types.FileComponentID(path)
			return types.ParseResult{
				FilePath: path, Language: "text", Capability: basicCapability,
				Components: []types.Component{{
					ID: fileID, Name: path, Kind: types.KindFile, Language: "text",
					FilePath: path, Location: types.Location{StartLine: 1, EndLine: lineCount},
					Capability: basicCapability,
				}},
			}, nil
		},
		SupportedExtensions: func() []string { return []string{".txt"} },
		CanParseFile:        extMatcher(".txt"),
	}
}
