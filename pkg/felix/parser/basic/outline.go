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
	"strings"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// basicCapability is shared by every backend in this package: the
// segmenter's own contribution is never promoted past it either
// (resolved Open Question, SPEC_FULL.md §E).
var basicCapability = types.CapabilityBlock{
	ParsingLevel: types.LevelBasic,
	Backend:      "detectors-only",
	Capabilities: types.Capabilities{Symbols: true},
}

// extMatcher returns a CanParseFile closure accepting any of exts.
func extMatcher(exts ...string) func(string) bool {
	return func(path string) bool {
		for _, ext := range exts {
			if len(path) >= len(ext) && strings.EqualFold(path[len(path)-len(ext):], ext) {
				return true
			}
		}
		return false
	}
}

// parseHeadingOutline builds a file component plus one KindDocSection
// per line isHeading accepts, text extracted by headingText. Shared by
// the Markdown and HTML backends, mirroring the teacher's protobuf
// parser's line-scan-and-accumulate shape.
func parseHeadingOutline(content []byte, path, language string, isHeading func(string) bool, headingText func(string) string) (types.ParseResult, error) {
	fileID := types.FileComponentID(path)
	result := types.ParseResult{
		FilePath: path, Language: language, Capability: basicCapability,
		Components: []types.Component{{
			ID: fileID, Name: path, Kind: types.KindFile, Language: language,
			FilePath: path, Capability: basicCapability,
		}},
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !isHeading(trimmed) {
			continue
		}
		text := headingText(trimmed)
		if text == "" {
			continue
		}
		lineNo := i + 1
		id := types.ComponentID(path, text, types.KindDocSection, lineNo)
		result.Components = append(result.Components, types.Component{
			ID: id, Name: text, Kind: types.KindDocSection, Language: language,
			FilePath: path, ParentID: fileID,
			Location:   types.Location{StartLine: lineNo, EndLine: lineNo},
			Capability: basicCapability,
		})
		result.Relationships = append(result.Relationships, types.Relationship{
			ID:       types.RelationshipID(fileID, id, types.RelContains, "0"),
			SourceID: fileID, TargetID: id, Kind: types.RelContains,
			Metadata:   types.RelationshipMetadata{Confidence: 0.5},
			Capability: basicCapability,
		})
	}
	return result, nil
}
