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

package segment

import (
	"fmt"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// Delegate re-submits each block to the registry for detection,
// merging the delegated results into a single ParseResult whose own
// top-level capability block stays backend=detectors-only,
// parsingLevel=basic — the segmenter's contribution is never promoted
// regardless of what an inner parser achieves on a block (resolved
// Open Question, SPEC_FULL.md §E).
func Delegate(reg *parser.Registry, content []byte, path string) types.ParseResult {
	ownCap := types.CapabilityBlock{ParsingLevel: types.LevelBasic, Backend: "detectors-only"}
	result := types.ParseResult{FilePath: path, Capability: ownCap}

	for _, block := range Split(content) {
		backend, detection := reg.Resolve(path, []byte(block.Text), "")
		if detection.Language == "" {
			continue
		}
		sub, err := backend.ParseContent([]byte(block.Text), path, parser.Options{})
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("segment block %d-%d: %v", block.StartLine, block.EndLine, err),
				Location: types.Location{StartLine: block.StartLine, EndLine: block.EndLine},
			})
			continue
		}
		offsetComponents(sub.Components, block.StartLine-1)
		offsetRelationships(sub.Relationships, block.StartLine-1)
		result.Merge(sub)
	}
	return result
}

func offsetComponents(cs []types.Component, lineOffset int) {
	for i := range cs {
		if cs[i].IsFile() {
			continue
		}
		cs[i].Location.StartLine += lineOffset
		cs[i].Location.EndLine += lineOffset
	}
}

func offsetRelationships(rs []types.Relationship, lineOffset int) {
	for i := range rs {
		if rs[i].Location == nil {
			continue
		}
		rs[i].Location.StartLine += lineOffset
		rs[i].Location.EndLine += lineOffset
	}
}
