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

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// ProtobufBackend extracts services and RPCs from .proto files by
// brace-counting line scan, no IDL grammar library — no example repo
// parses .proto source text with a third-party parser (SPEC_FULL.md
// §C), so this stays on the standard library like the teacher's own
// "simplified, no tree-sitter" protobuf parser.
func ProtobufBackend() parser.Backend {
	return parser.Backend{
		Name: "detectors-only", Tier: types.LevelStructural, Priority: 5,
		ParseContent: func(content []byte, path string, opts parser.Options) (types.ParseResult, error) {
			return parseProtobuf(content, path)
		},
		SupportedExtensions: func() []string { return []string{".proto"} },
		CanParseFile:        extMatcher(".proto"),
	}
}

var protoCapability = types.CapabilityBlock{
	ParsingLevel: types.LevelStructural,
	Backend:      "detectors-only",
	Capabilities: types.Capabilities{Symbols: true, Ranges: true},
}

func parseProtobuf(content []byte, path string) (types.ParseResult, error) {
	fileID := types.FileComponentID(path)
	result := types.ParseResult{
		FilePath: path, Language: "protobuf", Capability: protoCapability,
		Components: []types.Component{{
			ID: fileID, Name: path, Kind: types.KindFile, Language: "protobuf",
			FilePath: path, Capability: protoCapability,
		}},
	}

	lines := strings.Split(string(content), "\n")
	var currentService string
	var serviceID string
	var serviceStart int
	braceDepth := 0

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
			continue
		}

		if currentService == "" && strings.HasPrefix(trimmed, "service ") && strings.Contains(trimmed, "{") {
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				continue
			}
			currentService = strings.TrimSuffix(fields[1], "{")
			serviceStart = lineNo
			serviceID = types.ComponentID(path, currentService, types.KindClass, lineNo)
			braceDepth = strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
			if braceDepth == 0 {
				result.Components = append(result.Components, serviceComponent(path, currentService, serviceID, fileID, serviceStart, lineNo))
				result.Relationships = append(result.Relationships, containsEdge(fileID, serviceID))
				currentService = ""
			}
			continue
		}

		if currentService != "" {
			braceDepth += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
			if strings.HasPrefix(trimmed, "rpc ") {
				if name, ok := rpcName(trimmed); ok {
					rpcID := types.ComponentID(path, currentService+"."+name, types.KindMethod, lineNo)
					result.Components = append(result.Components, types.Component{
						ID: rpcID, Name: currentService + "." + name, Kind: types.KindMethod,
						Language: "protobuf", FilePath: path, ParentID: serviceID,
						Location: types.Location{StartLine: lineNo, EndLine: lineNo},
						CodeText: trimmed, Capability: protoCapability,
					})
					result.Relationships = append(result.Relationships, containsEdge(serviceID, rpcID))
				}
			}
			if braceDepth <= 0 {
				result.Components = append(result.Components, serviceComponent(path, currentService, serviceID, fileID, serviceStart, lineNo))
				result.Relationships = append(result.Relationships, containsEdge(fileID, serviceID))
				currentService = ""
			}
		}
	}
	return result, nil
}

func serviceComponent(path, name, id, parentID string, startLine, endLine int) types.Component {
	return types.Component{
		ID: id, Name: name, Kind: types.KindClass, Language: "protobuf",
		FilePath: path, ParentID: parentID,
		Location: types.Location{StartLine: startLine, EndLine: endLine},
		Capability: protoCapability,
	}
}

func containsEdge(sourceID, targetID string) types.Relationship {
	return types.Relationship{
		ID:       types.RelationshipID(sourceID, targetID, types.RelContains, "0"),
		SourceID: sourceID, TargetID: targetID, Kind: types.RelContains,
		Metadata:   types.RelationshipMetadata{Confidence: 1.0},
		Capability: protoCapability,
	}
}

// rpcName extracts the RPC method name from a trimmed "rpc Foo(...)..."
// line.
func rpcName(trimmed string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "rpc"))
	idx := strings.IndexByte(rest, '(')
	if idx <= 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:idx]), true
}
