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

// Package treesitter implements the semantic and structural parser
// backends (C2) for Go, TypeScript/TSX, Python, Java, C#, and PHP,
// built on github.com/smacker/go-tree-sitter.
package treesitter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// languageSpec describes one language's grammar and the node-type
// vocabulary walkTree needs to recognize declarations, imports, and
// calls. Each supported language supplies one of these; the walker
// itself is shared, mirroring the teacher's per-language parser_*.go
// files but generalized into data instead of duplicated control flow.
type languageSpec struct {
	name     string
	grammar  *sitter.Language
	backend  string
	tier     types.ParsingLevel

	// declKinds maps a tree-sitter node type to the ComponentKind it
	// introduces, e.g. "function_declaration" -> KindFunction.
	declKinds map[string]types.ComponentKind
	// nameField is the field name holding the declared identifier,
	// usually "name".
	nameField     string
	receiverField string // non-empty for languages with Go-style method receivers
	importKinds   map[string]bool
	callKind      string
	callFuncField string
}

// Parse runs a languageSpec's grammar over content and extracts
// components, relationships, and capability metadata (spec.md §4.2).
// Output is pure in (content, path, opts): the same bytes at the same
// path always yield the same IDs, matching contract guarantee (a).
func Parse(spec languageSpec, content []byte, path string, opts parser.Options) (types.ParseResult, error) {
	p := sitter.NewParser()
	p.SetLanguage(spec.grammar)
	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return types.ParseResult{}, fmt.Errorf("treesitter: parse %s: %w", path, err)
	}
	defer tree.Close()

	cap := types.CapabilityBlock{
		ParsingLevel: spec.tier,
		Backend:      spec.backend,
		Capabilities: types.Capabilities{Symbols: true, Relationships: true, Ranges: true},
	}

	fileID := types.FileComponentID(path)
	result := types.ParseResult{FilePath: path, Language: spec.name, Capability: cap}
	result.Components = append(result.Components, types.Component{
		ID: fileID, Name: path, Kind: types.KindFile, Language: spec.name,
		FilePath: path, Capability: cap,
	})

	root := tree.RootNode()
	if root.HasError() {
		result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
			Severity: "warning",
			Message:  "syntax errors present; tree-sitter recovered and parsing continued",
			Location: types.Location{StartLine: 1, EndLine: 1},
		})
	}

	w := &walker{spec: spec, content: content, path: path, cap: cap, fileID: fileID, nameToID: make(map[string]string)}
	w.walk(root, fileID)
	w.resolveCalls()

	result.Components = append(result.Components, w.components...)
	result.Relationships = append(result.Relationships, w.relationships...)
	return result, nil
}

// walker accumulates components/relationships across one tree walk,
// mirroring the teacher's two-pass (declare, then resolve calls by
// name) shape from parseGoAST/walkGoAST.
type walker struct {
	spec    languageSpec
	content []byte
	path    string
	cap     types.CapabilityBlock
	fileID  string

	components    []types.Component
	relationships []types.Relationship

	nameToID    map[string]string // simple name -> component ID, for local call resolution
	pendingCall []pendingCall
}

type pendingCall struct {
	sourceID string
	name     string
	loc      types.Location
}

func (w *walker) walk(node *sitter.Node, parentID string) {
	if node == nil {
		return
	}
	nodeType := node.Type()

	if kind, ok := w.spec.declKinds[nodeType]; ok {
		comp := w.extractDecl(node, kind, parentID)
		if comp != nil {
			w.components = append(w.components, *comp)
			w.relationships = append(w.relationships, w.containsEdge(parentID, comp.ID))
			w.nameToID[comp.Name] = comp.ID
			parentID = comp.ID
		}
	}

	if w.spec.importKinds[nodeType] {
		w.extractImport(node, parentID)
	}

	if nodeType == w.spec.callKind {
		w.extractCall(node, parentID)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), parentID)
	}
}

func (w *walker) extractDecl(node *sitter.Node, kind types.ComponentKind, parentID string) *types.Component {
	nameNode := node.ChildByFieldName(w.spec.nameField)
	if nameNode == nil {
		return nil
	}
	name := nodeText(w.content, nameNode)
	if w.spec.receiverField != "" {
		if recv := node.ChildByFieldName(w.spec.receiverField); recv != nil {
			name = receiverTypeName(w.content, recv) + "." + name
			kind = types.KindMethod
		}
	}
	loc := nodeLocation(node)
	id := types.ComponentID(w.path, name, kind, loc.StartLine)
	return &types.Component{
		ID: id, Name: name, Kind: kind, Language: w.spec.name,
		FilePath: w.path, Location: loc, ParentID: parentID,
		CodeText: nodeText(w.content, node), Capability: w.cap,
	}
}

func (w *walker) extractImport(node *sitter.Node, parentID string) {
	spec := nodeText(w.content, node)
	loc := nodeLocation(node)
	targetID := types.ResolvePrefix + spec
	rel := types.Relationship{
		ID:       types.RelationshipID(parentID, targetID, types.RelImports, fmt.Sprintf("%d", loc.StartLine)),
		SourceID: parentID, TargetID: targetID, Kind: types.RelImports,
		Location: &loc,
		Metadata: types.RelationshipMetadata{Confidence: 0.9, NeedsResolution: true},
		Capability: w.cap,
	}
	w.relationships = append(w.relationships, rel)
}

func (w *walker) extractCall(node *sitter.Node, sourceID string) {
	fnNode := node.ChildByFieldName(w.spec.callFuncField)
	if fnNode == nil {
		return
	}
	name := lastIdentifier(nodeText(w.content, fnNode))
	if name == "" {
		return
	}
	w.pendingCall = append(w.pendingCall, pendingCall{sourceID: sourceID, name: name, loc: nodeLocation(node)})
}

// resolveCalls turns buffered call sites into edges once every
// declaration in the file has been seen, resolving same-file targets
// by simple name and leaving the rest as RESOLVE: placeholders for C5
// (mirrors the teacher's funcNameToID local resolution pass).
func (w *walker) resolveCalls() {
	for _, pc := range w.pendingCall {
		targetID, ok := w.nameToID[pc.name]
		confidence := 0.85
		if !ok {
			targetID = types.ResolvePrefix + pc.name
			confidence = 0.6
		}
		loc := pc.loc
		w.relationships = append(w.relationships, types.Relationship{
			ID:       types.RelationshipID(pc.sourceID, targetID, types.RelCalls, fmt.Sprintf("%d", loc.StartLine)),
			SourceID: pc.sourceID, TargetID: targetID, Kind: types.RelCalls,
			Location: &loc,
			Metadata: types.RelationshipMetadata{Confidence: confidence, NeedsResolution: !ok},
			Capability: w.cap,
		})
	}
}

func (w *walker) containsEdge(parentID, childID string) types.Relationship {
	return types.Relationship{
		ID:       types.RelationshipID(parentID, childID, types.RelContains, "0"),
		SourceID: parentID, TargetID: childID, Kind: types.RelContains,
		Metadata: types.RelationshipMetadata{Confidence: 1.0},
		Capability: w.cap,
	}
}

// extMatcher returns a parser.Backend.CanParseFile closure that
// accepts any of the given extensions, case-insensitively.
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

func nodeText(content []byte, n *sitter.Node) string {
	return string(content[n.StartByte():n.EndByte()])
}

func nodeLocation(n *sitter.Node) types.Location {
	start, end := n.StartPoint(), n.EndPoint()
	return types.Location{
		StartLine: int(start.Row) + 1, StartCol: int(start.Column) + 1,
		EndLine: int(end.Row) + 1, EndCol: int(end.Column) + 1,
	}
}

func receiverTypeName(content []byte, receiver *sitter.Node) string {
	text := nodeText(content, receiver)
	return lastIdentifier(text)
}

// lastIdentifier extracts the trailing identifier-like token from an
// expression fragment, e.g. "(s *Server)" -> "Server", "pkg.Foo" ->
// "Foo", stripping pointer/selector/call-paren noise.
func lastIdentifier(text string) string {
	start := len(text)
	for start > 0 {
		c := text[start-1]
		if c == ')' || c == ' ' {
			start--
			continue
		}
		break
	}
	end := start
	for end > 0 {
		c := text[end-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			end--
			continue
		}
		break
	}
	if end >= start {
		return ""
	}
	return text[end:start]
}
