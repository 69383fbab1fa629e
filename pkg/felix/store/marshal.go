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

package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// buildUpsertScript builds a single CozoScript transaction that
// retracts every existing component/relationship row whose
// file_path/source_id matches fileID and re-inserts the given sets, so
// the whole operation commits or fails as one unit (spec.md §4.4
// "Failure semantics: Any per-record failure inside a bulk write
// aborts the whole write").
func buildUpsertScript(fileID string, components []types.Component, relationships []types.Relationship) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "?[id] := *felix_component{id, file_path}, file_path = %s\n:rm felix_component {id}\n\n", quote(fileID))
	fmt.Fprintf(&b, "?[id] := *felix_relationship{id, source_id}, source_id = %s\n:rm felix_relationship {id}\n\n", quote(fileID))

	for _, c := range components {
		row, err := componentRow(c)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "?[id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json] <- [%s]\n:put felix_component {id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json}\n\n", row)
		if c.CodeText != "" {
			fmt.Fprintf(&b, "?[id, code_text] <- [[%s, %s]]\n:put felix_component_code {id, code_text}\n\n", quote(c.ID), quote(c.CodeText))
		}
	}

	for _, r := range relationships {
		row, err := relationshipRow(r)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "?[id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json] <- [%s]\n:put felix_relationship {id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json}\n\n", row)
	}

	return b.String(), nil
}

func componentRow(c types.Component) (string, error) {
	metaJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s, %s, %s, %s, %s, %s, %d, %d, %d, %d, %s, %s, %s]",
		quote(c.ID), quote(c.Name), quote(string(c.Kind)), quote(c.Language), quote(c.FilePath),
		quote(c.ParentID), c.Location.StartLine, c.Location.StartCol, c.Location.EndLine, c.Location.EndCol,
		quote(string(c.Capability.ParsingLevel)), quote(c.Capability.Backend), quote(string(metaJSON)),
	), nil
}

func relationshipRow(r types.Relationship) (string, error) {
	provJSON, err := json.Marshal(r.Metadata.Provenance)
	if err != nil {
		return "", err
	}
	startLine, endLine := 0, 0
	if r.Location != nil {
		startLine, endLine = r.Location.StartLine, r.Location.EndLine
	}
	return fmt.Sprintf("[%s, %s, %s, %s, %d, %d, %f, %f, %t, %t, %t, %s, %s, %s]",
		quote(r.ID), quote(r.SourceID), quote(r.TargetID), quote(string(r.Kind)),
		startLine, endLine, r.Metadata.Confidence, r.Metadata.Strength,
		r.Metadata.NeedsResolution, r.Metadata.IsExternal, r.Metadata.IsJunk,
		quote(string(r.Capability.ParsingLevel)), quote(r.Capability.Backend), quote(string(provJSON)),
	), nil
}

func componentFromRow(row []any) (types.Component, error) {
	get := func(i int) string { s, _ := row[i].(string); return s }
	getInt := func(i int) int {
		switch v := row[i].(type) {
		case float64:
			return int(v)
		case int:
			return v
		}
		return 0
	}

	var meta types.ComponentMetadata
	_ = json.Unmarshal([]byte(get(12)), &meta)

	return types.Component{
		ID: get(0), Name: get(1), Kind: types.ComponentKind(get(2)), Language: get(3),
		FilePath: get(4), ParentID: get(5),
		Location: types.Location{StartLine: getInt(6), StartCol: getInt(7), EndLine: getInt(8), EndCol: getInt(9)},
		Metadata: meta,
		Capability: types.CapabilityBlock{
			ParsingLevel: types.ParsingLevel(get(10)),
			Backend:      get(11),
		},
	}, nil
}

func relationshipFromRow(row []any) (types.Relationship, error) {
	get := func(i int) string { s, _ := row[i].(string); return s }
	getInt := func(i int) int {
		switch v := row[i].(type) {
		case float64:
			return int(v)
		}
		return 0
	}
	getFloat := func(i int) float64 {
		v, _ := row[i].(float64)
		return v
	}
	getBool := func(i int) bool {
		v, _ := row[i].(bool)
		return v
	}

	var prov types.Provenance
	_ = json.Unmarshal([]byte(get(13)), &prov)

	loc := types.Location{StartLine: getInt(4), EndLine: getInt(5)}
	var locPtr *types.Location
	if loc.StartLine != 0 || loc.EndLine != 0 {
		locPtr = &loc
	}

	return types.Relationship{
		ID: get(0), SourceID: get(1), TargetID: get(2), Kind: types.RelationshipKind(get(3)),
		Location: locPtr,
		Metadata: types.RelationshipMetadata{
			Confidence: getFloat(6), Strength: getFloat(7),
			NeedsResolution: getBool(8), IsExternal: getBool(9), IsJunk: getBool(10),
			Provenance: prov,
		},
		Capability: types.CapabilityBlock{ParsingLevel: types.ParsingLevel(get(11)), Backend: get(12)},
	}, nil
}
