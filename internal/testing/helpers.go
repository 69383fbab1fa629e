// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/felix-ide/felix/pkg/felix/cozo"
	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

func itoa(n int) string { return strconv.Itoa(n) }

// SetupTestStore creates an in-memory Felix graph store for testing.
// The store is automatically closed when the test finishes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    s := testing.SetupTestStore(t)
//
//	    testing.InsertTestComponent(t, s, "func1", "TestFunc", types.KindFunction, "test.go", 10, 20)
//	}
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(store.Config{Engine: "mem", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// InsertTestComponent adds one component row directly via :put,
// independent of any other component sharing its file path. Unlike
// Store.UpsertFile (which atomically replaces everything belonging to
// a fileID), this helper never retracts existing rows, so tests can
// seed several components onto the same file one call at a time.
func InsertTestComponent(t *testing.T, s *store.Store, id, name string, kind types.ComponentKind, filePath string, startLine, endLine int) {
	t.Helper()
	InsertTestComponentWithCode(t, s, id, name, kind, "", filePath, startLine, endLine)
}

// InsertTestComponentWithCode is like InsertTestComponent but attaches
// the component's source text.
func InsertTestComponentWithCode(t *testing.T, s *store.Store, id, name string, kind types.ComponentKind, code, filePath string, startLine, endLine int) {
	t.Helper()

	script := `?[id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json] <- [[` +
		quoteForTest(id) + `, ` + quoteForTest(name) + `, ` + quoteForTest(string(kind)) + `, "go", ` + quoteForTest(filePath) +
		`, "", ` + itoa(startLine) + `, 0, ` + itoa(endLine) + `, 0, "basic", "", "{}"]]
:put felix_component {id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json}`
	if err := s.Execute(context.Background(), script); err != nil {
		t.Fatalf("failed to insert test component: %v", err)
	}

	if code != "" {
		codeScript := `?[id, code_text] <- [[` + quoteForTest(id) + `, ` + quoteForTest(code) + `]]
:put felix_component_code {id, code_text}`
		if err := s.Execute(context.Background(), codeScript); err != nil {
			t.Fatalf("failed to insert test component code: %v", err)
		}
	}
}

// InsertTestRelationship adds one relationship row directly via :put,
// independent of Store.UpsertFile's per-file retraction semantics.
func InsertTestRelationship(t *testing.T, s *store.Store, id, sourceID, targetID string, kind types.RelationshipKind) {
	t.Helper()

	script := `?[id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json] <- [[` +
		quoteForTest(id) + `, ` + quoteForTest(sourceID) + `, ` + quoteForTest(targetID) + `, ` + quoteForTest(string(kind)) +
		`, 0, 0, 1.0, 1.0, false, false, false, "basic", "", "{}"]]
:put felix_relationship {id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json}`
	if err := s.Execute(context.Background(), script); err != nil {
		t.Fatalf("failed to insert test relationship: %v", err)
	}
}

// QueryComponents is a helper to query every component from the store.
// Returns rows with [id, name, kind] columns.
func QueryComponents(t *testing.T, s *store.Store) cozo.NamedRows {
	t.Helper()

	rows, err := s.Query(context.Background(), "?[id, name, kind] := *felix_component { id, name, kind }")
	if err != nil {
		t.Fatalf("failed to query components: %v", err)
	}
	return rows
}

// QueryComponentsByFile is a helper to query the components belonging
// to one file path.
func QueryComponentsByFile(t *testing.T, s *store.Store, filePath string) cozo.NamedRows {
	t.Helper()

	rows, err := s.Query(context.Background(), `?[id, name, kind] := *felix_component { id, name, kind, file_path }, file_path = `+quoteForTest(filePath))
	if err != nil {
		t.Fatalf("failed to query components by file: %v", err)
	}
	return rows
}

// QueryRelationships is a helper to query every relationship from the
// store. Returns rows with [id, source_id, target_id, kind] columns.
func QueryRelationships(t *testing.T, s *store.Store) cozo.NamedRows {
	t.Helper()

	rows, err := s.Query(context.Background(), "?[id, source_id, target_id, kind] := *felix_relationship { id, source_id, target_id, kind }")
	if err != nil {
		t.Fatalf("failed to query relationships: %v", err)
	}
	return rows
}

func quoteForTest(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
