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

import "strings"

// tableDDL creates the component/relationship/embedding tables
// (spec.md §3 data model, generalized from the teacher's
// vertically-partitioned cie_function/cie_type schema into the
// closed component and relationship kind sets of pkg/felix/types).
var tableDDL = []string{
	`:create felix_component {
		id: String
		=>
		name: String,
		kind: String,
		language: String,
		file_path: String,
		parent_id: String default '',
		start_line: Int default 0,
		start_col: Int default 0,
		end_line: Int default 0,
		end_col: Int default 0,
		parsing_level: String default 'basic',
		backend: String default '',
		metadata_json: String default '{}'
	}`,
	`:create felix_component_code {
		id: String => code_text: String
	}`,
	`:create felix_relationship {
		id: String
		=>
		source_id: String,
		target_id: String,
		kind: String,
		start_line: Int default 0,
		end_line: Int default 0,
		confidence: Float default 0.0,
		strength: Float default 0.0,
		needs_resolution: Bool default false,
		is_external: Bool default false,
		is_junk: Bool default false,
		parsing_level: String default 'basic',
		backend: String default '',
		provenance_json: String default '{}'
	}`,
	`:create felix_embedding {
		entity_id: String,
		entity_kind: String
		=>
		model_version: String,
		content_hash: String,
		vector: <F32; 1536>
	}`,
	`:create felix_migration {
		id: String => applied_at: Int
	}`,
}

// indexDDL creates the secondary indexes spec.md §4.4 requires.
var indexDDL = []string{
	`::index create felix_component:by_file { file_path }`,
	`::index create felix_component:by_lang_kind { language, kind }`,
	`::index create felix_relationship:by_source { source_id }`,
	`::index create felix_relationship:by_target { target_id }`,
	`::index create felix_relationship:by_kind { kind }`,
	`::index create felix_relationship:by_source_strength { source_id, strength }`,
	`::index create felix_relationship:by_target_strength { target_id, strength }`,
}

// hnswDDL creates the vector index used by C6's k-NN search.
var hnswDDL = []string{
	`::hnsw create felix_embedding:hnsw_idx { dim: 1536, m: 16, ef_construction: 200, fields: [vector], distance: Cosine }`,
}

// EnsureSchema creates every table, index, and HNSW index if absent.
// Idempotent: CozoDB's "already exists" errors on repeat :create/
// ::index create calls are swallowed, matching the teacher's
// EnsureSchema/CreateHNSWIndex behavior.
func (s *Store) EnsureSchema() error {
	for _, ddl := range tableDDL {
		if _, err := s.db.Run(ddl, nil); err != nil && !isAlreadyExists(err) {
			return err
		}
	}
	for _, ddl := range indexDDL {
		if _, err := s.db.Run(ddl, nil); err != nil && !isAlreadyExists(err) {
			return err
		}
	}
	for _, ddl := range hnswDDL {
		if _, err := s.db.Run(ddl, nil); err != nil && !isAlreadyExists(err) {
			return err
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "already has")
}
