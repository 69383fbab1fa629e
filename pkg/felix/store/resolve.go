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
	"context"
	"fmt"
	"strings"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// Unresolved streams every relationship with needs_resolution=true,
// the resolver's (C5) input queue (spec.md §4.4, §4.5 input class 1).
func (s *Store) Unresolved(ctx context.Context) ([]types.Relationship, error) {
	script := `
?[id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json] :=
	*felix_relationship{id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json},
	needs_resolution = true
`
	rows, err := s.Query(ctx, script)
	if err != nil {
		return nil, err
	}
	out := make([]types.Relationship, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		r, err := relationshipFromRow(row)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ResolutionPatch is one resolver decision to apply (spec.md §4.4
// applyResolutionPatch).
type ResolutionPatch struct {
	ID                string
	ResolvedTargetID  string
	ResolvedSourceID  string
	IsExternal        bool
	IsJunk            bool
	LastAttemptReason string
}

// ApplyResolutionPatch applies every patch in a single transaction
// (spec.md §4.4 "single transaction"). Only the fields present on each
// patch are overwritten; relationships not mentioned are untouched.
func (s *Store) ApplyResolutionPatch(ctx context.Context, patches []ResolutionPatch) error {
	if len(patches) == 0 {
		return nil
	}

	rels := make(map[string]types.Relationship, len(patches))
	for _, p := range patches {
		script := fmt.Sprintf(`
?[id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json] :=
	*felix_relationship{id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json},
	id = %s
`, quote(p.ID))
		rows, err := s.Query(ctx, script)
		if err != nil {
			return fmt.Errorf("store: applyResolutionPatch: load %s: %w", p.ID, err)
		}
		if len(rows.Rows) == 0 {
			continue
		}
		r, err := relationshipFromRow(rows.Rows[0])
		if err != nil {
			return err
		}
		rels[p.ID] = r
	}

	var b strings.Builder
	for _, p := range patches {
		r, ok := rels[p.ID]
		if !ok {
			continue
		}
		if p.ResolvedTargetID != "" {
			r.TargetID = p.ResolvedTargetID
		}
		if p.ResolvedSourceID != "" {
			r.SourceID = p.ResolvedSourceID
		}
		r.Metadata.IsExternal = p.IsExternal
		r.Metadata.IsJunk = p.IsJunk
		r.Metadata.LastAttemptReason = p.LastAttemptReason
		if p.ResolvedTargetID != "" || p.IsExternal || p.IsJunk {
			r.Metadata.NeedsResolution = false
		}

		row, err := relationshipRow(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "?[id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json] <- [%s]\n:put felix_relationship {id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json}\n\n", row)
	}
	if b.Len() == 0 {
		return nil
	}
	return s.Execute(ctx, b.String())
}
