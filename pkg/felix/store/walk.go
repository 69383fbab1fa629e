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

	"github.com/felix-ide/felix/pkg/felix/types"
)

// Direction selects which end of an edge to traverse from.
type Direction string

const (
	DirIn   Direction = "in"
	DirOut  Direction = "out"
	DirBoth Direction = "both"
)

// Neighbors returns the relationships touching id in the given
// direction, optionally filtered to kinds, capped at limit (0 = no
// cap).
func (s *Store) Neighbors(ctx context.Context, id string, dir Direction, kinds []types.RelationshipKind, limit int) ([]types.Relationship, error) {
	var rels []types.Relationship

	if dir == DirOut || dir == DirBoth {
		out, err := s.relationshipsBy(ctx, "source_id", id)
		if err != nil {
			return nil, err
		}
		rels = append(rels, out...)
	}
	if dir == DirIn || dir == DirBoth {
		in, err := s.relationshipsBy(ctx, "target_id", id)
		if err != nil {
			return nil, err
		}
		rels = append(rels, in...)
	}

	if len(kinds) > 0 {
		kindSet := make(map[types.RelationshipKind]bool, len(kinds))
		for _, k := range kinds {
			kindSet[k] = true
		}
		filtered := rels[:0]
		for _, r := range rels {
			if kindSet[r.Kind] {
				filtered = append(filtered, r)
			}
		}
		rels = filtered
	}
	if limit > 0 && len(rels) > limit {
		rels = rels[:limit]
	}
	return rels, nil
}

func (s *Store) relationshipsBy(ctx context.Context, column, value string) ([]types.Relationship, error) {
	script := fmt.Sprintf(`
?[id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json] :=
	*felix_relationship{id, source_id, target_id, kind, start_line, end_line, confidence, strength, needs_resolution, is_external, is_junk, parsing_level, backend, provenance_json},
	%s = %s
`, column, quote(value))
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

// WalkOptions bounds a Walk call.
type WalkOptions struct {
	Depth     int
	Direction Direction
	Kinds     []types.RelationshipKind
}

// WalkResult is the node map plus detected back-edges from a Walk
// (spec.md §4.4 "a node map plus detected cycles").
type WalkResult struct {
	Nodes  map[string]types.Component
	Edges  []types.Relationship
	Cycles [][]string // each cycle is the back-edge path, startId..repeatedId
}

// Walk performs a cycle-safe breadth-first traversal from startID,
// never following a back-edge twice (spec.md §4.4, testable property
// "cycle soundness"). Cancellation is checked at each BFS-frontier
// boundary (spec.md §5).
func (s *Store) Walk(ctx context.Context, startID string, opts WalkOptions) (WalkResult, error) {
	result := WalkResult{Nodes: make(map[string]types.Component)}

	type frontierItem struct {
		id   string
		path []string
	}
	visited := map[string]bool{startID: true}
	frontier := []frontierItem{{id: startID, path: []string{startID}}}

	depth := opts.Depth
	if depth <= 0 {
		depth = 1
	}

	for level := 0; level < depth && len(frontier) > 0; level++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var next []frontierItem
		for _, item := range frontier {
			if c, ok, err := s.GetComponent(ctx, item.id); err == nil && ok {
				result.Nodes[item.id] = c
			}

			neighbors, err := s.Neighbors(ctx, item.id, opts.Direction, opts.Kinds, 0)
			if err != nil {
				return result, err
			}
			for _, rel := range neighbors {
				result.Edges = append(result.Edges, rel)
				other := rel.TargetID
				if other == item.id {
					other = rel.SourceID
				}
				if visited[other] {
					result.Cycles = append(result.Cycles, append(append([]string{}, item.path...), other))
					continue
				}
				visited[other] = true
				next = append(next, frontierItem{id: other, path: append(append([]string{}, item.path...), other)})
			}
		}
		frontier = next
	}

	// Nodes reached on the last hop are part of the result too.
	for _, item := range frontier {
		if c, ok, err := s.GetComponent(ctx, item.id); err == nil && ok {
			result.Nodes[item.id] = c
		}
	}

	return result, nil
}
