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
	"strconv"
	"strings"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// embeddingDim must match the `dim:` hnswDDL declares in schema.go.
// Providers that emit a different width are padded/truncated by the
// caller (pkg/felix/embed) before storage.
const embeddingDim = 1536

// StoreEmbedding upserts one (entityId, entityKind) embedding row
// (spec.md §4.6 storage contract: "upserts on (entityId, kind)").
func (s *Store) StoreEmbedding(ctx context.Context, e types.Embedding) error {
	if len(e.Vector) != embeddingDim {
		return fmt.Errorf("store: embedding vector has %d dims, want %d", len(e.Vector), embeddingDim)
	}
	script := fmt.Sprintf(`
?[entity_id, entity_kind, model_version, content_hash, vector] <- [[%s, %s, %s, %s, %s]]
:put felix_embedding {entity_id, entity_kind => model_version, content_hash, vector}
`, quote(e.EntityID), quote(string(e.EntityKind)), quote(e.ModelVersion), quote(e.ContentHash), vectorLiteral(e.Vector))
	return s.Execute(ctx, script)
}

// GetEmbeddingContentHash returns the stored contentHash for
// (entityID, kind), and whether a row exists, letting a caller skip
// re-embedding unchanged content (spec.md §4.6 "unchanged content ⇒
// skip re-embed") without pulling the whole vector back.
func (s *Store) GetEmbeddingContentHash(ctx context.Context, entityID string, kind types.EntityKind) (string, bool, error) {
	script := fmt.Sprintf(`
?[content_hash] := *felix_embedding{entity_id, entity_kind, content_hash}, entity_id = %s, entity_kind = %s
`, quote(entityID), quote(string(kind)))
	rows, err := s.Query(ctx, script)
	if err != nil {
		return "", false, err
	}
	if len(rows.Rows) == 0 {
		return "", false, nil
	}
	hash, _ := rows.Rows[0][0].(string)
	return hash, true, nil
}

// GetEmbeddingsByKind returns every embedding row for kind. The
// underlying CozoDB binding here materializes rows eagerly rather than
// offering a cursor, so "streamingly" per spec.md §4.6 is satisfied at
// the call-site level (callers should page via their own kind/entity
// filters for very large result sets) rather than with a Go channel.
func (s *Store) GetEmbeddingsByKind(ctx context.Context, kind types.EntityKind) ([]types.Embedding, error) {
	script := fmt.Sprintf(`
?[entity_id, entity_kind, model_version, content_hash, vector] := *felix_embedding{entity_id, entity_kind, model_version, content_hash, vector}, entity_kind = %s
`, quote(string(kind)))
	rows, err := s.Query(ctx, script)
	if err != nil {
		return nil, err
	}
	out := make([]types.Embedding, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		e, err := embeddingFromRow(row)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// EmbeddingMatch is one k-NN result: the matched entity and its
// distance to the query vector (cosine distance over the normalized
// space the HNSW index was built with — lower is closer).
type EmbeddingMatch struct {
	EntityID   string
	EntityKind types.EntityKind
	Distance   float64
}

// NearestEmbeddings runs an HNSW approximate k-NN query against
// felix_embedding (spec.md §4.7 "vector resolve -> k-NN"), optionally
// restricted to a set of entity kinds. ef controls the index's search
// breadth; 0 uses a reasonable default (teacher's buildHNSWParams).
func (s *Store) NearestEmbeddings(ctx context.Context, query []float32, kinds []types.EntityKind, k int, ef int) ([]EmbeddingMatch, error) {
	if len(query) != embeddingDim {
		return nil, fmt.Errorf("store: query vector has %d dims, want %d", len(query), embeddingDim)
	}
	if k <= 0 {
		k = 10
	}
	if ef <= 0 {
		ef = k * 10
	}
	// Over-fetch when filtering by kind post-hoc, since the HNSW index
	// itself ranks over the whole table.
	fetchK := k
	if len(kinds) > 0 {
		fetchK = k * (len(kinds) + 4)
	}

	script := fmt.Sprintf(`
?[entity_id, entity_kind, distance] :=
	~felix_embedding:hnsw_idx { entity_id, entity_kind | query: q, k: %d, ef: %d, bind_distance: distance },
	q = %s
:order distance
:limit %d
`, fetchK, ef, vectorLiteral(query), fetchK)

	rows, err := s.Query(ctx, script)
	if err != nil {
		return nil, err
	}

	kindSet := make(map[types.EntityKind]bool, len(kinds))
	for _, kd := range kinds {
		kindSet[kd] = true
	}

	out := make([]EmbeddingMatch, 0, k)
	for _, row := range rows.Rows {
		id, _ := row[0].(string)
		kd, _ := row[1].(string)
		dist, _ := row[2].(float64)
		if len(kindSet) > 0 && !kindSet[types.EntityKind(kd)] {
			continue
		}
		out = append(out, EmbeddingMatch{EntityID: id, EntityKind: types.EntityKind(kd), Distance: dist})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func vectorLiteral(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func embeddingFromRow(row []any) (types.Embedding, error) {
	entityID, _ := row[0].(string)
	entityKind, _ := row[1].(string)
	modelVersion, _ := row[2].(string)
	contentHash, _ := row[3].(string)

	var vec []float32
	switch v := row[4].(type) {
	case []any:
		vec = make([]float32, len(v))
		for i, f := range v {
			switch n := f.(type) {
			case float64:
				vec[i] = float32(n)
			case float32:
				vec[i] = n
			}
		}
	}

	return types.Embedding{
		EntityID: entityID, EntityKind: types.EntityKind(entityKind),
		ModelVersion: modelVersion, ContentHash: contentHash, Vector: vec,
	}, nil
}
