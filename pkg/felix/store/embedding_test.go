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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/types"
)

func vector(dims int, fill float32) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestStore_StoreEmbeddingRejectsWrongDimension(t *testing.T) {
	s := newTestStore()
	err := s.StoreEmbedding(context.Background(), types.Embedding{
		EntityID: "fn:a", EntityKind: "component", Vector: vector(10, 0.1),
	})
	assert.Error(t, err)
}

func TestStore_StoreEmbeddingUpsertsOnEntityAndKind(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	e := types.Embedding{
		EntityID: "fn:a", EntityKind: "component", Vector: vector(embeddingDim, 0.1),
		ModelVersion: "v1", ContentHash: "hash1",
	}
	require.NoError(t, s.StoreEmbedding(ctx, e))

	hash, ok, err := s.GetEmbeddingContentHash(ctx, "fn:a", "component")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hash1", hash)

	e.ContentHash = "hash2"
	require.NoError(t, s.StoreEmbedding(ctx, e))

	hash, ok, err = s.GetEmbeddingContentHash(ctx, "fn:a", "component")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hash2", hash, "re-storing the same (entityId, kind) must overwrite, not duplicate")
}

func TestStore_GetEmbeddingContentHashMissingReturnsFalse(t *testing.T) {
	s := newTestStore()
	_, ok, err := s.GetEmbeddingContentHash(context.Background(), "fn:missing", "component")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_GetEmbeddingsByKindFiltersToKind(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.StoreEmbedding(ctx, types.Embedding{EntityID: "fn:a", EntityKind: "component", Vector: vector(embeddingDim, 0.1), ModelVersion: "v1", ContentHash: "h1"}))
	require.NoError(t, s.StoreEmbedding(ctx, types.Embedding{EntityID: "note:1", EntityKind: "note", Vector: vector(embeddingDim, 0.2), ModelVersion: "v1", ContentHash: "h2"}))

	components, err := s.GetEmbeddingsByKind(ctx, "component")
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "fn:a", components[0].EntityID)

	notes, err := s.GetEmbeddingsByKind(ctx, "note")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "note:1", notes[0].EntityID)
}

func TestStore_NearestEmbeddingsRanksByDistance(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.StoreEmbedding(ctx, types.Embedding{EntityID: "fn:close", EntityKind: "component", Vector: vector(embeddingDim, 0.500), ModelVersion: "v1", ContentHash: "h1"}))
	require.NoError(t, s.StoreEmbedding(ctx, types.Embedding{EntityID: "fn:far", EntityKind: "component", Vector: vector(embeddingDim, 0.999), ModelVersion: "v1", ContentHash: "h2"}))

	matches, err := s.NearestEmbeddings(ctx, vector(embeddingDim, 0.501), nil, 2, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "fn:close", matches[0].EntityID)
	assert.Equal(t, "fn:far", matches[1].EntityID)
	assert.Less(t, matches[0].Distance, matches[1].Distance)
}

func TestStore_NearestEmbeddingsFiltersByKind(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.StoreEmbedding(ctx, types.Embedding{EntityID: "fn:a", EntityKind: "component", Vector: vector(embeddingDim, 0.5), ModelVersion: "v1", ContentHash: "h1"}))
	require.NoError(t, s.StoreEmbedding(ctx, types.Embedding{EntityID: "note:a", EntityKind: "note", Vector: vector(embeddingDim, 0.5), ModelVersion: "v1", ContentHash: "h2"}))

	matches, err := s.NearestEmbeddings(ctx, vector(embeddingDim, 0.5), []types.EntityKind{"note"}, 5, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "note:a", matches[0].EntityID)
}

func TestStore_NearestEmbeddingsRejectsWrongDimension(t *testing.T) {
	s := newTestStore()
	_, err := s.NearestEmbeddings(context.Background(), vector(8, 0.1), nil, 5, 0)
	assert.Error(t, err)
}
