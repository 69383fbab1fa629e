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

func callRel(id, source, target string) types.Relationship {
	return types.Relationship{
		ID: id, SourceID: source, TargetID: target, Kind: types.RelCalls,
		Metadata:   types.RelationshipMetadata{Confidence: 0.9},
		Capability: types.CapabilityBlock{ParsingLevel: types.LevelStructural, Backend: "tree-sitter"},
	}
}

func seedChain(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	components := []types.Component{
		fileComponent("file:a.go", "a.go"),
		funcComponent("fn:main", "main", "a.go", 1),
		funcComponent("fn:helper", "helper", "a.go", 5),
		funcComponent("fn:leaf", "leaf", "a.go", 9),
	}
	rels := []types.Relationship{
		callRel("rel:main->helper", "fn:main", "fn:helper"),
		callRel("rel:helper->leaf", "fn:helper", "fn:leaf"),
	}
	require.NoError(t, s.UpsertFile(ctx, "a.go", components, rels))
}

func TestStore_NeighborsDirectionsAndKindFilter(t *testing.T) {
	s := newTestStore()
	seedChain(t, s)
	ctx := context.Background()

	out, err := s.Neighbors(ctx, "fn:main", DirOut, nil, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "fn:helper", out[0].TargetID)

	in, err := s.Neighbors(ctx, "fn:helper", DirIn, nil, 0)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "fn:main", in[0].SourceID)

	both, err := s.Neighbors(ctx, "fn:helper", DirBoth, nil, 0)
	require.NoError(t, err)
	assert.Len(t, both, 2)

	filtered, err := s.Neighbors(ctx, "fn:helper", DirBoth, []types.RelationshipKind{types.RelThrows}, 0)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestStore_WalkTraversesAndCollectsNodes(t *testing.T) {
	s := newTestStore()
	seedChain(t, s)

	result, err := s.Walk(context.Background(), "fn:main", WalkOptions{Depth: 2, Direction: DirOut})
	require.NoError(t, err)

	assert.Contains(t, result.Nodes, "fn:main")
	assert.Contains(t, result.Nodes, "fn:helper")
	assert.Contains(t, result.Nodes, "fn:leaf")
	assert.Len(t, result.Edges, 2)
	assert.Empty(t, result.Cycles)
}

func TestStore_WalkDetectsCycleWithoutInfiniteLoop(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	components := []types.Component{
		fileComponent("file:a.go", "a.go"),
		funcComponent("fn:a", "a", "a.go", 1),
		funcComponent("fn:b", "b", "a.go", 5),
	}
	rels := []types.Relationship{
		callRel("rel:a->b", "fn:a", "fn:b"),
		callRel("rel:b->a", "fn:b", "fn:a"),
	}
	require.NoError(t, s.UpsertFile(ctx, "a.go", components, rels))

	result, err := s.Walk(ctx, "fn:a", WalkOptions{Depth: 5, Direction: DirOut})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Cycles, "a back-edge into an already-visited node must be reported as a cycle")
	assert.Contains(t, result.Nodes, "fn:a")
	assert.Contains(t, result.Nodes, "fn:b")
}

func TestStore_WalkRespectsCancelledContext(t *testing.T) {
	s := newTestStore()
	seedChain(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Walk(ctx, "fn:main", WalkOptions{Depth: 3, Direction: DirOut})
	assert.Error(t, err)
}
