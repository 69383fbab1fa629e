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

package query

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/config"
	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// fakeStore is an in-memory storeAPI used to exercise Searcher without
// the CGO-backed store (mirrors pkg/felix/resolver's fakeStore).
type fakeStore struct {
	mu sync.Mutex

	components map[string]types.Component
	matches    []store.EmbeddingMatch
	neighbors  map[string][]types.Relationship
	walkResult store.WalkResult
	lastWalk   store.WalkOptions
	lastWalkID string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		components: map[string]types.Component{},
		neighbors:  map[string][]types.Relationship{},
	}
}

func (f *fakeStore) Search(_ context.Context, _ store.SearchCriteria) (store.SearchResult, error) {
	return store.SearchResult{}, nil
}

func (f *fakeStore) NearestEmbeddings(_ context.Context, _ []float32, _ []types.EntityKind, k int, _ int) ([]store.EmbeddingMatch, error) {
	if k > 0 && k < len(f.matches) {
		return f.matches[:k], nil
	}
	return f.matches, nil
}

func (f *fakeStore) GetComponent(_ context.Context, id string) (types.Component, bool, error) {
	c, ok := f.components[id]
	return c, ok, nil
}

func (f *fakeStore) Walk(_ context.Context, startID string, opts store.WalkOptions) (store.WalkResult, error) {
	f.mu.Lock()
	f.lastWalk = opts
	f.lastWalkID = startID
	f.mu.Unlock()
	return f.walkResult, nil
}

func (f *fakeStore) Neighbors(_ context.Context, id string, _ store.Direction, _ []types.RelationshipKind, _ int) ([]types.Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.neighbors[id], nil
}

func comp(id, name string, kind types.ComponentKind, lang, path string) types.Component {
	return types.Component{ID: id, Name: name, Kind: kind, Language: lang, FilePath: path}
}

func TestSearch_FiltersByThresholdAndKinds(t *testing.T) {
	fs := newFakeStore()
	fs.components["a"] = comp("a", "Alpha", types.KindFunction, "go", "pkg/a.go")
	fs.components["b"] = comp("b", "Beta", types.KindFunction, "go", "vendor/b.go")
	fs.components["c"] = comp("c", "Gamma", types.KindDocSection, "markdown", "docs/c.md")
	fs.matches = []store.EmbeddingMatch{
		{EntityID: "a", Distance: 0.1},
		{EntityID: "b", Distance: 0.2},
		{EntityID: "c", Distance: 0.95}, // similarity 0.05, below default threshold
	}

	s := New(fs, nil, config.Default(), nil)
	resp, err := s.Search(context.Background(), SearchOptions{
		QueryVector:         make([]float32, 1536),
		SimilarityThreshold: 0.2,
		Filters:             Filters{ComponentKinds: []types.ComponentKind{types.KindFunction}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	for _, it := range resp.Items {
		assert.Equal(t, types.KindFunction, it.Component.Kind)
	}
}

func TestSearch_ErrorsWithoutEmbedderOrVector(t *testing.T) {
	s := New(newFakeStore(), nil, config.Default(), nil)
	_, err := s.Search(context.Background(), SearchOptions{Query: "anything"})
	assert.Error(t, err)
}

func TestSearch_DemotesVendoredPaths(t *testing.T) {
	fs := newFakeStore()
	fs.components["a"] = comp("a", "Alpha", types.KindFunction, "go", "pkg/a.go")
	fs.components["b"] = comp("b", "Beta", types.KindFunction, "go", "vendor/b.go")
	fs.matches = []store.EmbeddingMatch{
		{EntityID: "b", Distance: 0.1}, // closer match, but vendored
		{EntityID: "a", Distance: 0.15},
	}

	s := New(fs, nil, config.Default(), nil)
	resp, err := s.Search(context.Background(), SearchOptions{
		QueryVector: make([]float32, 1536),
		Rerank: &RerankOptions{
			KindWeights:        DefaultKindWeights(),
			PathDemotePatterns: []string{"vendor"},
			PathDemoteAmount:   0.5,
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "a", resp.Items[0].Component.ID, "demoted vendored match must rank below the non-demoted one despite higher raw similarity")
}

func TestProject_ViewsTrimFields(t *testing.T) {
	resp := SearchResponse{
		View: ViewIDs,
		Items: []SearchItem{
			{Component: comp("a", "Alpha", types.KindFunction, "go", "a.go")},
		},
	}
	out := Project(resp)
	require.Len(t, out, 1)
	_, hasName := out[0]["name"]
	assert.False(t, hasName, "ids view must not carry a name field")
}

func TestDiscover_SuggestsFrequentTermsAndConcepts(t *testing.T) {
	fs := newFakeStore()
	candidates := []types.Component{
		comp("a", "ParseConfig", types.KindFunction, "go", "pkg/config/parse.go"),
		comp("b", "parseConfigFile", types.KindFunction, "go", "pkg/config/loader.go"),
		comp("c", "Unrelated", types.KindFunction, "go", "pkg/other/x.go"),
	}
	fs.neighbors["a"] = nil
	fs.neighbors["b"] = nil
	fs.neighbors["c"] = nil

	s := New(fs, nil, config.Default(), nil)
	result, err := s.Discover(context.Background(), DiscoveryInput{Query: "parseconfig", Candidates: candidates})
	require.NoError(t, err)
	require.NotEmpty(t, result.SuggestedTerms)
	require.NotEmpty(t, result.RelatedConcepts)
}

func TestDiscover_ExpandsViaSynonymMap(t *testing.T) {
	fs := newFakeStore()
	candidates := []types.Component{comp("a", "config", types.KindFunction, "go", "config.go")}
	fs.neighbors["a"] = nil

	s := New(fs, nil, config.Default(), nil)
	result, err := s.Discover(context.Background(), DiscoveryInput{
		Query:      "config",
		Candidates: candidates,
		SynonymMap: map[string][]string{"config": {"settings", "options"}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"settings", "options"}, result.ExpandedTerms)
}

func TestDiscover_UnionsCrossReferenceNeighbors(t *testing.T) {
	fs := newFakeStore()
	candidates := []types.Component{
		comp("a", "A", types.KindFunction, "go", "a.go"),
		comp("b", "B", types.KindFunction, "go", "b.go"),
	}
	fs.neighbors["a"] = []types.Relationship{{ID: "r1", SourceID: "a", TargetID: "x", Kind: types.RelCalls}}
	fs.neighbors["b"] = []types.Relationship{{ID: "r2", SourceID: "b", TargetID: "y", Kind: types.RelCalls}}

	s := New(fs, nil, config.Default(), nil)
	result, err := s.Discover(context.Background(), DiscoveryInput{Query: "a", Candidates: candidates})
	require.NoError(t, err)
	assert.Len(t, result.CrossReferences, 2)
}

func TestTraverse_GetCallersWalksInboundCallsEdges(t *testing.T) {
	fs := newFakeStore()
	s := New(fs, nil, config.Default(), nil)
	_, err := s.GetCallers(context.Background(), "fn:main", 0)
	require.NoError(t, err)
	assert.Equal(t, store.DirIn, fs.lastWalk.Direction)
	assert.Equal(t, []types.RelationshipKind{types.RelCalls}, fs.lastWalk.Kinds)
	assert.Equal(t, defaultTraversalDepth, fs.lastWalk.Depth)
	assert.Equal(t, "fn:main", fs.lastWalkID)
}

func TestTraverse_GetDependenciesWalksOutboundImportUseInstantiate(t *testing.T) {
	fs := newFakeStore()
	s := New(fs, nil, config.Default(), nil)
	_, err := s.GetDependencies(context.Background(), "fn:main", 3)
	require.NoError(t, err)
	assert.Equal(t, store.DirOut, fs.lastWalk.Direction)
	assert.ElementsMatch(t, []types.RelationshipKind{types.RelImports, types.RelUses, types.RelInstantiates}, fs.lastWalk.Kinds)
	assert.Equal(t, 3, fs.lastWalk.Depth)
}

func TestTraverse_GetInheritanceChainWalksExtendsImplements(t *testing.T) {
	fs := newFakeStore()
	s := New(fs, nil, config.Default(), nil)
	_, err := s.GetInheritanceChain(context.Background(), "cls:Base", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []types.RelationshipKind{types.RelExtends, types.RelImplements}, fs.lastWalk.Kinds)
}
