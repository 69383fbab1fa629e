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
	"fmt"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// Filters narrows a Search call beyond the raw k-NN match set
// (spec.md §4.7 Search API "filters").
type Filters struct {
	ComponentKinds []types.ComponentKind
	Languages      []string
	// PathInclude/PathExclude are doublestar glob patterns evaluated
	// against each candidate's FilePath.
	PathInclude string
	PathExclude string
	// KBScope restricts results to the transitive descendants of the
	// given knowledge-base root component IDs, walked via "contains"
	// edges. An empty slice applies no restriction.
	KBScope []string
}

// RerankOptions controls Search stage (e): score = similarity ×
// kindWeight − pathDemotePenalty (spec.md §4.7).
type RerankOptions struct {
	KindWeights        map[types.ComponentKind]float64
	PathDemotePatterns []string
	PathDemoteAmount   float64
}

// DefaultKindWeights are spec.md §4.7's documented defaults. Felix's
// component kinds have no "task"/"note"/"rule" analogue (those are
// metadata-store concepts owned by external collaborators per
// spec.md §6) so component-shaped kinds share the "component" weight
// and doc sections take the teacher-adjacent "note" weight.
func DefaultKindWeights() map[types.ComponentKind]float64 {
	weights := make(map[types.ComponentKind]float64, 4)
	for _, k := range []types.ComponentKind{
		types.KindFunction, types.KindMethod, types.KindConstructor,
		types.KindClass, types.KindInterface, types.KindStruct,
		types.KindTrait, types.KindEnum, types.KindModule, types.KindNamespace,
		types.KindFile, types.KindField, types.KindProperty, types.KindVariable,
	} {
		weights[k] = 1.0
	}
	weights[types.KindDocSection] = 0.35
	return weights
}

// SearchOptions is spec.md §4.7's Search API request shape.
type SearchOptions struct {
	// Query is embedded via the Searcher's Provider. Leave empty and
	// set QueryVector directly to skip embedding (e.g. a cached
	// vector, or a Searcher built without a Provider).
	Query               string
	QueryVector         []float32
	EntityKinds         []types.EntityKind
	SimilarityThreshold float64
	Limit               int
	Filters             Filters
	Rerank              *RerankOptions
	OutputView          OutputView
}

// SearchItem is one ranked, filtered match.
type SearchItem struct {
	Component  types.Component
	Similarity float64
	Score      float64
}

// SearchResponse is Search's projected result set.
type SearchResponse struct {
	Items []SearchItem
	View  OutputView
}

// Search runs the full pipeline: resolve query to vector, k-NN,
// filter, optional KB scope, rerank, project (spec.md §4.7).
func (s *Searcher) Search(ctx context.Context, opts SearchOptions) (SearchResponse, error) {
	vec := opts.QueryVector
	if vec == nil {
		if s.embedder == nil {
			return SearchResponse{}, fmt.Errorf("query: no embedder configured and no QueryVector supplied")
		}
		v, err := s.embedder.Embed(ctx, opts.Query)
		if err != nil {
			return SearchResponse{}, fmt.Errorf("query: embed query: %w", err)
		}
		vec = v
	}

	threshold := opts.SimilarityThreshold
	if threshold == 0 {
		threshold = s.cfg.SimilarityThreshold
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	matches, err := s.store.NearestEmbeddings(ctx, vec, opts.EntityKinds, limit*4, 0)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("query: k-NN: %w", err)
	}

	items, err := s.resolveAndFilter(ctx, matches, threshold, opts.Filters)
	if err != nil {
		return SearchResponse{}, err
	}

	rerank := opts.Rerank
	if rerank == nil {
		rerank = &RerankOptions{
			KindWeights:        DefaultKindWeights(),
			PathDemotePatterns: s.cfg.PathDemotePatterns,
			PathDemoteAmount:   s.cfg.PathDemoteAmount,
		}
	}
	s.rerankItems(items, rerank)

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Component.ID < items[j].Component.ID // deterministic tie-break, spec.md §5
	})
	if len(items) > limit {
		items = items[:limit]
	}

	view := opts.OutputView
	if view == "" {
		view = ViewFull
	}

	return SearchResponse{Items: items, View: view}, nil
}

func (s *Searcher) resolveAndFilter(ctx context.Context, matches []store.EmbeddingMatch, threshold float64, filters Filters) ([]SearchItem, error) {
	var scope map[string]bool
	if len(filters.KBScope) > 0 {
		var err error
		scope, err = s.kbScopeSet(ctx, filters.KBScope)
		if err != nil {
			return nil, err
		}
	}

	kindSet := make(map[types.ComponentKind]bool, len(filters.ComponentKinds))
	for _, k := range filters.ComponentKinds {
		kindSet[k] = true
	}
	langSet := make(map[string]bool, len(filters.Languages))
	for _, l := range filters.Languages {
		langSet[l] = true
	}

	var items []SearchItem
	for _, m := range matches {
		similarity := 1 - m.Distance
		if similarity < threshold {
			continue
		}
		c, ok, err := s.store.GetComponent(ctx, m.EntityID)
		if err != nil {
			return nil, fmt.Errorf("query: resolve component %s: %w", m.EntityID, err)
		}
		if !ok {
			continue
		}
		if len(kindSet) > 0 && !kindSet[c.Kind] {
			continue
		}
		if len(langSet) > 0 && !langSet[c.Language] {
			continue
		}
		if filters.PathInclude != "" {
			if ok, _ := doublestar.Match(filters.PathInclude, c.FilePath); !ok {
				continue
			}
		}
		if filters.PathExclude != "" {
			if ok, _ := doublestar.Match(filters.PathExclude, c.FilePath); ok {
				continue
			}
		}
		if scope != nil && !scope[c.ID] {
			continue
		}
		items = append(items, SearchItem{Component: c, Similarity: similarity})
	}
	return items, nil
}

// kbScopeSet walks "contains" edges from each root to build the set
// of in-scope component IDs (spec.md §4.7 "restrict to the transitive
// descendants of given knowledge-base root notes"). Roots themselves
// are in scope.
func (s *Searcher) kbScopeSet(ctx context.Context, roots []string) (map[string]bool, error) {
	scope := make(map[string]bool, len(roots)*8)
	for _, root := range roots {
		scope[root] = true
		result, err := s.store.Walk(ctx, root, store.WalkOptions{
			Depth:     64,
			Direction: store.DirOut,
			Kinds:     []types.RelationshipKind{types.RelContains},
		})
		if err != nil {
			return nil, fmt.Errorf("query: kb scope walk from %s: %w", root, err)
		}
		for id := range result.Nodes {
			scope[id] = true
		}
	}
	return scope, nil
}

func (s *Searcher) rerankItems(items []SearchItem, opts *RerankOptions) {
	demoteRE := make([]*regexp.Regexp, 0, len(opts.PathDemotePatterns))
	for _, p := range opts.PathDemotePatterns {
		if re, err := regexp.Compile(p); err == nil {
			demoteRE = append(demoteRE, re)
		}
	}
	for i := range items {
		weight := 1.0
		if opts.KindWeights != nil {
			if w, ok := opts.KindWeights[items[i].Component.Kind]; ok {
				weight = w
			}
		}
		score := items[i].Similarity * weight
		for _, re := range demoteRE {
			if re.MatchString(items[i].Component.FilePath) {
				score -= opts.PathDemoteAmount
				break
			}
		}
		items[i].Score = score
	}
}

// Project renders a SearchResponse's items into the shape its View
// calls for — ids/names/files/files+lines skip the heavier fields a
// caller building a compact list result doesn't need.
func Project(resp SearchResponse) []map[string]any {
	out := make([]map[string]any, 0, len(resp.Items))
	for _, item := range resp.Items {
		c := item.Component
		switch resp.View {
		case ViewIDs:
			out = append(out, map[string]any{"id": c.ID})
		case ViewNames:
			out = append(out, map[string]any{"id": c.ID, "name": c.Name})
		case ViewFiles:
			out = append(out, map[string]any{"id": c.ID, "name": c.Name, "filePath": c.FilePath})
		case ViewFileLines:
			out = append(out, map[string]any{
				"id": c.ID, "name": c.Name, "filePath": c.FilePath,
				"startLine": c.Location.StartLine, "endLine": c.Location.EndLine,
			})
		default: // ViewFull
			out = append(out, map[string]any{
				"id": c.ID, "name": c.Name, "kind": c.Kind, "language": c.Language,
				"filePath": c.FilePath, "location": c.Location, "similarity": item.Similarity,
				"score": item.Score,
			})
		}
	}
	return out
}
