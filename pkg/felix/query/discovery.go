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
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// maxCrossRefFanout bounds how many candidates get a concurrent
// Neighbors lookup during Discover's cross-reference pass.
const maxCrossRefFanout = 8

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "in": true,
	"and": true, "or": true, "is": true, "for": true, "on": true, "with": true,
	"at": true, "by": true, "from": true, "this": true, "that": true, "it": true,
	"as": true, "be": true, "are": true, "was": true, "were": true,
}

// DiscoveryInput is a Discover call's candidate set and originating
// query (spec.md §4.7 Discovery).
type DiscoveryInput struct {
	Query      string
	Candidates []types.Component
	// SynonymMap optionally expands a suggested term into related
	// terms for query-expansion callers (spec.md §4.7 "optional query
	// expansion via synonym/concept maps before re-search").
	SynonymMap map[string][]string
}

// SuggestedTerm is one candidate expansion term ranked by frequency
// and edit-distance relevance to the original query.
type SuggestedTerm struct {
	Term      string
	Frequency int
	Relevance float32
}

// DiscoveryResult is Discover's output: terms worth re-querying with,
// concepts the candidate set clusters around, and the relationship
// edges connecting the candidates to the rest of the graph.
type DiscoveryResult struct {
	SuggestedTerms  []SuggestedTerm
	RelatedConcepts []string
	CrossReferences []types.Relationship
	ExpandedTerms   []string
}

// Discover extracts suggested terms, related concepts, and
// cross-reference edges from a candidate set (spec.md §4.7
// Discovery). Candidates are typically a prior Search's matches.
func (s *Searcher) Discover(ctx context.Context, input DiscoveryInput) (DiscoveryResult, error) {
	bag := wordBag(input.Candidates)

	terms := suggestTerms(input.Query, bag)
	concepts := relatedConcepts(bag)
	crossRefs, err := s.crossReferences(ctx, input.Candidates)
	if err != nil {
		return DiscoveryResult{}, err
	}

	var expanded []string
	if input.SynonymMap != nil {
		seen := make(map[string]bool)
		for _, t := range terms {
			for _, syn := range input.SynonymMap[t.Term] {
				if !seen[syn] {
					seen[syn] = true
					expanded = append(expanded, syn)
				}
			}
		}
	}

	return DiscoveryResult{
		SuggestedTerms:  terms,
		RelatedConcepts: concepts,
		CrossReferences: crossRefs,
		ExpandedTerms:   expanded,
	}, nil
}

// wordBag tokenizes each candidate's name, documentation, and path
// segments into a frequency table, dropping stop words (spec.md §4.7
// "word-bag from names/content/tags/path segments minus stop words").
func wordBag(candidates []types.Component) map[string]int {
	bag := make(map[string]int)
	add := func(text string) {
		for _, tok := range tokenize(text) {
			if stopWords[tok] || len(tok) < 3 {
				continue
			}
			bag[tok]++
		}
	}
	for _, c := range candidates {
		add(c.Name)
		add(c.Metadata.Documentation)
		for _, seg := range strings.FieldsFunc(c.FilePath, func(r rune) bool { return r == '/' || r == '.' || r == '_' || r == '-' }) {
			add(seg)
		}
		add(strings.Join(c.Metadata.Scope, " "))
	}
	return bag
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	return fields
}

// suggestTerms ranks the word bag by frequency, using Jaro-Winkler
// similarity to the original query as a relevance tiebreak so terms
// close to what was already typed surface first.
func suggestTerms(query string, bag map[string]int) []SuggestedTerm {
	out := make([]SuggestedTerm, 0, len(bag))
	for term, freq := range bag {
		rel, err := edlib.StringsSimilarity(query, term, edlib.JaroWinkler)
		if err != nil {
			rel = 0
		}
		out = append(out, SuggestedTerm{Term: term, Frequency: freq, Relevance: rel})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

// relatedConcepts reduces the word bag to its stems via Porter2,
// merging inflected forms ("resolver"/"resolving"/"resolved") into one
// concept, then returns the most frequent stems.
func relatedConcepts(bag map[string]int) []string {
	stems := make(map[string]int, len(bag))
	for term, freq := range bag {
		stems[porter2.Stem(term)] += freq
	}
	out := make([]string, 0, len(stems))
	for stem := range stems {
		out = append(out, stem)
	}
	sort.Slice(out, func(i, j int) bool {
		if stems[out[i]] != stems[out[j]] {
			return stems[out[i]] > stems[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > 15 {
		out = out[:15]
	}
	return out
}

// crossReferences fans out Neighbors lookups across the candidate set,
// bounded to maxCrossRefFanout concurrent requests, and returns the
// union of edges found.
func (s *Searcher) crossReferences(ctx context.Context, candidates []types.Component) ([]types.Relationship, error) {
	sem := semaphore.NewWeighted(maxCrossRefFanout)
	results := make([][]types.Relationship, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return fmt.Errorf("query: cross-reference fan-out: %w", err)
			}
			defer sem.Release(1)
			rels, err := s.store.Neighbors(gctx, c.ID, store.DirBoth, nil, 0)
			if err != nil {
				return fmt.Errorf("query: neighbors for %s: %w", c.ID, err)
			}
			results[i] = rels
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []types.Relationship
	for _, rels := range results {
		out = append(out, rels...)
	}
	return out, nil
}
