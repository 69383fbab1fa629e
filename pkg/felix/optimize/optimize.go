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

// Package optimize builds a token-bounded "context pack" from a
// candidate set: score each item against a query, filter down to a
// relevance floor while keeping a minimum retention fraction, then
// shrink surviving items until the estimated token count fits a
// budget (spec.md §4.8).
package optimize

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/felix-ide/felix/pkg/felix/config"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// ContentType classifies an Item for content-weighted relevance
// scoring (spec.md §4.8 stage 1).
type ContentType string

const (
	ContentCode          ContentType = "code"
	ContentDocumentation ContentType = "documentation"
	ContentRelationships ContentType = "relationships"
	ContentMetadata      ContentType = "metadata"
	ContentComments      ContentType = "comments"
)

// Item is one candidate unit in a context pack: a component, a
// relationship, or any other named, typed, path-scoped piece of text.
type Item struct {
	// ID is the component/entity ID this item represents, if any —
	// used to match relationship endpoints in filterRelationships.
	ID            string
	Name          string
	Kind          string
	Path          string
	ContentType   ContentType
	Text          string
	RawScore      float64
	WeightedScore float64
	Skeletonized  bool
}

// tokenEstimate mirrors spec.md §4.8 stage 3: ~4 chars/token for code,
// ~4.5 for prose.
func tokenEstimate(text string, ct ContentType) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	divisor := 4.0
	if ct == ContentDocumentation || ct == ContentComments {
		divisor = 4.5
	}
	est := float64(n) / divisor
	if est < 1 {
		return 1
	}
	return int(est + 0.5)
}

// Input is one Run invocation's candidate set and query.
type Input struct {
	Query         string
	Items         []Item
	Relationships []types.Relationship
	// TokenBudget caps the packed result's estimated token count.
	TokenBudget int
	Options     config.Config
}

// Result is the packed output (spec.md §4.8 "Output").
type Result struct {
	OptimizedData        []Item
	Relationships        []types.Relationship
	OriginalTokens       int
	FinalTokens          int
	ItemsRemoved         int
	RelationshipsRemoved int
	StrategiesApplied    []string
	Warnings             []string
}

// Run executes the three-stage pipeline: score, filter, window-size.
func Run(input Input) Result {
	items := scoreItems(input.Query, input.Items, input.Options.ContentWeights)

	originalTokens := 0
	for _, it := range items {
		originalTokens += tokenEstimate(it.Text, it.ContentType)
	}

	kept, removedCount := filterItems(items, input.Options.RelevanceThreshold, input.Options.MinRetention)
	keptNames := make(map[string]bool, len(kept))
	for _, it := range kept {
		keptNames[it.Name+"|"+it.Kind+"|"+it.Path] = true
	}

	rels, relsRemoved := filterRelationships(input.Relationships, kept)

	result := Result{
		Relationships:        rels,
		OriginalTokens:       originalTokens,
		ItemsRemoved:         removedCount,
		RelationshipsRemoved: relsRemoved,
	}

	packed, strategies := fitBudget(kept, input.TokenBudget, input.Options.MaxDescriptionLength)
	result.OptimizedData = packed
	result.StrategiesApplied = strategies

	finalTokens := 0
	for _, it := range packed {
		finalTokens += tokenEstimate(it.Text, it.ContentType)
	}
	result.FinalTokens = finalTokens

	total := len(items)
	if total > 0 {
		removedFrac := float64(removedCount) / float64(total)
		if removedFrac > 0.1 || removedCount > 10 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%d of %d items removed (%.0f%%) during relevance filtering", removedCount, total, removedFrac*100))
		}
	}

	return result
}

// scoreItems assigns RawScore (term-overlap against the query) and
// WeightedScore (raw * content-type weight) to each item, in a
// fresh slice so callers' input is never mutated.
func scoreItems(query string, items []Item, weights config.ContentWeights) []Item {
	terms := queryTerms(query)
	out := make([]Item, len(items))
	for i, it := range items {
		score := termOverlapScore(terms, it.Name, it.Text)
		out[i] = it
		out[i].RawScore = score
		out[i].WeightedScore = score * contentWeight(it.ContentType, weights)
	}
	return out
}

func contentWeight(ct ContentType, w config.ContentWeights) float64 {
	switch ct {
	case ContentCode:
		return orDefault(w.Code, 1.5)
	case ContentDocumentation:
		return orDefault(w.Documentation, 1.2)
	case ContentRelationships:
		return orDefault(w.Relationships, 1.0)
	case ContentMetadata:
		return orDefault(w.Metadata, 0.8)
	case ContentComments:
		return orDefault(w.Comments, 0.6)
	default:
		return 1.0
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:()[]{}\"'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// termOverlapScore counts query-term occurrences across name and text,
// weighting a name hit higher than a body hit.
func termOverlapScore(terms []string, name, text string) float64 {
	if len(terms) == 0 {
		return 1.0
	}
	nameLower := strings.ToLower(name)
	textLower := strings.ToLower(text)
	score := 0.0
	for _, t := range terms {
		if strings.Contains(nameLower, t) {
			score += 2.0
		}
		score += float64(strings.Count(textLower, t)) * 0.5
	}
	return score
}

// filterItems drops items below threshold but always retains at
// least minRetention of the original set, keeping the top-scored
// ones, then deduplicates by (name, kind, path) — spec.md §4.8
// stage 2.
func filterItems(items []Item, threshold, minRetention float64) ([]Item, int) {
	if minRetention <= 0 {
		minRetention = 0.1
	}
	ranked := make([]Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].WeightedScore > ranked[j].WeightedScore })

	minKeep := int(float64(len(ranked)) * minRetention)
	var kept []Item
	for i, it := range ranked {
		if it.WeightedScore >= threshold || i < minKeep {
			kept = append(kept, it)
		}
	}

	seen := make(map[string]bool, len(kept))
	deduped := kept[:0]
	for _, it := range kept {
		key := it.Name + "|" + it.Kind + "|" + it.Path
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, it)
	}

	return deduped, len(items) - len(deduped)
}

// filterRelationships drops any relationship whose endpoint ID did not
// survive filtering — spec.md §4.8 stage 2 "drop relationships whose
// endpoints were dropped".
func filterRelationships(rels []types.Relationship, kept []Item) ([]types.Relationship, int) {
	keptIDs := make(map[string]bool, len(kept))
	for _, it := range kept {
		if it.ID != "" {
			keptIDs[it.ID] = true
		}
	}
	var survivors []types.Relationship
	for _, r := range rels {
		if keptIDs[r.SourceID] && keptIDs[r.TargetID] {
			survivors = append(survivors, r)
		}
	}
	return survivors, len(rels) - len(survivors)
}

// fitBudget shrinks items, preserving weighted-score order, until the
// estimated token total fits budget (0 = unbounded). Code items lose
// their body first (skeleton kept); documentation items are truncated
// to their heading plus a summary line; everything else has its text
// truncated to maxDescriptionLength.
func fitBudget(items []Item, budget int, maxDescriptionLength int) ([]Item, []string) {
	ordered := make([]Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].WeightedScore > ordered[j].WeightedScore })

	if budget <= 0 {
		return ordered, nil
	}
	if maxDescriptionLength <= 0 {
		maxDescriptionLength = 500
	}

	total := func() int {
		sum := 0
		for _, it := range ordered {
			sum += tokenEstimate(it.Text, it.ContentType)
		}
		return sum
	}

	var strategies []string
	if total() <= budget {
		return ordered, strategies
	}

	strategies = append(strategies, "skeletonize_code")
	for i := range ordered {
		if ordered[i].ContentType == ContentCode {
			ordered[i].Text = skeletonize(ordered[i].Text)
			ordered[i].Skeletonized = true
		}
		if total() <= budget {
			return ordered, strategies
		}
	}

	strategies = append(strategies, "truncate_documentation")
	for i := range ordered {
		if ordered[i].ContentType == ContentDocumentation {
			ordered[i].Text = truncateDoc(ordered[i].Text)
		}
		if total() <= budget {
			return ordered, strategies
		}
	}

	strategies = append(strategies, "truncate_descriptions")
	for i := range ordered {
		ordered[i].Text = truncateTo(ordered[i].Text, maxDescriptionLength)
		if total() <= budget {
			return ordered, strategies
		}
	}

	// Still over budget: drop lowest-scored items from the tail,
	// always preserving order.
	strategies = append(strategies, "drop_lowest_scored")
	for len(ordered) > 0 && total() > budget {
		ordered = ordered[:len(ordered)-1]
	}

	return ordered, strategies
}

// skeletonize keeps a code item's declaration line(s) and drops the
// body, matching spec.md §4.8 stage 3 "drop bodies, keep skeletons".
func skeletonize(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return text
	}
	header := strings.TrimRight(lines[0], " \t")
	return header + "\n\t// ... body omitted\n}"
}

// truncateDoc keeps the first heading line and a short summary,
// matching spec.md §4.8 stage 3 "preserve headings, summarize
// paragraphs, truncate lists".
func truncateDoc(text string) string {
	lines := strings.Split(text, "\n")
	var heading string
	var rest []string
	for _, l := range lines {
		if heading == "" && strings.HasPrefix(strings.TrimSpace(l), "#") {
			heading = l
			continue
		}
		if strings.TrimSpace(l) != "" {
			rest = append(rest, strings.TrimSpace(l))
		}
	}
	summary := ""
	if len(rest) > 0 {
		summary = truncateTo(rest[0], 160)
	}
	if heading == "" {
		return truncateTo(summary, 200)
	}
	return heading + "\n" + summary
}

func truncateTo(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}
