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
	"regexp"
	"sort"
	"strings"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// SearchCriteria filters Search (spec.md §4.4).
type SearchCriteria struct {
	Kinds        []types.ComponentKind
	Languages    []string
	PathInclude  string // substring matched against FilePath
	PathExclude  string
	NameRegex    string
	Offset       int
	Limit        int
}

// SearchResult is the paginated response shape from spec.md §4.4.
type SearchResult struct {
	Items   []types.Component
	Total   int
	HasMore bool
	Offset  int
	Limit   int
}

// Search runs criteria against the component table. Ties in the
// result order are broken by ID ascending for determinism (spec.md §5
// "deterministic search ties broken by ID ascending").
func (s *Store) Search(ctx context.Context, criteria SearchCriteria) (SearchResult, error) {
	script := `
?[id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json] :=
	*felix_component{id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json}
`
	rows, err := s.Query(ctx, script)
	if err != nil {
		return SearchResult{}, err
	}

	var nameRE *regexp.Regexp
	if criteria.NameRegex != "" {
		nameRE, err = regexp.Compile(criteria.NameRegex)
		if err != nil {
			return SearchResult{}, fmt.Errorf("store: invalid name regex: %w", err)
		}
	}
	kindSet := make(map[types.ComponentKind]bool, len(criteria.Kinds))
	for _, k := range criteria.Kinds {
		kindSet[k] = true
	}
	langSet := make(map[string]bool, len(criteria.Languages))
	for _, l := range criteria.Languages {
		langSet[l] = true
	}

	var matched []types.Component
	for _, row := range rows.Rows {
		c, err := componentFromRow(row)
		if err != nil {
			continue
		}
		if len(kindSet) > 0 && !kindSet[c.Kind] {
			continue
		}
		if len(langSet) > 0 && !langSet[c.Language] {
			continue
		}
		if criteria.PathInclude != "" && !strings.Contains(c.FilePath, criteria.PathInclude) {
			continue
		}
		if criteria.PathExclude != "" && strings.Contains(c.FilePath, criteria.PathExclude) {
			continue
		}
		if nameRE != nil && !nameRE.MatchString(c.Name) {
			continue
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	limit := criteria.Limit
	if limit <= 0 {
		limit = total
	}
	offset := criteria.Offset
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return SearchResult{
		Items:   matched[offset:end],
		Total:   total,
		HasMore: end < total,
		Offset:  offset,
		Limit:   limit,
	}, nil
}
