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

func seedSearchFixtures(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertFile(ctx, "a.go", []types.Component{
		fileComponent("file:a.go", "a.go"),
		funcComponent("fn:a.go:Alpha:1", "Alpha", "a.go", 1),
		funcComponent("fn:a.go:beta:10", "beta", "a.go", 10),
	}, nil))
	require.NoError(t, s.UpsertFile(ctx, "vendor/b.py", []types.Component{
		fileComponent("file:vendor/b.py", "vendor/b.py"),
		{
			ID: "fn:vendor/b.py:gamma:1", Name: "gamma", Kind: types.KindFunction,
			Language: "python", FilePath: "vendor/b.py", ParentID: "file:vendor/b.py",
			Location:   types.Location{StartLine: 1, EndLine: 2},
			Capability: types.CapabilityBlock{ParsingLevel: types.LevelSemantic, Backend: "tree-sitter"},
		},
	}, nil))
}

func TestStore_SearchFiltersByKindAndLanguage(t *testing.T) {
	s := newTestStore()
	seedSearchFixtures(t, s)

	result, err := s.Search(context.Background(), SearchCriteria{Kinds: []types.ComponentKind{types.KindFunction}, Languages: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	for _, c := range result.Items {
		assert.Equal(t, "go", c.Language)
		assert.Equal(t, types.KindFunction, c.Kind)
	}
}

func TestStore_SearchPathExclude(t *testing.T) {
	s := newTestStore()
	seedSearchFixtures(t, s)

	result, err := s.Search(context.Background(), SearchCriteria{Kinds: []types.ComponentKind{types.KindFunction}, PathExclude: "vendor/"})
	require.NoError(t, err)
	for _, c := range result.Items {
		assert.NotContains(t, c.FilePath, "vendor/")
	}
}

func TestStore_SearchNameRegex(t *testing.T) {
	s := newTestStore()
	seedSearchFixtures(t, s)

	result, err := s.Search(context.Background(), SearchCriteria{NameRegex: "^[A-Z]"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Alpha", result.Items[0].Name)
}

func TestStore_SearchDeterministicOrderAndPagination(t *testing.T) {
	s := newTestStore()
	seedSearchFixtures(t, s)

	full, err := s.Search(context.Background(), SearchCriteria{})
	require.NoError(t, err)
	for i := 1; i < len(full.Items); i++ {
		assert.LessOrEqual(t, full.Items[i-1].ID, full.Items[i].ID, "results must be ordered by ID ascending")
	}

	page, err := s.Search(context.Background(), SearchCriteria{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, full.Items[1].ID, page.Items[0].ID)
	assert.True(t, page.HasMore || page.Offset+page.Limit >= full.Total)
}

func TestStore_SearchInvalidRegexErrors(t *testing.T) {
	s := newTestStore()
	seedSearchFixtures(t, s)

	_, err := s.Search(context.Background(), SearchCriteria{NameRegex: "("})
	assert.Error(t, err)
}
