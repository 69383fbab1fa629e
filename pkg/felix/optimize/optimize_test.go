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

package optimize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/config"
	"github.com/felix-ide/felix/pkg/felix/types"
)

func TestRun_ScoresNameMatchesHigherThanBodyMatches(t *testing.T) {
	items := []Item{
		{ID: "a", Name: "ParseConfig", Kind: "function", Path: "a.go", ContentType: ContentCode, Text: "func ParseConfig() {}"},
		{ID: "b", Name: "unrelated", Kind: "function", Path: "b.go", ContentType: ContentCode, Text: "func unrelated() { parseConfig() }"},
	}
	opts := config.Default()
	opts.RelevanceThreshold = 0.5
	result := Run(Input{Query: "ParseConfig", Items: items, Options: opts})
	require.Len(t, result.OptimizedData, 2)
	require.Equal(t, "ParseConfig", result.OptimizedData[0].Name)
}

func TestRun_RetainsMinimumFractionEvenBelowThreshold(t *testing.T) {
	items := make([]Item, 10)
	for i := range items {
		items[i] = Item{ID: string(rune('a' + i)), Name: "noise" + string(rune('a'+i)), Kind: "function", Path: "x.go", ContentType: ContentCode, Text: "func noise() {}"}
	}
	opts := config.Default()
	opts.RelevanceThreshold = 9999 // nothing clears this on its own
	opts.MinRetention = 0.2
	result := Run(Input{Query: "nothing matches this at all", Items: items, Options: opts})
	require.GreaterOrEqual(t, len(result.OptimizedData), 2)
}

func TestRun_DedupesByNameKindPath(t *testing.T) {
	items := []Item{
		{ID: "a", Name: "Foo", Kind: "function", Path: "a.go", ContentType: ContentCode, Text: "func Foo() {}"},
		{ID: "a-dup", Name: "Foo", Kind: "function", Path: "a.go", ContentType: ContentCode, Text: "func Foo() {}"},
	}
	result := Run(Input{Query: "Foo", Items: items, Options: config.Default()})
	require.Len(t, result.OptimizedData, 1)
}

func TestRun_DropsRelationshipsWhoseEndpointsWereDropped(t *testing.T) {
	kept := Item{ID: "keep", Name: "Keep", Kind: "function", Path: "a.go", ContentType: ContentCode, Text: "func Keep() {}"}
	dropped := Item{ID: "drop", Name: "zzz-noise", Kind: "function", Path: "b.go", ContentType: ContentCode, Text: "func zzz() {}"}
	opts := config.Default()
	opts.RelevanceThreshold = 1
	opts.MinRetention = 0

	result := Run(Input{
		Query: "Keep",
		Items: []Item{kept, dropped},
		Relationships: []types.Relationship{
			{ID: "r1", SourceID: "keep", TargetID: "drop", Kind: types.RelCalls},
		},
		Options: opts,
	})
	require.Empty(t, result.Relationships)
	require.Equal(t, 1, result.RelationshipsRemoved)
}

func TestRun_ShrinksCodeToSkeletonWhenOverBudget(t *testing.T) {
	longBody := "func Big() {\n" + strings.Repeat("\tdoWork()\n", 200) + "}"
	items := []Item{{ID: "a", Name: "Big", Kind: "function", Path: "a.go", ContentType: ContentCode, Text: longBody}}
	result := Run(Input{Query: "Big", Items: items, TokenBudget: 20, Options: config.Default()})
	require.Contains(t, result.StrategiesApplied, "skeletonize_code")
	require.True(t, result.OptimizedData[0].Skeletonized)
	require.Less(t, result.FinalTokens, result.OriginalTokens)
}

func TestRun_NoBudgetReturnsEverythingUnshrunk(t *testing.T) {
	items := []Item{{ID: "a", Name: "Foo", Kind: "function", Path: "a.go", ContentType: ContentCode, Text: "func Foo() { return }"}}
	result := Run(Input{Query: "Foo", Items: items, Options: config.Default()})
	require.Empty(t, result.StrategiesApplied)
	require.False(t, result.OptimizedData[0].Skeletonized)
}

func TestRun_WarnsWhenMoreThanTenPercentRemoved(t *testing.T) {
	items := make([]Item, 20)
	for i := range items {
		items[i] = Item{ID: string(rune('a' + i)), Name: "noise", Kind: "function", Path: "x.go", ContentType: ContentCode, Text: "func noise() {}"}
	}
	items[0] = Item{ID: "z", Name: "target", Kind: "function", Path: "y.go", ContentType: ContentCode, Text: "func target() {}"}

	opts := config.Default()
	opts.RelevanceThreshold = 1.5
	opts.MinRetention = 0.05
	result := Run(Input{Query: "target", Items: items, Options: opts})
	require.NotEmpty(t, result.Warnings)
}
