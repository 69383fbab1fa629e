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

	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// defaultTraversalDepth bounds the named traversal helpers below when
// a caller doesn't supply one; store.Walk requires an explicit depth
// cap (spec.md §4.7 "an explicit depth cap").
const defaultTraversalDepth = 8

// GetCallers walks "calls" edges backwards: every component that
// calls id, transitively up to depth hops.
func (s *Searcher) GetCallers(ctx context.Context, id string, depth int) (store.WalkResult, error) {
	return s.store.Walk(ctx, id, store.WalkOptions{
		Depth: orDefaultDepth(depth), Direction: store.DirIn,
		Kinds: []types.RelationshipKind{types.RelCalls},
	})
}

// GetCallees walks "calls" edges forwards: everything id calls,
// transitively up to depth hops.
func (s *Searcher) GetCallees(ctx context.Context, id string, depth int) (store.WalkResult, error) {
	return s.store.Walk(ctx, id, store.WalkOptions{
		Depth: orDefaultDepth(depth), Direction: store.DirOut,
		Kinds: []types.RelationshipKind{types.RelCalls},
	})
}

// GetInheritanceChain walks "extends"/"implements" edges forwards:
// id's ancestor classes/interfaces, transitively up to depth hops.
func (s *Searcher) GetInheritanceChain(ctx context.Context, id string, depth int) (store.WalkResult, error) {
	return s.store.Walk(ctx, id, store.WalkOptions{
		Depth: orDefaultDepth(depth), Direction: store.DirOut,
		Kinds: []types.RelationshipKind{types.RelExtends, types.RelImplements},
	})
}

// GetDataFlow walks "reads_from"/"writes_to"/"sends_to"/"yields_to"
// edges in both directions: the data-flow neighborhood around id, up
// to depth hops.
func (s *Searcher) GetDataFlow(ctx context.Context, id string, depth int) (store.WalkResult, error) {
	return s.store.Walk(ctx, id, store.WalkOptions{
		Depth: orDefaultDepth(depth), Direction: store.DirBoth,
		Kinds: []types.RelationshipKind{
			types.RelReadsFrom, types.RelWritesTo, types.RelSendsTo, types.RelYieldsTo,
		},
	})
}

// GetDependencies walks "imports"/"uses"/"instantiates" edges
// forwards: what id depends on, transitively up to depth hops.
func (s *Searcher) GetDependencies(ctx context.Context, id string, depth int) (store.WalkResult, error) {
	return s.store.Walk(ctx, id, store.WalkOptions{
		Depth: orDefaultDepth(depth), Direction: store.DirOut,
		Kinds: []types.RelationshipKind{types.RelImports, types.RelUses, types.RelInstantiates},
	})
}

// GetDependents walks "imports"/"uses"/"instantiates" edges
// backwards: what depends on id, transitively up to depth hops.
func (s *Searcher) GetDependents(ctx context.Context, id string, depth int) (store.WalkResult, error) {
	return s.store.Walk(ctx, id, store.WalkOptions{
		Depth: orDefaultDepth(depth), Direction: store.DirIn,
		Kinds: []types.RelationshipKind{types.RelImports, types.RelUses, types.RelInstantiates},
	})
}

func orDefaultDepth(depth int) int {
	if depth <= 0 {
		return defaultTraversalDepth
	}
	return depth
}
