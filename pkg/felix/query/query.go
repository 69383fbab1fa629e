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

// Package query implements the search, discovery, and graph-traversal
// surface a caller uses to find and walk the component/relationship
// graph (spec.md §4.7): vector resolve -> k-NN -> filters -> optional
// KB-scope restriction -> rerank -> projection, plus a discovery pass
// that suggests terms and related concepts, and a family of named BFS
// traversals built on the store's cycle-safe Walk.
package query

import (
	"context"
	"log/slog"

	"github.com/felix-ide/felix/pkg/felix/config"
	"github.com/felix-ide/felix/pkg/felix/embed"
	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// storeAPI is the slice of *store.Store the query surface needs,
// narrowed to an interface so tests can substitute an in-memory index
// without the CGO-backed store (mirrors pkg/felix/resolver's storeAPI).
type storeAPI interface {
	Search(ctx context.Context, criteria store.SearchCriteria) (store.SearchResult, error)
	NearestEmbeddings(ctx context.Context, query []float32, kinds []types.EntityKind, k int, ef int) ([]store.EmbeddingMatch, error)
	GetComponent(ctx context.Context, id string) (types.Component, bool, error)
	Walk(ctx context.Context, startID string, opts store.WalkOptions) (store.WalkResult, error)
	Neighbors(ctx context.Context, id string, dir store.Direction, kinds []types.RelationshipKind, limit int) ([]types.Relationship, error)
}

// Searcher is the query surface over one project's graph store.
type Searcher struct {
	store    storeAPI
	embedder embed.Provider
	cfg      config.Config
	logger   *slog.Logger
}

// New builds a Searcher. embedder may be nil; Search then requires
// callers to pass a pre-computed vector via SearchOptions.QueryVector
// instead of SearchOptions.Query.
func New(st storeAPI, embedder embed.Provider, cfg config.Config, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{store: st, embedder: embedder, cfg: cfg, logger: logger}
}

// OutputView selects how much of a matched component Search projects
// into its response (spec.md §4.7 Search API outputView).
type OutputView string

const (
	ViewIDs       OutputView = "ids"
	ViewNames     OutputView = "names"
	ViewFiles     OutputView = "files"
	ViewFileLines OutputView = "files+lines"
	ViewFull      OutputView = "full"
)
