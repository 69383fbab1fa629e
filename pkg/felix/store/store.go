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

// Package store implements the graph store (C4): durable, indexed
// storage for components, relationships, and embeddings over a
// CozoDB-backed Datalog engine (pkg/felix/cozo).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/felix-ide/felix/pkg/felix/cozo"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// Backend is the minimal Datalog access surface, kept separate from
// Store's typed graph operations so an alternative engine (or a
// remote store) can be swapped in behind the same interface (spec.md
// §3 Ownership: "The graph store exclusively owns component and
// relationship records").
type Backend interface {
	Query(ctx context.Context, script string) (cozo.NamedRows, error)
	Execute(ctx context.Context, script string) error
	Close() error
}

// Config configures an embedded store.
type Config struct {
	// DataDir is where CozoDB persists its data. Defaults to
	// ~/.felix/data/<ProjectID>.
	DataDir string
	// Engine is "rocksdb", "sqlite", or "mem". Defaults to "rocksdb".
	Engine string
	// ProjectID namespaces DataDir when set.
	ProjectID string
}

// dbConn is the subset of *cozo.DB that Store needs, narrowed to an
// interface so tests can substitute an in-memory fake without linking
// the CGO binding.
type dbConn interface {
	Run(script string, params map[string]any) (cozo.NamedRows, error)
	RunReadOnly(script string, params map[string]any) (cozo.NamedRows, error)
	Close() bool
}

// Store is the embedded CozoDB-backed implementation of the graph
// store contract (spec.md §4.4). Writes for a single file are
// serialized per fileId (single-writer-per-file); reads never block on
// a write in flight, since CozoDB snapshots each transaction.
type Store struct {
	db dbConn
	mu sync.RWMutex // guards closed: shared by Query/Execute, exclusive in Close

	fileLocks   map[string]*sync.Mutex
	fileLocksMu sync.Mutex

	closed bool
}

// Open creates the data directory if needed and opens the embedded
// CozoDB instance (teacher's NewEmbeddedBackend, generalized off
// cie-specific naming).
func Open(cfg Config) (*Store, error) {
	if cfg.Engine == "" {
		cfg.Engine = "rocksdb"
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("store: get home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".felix", "data")
		if cfg.ProjectID != "" {
			cfg.DataDir = filepath.Join(cfg.DataDir, cfg.ProjectID)
		}
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := cozo.Open(cfg.Engine, cfg.DataDir, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open cozodb: %w", err)
	}

	s := &Store{db: db, fileLocks: make(map[string]*sync.Mutex)}
	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return s, nil
}

// Query executes a read-only Datalog script.
func (s *Store) Query(ctx context.Context, script string) (cozo.NamedRows, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return cozo.NamedRows{}, fmt.Errorf("store: closed")
	}
	if err := ctx.Err(); err != nil {
		return cozo.NamedRows{}, err
	}
	return s.db.RunReadOnly(script, nil)
}

// Execute runs a Datalog mutation.
func (s *Store) Execute(ctx context.Context, script string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store: closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.db.Run(script, nil)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.db.Close()
	return nil
}

func (s *Store) fileLock(fileID string) *sync.Mutex {
	s.fileLocksMu.Lock()
	defer s.fileLocksMu.Unlock()
	l, ok := s.fileLocks[fileID]
	if !ok {
		l = &sync.Mutex{}
		s.fileLocks[fileID] = l
	}
	return l
}

// UpsertFile atomically replaces every component and relationship
// belonging to fileID with the given sets (spec.md §4.4 "atomic
// replace of everything belonging to fileId"). Concurrent UpsertFile
// calls for different files proceed in parallel; same-file calls
// serialize (single-writer-per-file, spec.md §5).
func (s *Store) UpsertFile(ctx context.Context, fileID string, components []types.Component, relationships []types.Relationship) error {
	lock := s.fileLock(fileID)
	lock.Lock()
	defer lock.Unlock()

	script, err := buildUpsertScript(fileID, components, relationships)
	if err != nil {
		return fmt.Errorf("store: build upsert script: %w", err)
	}
	return s.Execute(ctx, script)
}

// GetComponent fetches one component by ID, returning (zero, false)
// if absent.
func (s *Store) GetComponent(ctx context.Context, id string) (types.Component, bool, error) {
	script := fmt.Sprintf(`
?[id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json] :=
	*felix_component{id, name, kind, language, file_path, parent_id, start_line, start_col, end_line, end_col, parsing_level, backend, metadata_json},
	id = %s
`, quote(id))
	rows, err := s.Query(ctx, script)
	if err != nil {
		return types.Component{}, false, err
	}
	if len(rows.Rows) == 0 {
		return types.Component{}, false, nil
	}
	c, err := componentFromRow(rows.Rows[0])
	return c, err == nil, err
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
