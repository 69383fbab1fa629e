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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/types"
)

func newTestStore() *Store {
	return &Store{db: newFakeDB(), fileLocks: make(map[string]*sync.Mutex)}
}

func fileComponent(id, path string) types.Component {
	return types.Component{
		ID: id, Name: path, Kind: types.KindFile, Language: "go", FilePath: path,
		Location:   types.Location{StartLine: 1, EndLine: 1},
		Capability: types.CapabilityBlock{ParsingLevel: types.LevelBasic, Backend: "detectors-only"},
	}
}

func funcComponent(id, name, path string, startLine int) types.Component {
	return types.Component{
		ID: id, Name: name, Kind: types.KindFunction, Language: "go", FilePath: path,
		ParentID:   "file:" + path,
		Location:   types.Location{StartLine: startLine, EndLine: startLine + 2},
		Capability: types.CapabilityBlock{ParsingLevel: types.LevelStructural, Backend: "tree-sitter"},
	}
}

func TestStore_UpsertFileAndGetComponent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	file := fileComponent("file:a.go", "a.go")
	fn := funcComponent("fn:a.go:helper:1", "helper", "a.go", 1)

	require.NoError(t, s.UpsertFile(ctx, "a.go", []types.Component{file, fn}, nil))

	got, ok, err := s.GetComponent(ctx, fn.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fn.Name, got.Name)
	assert.Equal(t, fn.Kind, got.Kind)
	assert.Equal(t, fn.Location.StartLine, got.Location.StartLine)

	_, ok, err = s.GetComponent(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_UpsertFileReplacesPriorComponents(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	file := fileComponent("file:a.go", "a.go")
	old := funcComponent("fn:a.go:old:1", "old", "a.go", 1)
	require.NoError(t, s.UpsertFile(ctx, "a.go", []types.Component{file, old}, nil))

	fresh := funcComponent("fn:a.go:fresh:1", "fresh", "a.go", 1)
	require.NoError(t, s.UpsertFile(ctx, "a.go", []types.Component{file, fresh}, nil))

	_, ok, err := s.GetComponent(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, ok, "stale component from a prior upsert of the same file must be retracted")

	_, ok, err = s.GetComponent(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_UpsertFileIndependentFilesDoNotInterfere(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	a := funcComponent("fn:a.go:f:1", "f", "a.go", 1)
	b := funcComponent("fn:b.go:g:1", "g", "b.go", 1)
	require.NoError(t, s.UpsertFile(ctx, "a.go", []types.Component{fileComponent("file:a.go", "a.go"), a}, nil))
	require.NoError(t, s.UpsertFile(ctx, "b.go", []types.Component{fileComponent("file:b.go", "b.go"), b}, nil))

	_, ok, err := s.GetComponent(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = s.GetComponent(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_ClosedStoreRejectsOperations(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Close())

	err := s.Execute(context.Background(), "?[x] <- [[1]]")
	assert.Error(t, err)

	_, err = s.Query(context.Background(), "?[x] <- [[1]]")
	assert.Error(t, err)
}

func TestStore_QueryRespectsCancelledContext(t *testing.T) {
	s := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Query(ctx, "?[x] <- [[1]]")
	assert.Error(t, err)
}
