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

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/types"
)

func stubBackend(name string, tier types.ParsingLevel, priority int) Backend {
	return Backend{
		Name:     name,
		Tier:     tier,
		Priority: priority,
		ParseContent: func(content []byte, path string, opts Options) (types.ParseResult, error) {
			return types.ParseResult{FilePath: path}, nil
		},
	}
}

func TestRegistry_BestPrefersHigherTier(t *testing.T) {
	r := NewRegistry()
	r.Register("go", stubBackend("regex-go", types.LevelStructural, 10))
	r.Register("go", stubBackend("ast-go", types.LevelSemantic, 5))

	best, ok := r.Best("go")
	require.True(t, ok)
	assert.Equal(t, "ast-go", best.Name)
}

func TestRegistry_ParsersTieBreakByNameWhenPriorityEqual(t *testing.T) {
	r := NewRegistry()
	r.Register("go", stubBackend("zparser", types.LevelStructural, 1))
	r.Register("go", stubBackend("aparser", types.LevelStructural, 1))

	parsers := r.Parsers("go")
	require.Len(t, parsers, 2)
	assert.Equal(t, "aparser", parsers[0].Name)
}

func TestRegistry_ResolveFallsBackToDetectorsOnly(t *testing.T) {
	r := NewRegistry()
	b, d := r.Resolve("notes.unknownext", []byte("some prose"), "")
	assert.Equal(t, "detectors-only", b.Name)
	assert.Equal(t, MethodNone, d.Method)
}

func TestRegistry_ResolveUsesBestForDetectedLanguage(t *testing.T) {
	r := NewRegistry()
	r.Register("go", stubBackend("ast-go", types.LevelSemantic, 5))

	b, d := r.Resolve("main.go", nil, "")
	assert.Equal(t, "ast-go", b.Name)
	assert.Equal(t, "go", d.Language)
	assert.Equal(t, MethodExtension, d.Method)
}

func TestDetectorsOnlyBackend_ProducesFileComponent(t *testing.T) {
	b := DetectorsOnlyBackend()
	res, err := b.ParseContent([]byte("line1\nline2\nline3\n"), "notes.unknownext", Options{})
	require.NoError(t, err)
	require.Len(t, res.Components, 1)
	assert.True(t, res.Components[0].IsFile())
	assert.Equal(t, types.LevelBasic, res.Capability.ParsingLevel)
}
