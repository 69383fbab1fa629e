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

package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

func TestGoBackend_ExtractsFunctionsAndCalls(t *testing.T) {
	content := []byte(`package main

import "fmt"

func helper() {
	fmt.Println("hi")
}

func main() {
	helper()
}
`)
	backend := GoBackend()
	result, err := backend.ParseContent(content, "main.go", parser.Options{})
	require.NoError(t, err)

	var names []string
	var mainID string
	for _, c := range result.Components {
		names = append(names, c.Name)
		if c.Name == "main" {
			mainID = c.ID
		}
	}
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")

	var callEdge *types.Relationship
	for i := range result.Relationships {
		if result.Relationships[i].Kind == types.RelCalls && result.Relationships[i].SourceID == mainID {
			callEdge = &result.Relationships[i]
			break
		}
	}
	require.NotNil(t, callEdge, "expected a calls edge from main to helper")
	assert.False(t, callEdge.Metadata.NeedsResolution, "helper is declared in the same file, so the call should resolve locally")
}

func TestGoBackend_MethodNameIncludesReceiver(t *testing.T) {
	content := []byte(`package main

type Server struct{}

func (s *Server) Start() {}
`)
	backend := GoBackend()
	result, err := backend.ParseContent(content, "server.go", parser.Options{})
	require.NoError(t, err)

	var found bool
	for _, c := range result.Components {
		if c.Name == "Server.Start" {
			found = true
			assert.Equal(t, types.KindMethod, c.Kind)
		}
	}
	assert.True(t, found, "expected a method component named Server.Start")
}

func TestGoBackend_DeterministicIDs(t *testing.T) {
	content := []byte("package main\n\nfunc Foo() {}\n")
	backend := GoBackend()
	r1, err := backend.ParseContent(content, "a.go", parser.Options{})
	require.NoError(t, err)
	r2, err := backend.ParseContent(content, "a.go", parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, r1.Components[1].ID, r2.Components[1].ID)
}

func TestGoBackend_CanParseFile(t *testing.T) {
	backend := GoBackend()
	assert.True(t, backend.CanParseFile("x.go"))
	assert.False(t, backend.CanParseFile("x.py"))
}
