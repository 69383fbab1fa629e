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

package basic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/types"
)

func TestMarkdownBackend_ExtractsHeadings(t *testing.T) {
	content := []byte("# Title\n\nsome text\n\n## Sub\nmore\n")
	res, err := MarkdownBackend().ParseContent(content, "doc.md", parser.Options{})
	require.NoError(t, err)

	var names []string
	for _, c := range res.Components {
		if c.Kind == types.KindDocSection {
			names = append(names, c.Name)
		}
	}
	assert.Equal(t, []string{"Title", "Sub"}, names)
	assert.Equal(t, types.LevelBasic, res.Capability.ParsingLevel)
}

func TestHTMLBackend_ExtractsHeadings(t *testing.T) {
	content := []byte("<html><body>\n<h1>Welcome</h1>\n<p>hi</p>\n<h2>Details</h2>\n</body></html>")
	res, err := HTMLBackend().ParseContent(content, "page.html", parser.Options{})
	require.NoError(t, err)

	var names []string
	for _, c := range res.Components {
		if c.Kind == types.KindDocSection {
			names = append(names, c.Name)
		}
	}
	assert.Equal(t, []string{"Welcome", "Details"}, names)
}

func TestTextBackend_FileComponentOnly(t *testing.T) {
	res, err := TextBackend().ParseContent([]byte("a\nb\nc\n"), "notes.txt", parser.Options{})
	require.NoError(t, err)
	require.Len(t, res.Components, 1)
	assert.True(t, res.Components[0].IsFile())
}

func TestProtobufBackend_ExtractsServiceAndRPC(t *testing.T) {
	content := []byte(`syntax = "proto3";

service Greeter {
  rpc SayHello (HelloRequest) returns (HelloReply) {}
}
`)
	res, err := ProtobufBackend().ParseContent(content, "greeter.proto", parser.Options{})
	require.NoError(t, err)

	var serviceFound, rpcFound bool
	for _, c := range res.Components {
		if c.Name == "Greeter" {
			serviceFound = true
		}
		if c.Name == "Greeter.SayHello" {
			rpcFound = true
			assert.Equal(t, types.KindMethod, c.Kind)
		}
	}
	assert.True(t, serviceFound)
	assert.True(t, rpcFound)
}
