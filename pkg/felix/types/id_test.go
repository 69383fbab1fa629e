// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentID_Deterministic(t *testing.T) {
	id1 := ComponentID("src/foo.go", "Foo", KindFunction, 10)
	id2 := ComponentID("src/foo.go", "Foo", KindFunction, 10)
	assert.Equal(t, id1, id2)
	assert.True(t, strings.HasPrefix(id1, "function:"))
}

func TestComponentID_LineDisambiguates(t *testing.T) {
	id1 := ComponentID("src/foo.go", "Foo", KindFunction, 10)
	id2 := ComponentID("src/foo.go", "Foo", KindFunction, 20)
	assert.NotEqual(t, id1, id2)
}

func TestComponentID_NormalizesPath(t *testing.T) {
	id1 := ComponentID("./src/foo.go", "Foo", KindFunction, 10)
	id2 := ComponentID("src/foo.go", "Foo", KindFunction, 10)
	assert.Equal(t, id1, id2)
}

func TestFileComponentID_LongPathHashes(t *testing.T) {
	short := FileComponentID("src/foo.go")
	assert.Equal(t, "file:src/foo.go", short)

	long := strings.Repeat("a/", 200) + "foo.go"
	id := FileComponentID(long)
	assert.True(t, strings.HasPrefix(id, "file:"))
	assert.Less(t, len(id), len(long))
}

func TestRelationshipID_Deterministic(t *testing.T) {
	id1 := RelationshipID("a", "b", RelCalls, "12:3")
	id2 := RelationshipID("a", "b", RelCalls, "12:3")
	assert.Equal(t, id1, id2)

	id3 := RelationshipID("a", "b", RelCalls, "99:1")
	assert.NotEqual(t, id1, id3)
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"./a/b.go":  "a/b.go",
		"/a/b.go":   "a/b.go",
		"a//b.go":   "a/b.go",
		"a/b.go":    "a/b.go",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), "input %q", in)
	}
}
