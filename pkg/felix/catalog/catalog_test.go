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

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_KnowsCommonStdlib(t *testing.T) {
	c := Default()
	assert.True(t, c.IsStdlib("go", "fmt"))
	assert.True(t, c.IsStdlib("go", "net/http/httptest"), "subpackage of a cataloged root")
	assert.False(t, c.IsStdlib("go", "github.com/pkg/errors"))
	assert.True(t, c.IsStdlib("python", "os"))
	assert.False(t, c.IsStdlib("ruby", "os"), "unseeded language has no entries")
}

func TestIsVendored(t *testing.T) {
	c := Default()
	assert.True(t, c.IsVendored("go", "project/vendor/github.com/x/y"))
	assert.False(t, c.IsVendored("go", "project/internal/y"))
}

func TestLoad_MergesOverDefault(t *testing.T) {
	dir := t.TempDir()
	content := []byte("language: go\nstdlib:\n  - acme/internal/stdshim\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.yaml"), content, 0o644))

	c, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, c.IsStdlib("go", "fmt"), "seed entries survive a merge")
	assert.True(t, c.IsStdlib("go", "acme/internal/stdshim"), "loaded entries are added")
}

func TestLoad_EmptyDirReturnsSeed(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.True(t, c.IsStdlib("go", "strings"))
}

func TestLoad_MissingLanguageFieldErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("stdlib: [fmt]\n"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}
