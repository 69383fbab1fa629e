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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesDocumentedValues(t *testing.T) {
	cfg := Default()
	require.Equal(t, 0.2, cfg.SimilarityThreshold)
	require.Equal(t, 0.2, cfg.PathDemoteAmount)
	require.Equal(t, 0.1, cfg.MinRetention)
	require.Equal(t, 3.0, cfg.RelevanceThreshold)
	require.Equal(t, 500, cfg.MaxDescriptionLength)
	require.Equal(t, 1.5, cfg.ContentWeights.Code)
	require.Equal(t, 0.6, cfg.ContentWeights.Comments)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "felix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("similarityThreshold: 0.35\nminRetention: 0.25\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.35, cfg.SimilarityThreshold)
	require.Equal(t, 0.25, cfg.MinRetention)
	// Untouched fields keep their defaults.
	require.Equal(t, 3.0, cfg.RelevanceThreshold)
	require.Equal(t, 1.5, cfg.ContentWeights.Code)
}
