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

// Package config loads the recognized engine options (spec.md §6) from
// an optional YAML document, applying the documented defaults for
// anything the document omits. A zero-value Config is never used
// directly; callers always start from Default() or Load().
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ContentWeights maps a content-type label to its relevance weight for
// the context optimizer (spec.md §4.8, stage 1).
type ContentWeights struct {
	Code          float64 `yaml:"code"`
	Documentation float64 `yaml:"documentation"`
	Relationships float64 `yaml:"relationships"`
	Metadata      float64 `yaml:"metadata"`
	Comments      float64 `yaml:"comments"`
}

// Config holds every recognized option from spec.md §6, each with the
// documented default.
type Config struct {
	// SimilarityThreshold is the cutoff for semantic search (default 0.2).
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	// PathDemotePatterns are regexes demoting matching results during
	// rerank (default: coverage, vendored report directories,
	// node_modules-like).
	PathDemotePatterns []string `yaml:"pathDemotePatterns"`
	// PathDemoteAmount is the additive rerank penalty (default 0.2).
	PathDemoteAmount float64 `yaml:"pathDemoteAmount"`
	// MinRetention is the optimizer's floor fraction of the original
	// set kept regardless of score (default 0.1).
	MinRetention float64 `yaml:"minRetention"`
	// RelevanceThreshold is the optimizer's drop cutoff (default 3.0).
	RelevanceThreshold float64 `yaml:"relevanceThreshold"`
	// MaxDescriptionLength bounds a generic item's description before
	// truncation (default 500).
	MaxDescriptionLength int `yaml:"maxDescriptionLength"`
	// ContentWeights are the optimizer's per-content-type weights.
	ContentWeights ContentWeights `yaml:"contentWeights"`
	// MaxOpenFiles bounds concurrent file descriptors during ingestion.
	MaxOpenFiles int `yaml:"maxOpenFiles"`
	// EmbeddingConcurrency bounds concurrent embedding requests.
	EmbeddingConcurrency int `yaml:"embeddingConcurrency"`
	// EnableIncremental reuses a file's last parse tree when its
	// backend supports it.
	EnableIncremental bool `yaml:"enableIncremental"`
}

// Default returns the documented option defaults (spec.md §6).
func Default() Config {
	return Config{
		SimilarityThreshold: 0.2,
		PathDemotePatterns: []string{
			`(^|/)coverage(/|$)`,
			`(^|/)node_modules(/|$)`,
			`(^|/)vendor(/|$)`,
			`(^|/)dist(/|$)`,
			`(^|/)build(/|$)`,
			`(^|/).*\.report\.(html|json)$`,
		},
		PathDemoteAmount:      0.2,
		MinRetention:          0.1,
		RelevanceThreshold:    3.0,
		MaxDescriptionLength:  500,
		ContentWeights: ContentWeights{
			Code:          1.5,
			Documentation: 1.2,
			Relationships: 1.0,
			Metadata:      0.8,
			Comments:      0.6,
		},
		MaxOpenFiles:         256,
		EmbeddingConcurrency: 4,
		EnableIncremental:    false,
	}
}

// Load reads a YAML document at path and overlays it onto Default().
// An empty or missing path is not an error; it returns the defaults
// unchanged. (catalog.Load differs: only an empty dir yields its
// built-in seed, and a missing dir is an error.)
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
