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
	"sort"
	"sync"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// Registry maps languages to their registered backends and resolves
// detect/best queries against them (spec.md §4.1).
type Registry struct {
	mu       sync.RWMutex
	backends map[string][]Backend // language -> backends in registration order; readers sort a copy
}

// NewRegistry returns an empty registry. Register backends with
// Register before calling Resolve/Best.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string][]Backend)}
}

// Register adds a backend under language. A backend may be registered
// under more than one language (e.g. a shared JS/TS backend).
func (r *Registry) Register(language string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[language] = append(r.backends[language], b)
}

// Parsers returns every backend registered for language, ordered by
// descending priority then alphabetical Name (spec.md §4.1 tie-break).
func (r *Registry) Parsers(language string) []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedCopy(r.backends[language])
}

func sortedCopy(in []Backend) []Backend {
	out := make([]Backend, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Best returns the highest-tier registered backend for language, or
// the ok=false zero value if none are registered. Among equal-tier
// backends it defers to the Priority/Name tie-break from Parsers.
func (r *Registry) Best(language string) (Backend, bool) {
	candidates := r.Parsers(language)
	if len(candidates) == 0 {
		return Backend{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if tierRank(c.Tier) > tierRank(best.Tier) {
			best = c
		}
	}
	return best, true
}

func tierRank(level types.ParsingLevel) int {
	switch level {
	case types.LevelSemantic:
		return 2
	case types.LevelStructural:
		return 1
	default:
		return 0
	}
}

// Resolve runs DetectLanguage and returns the best backend for the
// detected language plus the Detection that produced it. If no
// language was detected or no backend is registered for it, it
// returns the detectors-only fallback (spec.md §4.1 "Failure mode").
func (r *Registry) Resolve(path string, contentSample []byte, override string) (Backend, Detection) {
	d := DetectLanguage(path, contentSample, override)
	if d.Language != "" {
		if b, ok := r.Best(d.Language); ok {
			return b, d
		}
	}
	return DetectorsOnlyBackend(), Detection{Language: d.Language, Method: d.Method}
}
