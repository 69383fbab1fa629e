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

// Package ingest orchestrates a repository walk into the parser
// registry and the graph store: for each file it resolves a backend,
// parses the content, and upserts the resulting components and
// relationships. This is the standalone local pipeline; it never talks
// to anything beyond the filesystem and the embedded store.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/felix-ide/felix/pkg/felix/embed"
	"github.com/felix-ide/felix/pkg/felix/parser"
	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// embeddableKinds are the component kinds worth embedding for semantic
// search: the units a developer actually searches for by meaning.
var embeddableKinds = map[types.ComponentKind]bool{
	types.KindFunction:    true,
	types.KindMethod:      true,
	types.KindConstructor: true,
	types.KindClass:       true,
	types.KindStruct:      true,
	types.KindInterface:   true,
}

// defaultExcludes are skipped without the caller needing to ask.
var defaultExcludes = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/.felix/**",
	"**/dist/**",
	"**/build/**",
}

// defaultMaxFileSize bounds what a single file parse will attempt.
// The store applies no size limit on write; internal/contract.SoftLimitBytes
// bounds only scripts submitted through felixctl query.
const defaultMaxFileSize = 5 << 20 // 5 MiB

// Config controls one ingestion run.
type Config struct {
	// RootDir is the repository root to walk.
	RootDir string
	// ExcludeGlobs are extra doublestar patterns layered on top of
	// defaultExcludes.
	ExcludeGlobs []string
	// MaxFileSize skips any file larger than this many bytes. Zero
	// uses defaultMaxFileSize; negative disables the limit.
	MaxFileSize int64
	// Registry supplies the backends to resolve against. A nil
	// Registry uses DefaultRegistry().
	Registry *parser.Registry
	// IncludeCodeText requests that parsed components carry their
	// source text (spec.md §4.2 Options.IncludeCodeText). Forced to
	// true when Embedder is set, since embedding needs the text.
	IncludeCodeText bool
	// Embedder, if set, embeds every function/method/class-shaped
	// component discovered during the run and stores the result
	// (spec.md §4.6). ModelVersion is stamped on each row.
	Embedder     *embed.Generator
	ModelVersion string
	// Progress, if set, is called once per file after it has been
	// processed (parsed and upserted, or skipped).
	Progress func(processed, total int, path string)
}

// FileResult is the per-file outcome of one ingestion run, suitable
// for a --json report.
type FileResult struct {
	Path          string `json:"path"`
	Language      string `json:"language"`
	Backend       string `json:"backend"`
	Components    int    `json:"components"`
	Relationships int    `json:"relationships"`
	Diagnostics   int    `json:"diagnostics"`
	Error         string `json:"error,omitempty"`
}

// Result summarizes an ingestion run (spec.md §4.4 run metadata).
type Result struct {
	FilesWalked       int            `json:"filesWalked"`
	FilesIndexed      int            `json:"filesIndexed"`
	FilesFailed       int            `json:"filesFailed"`
	ComponentsWritten int            `json:"componentsWritten"`
	RelationsWritten  int            `json:"relationsWritten"`
	EmbeddingsWritten int            `json:"embeddingsWritten,omitempty"`
	SkipReasons       map[string]int `json:"skipReasons"`
	Duration          time.Duration  `json:"duration"`
	Files             []FileResult   `json:"files,omitempty"`
}

// Pipeline indexes a repository into a graph store.
type Pipeline struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a Pipeline writing into st. A nil logger uses
// slog.Default().
func New(st *store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: st, logger: logger}
}

// Run walks cfg.RootDir, parses every file a registered backend
// claims, and upserts the results file-by-file. Individual file
// failures are recorded in the result rather than aborting the run
// (spec.md §4.2 contract guarantee c: diagnostics never abort).
func (p *Pipeline) Run(ctx context.Context, cfg Config) (Result, error) {
	start := time.Now()

	reg := cfg.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	maxSize := cfg.MaxFileSize
	if maxSize == 0 {
		maxSize = defaultMaxFileSize
	}
	excludes := append(append([]string{}, defaultExcludes...), cfg.ExcludeGlobs...)
	if cfg.Embedder != nil {
		cfg.IncludeCodeText = true
	}

	paths, skipReasons, err := walk(cfg.RootDir, excludes, maxSize)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: walk: %w", err)
	}

	result := Result{SkipReasons: skipReasons}
	result.FilesWalked = len(paths)

	for i, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fullPath := filepath.Join(cfg.RootDir, relPath)
		fr, embedded := p.indexFile(ctx, reg, cfg, fullPath, relPath)
		result.Files = append(result.Files, fr)

		if fr.Error != "" {
			result.FilesFailed++
			p.logger.Warn("ingest.file.error", "path", relPath, "err", fr.Error)
		} else {
			result.FilesIndexed++
			result.ComponentsWritten += fr.Components
			result.RelationsWritten += fr.Relationships
			result.EmbeddingsWritten += embedded
		}

		if cfg.Progress != nil {
			cfg.Progress(i+1, len(paths), relPath)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (p *Pipeline) indexFile(ctx context.Context, reg *parser.Registry, cfg Config, fullPath, relPath string) (FileResult, int) {
	content, err := os.ReadFile(fullPath) //nolint:gosec // G304: fullPath built from a walked repo root
	if err != nil {
		return FileResult{Path: relPath, Error: err.Error()}, 0
	}

	sample := content
	if len(sample) > 512 {
		sample = sample[:512]
	}
	backend, detection := reg.Resolve(relPath, sample, "")

	parseResult, err := backend.ParseContent(content, types.NormalizePath(relPath), parser.Options{
		IncludeCodeText: cfg.IncludeCodeText,
	})
	if err != nil {
		return FileResult{Path: relPath, Language: detection.Language, Backend: backend.Name, Error: err.Error()}, 0
	}

	fileID := types.NormalizePath(relPath)
	if err := p.store.UpsertFile(ctx, fileID, parseResult.Components, parseResult.Relationships); err != nil {
		return FileResult{Path: relPath, Language: detection.Language, Backend: backend.Name, Error: fmt.Sprintf("store: %v", err)}, 0
	}

	embedded := 0
	if cfg.Embedder != nil {
		embedded = p.embedComponents(ctx, cfg, parseResult.Components)
	}

	return FileResult{
		Path:          relPath,
		Language:      parseResult.Language,
		Backend:       backend.Name,
		Components:    len(parseResult.Components),
		Relationships: len(parseResult.Relationships),
		Diagnostics:   len(parseResult.Diagnostics),
	}, embedded
}

// embedComponents embeds every embeddable component that has source
// text attached, skipping ones whose content hash is unchanged
// (handled inside Generator.EmbedBatch via the store's HashLookup).
func (p *Pipeline) embedComponents(ctx context.Context, cfg Config, components []types.Component) int {
	var reqs []embed.Request
	for _, c := range components {
		if !embeddableKinds[c.Kind] || c.CodeText == "" {
			continue
		}
		reqs = append(reqs, embed.Request{
			EntityID:    c.ID,
			EntityKind:  types.EntityKind(c.Kind),
			Text:        c.CodeText,
			ContentHash: strconv.FormatUint(xxhash.Sum64String(c.CodeText), 16),
		})
	}
	if len(reqs) == 0 {
		return 0
	}

	results, err := cfg.Embedder.EmbedBatch(ctx, p.store, reqs)
	if err != nil {
		p.logger.Warn("ingest.embed.batch_error", "err", err)
		return 0
	}

	written := 0
	for _, r := range results {
		if r.Skipped || r.Err != nil || r.Vector == nil {
			continue
		}
		err := p.store.StoreEmbedding(ctx, types.Embedding{
			EntityID:     r.EntityID,
			EntityKind:   r.EntityKind,
			Vector:       r.Vector,
			ModelVersion: cfg.ModelVersion,
			ContentHash:  r.ContentHash,
		})
		if err != nil {
			p.logger.Warn("ingest.embed.store_error", "entity_id", r.EntityID, "err", err)
			continue
		}
		written++
	}
	return written
}

// walk collects every regular file under root not matched by an
// exclude glob and not larger than maxSize, relative to root.
func walk(root string, excludeGlobs []string, maxSize int64) ([]string, map[string]int, error) {
	var paths []string
	skipReasons := make(map[string]int)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			skipReasons["walk_error"]++
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if relPath == "." {
			return nil
		}
		normalized := filepath.ToSlash(relPath)

		if d.IsDir() {
			if matchesAny(normalized, excludeGlobs) {
				skipReasons["excluded_dir"]++
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(normalized, excludeGlobs) {
			skipReasons["excluded"]++
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if maxSize > 0 && info.Size() > maxSize {
			skipReasons["too_large"]++
			return nil
		}
		if info.Size() == 0 {
			skipReasons["empty"]++
			return nil
		}

		paths = append(paths, normalized)
		return nil
	})
	return paths, skipReasons, err
}

func matchesAny(path string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return false
}
