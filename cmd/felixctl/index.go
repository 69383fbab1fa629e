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

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/schollz/progressbar/v3"

	"github.com/felix-ide/felix/internal/bootstrap"
	cliErrors "github.com/felix-ide/felix/internal/errors"
	"github.com/felix-ide/felix/internal/output"
	"github.com/felix-ide/felix/internal/ui"
	"github.com/felix-ide/felix/pkg/felix/embed"
	"github.com/felix-ide/felix/pkg/felix/ingest"
)

// runIndex executes the 'index' command: walk a directory, parse every
// supported file, and upsert the result into the project's graph.
//
// Flags:
//   - --embed: also generate and store embeddings for indexable components
//   - --embedding-provider: provider name for --embed (default: mock)
//   - --exclude: extra doublestar exclude glob, repeatable
//   - --max-file-size: skip files larger than this many bytes
func runIndex(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	withEmbed := fs.Bool("embed", false, "Also generate and store embeddings")
	embeddingProvider := fs.String("embedding-provider", "mock", "Embedding provider: mock, nomic, ollama, openai, llamacpp")
	excludes := fs.StringSlice("exclude", nil, "Extra exclude glob (doublestar syntax), repeatable")
	maxFileSize := fs.Int64("max-file-size", 0, "Skip files larger than this many bytes (0 = default 5MiB)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: felixctl index [path] [options]

Indexes a repository into the project's graph store. path defaults to ".".

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	root := "."
	if rest := fs.Args(); len(rest) > 0 {
		root = rest[0]
	}

	pid := projectID(globals)
	st, err := bootstrap.OpenProject(bootstrap.ProjectConfig{
		ProjectID: pid,
		DataDir:   globals.DataDir,
		Engine:    globals.Engine,
	}, nil)
	if err != nil {
		cliErrors.FatalError(cliErrors.NewNotFoundError(
			"Project not found",
			err.Error(),
			"run 'felixctl init' first",
		), globals.JSON)
	}
	defer func() { _ = st.Close() }()

	cfg := ingest.Config{
		RootDir:      root,
		ExcludeGlobs: *excludes,
		MaxFileSize:  *maxFileSize,
	}

	if *withEmbed {
		provider, err := embed.NewProvider(*embeddingProvider, nil)
		if err != nil {
			cliErrors.FatalError(cliErrors.NewConfigError(
				"Cannot create embedding provider",
				err.Error(),
				"pass a supported --embedding-provider or unset --embed",
				err,
			), globals.JSON)
		}
		cfg.Embedder = embed.NewGenerator(provider, 4, nil)
		cfg.ModelVersion = *embeddingProvider
	}

	progressCfg := NewProgressConfig(globals)
	var bar *progressbar.ProgressBar
	cfg.Progress = func(processed, total int, path string) {
		if bar == nil {
			bar = NewProgressBar(progressCfg, int64(total), "indexing")
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	pipeline := ingest.New(st, nil)
	result, err := pipeline.Run(context.Background(), cfg)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		cliErrors.FatalError(cliErrors.NewParseError(
			"Indexing failed",
			err.Error(),
			"check the path and try again",
			err,
		), globals.JSON)
	}

	if globals.JSON {
		_ = output.JSON(result)
		return
	}

	ui.Successf("Indexed %d files (%d failed)", result.FilesIndexed, result.FilesFailed)
	ui.Infof("  components:    %d", result.ComponentsWritten)
	ui.Infof("  relationships: %d", result.RelationsWritten)
	if *withEmbed {
		ui.Infof("  embeddings:    %d", result.EmbeddingsWritten)
	}
	for reason, count := range result.SkipReasons {
		ui.Infof("  skipped (%s): %d", reason, count)
	}
}
