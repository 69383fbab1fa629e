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

	"github.com/felix-ide/felix/internal/bootstrap"
	cliErrors "github.com/felix-ide/felix/internal/errors"
	"github.com/felix-ide/felix/internal/output"
	"github.com/felix-ide/felix/internal/ui"
	"github.com/felix-ide/felix/pkg/felix/config"
	"github.com/felix-ide/felix/pkg/felix/embed"
	"github.com/felix-ide/felix/pkg/felix/optimize"
	"github.com/felix-ide/felix/pkg/felix/query"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// searchReport is the --json shape for the search command.
type searchReport struct {
	Items     []map[string]any       `json:"items"`
	Discovery *query.DiscoveryResult `json:"discovery,omitempty"`
	Packed    *optimize.Result       `json:"packed,omitempty"`
}

// runSearch executes the 'search' command: embed the query, run the
// semantic search pipeline (C7), optionally run discovery over the
// matches and pack them into a token-bounded context (C8).
//
// Flags:
//   - --kind: restrict to a component kind, repeatable
//   - --language: restrict to a language, repeatable
//   - --path-include / --path-exclude: doublestar glob filters
//   - --limit: max results (default 10)
//   - --threshold: minimum cosine similarity (default from --config or 0.2)
//   - --view: ids, names, files, files+lines, or full (default full)
//   - --embedding-provider: provider used to embed the query text
//   - --config: path to a felix.yaml options overlay
//   - --discover: also extract suggested terms and related concepts
//   - --budget: pack results into this many estimated tokens via the context optimizer
func runSearch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	kinds := fs.StringSlice("kind", nil, "Restrict to a component kind, repeatable")
	languages := fs.StringSlice("language", nil, "Restrict to a language, repeatable")
	pathInclude := fs.String("path-include", "", "Doublestar glob a match's file path must satisfy")
	pathExclude := fs.String("path-exclude", "", "Doublestar glob a match's file path must not satisfy")
	limit := fs.Int("limit", 10, "Maximum results")
	threshold := fs.Float64("threshold", 0, "Minimum cosine similarity (0 = use config default)")
	view := fs.String("view", "full", "Output view: ids, names, files, files+lines, full")
	embeddingProvider := fs.String("embedding-provider", "mock", "Embedding provider: mock, nomic, ollama, openai, llamacpp")
	configPath := fs.String("config", "", "Path to a felix.yaml options overlay")
	discover := fs.Bool("discover", false, "Also extract suggested terms and related concepts from the matches")
	budget := fs.Int("budget", 0, "Pack results into this many estimated tokens (0 = unbounded)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: felixctl search <query> [options]

Runs a semantic search against the project's graph: embeds the query,
finds the nearest components by vector similarity, applies filters,
reranks by component kind and path, and prints the matches.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		os.Exit(1)
	}
	queryText := rest[0]

	cfg, err := config.Load(*configPath)
	if err != nil {
		cliErrors.FatalError(cliErrors.NewConfigError(
			"Cannot load config",
			err.Error(),
			"check --config points at a valid felix.yaml",
			err,
		), globals.JSON)
	}

	st, err := bootstrap.OpenProject(bootstrap.ProjectConfig{
		ProjectID: projectID(globals),
		DataDir:   globals.DataDir,
		Engine:    globals.Engine,
	}, nil)
	if err != nil {
		cliErrors.FatalError(cliErrors.NewNotFoundError(
			"Project not found",
			err.Error(),
			"run 'felixctl init' and 'felixctl index' first",
		), globals.JSON)
	}
	defer func() { _ = st.Close() }()

	provider, err := embed.NewProvider(*embeddingProvider, nil)
	if err != nil {
		cliErrors.FatalError(cliErrors.NewConfigError(
			"Cannot create embedding provider",
			err.Error(),
			"pass a supported --embedding-provider",
			err,
		), globals.JSON)
	}

	componentKinds := make([]types.ComponentKind, len(*kinds))
	for i, k := range *kinds {
		componentKinds[i] = types.ComponentKind(k)
	}

	searcher := query.New(st, provider, cfg, nil)
	ctx := context.Background()
	resp, err := searcher.Search(ctx, query.SearchOptions{
		Query:               queryText,
		SimilarityThreshold: *threshold,
		Limit:               *limit,
		OutputView:          query.OutputView(*view),
		Filters: query.Filters{
			ComponentKinds: componentKinds,
			Languages:      *languages,
			PathInclude:    *pathInclude,
			PathExclude:    *pathExclude,
		},
	})
	if err != nil {
		cliErrors.FatalError(cliErrors.NewStoreError(
			"Search failed",
			err.Error(),
			"check the project has been indexed and embedded",
			err,
		), globals.JSON)
	}

	report := searchReport{Items: query.Project(resp)}

	if *discover {
		candidates := make([]types.Component, len(resp.Items))
		for i, item := range resp.Items {
			candidates[i] = item.Component
		}
		result, err := searcher.Discover(ctx, query.DiscoveryInput{Query: queryText, Candidates: candidates})
		if err != nil {
			cliErrors.FatalError(cliErrors.NewStoreError(
				"Discovery failed",
				err.Error(),
				"retry, or omit --discover",
				err,
			), globals.JSON)
		}
		report.Discovery = &result
	}

	if *budget > 0 {
		items := make([]optimize.Item, len(resp.Items))
		for i, it := range resp.Items {
			items[i] = optimize.Item{
				ID: it.Component.ID, Name: it.Component.Name, Kind: string(it.Component.Kind),
				Path: it.Component.FilePath, ContentType: contentTypeFor(it.Component.Kind),
				Text: it.Component.CodeText,
			}
		}
		packed := optimize.Run(optimize.Input{Query: queryText, Items: items, TokenBudget: *budget, Options: cfg})
		report.Packed = &packed
	}

	if globals.JSON {
		_ = output.JSON(report)
		return
	}

	if len(resp.Items) == 0 {
		ui.Info("No matches")
		return
	}
	for _, item := range resp.Items {
		c := item.Component
		ui.Infof("%s  %s  %s:%d  (score %.3f)", c.ID, c.Name, c.FilePath, c.Location.StartLine, item.Score)
	}
	if report.Discovery != nil {
		ui.SubHeader("Suggested terms")
		for _, t := range report.Discovery.SuggestedTerms {
			ui.Infof("  %s (x%d)", t.Term, t.Frequency)
		}
	}
	if report.Packed != nil {
		ui.Successf("Packed %d items into ~%d tokens (from ~%d), strategies: %v",
			len(report.Packed.OptimizedData), report.Packed.FinalTokens, report.Packed.OriginalTokens, report.Packed.StrategiesApplied)
		for _, w := range report.Packed.Warnings {
			ui.Warningf("%s", w)
		}
	}
}

// contentTypeFor picks the optimize.ContentType a component kind
// packs as: doc sections are prose, everything else is code.
func contentTypeFor(kind types.ComponentKind) optimize.ContentType {
	if kind == types.KindDocSection {
		return optimize.ContentDocumentation
	}
	return optimize.ContentCode
}
