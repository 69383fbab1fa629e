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

// Package resolver implements the cross-file reference resolver (C5):
// it converts RESOLVE: placeholder targets left by the parser backends
// into concrete component IDs or external-module placeholders.
package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/felix-ide/felix/pkg/felix/catalog"
	"github.com/felix-ide/felix/pkg/felix/store"
	"github.com/felix-ide/felix/pkg/felix/types"
)

// parallelThreshold mirrors the teacher's resolveCallsParallel
// crossover: below this many pending edges, per-edge goroutine
// dispatch costs more than it saves.
const parallelThreshold = 1000

// externalFileID is the synthetic owner under which every external
// module placeholder component is grouped, so resolution runs can
// upsert them idempotently through the normal per-file write path.
const externalFileID = "\x00external-modules"

// storeAPI is the slice of *store.Store the resolver needs, narrowed
// to an interface so tests can substitute an in-memory index without
// the CGO-backed store.
type storeAPI interface {
	Search(ctx context.Context, criteria store.SearchCriteria) (store.SearchResult, error)
	Unresolved(ctx context.Context) ([]types.Relationship, error)
	ApplyResolutionPatch(ctx context.Context, patches []store.ResolutionPatch) error
	UpsertFile(ctx context.Context, fileID string, components []types.Component, relationships []types.Relationship) error
}

// Resolver converts placeholder relationship targets into concrete IDs
// (spec.md §4.5). A Resolver's index is a snapshot: call BuildIndex
// again after a batch of new files has been indexed.
type Resolver struct {
	store   storeAPI
	catalog *catalog.Catalog

	mu sync.RWMutex

	byID      map[string]types.Component
	byDirName map[string]map[string][]types.Component // directory -> simple name -> candidates
	byName    map[string][]types.Component             // project-wide simple name -> candidates
	imports   map[string]map[string]string             // file path -> alias -> sanitized import specifier

	external map[string]types.Component // existing external:module:* placeholders, by ID
}

// New creates a Resolver bound to st for reads/writes and cat for
// stdlib/vendor classification.
func New(st storeAPI, cat *catalog.Catalog) *Resolver {
	return &Resolver{
		store:     st,
		catalog:   cat,
		byID:      make(map[string]types.Component),
		byDirName: make(map[string]map[string][]types.Component),
		byName:    make(map[string][]types.Component),
		imports:   make(map[string]map[string]string),
		external:  make(map[string]types.Component),
	}
}

// BuildIndex loads every component currently in the store and every
// still-unresolved import edge, building the lookup structures
// resolveOne needs (teacher's CallResolver.BuildIndex, generalized
// from Go-only packages/functions to all languages and component
// kinds).
func (r *Resolver) BuildIndex(ctx context.Context) error {
	result, err := r.store.Search(ctx, store.SearchCriteria{})
	if err != nil {
		return fmt.Errorf("resolver: build index: search: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]types.Component, len(result.Items))
	r.byDirName = make(map[string]map[string][]types.Component)
	r.byName = make(map[string][]types.Component)
	r.external = make(map[string]types.Component)

	for _, c := range result.Items {
		r.byID[c.ID] = c
		r.byName[c.Name] = append(r.byName[c.Name], c)

		dir := filepath.Dir(c.FilePath)
		byName := r.byDirName[dir]
		if byName == nil {
			byName = make(map[string][]types.Component)
			r.byDirName[dir] = byName
		}
		byName[c.Name] = append(byName[c.Name], c)

		if c.Kind == types.KindExternalModule && c.FilePath == externalFileID {
			r.external[c.ID] = c
		}
	}
	for _, candidates := range r.byName {
		sortByPath(candidates)
	}
	for _, byName := range r.byDirName {
		for _, candidates := range byName {
			sortByPath(candidates)
		}
	}

	unresolved, err := r.store.Unresolved(ctx)
	if err != nil {
		return fmt.Errorf("resolver: build index: unresolved: %w", err)
	}
	r.imports = make(map[string]map[string]string)
	for _, rel := range unresolved {
		if rel.Kind != types.RelImports || !rel.IsPlaceholder() {
			continue
		}
		source, ok := r.byID[rel.SourceID]
		if !ok {
			continue
		}
		spec := sanitizeSpecifier(rel.Specifier())
		alias := importAlias(spec)
		if r.imports[source.FilePath] == nil {
			r.imports[source.FilePath] = make(map[string]string)
		}
		r.imports[source.FilePath][alias] = spec
	}

	return nil
}

func sortByPath(candidates []types.Component) {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].FilePath < candidates[j].FilePath })
}

// ResolveAll runs the resolver's algorithm over every unresolved edge
// currently in the store and applies the resulting patch in a single
// transaction (spec.md §5 "Resolver patches are applied in a single
// transaction"). Call BuildIndex first (and again after ResolveAll if
// more files were indexed in between).
func (r *Resolver) ResolveAll(ctx context.Context) error {
	unresolved, err := r.store.Unresolved(ctx)
	if err != nil {
		return fmt.Errorf("resolver: resolve all: unresolved: %w", err)
	}

	// Imports run first and sequentially: call/inheritance resolution
	// for a file needs that file's alias map already populated.
	var imports, rest []types.Relationship
	for _, rel := range unresolved {
		if rel.Kind == types.RelImports {
			imports = append(imports, rel)
		} else {
			rest = append(rest, rel)
		}
	}

	var patches []store.ResolutionPatch
	var newExternal []types.Component

	for _, rel := range imports {
		patch, ext := r.resolveOne(rel)
		patches = append(patches, patch)
		if ext != nil {
			newExternal = append(newExternal, *ext)
		}
	}
	// Refresh the alias map with imports resolved in this pass before
	// resolving calls/inheritance against them.
	r.reindexImports(imports)

	restPatches, restExternal, err := r.resolveMany(ctx, rest)
	if err != nil {
		return err
	}
	patches = append(patches, restPatches...)
	newExternal = append(newExternal, restExternal...)

	if len(newExternal) > 0 {
		if err := r.upsertExternal(ctx, newExternal); err != nil {
			return err
		}
	}
	return r.store.ApplyResolutionPatch(ctx, patches)
}

// resolveMany dispatches sequentially below parallelThreshold and
// across a worker pool above it (teacher's ResolveCalls crossover).
func (r *Resolver) resolveMany(ctx context.Context, rels []types.Relationship) ([]store.ResolutionPatch, []types.Component, error) {
	if len(rels) == 0 {
		return nil, nil, nil
	}
	if len(rels) < parallelThreshold {
		patches := make([]store.ResolutionPatch, 0, len(rels))
		var external []types.Component
		for _, rel := range rels {
			patch, ext := r.resolveOne(rel)
			patches = append(patches, patch)
			if ext != nil {
				external = append(external, *ext)
			}
		}
		return patches, external, nil
	}

	patches := make([]store.ResolutionPatch, len(rels))
	externalByIdx := make([]*types.Component, len(rels))
	g, _ := errgroup.WithContext(ctx)
	for i, rel := range rels {
		i, rel := i, rel
		g.Go(func() error {
			patch, ext := r.resolveOne(rel)
			patches[i] = patch
			externalByIdx[i] = ext
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	var external []types.Component
	for _, ext := range externalByIdx {
		if ext != nil {
			external = append(external, *ext)
		}
	}
	return patches, external, nil
}

func (r *Resolver) reindexImports(resolvedImports []types.Relationship) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rel := range resolvedImports {
		source, ok := r.byID[rel.SourceID]
		if !ok {
			continue
		}
		spec := sanitizeSpecifier(rel.Specifier())
		alias := importAlias(spec)
		if r.imports[source.FilePath] == nil {
			r.imports[source.FilePath] = make(map[string]string)
		}
		r.imports[source.FilePath][alias] = spec
	}
}

func (r *Resolver) upsertExternal(ctx context.Context, fresh []types.Component) error {
	r.mu.Lock()
	for _, c := range fresh {
		r.external[c.ID] = c
		r.byID[c.ID] = c
	}
	all := make([]types.Component, 0, len(r.external))
	for _, c := range r.external {
		all = append(all, c)
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return r.store.UpsertFile(ctx, externalFileID, all, nil)
}

// resolveOne applies the per-edge algorithm from spec.md §4.5 steps
// 1-5 and returns the patch to apply plus a freshly synthesized
// external component when classification step 2 or the failure branch
// of step 5 introduces one.
func (r *Resolver) resolveOne(rel types.Relationship) (store.ResolutionPatch, *types.Component) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specifier := sanitizeSpecifier(rel.Specifier())
	if specifier == "" {
		return store.ResolutionPatch{ID: rel.ID, IsJunk: true, LastAttemptReason: "empty specifier after sanitation"}, nil
	}

	source, haveSource := r.byID[rel.SourceID]
	language := source.Language

	if r.catalog.IsStdlib(language, specifier) {
		ext := externalModuleComponent("stdlib", specifier)
		return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: ext.ID, IsExternal: true}, &ext
	}
	if haveSource && r.catalog.IsVendored(language, source.FilePath) {
		ext := externalModuleComponent("vendor", specifier)
		return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: ext.ID, IsExternal: true}, &ext
	}

	if rel.Kind == types.RelImports {
		return r.resolveImport(rel, specifier, haveSource, source)
	}
	return r.resolveSymbol(rel, specifier, haveSource, source)
}

// resolveImport handles step 4's "bare module name" / "relative path"
// branches for an import edge: it looks for a local directory whose
// path the specifier names or ends with, and targets that directory's
// lowest-path file; otherwise it classifies the module external.
func (r *Resolver) resolveImport(rel types.Relationship, specifier string, haveSource bool, source types.Component) (store.ResolutionPatch, *types.Component) {
	if dir := r.findLocalPackageDir(specifier, haveSource, source); dir != "" {
		if target := r.representativeFile(dir); target != "" {
			return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: target}, nil
		}
	}
	ext := externalModuleComponent(moduleScheme(source.Language), specifier)
	return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: ext.ID, IsExternal: true}, &ext
}

// resolveSymbol handles calls, inheritance, and reference edges: a
// dotted specifier is split into an alias and a member name and
// resolved through the source file's import aliases (step 4's
// "qualified call" case); a bare specifier is resolved by simple name
// within the source's own directory, then project-wide (step 4's
// "symbolic name" case and the teacher's dot-import fallback,
// generalized to every language).
func (r *Resolver) resolveSymbol(rel types.Relationship, specifier string, haveSource bool, source types.Component) (store.ResolutionPatch, *types.Component) {
	if dot := strings.LastIndex(specifier, "."); dot >= 0 {
		alias, member := specifier[:dot], specifier[dot+1:]
		importSpec, hasImport := alias, true
		if haveSource {
			if mapped, ok := r.imports[source.FilePath][alias]; ok {
				importSpec = mapped
			}
		}
		if hasImport {
			if dir := r.findLocalPackageDir(importSpec, haveSource, source); dir != "" {
				if candidates := sameLanguage(r.byDirName[dir][member], source.Language); len(candidates) > 0 {
					return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: candidates[0].ID}, nil
				}
			}
			if r.catalog.IsStdlib(source.Language, importSpec) {
				ext := externalModuleComponent("stdlib", importSpec+"."+member)
				return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: ext.ID, IsExternal: true}, &ext
			}
			if haveSource {
				if _, ok := r.imports[source.FilePath][alias]; ok {
					ext := externalModuleComponent(moduleScheme(source.Language), importSpec+"."+member)
					return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: ext.ID, IsExternal: true}, &ext
				}
			}
		}
		specifier = member
	}

	if haveSource {
		dir := filepath.Dir(source.FilePath)
		if candidates := sameLanguage(r.byDirName[dir][specifier], source.Language); len(candidates) > 0 {
			return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: candidates[0].ID}, nil
		}
	}
	if candidates := r.byName[specifier]; len(candidates) > 0 {
		if haveSource {
			if same := sameLanguage(candidates, source.Language); len(same) > 0 {
				return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: same[0].ID}, nil
			}
		}
		return store.ResolutionPatch{ID: rel.ID, ResolvedTargetID: candidates[0].ID}, nil
	}

	return store.ResolutionPatch{ID: rel.ID, IsJunk: true, LastAttemptReason: "no candidate component for " + specifier}, nil
}

func sameLanguage(candidates []types.Component, language string) []types.Component {
	if language == "" {
		return candidates
	}
	var out []types.Component
	for _, c := range candidates {
		if c.Language == language {
			out = append(out, c)
		}
	}
	return out
}

// findLocalPackageDir matches importSpec against a known project
// directory: an exact directory match, a suffix match (teacher's
// findPackageByImportPath), or a relative path resolved against the
// importing file's own directory.
func (r *Resolver) findLocalPackageDir(importSpec string, haveSource bool, source types.Component) string {
	if _, ok := r.byDirName[importSpec]; ok {
		return importSpec
	}
	if haveSource && (strings.HasPrefix(importSpec, "./") || strings.HasPrefix(importSpec, "../")) {
		joined := filepath.ToSlash(filepath.Join(filepath.Dir(source.FilePath), importSpec))
		if _, ok := r.byDirName[joined]; ok {
			return joined
		}
	}
	for dir := range r.byDirName {
		if dir != "." && strings.HasSuffix(importSpec, dir) {
			return dir
		}
	}
	return ""
}

// representativeFile returns the stable, lowest-path component in dir
// to stand in for "this package" when no dedicated module component
// exists for it.
func (r *Resolver) representativeFile(dir string) string {
	var best types.Component
	found := false
	for _, candidates := range r.byDirName[dir] {
		for _, c := range candidates {
			if c.Kind != types.KindFile {
				continue
			}
			if !found || c.FilePath < best.FilePath {
				best, found = c, true
			}
		}
	}
	if !found {
		return ""
	}
	return best.ID
}

func moduleScheme(language string) string {
	if language == "" {
		return "module"
	}
	return language
}

func externalModuleComponent(scheme, name string) types.Component {
	id := fmt.Sprintf("external:module:%s:%s", scheme, name)
	return types.Component{
		ID: id, Name: name, Kind: types.KindExternalModule, Language: scheme,
		FilePath: externalFileID,
		Location: types.Location{StartLine: 1, EndLine: 1},
		Metadata: types.ComponentMetadata{IsExternal: true},
	}
}

// sanitizeSpecifier strips the noise real parsers leave in a raw
// specifier string: a "file:" scheme prefix, surrounding quotes, and
// inline line-comment remnants, then normalizes path separators
// (spec.md §4.5 step 1).
func sanitizeSpecifier(spec string) string {
	spec = strings.TrimSpace(spec)
	spec = strings.TrimPrefix(spec, "file:")
	if idx := strings.Index(spec, "//"); idx > 0 {
		spec = strings.TrimSpace(spec[:idx])
	}
	spec = strings.Trim(spec, `"'`+"`")
	spec = strings.ReplaceAll(spec, `\"`, `"`)
	spec = filepath.ToSlash(spec)
	return spec
}

// importAlias derives the local alias an import is referenced by when
// no explicit alias is recorded: the last path component, mirroring
// the teacher's fileImports default-alias fallback.
func importAlias(specifier string) string {
	if specifier == "" {
		return ""
	}
	fields := strings.Fields(specifier)
	if len(fields) == 2 {
		// "alias \"path\"" shaped import specs (Go aliased imports).
		return strings.Trim(fields[0], `"`)
	}
	return filepath.Base(specifier)
}
