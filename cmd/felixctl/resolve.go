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
	"github.com/felix-ide/felix/pkg/felix/catalog"
	"github.com/felix-ide/felix/pkg/felix/resolver"
)

// resolveReport is the --json shape for the resolve command.
type resolveReport struct {
	Unresolved int `json:"unresolvedBefore"`
}

// runResolve executes the 'resolve' command: rebuild the component
// index and convert every pending relationship's placeholder target
// into a concrete component ID or external-module marker.
//
// Flags:
//   - --catalog-dir: directory of catalogs/<lang>.yaml overrides (default: built-in seed)
func runResolve(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	catalogDir := fs.String("catalog-dir", "", "Directory of catalogs/<lang>.yaml stdlib/vendor overrides")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: felixctl resolve [options]

Resolves pending relationship targets left by the parser backends into
concrete component IDs or external-module placeholders.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
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

	cat, err := catalog.Load(*catalogDir)
	if err != nil {
		cliErrors.FatalError(cliErrors.NewConfigError(
			"Cannot load stdlib/vendor catalog",
			err.Error(),
			"check --catalog-dir points at valid catalogs/<lang>.yaml files",
			err,
		), globals.JSON)
	}

	ctx := context.Background()
	before, err := st.Unresolved(ctx)
	if err != nil {
		failResolve(globals, err)
	}

	res := resolver.New(st, cat)
	if err := res.BuildIndex(ctx); err != nil {
		failResolve(globals, err)
	}
	if err := res.ResolveAll(ctx); err != nil {
		failResolve(globals, err)
	}

	after, err := st.Unresolved(ctx)
	if err != nil {
		failResolve(globals, err)
	}

	if globals.JSON {
		_ = output.JSON(resolveReport{Unresolved: len(before)})
		return
	}
	ui.Successf("Resolved %d of %d pending relationships", len(before)-len(after), len(before))
	if len(after) > 0 {
		ui.Warningf("%d relationships remain unresolved (external or unknown targets)", len(after))
	}
}

func failResolve(globals GlobalFlags, err error) {
	cliErrors.FatalError(cliErrors.NewResolveError(
		"Relationship resolution failed",
		err.Error(),
		"run 'felixctl index' to rebuild the component index and retry",
		err,
	), globals.JSON)
}
