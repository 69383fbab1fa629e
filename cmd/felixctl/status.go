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
	"github.com/felix-ide/felix/pkg/felix/store"
)

// statusReport is the --json shape for the status command.
type statusReport struct {
	ProjectID  string `json:"projectId"`
	DataDir    string `json:"dataDir"`
	Engine     string `json:"engine"`
	Components int    `json:"components"`
	Unresolved int    `json:"unresolved"`
}

func runStatus(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: felixctl status [--json]\n\nShows component/relationship counts for the current project.\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	pid := projectID(globals)
	dataDir := resolveDataDir(globals, pid)
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

	ctx := context.Background()
	components, err := st.Search(ctx, store.SearchCriteria{})
	if err != nil {
		failStatus(globals, err)
	}
	relationships, err := st.Unresolved(ctx)
	if err != nil {
		failStatus(globals, err)
	}

	report := statusReport{
		ProjectID:  pid,
		DataDir:    dataDir,
		Engine:     globals.Engine,
		Components: components.Total,
		Unresolved: len(relationships),
	}

	if globals.JSON {
		_ = output.JSON(report)
		return
	}

	ui.Header(fmt.Sprintf("Felix Project Status: %s", pid))
	fmt.Println()
	fmt.Printf("  %s %s\n", ui.Label("Data dir:"), report.DataDir)
	fmt.Printf("  %s %s\n", ui.Label("Engine:"), report.Engine)
	fmt.Printf("  %s %s\n", ui.Label("Components:"), ui.CountText(report.Components))
	fmt.Printf("  %s %s\n", ui.Label("Unresolved:"), ui.CountText(report.Unresolved))
}

func failStatus(globals GlobalFlags, err error) {
	cliErrors.FatalError(cliErrors.NewStoreError(
		"Cannot read project status",
		err.Error(),
		"check the graph store isn't locked by another process",
		err,
	), globals.JSON)
}
