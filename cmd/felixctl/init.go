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
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/felix-ide/felix/internal/bootstrap"
	cliErrors "github.com/felix-ide/felix/internal/errors"
	"github.com/felix-ide/felix/internal/output"
	"github.com/felix-ide/felix/internal/ui"
)

// runInit executes the 'init' command, creating a local Felix project.
//
// Flags:
//   - --force: reinitialize even if the project already exists
func runInit(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Reinitialize even if the project already exists")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: felixctl init [options]

Creates a local Felix project backed by an embedded CozoDB graph store.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	pid := projectID(globals)
	cfg := bootstrap.ProjectConfig{
		ProjectID: pid,
		DataDir:   globals.DataDir,
		Engine:    globals.Engine,
	}

	if !*force {
		if _, err := os.Stat(resolveDataDir(globals, pid)); err == nil {
			failInit(globals, cliErrors.NewConfigError(
				fmt.Sprintf("Project %q already exists", pid),
				"the data directory is already initialized",
				"pass --force to reinitialize, or choose a different --project",
				nil,
			))
		}
	}

	info, err := bootstrap.InitProject(cfg, nil)
	if err != nil {
		failInit(globals, cliErrors.NewStoreError(
			"Cannot initialize Felix project",
			err.Error(),
			"check that the data directory is writable",
			err,
		))
	}

	if globals.JSON {
		_ = output.JSON(info)
		return
	}
	ui.Successf("Initialized project %q", info.ProjectID)
	ui.Infof("  data dir: %s", info.DataDir)
	ui.Infof("  engine:   %s", info.Engine)
	fmt.Println()
	fmt.Println("Next: felixctl index .")
}

func failInit(globals GlobalFlags, err *cliErrors.UserError) {
	cliErrors.FatalError(err, globals.JSON)
}
