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

	cliErrors "github.com/felix-ide/felix/internal/errors"
	"github.com/felix-ide/felix/internal/ui"
)

// runReset executes the 'reset' command: delete a project's local data
// directory. Destructive; requires --yes.
func runReset(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Confirm deletion without prompting")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: felixctl reset --yes

Deletes the project's local graph store data directory. This cannot
be undone; run 'felixctl index' again afterward to rebuild it.
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	pid := projectID(globals)
	dataDir := resolveDataDir(globals, pid)

	if !*yes {
		cliErrors.FatalError(cliErrors.NewInputError(
			fmt.Sprintf("Refusing to delete %s without confirmation", dataDir),
			"reset is destructive and cannot be undone",
			"pass --yes to confirm",
		), globals.JSON)
	}

	if dataDir == "" {
		cliErrors.FatalError(cliErrors.NewConfigError(
			"Cannot determine data directory",
			"neither --data-dir nor $HOME resolved to a path",
			"pass --data-dir explicitly",
			nil,
		), globals.JSON)
	}

	if err := os.RemoveAll(dataDir); err != nil {
		cliErrors.FatalError(cliErrors.NewPermissionError(
			"Cannot delete project data",
			err.Error(),
			"check file permissions on the data directory",
			err,
		), globals.JSON)
	}

	ui.Successf("Deleted %s", dataDir)
}
