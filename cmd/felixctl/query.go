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
	"github.com/felix-ide/felix/internal/contract"
	cliErrors "github.com/felix-ide/felix/internal/errors"
	"github.com/felix-ide/felix/internal/output"
)

// runQuery executes the 'query' command: run a raw CozoScript script
// against the project's graph and print the result rows.
//
// Flags:
//   - --write: allow a mutating script (:put/:rm/:update); read-only by default
func runQuery(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	write := fs.Bool("write", false, "Allow a mutating script (:put, :rm, :update)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: felixctl query <script> [options]

Executes a CozoScript query against the project's graph store.

Example:
  felixctl query '?[name] := *felix_component{name, kind: "function"}'

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
	script := rest[0]

	if v := contract.ValidateBatchScript(script); !v.OK {
		cliErrors.FatalError(cliErrors.NewInputError(
			"Query rejected",
			v.Message,
			fmt.Sprintf("keep the script under %d bytes, or split it into multiple queries", contract.SoftLimitBytes()),
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
			"run 'felixctl init' first",
		), globals.JSON)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	if *write {
		if err := st.Execute(ctx, script); err != nil {
			failQuery(globals, err)
		}
		if globals.JSON {
			_ = output.JSON(map[string]string{"status": "ok"})
		} else {
			fmt.Println("ok")
		}
		return
	}

	rows, err := st.Query(ctx, script)
	if err != nil {
		failQuery(globals, err)
	}

	if globals.JSON {
		_ = output.JSON(rows)
		return
	}

	printRows(rows.Headers, rows.Rows)
}

func printRows(headers []string, rows [][]any) {
	for i, h := range headers {
		if i > 0 {
			fmt.Print("\t")
		}
		fmt.Print(h)
	}
	fmt.Println()
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				fmt.Print("\t")
			}
			fmt.Print(v)
		}
		fmt.Println()
	}
}

func failQuery(globals GlobalFlags, err error) {
	cliErrors.FatalError(cliErrors.NewStoreError(
		"Query failed",
		err.Error(),
		"check the CozoScript syntax and table/column names",
		err,
	), globals.JSON)
}
