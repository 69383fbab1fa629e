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

// Package main implements the felixctl CLI for indexing repositories
// into a local code-intelligence graph and querying it.
//
// Usage:
//
//	felixctl init                       Create a local project
//	felixctl index [path]                Index a repository into the graph
//	felixctl resolve                     Resolve pending relationship targets
//	felixctl status [--json]             Show project status
//	felixctl search <query> [--json]     Run a semantic search against the graph
//	felixctl query <script> [--json]     Execute a CozoScript query
//	felixctl reset --yes                 Delete local project data
package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/felix-ide/felix/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the flags every subcommand reads.
type GlobalFlags struct {
	ProjectID string
	DataDir   string
	Engine    string
	JSON      bool
	Quiet     bool
	NoColor   bool
}

func main() {
	var globals GlobalFlags
	var showVersion bool

	flag.StringVar(&globals.ProjectID, "project", "", "Project identifier (default: current directory name)")
	flag.StringVar(&globals.DataDir, "data-dir", "", "Graph store data directory (default: ~/.felix/data/<project>)")
	flag.StringVar(&globals.Engine, "engine", "rocksdb", "CozoDB storage engine: rocksdb, sqlite, or mem")
	flag.BoolVar(&globals.JSON, "json", false, "Output machine-readable JSON")
	flag.BoolVarP(&globals.Quiet, "quiet", "q", false, "Suppress progress output")
	flag.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Felix - Code Intelligence Graph CLI

Usage:
  felixctl <command> [options]

Commands:
  init          Create a local project
  index         Index a repository into the graph
  resolve       Resolve pending relationship targets
  status        Show project status
  search        Run a semantic search against the graph
  query         Execute a CozoScript query
  reset         Delete local project data (destructive!)

Global Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  felixctl init --project myapp
  felixctl index .
  felixctl index --embed ./src
  felixctl status --json
  felixctl search "parse configuration file" --kind function --limit 5
  felixctl query "?[name] := *felix_component{name, kind: \"function\"}"
  felixctl reset --yes

Data Storage:
  Data is stored locally in ~/.felix/data/<project>/ unless --data-dir is set.
`)
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("felixctl version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "index":
		runIndex(cmdArgs, globals)
	case "resolve":
		runResolve(cmdArgs, globals)
	case "status":
		runStatus(cmdArgs, globals)
	case "search":
		runSearch(cmdArgs, globals)
	case "query":
		runQuery(cmdArgs, globals)
	case "reset":
		runReset(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func projectID(globals GlobalFlags) string {
	if globals.ProjectID != "" {
		return globals.ProjectID
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "default"
	}
	return filepath.Base(cwd)
}

// resolveDataDir mirrors internal/bootstrap's default so commands can
// check for a project's existence before opening it.
func resolveDataDir(globals GlobalFlags, pid string) string {
	if globals.DataDir != "" {
		return globals.DataDir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".felix", "data", pid)
}
