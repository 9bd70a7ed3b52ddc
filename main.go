/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/module"
	"infini.sh/shift/modules"
	"infini.sh/shift/modules/elastic"
	"infini.sh/shift/modules/migration"
)

// overridden at build time through -ldflags -X
var (
	version     = "1.0.0_SNAPSHOT"
	buildNumber = "001"
	commit      = "N/A"
	buildDate   = "N/A"
	eolDate     = "N/A"
)

var (
	esHost    = flag.String("host", "", "elasticsearch endpoint, wins over the config file, eg: http://localhost:9200")
	serveMode = flag.Bool("serve", false, "keep running and take migrations over the HTTP API instead of the command line")
	dryRun    = flag.Bool("dry-run", false, "walk the preconditions, print the schema and alias plan, change nothing")
	force     = flag.Bool("force", false, "delete the destination index first when it already exists")
)

const usageText = `Usage: shift [flags] <source_index> <destination_index> <alias_name>

Copies the schema and documents of <source_index> into a brand new
<destination_index> with a server side reindex, then atomically points
<alias_name> at the destination while removing it from every index that
held it before. The run stops at the first failure, nothing is retried
or rolled back, a destination created before the failure stays behind.

Arguments:
  source_index        the index to migrate away from, must exist
  destination_index   the index to create, must not exist yet unless -force
  alias_name          the alias to switch over once the copy is verified

Flags:`

func printUsage(w io.Writer) {
	fmt.Fprintln(w, usageText)
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
}

func main() {

	terminalHeader := "   _____ __  __ ______________\n"
	terminalHeader += "  / ___// / / //  _/ ____/_  __/\n"
	terminalHeader += "  \\__ \\/ /_/ / / // /_    / /\n"
	terminalHeader += " ___/ / __  /_/ // __/   / /\n"
	terminalHeader += "/____/_/ /_/___/_/      /_/\n\n"

	terminalFooter := "Thanks for using INFINI SHIFT, have a good day!"

	app := NewApp("shift", "lightweight index migration for elasticsearch, clone the schema, copy the data server side, switch the alias atomically.",
		version, buildNumber, commit, buildDate, eolDate, terminalHeader, terminalFooter)

	flag.Usage = func() {
		printUsage(os.Stderr)
	}

	app.Init(nil)
	defer app.Shutdown()

	args := flag.Args()
	if len(args) > 0 && args[0] == "help" {
		printUsage(os.Stdout)
		os.Exit(0)
	}

	var request migration.Request
	if *serveMode {
		if len(args) > 0 {
			fmt.Fprintf(os.Stderr, "serve mode takes no arguments, got %v\n\n", len(args))
			printUsage(os.Stderr)
			os.Exit(2)
		}
	} else {
		if len(args) != 3 {
			fmt.Fprintf(os.Stderr, "shift expects exactly three arguments, got %v\n\n", len(args))
			printUsage(os.Stderr)
			os.Exit(2)
		}
		request = migration.Request{
			Source:      args[0],
			Destination: args[1],
			Alias:       args[2],
			DryRun:      *dryRun,
			Force:       *force,
		}
	}

	setup := func() {
		if *esHost != "" {
			elastic.SetEndpoint(*esHost)
		}
		modules.Register()
		modules.Migration.SetServeMode(*serveMode)
		module.Start()
	}

	if *serveMode {
		app.Start(setup, func() {
			log.Info("migrations are taken over the API now, submit with POST /migration/_start")
		})
		return
	}

	app.Run(setup, func() {
		state, err := modules.Migration.Run(request)
		if state != nil {
			fmt.Println(migration.FormatReport(state))
		}
		if err != nil {
			if state == nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
			app.SetExitCode(exitCodeFor(err))
		}
	})
}

// exitCodeFor maps a settled run's error onto the process exit code,
// refused arguments count as usage errors, everything else is a failed run.
func exitCodeFor(err error) int {
	if errors.CodeOf(err) == errors.UsageError {
		return 2
	}
	return 1
}
