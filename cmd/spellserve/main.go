// Copyright 2025 The spellserve Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the approximate word lookup server and CLI [DBG] application.

spellserve answers "which dictionary words are within d edits of this one"
queries over a compiled search image. Distance is Damerau-Levenshtein over
raw bytes: insertions, deletions, substitutions and adjacent transpositions
each cost one. It can operate as a msgpack IPC server for integration with
editors and batch drivers, or as a CLI application for testing and
debugging.

The image is produced offline by spellc and loaded read-only; queries never
modify it, so one loaded image serves any number of request streams.

# Usage

Start the server on a compiled image:

	spellserve -index words.bin

Run in CLI mode for interactive testing:

	spellserve -index words.bin -c -limit 10

CLI mode reads query lines of the form:

	approx 2 exmaple

and prints the matching words with frequency and distance, ordered by
distance first, then frequency.

# Configuration

Runtime configuration is managed through a TOML file that supports server
limits, search defaults, and CLI defaults:

	[server]
	max_limit = 64
	max_query = 128
	max_distance = 8

	[search]
	default_distance = 1

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via msgpack over stdin/stdout. Lookup requests are
processed synchronously with microsecond timing information included in
responses.

Send a lookup request:

	{"id": "req1", "q": "exmaple", "d": 2, "l": 20}

Receive matches ordered by distance, then frequency:

	{"id": "req1", "s": [{"w": "example", "f": 8128, "d": 1}], "c": 1, "t": 145}

# Command Line Flags

The following flags control application behavior:

	-index string
	    Path to the compiled image (default "words.bin")
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of results to print (default from config)
	-dist int
	    Default edit distance for bare-word queries
	-no-filter
	    Disable input filtering for debugging
	-config string
	    Custom config file path

The application automatically resolves image and config paths relative to
the executable location, supporting both development and production
deployments.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/spellserve/internal/cli"
	"github.com/bastiangx/spellserve/internal/utils"
	"github.com/bastiangx/spellserve/pkg/config"
	"github.com/bastiangx/spellserve/pkg/index"
	"github.com/bastiangx/spellserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "spellserve"
	gh      = "https://github.com/bastiangx/spellserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to open the image and run the server or CLI.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	imagePath := flag.String("index", "words.bin", "Path to the compiled image")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of results to print (0 for all)")
	dist := flag.Int("dist", defaultConfig.CLI.DefaultDistance, "Default edit distance for bare-word queries")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only) - queries numbers, symbols, etc")
	configPath := flag.String("config", "", "Custom config file path")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ spellserve ] Approximate word lookup, fast.")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	resolvedImage, err := pathResolver.ResolveImagePath(*imagePath)
	if err != nil {
		log.Fatalf("Failed to resolve image path: %v", err)
	}
	log.Debugf("Using image at: %s", resolvedImage)

	ix, err := index.Open(resolvedImage)
	if err != nil {
		log.Fatalf("Failed to open index: %v", err)
	}
	log.Debugf("Index ready: %d bytes", ix.Size())

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	// CLI flags not given on the command line take the loaded [cli] defaults.
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if !setFlags["limit"] {
		*limit = appConfig.CLI.DefaultLimit
	}
	if !setFlags["dist"] {
		*dist = appConfig.CLI.DefaultDistance
	}
	if !setFlags["no-filter"] {
		*noFilter = appConfig.CLI.DefaultNoFilter
	}

	// CLI is mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"dist", *dist,
			"maxDist", appConfig.Server.MaxDistance,
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(ix, *dist, appConfig.Server.MaxDistance, *limit, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	showStartupInfo(resolvedImage, ix)

	srv := server.NewServer(ix, appConfig)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(imagePath string, ix *index.Index) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("image: ( %s ) %d bytes", imagePath, ix.Size())
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
