// Copyright 2025 The KeyServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the keyboard decode server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

KeyServe decodes soft-keyboard touch points into ranked word suggestions
using a beam search over a lexicon trie with typo correction (omission,
insertion, transposition, substitution and space handling). It can operate
as a MessagePack IPC server for integration with IMEs and editors, or as a
CLI application for testing and debugging.

# Usage

Start the server with default settings:

	keyserve -data /path/to/words.txt

Run in CLI mode for interactive testing with debug logging:

	keyserve -data /path/to/words.txt -c -d

The data file is a plain word list, one "word<TAB>frequency" pair per line,
frequencies on a 1..255 scale. It carries unigrams only; neither the server
nor the CLI mode loads bigrams or shortcuts.

# Configuration

Runtime configuration is managed through a TOML file covering the decoder
beam, server limits, and CLI defaults:

	[decoder]
	max_cache_size = 170
	allow_partial_commit = false
	correct_omission = true

	[server]
	max_limit = 18
	max_input_size = 46

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Decode requests
carry raw touch points and are processed synchronously with microsecond
timing information included in responses:

	{"id": "req1", "cmd": "decode", "pts": [{"x": 270, "y": 40}, ...], "l": 10}

See pkg/server for the full message surface.

# Command Line Flags

	-data string
	    Word list file to load the lexicon from
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to print in CLI mode
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/keyserve/internal/cli"
	"github.com/bastiangx/keyserve/pkg/config"
	"github.com/bastiangx/keyserve/pkg/decoder"
	"github.com/bastiangx/keyserve/pkg/keyboard"
	"github.com/bastiangx/keyserve/pkg/lexicon"
	"github.com/bastiangx/keyserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "keyserve"
	gh      = "https://github.com/bastiangx/keyserve"
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

// main wires the lexicon, layout and decoder together and hands control to
// the server or CLI loop.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataFile := flag.String("data", "", "Word list file to load the lexicon from")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return in CLI mode")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine config path: (%v). Using builtin defaults", err)
	}
	appConfig := defaultConfig
	if configPath != "" {
		appConfig, err = config.InitConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Debugf("Using config file: (%s)", configPath)
	}

	lx := lexicon.New()
	if *dataFile != "" {
		f, err := os.Open(*dataFile)
		if err != nil {
			log.Fatalf("Failed to open word list %s: %v", *dataFile, err)
		}
		count, err := lx.LoadWordList(f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to load word list: %v", err)
		}
		log.Debugf("Loaded %d words from %s", count, *dataFile)
	} else {
		log.Warn("No word list specified, running with an empty lexicon...")
	}

	layout := keyboard.Qwerty()
	opts := decoder.TypingOptions{
		AllowPartialCommit:       appConfig.Decoder.AllowPartialCommit,
		CorrectOmission:          appConfig.Decoder.CorrectOmission,
		CorrectSpaceSubstitution: appConfig.Decoder.CorrectSpaceSub,
		CorrectSpaceOmission:     appConfig.Decoder.CorrectSpaceOmission,
		MaxCacheSize:             appConfig.Decoder.MaxCacheSize,
		SingleCharCacheSize:      appConfig.Decoder.SingleCharCacheSize,
		MinProbabilityForNext:    appConfig.Decoder.MinProbabilityForNext,
	}
	sg := decoder.NewTypingSuggest(opts)

	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(sg, lx, layout, *limit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(sg, lx, layout, appConfig)
	showStartupInfo(lx)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// printVersion displays the styled version banner.
func printVersion() {
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
	logger.Print("[ KeyServe ] Decodes keyboard touch points into words!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(lx *lexicon.Lexicon) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("==========")
	println(" KeyServe ")
	println("==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("lexicon: %d words", lx.WordCount())
	log.Info("status: ready")
	println("==========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
