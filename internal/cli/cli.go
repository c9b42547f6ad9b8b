// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the
// non-interactive subcommands. Running with no subcommand starts the
// full-screen client.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdStatus
	CmdRooms
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ServerURL string
	Username  string
	JSON      bool

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `ausma - terminal client for the ausma.ai document assistant

Usage:
  ausma                      Start the full-screen client (default)
  ausma status               Show the document-processing service status
  ausma rooms                List rooms
  ausma config [show|path]   Configuration
  ausma version              Show version information
  ausma help                 Show this help

Flags:
  --server URL               Override the server URL
  --user NAME                Override the username
  --json                     Machine-readable output (status, rooms)
`

// Parse reads os.Args and returns the command to run plus its arguments.
// Unknown commands print usage and exit.
func Parse() (Command, Args) {
	args := Args{}
	rest := make([]string, 0, len(os.Args))

	argv := os.Args[1:]
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "--server":
			if i+1 < len(argv) {
				i++
				args.ServerURL = argv[i]
			}
		case "--user":
			if i+1 < len(argv) {
				i++
				args.Username = argv[i]
			}
		case "--json":
			args.JSON = true
		default:
			rest = append(rest, argv[i])
		}
	}
	args.Raw = rest

	if len(rest) == 0 {
		return CmdTUI, args
	}

	switch rest[0] {
	case "status", "s":
		args.Raw = rest[1:]
		return CmdStatus, args
	case "rooms":
		args.Raw = rest[1:]
		return CmdRooms, args
	case "config":
		args.Raw = rest[1:]
		return CmdConfig, args
	case "version", "-v", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", rest[0], usageText)
		os.Exit(2)
		return CmdHelp, args
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("ausma %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
