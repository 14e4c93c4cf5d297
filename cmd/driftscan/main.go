// Command driftscan is a demonstration CLI over internal/bridge. It
// drives the same envelope-returning functions a host language binding
// would call, so it doubles as a reference client for that package.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "driftscan: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}

	switch args[0] {
	case "scan":
		return cmdScan(args[1:])
	case "check":
		return cmdCheck(args[1:])
	case "audit":
		return cmdAudit(args[1:])
	case "spec":
		return cmdSpec(args[1:])
	case "version", "--version", "-v":
		fmt.Println("driftscan (dev build)")
		return nil
	case "help", "-h", "--help":
		return usage()
	default:
		return fmt.Errorf("unknown command: %s\nRun 'driftscan help' for usage", args[0])
	}
}

func usage() error {
	fmt.Println(`driftscan - scan a project, evaluate its quality gates, and record audit snapshots

Usage:
  driftscan scan  --root <dir> [--db <path>] [--config <file>] [--no-color]
  driftscan check --root <dir> [--db <path>] [--config <file>] [--no-color]
  driftscan audit --root <dir> [--db <path>] [--config <file>] [--no-color]
  driftscan spec  --module <file> [--migration <file>] [--no-color]`)
	return nil
}
