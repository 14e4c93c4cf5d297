package main

import (
	"flag"
	"os"
	"path/filepath"
)

// commonFlags are shared by every subcommand: the project root to scan,
// the sqlite database backing the runtime, an optional JSONC config
// file, and a --no-color switch.
type commonFlags struct {
	Root    *string
	DBPath  *string
	Config  *string
	NoColor *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	root := fs.String("root", ".", "project root to scan")
	fs.StringVar(root, "r", ".", "project root to scan (shorthand)")
	dbPath := fs.String("db", "", "sqlite database path (default: <root>/.drift/drift.db)")
	config := fs.String("config", "", "path to a driftscan JSONC config file")
	noColor := fs.Bool("no-color", false, "disable colored output")
	return &commonFlags{Root: root, DBPath: dbPath, Config: config, NoColor: noColor}
}

func (c *commonFlags) resolve() (root, dbPath, configText string, err error) {
	root, err = filepath.Abs(*c.Root)
	if err != nil {
		return "", "", "", err
	}

	dbPath = *c.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(root, ".drift", "drift.db")
	}

	if *c.Config != "" {
		data, readErr := os.ReadFile(*c.Config)
		if readErr != nil {
			return "", "", "", readErr
		}
		configText = string(data)
	}

	return root, dbPath, configText, nil
}
