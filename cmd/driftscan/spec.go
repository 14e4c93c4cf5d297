package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/driftlang/drift/internal/bridge"
)

// cmdSpec renders a specification document for one module-decomposition
// result. Unlike scan/check/audit it never initializes the runtime: the
// bridge's GenerateSpec takes its module data directly from the caller.
func cmdSpec(args []string) error {
	fs := flag.NewFlagSet("spec", flag.ContinueOnError)
	modulePath := fs.String("module", "", "path to a module-decomposition JSON file")
	migrationPath := fs.String("migration", "", "path to an optional migration-path JSON file")
	noColor := fs.Bool("no-color", false, "disable colored output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setNoColor(*noColor)

	if *modulePath == "" {
		return fmt.Errorf("--module is required")
	}
	moduleJSON, err := os.ReadFile(*modulePath)
	if err != nil {
		return err
	}

	var migrationJSON []byte
	if *migrationPath != "" {
		migrationJSON, err = os.ReadFile(*migrationPath)
		if err != nil {
			return err
		}
	}

	req, err := json.Marshal(struct {
		ModuleJSON        string `json:"moduleJson"`
		MigrationPathJSON string `json:"migrationPathJson,omitempty"`
	}{ModuleJSON: string(moduleJSON), MigrationPathJSON: string(migrationJSON)})
	if err != nil {
		return err
	}

	env, err := callBridge(bridge.GenerateSpec(req))
	if err != nil {
		return err
	}
	if !env.OK {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}

	var out struct {
		ModuleName      string `json:"moduleName"`
		TotalTokenCount int    `json:"totalTokenCount"`
		HasAllSections  bool   `json:"hasAllSections"`
		Sections        []struct {
			Section string `json:"section"`
			Content string `json:"content"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(env.Result, &out); err != nil {
		return err
	}

	printHeader("specification for %s (%d tokens, all sections: %t)", out.ModuleName, out.TotalTokenCount, out.HasAllSections)
	for _, s := range out.Sections {
		fmt.Printf("\n## %s\n%s\n", s.Section, s.Content)
	}
	return nil
}
