package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/driftlang/drift/internal/bridge"
	"github.com/driftlang/drift/internal/enforcement"
)

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	setNoColor(*common.NoColor)

	root, dbPath, configText, err := common.resolve()
	if err != nil {
		return err
	}

	if err := initRuntime(dbPath, root, configText); err != nil {
		return err
	}
	defer decodeShutdown()

	if err := runScanQuietly(root); err != nil {
		return err
	}

	reqJSON, err := json.Marshal(struct {
		Root string `json:"root"`
	}{Root: root})
	if err != nil {
		return err
	}

	env, err := callBridge(bridge.Check(context.Background(), reqJSON))
	if err != nil {
		return err
	}
	if !env.OK {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}

	var result struct {
		Passed bool                     `json:"passed"`
		Gates  []enforcement.GateResult `json:"gates"`
	}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return err
	}

	printHeader("gate results for %s", root)
	for _, g := range result.Gates {
		switch g.Status {
		case enforcement.GateStatusPassed:
			printSuccess("%-28s %s", g.GateID, g.Summary)
		case enforcement.GateStatusWarned:
			printWarn("%-28s %s", g.GateID, g.Summary)
		default:
			printFail("%-28s %s", g.GateID, g.Summary)
		}
	}

	if !result.Passed {
		return fmt.Errorf("one or more gates failed")
	}
	return nil
}

// runScanQuietly rebuilds every derived table before check/audit read
// them; neither operation re-walks the filesystem itself.
func runScanQuietly(root string) error {
	reqJSON, err := json.Marshal(struct {
		Root string `json:"root"`
	}{Root: root})
	if err != nil {
		return err
	}
	env, err := callBridge(bridge.Scan(context.Background(), reqJSON))
	if err != nil {
		return err
	}
	if !env.OK {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	return nil
}
