package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/driftlang/drift/internal/bridge"
)

func cmdAudit(args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
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
		Root      string `json:"root"`
		Timestamp int64  `json:"timestamp"`
	}{Root: root, Timestamp: time.Now().Unix()})
	if err != nil {
		return err
	}

	env, err := callBridge(bridge.Audit(context.Background(), reqJSON))
	if err != nil {
		return err
	}
	if !env.OK {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}

	var result struct {
		Snapshot      json.RawMessage `json:"snapshot"`
		NewViolations int             `json:"newViolations"`
	}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return err
	}

	if result.NewViolations > 0 {
		printWarn("audit recorded %d new violation(s) since the last snapshot", result.NewViolations)
	} else {
		printSuccess("audit recorded no new violations")
	}
	return nil
}
