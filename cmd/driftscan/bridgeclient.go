package main

import (
	"encoding/json"
	"fmt"

	"github.com/driftlang/drift/internal/bridge"
)

// envelope mirrors the {ok, result, error} shape every internal/bridge
// function returns. It is redeclared here because that package keeps
// its envelope type unexported -- a real host language binding would
// decode the same shape from its own types.
type envelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *errorPayload   `json:"error,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func callBridge(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("decode bridge response: %w", err)
	}
	return env, nil
}

func initRuntime(dbPath, root, configText string) error {
	req, err := json.Marshal(struct {
		DBPath      string `json:"dbPath"`
		ProjectRoot string `json:"projectRoot"`
		ConfigText  string `json:"configText,omitempty"`
	}{DBPath: dbPath, ProjectRoot: root, ConfigText: configText})
	if err != nil {
		return err
	}

	env, err := callBridge(bridge.Initialize(req))
	if err != nil {
		return err
	}
	if !env.OK {
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	return nil
}

func decodeShutdown() {
	env, err := callBridge(bridge.Shutdown())
	if err != nil {
		printWarn("shutdown: %v", err)
		return
	}
	if !env.OK {
		printWarn("shutdown: %s", env.Error.Message)
	}
}
