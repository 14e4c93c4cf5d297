// Package runtime establishes the process-wide analysis state — store,
// parser registry, call graph, and every downstream analysis stage —
// once at initialise, and dispatches every bridge-facing operation
// through that single instance (spec §2, §9 "Runtime singleton").
package runtime

import (
	"github.com/driftlang/drift/internal/enforcement"
	"github.com/driftlang/drift/internal/taint"
)

// EngineOptions configures a runtime at Initialize. The core never
// reads a project config file itself; the bridge parses one (jsonc +
// schema validation) and hands over the resolved struct.
type EngineOptions struct {
	DBPath           string
	ProjectRoot      string
	TaintRegistryRaw []byte // JSONC text, nil selects the built-in default registry
	SuppressionGlobs []string
	Gates            []enforcement.Gate
}

// DefaultGates mirrors the six built-in gates at permissive
// thresholds; callers override via EngineOptions.Gates.
func DefaultGates() []enforcement.Gate {
	return []enforcement.Gate{
		{ID: enforcement.GatePatternCompliance, Name: "pattern compliance", MinSeverity: enforcement.SeverityWarning, MaxAllowed: 20},
		{ID: enforcement.GateConstraintVerification, Name: "constraint verification", MinSeverity: enforcement.SeverityError, MaxAllowed: 0},
		{ID: enforcement.GateSecurityBoundaries, Name: "security boundaries", MinSeverity: enforcement.SeverityWarning, MaxAllowed: 0},
		{ID: enforcement.GateTestCoverage, Name: "test coverage", MinSeverity: enforcement.SeverityWarning, MaxAllowed: 50},
		{ID: enforcement.GateErrorHandling, Name: "error handling", MinSeverity: enforcement.SeverityWarning, MaxAllowed: 20},
		{ID: enforcement.GateRegression, Name: "regression", MinSeverity: enforcement.SeverityError, MaxAllowed: 0},
	}
}

// ScanSummary is the result of a Scan call (spec §6 scan() return
// shape).
type ScanSummary struct {
	Processed  int
	Added      int
	Modified   int
	Removed    int
	DurationMs int64
	Partial    bool
}

func defaultTaintRegistry(raw []byte) (*taint.Registry, error) {
	if len(raw) == 0 {
		return taint.NewDefaultRegistry(), nil
	}
	reg := taint.NewRegistry()
	if err := reg.LoadJSONC(raw); err != nil {
		return nil, err
	}
	return reg, nil
}
