// Package bridge is the foreign-language entry surface spec §6
// describes: every exported function here accepts and returns UTF-8
// JSON and routes through the process-wide runtime singleton. It is
// the only package a cgo/wasm/FFI host is expected to call into;
// everything else under internal/ is unreachable from outside the
// process.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/enforcement"
	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/runtime"
	"github.com/driftlang/drift/internal/scanner"
	"github.com/driftlang/drift/internal/specgen"
)

func codeOf(err error) string {
	if kind, ok := direrr.KindOf(err); ok {
		return kind.Code()
	}
	return "UNKNOWN_ERROR"
}

func current() (*runtime.Runtime, error) {
	rt := runtime.Current()
	if rt == nil {
		return nil, direrr.ErrNotInitialized
	}
	return rt, nil
}

// --- lifecycle ---

type initializeRequest struct {
	DBPath      string `json:"dbPath"`
	ProjectRoot string `json:"projectRoot"`
	ConfigText  string `json:"configText,omitempty"`
}

// Initialize decodes an initializeRequest, resolving ConfigText into
// EngineOptions when present, and installs the runtime singleton
// (spec §6 "initialize(db_path?, project_root?, config_text?)").
func Initialize(requestJSON []byte) []byte {
	var req initializeRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode initialize request", err))
	}

	opts := runtime.EngineOptions{DBPath: req.DBPath, ProjectRoot: req.ProjectRoot}
	if req.ConfigText != "" {
		cfg, err := LoadConfig([]byte(req.ConfigText))
		if err != nil {
			return encodeErr(direrr.NewConfigError("load config", err))
		}
		resolved, err := cfg.ToEngineOptions(req.DBPath, req.ProjectRoot)
		if err != nil {
			return encodeErr(direrr.NewConfigError("resolve config", err))
		}
		opts = resolved
	}

	if _, err := runtime.Initialize(opts); err != nil {
		return encodeErr(err)
	}
	return encodeOK(struct {
		Initialized bool `json:"initialized"`
	}{Initialized: true})
}

// Shutdown flushes and closes the installed runtime (spec §6
// "shutdown()").
func Shutdown() []byte {
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	if err := rt.Shutdown(); err != nil {
		return encodeErr(err)
	}
	return encodeOK(struct{}{})
}

// IsInitialized reports whether a runtime singleton is installed
// (spec §6 "is_initialized()").
func IsInitialized() []byte {
	return encodeOK(struct {
		Initialized bool `json:"initialized"`
	}{Initialized: runtime.IsInitialized()})
}

// --- work functions ---

type scanRequest struct {
	Root string `json:"root"`
}

type scanResult struct {
	Processed  int   `json:"processed"`
	Added      int   `json:"added"`
	Modified   int   `json:"modified"`
	Removed    int   `json:"removed"`
	DurationMs int64 `json:"durationMs"`
	Partial    bool  `json:"partial"`
}

// Scan walks requestJSON's root and (re-)builds every derived table
// (spec §6 "scan(root, options, progress?)"). Progress is delivered
// out-of-band through SetProgressCallback, not this return value.
func Scan(ctx context.Context, requestJSON []byte) []byte {
	var req scanRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode scan request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	summary, err := rt.Scan(ctx, req.Root, nil)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(scanResult{
		Processed: summary.Processed, Added: summary.Added, Modified: summary.Modified,
		Removed: summary.Removed, DurationMs: summary.DurationMs, Partial: summary.Partial,
	})
}

// Analyze reports call graph summary statistics (spec §6 "analyze()").
func Analyze() []byte {
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(rt.Analyze())
}

// CallGraph returns the full current call graph (spec §6
// "call_graph()").
func CallGraph() []byte {
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(rt.CallGraph())
}

// Boundaries runs the frontend/backend contract analyzer over the most
// recently scanned project (spec §6 "boundaries()").
func Boundaries() []byte {
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(rt.Boundaries())
}

type taintAnalysisRequest struct {
	Root string `json:"root"`
}

// TaintAnalysis runs the taint engine over the most recently scanned
// project (spec §6 "taint_analysis(root)"). Root is accepted to match
// the spec's function signature but is not re-walked: the runtime
// already holds the records from the scan that covered it.
func TaintAnalysis(requestJSON []byte) []byte {
	var req taintAnalysisRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode taint_analysis request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(rt.TaintAnalysis())
}

// --- paginated getters ---

type pageRequest struct {
	Category  string `json:"category,omitempty"`
	Tier      string `json:"tier,omitempty"`
	PatternID string `json:"patternId,omitempty"`
	AfterID   string `json:"afterId,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// Patterns returns a keyset-paginated page of detections (spec §6
// "patterns(category?, after_id?, limit?)").
func Patterns(ctx context.Context, requestJSON []byte) []byte {
	var req pageRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode patterns request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	page, err := rt.Patterns(ctx, req.Category, req.AfterID, req.Limit)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(page)
}

// Confidence returns a keyset-paginated page of pattern confidence
// rows (spec §6 "confidence(tier?, after_id?, limit?)").
func Confidence(ctx context.Context, requestJSON []byte) []byte {
	var req pageRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode confidence request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	page, err := rt.Confidence(ctx, req.Tier, req.AfterID, req.Limit)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(page)
}

// Outliers returns a keyset-paginated page of outlier rows (spec §6
// "outliers(pattern_id?, after_id?, limit?)").
func Outliers(ctx context.Context, requestJSON []byte) []byte {
	var req pageRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode outliers request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	page, err := rt.Outliers(ctx, req.PatternID, req.AfterID, req.Limit)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(page)
}

// Conventions returns a keyset-paginated page of convention rows (spec
// §6 "conventions(category?, after_id?, limit?)").
func Conventions(ctx context.Context, requestJSON []byte) []byte {
	var req pageRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode conventions request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	page, err := rt.Conventions(ctx, req.Category, req.AfterID, req.Limit)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(page)
}

// --- enforcement ---

type rootRequest struct {
	Root string `json:"root"`
}

type auditRequest struct {
	Root      string `json:"root"`
	Timestamp int64  `json:"timestamp"`
}

// Check reports the coarse pass/fail summary over every gate (spec §6
// "check(root)").
func Check(ctx context.Context, requestJSON []byte) []byte {
	var req rootRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode check request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	sourceLines, err := readSourceLines(req.Root)
	if err != nil {
		return encodeErr(err)
	}
	passed, results, err := rt.Check(ctx, sourceLines)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(struct {
		Passed bool                     `json:"passed"`
		Gates  []enforcement.GateResult `json:"gates"`
	}{Passed: passed, Gates: results})
}

// Audit builds and persists a point-in-time health snapshot, diffed
// against the previous one (spec §6 "audit(root)").
func Audit(ctx context.Context, requestJSON []byte) []byte {
	var req auditRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode audit request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	sourceLines, err := readSourceLines(req.Root)
	if err != nil {
		return encodeErr(err)
	}
	snapshot, fresh, err := rt.Audit(ctx, req.Timestamp, sourceLines)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(struct {
		Snapshot      any `json:"snapshot"`
		NewViolations int `json:"newViolations"`
	}{Snapshot: snapshot, NewViolations: len(fresh)})
}

// Violations runs the rule evaluator and returns every violation (spec
// §6 "violations(root)").
func Violations(ctx context.Context, requestJSON []byte) []byte {
	var req rootRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode violations request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	sourceLines, err := readSourceLines(req.Root)
	if err != nil {
		return encodeErr(err)
	}
	violations, err := rt.Violations(ctx, sourceLines)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(violations)
}

// Gates runs every configured gate and returns each result (spec §6
// "gates(root)").
func Gates(ctx context.Context, requestJSON []byte) []byte {
	var req rootRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode gates request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	sourceLines, err := readSourceLines(req.Root)
	if err != nil {
		return encodeErr(err)
	}
	results, err := rt.Gates(ctx, sourceLines)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(results)
}

// --- feedback mutators ---

type violationIDRequest struct {
	ViolationID string `json:"violationId"`
}

type suppressRequest struct {
	ViolationID string `json:"violationId"`
	Reason      string `json:"reason"`
}

// DismissViolation records a one-off dismissal (spec §6 feedback
// mutators, "dismiss_violation").
func DismissViolation(ctx context.Context, requestJSON []byte) []byte {
	var req violationIDRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode dismiss_violation request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	result, err := rt.DismissViolation(ctx, req.ViolationID)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(result)
}

// FixViolation records that a violation has been addressed (spec §6
// feedback mutators, "fix_violation").
func FixViolation(ctx context.Context, requestJSON []byte) []byte {
	var req violationIDRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode fix_violation request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	result, err := rt.FixViolation(ctx, req.ViolationID)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(result)
}

// SuppressViolation records a permanent suppression with reason (spec
// §6 feedback mutators, "suppress_violation").
func SuppressViolation(ctx context.Context, requestJSON []byte) []byte {
	var req suppressRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode suppress_violation request", err))
	}
	rt, err := current()
	if err != nil {
		return encodeErr(err)
	}
	result, err := rt.SuppressViolation(ctx, req.ViolationID, req.Reason)
	if err != nil {
		return encodeErr(err)
	}
	return encodeOK(result)
}

// --- specification rendering ---

type generateSpecRequest struct {
	ModuleJSON        string `json:"moduleJson"`
	MigrationPathJSON string `json:"migrationPathJson,omitempty"`
}

// GenerateSpec renders a short specification document for one already-
// decomposed module, optionally carrying migration guidance (spec §6
// "generate_spec(module_json, migration_path_json?)"). Unlike every
// other function here it does not touch the runtime singleton: its
// input is the caller's module-decomposition output, not anything
// scan-derived.
func GenerateSpec(requestJSON []byte) []byte {
	var req generateSpecRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return encodeErr(direrr.NewConfigError("decode generate_spec request", err))
	}

	var module specgen.LogicalModule
	if err := json.Unmarshal([]byte(req.ModuleJSON), &module); err != nil {
		return encodeErr(direrr.NewConfigError("decode module_json", err))
	}

	var migration *specgen.MigrationPath
	if req.MigrationPathJSON != "" {
		var mp specgen.MigrationPath
		if err := json.Unmarshal([]byte(req.MigrationPathJSON), &mp); err != nil {
			return encodeErr(direrr.NewConfigError("decode migration_path_json", err))
		}
		migration = &mp
	}

	out := specgen.NewRenderer().Render(module, migration)
	return encodeOK(out)
}

// readSourceLines walks root with the same file discovery scanner.Walk
// uses, reading every text file's lines for the suppression-comment
// check enforcement.Evaluate performs (SPEC_FULL §1.3: the bridge, not
// the core, owns filesystem access outside of Scan).
func readSourceLines(root string) (map[string][]string, error) {
	result, err := scanner.Walk(context.Background(), scanner.Options{
		Root:       root,
		LanguageOf: parser.DetectLanguage,
	})
	if err != nil {
		return nil, err
	}

	lines := make(map[string][]string, len(result.Files))
	for _, f := range result.Files {
		file, err := os.Open(f.Path)
		if err != nil {
			continue // recoverable per-file error, spec §7
		}
		var fileLines []string
		lineScanner := bufio.NewScanner(file)
		lineScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for lineScanner.Scan() {
			fileLines = append(fileLines, lineScanner.Text())
		}
		file.Close()
		lines[f.Path] = fileLines
	}
	return lines, nil
}
