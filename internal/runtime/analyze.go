package runtime

import (
	"github.com/driftlang/drift/internal/callgraph"
	"github.com/driftlang/drift/internal/contracts"
	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/taint"
)

// AnalyzeResult summarizes the call graph produced by the most recent
// Scan (spec §6 "analyze()").
type AnalyzeResult struct {
	NodeCount          int
	EdgeCount          int
	ResolutionAttempts int
	ResolvedCount      int
}

// Analyze reports summary statistics over the current call graph.
// Scan must have run at least once; an empty graph is not an error.
func (r *Runtime) Analyze() AnalyzeResult {
	r.graphMu.RLock()
	defer r.graphMu.RUnlock()
	if r.graph == nil {
		return AnalyzeResult{}
	}
	return AnalyzeResult{
		NodeCount:          len(r.graph.Nodes),
		EdgeCount:          len(r.graph.Edges),
		ResolutionAttempts: r.graph.ResolutionAttempts,
		ResolvedCount:      r.graph.ResolvedCount,
	}
}

// CallGraph returns the current call graph, or nil if Scan has not run
// yet.
func (r *Runtime) CallGraph() *callgraph.Graph {
	r.graphMu.RLock()
	defer r.graphMu.RUnlock()
	return r.graph
}

// Impact returns the blast radius of node (spec §3.1 graph/impact).
func (r *Runtime) Impact(node string) (callgraph.BlastRadius, bool) {
	g := r.CallGraph()
	if g == nil {
		return callgraph.BlastRadius{}, false
	}
	return g.Impact(node), true
}

// DeadCode returns functions unreachable from any entry point (spec
// §3.1 graph/impact/dead_code).
func (r *Runtime) DeadCode(libraryMode bool) []callgraph.DeadFunction {
	g := r.CallGraph()
	if g == nil {
		return nil
	}
	return g.DeadCode(libraryMode)
}

// Boundaries runs the frontend/backend contract analyzer over every
// endpoint and call site extracted from the most recent Scan's records
// (spec §3.3, §6 "boundaries()" — takes no root argument, operating on
// whatever is currently scanned).
func (r *Runtime) Boundaries() *contracts.AnalysisResult {
	input := &contracts.AnalysisInput{}
	for _, rec := range r.scannedRecords() {
		input.Endpoints = append(input.Endpoints, r.extractors.ExtractEndpoints(rec)...)
		input.Calls = append(input.Calls, r.extractors.ExtractCalls(rec)...)
	}
	return r.contracts.Analyze(input)
}

// TaintAnalysis runs the taint engine over the most recent Scan's
// records, returning every flow found regardless of sanitization
// status (spec §6 "taint_analysis(root)" — callers filter IsSanitized
// as needed).
func (r *Runtime) TaintAnalysis() []taint.Flow {
	var flows []taint.Flow
	for _, rec := range r.scannedRecords() {
		flows = append(flows, r.taint.AnalyzeRecord(rec)...)
	}
	return flows
}

// scannedRecords returns the structural records from the most recent
// Scan, or nil if none has run yet.
func (r *Runtime) scannedRecords() []*parser.StructuralRecord {
	r.graphMu.RLock()
	defer r.graphMu.RUnlock()
	return r.lastRecords
}
