package callgraph

import "github.com/driftlang/drift/internal/parser"

// Rebuild implements the spec's permitted simple incremental variant
// (§9 open question (a)): the caller supplies the FULL current set of
// structural records — already reflecting every added/modified file
// and already omitting every removed file — and Rebuild drops the
// previous graph's nodes/edges entirely and reconstructs from that set.
// This guarantees the same end-state as a from-scratch full rebuild, at
// the cost of not surgically patching only the changed files; a more
// surgical variant is spec-permitted but not implemented here.
func Rebuild(currentRecords []*parser.StructuralRecord) *Graph {
	return Build(currentRecords)
}
