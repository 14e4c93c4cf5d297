// Package callgraph builds and queries the cross-file call graph
// described in spec §4.3: two-phase construction, five-strategy
// resolution, entry-point marking, traversal, and incremental rebuild.
package callgraph

import "github.com/driftlang/drift/internal/parser"

// Strategy labels a call-edge's resolution method, in priority order.
type Strategy string

const (
	StrategySameFile       Strategy = "same_file"
	StrategyQualifiedName  Strategy = "qualified_name"
	StrategyImportBased    Strategy = "import_based"
	StrategyExportedCross  Strategy = "exported_cross_module"
	StrategyFuzzyByName    Strategy = "fuzzy_by_name"
	StrategyConstructor    Strategy = "constructor"
)

// DefaultConfidence is the strategy-default confidence, spec §4.3.
var DefaultConfidence = map[Strategy]float64{
	StrategySameFile:      0.95,
	StrategyQualifiedName: 0.90,
	StrategyImportBased:   0.75,
	StrategyExportedCross: 0.60,
	StrategyFuzzyByName:   0.40,
	StrategyConstructor:   0.90,
}

// Node is a function descriptor augmented with an entry-point flag,
// keyed by "file::name" (spec §3).
type Node struct {
	Key           string
	File          string
	Name          string
	QualifiedName string
	StartLine     int
	EndLine       int
	Exported      bool
	Decorators    []parser.DecoratorDescriptor
	IsEntryPoint  bool
}

// Edge is a directed call-site-resolved edge between two node keys.
type Edge struct {
	From       string
	To         string
	Strategy   Strategy
	Confidence float64
	Line       int
}

// Graph is the full call graph for a build: nodes, edges, and side
// indices used during resolution and fast traversal.
type Graph struct {
	Nodes map[string]*Node
	Edges []Edge

	out map[string][]int // node key -> indices into Edges, outgoing
	in  map[string][]int // node key -> indices into Edges, incoming

	byName         map[string][]string // bare name -> node keys
	byQualified    map[string]string   // qualified name -> node key
	byExportedName map[string][]string // exported bare name -> node keys

	// ResolutionAttempts/ResolvedCount feed the resolution-rate metric
	// (spec §4.3 failure model: unresolved call sites are not errors).
	ResolutionAttempts int
	ResolvedCount      int
}

func nodeKey(file, name string) string { return file + "::" + name }
