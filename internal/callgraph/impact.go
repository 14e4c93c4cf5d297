package callgraph

import "strings"

// BlastRadius is the inverse-reachable set of a function plus a
// normalised risk factor (SPEC_FULL §3.1).
type BlastRadius struct {
	Node        string
	Direct      []string
	Transitive  []string
	RiskFactor  float64
}

// Impact computes the blast radius of node: direct callers (depth 1)
// and the full transitive inverse-reachable set.
func (g *Graph) Impact(node string) BlastRadius {
	direct := g.Traverse(node, false, 1)
	transitive := g.InverseReachable(node, 0)
	risk := 0.0
	if total := len(g.Nodes); total > 0 {
		risk = float64(len(transitive)) / float64(total)
		if risk > 1.0 {
			risk = 1.0
		}
	}
	return BlastRadius{Node: node, Direct: direct, Transitive: transitive, RiskFactor: risk}
}

// DeadFunction is a node with zero incoming edges. Excluded and Reason
// mark nodes exempted by the entry-point heuristic or an exclusion
// category; those are reported too, with a lower Confidence.
type DeadFunction struct {
	Node       string
	Excluded   bool
	Reason     string
	Confidence float64
}

// ExclusionCategory names a reason a dead-looking function is not
// actually reportable (SPEC_FULL §3.1).
type ExclusionCategory string

const (
	ExclusionEntryPoint     ExclusionCategory = "entry_point"
	ExclusionTestFile       ExclusionCategory = "test_file"
	ExclusionGeneratedFile  ExclusionCategory = "generated_file"
	ExclusionPublicAPI      ExclusionCategory = "public_api"
)

// DeadCode finds nodes with zero incoming edges. libraryMode, when
// true, additionally excludes exported ("public API") nodes.
func (g *Graph) DeadCode(libraryMode bool) []DeadFunction {
	var out []DeadFunction
	for key, n := range g.Nodes {
		if len(g.in[key]) > 0 {
			continue
		}
		df := DeadFunction{Node: key, Confidence: 0.8}
		switch {
		case looksLikeTestFile(n.File):
			df.Excluded = true
			df.Reason = string(ExclusionTestFile)
			df.Confidence = 0.3
		case looksGenerated(n.File):
			df.Excluded = true
			df.Reason = string(ExclusionGeneratedFile)
			df.Confidence = 0.2
		case libraryMode && n.Exported:
			df.Excluded = true
			df.Reason = string(ExclusionPublicAPI)
			df.Confidence = 0.4
		case n.IsEntryPoint:
			df.Excluded = true
			df.Reason = string(ExclusionEntryPoint)
			df.Confidence = 0.1
		}
		out = append(out, df)
	}
	return out
}

func looksLikeTestFile(file string) bool {
	lower := strings.ToLower(file)
	return strings.Contains(lower, "_test.") || strings.Contains(lower, "/test/") ||
		strings.Contains(lower, "/tests/") || strings.HasPrefix(lower, "test_")
}

func looksGenerated(file string) bool {
	lower := strings.ToLower(file)
	return strings.Contains(lower, ".gen.") || strings.Contains(lower, ".pb.") ||
		strings.Contains(lower, "/generated/")
}
