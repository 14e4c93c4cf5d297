package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/driftlang/drift/internal/fingerprint"
)

// line1 converts a tree-sitter zero-based row to spec's 1-based line.
func line1(p sitter.Point) int { return int(p.Row) + 1 }

// bodyFingerprint hashes the raw text of a node, used as the function
// descriptor's BodyFP (spec §3).
func bodyFingerprint(node *sitter.Node, content []byte) uint64 {
	if node == nil {
		return 0
	}
	return fingerprint.OfString(node.Content(content))
}

func signatureFingerprint(name, params, returnType string) uint64 {
	return fingerprint.OfString(name + "(" + params + ")" + returnType)
}

// collectErrors walks the tree looking for ERROR nodes and MISSING
// tokens, bounded by MaxASTDepth, and records them as ErrorSpans. It is
// shared by every adapter so partial-parse tolerance (spec §4.2) is
// handled identically everywhere.
func collectErrors(root *sitter.Node, file string) []ErrorSpan {
	var spans []ErrorSpan
	var walk func(n *sitter.Node, depth int)
	walk = func(n *sitter.Node, depth int) {
		if n == nil || depth > MaxASTDepth {
			return
		}
		if n.IsError() || n.IsMissing() {
			spans = append(spans, ErrorSpan{
				File:      file,
				StartLine: line1(n.StartPoint()),
				EndLine:   line1(n.EndPoint()),
				Message:   n.Type(),
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), depth+1)
		}
	}
	walk(root, 0)
	return spans
}
