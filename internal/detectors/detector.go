// Package detectors implements the built-in pattern detectors that feed
// the aggregation pipeline in internal/pattern: performance, testing,
// and taint-backed security matches (spec §3.4).
package detectors

import (
	"context"

	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pattern"
)

// Detector is the contract every built-in detector satisfies. Unlike
// internal/taint's registry-driven pattern matching, these are plain
// Go types, one file each, each walking a single parsed file.
type Detector interface {
	ID() string
	Category() string
	Languages() []string
	Detect(ctx context.Context, rec *parser.StructuralRecord) ([]pattern.Match, error)
}

// BaseDetector supplies the identity fields common to every detector.
// Embed this in concrete detectors for convenience.
type BaseDetector struct {
	id        string
	category  string
	languages []string
}

// NewBaseDetector builds a BaseDetector. An empty languages slice means
// the detector applies to every language.
func NewBaseDetector(id, category string, languages []string) BaseDetector {
	return BaseDetector{id: id, category: category, languages: languages}
}

func (b BaseDetector) ID() string         { return b.id }
func (b BaseDetector) Category() string   { return b.category }
func (b BaseDetector) Languages() []string { return b.languages }

// SupportsLanguage reports whether the detector applies to lang.
func (b BaseDetector) SupportsLanguage(lang string) bool {
	if len(b.languages) == 0 {
		return true
	}
	for _, l := range b.languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Pattern category constants, mirrored from pattern.Match.Category usage.
const (
	CategoryPerformance = "performance"
	CategoryTesting     = "testing"
	CategorySecurity    = "security"
)

// DetectionMethod values recorded in metadata-adjacent call sites. The
// aggregation pipeline doesn't carry this field on pattern.Match itself,
// so detectors fold it into Method.
const (
	MethodASTVisitor = "ast_visitor"
	MethodTaintFlow  = "taint_flow"
)
