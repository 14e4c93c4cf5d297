package detectors

import (
	"context"
	"fmt"

	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pattern"
	"github.com/driftlang/drift/internal/taint"
)

// SecurityDetector adapts internal/taint's source-to-sink flow analysis
// to the Detector contract, so taint flows surface through the same
// aggregation pipeline as the performance and testing detectors rather
// than through a separate reporting path.
type SecurityDetector struct {
	BaseDetector
	analyzer *taint.Analyzer
}

// NewSecurityDetector builds a security detector backed by registry,
// or by the built-in default pattern set when registry is nil.
func NewSecurityDetector(registry *taint.Registry) *SecurityDetector {
	if registry == nil {
		registry = taint.NewDefaultRegistry()
	}
	return &SecurityDetector{
		BaseDetector: NewBaseDetector("security-taint", CategorySecurity, nil),
		analyzer:     taint.NewAnalyzer(registry),
	}
}

// Detect implements Detector, translating each unsanitized taint flow
// found in rec into a pattern.Match carrying the flow's CWE ID.
func (d *SecurityDetector) Detect(_ context.Context, rec *parser.StructuralRecord) ([]pattern.Match, error) {
	flows := d.analyzer.AnalyzeRecord(rec)

	var matches []pattern.Match
	for _, f := range flows {
		if f.IsSanitized {
			continue
		}
		matches = append(matches, pattern.Match{
			File:          f.Sink.File,
			Line:          f.Sink.Line,
			Column:        f.Sink.Column,
			PatternID:     fmt.Sprintf("SEC-%s", f.CWEID),
			Category:      CategorySecurity,
			Confidence:    f.Confidence,
			Method:        MethodTaintFlow,
			MatchedText:   fmt.Sprintf("%s flows from %s to %s", f.CWEID, f.Source.Expression, f.Sink.Expression),
			CWEIDs:        []string{f.CWEID},
			OWASPCategory: owaspCategoryForCWE(f.CWEID),
		})
	}
	return matches, nil
}

// owaspCategoryForCWE maps the CWE identifiers internal/taint assigns
// to sinks onto the OWASP Top 10 (2021) category they fall under.
func owaspCategoryForCWE(cweID string) string {
	switch cweID {
	case "CWE-89", "CWE-78", "CWE-95", "CWE-611", "CWE-917":
		return "A03:2021-Injection"
	case "CWE-79":
		return "A03:2021-Injection"
	case "CWE-502":
		return "A08:2021-Software and Data Integrity Failures"
	case "CWE-601":
		return "A01:2021-Broken Access Control"
	case "CWE-918":
		return "A10:2021-Server-Side Request Forgery"
	case "CWE-22":
		return "A01:2021-Broken Access Control"
	case "CWE-117", "CWE-113":
		return "A09:2021-Security Logging and Monitoring Failures"
	case "CWE-1333":
		return "A05:2021-Security Misconfiguration"
	case "CWE-434":
		return "A04:2021-Insecure Design"
	default:
		return ""
	}
}
