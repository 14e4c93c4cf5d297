package detectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pattern"
)

// dbCallees are callee names commonly associated with a single
// data-access round trip (query/find/fetch-style calls).
var dbCallees = map[string]bool{
	"query": true, "find": true, "findone": true, "findall": true,
	"select": true, "fetch": true, "execute": true, "get": true,
	"load": true, "read": true,
}

// allocCallees are callee names that allocate or copy without a
// caller-supplied size hint.
var allocCallees = map[string]bool{
	"clone": true, "to_vec": true, "tovec": true, "to_string": true,
	"tostring": true, "to_owned": true, "toowned": true, "collect": true,
	"append": true, "make": true,
}

// PerformanceDetector flags synchronous I/O repeated inside a function
// body (a proxy for N+1 query shapes), unbounded allocation call sites,
// and async functions that never await anything.
type PerformanceDetector struct {
	BaseDetector
}

// NewPerformanceDetector builds the performance detector.
func NewPerformanceDetector() *PerformanceDetector {
	return &PerformanceDetector{
		BaseDetector: NewBaseDetector("performance-base", CategoryPerformance, nil),
	}
}

// Detect implements Detector.
func (d *PerformanceDetector) Detect(_ context.Context, rec *parser.StructuralRecord) ([]pattern.Match, error) {
	var matches []pattern.Match

	for _, fn := range rec.Functions {
		callsInFunc := callsInRange(rec.CallSites, fn.StartLine, fn.EndLine)

		dbCalls := 0
		for _, c := range callsInFunc {
			if dbCallees[strings.ToLower(c.CalleeName)] {
				dbCalls++
			}
		}
		if dbCalls > 1 {
			matches = append(matches, pattern.Match{
				File:        rec.File,
				Line:        fn.StartLine,
				Column:      fn.Column,
				PatternID:   "PERF-N1-001",
				Category:    CategoryPerformance,
				Confidence:  0.60,
				Method:      MethodASTVisitor,
				MatchedText: fmt.Sprintf("potential N+1 in %s: %d data-access calls", fnLabel(fn), dbCalls),
			})
		}

		if fn.Async {
			hasAwait := false
			for _, c := range callsInFunc {
				if c.Await {
					hasAwait = true
					break
				}
			}
			if !hasAwait {
				matches = append(matches, pattern.Match{
					File:        rec.File,
					Line:        fn.StartLine,
					Column:      fn.Column,
					PatternID:   "PERF-ASYNC-003",
					Category:    CategoryPerformance,
					Confidence:  0.65,
					Method:      MethodASTVisitor,
					MatchedText: fmt.Sprintf("async function without await: %s", fnLabel(fn)),
				})
			}
		}
	}

	for _, c := range rec.CallSites {
		if allocCallees[strings.ToLower(c.CalleeName)] {
			matches = append(matches, pattern.Match{
				File:        rec.File,
				Line:        c.Line,
				Column:      c.Column,
				PatternID:   "PERF-ALLOC-002",
				Category:    CategoryPerformance,
				Confidence:  0.50,
				Method:      MethodASTVisitor,
				MatchedText: fmt.Sprintf("unbounded allocation: %s", c.CalleeName),
			})
		}
	}

	return matches, nil
}

func callsInRange(calls []parser.CallSiteDescriptor, start, end int) []parser.CallSiteDescriptor {
	var out []parser.CallSiteDescriptor
	for _, c := range calls {
		if c.Line >= start && c.Line <= end {
			out = append(out, c)
		}
	}
	return out
}

func fnLabel(fn parser.FunctionDescriptor) string {
	if fn.QualifiedName != "" {
		return fn.QualifiedName
	}
	return fn.Name
}
