package detectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pattern"
)

var testFrameworkCallees = map[string]bool{
	"describe": true, "it": true, "test": true, "expect": true, "assert": true,
	"beforeeach": true, "aftereach": true, "beforeall": true, "afterall": true,
}

var mockCalleeSubstrings = []string{"mock", "stub", "spy", "patch"}

var assertionCalleeSubstrings = []string{
	"assertequal", "assertequals", "assertthat", "tobe", "toequal",
	"tohavebeencalled", "assert_eq",
}

var skipMarkerCallees = map[string]bool{
	"skip": true, "xit": true, "xdescribe": true, "pending": true, "todo": true,
}

// TestingDetector flags test framework usage, mock/spy usage, assertion
// call sites, and test functions (by naming convention) that contain no
// assertion call anywhere in their body — a likely no-op test — along
// with skip/disable markers left in place.
type TestingDetector struct {
	BaseDetector
}

// NewTestingDetector builds the testing detector.
func NewTestingDetector() *TestingDetector {
	return &TestingDetector{
		BaseDetector: NewBaseDetector("testing-base", CategoryTesting, nil),
	}
}

// Detect implements Detector.
func (d *TestingDetector) Detect(_ context.Context, rec *parser.StructuralRecord) ([]pattern.Match, error) {
	var matches []pattern.Match

	for _, c := range rec.CallSites {
		lower := strings.ToLower(c.CalleeName)

		if testFrameworkCallees[lower] {
			matches = append(matches, pattern.Match{
				File: rec.File, Line: c.Line, Column: c.Column,
				PatternID: "TEST-FRAMEWORK-001", Category: CategoryTesting,
				Confidence: 0.90, Method: MethodASTVisitor,
				MatchedText: fmt.Sprintf("test framework call: %s", c.CalleeName),
			})
		}

		if containsAny(lower, mockCalleeSubstrings) {
			matches = append(matches, pattern.Match{
				File: rec.File, Line: c.Line, Column: c.Column,
				PatternID: "TEST-MOCK-001", Category: CategoryTesting,
				Confidence: 0.85, Method: MethodASTVisitor,
				MatchedText: fmt.Sprintf("mock pattern: %s", c.CalleeName),
			})
		}

		if containsAny(lower, assertionCalleeSubstrings) {
			matches = append(matches, pattern.Match{
				File: rec.File, Line: c.Line, Column: c.Column,
				PatternID: "TEST-ASSERT-001", Category: CategoryTesting,
				Confidence: 0.90, Method: MethodASTVisitor,
				MatchedText: fmt.Sprintf("assertion: %s", c.CalleeName),
			})
		}

		if skipMarkerCallees[lower] {
			matches = append(matches, pattern.Match{
				File: rec.File, Line: c.Line, Column: c.Column,
				PatternID: "TEST-SKIP-001", Category: CategoryTesting,
				Confidence: 0.80, Method: MethodASTVisitor,
				MatchedText: fmt.Sprintf("skipped/disabled test marker: %s", c.CalleeName),
			})
		}
	}

	for _, fn := range rec.Functions {
		if !looksLikeTestFunction(fn.Name) {
			continue
		}
		matches = append(matches, pattern.Match{
			File: rec.File, Line: fn.StartLine, Column: fn.Column,
			PatternID: "TEST-FUNC-001", Category: CategoryTesting,
			Confidence: 0.85, Method: MethodASTVisitor,
			MatchedText: fmt.Sprintf("test function: %s", fnLabel(fn)),
		})

		body := callsInRange(rec.CallSites, fn.StartLine, fn.EndLine)
		hasAssertion := false
		for _, c := range body {
			if containsAny(strings.ToLower(c.CalleeName), assertionCalleeSubstrings) {
				hasAssertion = true
				break
			}
		}
		if !hasAssertion {
			matches = append(matches, pattern.Match{
				File: rec.File, Line: fn.StartLine, Column: fn.Column,
				PatternID: "TEST-NOASSERT-002", Category: CategoryTesting,
				Confidence: 0.55, Method: MethodASTVisitor,
				MatchedText: fmt.Sprintf("test function with no assertion call: %s", fnLabel(fn)),
			})
		}
	}

	return matches, nil
}

func looksLikeTestFunction(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "test_") ||
		strings.HasPrefix(lower, "test") ||
		strings.HasSuffix(lower, "_test") ||
		strings.HasPrefix(lower, "should_") ||
		strings.HasPrefix(lower, "it_")
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
