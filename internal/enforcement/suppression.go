package enforcement

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// marker is the inline suppression comment keyword.
const marker = "drift-ignore"

// SuppressionDirective is one parsed inline suppression comment.
type SuppressionDirective struct {
	File          string
	Line          int
	AppliesToLine int
	RuleIDs       []string
}

// Checker decides whether a violation is silenced, either by an inline
// "// drift-ignore" comment on the line above it or by a path glob
// naming files the rule set never applies to (spec §3.2 "Suppression").
type Checker struct {
	PathGlobs []string
}

// NewChecker builds a suppression checker with the given path globs.
func NewChecker(pathGlobs []string) *Checker {
	return &Checker{PathGlobs: pathGlobs}
}

// IsSuppressed reports whether a violation at file:line for ruleID is
// silenced. ruleID may be empty, in which case any drift-ignore
// directive on the line above silences it, scoped or not.
func (c *Checker) IsSuppressed(file string, line int, ruleID string, sourceLines map[string][]string) bool {
	for _, g := range c.PathGlobs {
		if ok, _ := doublestar.Match(g, file); ok {
			return true
		}
	}

	lines, found := sourceLines[file]
	if !found {
		return false
	}

	if line == 0 {
		return false
	}
	checkLine := line - 1
	if checkLine == 0 || checkLine > len(lines) {
		return false
	}
	prevLine := lines[checkLine-1]
	return lineSuppresses(prevLine, ruleID)
}

// lineSuppresses parses one source line for a drift-ignore directive
// and reports whether it silences ruleID (or everything, when ruleID
// is empty or the directive lists no specific rules).
func lineSuppresses(line string, ruleID string) bool {
	trimmed := strings.TrimSpace(line)

	pos := strings.Index(trimmed, marker)
	if pos < 0 {
		return false
	}

	before := trimmed[:pos]
	isComment := strings.Contains(before, "//") ||
		strings.Contains(before, "#") ||
		strings.Contains(before, "--") ||
		strings.Contains(before, "/*")
	if !isComment {
		return false
	}

	after := strings.TrimSpace(trimmed[pos+len(marker):])
	if after == "" || strings.HasPrefix(after, "--") {
		return true
	}

	if ruleID == "" {
		return true
	}
	for _, rule := range strings.Split(after, ",") {
		if strings.TrimSpace(rule) == ruleID {
			return true
		}
	}
	return false
}

// ExtractSuppressions scans a file's lines for every drift-ignore
// directive, regardless of whether a violation currently sits on the
// line it applies to.
func ExtractSuppressions(file string, lines []string) []SuppressionDirective {
	var out []SuppressionDirective
	for i, line := range lines {
		if d, ok := parseDirective(file, i+1, line); ok {
			out = append(out, d)
		}
	}
	return out
}

func parseDirective(file string, lineNum int, line string) (SuppressionDirective, bool) {
	trimmed := strings.TrimSpace(line)
	pos := strings.Index(trimmed, marker)
	if pos < 0 {
		return SuppressionDirective{}, false
	}

	before := trimmed[:pos]
	isComment := strings.Contains(before, "//") ||
		strings.Contains(before, "#") ||
		strings.Contains(before, "--") ||
		strings.Contains(before, "/*")
	if !isComment {
		return SuppressionDirective{}, false
	}

	after := strings.TrimSpace(trimmed[pos+len(marker):])
	var ruleIDs []string
	if after != "" {
		for _, r := range strings.Split(after, ",") {
			ruleIDs = append(ruleIDs, strings.TrimSpace(r))
		}
	}

	return SuppressionDirective{
		File:          file,
		Line:          lineNum,
		AppliesToLine: lineNum + 1,
		RuleIDs:       ruleIDs,
	}, true
}
