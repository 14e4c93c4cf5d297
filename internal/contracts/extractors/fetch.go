package extractors

import (
	"regexp"
	"strings"

	"github.com/driftlang/drift/internal/contracts"
	"github.com/driftlang/drift/internal/parser"
)

// FetchExtractor recognizes bare fetch(url, init) calls in
// JavaScript/TypeScript source, the baseline frontend call shape every
// other HTTP client library's extractor builds on.
type FetchExtractor struct{}

// NewFetchExtractor returns a ready-to-use FetchExtractor.
func NewFetchExtractor() *FetchExtractor { return &FetchExtractor{} }

func (e *FetchExtractor) ID() string          { return "fetch" }
func (e *FetchExtractor) CallType() string    { return "fetch" }
func (e *FetchExtractor) Languages() []string { return []string{"javascript", "typescript"} }

func (e *FetchExtractor) CanExtract(rec *parser.StructuralRecord) bool {
	return rec != nil && (rec.Language == "javascript" || rec.Language == "typescript")
}

func (e *FetchExtractor) ExtractCalls(rec *parser.StructuralRecord) []contracts.CallInput {
	literalsByLine := indexStringLiterals(rec.Literals)

	var calls []contracts.CallInput
	for _, call := range rec.CallSites {
		if call.CalleeName != "fetch" || call.Receiver != "" {
			continue
		}
		url, ok := literalsByLine[call.Line]
		if !ok {
			continue
		}
		calls = append(calls, contracts.CallInput{
			Method:    contracts.MethodGet,
			URL:       url,
			File:      call.File,
			Line:      call.Line,
			CallType:  e.CallType(),
			IsDynamic: containsTemplateVariable(url),
		})
	}
	return calls
}

var templateVariablePattern = regexp.MustCompile(`\$\{[^}]+\}`)

// containsTemplateVariable reports whether a URL literal (already
// stripped of its surrounding quotes/backticks) embeds a template
// literal interpolation, e.g. `/users/${id}`.
func containsTemplateVariable(url string) bool {
	return templateVariablePattern.MatchString(url) || strings.Contains(url, "${")
}
