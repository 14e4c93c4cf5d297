package extractors

import (
	"github.com/driftlang/drift/internal/contracts"
	"github.com/driftlang/drift/internal/parser"
)

// AxiosExtractor recognizes axios.get/post/put/delete/patch(url, ...)
// calls, plus the bare axios(config) form, in JavaScript/TypeScript
// source.
type AxiosExtractor struct{}

// NewAxiosExtractor returns a ready-to-use AxiosExtractor.
func NewAxiosExtractor() *AxiosExtractor { return &AxiosExtractor{} }

func (e *AxiosExtractor) ID() string          { return "axios" }
func (e *AxiosExtractor) CallType() string    { return "axios" }
func (e *AxiosExtractor) Languages() []string { return []string{"javascript", "typescript"} }

func (e *AxiosExtractor) CanExtract(rec *parser.StructuralRecord) bool {
	return rec != nil && (rec.Language == "javascript" || rec.Language == "typescript")
}

var axiosMethods = map[string]string{
	"get": contracts.MethodGet, "post": contracts.MethodPost, "put": contracts.MethodPut,
	"delete": contracts.MethodDelete, "patch": contracts.MethodPatch,
}

func (e *AxiosExtractor) ExtractCalls(rec *parser.StructuralRecord) []contracts.CallInput {
	literalsByLine := indexStringLiterals(rec.Literals)

	var calls []contracts.CallInput
	for _, call := range rec.CallSites {
		var method string
		switch {
		case call.Receiver == "" && call.CalleeName == "axios":
			method = contracts.MethodGet
		case call.Receiver == "axios":
			m, ok := axiosMethods[call.CalleeName]
			if !ok {
				continue
			}
			method = m
		default:
			continue
		}

		url, ok := literalsByLine[call.Line]
		if !ok {
			continue
		}
		calls = append(calls, contracts.CallInput{
			Method:    method,
			URL:       url,
			File:      call.File,
			Line:      call.Line,
			CallType:  e.CallType(),
			IsDynamic: containsTemplateVariable(url),
		})
	}
	return calls
}
