package extractors

import (
	"strings"

	"github.com/driftlang/drift/internal/contracts"
	"github.com/driftlang/drift/internal/parser"
)

// GoHTTPExtractor recognizes net/http, gorilla/mux, gin, and echo style
// route registrations from a Go StructuralRecord. Rather than
// re-walking the tree-sitter AST itself, it pairs each call site whose
// callee looks like a route-registration method with the string
// literal parser recorded on the same line — the path argument every
// one of these frameworks takes first.
type GoHTTPExtractor struct{}

// NewGoHTTPExtractor returns a ready-to-use GoHTTPExtractor.
func NewGoHTTPExtractor() *GoHTTPExtractor { return &GoHTTPExtractor{} }

func (e *GoHTTPExtractor) ID() string          { return "go-http" }
func (e *GoHTTPExtractor) Framework() string   { return "go-http" }
func (e *GoHTTPExtractor) Languages() []string { return []string{"go"} }

func (e *GoHTTPExtractor) CanExtract(rec *parser.StructuralRecord) bool {
	return rec != nil && rec.Language == "go"
}

var goRouteMethods = map[string]string{
	"GET": "GET", "POST": "POST", "PUT": "PUT", "DELETE": "DELETE",
	"PATCH": "PATCH", "HEAD": "HEAD", "OPTIONS": "OPTIONS", "Any": contracts.MethodAny,
}

func (e *GoHTTPExtractor) ExtractEndpoints(rec *parser.StructuralRecord) []contracts.EndpointInput {
	literalsByLine := indexStringLiterals(rec.Literals)

	var endpoints []contracts.EndpointInput
	for _, call := range rec.CallSites {
		method, handleStyle := "", false

		if m, ok := goRouteMethods[call.CalleeName]; ok {
			method = m
		} else if call.CalleeName == "HandleFunc" || call.CalleeName == "Handle" {
			method = contracts.MethodAny
			handleStyle = true
		} else {
			continue
		}

		path, ok := literalsByLine[call.Line]
		if !ok {
			continue
		}

		framework := "gin"
		switch {
		case handleStyle && (call.Receiver == "" || call.Receiver == "http"):
			framework = "net/http"
		case handleStyle:
			framework = "gorilla/mux"
		case strings.Contains(strings.ToLower(call.Receiver), "echo"):
			framework = "echo"
		}

		endpoints = append(endpoints, contracts.EndpointInput{
			Method:    method,
			Path:      path,
			File:      call.File,
			Line:      call.Line,
			Framework: framework,
		})
	}
	return endpoints
}

// indexStringLiterals maps line number to the first string literal
// value recorded on that line, stripped of its surrounding quotes.
func indexStringLiterals(literals []parser.LiteralDescriptor) map[int]string {
	byLine := make(map[int]string, len(literals))
	for _, lit := range literals {
		if lit.Kind != "string" {
			continue
		}
		if _, exists := byLine[lit.Line]; exists {
			continue
		}
		byLine[lit.Line] = cleanStringLiteral(lit.Value)
	}
	return byLine
}

func cleanStringLiteral(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
