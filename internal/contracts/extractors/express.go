package extractors

import (
	"strings"

	"github.com/driftlang/drift/internal/contracts"
	"github.com/driftlang/drift/internal/parser"
)

// ExpressRouteExtractor recognizes Express/Fastify-style route
// registrations (app.get("/path", handler), router.post(...)) from a
// JavaScript/TypeScript StructuralRecord.
type ExpressRouteExtractor struct{}

// NewExpressRouteExtractor returns a ready-to-use ExpressRouteExtractor.
func NewExpressRouteExtractor() *ExpressRouteExtractor { return &ExpressRouteExtractor{} }

func (e *ExpressRouteExtractor) ID() string          { return "express" }
func (e *ExpressRouteExtractor) Framework() string   { return "express" }
func (e *ExpressRouteExtractor) Languages() []string { return []string{"javascript", "typescript"} }

func (e *ExpressRouteExtractor) CanExtract(rec *parser.StructuralRecord) bool {
	return rec != nil && (rec.Language == "javascript" || rec.Language == "typescript")
}

var expressRouteMethods = map[string]string{
	"get": contracts.MethodGet, "post": contracts.MethodPost, "put": contracts.MethodPut,
	"delete": contracts.MethodDelete, "patch": contracts.MethodPatch, "use": contracts.MethodUse,
	"all": contracts.MethodAny,
}

func (e *ExpressRouteExtractor) ExtractEndpoints(rec *parser.StructuralRecord) []contracts.EndpointInput {
	literalsByLine := indexStringLiterals(rec.Literals)

	var endpoints []contracts.EndpointInput
	for _, call := range rec.CallSites {
		method, ok := expressRouteMethods[call.CalleeName]
		if !ok {
			continue
		}
		if !isAppOrRouterReceiver(call.Receiver) {
			continue
		}
		path, ok := literalsByLine[call.Line]
		if !ok || !strings.HasPrefix(path, "/") {
			continue
		}

		endpoints = append(endpoints, contracts.EndpointInput{
			Method:    method,
			Path:      path,
			File:      call.File,
			Line:      call.Line,
			Framework: "express",
		})
	}
	return endpoints
}

func isAppOrRouterReceiver(receiver string) bool {
	lower := strings.ToLower(receiver)
	return receiver == "app" || strings.Contains(lower, "router") || strings.Contains(lower, "app")
}
