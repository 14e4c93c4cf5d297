// Package extractors recognizes backend route registrations and
// frontend API call sites from a parser.StructuralRecord, producing
// the EndpointInput/CallInput pairs internal/contracts.Analyzer
// matches against each other (spec §4.11, SPEC_FULL §3.3).
package extractors

import (
	"github.com/driftlang/drift/internal/contracts"
	"github.com/driftlang/drift/internal/parser"
)

// EndpointExtractor recognizes backend route registrations in one
// language/framework family.
type EndpointExtractor interface {
	ID() string
	Framework() string
	Languages() []string
	CanExtract(rec *parser.StructuralRecord) bool
	ExtractEndpoints(rec *parser.StructuralRecord) []contracts.EndpointInput
}

// APICallExtractor recognizes frontend API call sites in one
// language/library family.
type APICallExtractor interface {
	ID() string
	CallType() string
	Languages() []string
	CanExtract(rec *parser.StructuralRecord) bool
	ExtractCalls(rec *parser.StructuralRecord) []contracts.CallInput
}

// Registry holds every extractor this build knows about, and is the
// entry point callgraph-level callers use to run them across a
// StructuralRecord without knowing the concrete extractor types.
type Registry struct {
	endpointExtractors []EndpointExtractor
	callExtractors     []APICallExtractor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry returns a Registry pre-populated with every
// extractor this package ships.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterEndpointExtractor(NewGoHTTPExtractor())
	r.RegisterEndpointExtractor(NewExpressRouteExtractor())
	r.RegisterCallExtractor(NewFetchExtractor())
	r.RegisterCallExtractor(NewAxiosExtractor())
	return r
}

func (r *Registry) RegisterEndpointExtractor(e EndpointExtractor) {
	r.endpointExtractors = append(r.endpointExtractors, e)
}

func (r *Registry) RegisterCallExtractor(e APICallExtractor) {
	r.callExtractors = append(r.callExtractors, e)
}

// ExtractEndpoints runs every registered endpoint extractor that
// claims rec and concatenates their results.
func (r *Registry) ExtractEndpoints(rec *parser.StructuralRecord) []contracts.EndpointInput {
	var endpoints []contracts.EndpointInput
	for _, e := range r.endpointExtractors {
		if e.CanExtract(rec) {
			endpoints = append(endpoints, e.ExtractEndpoints(rec)...)
		}
	}
	return endpoints
}

// ExtractCalls runs every registered call extractor that claims rec
// and concatenates their results.
func (r *Registry) ExtractCalls(rec *parser.StructuralRecord) []contracts.CallInput {
	var calls []contracts.CallInput
	for _, e := range r.callExtractors {
		if e.CanExtract(rec) {
			calls = append(calls, e.ExtractCalls(rec)...)
		}
	}
	return calls
}
