package extractors

import (
	"testing"

	"github.com/driftlang/drift/internal/parser"
)

func TestGoHTTPExtractor_RecognizesGinRoute(t *testing.T) {
	rec := &parser.StructuralRecord{
		Language: "go",
		File:     "routes.go",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "GET", Receiver: "r", File: "routes.go", Line: 12, ArgCount: 2},
		},
		Literals: []parser.LiteralDescriptor{
			{File: "routes.go", Line: 12, Value: `"/users/:id"`, Kind: "string"},
		},
	}

	e := NewGoHTTPExtractor()
	if !e.CanExtract(rec) {
		t.Fatal("expected extractor to claim a go record")
	}

	endpoints := e.ExtractEndpoints(rec)
	if len(endpoints) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(endpoints))
	}
	if endpoints[0].Method != "GET" || endpoints[0].Path != "/users/:id" {
		t.Fatalf("unexpected endpoint: %+v", endpoints[0])
	}
}

func TestGoHTTPExtractor_RecognizesNetHTTPHandleFunc(t *testing.T) {
	rec := &parser.StructuralRecord{
		Language: "go",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "HandleFunc", Receiver: "http", File: "main.go", Line: 7, ArgCount: 2},
		},
		Literals: []parser.LiteralDescriptor{
			{File: "main.go", Line: 7, Value: `"/health"`, Kind: "string"},
		},
	}

	endpoints := NewGoHTTPExtractor().ExtractEndpoints(rec)
	if len(endpoints) != 1 || endpoints[0].Framework != "net/http" {
		t.Fatalf("expected 1 net/http endpoint, got %+v", endpoints)
	}
}

func TestExpressRouteExtractor_RecognizesAppGet(t *testing.T) {
	rec := &parser.StructuralRecord{
		Language: "typescript",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "get", Receiver: "app", File: "server.ts", Line: 3, ArgCount: 2},
		},
		Literals: []parser.LiteralDescriptor{
			{File: "server.ts", Line: 3, Value: `"/api/users"`, Kind: "string"},
		},
	}

	endpoints := NewExpressRouteExtractor().ExtractEndpoints(rec)
	if len(endpoints) != 1 || endpoints[0].Method != "GET" || endpoints[0].Path != "/api/users" {
		t.Fatalf("unexpected endpoints: %+v", endpoints)
	}
}

func TestFetchExtractor_DetectsDynamicTemplateLiteral(t *testing.T) {
	rec := &parser.StructuralRecord{
		Language: "javascript",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "fetch", File: "api.js", Line: 4, ArgCount: 1},
		},
		Literals: []parser.LiteralDescriptor{
			{File: "api.js", Line: 4, Value: "`/users/${id}`", Kind: "string"},
		},
	}

	calls := NewFetchExtractor().ExtractCalls(rec)
	if len(calls) != 1 || !calls[0].IsDynamic {
		t.Fatalf("expected 1 dynamic call, got %+v", calls)
	}
}

func TestAxiosExtractor_RecognizesMethodCall(t *testing.T) {
	rec := &parser.StructuralRecord{
		Language: "javascript",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "post", Receiver: "axios", File: "api.js", Line: 9, ArgCount: 2},
		},
		Literals: []parser.LiteralDescriptor{
			{File: "api.js", Line: 9, Value: `"/orders"`, Kind: "string"},
		},
	}

	calls := NewAxiosExtractor().ExtractCalls(rec)
	if len(calls) != 1 || calls[0].Method != "POST" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}

func TestRegistry_RunsOnlyApplicableExtractors(t *testing.T) {
	registry := NewDefaultRegistry()
	goRec := &parser.StructuralRecord{
		Language: "go",
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "GET", Receiver: "r", File: "routes.go", Line: 1, ArgCount: 2},
		},
		Literals: []parser.LiteralDescriptor{
			{File: "routes.go", Line: 1, Value: `"/ping"`, Kind: "string"},
		},
	}

	endpoints := registry.ExtractEndpoints(goRec)
	if len(endpoints) != 1 {
		t.Fatalf("expected 1 endpoint from go record, got %d", len(endpoints))
	}
	if calls := registry.ExtractCalls(goRec); len(calls) != 0 {
		t.Fatalf("expected no frontend calls from a go record, got %d", len(calls))
	}
}
