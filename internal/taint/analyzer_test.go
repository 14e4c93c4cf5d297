package taint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/parser"
)

func TestRegistry_MatchIsCaseInsensitiveSubstring(t *testing.T) {
	r := NewDefaultRegistry()

	require.NotNil(t, r.MatchSource("REQ.QUERY.name"))
	require.NotNil(t, r.MatchSink("db.Query"))
	require.NotNil(t, r.MatchSanitizer("Parameterize"))
	require.Nil(t, r.MatchSink("totally_unrelated_call"))
}

func TestRegistry_LoadJSONC_MergesCustomPatterns(t *testing.T) {
	r := NewRegistry()
	const doc = `{
		// custom registry
		"sources": [{"pattern": "customSource", "source_type": "user_input"}],
		"sinks": [{"pattern": "customSink", "sink_type": "sql_query", "required_sanitizers": ["sql_parameterize"]}],
		"sanitizers": [{"pattern": "customSanitize", "sanitizer_type": "sql_parameterize", "protects_against": ["sql_query"]}],
	}`
	require.NoError(t, r.LoadJSONC([]byte(doc)))
	require.Len(t, r.Sources, 1)
	require.Len(t, r.Sinks, 1)
	require.Len(t, r.Sanitizers, 1)
	require.NotNil(t, r.MatchSource("customSource"))
}

func TestRegistry_LoadJSONC_RejectsMissingRequiredField(t *testing.T) {
	r := NewRegistry()
	const doc = `{"sources": [{"source_type": "user_input"}]}`
	require.Error(t, r.LoadJSONC([]byte(doc)))
}

func TestRegistry_LoadYAML_MergesCustomPatterns(t *testing.T) {
	r := NewRegistry()
	const doc = `
sources:
  - pattern: yamlSource
    source_type: user_input
`
	require.NoError(t, r.LoadYAML([]byte(doc)))
	require.Len(t, r.Sources, 1)
}

// makeRecord builds a minimal structural record with one function body
// spanning lines startLine..endLine, the given call sites, and one
// parameter name.
func makeRecord(file string, param string, startLine, endLine int, calls []parser.CallSiteDescriptor) *parser.StructuralRecord {
	return &parser.StructuralRecord{
		File: file,
		Functions: []parser.FunctionDescriptor{
			{
				Name:      "handler",
				File:      file,
				StartLine: startLine,
				EndLine:   endLine,
				Params:    []string{param},
			},
		},
		CallSites: calls,
	}
}

func TestAnalyzeRecord_UnsanitizedFlow_EmitsHighConfidence(t *testing.T) {
	a := NewAnalyzer(NewDefaultRegistry())
	rec := makeRecord("handler.go", "req.query", 1, 10, []parser.CallSiteDescriptor{
		{CalleeName: "query", Receiver: "db", File: "handler.go", Line: 5, Column: 2},
	})

	flows := a.AnalyzeRecord(rec)
	require.Len(t, flows, 1)
	require.False(t, flows[0].IsSanitized)
	require.InDelta(t, 0.85, flows[0].Confidence, 1e-9)
	require.Equal(t, SinkSQLQuery, flows[0].Sink.SinkType)
	require.Equal(t, "CWE-89", flows[0].CWEID)
}

func TestAnalyzeRecord_SanitizedFlow_LowersConfidence(t *testing.T) {
	a := NewAnalyzer(NewDefaultRegistry())
	rec := makeRecord("handler.go", "req.query", 1, 10, []parser.CallSiteDescriptor{
		{CalleeName: "parameterize", Receiver: "req.query", File: "handler.go", Line: 3, Column: 2},
		{CalleeName: "query", Receiver: "db", File: "handler.go", Line: 5, Column: 2},
	})

	flows := a.AnalyzeRecord(rec)
	require.Len(t, flows, 1)
	require.True(t, flows[0].IsSanitized)
	require.InDelta(t, 0.30, flows[0].Confidence, 1e-9)
	require.NotEmpty(t, flows[0].SanitizersApplied)
}

func TestAnalyzeRecord_NoSource_NoFlow(t *testing.T) {
	a := NewAnalyzer(NewDefaultRegistry())
	rec := makeRecord("handler.go", "count", 1, 10, []parser.CallSiteDescriptor{
		{CalleeName: "query", Receiver: "db", File: "handler.go", Line: 5, Column: 2},
	})

	flows := a.AnalyzeRecord(rec)
	require.Empty(t, flows)
}

func TestAnalyzeRecord_PathHasSourceAndSinkHops(t *testing.T) {
	a := NewAnalyzer(NewDefaultRegistry())
	rec := makeRecord("handler.go", "req.query", 2, 10, []parser.CallSiteDescriptor{
		{CalleeName: "query", Receiver: "db", File: "handler.go", Line: 7, Column: 2},
	})

	flows := a.AnalyzeRecord(rec)
	require.Len(t, flows, 1)
	require.Len(t, flows[0].Path, 2)
	require.Equal(t, 2, flows[0].Path[0].Line)
	require.Equal(t, 7, flows[0].Path[1].Line)
}

func TestAnalyzeRecord_CallsOutOfLineRangeIgnored(t *testing.T) {
	a := NewAnalyzer(NewDefaultRegistry())
	rec := makeRecord("handler.go", "req.query", 10, 20, []parser.CallSiteDescriptor{
		{CalleeName: "query", Receiver: "db", File: "handler.go", Line: 5, Column: 2}, // before function start
	})

	flows := a.AnalyzeRecord(rec)
	require.Empty(t, flows)
}
