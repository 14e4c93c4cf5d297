package callgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/parser"
)

func TestBuild_SameFileResolutionWins(t *testing.T) {
	a := &parser.StructuralRecord{
		File: "a.py",
		Functions: []parser.FunctionDescriptor{
			{Name: "foo", File: "a.py", StartLine: 1, EndLine: 2},
			{Name: "caller", File: "a.py", StartLine: 4, EndLine: 6},
		},
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "foo", File: "a.py", Line: 5},
		},
		Imports: []parser.ImportDescriptor{
			{Source: "b", File: "a.py", Line: 0},
		},
	}
	b := &parser.StructuralRecord{
		File: "b.py",
		Functions: []parser.FunctionDescriptor{
			{Name: "foo", File: "b.py", StartLine: 1, EndLine: 2},
		},
	}

	g := Build([]*parser.StructuralRecord{a, b})

	require.Len(t, g.Edges, 1)
	e := g.Edges[0]
	require.Equal(t, "a.py::caller", e.From)
	require.Equal(t, "a.py::foo", e.To)
	require.Equal(t, StrategySameFile, e.Strategy)
	require.Equal(t, 0.95, e.Confidence)
}

func TestBuild_ImportBasedResolution(t *testing.T) {
	a := &parser.StructuralRecord{
		File: "a.py",
		Functions: []parser.FunctionDescriptor{
			{Name: "caller", File: "a.py", StartLine: 1, EndLine: 3},
		},
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "helper", File: "a.py", Line: 2},
		},
		Imports: []parser.ImportDescriptor{
			{Source: "utils", File: "a.py", Line: 0},
		},
	}
	b := &parser.StructuralRecord{
		File: "utils.py",
		Functions: []parser.FunctionDescriptor{
			{Name: "helper", File: "utils.py", StartLine: 1, EndLine: 2},
		},
	}
	g := Build([]*parser.StructuralRecord{a, b})
	require.Len(t, g.Edges, 1)
	require.Equal(t, StrategyImportBased, g.Edges[0].Strategy)
	require.Equal(t, "utils.py::helper", g.Edges[0].To)
}

func TestTraverse_ExcludesStartNode(t *testing.T) {
	a := &parser.StructuralRecord{
		File: "a.go",
		Functions: []parser.FunctionDescriptor{
			{Name: "A", File: "a.go", StartLine: 1, EndLine: 3},
			{Name: "B", File: "a.go", StartLine: 4, EndLine: 6},
			{Name: "C", File: "a.go", StartLine: 7, EndLine: 9},
		},
		CallSites: []parser.CallSiteDescriptor{
			{CalleeName: "B", File: "a.go", Line: 2},
			{CalleeName: "C", File: "a.go", Line: 5},
		},
	}
	g := Build([]*parser.StructuralRecord{a})
	reached := g.ForwardReachable("a.go::A", 0)
	require.ElementsMatch(t, []string{"a.go::B", "a.go::C"}, reached)
	require.NotContains(t, reached, "a.go::A")
}

func TestDeadCode_ExcludesEntryPoints(t *testing.T) {
	a := &parser.StructuralRecord{
		File: "main.go",
		Functions: []parser.FunctionDescriptor{
			{Name: "main", File: "main.go", StartLine: 1, EndLine: 3},
			{Name: "unused", File: "main.go", StartLine: 5, EndLine: 6},
		},
	}
	g := Build([]*parser.StructuralRecord{a})
	dead := g.DeadCode(false)

	var unusedExcluded, unusedReported bool
	for _, d := range dead {
		if d.Node == "main.go::unused" && !d.Excluded {
			unusedReported = true
		}
		if d.Node == "main.go::main" && d.Excluded {
			unusedExcluded = true
		}
	}
	require.True(t, unusedReported, "unused non-entry function should be reported as dead")
	require.True(t, unusedExcluded, "main is an entry point and must be excluded")
}
