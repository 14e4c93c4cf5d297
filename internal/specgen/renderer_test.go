package specgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_WithoutMigrationOmitsMigrationSection(t *testing.T) {
	out := NewRenderer().Render(LogicalModule{Name: "billing", FileCount: 3}, nil)

	require.Equal(t, "billing", out.ModuleName)
	require.Len(t, out.Sections, 3)
	require.False(t, out.HasAllSections)
	for _, s := range out.Sections {
		require.NotEqual(t, SectionMigration, s.Name)
	}
}

func TestRender_WithMigrationIncludesAllSections(t *testing.T) {
	mp := MigrationPath{SourceLanguage: "rust", TargetLanguage: "go", TargetFramework: "net/http"}
	out := NewRenderer().Render(LogicalModule{Name: "billing"}, &mp)

	require.True(t, out.HasAllSections)
	require.Len(t, out.Sections, 4)
	require.Equal(t, SectionMigration, out.Sections[3].Name)
	require.Contains(t, out.Sections[3].Content, "rust")
	require.Contains(t, out.Sections[3].Content, "go")
	require.Contains(t, out.Sections[3].Content, "net/http")
}

func TestRender_TotalTokenCountSumsAllSections(t *testing.T) {
	out := NewRenderer().Render(LogicalModule{Name: "x"}, nil)

	sum := 0
	for _, s := range out.Sections {
		sum += estimateTokensSimple(s.Content)
	}
	require.Equal(t, sum, out.TotalTokenCount)
	require.Positive(t, out.TotalTokenCount)
}

func TestRender_ZeroAppliedPriorsNotedExplicitly(t *testing.T) {
	out := NewRenderer().Render(LogicalModule{Name: "x", AppliedPriorCount: 0}, nil)
	require.Contains(t, out.Sections[2].Content, "No learned patterns")
}
