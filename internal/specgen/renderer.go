package specgen

import (
	"fmt"
	"strings"
)

// Renderer turns a LogicalModule (and an optional MigrationPath) into
// a short specification document, one section per concern.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render builds every section for module. migration may be nil, in
// which case the document omits the migration section and
// Output.HasAllSections is false.
func (r *Renderer) Render(module LogicalModule, migration *MigrationPath) Output {
	sections := []Section{
		{Name: SectionOverview, Content: renderOverview(module)},
		{Name: SectionInterface, Content: renderInterface(module)},
		{Name: SectionPriors, Content: renderPriors(module)},
	}
	if migration != nil {
		sections = append(sections, Section{Name: SectionMigration, Content: renderMigration(module, *migration)})
	}

	return Output{
		ModuleName:      module.Name,
		Sections:        sections,
		TotalTokenCount: totalTokenCount(sections),
		HasAllSections:  len(sections) == len(requiredSections),
	}
}

func renderOverview(m LogicalModule) string {
	return fmt.Sprintf(
		"%s spans %d file(s), cohesion %.2f, coupling %.2f, estimated complexity %d.",
		m.Name, m.FileCount, m.Cohesion, m.Coupling, m.EstimatedComplexity,
	)
}

func renderInterface(m LogicalModule) string {
	return fmt.Sprintf(
		"%d public entry point(s) backed by %d internal function(s).",
		m.PublicInterfaceCount, m.InternalFunctionCount,
	)
}

func renderPriors(m LogicalModule) string {
	if m.AppliedPriorCount == 0 {
		return "No learned patterns were applied to this module."
	}
	return fmt.Sprintf("%d learned pattern(s) were applied when this module was decomposed.", m.AppliedPriorCount)
}

func renderMigration(m LogicalModule, mp MigrationPath) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Migrating %s from %s", m.Name, mp.SourceLanguage)
	if mp.SourceFramework != "" {
		fmt.Fprintf(&b, " (%s)", mp.SourceFramework)
	}
	fmt.Fprintf(&b, " to %s", mp.TargetLanguage)
	if mp.TargetFramework != "" {
		fmt.Fprintf(&b, " (%s)", mp.TargetFramework)
	}
	b.WriteString(". Preserve the public interface count and re-verify coupling after the port.")
	return b.String()
}

// totalTokenCount sums a conservative ~4-characters-per-token estimate
// across every section, the same simple estimator the teacher's
// context budgeting uses for code and prose alike.
func totalTokenCount(sections []Section) int {
	total := 0
	for _, s := range sections {
		total += estimateTokensSimple(s.Content)
	}
	return total
}

func estimateTokensSimple(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
