package coupling

import "testing"

func TestBuilder_GroupsFilesIntoModulesByLeadingSegments(t *testing.T) {
	b := NewBuilder(2)
	b.AddFile("internal/pattern/hierarchy.go", []string{"internal/parser/types.go"})
	b.AddFile("internal/parser/types.go", nil)

	g := b.Build()

	if len(g.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %v", g.Modules)
	}
	if edges := g.Edges["internal/pattern"]; len(edges) != 1 || edges[0] != "internal/parser" {
		t.Fatalf("expected pattern -> parser edge, got %v", edges)
	}
}

func TestBuilder_NoSelfEdgeWithinSameModule(t *testing.T) {
	b := NewBuilder(2)
	b.AddFile("internal/pattern/hierarchy.go", []string{"internal/pattern/merge.go"})

	g := b.Build()
	if edges := g.Edges["internal/pattern"]; len(edges) != 0 {
		t.Fatalf("expected no self-edges, got %v", edges)
	}
}

func TestBuilder_AggregatesTypeCountsPerModule(t *testing.T) {
	b := NewBuilder(2)
	b.AddFile("internal/pattern/a.go", nil)
	b.AddFile("internal/pattern/b.go", nil)
	b.SetTypeCounts("internal/pattern/a.go", 2, 5)
	b.SetTypeCounts("internal/pattern/b.go", 1, 3)

	g := b.Build()
	if g.AbstractCounts["internal/pattern"] != 3 {
		t.Fatalf("expected 3 abstract types, got %d", g.AbstractCounts["internal/pattern"])
	}
	if g.TotalTypeCounts["internal/pattern"] != 8 {
		t.Fatalf("expected 8 total types, got %d", g.TotalTypeCounts["internal/pattern"])
	}
}

func TestMetrics_ComputesAfferentEfferentAndInstability(t *testing.T) {
	b := NewBuilder(2)
	b.AddFile("internal/a/x.go", []string{"internal/b/y.go"})
	b.AddFile("internal/b/y.go", []string{"internal/c/z.go"})
	b.AddFile("internal/c/z.go", nil)

	g := b.Build()
	metrics := Metrics(g)

	byModule := make(map[string]ModuleMetrics, len(metrics))
	for _, m := range metrics {
		byModule[m.Module] = m
	}

	a, b2, c := byModule["internal/a"], byModule["internal/b"], byModule["internal/c"]

	if a.Afferent != 0 || a.Efferent != 1 {
		t.Fatalf("module a: expected Ca=0 Ce=1, got %+v", a)
	}
	if b2.Afferent != 1 || b2.Efferent != 1 {
		t.Fatalf("module b: expected Ca=1 Ce=1, got %+v", b2)
	}
	if c.Afferent != 1 || c.Efferent != 0 {
		t.Fatalf("module c: expected Ca=1 Ce=0, got %+v", c)
	}
	if c.Instability != 0.0 {
		t.Fatalf("module c (no outgoing deps) should be maximally stable, got I=%v", c.Instability)
	}
	if a.Instability != 1.0 {
		t.Fatalf("module a (no incoming deps) should be maximally unstable, got I=%v", a.Instability)
	}
}

func TestUnstableAndConcrete_FlagsZoneOfPain(t *testing.T) {
	metrics := []ModuleMetrics{
		{Module: "risky", Instability: 0.9, Abstractness: 0.0},
		{Module: "safe", Instability: 0.9, Abstractness: 0.8},
		{Module: "stable", Instability: 0.1, Abstractness: 0.0},
	}

	zone := UnstableAndConcrete(metrics, 0.7, 0.2)
	if len(zone) != 1 || zone[0].Module != "risky" {
		t.Fatalf("expected only 'risky' in the zone of pain, got %+v", zone)
	}
}
