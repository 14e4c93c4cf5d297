package coupling

// ModuleMetrics reports one module's position in Robert Martin's
// stability/abstractness model, derived from an ImportGraph: how many
// modules depend on it (afferent, Ca), how many it depends on
// (efferent, Ce), how likely it is to need a change when its
// dependencies change (instability, I = Ce / (Ca + Ce)), how much of
// its surface is abstract (A), and how far that combination sits from
// the idealized main sequence (D = |A + I - 1|).
type ModuleMetrics struct {
	Module       string
	Afferent     int
	Efferent     int
	Instability  float64
	Abstractness float64
	Distance     float64
}

// Metrics computes ModuleMetrics for every module in g.
func Metrics(g *ImportGraph) []ModuleMetrics {
	afferent := make(map[string]int, len(g.Modules))
	for _, dsts := range g.Edges {
		seen := make(map[string]bool, len(dsts))
		for _, d := range dsts {
			if !seen[d] {
				seen[d] = true
				afferent[d]++
			}
		}
	}

	metrics := make([]ModuleMetrics, 0, len(g.Modules))
	for _, m := range g.Modules {
		ca := afferent[m]
		ce := len(g.Edges[m])

		instability := 0.0
		if ca+ce > 0 {
			instability = float64(ce) / float64(ca+ce)
		}

		abstractness := 0.0
		if total := g.TotalTypeCounts[m]; total > 0 {
			abstractness = float64(g.AbstractCounts[m]) / float64(total)
		}

		distance := abstractness + instability - 1.0
		if distance < 0 {
			distance = -distance
		}

		metrics = append(metrics, ModuleMetrics{
			Module:       m,
			Afferent:     ca,
			Efferent:     ce,
			Instability:  instability,
			Abstractness: abstractness,
			Distance:     distance,
		})
	}
	return metrics
}

// UnstableAndConcrete returns the modules most exposed to change:
// highly unstable (I at or above instabilityThreshold) yet concretely
// implemented (A at or below abstractnessThreshold) — the "zone of
// pain" as this package uses the term: code that depends on much else
// while little depends on it, with no abstraction layer to absorb the
// churn.
func UnstableAndConcrete(metrics []ModuleMetrics, instabilityThreshold, abstractnessThreshold float64) []ModuleMetrics {
	var zone []ModuleMetrics
	for _, m := range metrics {
		if m.Instability >= instabilityThreshold && m.Abstractness <= abstractnessThreshold {
			zone = append(zone, m)
		}
	}
	return zone
}
