// Package coupling builds a module-level import graph from per-file
// import data and derives the classic Martin coupling metrics
// (afferent/efferent coupling, instability, abstractness, distance
// from the main sequence) from it (SPEC_FULL §3.3, grounded on
// original_source's structural/coupling/import_graph.rs).
package coupling

import "sort"

// ImportGraph is a directed graph of module-to-module dependencies,
// plus the type-count data needed to compute abstractness per module.
type ImportGraph struct {
	Modules           []string
	Edges             map[string][]string // module -> modules it imports from
	AbstractCounts    map[string]int       // module -> interface/abstract-class/trait count
	TotalTypeCounts    map[string]int       // module -> total type count
}

// Builder accumulates per-file import data and aggregates it into
// module-level edges once Build is called.
type Builder struct {
	fileImports        map[string][]string
	fileAbstractCounts map[string]int
	fileTypeCounts     map[string]int
	moduleDepth        int
}

// NewBuilder returns a Builder that groups files into modules by their
// first moduleDepth path segments (moduleDepth=1 means top-level
// directories are modules, matching the Rust builder's default).
func NewBuilder(moduleDepth int) *Builder {
	if moduleDepth < 1 {
		moduleDepth = 1
	}
	return &Builder{
		fileImports:        make(map[string][]string),
		fileAbstractCounts: make(map[string]int),
		fileTypeCounts:     make(map[string]int),
		moduleDepth:        moduleDepth,
	}
}

// AddFile records a file's import list. imports are resolved file
// paths (or package paths treated as such), not raw import specifiers.
func (b *Builder) AddFile(file string, imports []string) {
	b.fileImports[file] = append([]string(nil), imports...)
}

// SetTypeCounts records how many of a file's declared types are
// abstract (interfaces, abstract classes, traits) out of its total.
func (b *Builder) SetTypeCounts(file string, abstractCount, totalCount int) {
	b.fileAbstractCounts[file] = abstractCount
	b.fileTypeCounts[file] = totalCount
}

// Build aggregates every recorded file into its module and returns the
// resulting ImportGraph.
func (b *Builder) Build() *ImportGraph {
	moduleSet := make(map[string]bool)
	edgeSets := make(map[string]map[string]bool)
	abstractCounts := make(map[string]int)
	totalTypeCounts := make(map[string]int)

	for file := range b.fileImports {
		moduleSet[b.fileToModule(file)] = true
	}

	for file, imports := range b.fileImports {
		srcModule := b.fileToModule(file)

		abstractCounts[srcModule] += b.fileAbstractCounts[file]
		totalTypeCounts[srcModule] += b.fileTypeCounts[file]

		for _, imp := range imports {
			dstModule := b.fileToModule(imp)
			if srcModule == dstModule {
				continue
			}
			if edgeSets[srcModule] == nil {
				edgeSets[srcModule] = make(map[string]bool)
			}
			edgeSets[srcModule][dstModule] = true
			moduleSet[dstModule] = true
		}
	}

	modules := make([]string, 0, len(moduleSet))
	for m := range moduleSet {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	edges := make(map[string][]string, len(edgeSets))
	for src, dsts := range edgeSets {
		list := make([]string, 0, len(dsts))
		for d := range dsts {
			list = append(list, d)
		}
		sort.Strings(list)
		edges[src] = list
	}

	return &ImportGraph{
		Modules:         modules,
		Edges:           edges,
		AbstractCounts:  abstractCounts,
		TotalTypeCounts: totalTypeCounts,
	}
}

// fileToModule extracts a module name from a file path's first
// moduleDepth path segments.
func (b *Builder) fileToModule(file string) string {
	normalized := normalizeSeparators(file)
	parts := splitPath(normalized)
	if len(parts) <= b.moduleDepth {
		return joinPath(parts)
	}
	return joinPath(parts[:b.moduleDepth])
}

func normalizeSeparators(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\\' {
			r = '/'
		}
		out = append(out, r)
	}
	return string(out)
}

func splitPath(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if r == '/' {
			if i > start {
				parts = append(parts, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

func joinPath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}
