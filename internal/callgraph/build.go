package callgraph

import (
	"sort"
	"strings"
	"sync"

	"github.com/driftlang/drift/internal/parser"
)

// Build runs Phase A (parallel node emission) then Phase B (sequential
// edge resolution) over the full set of structural records, per spec
// §4.3.
func Build(records []*parser.StructuralRecord) *Graph {
	g := &Graph{
		Nodes:          make(map[string]*Node),
		out:            make(map[string][]int),
		in:             make(map[string][]int),
		byName:         make(map[string][]string),
		byQualified:    make(map[string]string),
		byExportedName: make(map[string][]string),
	}

	// Phase A: parallel node emission. Each record is independent; a
	// mutex serializes the (cheap) map inserts.
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, rec := range records {
		rec := rec
		wg.Add(1)
		go func() {
			defer wg.Done()
			nodes := make([]*Node, 0, len(rec.Functions))
			for _, fn := range rec.Functions {
				nodes = append(nodes, &Node{
					Key:           nodeKey(rec.File, fn.Name),
					File:          rec.File,
					Name:          fn.Name,
					QualifiedName: fn.QualifiedName,
					StartLine:     fn.StartLine,
					EndLine:       fn.EndLine,
					Exported:      fn.Exported,
					Decorators:    fn.Decorators,
				})
			}
			mu.Lock()
			defer mu.Unlock()
			for _, n := range nodes {
				g.Nodes[n.Key] = n // at most one node per (file, name): spec invariant
				g.byName[n.Name] = append(g.byName[n.Name], n.Key)
				if n.QualifiedName != "" {
					g.byQualified[n.QualifiedName] = n.Key
				}
				if n.Exported {
					g.byExportedName[n.Name] = append(g.byExportedName[n.Name], n.Key)
				}
			}
		}()
	}
	wg.Wait()

	markEntryPoints(g, records)

	// Phase B: sequential, in input order (Phase A may interleave but
	// produces the same node set regardless of order; Phase B's stable
	// order is the order the caller's records arrived in).
	for _, rec := range records {
		resolveCallSites(g, rec)
	}

	return g
}

func resolveCallSites(g *Graph, rec *parser.StructuralRecord) {
	for _, fnSym := range rec.Functions {
		callerKey := nodeKey(rec.File, fnSym.Name)
		sitesInRange := callSitesInLineRange(rec.CallSites, fnSym.StartLine, fnSym.EndLine)
		// stable order: by line, matching "edges emitted in call-site line order"
		sort.Slice(sitesInRange, func(i, j int) bool { return sitesInRange[i].Line < sitesInRange[j].Line })

		for _, cs := range sitesInRange {
			g.ResolutionAttempts++
			toKey, strategy, ok := resolve(g, rec, cs)
			if !ok {
				continue
			}
			g.ResolvedCount++
			addEdge(g, callerKey, toKey, strategy, cs.Line)
		}
	}
}

func callSitesInLineRange(sites []parser.CallSiteDescriptor, start, end int) []parser.CallSiteDescriptor {
	var out []parser.CallSiteDescriptor
	for _, s := range sites {
		if s.Line >= start && s.Line <= end {
			out = append(out, s)
		}
	}
	return out
}

func addEdge(g *Graph, from, to string, strategy Strategy, line int) {
	// no multi-edges between the same ordered pair with the same line
	for _, idx := range g.out[from] {
		e := g.Edges[idx]
		if e.To == to && e.Line == line {
			return
		}
	}
	idx := len(g.Edges)
	g.Edges = append(g.Edges, Edge{
		From: from, To: to, Strategy: strategy,
		Confidence: DefaultConfidence[strategy], Line: line,
	})
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
}

// resolve applies the five ordered strategies, first success wins, then
// falls back to the constructor resolver for any call site still
// unresolved.
func resolve(g *Graph, rec *parser.StructuralRecord, cs parser.CallSiteDescriptor) (string, Strategy, bool) {
	// 1. Same-file direct (0.95)
	sameFileKey := nodeKey(rec.File, cs.CalleeName)
	if _, ok := g.Nodes[sameFileKey]; ok {
		return sameFileKey, StrategySameFile, true
	}

	// 2. Method via qualified name (0.90)
	if cs.Receiver != "" {
		qualified := cs.Receiver + "." + cs.CalleeName
		if key, ok := g.byQualified[qualified]; ok {
			return key, StrategyQualifiedName, true
		}
	}

	// 3. Import-based (0.75)
	if key, ok := resolveViaImport(g, rec, cs); ok {
		return key, StrategyImportBased, true
	}

	// 4. Exported cross-module (0.60)
	if keys, ok := g.byExportedName[cs.CalleeName]; ok && len(keys) == 1 {
		return keys[0], StrategyExportedCross, true
	}

	// 5. Fuzzy by name (0.40)
	if keys, ok := g.byName[cs.CalleeName]; ok && len(keys) == 1 {
		return keys[0], StrategyFuzzyByName, true
	}

	// Constructor resolver, tried last: Class.constructor / Class.__init__ /
	// Class.new / Class.init, then fuzzy on the bare class name.
	if key, ok := resolveConstructor(g, cs.CalleeName); ok {
		return key, StrategyConstructor, true
	}

	return "", "", false
}

func resolveViaImport(g *Graph, rec *parser.StructuralRecord, cs parser.CallSiteDescriptor) (string, bool) {
	var matched []string
	for _, imp := range rec.Imports {
		importedName := cs.CalleeName
		if imp.Alias != "" && imp.Alias != cs.CalleeName {
			continue
		}
		keys, ok := g.byName[importedName]
		if !ok {
			continue
		}
		for _, k := range keys {
			matched = append(matched, k)
			if strings.Contains(k, imp.Source) {
				return k, true // prefer candidate whose key contains the import source
			}
		}
	}
	if len(matched) > 0 {
		return matched[0], true // else first match
	}
	return "", false
}

func resolveConstructor(g *Graph, className string) (string, bool) {
	for _, ctor := range []string{"constructor", "__init__", "new", "init"} {
		if key, ok := g.byQualified[className+"."+ctor]; ok {
			return key, true
		}
	}
	if keys, ok := g.byName[className]; ok && len(keys) == 1 {
		return keys[0], true
	}
	return "", false
}

var entryFileBaseNames = map[string]bool{"main": true, "index": true, "app": true, "server": true}
var entryFuncNames = map[string]bool{"main": true, "run": true, "start": true, "init": true, "bootstrap": true}
var entryPrefixes = []string{"test_", "test", "it_", "spec_"}
var entryExactNames = map[string]bool{"main": true, "cli": true, "run_cli": true, "parse_args": true}
var entryDecoratorSubstrings = []string{"route", "get", "post", "put", "delete", "patch", "controller", "api", "endpoint"}

func markEntryPoints(g *Graph, records []*parser.StructuralRecord) {
	for _, n := range g.Nodes {
		if n.Exported {
			n.IsEntryPoint = true
			continue
		}
		base := baseNameNoExt(n.File)
		if entryFileBaseNames[base] && entryFuncNames[n.Name] {
			n.IsEntryPoint = true
			continue
		}
		matchedPrefix := false
		for _, p := range entryPrefixes {
			if strings.HasPrefix(n.Name, p) {
				matchedPrefix = true
				break
			}
		}
		if matchedPrefix {
			n.IsEntryPoint = true
			continue
		}
		if entryExactNames[n.Name] {
			n.IsEntryPoint = true
			continue
		}
		if hasEntryDecorator(n.Decorators) {
			n.IsEntryPoint = true
		}
	}
}

func hasEntryDecorator(decorators []parser.DecoratorDescriptor) bool {
	for _, d := range decorators {
		lower := strings.ToLower(d.Name)
		for _, sub := range entryDecoratorSubstrings {
			if strings.Contains(lower, sub) {
				return true
			}
		}
	}
	return false
}

func baseNameNoExt(path string) string {
	slash := strings.LastIndexAny(path, "/\\")
	base := path
	if slash >= 0 {
		base = path[slash+1:]
	}
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	return strings.ToLower(base)
}
