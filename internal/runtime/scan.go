package runtime

import (
	"context"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/driftlang/drift/internal/callgraph"
	"github.com/driftlang/drift/internal/coupling"
	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/pattern"
	"github.com/driftlang/drift/internal/scanner"
	"github.com/driftlang/drift/internal/storage"
)

// couplingModuleDepth groups files into modules by their top-level
// directory, matching the Rust import-graph builder's default.
const couplingModuleDepth = 1

const progressInterval = 100

// Scan walks root, (re-)parses every changed file, rebuilds the call
// graph and the pattern/confidence/outlier/convention pipeline, and
// persists everything through the store's batch writer (spec §4.1-§4.7
// driven end to end, §6 "scan(root, options, progress?)").
func (r *Runtime) Scan(ctx context.Context, root string, cancel *atomic.Bool) (ScanSummary, error) {
	started := time.Now()

	walkResult, err := scanner.Walk(ctx, scanner.Options{
		Root:           root,
		LanguageOf:     parser.DetectLanguage,
		FollowSymlinks: false,
		Cancel:         cancel,
	})
	if err != nil {
		return ScanSummary{}, direrr.NewScanError(root, "walk failed", err)
	}

	records := make([]*parser.StructuralRecord, 0, len(walkResult.Files))
	fileRows := make(storage.UpsertFileMetadata, 0, len(walkResult.Files))

	for i, f := range walkResult.Files {
		content, readErr := os.ReadFile(f.Path)
		if readErr != nil {
			continue // recoverable per-file error, spec §7
		}

		rec, parseErr := r.parsers.Parse(content, f.Path)
		if parseErr != nil || rec == nil {
			continue
		}
		records = append(records, rec)

		fileRows = append(fileRows, storage.FileMetadataRow{
			Path:          f.Path,
			Language:      f.Language,
			FileSize:      f.Size,
			ContentHash:   f.Fingerprint,
			MTimeSecs:     f.ModTimeSec,
			MTimeNanos:    int64(f.ModTimeNsec),
			LastScannedAt: time.Now().Unix(),
		})

		if (i+1)%progressInterval == 0 {
			r.dispatch.emit(ProgressEvent{Processed: i + 1, Total: len(walkResult.Files), Phase: "parsing", CurrentFile: f.Path})
		}
	}

	graph := callgraph.Build(records)
	r.graphMu.Lock()
	r.graph = graph
	r.lastRecords = records
	r.graphMu.Unlock()

	var matches []pattern.Match
	for _, rec := range records {
		lang := rec.Language
		for _, d := range r.detectors.ByLanguage(lang) {
			ms, detErr := d.Detect(ctx, rec)
			if detErr != nil {
				continue
			}
			matches = append(matches, ms...)
		}
		for _, flow := range r.taint.AnalyzeRecord(rec) {
			if flow.IsSanitized {
				continue
			}
			matches = append(matches, pattern.Match{
				File: flow.Sink.File, Line: flow.Sink.Line, Column: flow.Sink.Column,
				PatternID: "SEC-" + flow.CWEID, Category: "security",
				Confidence: flow.Confidence, Method: "taint_flow",
				MatchedText: flow.Source.Expression + " -> " + flow.Sink.Expression,
				CWEIDs:      []string{flow.CWEID},
			})
		}
	}

	pipeline := pattern.NewDefaultPipeline()
	result := pipeline.Run(matches)

	if err := r.enqueueResults(ctx, fileRows, records, result); err != nil {
		return ScanSummary{}, err
	}
	if err := r.enqueuePatternAnalysis(ctx, result, len(walkResult.Files)); err != nil {
		return ScanSummary{}, err
	}
	if err := r.enqueueCoupling(ctx, records); err != nil {
		return ScanSummary{}, err
	}
	if err := r.store.Flush(ctx); err != nil {
		return ScanSummary{}, err
	}

	r.dispatch.emit(ProgressEvent{Processed: len(records), Total: len(walkResult.Files), Phase: "complete"})

	duration := time.Since(started)
	r.recordScanMetrics(duration, len(records))

	return ScanSummary{
		Processed:  len(records),
		Added:      len(records),
		DurationMs: duration.Milliseconds(),
		Partial:    walkResult.Partial,
	}, nil
}

// enqueueCoupling derives a module-level import graph from records and
// persists Martin coupling metrics for each module (SPEC_FULL §3.3).
func (r *Runtime) enqueueCoupling(ctx context.Context, records []*parser.StructuralRecord) error {
	builder := coupling.NewBuilder(couplingModuleDepth)
	for _, rec := range records {
		imports := make([]string, 0, len(rec.Imports))
		for _, imp := range rec.Imports {
			imports = append(imports, imp.Source)
		}
		builder.AddFile(rec.File, imports)

		abstractCount := 0
		for _, t := range rec.Types {
			if t.Kind == "interface" || t.Kind == "trait" {
				abstractCount++
			}
		}
		builder.SetTypeCounts(rec.File, abstractCount, len(rec.Types))
	}

	metrics := coupling.Metrics(builder.Build())
	if len(metrics) == 0 {
		return nil
	}

	now := time.Now().Unix()
	rows := make(storage.InsertCouplingMetrics, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, storage.CouplingMetricRow{
			Module: m.Module, Afferent: m.Afferent, Efferent: m.Efferent,
			Instability: m.Instability, Abstractness: m.Abstractness, Distance: m.Distance,
			ComputedAt: now,
		})
	}
	return r.store.Enqueue(ctx, rows)
}

func (r *Runtime) enqueueResults(ctx context.Context, fileRows storage.UpsertFileMetadata, records []*parser.StructuralRecord, result pattern.Result) error {
	if len(fileRows) > 0 {
		if err := r.store.Enqueue(ctx, fileRows); err != nil {
			return err
		}
	}

	var functionRows storage.InsertFunctions
	for _, rec := range records {
		for _, fn := range rec.Functions {
			functionRows = append(functionRows, storage.FunctionRow{
				File: rec.File, Name: fn.Name, QualifiedName: fn.QualifiedName, Language: rec.Language,
				Line: fn.StartLine, EndLine: fn.EndLine, ParameterCount: len(fn.Params),
				IsExported: fn.Exported, IsAsync: fn.Async,
			})
		}
	}
	if len(functionRows) > 0 {
		if err := r.store.Enqueue(ctx, functionRows); err != nil {
			return err
		}
	}

	var edgeRows storage.InsertCallEdges
	if g := r.CallGraph(); g != nil {
		for _, e := range g.Edges {
			edgeRows = append(edgeRows, storage.CallEdgeRow{
				CallerKey: e.From, CalleeKey: e.To, Resolution: string(e.Strategy),
				Confidence: e.Confidence, CallSiteLine: e.Line,
			})
		}
	}
	if len(edgeRows) > 0 {
		if err := r.store.Enqueue(ctx, edgeRows); err != nil {
			return err
		}
	}

	var detectionRows storage.InsertDetections
	topLevel := result.TopLevelPatterns()
	sort.Slice(topLevel, func(i, j int) bool { return topLevel[i].ID < topLevel[j].ID })
	for _, p := range topLevel {
		for _, loc := range p.Locations {
			detectionRows = append(detectionRows, storage.DetectionRow{
				File: loc.File, Line: loc.Line, Column: loc.Column, PatternID: p.ID,
				Category: p.Category, Confidence: loc.Confidence, DetectionMethod: "aggregated",
				MatchedText: loc.MatchedText,
			})
		}
	}
	if len(detectionRows) > 0 {
		if err := r.store.Enqueue(ctx, detectionRows); err != nil {
			return err
		}
	}

	return nil
}
