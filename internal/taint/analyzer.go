package taint

import (
	"fmt"
	"sort"

	"github.com/driftlang/drift/internal/parser"
)

// Analyzer runs intraprocedural taint analysis over a parsed file's
// functions and class methods (spec §4.8).
type Analyzer struct {
	registry *Registry
}

// NewAnalyzer builds an analyzer against the given registry.
func NewAnalyzer(registry *Registry) *Analyzer {
	return &Analyzer{registry: registry}
}

// AnalyzeRecord runs intraprocedural analysis over every function
// described by a structural record, returning all flows found.
func (a *Analyzer) AnalyzeRecord(rec *parser.StructuralRecord) []Flow {
	var flows []Flow
	for _, fn := range rec.Functions {
		flows = append(flows, a.analyzeFunction(fn, rec)...)
	}
	return flows
}

// analyzeFunction implements the per-function algorithm in spec §4.8:
// seed tainted variables from parameters and source-matching calls in
// scope, then walk call sites in line order applying sanitizers and
// checking sinks.
func (a *Analyzer) analyzeFunction(fn parser.FunctionDescriptor, rec *parser.StructuralRecord) []Flow {
	var flows []Flow

	tainted := make(map[string]TaintLabel)
	sanitized := make(map[string]bool)
	var labelCounter uint64

	sources := a.findSourcesInScope(fn, rec, &labelCounter)
	for _, s := range sources {
		tainted[s.Expression] = s.Label
	}
	for _, param := range fn.Params {
		if sp := a.registry.MatchSource(param); sp != nil {
			if _, ok := tainted[param]; !ok {
				tainted[param] = TaintLabel{ID: labelCounter, SourceType: sp.SourceType}
				labelCounter++
			}
		}
	}

	calls := callsInScope(fn, rec)
	sort.SliceStable(calls, func(i, j int) bool { return calls[i].Line < calls[j].Line })

	var applied []SanitizerApplication

	for _, call := range calls {
		full := fullCallName(call)

		if sanPattern := a.registry.MatchSanitizer(full); sanPattern != nil {
			if call.Receiver != "" {
				sanitized[call.Receiver] = true
			}
			applied = append(applied, SanitizerApplication{
				File:            rec.File,
				Line:            call.Line,
				Expression:      full,
				SanitizerType:   sanPattern.SanitizerType,
				ProtectsAgainst: sanPattern.ProtectsAgainst,
			})
			continue
		}

		sinkPattern := a.registry.MatchSink(full)
		if sinkPattern == nil {
			continue
		}

		if !taintReachesSink(tainted, sanitized, call) {
			continue
		}

		isSanitized := sanitizedForSink(applied, sinkPattern.SinkType)

		source := firstSource(sources, rec, fn)
		sink := Sink{
			File:               rec.File,
			Line:               call.Line,
			Column:             call.Column,
			Expression:         full,
			SinkType:           sinkPattern.SinkType,
			RequiredSanitizers: sinkPattern.RequiredSanitizers,
		}

		flow := Flow{
			Source:      source,
			Sink:        sink,
			Path:        buildPath(source, sink, fn.Name),
			IsSanitized: isSanitized,
			CWEID:       sinkPattern.SinkType.CWEID(),
			Confidence:  0.85,
		}
		if isSanitized {
			flow.Confidence = 0.30
			flow.SanitizersApplied = append([]SanitizerApplication(nil), applied...)
		}
		flows = append(flows, flow)
	}

	return flows
}

// findSourcesInScope seeds sources from parameters matching a source
// pattern and from source-matching call expressions whose line falls
// within the function's body range.
func (a *Analyzer) findSourcesInScope(fn parser.FunctionDescriptor, rec *parser.StructuralRecord, labelCounter *uint64) []Source {
	var sources []Source

	for _, param := range fn.Params {
		if sp := a.registry.MatchSource(param); sp != nil {
			sources = append(sources, Source{
				File:       rec.File,
				Line:       fn.StartLine,
				Column:     0,
				Expression: param,
				SourceType: sp.SourceType,
				Label:      TaintLabel{ID: *labelCounter, SourceType: sp.SourceType},
			})
			*labelCounter++
		}
	}

	for _, call := range callsInScope(fn, rec) {
		full := fullCallName(call)
		if sp := a.registry.MatchSource(full); sp != nil {
			sources = append(sources, Source{
				File:       rec.File,
				Line:       call.Line,
				Column:     call.Column,
				Expression: full,
				SourceType: sp.SourceType,
				Label:      TaintLabel{ID: *labelCounter, SourceType: sp.SourceType},
			})
			*labelCounter++
		}
	}

	return sources
}

func callsInScope(fn parser.FunctionDescriptor, rec *parser.StructuralRecord) []parser.CallSiteDescriptor {
	var out []parser.CallSiteDescriptor
	for _, c := range rec.CallSites {
		if c.Line >= fn.StartLine && c.Line <= fn.EndLine {
			out = append(out, c)
		}
	}
	return out
}

// fullCallName renders a call site as "receiver.callee", or bare
// callee when there is no receiver, so the registry can match either
// form (spec §4.8 "matched by either bare callee or receiver.callee").
func fullCallName(c parser.CallSiteDescriptor) string {
	if c.Receiver == "" {
		return c.CalleeName
	}
	return fmt.Sprintf("%s.%s", c.Receiver, c.CalleeName)
}

// taintReachesSink is the conservative over-approximation from spec
// §4.8: taint reaches if the receiver is tainted and not sanitized, or
// if any in-scope tainted variable remains.
func taintReachesSink(tainted map[string]TaintLabel, sanitized map[string]bool, call parser.CallSiteDescriptor) bool {
	if call.Receiver != "" {
		if _, ok := tainted[call.Receiver]; ok && !sanitized[call.Receiver] {
			return true
		}
	}
	return len(tainted) > 0
}

func sanitizedForSink(applied []SanitizerApplication, sinkType SinkType) bool {
	for _, s := range applied {
		for _, protected := range s.ProtectsAgainst {
			if protected == sinkType {
				return true
			}
		}
	}
	return false
}

func firstSource(sources []Source, rec *parser.StructuralRecord, fn parser.FunctionDescriptor) Source {
	if len(sources) > 0 {
		return sources[0]
	}
	return Source{
		File:       rec.File,
		Line:       fn.StartLine,
		Column:     0,
		Expression: "unknown_source",
		SourceType: SourceUserInput,
		Label:      TaintLabel{ID: 0, SourceType: SourceUserInput},
	}
}

// buildPath constructs the two-hop source/sink path (spec §4.8): a
// source hop always, and a sink hop only when source and sink are on
// different lines.
func buildPath(source Source, sink Sink, function string) []Hop {
	path := []Hop{{
		File:        source.File,
		Line:        source.Line,
		Column:      source.Column,
		Function:    function,
		Description: fmt.Sprintf("taint introduced from %s", source.SourceType),
	}}

	if source.Line != sink.Line {
		path = append(path, Hop{
			File:        sink.File,
			Line:        sink.Line,
			Column:      sink.Column,
			Function:    function,
			Description: fmt.Sprintf("taint flows to %s sink", sink.SinkType),
		})
	}

	return path
}
