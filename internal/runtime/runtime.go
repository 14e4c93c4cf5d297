package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/driftlang/drift/internal/callgraph"
	"github.com/driftlang/drift/internal/contracts"
	"github.com/driftlang/drift/internal/contracts/extractors"
	"github.com/driftlang/drift/internal/detectors"
	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/driftlog"
	"github.com/driftlang/drift/internal/enforcement"
	"github.com/driftlang/drift/internal/parser"
	"github.com/driftlang/drift/internal/storage"
	"github.com/driftlang/drift/internal/taint"
)

// Runtime is the process-wide, one-shot initialised state (spec §2
// "Runtime" row, §9 "Runtime singleton"). Once Initialize succeeds, the
// returned handle is immutable; callers never see a half-built
// Runtime.
type Runtime struct {
	opts EngineOptions

	store      *storage.Store
	parsers    *parser.Registry
	taint      *taint.Analyzer
	detectors  *detectors.Registry
	evaluator  *enforcement.Evaluator
	extractors *extractors.Registry
	contracts  *contracts.Analyzer
	gates      []enforcement.Gate
	dispatch   *dispatcher
	logger     *driftlog.Logger

	graphMu     sync.RWMutex
	graph       *callgraph.Graph
	lastRecords []*parser.StructuralRecord

	auditMu        sync.Mutex
	lastAudit      atomic.Pointer[enforcement.AuditSnapshot]
	lastViolations []enforcement.Violation
}

var current atomic.Pointer[Runtime]

// Initialize builds a Runtime and installs it as the process-wide
// singleton. It errors if one is already installed (spec §6
// "initialize... returns error if already initialised").
func Initialize(opts EngineOptions) (*Runtime, error) {
	if current.Load() != nil {
		return nil, direrr.ErrAlreadyInitialized
	}

	logger := driftlog.Default()

	store, err := storage.Open(opts.DBPath, logger)
	if err != nil {
		return nil, direrr.NewInitError("open storage", err)
	}

	taintRegistry, err := defaultTaintRegistry(opts.TaintRegistryRaw)
	if err != nil {
		store.Close()
		return nil, direrr.NewInitError("load taint registry", err)
	}

	gates := opts.Gates
	if len(gates) == 0 {
		gates = DefaultGates()
	}

	rt := &Runtime{
		opts:       opts,
		store:      store,
		parsers:    parser.NewRegistry(0),
		taint:      taint.NewAnalyzer(taintRegistry),
		detectors:  detectors.DefaultRegistry,
		evaluator:  enforcement.NewEvaluator(opts.SuppressionGlobs),
		extractors: extractors.NewDefaultRegistry(),
		contracts:  contracts.NewAnalyzer(),
		gates:      gates,
		dispatch:   newDispatcher(),
		logger:     logger,
	}

	if !current.CompareAndSwap(nil, rt) {
		store.Close()
		rt.dispatch.stop()
		return nil, direrr.ErrAlreadyInitialized
	}
	return rt, nil
}

// Current returns the installed singleton, or nil if none has been
// initialised.
func Current() *Runtime { return current.Load() }

// IsInitialized reports whether a Runtime is installed.
func IsInitialized() bool { return current.Load() != nil }

// Shutdown flushes and closes the store, checkpointing the WAL, and
// clears the singleton so a later Initialize can succeed again.
func (r *Runtime) Shutdown() error {
	if !current.CompareAndSwap(r, nil) {
		return direrr.ErrNotInitialized
	}
	r.dispatch.stop()
	if _, err := r.store.DB().Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.logger.Errorf("wal checkpoint failed: %v", err)
	}
	if err := r.store.Close(); err != nil {
		return direrr.NewStorageError("shutdown", err)
	}
	return nil
}

// SetProgressHandler installs h as the receiver of every future
// progress event. A nil handler restores NoOpHandler.
func (r *Runtime) SetProgressHandler(h Handler) { r.dispatch.setHandler(h) }

// Store exposes the underlying storage handle for read-heavy query
// helpers (query.go).
func (r *Runtime) Store() *storage.Store { return r.store }

// mustCurrent fetches the singleton or returns ErrNotInitialized,
// the pattern every bridge-facing package-level function follows.
func mustCurrent() (*Runtime, error) {
	rt := current.Load()
	if rt == nil {
		return nil, direrr.ErrNotInitialized
	}
	return rt, nil
}
