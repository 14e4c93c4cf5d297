package parser

import (
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/fingerprint"
)

// extensionLanguage maps a lowercased file extension to a language tag.
var extensionLanguage = map[string]string{
	".ts":  "typescript",
	".tsx": "typescript",
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".py":  "python",
	".java": "java",
	".cs":  "csharp",
	".go":  "go",
	".rs":  "rust",
	".rb":  "ruby",
	".php": "php",
	".kt":  "kotlin",
	".kts": "kotlin",
}

// DetectLanguage returns the language tag for path, or "" if unknown.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return extensionLanguage[ext]
}

// Registry dispatches a file to its language adapter, going through a
// content-fingerprint-keyed cache first (spec §4.2).
type Registry struct {
	adapters map[string]Adapter
	cache    *Cache

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
}

// NewRegistry builds a registry with all ten required adapters
// registered and a cache of the given capacity (0 => default).
func NewRegistry(cacheCapacity int) *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter),
		cache:    NewCache(cacheCapacity),
	}
	r.Register(NewTypeScriptAdapter())
	r.Register(NewJavaScriptAdapter())
	r.Register(NewPythonAdapter())
	r.Register(NewJavaAdapter())
	r.Register(NewCSharpAdapter())
	r.Register(NewGoAdapter())
	r.Register(NewRustAdapter())
	r.Register(NewRubyAdapter())
	r.Register(NewPHPAdapter())
	r.Register(NewKotlinAdapter())
	return r
}

func (r *Registry) Register(a Adapter) { r.adapters[a.Language()] = a }

// Parse dispatches content to the adapter for path's language, consulting
// the cache by content fingerprint first. A nil record with nil error is
// returned for files whose language is not recognized (spec: unsupported
// extension is not itself a hard error at the registry layer — the
// caller decides whether to skip or fail).
func (r *Registry) Parse(content []byte, path string) (*StructuralRecord, error) {
	lang := DetectLanguage(path)
	if lang == "" {
		return nil, nil
	}
	adapter, ok := r.adapters[lang]
	if !ok {
		return nil, nil
	}

	fp := fingerprint.Of(content)
	if cached, hit := r.cache.Get(fp); hit {
		r.cacheHits.Add(1)
		clone := *cached
		clone.File = path
		return &clone, nil
	}
	r.cacheMisses.Add(1)

	rec, err := adapter.Parse(content, path)
	if err != nil {
		return nil, direrr.NewParseError(path, "adapter failed", err)
	}
	rec.Fingerprint = fp
	r.cache.Put(fp, rec)
	return rec, nil
}

// CacheLen exposes the cache's current size for diagnostics/tests.
func (r *Registry) CacheLen() int { return r.cache.Len() }

// CacheHitRatio is cache hits over total lookups since the registry
// was created, 0 when no file has been parsed yet.
func (r *Registry) CacheHitRatio() float64 {
	hits, misses := r.cacheHits.Load(), r.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
