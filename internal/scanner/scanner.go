// Package scanner implements the parallel, ignore-rule-aware file walk
// described in spec §4.1.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	stdruntime "runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/driftlang/drift/internal/direrr"
	"github.com/driftlang/drift/internal/fingerprint"
)

// builtinBlocklist mirrors the teacher's guardrail glob list: common
// build/cache/dependency directories that are never worth scanning.
var builtinBlocklist = []string{
	".git/**",
	"**/.git/**",
	"node_modules/**",
	"**/node_modules/**",
	"vendor/**",
	"**/vendor/**",
	"dist/**",
	"**/dist/**",
	"build/**",
	"**/build/**",
	"target/**",
	"**/target/**",
	"__pycache__/**",
	"**/__pycache__/**",
	"coverage/**",
	"**/coverage/**",
	"venv/**",
	"**/venv/**",
	".venv/**",
	"**/.venv/**",
	"bin/**",
	"**/bin/**",
	"obj/**",
	"**/obj/**",
	".idea/**",
	"**/.idea/**",
	".vscode/**",
	"**/.vscode/**",
	".next/**",
	"**/.next/**",
}

// DriftIgnoreFile is the project-specific ignore filename, the spec's
// ".driftignore or equivalent".
const DriftIgnoreFile = ".driftignore"

// FileRecord is one accepted file, as emitted by Walk.
type FileRecord struct {
	Path        string
	Size        int64
	ModTimeSec  int64
	ModTimeNsec int64
	Language    string
	Fingerprint uint64
}

// Options configures a Walk.
type Options struct {
	Root             string
	MaxFileSizeBytes int64 // 0 means DefaultMaxFileSize
	FollowSymlinks   bool
	LanguageOf       func(path string) string // injected to avoid an import cycle with parser
	Cancel           *atomic.Bool             // polled per file; nil means never cancel
}

const DefaultMaxFileSize = 5 * 1024 * 1024

// Result is the outcome of a Walk: files sorted by path, plus whether
// it was cut short by cancellation.
type Result struct {
	Files   []FileRecord
	Partial bool
}

// Walk performs the parallel tree walk. It is not itself diffing
// against prior state; see Diff for that.
func Walk(ctx context.Context, opts Options) (Result, error) {
	if opts.Root == "" {
		return Result{}, direrr.NewScanError("", "root is required", nil)
	}
	maxSize := opts.MaxFileSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	ignore, err := loadIgnoreMatcher(opts.Root)
	if err != nil {
		return Result{}, direrr.NewScanError(opts.Root, "failed loading ignore rules", err)
	}

	type candidate struct {
		path string
		info fs.DirEntry
	}
	var candidates []candidate

	walkErr := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal (spec §7: recoverable per-file errors)
		}
		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			rel = path
		}
		if rel == "." {
			return nil
		}
		if matchesBlocklist(rel) || ignore.MatchesPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		candidates = append(candidates, candidate{path: path, info: d})
		return nil
	})
	if walkErr != nil {
		return Result{}, direrr.NewScanError(opts.Root, "directory walk failed", walkErr)
	}

	results := make([]FileRecord, len(candidates))
	present := make([]bool, len(candidates))
	var partial atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers())

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if opts.Cancel != nil && opts.Cancel.Load() {
				partial.Store(true)
				return nil
			}
			select {
			case <-gctx.Done():
				partial.Store(true)
				return nil
			default:
			}

			info, statErr := c.info.Info()
			if statErr != nil {
				return nil // unreadable file, skip (recoverable)
			}
			if info.Size() > maxSize {
				return nil
			}
			content, readErr := os.ReadFile(c.path)
			if readErr != nil {
				return nil
			}

			lang := ""
			if opts.LanguageOf != nil {
				lang = opts.LanguageOf(c.path)
			}

			mtime := info.ModTime()
			results[i] = FileRecord{
				Path:        c.path,
				Size:        info.Size(),
				ModTimeSec:  mtime.Unix(),
				ModTimeNsec: int64(mtime.Nanosecond()),
				Language:    lang,
				Fingerprint: fingerprint.Of(content),
			}
			present[i] = true
			return nil
		})
	}
	_ = g.Wait() // per-file errors never abort the walk

	out := make([]FileRecord, 0, len(results))
	for i, ok := range present {
		if ok {
			out = append(out, results[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return Result{Files: out, Partial: partial.Load()}, nil
}

func matchesBlocklist(relPath string) bool {
	for _, pat := range builtinBlocklist {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return true
		}
	}
	return false
}

// loadIgnoreMatcher builds a hierarchical gitignore-style matcher from
// every .gitignore and .driftignore found under root, root-first.
func loadIgnoreMatcher(root string) (*gitignore.GitIgnore, error) {
	var lines []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base != ".gitignore" && base != DriftIgnoreFile {
			return nil
		}
		rel, _ := filepath.Rel(root, filepath.Dir(path))
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		for _, line := range splitLines(string(content)) {
			if rel != "." && line != "" && line[0] != '#' {
				line = filepath.ToSlash(filepath.Join(rel, line))
			}
			lines = append(lines, line)
		}
		return nil
	})
	return gitignore.CompileIgnoreLines(lines...), nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, trimCR(s[start:i]))
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, trimCR(s[start:]))
	}
	return out
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

func maxWorkers() int {
	n := runtimeNumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// DiffSet is the added/modified/removed classification against a prior
// snapshot of fingerprints keyed by path.
type DiffSet struct {
	Added    []FileRecord
	Modified []FileRecord
	Removed  []string
	Unchanged []FileRecord
}

// Diff classifies current against a previous path->fingerprint map.
func Diff(current []FileRecord, previous map[string]uint64) DiffSet {
	var d DiffSet
	seen := make(map[string]bool, len(current))
	for _, f := range current {
		seen[f.Path] = true
		prevFP, existed := previous[f.Path]
		switch {
		case !existed:
			d.Added = append(d.Added, f)
		case prevFP != f.Fingerprint:
			d.Modified = append(d.Modified, f)
		default:
			d.Unchanged = append(d.Unchanged, f)
		}
	}
	for path := range previous {
		if !seen[path] {
			d.Removed = append(d.Removed, path)
		}
	}
	sort.Strings(d.Removed)
	return d
}

// mu guards the lazily-resolved worker count; kept tiny and separate so
// tests can override it without touching runtime.GOMAXPROCS directly.
var workerMu sync.Mutex
var workerOverride int

func SetWorkerOverride(n int) {
	workerMu.Lock()
	defer workerMu.Unlock()
	workerOverride = n
}

func runtimeNumCPU() int {
	workerMu.Lock()
	override := workerOverride
	workerMu.Unlock()
	if override > 0 {
		return override
	}
	return stdruntime.NumCPU()
}
