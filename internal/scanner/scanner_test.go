package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_SortedAndBlocklisted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "package b")
	writeFile(t, filepath.Join(root, "a.go"), "package a")
	writeFile(t, filepath.Join(root, "node_modules", "dep.js"), "ignored")

	res, err := Walk(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	require.Equal(t, filepath.Join(root, "a.go"), res.Files[0].Path)
	require.Equal(t, filepath.Join(root, "b.go"), res.Files[1].Path)
}

func TestWalk_RespectsDriftIgnore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), "package keep")
	writeFile(t, filepath.Join(root, "skip.go"), "package skip")
	writeFile(t, filepath.Join(root, DriftIgnoreFile), "skip.go\n")

	res, err := Walk(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	require.Equal(t, filepath.Join(root, "keep.go"), res.Files[0].Path)
}

func TestWalk_IdenticalContentSameFingerprintDistinctPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), "export const x = 1;")
	writeFile(t, filepath.Join(root, "b.ts"), "export const x = 1;")

	res, err := Walk(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	require.Equal(t, res.Files[0].Fingerprint, res.Files[1].Fingerprint)
	require.NotEqual(t, res.Files[0].Path, res.Files[1].Path)
}

func TestWalk_RejectsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, 1024)
	writeFile(t, filepath.Join(root, "big.go"), string(big))

	res, err := Walk(context.Background(), Options{Root: root, MaxFileSizeBytes: 10})
	require.NoError(t, err)
	require.Empty(t, res.Files)
}

func TestDiff_AddedModifiedRemoved(t *testing.T) {
	prev := map[string]uint64{"a.go": 1, "b.go": 2, "d.go": 4}
	current := []FileRecord{
		{Path: "a.go", Fingerprint: 1},   // unchanged
		{Path: "b.go", Fingerprint: 999}, // modified
		{Path: "c.go", Fingerprint: 3},   // added
		// d.go absent => removed
	}
	d := Diff(current, prev)
	require.Len(t, d.Added, 1)
	require.Equal(t, "c.go", d.Added[0].Path)
	require.Len(t, d.Modified, 1)
	require.Equal(t, "b.go", d.Modified[0].Path)
	require.Len(t, d.Unchanged, 1)
	require.Equal(t, "a.go", d.Unchanged[0].Path)
	require.Equal(t, []string{"d.go"}, d.Removed)
}
