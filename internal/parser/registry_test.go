package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_GoFunctionExtraction(t *testing.T) {
	src := []byte(`package main

func Add(a int, b int) int {
	return a + b
}

func main() {
	Add(1, 2)
}
`)
	reg := NewRegistry(0)
	rec, err := reg.Parse(src, "main.go")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "go", rec.Language)

	names := make([]string, 0, len(rec.Functions))
	for _, f := range rec.Functions {
		names = append(names, f.Name)
	}
	require.Contains(t, names, "Add")
	require.Contains(t, names, "main")

	var found bool
	for _, cs := range rec.CallSites {
		if cs.CalleeName == "Add" {
			found = true
		}
	}
	require.True(t, found, "expected a call site to Add")
}

func TestRegistry_CacheHitOnIdenticalContent(t *testing.T) {
	src := []byte(`package x

func F() {}
`)
	reg := NewRegistry(0)

	recA, err := reg.Parse(src, "a.go")
	require.NoError(t, err)
	require.Equal(t, 1, reg.CacheLen())

	recB, err := reg.Parse(src, "b.go")
	require.NoError(t, err)
	require.Equal(t, 1, reg.CacheLen(), "identical content must hit the cache, not grow it")

	require.Equal(t, recA.Fingerprint, recB.Fingerprint)
	require.NotEqual(t, recA.File, recB.File)
	require.Len(t, recB.Functions, len(recA.Functions))
}

func TestRegistry_UnknownExtensionReturnsNil(t *testing.T) {
	reg := NewRegistry(0)
	rec, err := reg.Parse([]byte("hello"), "README.md")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.Put(1, &StructuralRecord{File: "a"})
	c.Put(2, &StructuralRecord{File: "b"})
	c.Put(3, &StructuralRecord{File: "c"}) // evicts 1

	_, ok := c.Get(1)
	require.False(t, ok)
	_, ok = c.Get(2)
	require.True(t, ok)
	_, ok = c.Get(3)
	require.True(t, ok)
}
