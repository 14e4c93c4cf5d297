package runtime

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/direrr"
)

func newTestOptions(t *testing.T) EngineOptions {
	t.Helper()
	return EngineOptions{DBPath: t.TempDir(), ProjectRoot: t.TempDir()}
}

func initTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := Initialize(newTestOptions(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		if IsInitialized() {
			require.NoError(t, rt.Shutdown())
		}
	})
	return rt
}

func TestInitialize_InstallsSingleton(t *testing.T) {
	require.False(t, IsInitialized())
	rt := initTestRuntime(t)
	require.True(t, IsInitialized())
	require.Same(t, rt, Current())
}

func TestInitialize_RejectsSecondCallWhileInstalled(t *testing.T) {
	initTestRuntime(t)
	_, err := Initialize(newTestOptions(t))
	require.ErrorIs(t, err, direrr.ErrAlreadyInitialized)
}

func TestShutdown_ClearsSingletonAndAllowsReinitialize(t *testing.T) {
	rt := initTestRuntime(t)
	require.NoError(t, rt.Shutdown())
	require.False(t, IsInitialized())

	rt2, err := Initialize(newTestOptions(t))
	require.NoError(t, err)
	t.Cleanup(func() { rt2.Shutdown() })
	require.True(t, IsInitialized())
}

func TestShutdown_TwiceReturnsNotInitialized(t *testing.T) {
	rt := initTestRuntime(t)
	require.NoError(t, rt.Shutdown())
	require.ErrorIs(t, rt.Shutdown(), direrr.ErrNotInitialized)
}

func writeFixtureTree(t *testing.T, root string) {
	t.Helper()
	src := `package fixture

func Greet(name string) string {
	return "hello " + name
}

func Caller() string {
	return Greet("world")
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "fixture.go"), []byte(src), 0o644))
}

func TestScan_ProcessesFilesAndPopulatesCallGraph(t *testing.T) {
	opts := newTestOptions(t)
	writeFixtureTree(t, opts.ProjectRoot)

	rt, err := Initialize(opts)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Shutdown() })

	summary, err := rt.Scan(context.Background(), opts.ProjectRoot, nil)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	require.False(t, summary.Partial)

	result := rt.Analyze()
	require.GreaterOrEqual(t, result.NodeCount, 1)

	page, err := rt.Patterns(context.Background(), "", "", 10)
	require.NoError(t, err)
	require.NotNil(t, page)
}

func TestScan_EmitsProgressOnCompletion(t *testing.T) {
	opts := newTestOptions(t)
	writeFixtureTree(t, opts.ProjectRoot)

	rt, err := Initialize(opts)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Shutdown() })

	var got atomic.Bool
	rt.SetProgressHandler(HandlerFunc(func(ev ProgressEvent) {
		if ev.Phase == "complete" {
			got.Store(true)
		}
	}))

	_, err = rt.Scan(context.Background(), opts.ProjectRoot, nil)
	require.NoError(t, err)
	require.Eventually(t, got.Load, time.Second, 5*time.Millisecond, "expected a completion progress event")
}

func TestViolationsGatesAuditCheck_RoundTrip(t *testing.T) {
	opts := newTestOptions(t)
	writeFixtureTree(t, opts.ProjectRoot)

	rt, err := Initialize(opts)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Shutdown() })

	ctx := context.Background()
	_, err = rt.Scan(ctx, opts.ProjectRoot, nil)
	require.NoError(t, err)

	violations, err := rt.Violations(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, violations)

	results, err := rt.Gates(ctx, nil)
	require.NoError(t, err)
	require.Len(t, results, len(DefaultGates()))

	snapshot, fresh, err := rt.Audit(ctx, 1700000000, nil)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	require.Equal(t, int64(1700000000), snapshot.Timestamp)

	ok, checkResults, err := rt.Check(ctx, nil)
	require.NoError(t, err)
	require.Len(t, checkResults, len(DefaultGates()))
	_ = ok
}

func TestFeedback_DismissAndSuppressRecordActions(t *testing.T) {
	rt := initTestRuntime(t)
	ctx := context.Background()

	res, err := rt.DismissViolation(ctx, "v-1")
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = rt.SuppressViolation(ctx, "v-2", "known false positive")
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = rt.FixViolation(ctx, "v-3")
	require.NoError(t, err)
	require.True(t, res.Success)
}
