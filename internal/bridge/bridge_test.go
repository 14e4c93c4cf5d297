package bridge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/runtime"
)

func decodeEnvelope(t *testing.T, data []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func writeFixtureProject(t *testing.T, root string) {
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

func requireInitialized(t *testing.T) (dbPath, projectRoot string) {
	t.Helper()
	dbPath, projectRoot = t.TempDir(), t.TempDir()
	req, err := json.Marshal(initializeRequest{DBPath: dbPath, ProjectRoot: projectRoot})
	require.NoError(t, err)
	env := decodeEnvelope(t, Initialize(req))
	require.True(t, env.OK, "Initialize failed: %+v", env.Error)
	t.Cleanup(func() {
		if runtime.IsInitialized() {
			decodeEnvelope(t, Shutdown())
		}
	})
	return dbPath, projectRoot
}

func TestInitialize_ReturnsErrorEnvelopeWhenAlreadyInitialized(t *testing.T) {
	requireInitialized(t)

	env := decodeEnvelope(t, Initialize([]byte(`{"dbPath":"x","projectRoot":"y"}`)))
	require.False(t, env.OK)
	require.Equal(t, "ALREADY_INITIALIZED", env.Error.Code)
}

func TestInitialize_DecodesConfigTextIntoEngineOptions(t *testing.T) {
	dbPath, projectRoot := t.TempDir(), t.TempDir()
	req, err := json.Marshal(initializeRequest{
		DBPath:      dbPath,
		ProjectRoot: projectRoot,
		ConfigText:  `{"suppressionGlobs": ["vendor/**"]}`,
	})
	require.NoError(t, err)

	env := decodeEnvelope(t, Initialize(req))
	require.True(t, env.OK, "Initialize failed: %+v", env.Error)
	t.Cleanup(func() { decodeEnvelope(t, Shutdown()) })

	rt := runtime.Current()
	require.NotNil(t, rt)
}

func TestIsInitialized_ReflectsLifecycle(t *testing.T) {
	env := decodeEnvelope(t, IsInitialized())
	var result struct {
		Initialized bool `json:"initialized"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.False(t, result.Initialized)

	requireInitialized(t)

	env = decodeEnvelope(t, IsInitialized())
	require.NoError(t, json.Unmarshal(env.Result, &result))
	require.True(t, result.Initialized)
}

func TestScan_ThenAnalyzeAndCallGraphReflectFixture(t *testing.T) {
	_, projectRoot := requireInitialized(t)
	writeFixtureProject(t, projectRoot)

	req, err := json.Marshal(scanRequest{Root: projectRoot})
	require.NoError(t, err)
	env := decodeEnvelope(t, Scan(context.Background(), req))
	require.True(t, env.OK, "Scan failed: %+v", env.Error)

	var summary scanResult
	require.NoError(t, json.Unmarshal(env.Result, &summary))
	require.Equal(t, 1, summary.Processed)

	env = decodeEnvelope(t, Analyze())
	require.True(t, env.OK)

	env = decodeEnvelope(t, CallGraph())
	require.True(t, env.OK)
}

func TestScan_WithoutInitializeReturnsNotInitialized(t *testing.T) {
	req, err := json.Marshal(scanRequest{Root: t.TempDir()})
	require.NoError(t, err)
	env := decodeEnvelope(t, Scan(context.Background(), req))
	require.False(t, env.OK)
	require.Equal(t, "RUNTIME_NOT_INITIALIZED", env.Error.Code)
}

func TestViolationsGatesCheckAudit_RoundTripThroughJSON(t *testing.T) {
	_, projectRoot := requireInitialized(t)
	writeFixtureProject(t, projectRoot)
	ctx := context.Background()

	scanReq, err := json.Marshal(scanRequest{Root: projectRoot})
	require.NoError(t, err)
	require.True(t, decodeEnvelope(t, Scan(ctx, scanReq)).OK)

	rootReq, err := json.Marshal(rootRequest{Root: projectRoot})
	require.NoError(t, err)

	env := decodeEnvelope(t, Violations(ctx, rootReq))
	require.True(t, env.OK, "Violations failed: %+v", env.Error)

	env = decodeEnvelope(t, Gates(ctx, rootReq))
	require.True(t, env.OK, "Gates failed: %+v", env.Error)

	env = decodeEnvelope(t, Check(ctx, rootReq))
	require.True(t, env.OK, "Check failed: %+v", env.Error)
	var checkResult struct {
		Passed bool `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &checkResult))

	auditReq, err := json.Marshal(auditRequest{Root: projectRoot, Timestamp: 1700000000})
	require.NoError(t, err)
	env = decodeEnvelope(t, Audit(ctx, auditReq))
	require.True(t, env.OK, "Audit failed: %+v", env.Error)
}

func TestFeedbackMutators_RoundTripThroughJSON(t *testing.T) {
	requireInitialized(t)
	ctx := context.Background()

	req, err := json.Marshal(violationIDRequest{ViolationID: "v-1"})
	require.NoError(t, err)
	env := decodeEnvelope(t, DismissViolation(ctx, req))
	require.True(t, env.OK, "DismissViolation failed: %+v", env.Error)

	req, err = json.Marshal(violationIDRequest{ViolationID: "v-2"})
	require.NoError(t, err)
	env = decodeEnvelope(t, FixViolation(ctx, req))
	require.True(t, env.OK, "FixViolation failed: %+v", env.Error)

	req, err = json.Marshal(suppressRequest{ViolationID: "v-3", Reason: "known false positive"})
	require.NoError(t, err)
	env = decodeEnvelope(t, SuppressViolation(ctx, req))
	require.True(t, env.OK, "SuppressViolation failed: %+v", env.Error)
}

func TestGenerateSpec_WithoutMigrationPathOmitsMigrationSection(t *testing.T) {
	req, err := json.Marshal(struct {
		ModuleJSON string `json:"moduleJson"`
	}{ModuleJSON: `{"name":"billing","fileCount":4,"cohesion":0.8}`})
	require.NoError(t, err)

	env := decodeEnvelope(t, GenerateSpec(req))
	require.True(t, env.OK, "GenerateSpec failed: %+v", env.Error)

	var out struct {
		ModuleName     string `json:"moduleName"`
		HasAllSections bool   `json:"hasAllSections"`
		Sections       []struct {
			Section string `json:"section"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &out))
	require.Equal(t, "billing", out.ModuleName)
	require.False(t, out.HasAllSections)
	require.Len(t, out.Sections, 3)
}

func TestGenerateSpec_WithMigrationPathIncludesMigrationSection(t *testing.T) {
	req, err := json.Marshal(struct {
		ModuleJSON        string `json:"moduleJson"`
		MigrationPathJSON string `json:"migrationPathJson"`
	}{
		ModuleJSON:        `{"name":"billing"}`,
		MigrationPathJSON: `{"sourceLanguage":"rust","targetLanguage":"go"}`,
	})
	require.NoError(t, err)

	env := decodeEnvelope(t, GenerateSpec(req))
	require.True(t, env.OK, "GenerateSpec failed: %+v", env.Error)

	var out struct {
		HasAllSections bool `json:"hasAllSections"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &out))
	require.True(t, out.HasAllSections)
}

func TestGenerateSpec_RejectsMalformedModuleJSON(t *testing.T) {
	req, err := json.Marshal(struct {
		ModuleJSON string `json:"moduleJson"`
	}{ModuleJSON: `not json`})
	require.NoError(t, err)

	env := decodeEnvelope(t, GenerateSpec(req))
	require.False(t, env.OK)
	require.Equal(t, "CONFIG_ERROR", env.Error.Code)
}

func TestSetProgressCallback_ForwardsCompletionEvent(t *testing.T) {
	_, projectRoot := requireInitialized(t)
	writeFixtureProject(t, projectRoot)

	rt := runtime.Current()
	var sawComplete atomic.Bool
	SetProgressCallback(rt, func(eventJSON []byte) {
		var ev runtime.ProgressEvent
		if json.Unmarshal(eventJSON, &ev) == nil && ev.Phase == "complete" {
			sawComplete.Store(true)
		}
	})

	req, err := json.Marshal(scanRequest{Root: projectRoot})
	require.NoError(t, err)
	require.True(t, decodeEnvelope(t, Scan(context.Background(), req)).OK)

	require.Eventually(t, sawComplete.Load, time.Second, 5*time.Millisecond, "expected a completion progress event to be forwarded")
}
