package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftlang/drift/internal/enforcement"
)

func TestLoadConfig_DecodesJSONCWithCommentsAndTrailingCommas(t *testing.T) {
	text := []byte(`{
		// ignored by a human, stripped before decoding
		"suppressionGlobs": ["vendor/**", "*.gen.go"],
		"gates": [
			{"id": "test-coverage", "maxAllowed": 5},
		],
	}`)

	cfg, err := LoadConfig(text)
	require.NoError(t, err)
	require.Equal(t, []string{"vendor/**", "*.gen.go"}, cfg.SuppressionGlobs)
	require.Len(t, cfg.Gates, 1)
	require.Equal(t, "test-coverage", cfg.Gates[0].ID)
}

func TestLoadConfig_RejectsUnknownField(t *testing.T) {
	_, err := LoadConfig([]byte(`{"notAField": true}`))
	require.Error(t, err)
}

func TestLoadConfig_RejectsMalformedJSON(t *testing.T) {
	_, err := LoadConfig([]byte(`{not json`))
	require.Error(t, err)
}

func TestConfig_ToEngineOptions_OverridesNamedGateOnly(t *testing.T) {
	cfg := &Config{
		SuppressionGlobs: []string{"*_test.go"},
		Gates: []GateOverride{
			{ID: "test-coverage", MaxAllowed: intPtr(5)},
		},
	}

	opts, err := cfg.ToEngineOptions("db.sqlite", "/proj")
	require.NoError(t, err)
	require.Equal(t, "db.sqlite", opts.DBPath)
	require.Equal(t, []string{"*_test.go"}, opts.SuppressionGlobs)
	require.Len(t, opts.Gates, 6)

	for _, g := range opts.Gates {
		if g.ID == enforcement.GateTestCoverage {
			require.Equal(t, 5, g.MaxAllowed)
		} else {
			require.NotEqual(t, 5, g.MaxAllowed, "override must not leak onto other gates")
		}
	}
}

func TestConfig_ToEngineOptions_RejectsUnknownGateID(t *testing.T) {
	cfg := &Config{Gates: []GateOverride{{ID: "not-a-real-gate"}}}
	_, err := cfg.ToEngineOptions("db.sqlite", "/proj")
	require.Error(t, err)
}

func TestConfig_ToEngineOptions_InlineTaintRegistryWinsOverPath(t *testing.T) {
	cfg := &Config{
		TaintRegistryPath: "/does/not/exist.jsonc",
		TaintRegistry:     []byte(`{"sources":[],"sinks":[],"sanitizers":[]}`),
	}
	opts, err := cfg.ToEngineOptions("db.sqlite", "/proj")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"sources":[],"sinks":[],"sanitizers":[]}`), opts.TaintRegistryRaw)
}

func intPtr(v int) *int { return &v }
