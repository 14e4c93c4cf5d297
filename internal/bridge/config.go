package bridge

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/muhammadmuzzammil1998/jsonc"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/driftlang/drift/internal/enforcement"
	"github.com/driftlang/drift/internal/runtime"
)

//go:embed config.schema.json
var schemaFS embed.FS

const configSchemaURL = "mem://drift/config.schema.json"

var (
	compileOnce  sync.Once
	configSchema *jsonschema.Schema
	compileErr   error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile("config.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read config schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("decode config schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(configSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("register config schema: %w", err)
			return
		}
		configSchema, compileErr = c.Compile(configSchemaURL)
	})
	return configSchema, compileErr
}

// GateOverride narrows or relaxes one of the six built-in gates without
// requiring a project to repeat every field of every gate (spec §6
// "initialize(... config_text?)").
type GateOverride struct {
	ID          string `json:"id"`
	MinSeverity string `json:"minSeverity,omitempty"`
	MaxAllowed  *int   `json:"maxAllowed,omitempty"`
}

// Config is the decoded shape of the bridge's config_text parameter.
// The core itself never reads a project config file (SPEC_FULL §1.3:
// runtime.EngineOptions is already-parsed); Config and ToEngineOptions
// are the bridge's side of that boundary.
type Config struct {
	SuppressionGlobs  []string        `json:"suppressionGlobs,omitempty"`
	TaintRegistryPath string          `json:"taintRegistryPath,omitempty"`
	TaintRegistry     json.RawMessage `json:"taintRegistry,omitempty"`
	Gates             []GateOverride  `json:"gates,omitempty"`
}

// LoadConfig strips JSONC comments and trailing commas from configText,
// validates the result against the embedded schema, and decodes it.
func LoadConfig(configText []byte) (*Config, error) {
	clean := jsonc.ToJSON(configText)

	var instance any
	if err := json.Unmarshal(clean, &instance); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	schema, err := compiledConfigSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("config invalid: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(clean, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// ToEngineOptions resolves cfg, dbPath and projectRoot into the
// fully-parsed EngineOptions the core accepts. When TaintRegistryPath
// is set it is read from disk; an inline TaintRegistry object wins if
// both are present.
func (cfg *Config) ToEngineOptions(dbPath, projectRoot string) (runtime.EngineOptions, error) {
	opts := runtime.EngineOptions{
		DBPath:           dbPath,
		ProjectRoot:      projectRoot,
		SuppressionGlobs: cfg.SuppressionGlobs,
	}

	switch {
	case len(cfg.TaintRegistry) > 0:
		opts.TaintRegistryRaw = cfg.TaintRegistry
	case cfg.TaintRegistryPath != "":
		data, err := os.ReadFile(cfg.TaintRegistryPath)
		if err != nil {
			return runtime.EngineOptions{}, fmt.Errorf("read taint registry %s: %w", cfg.TaintRegistryPath, err)
		}
		opts.TaintRegistryRaw = data
	}

	if len(cfg.Gates) > 0 {
		gates, err := resolveGates(cfg.Gates)
		if err != nil {
			return runtime.EngineOptions{}, err
		}
		opts.Gates = gates
	}
	return opts, nil
}

func resolveGates(overrides []GateOverride) ([]enforcement.Gate, error) {
	base := map[enforcement.GateID]enforcement.Gate{}
	for _, g := range runtime.DefaultGates() {
		base[g.ID] = g
	}
	for _, o := range overrides {
		id := enforcement.GateID(o.ID)
		g, ok := base[id]
		if !ok {
			return nil, fmt.Errorf("unknown gate %q", o.ID)
		}
		if o.MinSeverity != "" {
			g.MinSeverity = enforcement.Severity(o.MinSeverity)
		}
		if o.MaxAllowed != nil {
			g.MaxAllowed = *o.MaxAllowed
		}
		base[id] = g
	}
	gates := make([]enforcement.Gate, 0, len(base))
	for _, id := range enforcement.AllGateIDs() {
		gates = append(gates, base[id])
	}
	return gates, nil
}
