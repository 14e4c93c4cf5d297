package taint

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonc "github.com/muhammadmuzzammil1998/jsonc"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed taint_registry.schema.json
var schemaFS embed.FS

const schemaURL = "mem://taint/registry.schema.json"

var (
	compileOnce sync.Once
	compiler    *jsonschema.Schema
	compileErr  error
)

func registrySchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile("taint_registry.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read taint registry schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("decode taint registry schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("register taint registry schema: %w", err)
			return
		}
		s, err := c.Compile(schemaURL)
		if err != nil {
			compileErr = fmt.Errorf("compile taint registry schema: %w", err)
			return
		}
		compiler = s
	})
	return compiler, compileErr
}

// SourcePattern matches taint source expressions (spec §4.8, §6 registry
// text format).
type SourcePattern struct {
	Pattern    string     `json:"pattern" yaml:"pattern"`
	SourceType SourceType `json:"source_type" yaml:"source_type"`
	Framework  string     `json:"framework,omitempty" yaml:"framework,omitempty"`
}

// SinkPattern matches taint sink expressions.
type SinkPattern struct {
	Pattern            string          `json:"pattern" yaml:"pattern"`
	SinkType           SinkType        `json:"sink_type" yaml:"sink_type"`
	RequiredSanitizers []SanitizerType `json:"required_sanitizers,omitempty" yaml:"required_sanitizers,omitempty"`
	Framework          string          `json:"framework,omitempty" yaml:"framework,omitempty"`
}

// SanitizerPattern matches sanitizing call expressions.
type SanitizerPattern struct {
	Pattern         string     `json:"pattern" yaml:"pattern"`
	SanitizerType   SanitizerType `json:"sanitizer_type" yaml:"sanitizer_type"`
	ProtectsAgainst []SinkType `json:"protects_against,omitempty" yaml:"protects_against,omitempty"`
	Framework       string     `json:"framework,omitempty" yaml:"framework,omitempty"`
}

// registryConfig is the on-disk shape for text-loaded registry
// additions (spec §6 "Taint registry text format").
type registryConfig struct {
	Sources    []SourcePattern    `json:"sources,omitempty" yaml:"sources,omitempty"`
	Sinks      []SinkPattern      `json:"sinks,omitempty" yaml:"sinks,omitempty"`
	Sanitizers []SanitizerPattern `json:"sanitizers,omitempty" yaml:"sanitizers,omitempty"`
}

// Registry holds the matchable source/sink/sanitizer pattern sets.
// Matching is case-insensitive substring in either direction between
// the candidate expression and a pattern string (spec §4.8).
type Registry struct {
	Sources    []SourcePattern
	Sinks      []SinkPattern
	Sanitizers []SanitizerPattern
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// NewDefaultRegistry returns a registry pre-populated with built-in
// patterns for common sources, sinks, and sanitizers across languages.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.addDefaultSources()
	r.addDefaultSinks()
	r.addDefaultSanitizers()
	return r
}

// LoadJSONC extends the registry from JSONC (JSON with comments and
// trailing commas), validating against the registry schema first.
func (r *Registry) LoadJSONC(data []byte) error {
	clean := jsonc.ToJSON(data)

	schema, err := registrySchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(clean))
	if err != nil {
		return fmt.Errorf("parse taint registry json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validate taint registry: %w", err)
	}

	var cfg registryConfig
	if err := json.Unmarshal(clean, &cfg); err != nil {
		return fmt.Errorf("decode taint registry: %w", err)
	}
	r.merge(cfg)
	return nil
}

// LoadYAML extends the registry from the YAML alternate format (spec §6
// only mandates the three-array shape, not an encoding).
func (r *Registry) LoadYAML(data []byte) error {
	var cfg registryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("decode taint registry yaml: %w", err)
	}
	r.merge(cfg)
	return nil
}

func (r *Registry) merge(cfg registryConfig) {
	r.Sources = append(r.Sources, cfg.Sources...)
	r.Sinks = append(r.Sinks, cfg.Sinks...)
	r.Sanitizers = append(r.Sanitizers, cfg.Sanitizers...)
}

// AddSource registers a custom source pattern.
func (r *Registry) AddSource(p SourcePattern) { r.Sources = append(r.Sources, p) }

// AddSink registers a custom sink pattern.
func (r *Registry) AddSink(p SinkPattern) { r.Sinks = append(r.Sinks, p) }

// AddSanitizer registers a custom sanitizer pattern.
func (r *Registry) AddSanitizer(p SanitizerPattern) { r.Sanitizers = append(r.Sanitizers, p) }

// fold normalizes an expression for case-insensitive substring matching,
// using full Unicode case folding so non-ASCII identifiers match the
// same way as ASCII ones (spec §4.8 "case-insensitive substring").
var foldCaser = cases.Fold()

func fold(s string) string { return foldCaser.String(s) }

func matches(expr, pattern string) bool {
	e, p := fold(expr), fold(pattern)
	return strings.Contains(e, p) || strings.Contains(p, e)
}

// MatchSource returns the first source pattern matching expression, or
// nil.
func (r *Registry) MatchSource(expression string) *SourcePattern {
	for i := range r.Sources {
		if matches(expression, r.Sources[i].Pattern) {
			return &r.Sources[i]
		}
	}
	return nil
}

// MatchSink returns the first sink pattern matching expression, or nil.
func (r *Registry) MatchSink(expression string) *SinkPattern {
	for i := range r.Sinks {
		if matches(expression, r.Sinks[i].Pattern) {
			return &r.Sinks[i]
		}
	}
	return nil
}

// MatchSanitizer returns the first sanitizer pattern matching
// expression, or nil.
func (r *Registry) MatchSanitizer(expression string) *SanitizerPattern {
	for i := range r.Sanitizers {
		if matches(expression, r.Sanitizers[i].Pattern) {
			return &r.Sanitizers[i]
		}
	}
	return nil
}

func (r *Registry) addDefaultSources() {
	patterns := []string{
		"req.query", "req.body", "req.params", "req.headers",
		"request.GET", "request.POST", "request.data", "request.json",
		"request.args", "request.form", "request.files",
		"getParameter", "getQueryString", "getHeader",
		"HttpContext.Request", "Request.Query", "Request.Form",
		"params", "user_input", "stdin", "argv",
		"process.env", "os.environ", "System.getenv",
	}
	for _, p := range patterns {
		r.Sources = append(r.Sources, SourcePattern{Pattern: p, SourceType: SourceUserInput})
	}
}

type sinkDefault struct {
	pattern    string
	sinkType   SinkType
	sanitizers []SanitizerType
}

func (r *Registry) addDefaultSinks() {
	defs := []sinkDefault{
		{"db.query", SinkSQLQuery, []SanitizerType{SanitizerSQLParameterize}},
		{"db.execute", SinkSQLQuery, []SanitizerType{SanitizerSQLParameterize}},
		{"cursor.execute", SinkSQLQuery, []SanitizerType{SanitizerSQLParameterize}},
		{"connection.query", SinkSQLQuery, []SanitizerType{SanitizerSQLParameterize}},
		{"raw_sql", SinkSQLQuery, []SanitizerType{SanitizerSQLParameterize}},
		{"exec", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"execSync", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"spawn", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"system", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"popen", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"subprocess.run", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"subprocess.call", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"Runtime.exec", SinkOSCommand, []SanitizerType{SanitizerShellEscape}},
		{"eval", SinkCodeExecution, []SanitizerType{SanitizerInputValidation}},
		{"Function", SinkCodeExecution, []SanitizerType{SanitizerInputValidation}},
		{"res.send", SinkHTMLOutput, []SanitizerType{SanitizerHTMLEscape}},
		{"res.write", SinkHTMLOutput, []SanitizerType{SanitizerHTMLEscape}},
		{"document.write", SinkHTMLOutput, []SanitizerType{SanitizerHTMLEscape}},
		{"innerHTML", SinkHTMLOutput, []SanitizerType{SanitizerHTMLEscape}},
		{"render", SinkTemplateRender, []SanitizerType{SanitizerHTMLEscape}},
		{"res.redirect", SinkHTTPRedirect, []SanitizerType{SanitizerURLEncode}},
		{"redirect", SinkHTTPRedirect, []SanitizerType{SanitizerURLEncode}},
		{"fetch", SinkHTTPRequest, []SanitizerType{SanitizerURLEncode}},
		{"http.get", SinkHTTPRequest, []SanitizerType{SanitizerURLEncode}},
		{"requests.get", SinkHTTPRequest, []SanitizerType{SanitizerURLEncode}},
		{"fs.readFile", SinkFileRead, []SanitizerType{SanitizerPathValidate}},
		{"fs.writeFile", SinkFileWrite, []SanitizerType{SanitizerPathValidate}},
		{"open", SinkFileRead, []SanitizerType{SanitizerPathValidate}},
		{"JSON.parse", SinkDeserialization, []SanitizerType{SanitizerInputValidation}},
		{"pickle.loads", SinkDeserialization, []SanitizerType{SanitizerInputValidation}},
		{"yaml.load", SinkDeserialization, []SanitizerType{SanitizerInputValidation}},
		{"console.log", SinkLogOutput, []SanitizerType{SanitizerInputValidation}},
		{"logger.info", SinkLogOutput, []SanitizerType{SanitizerInputValidation}},
		{"setHeader", SinkHeaderInjection, []SanitizerType{SanitizerInputValidation}},
		{"new RegExp", SinkRegexConstruction, []SanitizerType{SanitizerInputValidation}},
		{"xml.parse", SinkXMLParsing, []SanitizerType{SanitizerInputValidation}},
		{"upload", SinkFileUpload, []SanitizerType{SanitizerInputValidation}},
	}
	for _, d := range defs {
		r.Sinks = append(r.Sinks, SinkPattern{Pattern: d.pattern, SinkType: d.sinkType, RequiredSanitizers: d.sanitizers})
	}
}

type sanitizerDefault struct {
	pattern  string
	sanType  SanitizerType
	protects []SinkType
}

func (r *Registry) addDefaultSanitizers() {
	defs := []sanitizerDefault{
		{"escapeHtml", SanitizerHTMLEscape, []SinkType{SinkHTMLOutput, SinkTemplateRender}},
		{"escape", SanitizerHTMLEscape, []SinkType{SinkHTMLOutput}},
		{"sanitize", SanitizerHTMLEscape, []SinkType{SinkHTMLOutput}},
		{"DOMPurify.sanitize", SanitizerHTMLEscape, []SinkType{SinkHTMLOutput}},
		{"xss", SanitizerHTMLEscape, []SinkType{SinkHTMLOutput}},
		{"parameterize", SanitizerSQLParameterize, []SinkType{SinkSQLQuery}},
		{"prepare", SanitizerSQLParameterize, []SinkType{SinkSQLQuery}},
		{"placeholder", SanitizerSQLParameterize, []SinkType{SinkSQLQuery}},
		{"shellescape", SanitizerShellEscape, []SinkType{SinkOSCommand}},
		{"shlex.quote", SanitizerShellEscape, []SinkType{SinkOSCommand}},
		{"escapeshellarg", SanitizerShellEscape, []SinkType{SinkOSCommand}},
		{"path.resolve", SanitizerPathValidate, []SinkType{SinkFileRead, SinkFileWrite}},
		{"path.normalize", SanitizerPathValidate, []SinkType{SinkFileRead, SinkFileWrite}},
		{"realpath", SanitizerPathValidate, []SinkType{SinkFileRead, SinkFileWrite}},
		{"encodeURIComponent", SanitizerURLEncode, []SinkType{SinkHTTPRedirect, SinkHTTPRequest}},
		{"encodeURI", SanitizerURLEncode, []SinkType{SinkHTTPRedirect}},
		{"parseInt", SanitizerTypeCast, []SinkType{SinkSQLQuery}},
		{"Number", SanitizerTypeCast, []SinkType{SinkSQLQuery}},
		{"validate", SanitizerInputValidation, []SinkType{SinkSQLQuery, SinkOSCommand, SinkHTMLOutput}},
	}
	for _, d := range defs {
		r.Sanitizers = append(r.Sanitizers, SanitizerPattern{Pattern: d.pattern, SanitizerType: d.sanType, ProtectsAgainst: d.protects})
	}
}
