// Package taint implements intraprocedural source-to-sink flow analysis
// with sanitizer tracking, driven by a text-loadable pattern registry
// (spec §4.8).
package taint

// SourceType classifies a taint source.
type SourceType string

const (
	SourceUserInput     SourceType = "user_input"
	SourceEnvironment   SourceType = "environment"
	SourceFileInput     SourceType = "file_input"
	SourceNetworkInput  SourceType = "network_input"
	SourceDatabaseInput SourceType = "database_input"
)

// SinkType classifies a taint sink, each mapped to a CWE identifier.
type SinkType string

const (
	SinkSQLQuery         SinkType = "sql_query"
	SinkOSCommand        SinkType = "os_command"
	SinkCodeExecution    SinkType = "code_execution"
	SinkHTMLOutput       SinkType = "html_output"
	SinkTemplateRender   SinkType = "template_render"
	SinkHTTPRedirect     SinkType = "http_redirect"
	SinkHTTPRequest      SinkType = "http_request"
	SinkFileRead         SinkType = "file_read"
	SinkFileWrite        SinkType = "file_write"
	SinkDeserialization  SinkType = "deserialization"
	SinkLogOutput        SinkType = "log_output"
	SinkHeaderInjection  SinkType = "header_injection"
	SinkRegexConstruction SinkType = "regex_construction"
	SinkXMLParsing       SinkType = "xml_parsing"
	SinkFileUpload       SinkType = "file_upload"
)

// cweBySinkType maps each sink type to its CWE identifier.
var cweBySinkType = map[SinkType]string{
	SinkSQLQuery:          "CWE-89",
	SinkOSCommand:         "CWE-78",
	SinkCodeExecution:     "CWE-95",
	SinkHTMLOutput:        "CWE-79",
	SinkTemplateRender:    "CWE-79",
	SinkHTTPRedirect:      "CWE-601",
	SinkHTTPRequest:       "CWE-918",
	SinkFileRead:          "CWE-22",
	SinkFileWrite:         "CWE-22",
	SinkDeserialization:   "CWE-502",
	SinkLogOutput:         "CWE-117",
	SinkHeaderInjection:   "CWE-113",
	SinkRegexConstruction: "CWE-1333",
	SinkXMLParsing:        "CWE-611",
	SinkFileUpload:        "CWE-434",
}

// CWEID returns the CWE identifier associated with a sink type, or the
// empty string if unmapped.
func (s SinkType) CWEID() string { return cweBySinkType[s] }

// SanitizerType classifies a sanitizing call.
type SanitizerType string

const (
	SanitizerHTMLEscape      SanitizerType = "html_escape"
	SanitizerSQLParameterize SanitizerType = "sql_parameterize"
	SanitizerShellEscape     SanitizerType = "shell_escape"
	SanitizerPathValidate    SanitizerType = "path_validate"
	SanitizerURLEncode       SanitizerType = "url_encode"
	SanitizerTypeCast        SanitizerType = "type_cast"
	SanitizerInputValidation SanitizerType = "input_validation"
)

// TaintLabel identifies a source propagated through an intraprocedural
// flow.
type TaintLabel struct {
	ID         uint64
	SourceType SourceType
}

// Source is a taint source occurrence.
type Source struct {
	File       string
	Line       int
	Column     int
	Expression string
	SourceType SourceType
	Label      TaintLabel
}

// Sink is a taint sink occurrence.
type Sink struct {
	File                string
	Line                int
	Column              int
	Expression          string
	SinkType            SinkType
	RequiredSanitizers  []SanitizerType
}

// SanitizerApplication records a sanitizer call site and which sink
// types it neutralizes.
type SanitizerApplication struct {
	File            string
	Line            int
	Expression      string
	SanitizerType   SanitizerType
	ProtectsAgainst []SinkType
}

// Hop is one step in a taint flow's path.
type Hop struct {
	File        string
	Line        int
	Column      int
	Function    string
	Description string
}

// Flow is a single source-to-sink taint flow (spec §3 "Taint flow").
type Flow struct {
	Source            Source
	Sink              Sink
	Path              []Hop
	IsSanitized       bool
	SanitizersApplied []SanitizerApplication
	CWEID             string
	Confidence        float64
}
