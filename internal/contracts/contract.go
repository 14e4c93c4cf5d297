package contracts

import (
	"regexp"
	"strings"
	"time"
)

// HTTP methods a contract may carry, plus the two synthetic values the
// extractors emit when a framework's route registration doesn't pin
// one down: ANY (accepts every method, e.g. net/http.HandleFunc) and
// USE (an Express-style middleware mount).
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodPatch   = "PATCH"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
	MethodAny     = "ANY"
	MethodUse     = "USE"
)

// ValidMethods lists the real HTTP verbs a contract can be keyed on.
func ValidMethods() []string {
	return []string{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}
}

// IsValidMethod reports whether method is one of ValidMethods.
func IsValidMethod(method string) bool {
	for _, m := range ValidMethods() {
		if m == strings.ToUpper(method) {
			return true
		}
	}
	return false
}

// ContractStatus is a contract's position in its discover→verify
// lifecycle (spec §4.11).
type ContractStatus string

const (
	ContractDiscovered ContractStatus = "discovered"
	ContractVerified   ContractStatus = "verified"
	ContractMismatch   ContractStatus = "mismatch"
	ContractIgnored    ContractStatus = "ignored"
)

// BackendEndpoint is the provider side of a Contract: where the route
// is registered and the request/response shapes its handler implies.
type BackendEndpoint struct {
	File           string
	Line           int
	Framework      string
	Handler        string
	RequestSchema  *TypeSchema
	ResponseSchema *TypeSchema
}

// FrontendCall is one consumer-side call site matched to a Contract.
type FrontendCall struct {
	ID             string
	ContractID     string
	File           string
	Line           int
	CallType       string // fetch|axios|ts-client|...
	ExpectedSchema *TypeSchema
	CreatedAt      time.Time
}

// Contract pairs a backend endpoint with the frontend calls that
// consume it and the mismatches found between them.
type Contract struct {
	ID              string
	Method          string
	Endpoint        string
	EndpointPattern string
	Backend         BackendEndpoint
	FrontendCalls   []FrontendCall
	Mismatches      []FieldMismatch
	Status          ContractStatus
	Authority       string // "proposed"|"confirmed", mirrors convention.PromotionState's vocabulary
	Confidence      float64
	FirstSeen       time.Time
	LastSeen        time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasMismatches reports whether the contract has any recorded
// FieldMismatch.
func (c *Contract) HasMismatches() bool { return len(c.Mismatches) > 0 }

// MismatchCount returns the number of recorded mismatches.
func (c *Contract) MismatchCount() int { return len(c.Mismatches) }

// FrontendCallCount returns the number of consumer call sites matched
// to this contract.
func (c *Contract) FrontendCallCount() int { return len(c.FrontendCalls) }

// ErrorCount returns the number of mismatches at MismatchError
// severity.
func (c *Contract) ErrorCount() int {
	n := 0
	for _, m := range c.Mismatches {
		if m.Severity == MismatchError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of mismatches at MismatchWarning
// severity.
func (c *Contract) WarningCount() int {
	n := 0
	for _, m := range c.Mismatches {
		if m.Severity == MismatchWarning {
			n++
		}
	}
	return n
}

// UpdateMismatches recomputes c.Mismatches by comparing the backend's
// response schema against every frontend call's expected schema, and
// moves Status to ContractMismatch if any survive.
func (c *Contract) UpdateMismatches() {
	var mismatches []FieldMismatch
	for _, call := range c.FrontendCalls {
		if c.Backend.ResponseSchema == nil || call.ExpectedSchema == nil {
			continue
		}
		found := c.Backend.ResponseSchema.Compare(call.ExpectedSchema, "")
		mismatches = append(mismatches, found...)
	}
	c.Mismatches = mismatches
	if len(mismatches) > 0 {
		c.Status = ContractMismatch
	} else if c.Status == ContractMismatch {
		c.Status = ContractVerified
	}
}

var (
	bracePathParam = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)
	anglePathParam = regexp.MustCompile(`<([a-zA-Z_][a-zA-Z0-9_]*)>`)
	colonPathParam = regexp.MustCompile(`:([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// NormalizePath canonicalizes the three path-param spellings the pack's
// frameworks use ({id} for Express/FastAPI/OpenAPI, <id> for
// Flask/Django, :id for Gin/Express) down to :id, and trims a trailing
// slash.
func NormalizePath(path string) string {
	path = bracePathParam.ReplaceAllString(path, ":$1")
	path = anglePathParam.ReplaceAllString(path, ":$1")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// ExtractPathParams returns the parameter names in a normalized path,
// in order.
func ExtractPathParams(path string) []string {
	matches := colonPathParam.FindAllStringSubmatch(NormalizePath(path), -1)
	params := make([]string, 0, len(matches))
	for _, m := range matches {
		params = append(params, m[1])
	}
	return params
}

// PathToPattern compiles a normalized path into an anchored regex that
// matches a concrete request URL, substituting each :param segment
// with a single-segment wildcard.
func PathToPattern(path string) string {
	normalized := NormalizePath(path)
	segments := strings.Split(normalized, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = `[^/]+`
		} else {
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return "^" + strings.Join(segments, "/") + "$"
}

// MatchPath reports whether url matches the compiled pattern produced
// by PathToPattern.
func MatchPath(url, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(NormalizePath(url))
}

// ContractFilters narrows a Store listing query.
type ContractFilters struct {
	Method        string
	Status        string
	HasMismatches *bool
	Endpoint      string
	Limit         int
	Offset        int
}

// ContractStats aggregates counts across a set of contracts.
type ContractStats struct {
	Total         int
	Discovered    int
	Verified      int
	Mismatch      int
	Ignored       int
	ByMethod      map[string]int
	TotalCalls    int
	TotalErrors   int
	TotalWarnings int
}
