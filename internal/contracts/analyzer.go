package contracts

import (
	"fmt"
	"time"
)

// EndpointInput is a backend route as discovered by an
// extractors.EndpointExtractor, ready for Analyze.
type EndpointInput struct {
	Method         string
	Path           string
	File           string
	Line           int
	Handler        string
	Framework      string
	RequestSchema  *TypeSchema
	ResponseSchema *TypeSchema
}

// CallInput is a frontend call site as discovered by an
// extractors.APICallExtractor, ready for Analyze.
type CallInput struct {
	Method         string
	URL            string
	File           string
	Line           int
	CallType       string
	IsDynamic      bool
	ExpectedSchema *TypeSchema
}

// AnalysisInput is the full set of endpoints and calls gathered across
// a scan, for one Analyze pass.
type AnalysisInput struct {
	Endpoints []EndpointInput
	Calls     []CallInput
}

// UnmatchedEndpoint is a backend route no frontend call reaches.
type UnmatchedEndpoint struct {
	Method  string
	Path    string
	File    string
	Line    int
	Handler string
}

// UnmatchedCall is a frontend call with no registered backend route.
type UnmatchedCall struct {
	Method string
	URL    string
	File   string
	Line   int
}

// AnalysisResult is Analyze's output: every discovered Contract plus
// the routes and calls that couldn't be paired.
type AnalysisResult struct {
	Contracts         []*Contract
	UnmatchedBackend  []UnmatchedEndpoint
	UnmatchedFrontend []UnmatchedCall
	TotalMismatches   int
	AnalyzedAt        time.Time
}

// Analyzer builds Contracts by matching an AnalysisInput's endpoints
// against its calls and diffing their schemas (spec §4.11).
type Analyzer struct {
	matcher *Matcher
}

// NewAnalyzer returns an Analyzer with a fresh Matcher.
func NewAnalyzer() *Analyzer {
	return &Analyzer{matcher: NewMatcher()}
}

// Analyze pairs every frontend call in input to its best-matching
// backend endpoint, builds one Contract per matched (method, path)
// pair, and records whatever on either side never found a partner.
func (a *Analyzer) Analyze(input *AnalysisInput) *AnalysisResult {
	result := &AnalysisResult{AnalyzedAt: time.Now()}

	for _, ep := range input.Endpoints {
		a.matcher.AddEndpoint(ep.Method, ep.Path)
	}

	endpointByKey := make(map[string]*EndpointInput, len(input.Endpoints))
	for i := range input.Endpoints {
		ep := &input.Endpoints[i]
		endpointByKey[ep.Method+":"+NormalizePath(ep.Path)] = ep
	}

	matchedEndpoints := make(map[string]bool)
	contractByKey := make(map[string]*Contract)

	for _, call := range input.Calls {
		match := a.matcher.Match(call.Method, call.URL)
		if match == nil {
			result.UnmatchedFrontend = append(result.UnmatchedFrontend, UnmatchedCall{
				Method: call.Method, URL: call.URL, File: call.File, Line: call.Line,
			})
			continue
		}

		key := match.Method + ":" + match.BackendEndpoint
		matchedEndpoints[key] = true

		contract, ok := contractByKey[key]
		if !ok {
			ep, ok := endpointByKey[key]
			if !ok {
				continue
			}
			contract = &Contract{
				ID:              GenerateID("ct"),
				Method:          ep.Method,
				Endpoint:        ep.Path,
				EndpointPattern: PathToPattern(ep.Path),
				Backend: BackendEndpoint{
					File: ep.File, Line: ep.Line, Framework: ep.Framework, Handler: ep.Handler,
					RequestSchema: ep.RequestSchema, ResponseSchema: ep.ResponseSchema,
				},
				Status:    ContractDiscovered,
				FirstSeen: time.Now(),
				LastSeen:  time.Now(),
			}
			contractByKey[key] = contract
		}

		callType := call.CallType
		if callType == "" {
			callType = "fetch"
		}
		contract.FrontendCalls = append(contract.FrontendCalls, FrontendCall{
			ID:             GenerateID("fc"),
			ContractID:     contract.ID,
			File:           call.File,
			Line:           call.Line,
			CallType:       callType,
			ExpectedSchema: call.ExpectedSchema,
			CreatedAt:      time.Now(),
		})
		contract.LastSeen = time.Now()
	}

	for _, ep := range input.Endpoints {
		key := ep.Method + ":" + NormalizePath(ep.Path)
		if !matchedEndpoints[key] {
			result.UnmatchedBackend = append(result.UnmatchedBackend, UnmatchedEndpoint{
				Method: ep.Method, Path: ep.Path, File: ep.File, Line: ep.Line, Handler: ep.Handler,
			})
		}
	}

	for _, contract := range contractByKey {
		contract.UpdateMismatches()
		result.TotalMismatches += len(contract.Mismatches)
		contract.Confidence = contractConfidence(contract)
		result.Contracts = append(result.Contracts, contract)
	}

	return result
}

// contractConfidence scores how much a discovered contract should be
// trusted: more consuming call sites and the presence of explicit
// schemas on both sides raise it, capped at 1.0.
func contractConfidence(c *Contract) float64 {
	confidence := 0.5

	switch {
	case len(c.FrontendCalls) >= 5:
		confidence += 0.3
	case len(c.FrontendCalls) >= 2:
		confidence += 0.2
	case len(c.FrontendCalls) >= 1:
		confidence += 0.1
	}

	if c.Backend.ResponseSchema != nil {
		confidence += 0.1
	}
	if c.Backend.RequestSchema != nil {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// DetectMismatches compares a backend and frontend schema directly,
// outside of a full Analyze pass.
func DetectMismatches(backendSchema, frontendSchema *TypeSchema, fieldPath string) []FieldMismatch {
	if backendSchema == nil || frontendSchema == nil {
		return nil
	}
	return backendSchema.Compare(frontendSchema, fieldPath)
}

// SummarizeMismatches renders a human-readable line per mismatch.
func SummarizeMismatches(mismatches []FieldMismatch) []string {
	summaries := make([]string, 0, len(mismatches))
	for _, m := range mismatches {
		var summary string
		switch m.Type {
		case MismatchMissingInFrontend:
			summary = fmt.Sprintf("field %q present in backend (%s) but not consumed by frontend", m.FieldPath, m.BackendType)
		case MismatchMissingInBackend:
			summary = fmt.Sprintf("frontend expects field %q (%s) that backend never sends", m.FieldPath, m.FrontendType)
		case MismatchTypeMismatch:
			summary = fmt.Sprintf("type mismatch at %q: backend sends %s, frontend expects %s", m.FieldPath, m.BackendType, m.FrontendType)
		case MismatchOptionalityMismatch:
			summary = fmt.Sprintf("optionality mismatch at %q: %s", m.FieldPath, m.Description)
		case MismatchNullabilityMismatch:
			summary = fmt.Sprintf("nullability mismatch at %q: %s", m.FieldPath, m.Description)
		default:
			summary = m.Description
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
