package contracts

import "testing"

func TestAnalyzer_MatchesCallToEndpointAndBuildsContract(t *testing.T) {
	a := NewAnalyzer()
	result := a.Analyze(&AnalysisInput{
		Endpoints: []EndpointInput{
			{Method: "GET", Path: "/users/:id", File: "handlers.go", Line: 10, Handler: "GetUser", Framework: "gin"},
		},
		Calls: []CallInput{
			{Method: "GET", URL: "/users/42", File: "api.ts", Line: 5, CallType: "fetch"},
		},
	})

	if len(result.Contracts) != 1 {
		t.Fatalf("expected 1 contract, got %d", len(result.Contracts))
	}
	c := result.Contracts[0]
	if c.FrontendCallCount() != 1 {
		t.Fatalf("expected 1 frontend call, got %d", c.FrontendCallCount())
	}
	if len(result.UnmatchedBackend) != 0 || len(result.UnmatchedFrontend) != 0 {
		t.Fatalf("expected no unmatched, got backend=%v frontend=%v", result.UnmatchedBackend, result.UnmatchedFrontend)
	}
}

func TestAnalyzer_RecordsUnmatchedBackendAndFrontend(t *testing.T) {
	a := NewAnalyzer()
	result := a.Analyze(&AnalysisInput{
		Endpoints: []EndpointInput{
			{Method: "GET", Path: "/orders", File: "handlers.go", Line: 20},
		},
		Calls: []CallInput{
			{Method: "POST", URL: "/nonexistent", File: "api.ts", Line: 8},
		},
	})

	if len(result.UnmatchedBackend) != 1 {
		t.Fatalf("expected 1 unmatched backend endpoint, got %d", len(result.UnmatchedBackend))
	}
	if len(result.UnmatchedFrontend) != 1 {
		t.Fatalf("expected 1 unmatched frontend call, got %d", len(result.UnmatchedFrontend))
	}
	if len(result.Contracts) != 0 {
		t.Fatalf("expected 0 contracts, got %d", len(result.Contracts))
	}
}

func TestAnalyzer_DetectsMismatchAndIncrementsTotal(t *testing.T) {
	backend := NewObjectSchema()
	backend.AddProperty("id", NewPrimitiveSchema(SchemaInteger), false)

	expected := NewObjectSchema()
	expected.AddProperty("id", NewPrimitiveSchema(SchemaString), false)

	a := NewAnalyzer()
	result := a.Analyze(&AnalysisInput{
		Endpoints: []EndpointInput{
			{Method: "GET", Path: "/users", File: "h.go", Line: 1, ResponseSchema: backend},
		},
		Calls: []CallInput{
			{Method: "GET", URL: "/users", File: "a.ts", Line: 1, ExpectedSchema: expected},
		},
	})

	if result.TotalMismatches != 1 {
		t.Fatalf("expected 1 total mismatch, got %d", result.TotalMismatches)
	}
	if result.Contracts[0].Status != ContractMismatch {
		t.Fatalf("expected contract status mismatch, got %s", result.Contracts[0].Status)
	}
}

func TestAnalyzer_ConfidenceRisesWithCallCountAndSchemas(t *testing.T) {
	a := NewAnalyzer()
	calls := make([]CallInput, 6)
	for i := range calls {
		calls[i] = CallInput{Method: "GET", URL: "/users", File: "a.ts", Line: i + 1}
	}

	result := a.Analyze(&AnalysisInput{
		Endpoints: []EndpointInput{
			{Method: "GET", Path: "/users", File: "h.go", Line: 1,
				RequestSchema: NewObjectSchema(), ResponseSchema: NewObjectSchema()},
		},
		Calls: calls,
	})

	if result.Contracts[0].Confidence != 1.0 {
		t.Fatalf("expected confidence capped at 1.0, got %v", result.Contracts[0].Confidence)
	}
}

func TestClassifyBreakingChanges_DetectsRemovedEndpointAndFieldTypeChange(t *testing.T) {
	oldSchema := NewObjectSchema()
	oldSchema.AddProperty("name", NewPrimitiveSchema(SchemaString), false)

	newSchema := NewObjectSchema()
	newSchema.AddProperty("name", NewPrimitiveSchema(SchemaInteger), false)

	previous := []*Contract{
		{Method: "GET", Endpoint: "/users", Backend: BackendEndpoint{ResponseSchema: oldSchema}},
		{Method: "GET", Endpoint: "/legacy", Backend: BackendEndpoint{}},
	}
	current := []*Contract{
		{Method: "GET", Endpoint: "/users", Backend: BackendEndpoint{ResponseSchema: newSchema}},
	}

	changes := ClassifyBreakingChanges(previous, current)

	var sawRemoved, sawTypeChanged bool
	for _, c := range changes {
		if c.ChangeType == ChangeEndpointRemoved && c.Endpoint == "/legacy" {
			sawRemoved = true
		}
		if c.ChangeType == ChangeTypeChanged && c.Field == "name" {
			sawTypeChanged = true
		}
	}
	if !sawRemoved {
		t.Error("expected endpoint_removed change for /legacy")
	}
	if !sawTypeChanged {
		t.Error("expected type_changed change for name field")
	}
}
