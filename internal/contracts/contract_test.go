package contracts

import "testing"

func TestNormalizePath_CanonicalizesParamSpellings(t *testing.T) {
	cases := map[string]string{
		"/users/{id}":        "/users/:id",
		"/users/<id>":        "/users/:id",
		"/users/:id/":        "/users/:id",
		"users/:id":          "/users/:id",
		"/":                  "/",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractPathParams_OrderedByAppearance(t *testing.T) {
	params := ExtractPathParams("/orgs/{orgId}/users/{userId}")
	if len(params) != 2 || params[0] != "orgId" || params[1] != "userId" {
		t.Fatalf("unexpected params: %v", params)
	}
}

func TestPathToPattern_MatchesConcreteURL(t *testing.T) {
	pattern := PathToPattern("/users/:id")
	if !MatchPath("/users/42", pattern) {
		t.Fatal("expected /users/42 to match /users/:id")
	}
	if MatchPath("/users/42/posts", pattern) {
		t.Fatal("expected /users/42/posts to not match /users/:id")
	}
}

func TestTypeSchema_Compare_DetectsMissingRequiredField(t *testing.T) {
	backend := NewObjectSchema()
	backend.AddProperty("id", NewPrimitiveSchema(SchemaString), false)
	backend.AddProperty("email", NewPrimitiveSchema(SchemaString), false)

	frontend := NewObjectSchema()
	frontend.AddProperty("id", NewPrimitiveSchema(SchemaString), false)

	mismatches := backend.Compare(frontend, "")
	found := false
	for _, m := range mismatches {
		if m.Type == MismatchMissingInFrontend && m.FieldPath == "email" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing-in-frontend mismatch for email, got %+v", mismatches)
	}
}

func TestTypeSchema_Compare_DetectsTypeMismatch(t *testing.T) {
	backend := NewObjectSchema()
	backend.AddProperty("age", NewPrimitiveSchema(SchemaString), false)

	frontend := NewObjectSchema()
	frontend.AddProperty("age", NewPrimitiveSchema(SchemaInteger), false)

	mismatches := backend.Compare(frontend, "")
	if len(mismatches) != 1 || mismatches[0].Type != MismatchTypeMismatch {
		t.Fatalf("expected one type mismatch, got %+v", mismatches)
	}
}

func TestTypeSchema_Compare_NumericCrossCompatible(t *testing.T) {
	backend := NewPrimitiveSchema(SchemaNumber)
	frontend := NewPrimitiveSchema(SchemaInteger)
	if mismatches := backend.Compare(frontend, ""); len(mismatches) != 0 {
		t.Fatalf("number/integer should be compatible, got %+v", mismatches)
	}
}

func TestTypeSchema_Compare_AnySkipsRecursion(t *testing.T) {
	backend := NewPrimitiveSchema(SchemaAny)
	frontend := NewObjectSchema()
	frontend.AddProperty("whatever", NewPrimitiveSchema(SchemaString), false)
	if mismatches := backend.Compare(frontend, ""); len(mismatches) != 0 {
		t.Fatalf("SchemaAny should short-circuit, got %+v", mismatches)
	}
}

func TestGoTypeToSchema_HandlesPointerSliceAndStdlibTypes(t *testing.T) {
	ptr := GoTypeToSchema("*string")
	if ptr.Type != SchemaString || !ptr.Nullable {
		t.Fatalf("expected nullable string, got %+v", ptr)
	}

	slice := GoTypeToSchema("[]int")
	if slice.Type != SchemaArray || slice.Items.Type != SchemaInteger {
		t.Fatalf("expected []integer, got %+v", slice)
	}

	ts := GoTypeToSchema("time.Time")
	if ts.Type != SchemaString || ts.Format != "date-time" {
		t.Fatalf("expected date-time string, got %+v", ts)
	}
}

func TestTSTypeToSchema_HandlesNullableUnionAndArray(t *testing.T) {
	nullable := TSTypeToSchema("string | null")
	if nullable.Type != SchemaString || !nullable.Nullable {
		t.Fatalf("expected nullable string, got %+v", nullable)
	}

	arr := TSTypeToSchema("number[]")
	if arr.Type != SchemaArray || arr.Items.Type != SchemaNumber {
		t.Fatalf("expected number[], got %+v", arr)
	}
}

func TestContract_UpdateMismatches_TransitionsToMismatchStatus(t *testing.T) {
	backend := NewObjectSchema()
	backend.AddProperty("id", NewPrimitiveSchema(SchemaString), false)

	expected := NewObjectSchema()
	expected.AddProperty("id", NewPrimitiveSchema(SchemaInteger), false)

	c := &Contract{
		Status:  ContractDiscovered,
		Backend: BackendEndpoint{ResponseSchema: backend},
		FrontendCalls: []FrontendCall{
			{ExpectedSchema: expected},
		},
	}
	c.UpdateMismatches()

	if c.Status != ContractMismatch {
		t.Fatalf("expected ContractMismatch, got %s", c.Status)
	}
	if len(c.Mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %d", len(c.Mismatches))
	}
}
