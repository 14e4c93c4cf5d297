package contracts

import "testing"

func TestMatcher_MatchesExactPathWithFullConfidence(t *testing.T) {
	m := NewMatcher()
	m.AddEndpoint("GET", "/users")

	match := m.Match("GET", "/users")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0 for exact match, got %v", match.Confidence)
	}
}

func TestMatcher_MatchesParameterizedPath(t *testing.T) {
	m := NewMatcher()
	m.AddEndpoint("GET", "/users/:id")

	match := m.Match("GET", "/users/42")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.PathParams["id"] != "42" {
		t.Fatalf("expected id=42, got %v", match.PathParams)
	}
}

func TestMatcher_AnyMethodMatchesEverything(t *testing.T) {
	m := NewMatcher()
	m.AddEndpoint("ANY", "/health")

	if m.Match("POST", "/health") == nil {
		t.Fatal("expected ANY endpoint to match POST")
	}
}

func TestMatcher_NoMatchForDifferentSegmentCount(t *testing.T) {
	m := NewMatcher()
	m.AddEndpoint("GET", "/users/:id")

	if m.Match("GET", "/users/42/posts") != nil {
		t.Fatal("expected no match for extra path segment")
	}
}

func TestMatcher_FindUnmatchedEndpointsAndCalls(t *testing.T) {
	m := NewMatcher()
	m.AddEndpoint("GET", "/users")
	m.AddEndpoint("GET", "/orders")

	calls := []CallSite{{Method: "GET", URL: "/users"}, {Method: "GET", URL: "/missing"}}

	unmatchedEndpoints := m.FindUnmatchedEndpoints(calls)
	if len(unmatchedEndpoints) != 1 || unmatchedEndpoints[0].Path != "/orders" {
		t.Fatalf("expected /orders unmatched, got %+v", unmatchedEndpoints)
	}

	unmatchedCalls := m.FindUnmatchedCalls(calls)
	if len(unmatchedCalls) != 1 || unmatchedCalls[0].URL != "/missing" {
		t.Fatalf("expected /missing unmatched, got %+v", unmatchedCalls)
	}
}
