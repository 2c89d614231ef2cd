package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"tessera-hq/meridian/pkg/scope"
)

func testScope(id string, mutate func(*scope.Scope)) *scope.Scope {
	s := &scope.Scope{
		ID:      id,
		Name:    "scope-" + id,
		Active:  true,
		Created: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		Updated: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(s)
	}
	return s.Normalize()
}

func TestResolveEmptyInput(t *testing.T) {
	for _, scopes := range [][]*scope.Scope{nil, {}, {nil}} {
		policy, err := Resolve(scopes)
		if err != nil {
			t.Fatalf("Resolve() error = %v, want nil", err)
		}
		if policy.HasAllowList() || len(policy.ForbiddenTopics) != 0 {
			t.Error("empty input should yield a policy with no topic restrictions")
		}
		if policy.Boundaries.StrictMode {
			t.Error("empty input should not enable strict mode")
		}
		if policy.Boundaries.Preference != scope.ContextSupplement {
			t.Errorf("Preference = %q, want %q", policy.Boundaries.Preference, scope.ContextSupplement)
		}
		if policy.Response.MaxResponseLength != scope.DefaultMaxResponseLength {
			t.Errorf("MaxResponseLength = %d, want %d",
				policy.Response.MaxResponseLength, scope.DefaultMaxResponseLength)
		}
	}
}

func TestResolveSkipsInactiveScopes(t *testing.T) {
	inactive := testScope("a", func(s *scope.Scope) {
		s.Active = false
		s.Guardrails.ForbiddenTopics = []string{"secrets"}
	})

	policy, err := Resolve([]*scope.Scope{inactive})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(policy.ForbiddenTopics) != 0 {
		t.Errorf("inactive scope contributed forbidden topics: %v", policy.ForbiddenTopics)
	}
	if len(policy.ScopeIDs) != 0 {
		t.Errorf("ScopeIDs = %v, want empty", policy.ScopeIDs)
	}
}

func TestResolveTopicUnions(t *testing.T) {
	a := testScope("a", func(s *scope.Scope) {
		s.Guardrails.AllowedTopics = []string{"orders", "shipping"}
		s.Guardrails.ForbiddenTopics = []string{"pricing"}
	})
	b := testScope("b", func(s *scope.Scope) {
		s.Guardrails.AllowedTopics = []string{"returns", "shipping"}
		s.Guardrails.ForbiddenTopics = []string{"legal advice"}
	})

	policy, err := Resolve([]*scope.Scope{a, b})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	wantAllowed := []string{"orders", "returns", "shipping"}
	if !reflect.DeepEqual(policy.AllowedTopics, wantAllowed) {
		t.Errorf("AllowedTopics = %v, want %v", policy.AllowedTopics, wantAllowed)
	}
	wantForbidden := []string{"legal advice", "pricing"}
	if !reflect.DeepEqual(policy.ForbiddenTopics, wantForbidden) {
		t.Errorf("ForbiddenTopics = %v, want %v", policy.ForbiddenTopics, wantForbidden)
	}
}

func TestResolveForbidWins(t *testing.T) {
	a := testScope("a", func(s *scope.Scope) {
		s.Guardrails.AllowedTopics = []string{"billing", "orders"}
	})
	b := testScope("b", func(s *scope.Scope) {
		s.Guardrails.ForbiddenTopics = []string{"Billing"}
	})

	policy, err := Resolve([]*scope.Scope{a, b})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := []string{"orders"}
	if !reflect.DeepEqual(policy.AllowedTopics, want) {
		t.Errorf("AllowedTopics = %v, want %v (forbid must win across scopes, case-insensitively)", policy.AllowedTopics, want)
	}
	if !reflect.DeepEqual(policy.ForbiddenTopics, []string{"Billing"}) {
		t.Errorf("ForbiddenTopics = %v, want [Billing]", policy.ForbiddenTopics)
	}
}

func TestResolveForbidWinsOnSubstringOverlap(t *testing.T) {
	t.Run("forbidden inside allowed", func(t *testing.T) {
		a := testScope("a", func(s *scope.Scope) {
			s.Guardrails.AllowedTopics = []string{"pricing strategy", "orders"}
		})
		b := testScope("b", func(s *scope.Scope) {
			s.Guardrails.ForbiddenTopics = []string{"pricing"}
		})

		policy, err := Resolve([]*scope.Scope{a, b})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		want := []string{"orders"}
		if !reflect.DeepEqual(policy.AllowedTopics, want) {
			t.Errorf("AllowedTopics = %v, want %v (substring overlap must drop the allowed entry)", policy.AllowedTopics, want)
		}
	})

	t.Run("allowed inside forbidden", func(t *testing.T) {
		a := testScope("a", func(s *scope.Scope) {
			s.Guardrails.AllowedTopics = []string{"billing", "shipping"}
		})
		b := testScope("b", func(s *scope.Scope) {
			s.Guardrails.ForbiddenTopics = []string{"billing refund"}
		})

		policy, err := Resolve([]*scope.Scope{a, b})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		want := []string{"shipping"}
		if !reflect.DeepEqual(policy.AllowedTopics, want) {
			t.Errorf("AllowedTopics = %v, want %v (overlap check must run both directions)", policy.AllowedTopics, want)
		}
	})
}

func TestResolveBoundaries(t *testing.T) {
	a := testScope("a", func(s *scope.Scope) {
		s.Guardrails.Boundaries.StrictMode = true
		s.Guardrails.Boundaries.Preference = scope.ContextPrefer
		s.Guardrails.Boundaries.AllowedSources = []string{"kb-main"}
	})
	b := testScope("b", func(s *scope.Scope) {
		s.Guardrails.Boundaries.Preference = scope.ContextExclusive
		s.Guardrails.Boundaries.AllowedSources = []string{"kb-legal", "kb-main"}
	})

	policy, err := Resolve([]*scope.Scope{a, b})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !policy.Boundaries.StrictMode {
		t.Error("StrictMode = false, want true (any strict scope makes the bot strict)")
	}
	if policy.Boundaries.Preference != scope.ContextExclusive {
		t.Errorf("Preference = %q, want %q", policy.Boundaries.Preference, scope.ContextExclusive)
	}
	wantSources := []string{"kb-legal", "kb-main"}
	if !reflect.DeepEqual(policy.Boundaries.AllowedSources, wantSources) {
		t.Errorf("AllowedSources = %v, want %v", policy.Boundaries.AllowedSources, wantSources)
	}
}

func TestResolveResponseGuidelines(t *testing.T) {
	a := testScope("a", func(s *scope.Scope) {
		s.Guardrails.Response.MaxResponseLength = 800
		s.Guardrails.Response.StepByStep = true
	})
	b := testScope("b", func(s *scope.Scope) {
		s.Guardrails.Response.MaxResponseLength = 200
		s.Guardrails.Response.RequireCitations = true
	})
	c := testScope("c", nil) // unspecified length must not drag the minimum to zero

	policy, err := Resolve([]*scope.Scope{a, b, c})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if policy.Response.MaxResponseLength != 200 {
		t.Errorf("MaxResponseLength = %d, want 200 (minimum of specified values)", policy.Response.MaxResponseLength)
	}
	if !policy.Response.RequireCitations || !policy.Response.StepByStep {
		t.Error("boolean guidelines must OR across scopes")
	}
	if policy.Response.MathematicalNotation {
		t.Error("MathematicalNotation = true, want false when no scope sets it")
	}
}

func TestResolveDefaultMaxLengthWhenUnspecified(t *testing.T) {
	policy, err := Resolve([]*scope.Scope{testScope("a", nil)})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if policy.Response.MaxResponseLength != scope.DefaultMaxResponseLength {
		t.Errorf("MaxResponseLength = %d, want %d",
			policy.Response.MaxResponseLength, scope.DefaultMaxResponseLength)
	}
}

func TestResolveRefusalMessageAscendingID(t *testing.T) {
	// Input order is descending id; the message from the lowest id with a
	// non-empty message must still win.
	c := testScope("c", func(s *scope.Scope) { s.Guardrails.RefusalMessage = "from c" })
	b := testScope("b", func(s *scope.Scope) { s.Guardrails.RefusalMessage = "from b" })
	a := testScope("a", nil)

	policy, err := Resolve([]*scope.Scope{c, b, a})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if policy.RefusalMessage != "from b" {
		t.Errorf("RefusalMessage = %q, want %q", policy.RefusalMessage, "from b")
	}
}

func TestResolveFilterMerge(t *testing.T) {
	a := testScope("a", func(s *scope.Scope) {
		s.Filters.Tags = []string{"public"}
		s.Filters.ExcludePatterns = []string{"*internal*"}
		s.Filters.Metadata = map[string]string{"region": "emea"}
	})
	b := testScope("b", func(s *scope.Scope) {
		s.Filters.Tags = []string{"support", "public"}
		s.Filters.Categories = []string{"faq"}
		s.Filters.Metadata = map[string]string{"region": "emea", "tier": "basic"}
	})

	policy, err := Resolve([]*scope.Scope{a, b})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !reflect.DeepEqual(policy.Filters.Tags, []string{"public", "support"}) {
		t.Errorf("Filters.Tags = %v", policy.Filters.Tags)
	}
	if !reflect.DeepEqual(policy.Filters.Categories, []string{"faq"}) {
		t.Errorf("Filters.Categories = %v", policy.Filters.Categories)
	}
	if !reflect.DeepEqual(policy.Filters.ExcludePatterns, []string{"*internal*"}) {
		t.Errorf("Filters.ExcludePatterns = %v", policy.Filters.ExcludePatterns)
	}
	wantMeta := map[string]string{"region": "emea", "tier": "basic"}
	if !reflect.DeepEqual(policy.Filters.Metadata, wantMeta) {
		t.Errorf("Filters.Metadata = %v, want %v", policy.Filters.Metadata, wantMeta)
	}
}

func TestResolveMetadataConflict(t *testing.T) {
	a := testScope("a", func(s *scope.Scope) {
		s.Filters.Metadata = map[string]string{"region": "emea"}
	})
	b := testScope("b", func(s *scope.Scope) {
		s.Filters.Metadata = map[string]string{"region": "apac"}
	})

	_, err := Resolve([]*scope.Scope{a, b})
	if err == nil {
		t.Fatal("Resolve() = nil error, want metadata conflict")
	}

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error type = %T, want *ConflictError", err)
	}
	if conflict.Key != "region" {
		t.Errorf("conflict key = %q, want %q", conflict.Key, "region")
	}
	if conflict.Values["a"] != "emea" || conflict.Values["b"] != "apac" {
		t.Errorf("conflict values = %v", conflict.Values)
	}
	if !IsConflict(err) {
		t.Error("IsConflict() = false, want true")
	}
}

func TestResolveCommutative(t *testing.T) {
	a := testScope("a", func(s *scope.Scope) {
		s.Guardrails.AllowedTopics = []string{"orders"}
		s.Guardrails.Boundaries.Preference = scope.ContextExclusive
		s.Guardrails.RefusalMessage = "refused"
		s.Filters.Tags = []string{"public"}
	})
	b := testScope("b", func(s *scope.Scope) {
		s.Guardrails.ForbiddenTopics = []string{"pricing"}
		s.Guardrails.Response.MaxResponseLength = 120
		s.Filters.ExcludePatterns = []string{"*draft*"}
	})
	c := testScope("c", func(s *scope.Scope) {
		s.Guardrails.Boundaries.StrictMode = true
		s.Filters.Categories = []string{"faq"}
	})

	first, err := Resolve([]*scope.Scope{a, b, c})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := Resolve([]*scope.Scope{c, a, b})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolution is order-dependent:\n first = %+v\nsecond = %+v", first, second)
	}
}

func TestResolveIdempotent(t *testing.T) {
	scopes := []*scope.Scope{
		testScope("a", func(s *scope.Scope) {
			s.Guardrails.AllowedTopics = []string{"orders"}
		}),
	}

	first, err := Resolve(scopes)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := Resolve(scopes)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two resolutions of the same scope set differ")
	}
}

func TestFingerprint(t *testing.T) {
	a := testScope("a", nil)
	b := testScope("b", nil)

	if got, want := Fingerprint([]*scope.Scope{a, b}), Fingerprint([]*scope.Scope{b, a}); got != want {
		t.Errorf("fingerprint is order-dependent: %q vs %q", got, want)
	}

	touched := a.Clone()
	touched.Updated = touched.Updated.Add(time.Second)
	if Fingerprint([]*scope.Scope{a, b}) == Fingerprint([]*scope.Scope{touched, b}) {
		t.Error("fingerprint unchanged after a scope update")
	}

	if Fingerprint(nil) != Fingerprint([]*scope.Scope{}) {
		t.Error("nil and empty scope sets should share a fingerprint")
	}

	dormant := testScope("c", func(s *scope.Scope) { s.Active = false })
	if Fingerprint([]*scope.Scope{a, b, dormant}) != Fingerprint([]*scope.Scope{a, b}) {
		t.Error("inactive scopes must not contribute to the fingerprint")
	}
}
