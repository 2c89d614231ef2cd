package engine

import (
	"testing"

	"tessera-hq/meridian/pkg/scope"
)

func TestAdmit(t *testing.T) {
	doc := &scope.Document{
		ID:       "doc-1",
		Path:     "finance/q3-report.md",
		Category: "finance",
		Tags:     []string{"public", "quarterly"},
		Metadata: map[string]string{"department": "finance", "region": "emea"},
	}

	tests := []struct {
		name    string
		filters scope.DatasetFilters
		want    bool
	}{
		{"empty filters admit everything", scope.DatasetFilters{}, true},
		{
			"exclude on path rejects",
			scope.DatasetFilters{ExcludePatterns: []string{"finance/*"}},
			false,
		},
		{
			"exclude on tag rejects",
			scope.DatasetFilters{ExcludePatterns: []string{"quarterly"}},
			false,
		},
		{
			"exclude wins over include",
			scope.DatasetFilters{
				IncludePatterns: []string{"finance/*"},
				ExcludePatterns: []string{"*q3*"},
			},
			false,
		},
		{
			"tag intersection admits",
			scope.DatasetFilters{Tags: []string{"quarterly", "annual"}},
			true,
		},
		{
			"disjoint tags reject",
			scope.DatasetFilters{Tags: []string{"annual"}},
			false,
		},
		{
			"matching category admits",
			scope.DatasetFilters{Categories: []string{"finance", "legal"}},
			true,
		},
		{
			"missing category rejects",
			scope.DatasetFilters{Categories: []string{"legal"}},
			false,
		},
		{
			"matching metadata admits",
			scope.DatasetFilters{Metadata: map[string]string{"region": "emea"}},
			true,
		},
		{
			"wrong metadata value rejects",
			scope.DatasetFilters{Metadata: map[string]string{"region": "apac"}},
			false,
		},
		{
			"absent metadata key rejects",
			scope.DatasetFilters{Metadata: map[string]string{"classification": "public"}},
			false,
		},
		{
			"include on path admits",
			scope.DatasetFilters{IncludePatterns: []string{"finance/*"}},
			true,
		},
		{
			"include on tag admits",
			scope.DatasetFilters{IncludePatterns: []string{"public"}},
			true,
		},
		{
			"include with no match rejects",
			scope.DatasetFilters{IncludePatterns: []string{"legal/*"}},
			false,
		},
		{
			"all rule kinds together",
			scope.DatasetFilters{
				Tags:            []string{"public"},
				Categories:      []string{"finance"},
				IncludePatterns: []string{"finance/*"},
				ExcludePatterns: []string{"*draft*"},
				Metadata:        map[string]string{"department": "finance"},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Admit(&tt.filters, doc); got != tt.want {
				t.Errorf("Admit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdmitNilInputs(t *testing.T) {
	doc := &scope.Document{ID: "doc-1", Path: "a.md"}

	if !Admit(nil, doc) {
		t.Error("Admit(nil filters) = false, want true")
	}
	if Admit(&scope.DatasetFilters{}, nil) {
		t.Error("Admit(nil document) = true, want false")
	}
}
