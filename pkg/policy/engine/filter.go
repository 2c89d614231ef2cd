package engine

import (
	"tessera-hq/meridian/pkg/scope"
)

// Admit evaluates one DatasetFilters rule set against a candidate document
// descriptor. The first decisive rule wins, evaluated in this order:
//
//  1. any exclude pattern matching the path or a tag rejects
//  2. a non-empty tag set with no intersection rejects
//  3. a non-empty category set not containing the document's category rejects
//  4. any metadata key/value pair not matched exactly rejects
//  5. non-empty include patterns with no match on path or tags reject
//  6. otherwise the document is admitted
//
// Exclusion is checked first because it is a safety control: a broader
// include pattern must never override it.
func Admit(filters *scope.DatasetFilters, doc *scope.Document) bool {
	if filters == nil || doc == nil {
		return doc != nil
	}

	candidates := append([]string{doc.Path}, doc.Tags...)

	if matchesAny(filters.ExcludePatterns, candidates...) {
		return false
	}

	if len(filters.Tags) > 0 && !intersects(filters.Tags, doc.Tags) {
		return false
	}

	if len(filters.Categories) > 0 && !contains(filters.Categories, doc.Category) {
		return false
	}

	for key, want := range filters.Metadata {
		if got, ok := doc.Metadata[key]; !ok || got != want {
			return false
		}
	}

	if len(filters.IncludePatterns) > 0 && !matchesAny(filters.IncludePatterns, candidates...) {
		return false
	}

	return true
}

// intersects reports whether the two string slices share any element.
func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// contains reports whether the slice contains the element.
func contains(list []string, item string) bool {
	for _, x := range list {
		if x == item {
			return true
		}
	}
	return false
}
