package engine

import (
	"regexp"
	"strings"
	"sync"
)

// patternCache caches compiled patterns by source string. Matching is
// referentially transparent for identical inputs, so the cache never needs
// invalidation.
var patternCache sync.Map // map[string]*regexp.Regexp

// Matches evaluates a glob-style pattern against a candidate identifier
// (dataset name, tag, document path).
//
// Patterns use '*' as a multi-character wildcard; there is no '?' and no
// character classes. Matching is case-insensitive and anchored to the whole
// candidate. An empty pattern never matches.
func Matches(pattern, candidate string) bool {
	if pattern == "" {
		return false
	}

	re := compilePattern(pattern)
	return re.MatchString(candidate)
}

// compilePattern compiles a glob pattern to an anchored case-insensitive
// regular expression, caching the result by source string.
func compilePattern(pattern string) *regexp.Regexp {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}

	// Escape every literal segment and translate '*' to '.*'.
	segments := strings.Split(pattern, "*")
	for i, segment := range segments {
		segments[i] = regexp.QuoteMeta(segment)
	}
	expr := "(?i)^" + strings.Join(segments, ".*") + "$"

	// Every non-wildcard character is quoted, so compilation cannot fail.
	re := regexp.MustCompile(expr)

	patternCache.Store(pattern, re)
	return re
}

// matchesAny reports whether any pattern in the list matches any of the
// given candidates.
func matchesAny(patterns []string, candidates ...string) bool {
	for _, pattern := range patterns {
		for _, candidate := range candidates {
			if Matches(pattern, candidate) {
				return true
			}
		}
	}
	return false
}
