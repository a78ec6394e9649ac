package util

import (
	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
)

// MatchNames expands the given glob patterns against the given candidate names and returns the
// deduplicated union of all matches, preserving the order in which candidates first matched.
//
// Malformed patterns and patterns that match no candidate are not errors: each is logged and
// skipped, so one bad pattern never aborts a batch. The result is always a subset of candidates.
func MatchNames(logger *logrus.Entry, patterns []string, candidates []string) []string {
	matches := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, pattern := range CleanPatternList(patterns) {
		matcher, err := glob.Compile(pattern)
		if err != nil {
			logger.Warnf("Skipping invalid pattern %q: %v", pattern, err)
			continue
		}

		matched := false

		for _, candidate := range candidates {
			if !matcher.Match(candidate) {
				continue
			}

			matched = true

			if !seen[candidate] {
				seen[candidate] = true

				matches = append(matches, candidate)
			}
		}

		if !matched {
			logger.Warnf("Pattern %q did not match anything", pattern)
		}
	}

	return matches
}
