package util_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/gitcluster/gitcluster/util"
)

func testLogger() *logrus.Entry {
	return util.CreateLogEntry(io.Discard, logrus.ErrorLevel, "")
}

func TestMatchNames(t *testing.T) {
	t.Parallel()

	candidates := []string{"sh", "bash", "yash", "zsh", "vim"}

	testCases := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{"suffix glob", []string{"*sh"}, []string{"sh", "bash", "yash", "zsh"}},
		{"exact name", []string{"vim"}, []string{"vim"}},
		{"no match", []string{"emacs"}, []string{}},
		{"empty patterns", []string{}, []string{}},
		{"overlapping patterns dedupe", []string{"*sh", "bash", "?ash"}, []string{"sh", "bash", "yash", "zsh"}},
		{"match everything", []string{"*"}, []string{"sh", "bash", "yash", "zsh", "vim"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			matches := util.MatchNames(testLogger(), tc.patterns, candidates)
			assert.Equal(t, tc.expected, matches)
		})
	}
}

func TestMatchNamesSkipsInvalidPatterns(t *testing.T) {
	t.Parallel()

	candidates := []string{"sh", "bash"}
	matches := util.MatchNames(testLogger(), []string{"[", "*sh"}, candidates)

	assert.Equal(t, []string{"sh", "bash"}, matches)
}

func TestMatchNamesReturnsSubsetOfCandidates(t *testing.T) {
	t.Parallel()

	candidates := []string{"alpha", "beta", "gamma"}
	matches := util.MatchNames(testLogger(), []string{"*a*", "beta", "delta"}, candidates)

	for _, match := range matches {
		assert.True(t, util.ListContainsElement(candidates, match))
	}

	assert.Equal(t, util.RemoveDuplicatesFromList(matches), matches)
}

func TestCleanPatternList(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		patterns []string
		expected []string
	}{
		{[]string{" sh ", "b ash", "sh"}, []string{"sh", "bash"}},
		{[]string{"", "  ", "vim"}, []string{"vim"}},
		{nil, []string{}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, util.CleanPatternList(tc.patterns))
	}
}

func TestSplitPatternList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"sh", "bash", "vim"}, util.SplitPatternList("sh, bash,,vim ,sh"))
}
