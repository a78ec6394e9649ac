package util

import (
	"strings"
)

// ListContainsElement returns true if the given list contains the given element.
func ListContainsElement[S ~[]E, E comparable](list S, element E) bool {
	for _, item := range list {
		if item == element {
			return true
		}
	}

	return false
}

// RemoveElementFromList returns a copy of the given list with all instances of the given element removed.
func RemoveElementFromList[S ~[]E, E comparable](list S, element E) S {
	out := make(S, 0, len(list))

	for _, item := range list {
		if item != element {
			out = append(out, item)
		}
	}

	return out
}

// RemoveSublistFromList returns a copy of the given list with all instances of the given sublist's
// elements removed.
func RemoveSublistFromList[S ~[]E, E comparable](list, sublist S) S {
	out := list
	for _, element := range sublist {
		out = RemoveElementFromList(out, element)
	}

	return out
}

// RemoveDuplicatesFromList returns a copy of the given list with all duplicates removed (keeping the
// first encountered).
func RemoveDuplicatesFromList[S ~[]E, E comparable](list S) S {
	out := make(S, 0, len(list))
	present := make(map[E]bool)

	for _, value := range list {
		if present[value] {
			continue
		}

		out = append(out, value)
		present[value] = true
	}

	return out
}

// CleanPatternList strips all whitespace from each pattern in the given list, drops patterns that end
// up empty, and removes duplicates. User-supplied pattern lists pass through here before any matching.
func CleanPatternList(patterns []string) []string {
	cleaned := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		pattern = strings.Join(strings.Fields(pattern), "")
		if pattern == "" {
			continue
		}

		cleaned = append(cleaned, pattern)
	}

	return RemoveDuplicatesFromList(cleaned)
}

// SplitPatternList splits a comma separated pattern argument into a cleaned pattern list.
func SplitPatternList(arg string) []string {
	return CleanPatternList(strings.Split(arg, ","))
}
