package ingest

import (
	"strings"
	"unicode/utf8"
)

const minTitleLength = 10

var artifactTitles = map[string]bool{
	"search for jobs":   true,
	"see all jobs":      true,
	"view all":          true,
	"search other jobs": true,
	"jobs":              true,
}

var artifactPrefixes = []string{"jobs similar to", "jobs in ", "manage job"}

var artifactFragments = []string{"unsubscribe", "privacy"}

// IsNavigationArtifact reports link text from alert emails and listing pages
// that names a search or settings page rather than a posting.
func IsNavigationArtifact(title string) bool {
	trimmed := strings.TrimSpace(title)
	if utf8.RuneCountInString(trimmed) < minTitleLength {
		return true
	}

	lower := strings.ToLower(trimmed)
	if artifactTitles[lower] {
		return true
	}
	for _, p := range artifactPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	for _, f := range artifactFragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	// "Engineering Manager jobs" links to a search, not a posting.
	return strings.HasSuffix(lower, " jobs")
}
