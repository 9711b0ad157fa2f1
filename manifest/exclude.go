package manifest

import (
	"github.com/bmatcuk/doublestar/v4"
)

// isExcluded reports whether relativePath (slash-separated, root-relative, no
// leading slash) matches any of the supplied glob patterns. Matching is
// grounded on the teacher's pkg/synchronization/core/ignore.go use of
// doublestar.Match, but simplified to the spec's flat model: there is no
// negation syntax, and any single matching pattern excludes the entry.
func isExcluded(relativePath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
	}
	return false
}
