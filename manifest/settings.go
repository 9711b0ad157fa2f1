package manifest

// Mode selects how file content equality is determined when building or
// comparing a manifest.
type Mode uint8

const (
	// Hash mode computes a real SHA-256 digest of file content.
	Hash Mode = iota
	// TimestampTest mode skips hashing entirely; file equality collapses to
	// size and modification time, and FileEntry.Hash is always the all-zero
	// value.
	TimestampTest
)

// String renders the mode for logging and flag parsing.
func (m Mode) String() string {
	switch m {
	case Hash:
		return "hash"
	case TimestampTest:
		return "timestamp"
	default:
		return "unknown"
	}
}

// ParseMode converts a user-facing mode name (as accepted by --hash-mode) to
// a Mode value.
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "hash":
		return Hash, true
	case "timestamp":
		return TimestampTest, true
	default:
		return Hash, false
	}
}

// Settings carries the decision inputs for building and revalidating a
// manifest: whether to force a full rebuild, which equality mode to use, and
// which glob patterns exclude entries from the scan.
type Settings struct {
	// ForceRebuild, if true, skips any attempt to load and revalidate a
	// persisted manifest and always performs a fresh scan.
	ForceRebuild bool
	// Mode selects the equality semantics used when building the manifest.
	Mode Mode
	// ExcludePatterns is the list of glob patterns (matched with
	// github.com/bmatcuk/doublestar/v4 against the root-relative,
	// slash-separated path as traversed) identifying entries to omit from
	// the scan.
	ExcludePatterns []string
}

// WithExclusion returns a copy of the settings with an additional exclusion
// pattern appended. It is used to auto-exclude the manifest file itself
// during a persistent build, without mutating the caller's settings.
func (s Settings) WithExclusion(pattern string) Settings {
	patterns := make([]string, len(s.ExcludePatterns), len(s.ExcludePatterns)+1)
	copy(patterns, s.ExcludePatterns)
	patterns = append(patterns, pattern)
	return Settings{
		ForceRebuild:    s.ForceRebuild,
		Mode:            s.Mode,
		ExcludePatterns: patterns,
	}
}
