// Package manifest implements the Manifest Engine: building, persisting,
// loading, and revalidating recursively hashed directory tree snapshots.
//
// Grounded on the teacher's pkg/sync/scan.go recursive scanner shape (stat
// first, open-and-hash only when necessary, explicit directory-boundary
// handling) and on the teacher's top-level encoding package's
// load/save-atomic conventions, simplified to the spec's narrower data
// model: no executability bits, no Unicode recomposition, no cross-run
// digest cache. A persistent manifest is either revalidated by stat alone or
// rebuilt from scratch; content is never rehashed during revalidation.
package manifest

// Manifest is a rooted DirectoryEntry plus the implicit root path supplied at
// construction. RootPath is never persisted; it is attached by whichever
// constructor produced (or loaded) the manifest.
type Manifest struct {
	// Root is the hash tree for the synchronization root.
	Root *DirectoryEntry
	// RootPath is the filesystem path the manifest was built from or is
	// meant to be revalidated against. It is not part of the wire/disk
	// encoding.
	RootPath string
}
