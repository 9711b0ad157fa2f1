// Package cache implements the server-side Hot File Cache: a lazily
// populated, shared, immutable-after-insert map from absolute path to a
// memory-mapped file and its cached metadata.
//
// Grounded on original_source/src/server.rs's CachedFileRegistry
// (mutex-guarded map, Arc-shared entries, independent per-request read
// cursors over the same mapping) and, for the mapping mechanism itself, on
// github.com/edsrzf/mmap-go — the same ecosystem package used for read-only
// file mappings by other large Go codebases in the retrieval pack (e.g.
// kopia, dolt).
package cache

import (
	"io"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Metadata is the cached subset of file attributes a FileAccess caller
// needs: the same fields that flow into a manifest FileEntry or a wire
// FileAttributes.
type Metadata struct {
	Size         int64
	ModifiedTime int64
	ModifiedNsec uint32
}

// entry is a single cache slot: a read-only mapping plus the metadata
// captured at mapping time. Once stored in the cache, both fields are never
// mutated, so concurrent readers never need to coordinate with each other.
type entry struct {
	mapping  mmap.MMap
	metadata Metadata
}

// Registry is the Hot File Cache. The zero value is not usable; use New.
type Registry struct {
	lock    sync.Mutex
	entries map[string]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Metadata returns the cached metadata for absPath, mapping the file on
// first access.
func (r *Registry) Metadata(absPath string) (Metadata, error) {
	e, err := r.lookupOrInsert(absPath)
	if err != nil {
		return Metadata{}, err
	}
	return e.metadata, nil
}

// Open returns a read handle over the cached mapping for absPath, mapping
// the file on first access. The returned reader carries its own cursor and
// does not share position state with any other caller's handle.
func (r *Registry) Open(absPath string) (*Reader, error) {
	e, err := r.lookupOrInsert(absPath)
	if err != nil {
		return nil, err
	}
	return &Reader{entry: e}, nil
}

func (r *Registry) lookupOrInsert(absPath string) (*entry, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if e, ok := r.entries[absPath]; ok {
		return e, nil
	}

	e, err := mapFile(absPath)
	if err != nil {
		return nil, err
	}
	r.entries[absPath] = e
	return e, nil
}

func mapFile(absPath string) (*entry, error) {
	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", absPath)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat %s", absPath)
	}

	meta := Metadata{Size: info.Size(), ModifiedTime: info.ModTime().Unix(), ModifiedNsec: uint32(info.ModTime().Nanosecond())}

	// A zero-length file cannot be mapped; serve it from an empty slice
	// rather than failing the mapping call.
	if info.Size() == 0 {
		return &entry{mapping: mmap.MMap{}, metadata: meta}, nil
	}

	mapping, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to map %s", absPath)
	}

	return &entry{mapping: mapping, metadata: meta}, nil
}

// Reader is an independent read cursor over a cached mapping.
type Reader struct {
	entry  *entry
	offset int
}

// Read implements io.Reader over the cached mapping.
func (r *Reader) Read(buffer []byte) (int, error) {
	remaining := r.entry.mapping[r.offset:]
	if len(remaining) == 0 {
		return 0, io.EOF
	}
	n := copy(buffer, remaining)
	r.offset += n
	return n, nil
}
