package manifest

import (
	"bytes"
	"encoding/binary"

	"github.com/norwae/usync/hasher"
)

// Timestamp is a modification time expressed as seconds and nanoseconds since
// the Unix epoch, matching the wire/disk representation used throughout the
// manifest engine and transport protocol (FileAttributes.secs/nanos in
// original_source/src/file_transfer.rs).
type Timestamp struct {
	Seconds     int64
	Nanoseconds uint32
}

// Equal reports whether two timestamps are identical.
func (t Timestamp) Equal(other Timestamp) bool {
	return t.Seconds == other.Seconds && t.Nanoseconds == other.Nanoseconds
}

// FileEntry is a leaf in the manifest tree.
type FileEntry struct {
	// Name is the final path segment.
	Name string
	// ModificationTime is the file's recorded modification time.
	ModificationTime Timestamp
	// Size is the file's content length in bytes.
	Size uint64
	// Hash is the SHA-256 of the file's content in Hash mode, or the all-zero
	// value in TimestampTest mode.
	Hash [hasher.Size]byte
}

// Equal reports whether two file entries are equal for diff purposes: name,
// modification time, size, and hash must all match.
func (f *FileEntry) Equal(other *FileEntry) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Name == other.Name &&
		f.ModificationTime.Equal(other.ModificationTime) &&
		f.Size == other.Size &&
		f.Hash == other.Hash
}

// DirectoryEntry is an internal node in the manifest tree.
type DirectoryEntry struct {
	// Name is the final path segment (empty for the manifest root).
	Name string
	// ModificationTime is the directory's recorded modification time.
	ModificationTime Timestamp
	// Directories holds child directories, ordered ascending by raw
	// byte-level Name. This is the canonical-sort redesign from spec.md §9:
	// os.ReadDir already returns entries in this order, so the build and
	// persist paths never need an explicit sort step, but revalidation and
	// hash composition both rely on the ordering invariant holding.
	Directories []*DirectoryEntry
	// Files holds child files, ordered ascending by raw byte-level Name.
	Files []*FileEntry
	// Hash is the composite hash of this directory's children, computed by
	// ComposeHash.
	Hash [hasher.Size]byte
}

// Equal reports whether two directory entries are equal for diff purposes:
// modification time and composite hash must both match. Per spec.md §4.3,
// this is a shallow comparison used to decide whether an entire subtree can
// be skipped; it deliberately does not recurse, since the composite hash
// already reflects everything below.
func (d *DirectoryEntry) Equal(other *DirectoryEntry) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ModificationTime.Equal(other.ModificationTime) && d.Hash == other.Hash
}

// ComposeHash computes the directory composite hash per spec.md §3:
//
//	hash_value = SHA256( concat over children in enumeration order of
//	    { child.name bytes ‖ (if file) little-endian u64 file_size ‖ child.hash_value } )
//
// Subdirectories contribute only name and hash; files contribute name, size,
// and hash. Directories and files are merged into a single name-ascending
// enumeration order (both input slices must already be sorted ascending by
// Name, which os.ReadDir guarantees for the build path and which the codec
// preserves for the persisted/loaded path).
func ComposeHash(directories []*DirectoryEntry, files []*FileEntry) [hasher.Size]byte {
	var buffer bytes.Buffer
	var sizeField [8]byte

	di, fi := 0, 0
	for di < len(directories) || fi < len(files) {
		useDirectory := fi >= len(files) || (di < len(directories) && directories[di].Name <= files[fi].Name)
		if useDirectory {
			d := directories[di]
			buffer.WriteString(d.Name)
			buffer.Write(d.Hash[:])
			di++
		} else {
			f := files[fi]
			buffer.WriteString(f.Name)
			binary.LittleEndian.PutUint64(sizeField[:], f.Size)
			buffer.Write(sizeField[:])
			buffer.Write(f.Hash[:])
			fi++
		}
	}

	return hasher.Bytes(buffer.Bytes())
}
