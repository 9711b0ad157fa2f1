package manifest

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/norwae/usync/codec"
	"github.com/norwae/usync/logging"
)

// manifestFileMode is the permission mode used for the persisted manifest
// file, matching the teacher's filesystem.WriteFileAtomic convention of
// owner-read-write, group/other-read.
const manifestFileMode = 0644

// encode writes t in its wire representation.
func (t Timestamp) encode(e *codec.Encoder) error {
	if err := e.WriteInt64(t.Seconds); err != nil {
		return err
	}
	return e.WriteUint32(t.Nanoseconds)
}

func decodeTimestamp(d *codec.Decoder) (Timestamp, error) {
	seconds, err := d.ReadInt64()
	if err != nil {
		return Timestamp{}, err
	}
	nanoseconds, err := d.ReadUint32()
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{Seconds: seconds, Nanoseconds: nanoseconds}, nil
}

func (f *FileEntry) encode(e *codec.Encoder) error {
	if err := e.WriteString(f.Name); err != nil {
		return err
	}
	if err := f.ModificationTime.encode(e); err != nil {
		return err
	}
	if err := e.WriteUint64(f.Size); err != nil {
		return err
	}
	return e.WriteFixed(f.Hash[:])
}

func decodeFileEntry(d *codec.Decoder) (*FileEntry, error) {
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	modTime, err := decodeTimestamp(d)
	if err != nil {
		return nil, err
	}
	size, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}
	entry := &FileEntry{Name: name, ModificationTime: modTime, Size: size}
	if err := d.ReadFixed(entry.Hash[:]); err != nil {
		return nil, err
	}
	return entry, nil
}

func (d *DirectoryEntry) encode(e *codec.Encoder) error {
	if err := e.WriteString(d.Name); err != nil {
		return err
	}
	if err := d.ModificationTime.encode(e); err != nil {
		return err
	}
	if err := e.WriteFixed(d.Hash[:]); err != nil {
		return err
	}
	if err := e.WriteUint64(uint64(len(d.Directories))); err != nil {
		return err
	}
	for _, child := range d.Directories {
		if err := child.encode(e); err != nil {
			return err
		}
	}
	if err := e.WriteUint64(uint64(len(d.Files))); err != nil {
		return err
	}
	for _, child := range d.Files {
		if err := child.encode(e); err != nil {
			return err
		}
	}
	return nil
}

func decodeDirectoryEntry(d *codec.Decoder) (*DirectoryEntry, error) {
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	modTime, err := decodeTimestamp(d)
	if err != nil {
		return nil, err
	}
	entry := &DirectoryEntry{Name: name, ModificationTime: modTime}
	if err := d.ReadFixed(entry.Hash[:]); err != nil {
		return nil, err
	}

	directoryCount, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}
	if directoryCount > codec.MaxObjectSize {
		return nil, codec.ErrTooLarge
	}
	entry.Directories = make([]*DirectoryEntry, directoryCount)
	for i := range entry.Directories {
		child, err := decodeDirectoryEntry(d)
		if err != nil {
			return nil, err
		}
		entry.Directories[i] = child
	}

	fileCount, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}
	if fileCount > codec.MaxObjectSize {
		return nil, codec.ErrTooLarge
	}
	entry.Files = make([]*FileEntry, fileCount)
	for i := range entry.Files {
		child, err := decodeFileEntry(d)
		if err != nil {
			return nil, err
		}
		entry.Files[i] = child
	}

	return entry, nil
}

// manifestFormatVersion is written as the first byte of a persisted
// manifest, so that a future format change can be detected and rejected
// rather than silently misparsed.
const manifestFormatVersion uint8 = 1

// encodeManifest serializes a manifest's tree (not its RootPath, which is
// never persisted) to its wire representation.
func encodeManifest(m *Manifest) ([]byte, error) {
	var buffer bytes.Buffer
	e := codec.NewEncoder(&buffer)
	if err := e.WriteUint8(manifestFormatVersion); err != nil {
		return nil, err
	}
	if err := m.Root.encode(e); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// decodeManifest parses a manifest tree previously produced by
// encodeManifest. rootPath is attached to the result since it is not part of
// the encoding.
func decodeManifest(data []byte, rootPath string) (*Manifest, error) {
	d := codec.NewDecoder(bytes.NewReader(data))
	version, err := d.ReadUint8()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read manifest format version")
	}
	if version != manifestFormatVersion {
		return nil, errors.Errorf("unsupported manifest format version %d", version)
	}
	root, err := decodeDirectoryEntry(d)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode manifest tree")
	}
	return &Manifest{Root: root, RootPath: rootPath}, nil
}

// EncodeWire serializes m to the same wire format used for on-disk
// persistence, for transport.Session's SendManifest response.
func EncodeWire(m *Manifest) ([]byte, error) {
	return encodeManifest(m)
}

// DecodeWire parses a manifest previously produced by EncodeWire, attaching
// rootPath to the result (the target side's own root, not the sender's).
func DecodeWire(data []byte, rootPath string) (*Manifest, error) {
	return decodeManifest(data, rootPath)
}

// ManifestFileName is the default name the persistent manifest file is
// stored under, within the synchronization root itself; overridable via the
// CLI's --manifest-file flag, in which case callers pass the chosen name
// through to SaveAtomic, Load, and BuildPersistent explicitly.
const ManifestFileName = ".usync.manifest"

// SaveAtomic persists m to <root>/<manifestFileName> using a temporary file
// plus rename, matching the teacher's filesystem.WriteFileAtomic and fixing
// the non-atomic write flagged in spec.md §9: a reader can never observe a
// partially written manifest.
func SaveAtomic(m *Manifest, manifestFileName string) error {
	data, err := encodeManifest(m)
	if err != nil {
		return errors.Wrap(err, "unable to encode manifest")
	}

	path := filepath.Join(m.RootPath, manifestFileName)
	dirname, basename := filepath.Split(path)
	temporary, err := ioutil.TempFile(dirname, basename)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary manifest file")
	}

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporary.Name())
		return errors.Wrap(err, "unable to write temporary manifest file")
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporary.Name())
		return errors.Wrap(err, "unable to close temporary manifest file")
	}
	if err := os.Chmod(temporary.Name(), manifestFileMode); err != nil {
		os.Remove(temporary.Name())
		return errors.Wrap(err, "unable to set manifest file permissions")
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		os.Remove(temporary.Name())
		return errors.Wrap(err, "unable to rename manifest into place")
	}

	return nil
}

// Load reads and decodes the persistent manifest stored at
// <root>/<manifestFileName>. It returns an error if the file does not exist
// or cannot be parsed; callers should treat either as "no usable manifest"
// and fall back to BuildPersistent.
func Load(root, manifestFileName string) (*Manifest, error) {
	path := filepath.Join(root, manifestFileName)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read manifest file")
	}
	return decodeManifest(data, root)
}

// BuildPersistent implements the five-step manifest acquisition algorithm of
// spec.md §4.2:
//
//  1. Unless settings.ForceRebuild, attempt to load a persisted manifest.
//  2. If loaded, attempt to revalidate it by stat alone.
//  3. If revalidation succeeds, return the loaded manifest unchanged.
//  4. Otherwise, perform a fresh BuildEphemeral scan of the root, excluding
//     the manifest file itself so it never hashes its own prior contents.
//  5. Persist the freshly built manifest with SaveAtomic before returning it.
func BuildPersistent(root, manifestFileName string, settings Settings, logger *logging.Logger) (*Manifest, error) {
	effectiveSettings := settings.WithExclusion(manifestFileName)

	if !settings.ForceRebuild {
		if loaded, err := Load(root, manifestFileName); err == nil {
			loaded.RootPath = root
			if Revalidate(loaded, effectiveSettings, logger) {
				logger.Debugf("persisted manifest for %s revalidated", root)
				return loaded, nil
			}
			logger.Debugf("persisted manifest for %s is stale, rescanning", root)
		}
	}

	fresh, err := BuildEphemeral(root, effectiveSettings, logger)
	if err != nil {
		return nil, err
	}

	if err := SaveAtomic(fresh, manifestFileName); err != nil {
		return nil, errors.Wrap(err, "unable to persist manifest")
	}

	return fresh, nil
}
