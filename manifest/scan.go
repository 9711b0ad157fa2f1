package manifest

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/norwae/usync/hasher"
	"github.com/norwae/usync/logging"
)

// BuildEphemeral performs a depth-first scan of root and returns an ephemeral
// manifest, never persisted to disk. Used for the target side of a
// synchronization, per spec.md §4.2.
func BuildEphemeral(root string, settings Settings, logger *logging.Logger) (*Manifest, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "unable to stat synchronization root")
	}
	if !info.IsDir() {
		return nil, errors.New("synchronization root is not a directory")
	}

	rootEntry, err := scanDirectory(root, "", "", info, settings, logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to scan synchronization root")
	}

	return &Manifest{Root: rootEntry, RootPath: root}, nil
}

// scanDirectory scans a single directory level and recurses into
// subdirectories. absPath is the real filesystem path; relPath is the
// root-relative, slash-separated path used for exclusion matching and
// logging; name is the final path segment recorded on the resulting entry
// (empty for the synchronization root itself).
func scanDirectory(absPath, relPath, name string, info os.FileInfo, settings Settings, logger *logging.Logger) (*DirectoryEntry, error) {
	rawEntries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read directory %s", absPath)
	}

	var directories []*DirectoryEntry
	var files []*FileEntry

	for _, raw := range rawEntries {
		childName := raw.Name()
		childRelPath := joinRelative(relPath, childName)
		childAbsPath := filepath.Join(absPath, childName)

		if raw.Type()&os.ModeSymlink != 0 {
			logger.Debugf("skipping symbolic link %s", childRelPath)
			continue
		}

		if isExcluded(childRelPath, settings.ExcludePatterns) {
			logger.Debugf("excluding %s", childRelPath)
			continue
		}

		childInfo, err := raw.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "unable to stat %s", childAbsPath)
		}

		switch {
		case childInfo.IsDir():
			childEntry, err := scanDirectory(childAbsPath, childRelPath, childName, childInfo, settings, logger)
			if err != nil {
				return nil, err
			}
			directories = append(directories, childEntry)
		case childInfo.Mode().IsRegular():
			fileEntry, err := buildFileEntry(childAbsPath, childName, childInfo, settings.Mode)
			if err != nil {
				return nil, err
			}
			files = append(files, fileEntry)
		default:
			logger.Debugf("skipping non-regular entry %s", childRelPath)
		}
	}

	return &DirectoryEntry{
		Name:             name,
		ModificationTime: timestampFromInfo(info),
		Directories:      directories,
		Files:            files,
		Hash:             ComposeHash(directories, files),
	}, nil
}

// buildFileEntry constructs a FileEntry for a regular file, hashing its
// content unless the settings specify TimestampTest mode.
func buildFileEntry(absPath, name string, info os.FileInfo, mode Mode) (*FileEntry, error) {
	size := uint64(info.Size())
	digest := hasher.Zero

	if mode == Hash {
		file, err := os.Open(absPath)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open %s", absPath)
		}
		defer file.Close()

		digest, err = hasher.Stream(file)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to hash %s", absPath)
		}
	}

	return &FileEntry{
		Name:             name,
		ModificationTime: timestampFromInfo(info),
		Size:             size,
		Hash:             digest,
	}, nil
}

// timestampFromInfo extracts a Timestamp from os.FileInfo's modification
// time.
func timestampFromInfo(info os.FileInfo) Timestamp {
	t := info.ModTime()
	return Timestamp{Seconds: t.Unix(), Nanoseconds: uint32(t.Nanosecond())}
}

// joinRelative joins a root-relative parent path and a child name with a
// forward slash, regardless of host path separator conventions, since
// exclusion patterns and the wire protocol both use portable slash-separated
// paths.
func joinRelative(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
