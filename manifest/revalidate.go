package manifest

import (
	"os"
	"path/filepath"

	"github.com/norwae/usync/logging"
)

// Revalidate reports whether the persisted manifest m still accurately
// describes the tree rooted at m.RootPath, checked by os.Stat alone: no file
// is ever reopened or rehashed. Per spec.md §4.2, revalidation fails (returns
// false) if the root is missing or is no longer a directory, if any
// directory's modification time no longer matches, if any file's size or
// modification time no longer matches, or if the current directory listing
// contains an entry that the manifest does not account for (a new, renamed,
// or reappeared child). A false result means the caller must fall back to a
// full BuildEphemeral/BuildPersistent rescan.
func Revalidate(m *Manifest, settings Settings, logger *logging.Logger) bool {
	info, err := os.Stat(m.RootPath)
	if err != nil || !info.IsDir() {
		return false
	}
	return revalidateDirectory(m.Root, m.RootPath, "", info, settings, logger)
}

func revalidateDirectory(entry *DirectoryEntry, absPath, relPath string, info os.FileInfo, settings Settings, logger *logging.Logger) bool {
	if !timestampFromInfo(info).Equal(entry.ModificationTime) {
		logger.Debugf("modification time mismatch at %s", relPath)
		return false
	}

	rawEntries, err := os.ReadDir(absPath)
	if err != nil {
		logger.Debugf("unable to read directory %s: %v", absPath, err)
		return false
	}

	var expectedCount int
	di, fi := 0, 0

	for _, raw := range rawEntries {
		childName := raw.Name()
		childRelPath := joinRelative(relPath, childName)

		if raw.Type()&os.ModeSymlink != 0 {
			continue
		}
		if isExcluded(childRelPath, settings.ExcludePatterns) {
			continue
		}

		childInfo, err := raw.Info()
		if err != nil {
			logger.Debugf("unable to stat %s: %v", childRelPath, err)
			return false
		}

		switch {
		case childInfo.IsDir():
			if di >= len(entry.Directories) || entry.Directories[di].Name != childName {
				logger.Debugf("unexpected directory %s", childRelPath)
				return false
			}
			childAbsPath := filepath.Join(absPath, childName)
			if !revalidateDirectory(entry.Directories[di], childAbsPath, childRelPath, childInfo, settings, logger) {
				return false
			}
			di++
			expectedCount++
		case childInfo.Mode().IsRegular():
			if fi >= len(entry.Files) || entry.Files[fi].Name != childName {
				logger.Debugf("unexpected file %s", childRelPath)
				return false
			}
			if !revalidateFile(entry.Files[fi], childInfo, settings.Mode) {
				logger.Debugf("stale file %s", childRelPath)
				return false
			}
			fi++
			expectedCount++
		default:
			// Non-regular, non-directory entries were never recorded and are
			// simply skipped, matching the scan path's behavior.
		}
	}

	if di != len(entry.Directories) || fi != len(entry.Files) {
		logger.Debugf("child count mismatch at %s", relPath)
		return false
	}

	return true
}

// revalidateFile reports whether a file's on-disk size and modification time
// still match the recorded entry. Content is never rehashed here, regardless
// of mode: TimestampTest mode never had a content hash to check, and Hash
// mode's revalidation is deliberately stat-only per spec.md §4.2 (a change
// that preserves size and mtime is not a change usync detects between
// persisted syncs).
func revalidateFile(entry *FileEntry, info os.FileInfo, mode Mode) bool {
	if uint64(info.Size()) != entry.Size {
		return false
	}
	return timestampFromInfo(info).Equal(entry.ModificationTime)
}
