package transmit

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// joinTarget resolves a root-relative, slash-separated path against a local
// filesystem root.
func joinTarget(root, relativePath string) string {
	return filepath.Join(root, filepath.FromSlash(relativePath))
}

// stagingFile is a temporary file created alongside a target path, written
// to directly, then either committed (mtime set, renamed into place) or
// aborted (removed). Shared by Local and Command so both transmitters
// extend invariant 4 (transmit atomicity) identically: a reader of target
// never observes a partially written file.
type stagingFile struct {
	file   *os.File
	name   string
	target string
}

// newStagingFile creates target's parent directory if necessary and opens a
// temporary file within it.
func newStagingFile(target string) (*stagingFile, error) {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, errors.Wrap(err, "unable to create parent directory")
	}

	file, err := ioutil.TempFile(parent, filepath.Base(target))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create staging file")
	}

	return &stagingFile{file: file, name: file.Name(), target: target}, nil
}

// commit closes the staging file, sets its modification time, and renames
// it into place over any existing file at target.
func (s *stagingFile) commit(modTime time.Time) error {
	if err := s.file.Close(); err != nil {
		os.Remove(s.name)
		return errors.Wrap(err, "unable to close staging file")
	}
	if err := os.Chtimes(s.name, modTime, modTime); err != nil {
		os.Remove(s.name)
		return errors.Wrap(err, "unable to set staging file modification time")
	}
	if err := os.Rename(s.name, s.target); err != nil {
		os.Remove(s.name)
		return errors.Wrap(err, "unable to rename staging file into place")
	}
	return nil
}

// abort discards the staging file without committing it.
func (s *stagingFile) abort() {
	s.file.Close()
	os.Remove(s.name)
}
