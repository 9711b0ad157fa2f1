package cache

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// FileAccess is the narrow capability spec.md §9 calls for: metadata lookup
// plus an open-for-read, abstracting over whether the server reads files
// directly from the filesystem or through the Hot File Cache. It is
// deliberately narrower than a full filesystem interface; only what the
// transport server's SendFile handler needs.
type FileAccess interface {
	Metadata(absPath string) (Metadata, error)
	Open(absPath string) (io.Reader, error)
}

// Direct is a FileAccess that reads the filesystem directly, with no
// caching. It is the server's file source when no Hot File Cache is
// configured.
type Direct struct{}

// Metadata stats absPath directly.
func (Direct) Metadata(absPath string) (Metadata, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return Metadata{}, errors.Wrapf(err, "unable to stat %s", absPath)
	}
	return Metadata{Size: info.Size(), ModifiedTime: info.ModTime().Unix(), ModifiedNsec: uint32(info.ModTime().Nanosecond())}, nil
}

// Open opens absPath directly.
func (Direct) Open(absPath string) (io.Reader, error) {
	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", absPath)
	}
	return file, nil
}

// AsFileAccess adapts r to the FileAccess interface; *Reader's Read method
// already satisfies io.Reader, so this is purely a type-level adaptation.
func (r *Registry) AsFileAccess() FileAccess {
	return registryAccess{r}
}

type registryAccess struct{ r *Registry }

func (a registryAccess) Metadata(absPath string) (Metadata, error) { return a.r.Metadata(absPath) }

func (a registryAccess) Open(absPath string) (io.Reader, error) { return a.r.Open(absPath) }
