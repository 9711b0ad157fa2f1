package transport

import (
	"io"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/norwae/usync/cache"
	"github.com/norwae/usync/codec"
	"github.com/norwae/usync/logging"
	"github.com/norwae/usync/manifest"
)

// Serve runs the server-side command loop (§4.5) for a single connection:
// read one command, dispatch, flush, loop, until End or an error. root is
// the server's configured filesystem root that portable paths resolve
// against; sharedManifest is shared read-only across all concurrent
// connections (the teacher's convention for read-mostly state handed to
// worker goroutines); access is the file source — either cache.Direct{} or a
// *cache.Registry's FileAccess, per the FileAccess capability from spec.md
// §9.
//
// Serve returns nil when the client sent End; any other return is an error
// that should terminate this connection without affecting others, matching
// spec.md §7's "Transport I/O" and "Wire protocol" error policy.
func Serve(conn io.ReadWriter, root string, sharedManifest *manifest.Manifest, access cache.FileAccess, logger *logging.Logger) error {
	reader := codec.BufferedReader(conn)
	writer := codec.BufferedWriter(conn)
	decoder := codec.NewDecoder(reader)
	encoder := codec.NewEncoder(writer)

	for {
		command, err := readCommand(decoder)
		if err != nil {
			return errors.Wrap(err, "unable to read command")
		}

		switch {
		case command.IsEnd():
			return nil
		case command.IsSendManifest():
			data, err := manifest.EncodeWire(sharedManifest)
			if err != nil {
				return errors.Wrap(err, "unable to encode manifest")
			}
			if err := encoder.WriteBytes(data); err != nil {
				return errors.Wrap(err, "unable to write manifest")
			}
		default:
			if err := serveSendFile(encoder, writer, root, command.Path(), access); err != nil {
				return err
			}
		}

		if err := writer.Flush(); err != nil {
			return errors.Wrap(err, "unable to flush response")
		}

		logger.Debugf("served command")
	}
}

// serveSendFile handles one SendFile request: write the attributes, then
// stream exactly Size bytes of content with no further framing (the
// preceding Size field is the only boundary the body gets, per spec.md
// §4.5, so the body is copied straight to writer rather than through the
// codec's length-prefixed WriteBytes).
func serveSendFile(encoder *codec.Encoder, writer io.Writer, root string, segments []string, access cache.FileAccess) error {
	relative := joinPortablePath(segments)
	absPath := filepath.Join(root, filepath.FromSlash(relative))

	meta, err := access.Metadata(absPath)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", relative)
	}

	attrs := FileAttributes{Size: uint64(meta.Size), Secs: meta.ModifiedTime, Nanos: meta.ModifiedNsec}
	if err := writeFileAttributes(encoder, attrs); err != nil {
		return errors.Wrap(err, "unable to write file attributes")
	}

	content, err := access.Open(absPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", relative)
	}

	if _, err := io.CopyN(writer, content, meta.Size); err != nil {
		return errors.Wrapf(err, "unable to stream %s", relative)
	}

	return nil
}
