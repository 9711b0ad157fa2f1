package transport

import (
	"io"

	"github.com/pkg/errors"

	"github.com/norwae/usync/codec"
	"github.com/norwae/usync/manifest"
)

// Session is the client (driving) side of a transport connection: it issues
// commands and reads the matching responses. Grounded on
// original_source/src/file_transfer/remote.rs's CommandTransmitter, which
// pairs a buffered reader and writer over the connection and flushes after
// every request.
type Session struct {
	reader  *codec.Decoder
	writer  *codec.Encoder
	flusher interface{ Flush() error }
	raw     io.Reader
}

// NewSession wraps conn for client-side use.
func NewSession(conn io.ReadWriter) *Session {
	bufferedReader := codec.BufferedReader(conn)
	bufferedWriter := codec.BufferedWriter(conn)
	return &Session{
		reader:  codec.NewDecoder(bufferedReader),
		writer:  codec.NewEncoder(bufferedWriter),
		flusher: bufferedWriter,
		raw:     bufferedReader,
	}
}

// RequestManifest issues SendManifest and decodes the response, attaching
// rootPath (the requester's own notion of where this tree lives, not the
// sender's) to the result.
func (s *Session) RequestManifest(rootPath string) (*manifest.Manifest, error) {
	if err := writeCommand(s.writer, SendManifestCommand()); err != nil {
		return nil, errors.Wrap(err, "unable to send SendManifest command")
	}
	if err := s.flusher.Flush(); err != nil {
		return nil, errors.Wrap(err, "unable to flush SendManifest command")
	}

	data, err := s.reader.ReadBytes()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read manifest response")
	}
	m, err := manifest.DecodeWire(data, rootPath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode manifest response")
	}
	return m, nil
}

// RequestFile issues SendFile(relativePath) and copies exactly the returned
// Size bytes of content into dst, returning the file's attributes. Callers
// must read exactly Size bytes (which CopyN below guarantees) since the
// wire has no further framing on the body; over- or under-reading would
// desynchronize the next command on this session.
func (s *Session) RequestFile(relativePath string, dst io.Writer) (FileAttributes, error) {
	segments := splitPortablePath(relativePath)
	if err := writeCommand(s.writer, SendFileCommand(segments)); err != nil {
		return FileAttributes{}, errors.Wrap(err, "unable to send SendFile command")
	}
	if err := s.flusher.Flush(); err != nil {
		return FileAttributes{}, errors.Wrap(err, "unable to flush SendFile command")
	}

	attrs, err := readFileAttributes(s.reader)
	if err != nil {
		return FileAttributes{}, errors.Wrap(err, "unable to read file attributes")
	}

	if _, err := io.CopyN(dst, s.raw, int64(attrs.Size)); err != nil {
		return FileAttributes{}, errors.Wrap(err, "unable to read file content")
	}

	return attrs, nil
}

// End sends the End command, requesting that the peer close the session.
// Per spec.md §4.5/§5, a best-effort End is attempted on shutdown and its
// failure is swallowed by callers that are already tearing down.
func (s *Session) End() error {
	if err := writeCommand(s.writer, EndCommand()); err != nil {
		return err
	}
	return s.flusher.Flush()
}
