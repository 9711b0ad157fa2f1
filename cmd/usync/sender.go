package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/norwae/usync/cache"
	"github.com/norwae/usync/logging"
	"github.com/norwae/usync/manifest"
	"github.com/norwae/usync/transport"
)

// runSender implements --role sender (§6): the process spawned over SSH
// when --source is a remote:// endpoint. Its own stdin/stdout are the
// transport connection; it serves a single session exactly like role=server
// does for one worker, then exits.
func runSender(logger *logging.Logger) error {
	if configuration.source == "" {
		return errors.New("--role sender requires --source")
	}

	settings, err := manifestSettings()
	if err != nil {
		return err
	}

	sourceManifest, err := manifest.BuildPersistent(configuration.source, manifestFileName(), settings, logger.Sublogger("manifest"))
	if err != nil {
		return errors.Wrap(err, "unable to build source manifest")
	}

	conn := stdioConn{}
	return transport.Serve(conn, configuration.source, sourceManifest, cache.Direct{}, logger)
}

// stdioConn adapts the process's own stdin/stdout into the io.ReadWriter
// the transport package expects, for the sender and receiver roles that
// communicate over their inherited standard streams rather than a socket.
type stdioConn struct{}

func (stdioConn) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioConn) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
