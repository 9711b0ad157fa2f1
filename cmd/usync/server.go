package main

import (
	"fmt"
	"net"

	"github.com/pkg/errors"

	"github.com/norwae/usync/cache"
	"github.com/norwae/usync/logging"
	"github.com/norwae/usync/manifest"
	"github.com/norwae/usync/transport"
)

// runServer implements the long-lived --role server acceptor (§4.5, §5):
// one acceptor goroutine, one worker goroutine per accepted connection, all
// sharing a single read-only Manifest and Hot File Cache built once at
// startup. Grounded on the teacher's rpc.Server.Serve accept loop.
func runServer(logger *logging.Logger) error {
	if configuration.source == "" {
		return errors.New("--role server requires --source")
	}

	settings, err := manifestSettings()
	if err != nil {
		return err
	}

	sharedManifest, err := manifest.BuildPersistent(configuration.source, manifestFileName(), settings, logger.Sublogger("manifest"))
	if err != nil {
		return errors.Wrap(err, "unable to build source manifest")
	}

	registry := cache.New()
	access := registry.AsFileAccess()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", configuration.serverPort))
	if err != nil {
		return errors.Wrap(err, "unable to listen")
	}
	defer listener.Close()

	logger.Printf("serving %s on port %d", configuration.source, configuration.serverPort)

	for {
		conn, err := listener.Accept()
		if err != nil {
			return errors.Wrap(err, "unable to accept connection")
		}
		go serveConnection(conn, sharedManifest, access, logger.Sublogger("worker"))
	}
}

func serveConnection(conn net.Conn, sharedManifest *manifest.Manifest, access cache.FileAccess, logger *logging.Logger) {
	defer conn.Close()
	if err := transport.Serve(conn, configuration.source, sharedManifest, access, logger); err != nil {
		logger.Error(err)
	}
}
