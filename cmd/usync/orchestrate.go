package main

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"

	"github.com/norwae/usync/agent"
	"github.com/norwae/usync/cache"
	"github.com/norwae/usync/diff"
	"github.com/norwae/usync/logging"
	"github.com/norwae/usync/manifest"
	"github.com/norwae/usync/transmit"
	"github.com/norwae/usync/transport"
	"github.com/norwae/usync/url"
)

// runOrchestrator implements the default (no --role) invocation: the
// top-level usync command a user actually types. At most one of --source
// and --target may be non-local (§9's client/server asymmetry gives no
// third party to bridge two remote endpoints); the local side always drives
// or serves in-process, per the role mapping documented in DESIGN.md.
func runOrchestrator(logger *logging.Logger) error {
	if configuration.source == "" || configuration.target == "" {
		return errors.New("both --source and --target are required")
	}

	source, err := url.Parse(configuration.source)
	if err != nil {
		return errors.Wrap(err, "invalid --source")
	}
	target, err := url.Parse(configuration.target)
	if err != nil {
		return errors.Wrap(err, "invalid --target")
	}
	if err := source.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid --source")
	}
	if err := target.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid --target")
	}
	if target.Protocol == url.Protocol_Server {
		return errors.New("--target cannot be a server:// endpoint: role server only ever serves, never receives")
	}

	settings, err := manifestSettings()
	if err != nil {
		return err
	}

	switch {
	case source.Protocol == url.Protocol_Local && target.Protocol == url.Protocol_Local:
		return runLocalToLocal(source.Path, target.Path, settings, logger)
	case source.Protocol != url.Protocol_Local && target.Protocol == url.Protocol_Local:
		return runRemoteSourceToLocalTarget(source, target.Path, settings, logger)
	case source.Protocol == url.Protocol_Local && target.Protocol != url.Protocol_Local:
		return runLocalSourceToRemoteTarget(source.Path, target, settings, logger)
	default:
		return errors.New("at most one of --source and --target may be a server:// or remote:// endpoint")
	}
}

// runLocalToLocal drives the synchronization entirely in-process: no
// transport is involved, matching §5's "Local mode: one controller thread
// only; no concurrency needed."
func runLocalToLocal(sourcePath, targetPath string, settings manifest.Settings, logger *logging.Logger) error {
	sourceManifest, err := manifest.BuildPersistent(sourcePath, manifestFileName(), settings, logger.Sublogger("manifest.source"))
	if err != nil {
		return errors.Wrap(err, "unable to build source manifest")
	}
	targetManifest, err := manifest.BuildEphemeral(targetPath, settings, logger.Sublogger("manifest.target"))
	if err != nil {
		return errors.Wrap(err, "unable to build target manifest")
	}

	transmitter := transmit.Local{SourceRoot: sourcePath, TargetRoot: targetPath}
	return diff.Drive(sourceManifest, targetManifest, transmitter, logger.Sublogger("diff"))
}

// runRemoteSourceToLocalTarget plays the receiver role in-process: it builds
// the local target manifest itself, connects to the remote/server source to
// fetch its manifest, and pulls differing files over that same connection.
func runRemoteSourceToLocalTarget(source *url.URL, targetPath string, settings manifest.Settings, logger *logging.Logger) error {
	targetManifest, err := manifest.BuildEphemeral(targetPath, settings, logger.Sublogger("manifest.target"))
	if err != nil {
		return errors.Wrap(err, "unable to build target manifest")
	}

	conn, cleanup, err := dialSource(source)
	if err != nil {
		return err
	}
	defer cleanup()

	session := transport.NewSession(conn)
	defer session.End()

	sourceManifest, err := session.RequestManifest(source.Path)
	if err != nil {
		return errors.Wrap(err, "unable to fetch source manifest")
	}

	transmitter := transmit.Command{Session: session, TargetRoot: targetPath}
	return diff.Drive(sourceManifest, targetManifest, transmitter, logger.Sublogger("diff"))
}

// dialSource establishes the connection to a remote:// or server:// source:
// a dialed TCP connection for server://, or a spawned SSH peer (running
// --role sender) for remote://. The returned cleanup closes/waits on
// whichever was created.
func dialSource(source *url.URL) (io.ReadWriter, func(), error) {
	switch source.Protocol {
	case url.Protocol_Server:
		port := source.Port
		if port == 0 {
			port = defaultServerPort
		}
		conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", source.Hostname, port))
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to connect to server")
		}
		return conn, func() { conn.Close() }, nil
	case url.Protocol_Remote:
		process, err := agent.Spawn(context.Background(), source, agent.RoleSender, "--source", agentOptions())
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to spawn remote peer")
		}
		cleanup := func() {
			process.Close()
			process.Command.Wait()
		}
		return process, cleanup, nil
	default:
		return nil, nil, errors.New("unsupported source endpoint protocol")
	}
}

// runLocalSourceToRemoteTarget plays the sender role in-process: it spawns
// the remote peer with --role receiver and serves the local source tree
// over the spawned process's stdin/stdout for the duration of its run.
func runLocalSourceToRemoteTarget(sourcePath string, target *url.URL, settings manifest.Settings, logger *logging.Logger) error {
	sourceManifest, err := manifest.BuildPersistent(sourcePath, manifestFileName(), settings, logger.Sublogger("manifest.source"))
	if err != nil {
		return errors.Wrap(err, "unable to build source manifest")
	}

	if target.Protocol != url.Protocol_Remote {
		return errors.New("a non-local --target must be a remote:// endpoint")
	}

	process, err := agent.Spawn(context.Background(), target, agent.RoleReceiver, "--target", agentOptions())
	if err != nil {
		return errors.Wrap(err, "unable to spawn remote peer")
	}

	serveErr := transport.Serve(process, sourcePath, sourceManifest, cache.Direct{}, logger.Sublogger("server"))
	closeErr := process.Close()
	waitErr := process.Command.Wait()

	if serveErr != nil {
		return errors.Wrap(serveErr, "error serving remote receiver")
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "unable to close remote peer stream")
	}
	if waitErr != nil {
		return errors.Wrap(waitErr, "remote peer exited with an error")
	}
	return nil
}

func agentOptions() agent.Options {
	return agent.Options{
		ManifestFile:         configuration.manifestFile,
		HashMode:             configuration.hashMode,
		ForceRebuildManifest: configuration.forceRebuildManifest,
		Exclude:              configuration.exclude,
	}
}
