package main

import (
	"github.com/pkg/errors"

	"github.com/norwae/usync/diff"
	"github.com/norwae/usync/logging"
	"github.com/norwae/usync/manifest"
	"github.com/norwae/usync/transmit"
	"github.com/norwae/usync/transport"
)

// runReceiver implements --role receiver (§6): the process spawned over SSH
// when --target is a remote:// endpoint. It owns the target tree locally,
// fetches the source manifest over its inherited stdin/stdout, and drives
// the differential copy (§4.3) against it, per §2's "the driver on the
// receiver side, given a local (ephemeral) manifest and a remote (fetched)
// manifest".
func runReceiver(logger *logging.Logger) error {
	if configuration.target == "" {
		return errors.New("--role receiver requires --target")
	}

	settings, err := manifestSettings()
	if err != nil {
		return err
	}

	targetManifest, err := manifest.BuildEphemeral(configuration.target, settings, logger.Sublogger("manifest"))
	if err != nil {
		return errors.Wrap(err, "unable to build target manifest")
	}

	session := transport.NewSession(stdioConn{})
	defer session.End()

	sourceManifest, err := session.RequestManifest(configuration.target)
	if err != nil {
		return errors.Wrap(err, "unable to fetch source manifest")
	}

	transmitter := transmit.Command{Session: session, TargetRoot: configuration.target}
	return diff.Drive(sourceManifest, targetManifest, transmitter, logger.Sublogger("diff"))
}
