package transmit

import (
	"time"

	"github.com/pkg/errors"

	"github.com/norwae/usync/transport"
)

// Command is a Transmitter that issues SendFile over a transport.Session,
// stages the response to a temporary file alongside the target, and renames
// it into place. Grounded on
// original_source/src/file_transfer/remote.rs's CommandTransmitter and
// save_file_with_tempfile.
type Command struct {
	Session    *transport.Session
	TargetRoot string
}

// Transmit requests relativePath over the session and stages the response.
func (c Command) Transmit(relativePath string) error {
	target := joinTarget(c.TargetRoot, relativePath)

	staged, err := newStagingFile(target)
	if err != nil {
		return errors.Wrapf(err, "unable to stage %s", relativePath)
	}

	attrs, err := c.Session.RequestFile(relativePath, staged.file)
	if err != nil {
		staged.abort()
		return errors.Wrapf(err, "unable to request %s", relativePath)
	}

	modTime := time.Unix(attrs.Secs, int64(attrs.Nanos))
	if err := staged.commit(modTime); err != nil {
		return errors.Wrapf(err, "unable to commit %s", relativePath)
	}

	return nil
}
