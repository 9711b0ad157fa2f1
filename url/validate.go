package url

import "github.com/pkg/errors"

// EnsureValid checks that u's fields are consistent with its Protocol, per
// the shape each endpoint kind requires in §6.
func (u *URL) EnsureValid() error {
	if u == nil {
		return errors.New("nil URL")
	}

	switch u.Protocol {
	case Protocol_Local:
		if u.Username != "" {
			return errors.New("local URL with non-empty username")
		} else if u.Hostname != "" {
			return errors.New("local URL with non-empty hostname")
		} else if u.Port != 0 {
			return errors.New("local URL with non-zero port")
		} else if u.Path == "" {
			return errors.New("local URL with empty path")
		}
	case Protocol_Server:
		if u.Username != "" {
			return errors.New("server URL with non-empty username")
		} else if u.Hostname == "" {
			return errors.New("server URL with empty hostname")
		} else if u.Port == 0 {
			return errors.New("server URL with zero port")
		} else if u.Path != "" {
			return errors.New("server URL with non-empty path")
		}
	case Protocol_Remote:
		if u.Hostname == "" {
			return errors.New("remote URL with empty hostname")
		} else if u.Path == "" {
			return errors.New("remote URL with empty path")
		}
	default:
		return errors.New("unknown or unsupported protocol")
	}

	return nil
}
