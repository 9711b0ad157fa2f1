package url

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	serverPrefix = "server://"
	remotePrefix = "remote://"
)

// Parse interprets a --source/--target argument as one of the three
// endpoint kinds described in §6:
//
//	/local/path                    -> Protocol_Local
//	server://host:port              -> Protocol_Server
//	remote://user@host:remote_path  -> Protocol_Remote (user@ optional)
//
// Anything not matching one of the two URL prefixes is treated as a local
// path verbatim, including paths that happen to contain a colon.
func Parse(raw string) (*URL, error) {
	switch {
	case strings.HasPrefix(raw, serverPrefix):
		return parseServer(strings.TrimPrefix(raw, serverPrefix))
	case strings.HasPrefix(raw, remotePrefix):
		return parseRemote(strings.TrimPrefix(raw, remotePrefix))
	default:
		if raw == "" {
			return nil, errors.New("empty endpoint specification")
		}
		return &URL{Protocol: Protocol_Local, Path: raw}, nil
	}
}

func parseServer(rest string) (*URL, error) {
	host, portString, found := strings.Cut(rest, ":")
	if !found || host == "" || portString == "" {
		return nil, errors.Errorf("invalid server endpoint %q, expected host:port", rest)
	}
	port, err := strconv.ParseUint(portString, 10, 16)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid server port %q", portString)
	}
	return &URL{Protocol: Protocol_Server, Hostname: host, Port: uint16(port)}, nil
}

func parseRemote(rest string) (*URL, error) {
	var username string
	hostAndPath := rest
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		username, hostAndPath = rest[:at], rest[at+1:]
	}

	host, path, found := strings.Cut(hostAndPath, ":")
	if !found || host == "" || path == "" {
		return nil, errors.Errorf("invalid remote endpoint %q, expected [user@]host:path", rest)
	}

	return &URL{Protocol: Protocol_Remote, Username: username, Hostname: host, Path: path}, nil
}
