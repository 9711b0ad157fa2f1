// Package agent spawns the remote peer process used when a --source or
// --target endpoint is a remote:// URL (§6): an SSH child process running
// `usync --role sender|receiver`, whose stdin/stdout become the transport
// duplex for the local session.
//
// Grounded on the teacher's agent package (processStream wrapping a
// process's stdin/stdout pipes into a single io.ReadWriteCloser) and
// ssh/ssh.go's Command (locating the ssh binary, assembling
// [user@]host and connect-timeout arguments), simplified to the spec's
// narrower invocation: no agent installation or platform probing, since
// the remote peer is assumed to already have usync on its PATH.
package agent

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/norwae/usync/url"
)

// connectTimeoutSeconds bounds how long the ssh client will wait to
// establish the underlying connection before giving up.
const connectTimeoutSeconds = 10

// Role identifies which side of the synchronization the spawned process
// plays.
type Role string

const (
	// RoleSender designates the process serving file content (the source
	// side of the synchronization).
	RoleSender Role = "sender"
	// RoleReceiver designates the process receiving file content (the
	// target side of the synchronization).
	RoleReceiver Role = "receiver"
)

// Options carries the flags forwarded to the remote usync invocation,
// mirroring the subset of the CLI surface (§6) that a spawned peer needs to
// reconstruct its own manifest settings.
type Options struct {
	ManifestFile        string
	HashMode            string
	ForceRebuildManifest bool
	Exclude             []string
}

// Process is a spawned remote peer: its stdin/stdout pipes, wrapped as a
// single duplex stream, and the underlying command so the caller can Wait
// on it after the session ends.
type Process struct {
	io.ReadWriteCloser
	Command *exec.Cmd
}

// processStream adapts a process's separate stdin/stdout pipes into the
// single io.ReadWriteCloser the transport package expects, closing both
// pipes together.
type processStream struct {
	stdout io.ReadCloser
	stdin  io.WriteCloser
}

func (s *processStream) Read(p []byte) (int, error)  { return s.stdout.Read(p) }
func (s *processStream) Write(p []byte) (int, error) { return s.stdin.Write(p) }

func (s *processStream) Close() error {
	inErr := s.stdin.Close()
	outErr := s.stdout.Close()
	if inErr != nil {
		return inErr
	}
	return outErr
}

// Spawn starts `ssh <target> usync --role <role> --source|--target <path>
// ...` for the given remote endpoint, using endpointFlag ("--source" or
// "--target") to tell the remote peer which side of its own invocation
// remote.Path fills. The returned Process's stdin/stdout become the
// transport's duplex; the caller is responsible for calling Wait on
// Process.Command once the session has ended.
func Spawn(ctx context.Context, remote *url.URL, role Role, endpointFlag string, options Options) (*Process, error) {
	if remote.GetProtocol() != url.Protocol_Remote {
		return nil, errors.Errorf("endpoint %q is not a remote:// URL", remote.Format())
	}

	sshPath, err := exec.LookPath("ssh")
	if err != nil {
		return nil, errors.Wrap(err, "unable to locate ssh executable")
	}

	target := remote.Hostname
	if remote.Username != "" {
		target = fmt.Sprintf("%s@%s", remote.Username, remote.Hostname)
	}

	args := []string{fmt.Sprintf("-oConnectTimeout=%d", connectTimeoutSeconds), target}
	args = append(args, remoteCommandArgs(role, endpointFlag, remote.Path, options)...)

	cmd := exec.CommandContext(ctx, sshPath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "unable to redirect remote stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "unable to redirect remote stdout")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "unable to start ssh process")
	}

	return &Process{
		ReadWriteCloser: &processStream{stdout: stdout, stdin: stdin},
		Command:         cmd,
	}, nil
}

// remoteCommandArgs renders the remote-side usync invocation as a single
// shell command line, since ssh interprets trailing arguments as literal
// input to the remote shell.
func remoteCommandArgs(role Role, endpointFlag, remotePath string, options Options) []string {
	command := fmt.Sprintf("usync --role %s %s %s", role, endpointFlag, shellQuote(remotePath))

	if options.ManifestFile != "" {
		command += " --manifest-file " + shellQuote(options.ManifestFile)
	}
	if options.HashMode != "" {
		command += " --hash-mode " + shellQuote(options.HashMode)
	}
	if options.ForceRebuildManifest {
		command += " --force-rebuild-manifest"
	}
	for _, pattern := range options.Exclude {
		command += " --exclude " + shellQuote(pattern)
	}

	return []string{command}
}

// shellQuote wraps s in single quotes for the remote POSIX shell, escaping
// any embedded single quote.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
