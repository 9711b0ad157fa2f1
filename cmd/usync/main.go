// Command usync is a one-way directory synchronizer: it makes a target tree
// byte-equivalent to a source tree by transmitting only the files whose
// content has changed, as decided by a persisted content manifest (§1).
//
// Grounded on the teacher's cmd/mutagen/main.go (a single cobra root command
// binding a flat configuration struct, with Fatal/Error for boundary
// reporting) — simplified to usync's flat CLI surface (§6), which has no
// subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rootCommand = &cobra.Command{
	Use:   "usync",
	Short: "usync makes a target directory byte-equivalent to a source directory",
	RunE:  run,
}

func init() {
	rootCommand.SilenceErrors = true
	rootCommand.SilenceUsage = true

	flags := rootCommand.Flags()
	flags.StringVar(&configuration.source, "source", "", "Source endpoint: a local path, server://host:port, or remote://user@host:path")
	flags.StringVar(&configuration.target, "target", "", "Target endpoint: a local path, server://host:port, or remote://user@host:path")
	flags.StringVar(&configuration.manifestFile, "manifest-file", "", "Name of the persisted manifest file")
	flags.StringVar(&configuration.hashMode, "hash-mode", "hash", "Content equality mode (hash|timestamp)")
	flags.BoolVar(&configuration.forceRebuildManifest, "force-rebuild-manifest", false, "Ignore any persisted manifest and rescan from scratch")
	flags.StringArrayVar(&configuration.exclude, "exclude", nil, "Glob pattern to exclude from the scan (repeatable)")
	flags.UintVar(&configuration.serverPort, "server-port", defaultServerPort, "TCP port to listen on (--role server); server:// endpoints carry their own port")
	flags.StringVar(&configuration.role, "role", "", "Internal: role to assume when spawned remotely (sender|receiver|server)")
	flags.BoolVarP(&configuration.verbose, "verbose", "v", false, "Enable debug logging")
}

func run(*cobra.Command, []string) error {
	logger := loggerFromConfiguration()

	switch configuration.role {
	case "":
		return runOrchestrator(logger)
	case "sender":
		return runSender(logger)
	case "receiver":
		return runReceiver(logger)
	case "server":
		return runServer(logger)
	default:
		return errors.Errorf("invalid --role %q, expected sender, receiver, or server", configuration.role)
	}
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fatal(err)
	}
}

// fatal reports a top-level error and terminates the process, matching the
// teacher's cmd.Fatal boundary-reporting convention.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
