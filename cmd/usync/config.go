package main

import (
	"github.com/pkg/errors"

	"github.com/norwae/usync/logging"
	"github.com/norwae/usync/manifest"
)

// defaultServerPort is the default of --server-port, the TCP port
// role=server listens on (§6). server:// endpoints must name their port
// explicitly; url.Parse rejects one without it.
const defaultServerPort = 9715

// configuration holds the bound values of every flag in the CLI surface
// (§6). It is a package-level var, matching the teacher's
// cmd/mutagen/*/createConfiguration convention of binding flags directly
// into a single struct at init time.
var configuration struct {
	source               string
	target               string
	manifestFile         string
	hashMode             string
	forceRebuildManifest bool
	exclude              []string
	serverPort           uint
	role                 string
	verbose              bool
}

func loggerFromConfiguration() *logging.Logger {
	return logging.New(configuration.verbose)
}

// manifestSettings converts the hash-mode and exclude flags into a
// manifest.Settings, consulted by every role that builds or revalidates a
// manifest locally.
func manifestSettings() (manifest.Settings, error) {
	mode, ok := manifest.ParseMode(configuration.hashMode)
	if !ok {
		return manifest.Settings{}, errors.Errorf("invalid --hash-mode %q, expected hash or timestamp", configuration.hashMode)
	}
	return manifest.Settings{
		ForceRebuild:    configuration.forceRebuildManifest,
		Mode:            mode,
		ExcludePatterns: configuration.exclude,
	}, nil
}

// manifestFileName resolves the --manifest-file flag to manifest's default
// when unset.
func manifestFileName() string {
	if configuration.manifestFile != "" {
		return configuration.manifestFile
	}
	return manifest.ManifestFileName
}
