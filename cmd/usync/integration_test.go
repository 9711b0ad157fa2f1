package main

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/norwae/usync/cache"
	"github.com/norwae/usync/diff"
	"github.com/norwae/usync/duplex"
	"github.com/norwae/usync/logging"
	"github.com/norwae/usync/manifest"
	"github.com/norwae/usync/transmit"
	"github.com/norwae/usync/transport"
)

// TestFullSyncOverCommandTransmitterProducesEquivalentTarget exercises a
// complete driving sync against an empty target over an in-process
// transport.Session, mirroring what --role receiver does against a spawned
// --role sender: three files of very different sizes (10 B, 10 KiB, 10 MiB),
// a cold empty target, full copy, then invariant 6 (the resulting target
// manifest's root hash equals the source's).
func TestFullSyncOverCommandTransmitterProducesEquivalentTarget(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()

	writeRandomFile(t, filepath.Join(sourceRoot, "tiny.bin"), 10)
	writeRandomFile(t, filepath.Join(sourceRoot, "small.bin"), 10*1024)
	writeRandomFile(t, filepath.Join(sourceRoot, "large.bin"), 10*1024*1024)

	settings := manifest.Settings{Mode: manifest.Hash}

	sourceManifest, err := manifest.BuildPersistent(sourceRoot, manifest.ManifestFileName, settings, nil)
	if err != nil {
		t.Fatalf("unable to build source manifest: %v", err)
	}
	targetManifest, err := manifest.BuildEphemeral(targetRoot, settings, nil)
	if err != nil {
		t.Fatalf("unable to build empty target manifest: %v", err)
	}

	pair := duplex.NewPair()

	var wg sync.WaitGroup
	wg.Add(1)
	var serveErr error
	go func() {
		defer wg.Done()
		serveErr = transport.Serve(pair.B, sourceRoot, sourceManifest, cache.Direct{}, logging.New(false))
	}()

	session := transport.NewSession(pair.A)
	fetchedSource, err := session.RequestManifest(targetRoot)
	if err != nil {
		t.Fatalf("RequestManifest failed: %v", err)
	}

	transmitter := transmit.Command{Session: session, TargetRoot: targetRoot}
	if err := diff.Drive(fetchedSource, targetManifest, transmitter, logging.New(false).Sublogger("diff")); err != nil {
		t.Fatalf("Drive failed: %v", err)
	}

	if err := session.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	wg.Wait()
	if serveErr != nil {
		t.Fatalf("Serve returned an error: %v", serveErr)
	}

	for _, name := range []string{"tiny.bin", "small.bin", "large.bin"} {
		want, err := os.ReadFile(filepath.Join(sourceRoot, name))
		if err != nil {
			t.Fatalf("unable to read source fixture %s: %v", name, err)
		}
		got, err := os.ReadFile(filepath.Join(targetRoot, name))
		if err != nil {
			t.Fatalf("unable to read synced file %s: %v", name, err)
		}
		if !bytes.Equal(want, got) {
			t.Fatalf("%s: synced content does not match source", name)
		}
	}

	rebuiltTarget, err := manifest.BuildEphemeral(targetRoot, settings, nil)
	if err != nil {
		t.Fatalf("unable to rebuild target manifest: %v", err)
	}
	if rebuiltTarget.Root.Hash != sourceManifest.Root.Hash {
		t.Fatalf("invariant 6 violated: target root hash %x != source root hash %x", rebuiltTarget.Root.Hash, sourceManifest.Root.Hash)
	}
}

func writeRandomFile(t *testing.T, path string, size int) {
	t.Helper()
	content := make([]byte, size)
	if _, err := rand.Read(content); err != nil {
		t.Fatalf("unable to generate random content for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("unable to write fixture %s: %v", path, err)
	}
}
