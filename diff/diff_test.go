package diff

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/norwae/usync/manifest"
	"github.com/norwae/usync/transmit"
)

// recordingTransmitter records every path it was asked to transmit, without
// touching the filesystem, so tests can assert on exactly what the driver
// decided needed transmission.
type recordingTransmitter struct {
	transmitted []string
}

func (r *recordingTransmitter) Transmit(relativePath string) error {
	r.transmitted = append(r.transmitted, relativePath)
	return nil
}

func buildTree(t *testing.T, root string, files map[string]string) *manifest.Manifest {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("unable to create parent for %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("unable to write %s: %v", name, err)
		}
	}
	m, err := manifest.BuildEphemeral(root, manifest.Settings{Mode: manifest.Hash}, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral failed: %v", err)
	}
	return m
}

func TestDriveTransmitsNewAndChangedFilesOnly(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()

	buildTree(t, sourceRoot, map[string]string{
		"same.txt":    "unchanged",
		"changed.txt": "new content",
		"new.txt":     "brand new",
	})
	buildTree(t, targetRoot, map[string]string{
		"same.txt":    "unchanged",
		"changed.txt": "old content",
	})

	// "same.txt" must compare equal under FileEntry.Equal, which also checks
	// modification time; pin it identically on both sides since the two
	// independent writes above landed at slightly different instants.
	fixedTime := time.Unix(1700000001, 0)
	for _, root := range []string{sourceRoot, targetRoot} {
		if err := os.Chtimes(filepath.Join(root, "same.txt"), fixedTime, fixedTime); err != nil {
			t.Fatalf("unable to set mtime: %v", err)
		}
	}

	source, err := manifest.BuildEphemeral(sourceRoot, manifest.Settings{Mode: manifest.Hash}, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral (source) failed: %v", err)
	}
	target, err := manifest.BuildEphemeral(targetRoot, manifest.Settings{Mode: manifest.Hash}, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral (target) failed: %v", err)
	}

	transmitter := &recordingTransmitter{}
	if err := Drive(source, target, transmitter, nil); err != nil {
		t.Fatalf("Drive failed: %v", err)
	}

	want := map[string]bool{"changed.txt": true, "new.txt": true}
	if len(transmitter.transmitted) != len(want) {
		t.Fatalf("got %v, want exactly %v", transmitter.transmitted, want)
	}
	for _, path := range transmitter.transmitted {
		if !want[path] {
			t.Fatalf("unexpected transmission of %s", path)
		}
	}
}

func TestDriveRecursesIntoNewSubdirectory(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()

	source := buildTree(t, sourceRoot, map[string]string{
		"sub/a.txt": "hello",
		"sub/b.txt": "world",
	})
	target := buildTree(t, targetRoot, map[string]string{})

	transmitter := &recordingTransmitter{}
	if err := Drive(source, target, transmitter, nil); err != nil {
		t.Fatalf("Drive failed: %v", err)
	}

	if len(transmitter.transmitted) != 2 {
		t.Fatalf("expected both files under the new subdirectory to transmit, got %v", transmitter.transmitted)
	}
}

func TestDriveSkipsUnchangedSubtree(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()

	fixedTime := time.Unix(1700000000, 0)
	for _, root := range []string{sourceRoot, targetRoot} {
		if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
			t.Fatalf("unable to create sub: %v", err)
		}
		path := filepath.Join(root, "sub", "a.txt")
		if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
			t.Fatalf("unable to write %s: %v", path, err)
		}
		if err := os.Chtimes(path, fixedTime, fixedTime); err != nil {
			t.Fatalf("unable to set file mtime: %v", err)
		}
		if err := os.Chtimes(filepath.Join(root, "sub"), fixedTime, fixedTime); err != nil {
			t.Fatalf("unable to set directory mtime: %v", err)
		}
	}

	source, err := manifest.BuildEphemeral(sourceRoot, manifest.Settings{Mode: manifest.Hash}, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral (source) failed: %v", err)
	}
	target, err := manifest.BuildEphemeral(targetRoot, manifest.Settings{Mode: manifest.Hash}, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral (target) failed: %v", err)
	}

	transmitter := &recordingTransmitter{}
	if err := Drive(source, target, transmitter, nil); err != nil {
		t.Fatalf("Drive failed: %v", err)
	}

	if len(transmitter.transmitted) != 0 {
		t.Fatalf("expected no transmissions for an identical tree, got %v", transmitter.transmitted)
	}
}

func TestDriveTreatsFileDirectoryCollisionAsDifferent(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()

	source := buildTree(t, sourceRoot, map[string]string{"item": "i am a file"})
	if err := os.MkdirAll(filepath.Join(targetRoot, "item"), 0755); err != nil {
		t.Fatalf("unable to create collision directory: %v", err)
	}
	target := buildTree(t, targetRoot, map[string]string{})

	transmitter := &recordingTransmitter{}
	if err := Drive(source, target, transmitter, nil); err != nil {
		t.Fatalf("Drive failed: %v", err)
	}

	if len(transmitter.transmitted) != 1 || transmitter.transmitted[0] != "item" {
		t.Fatalf("expected the colliding file to be transmitted, got %v", transmitter.transmitted)
	}
}

var _ transmit.Transmitter = (*recordingTransmitter)(nil)
