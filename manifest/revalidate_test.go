package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRevalidationConsistency covers invariant 2: building an ephemeral
// manifest and then loading+revalidating a persisted copy of it, with no
// changes to the tree in between, must succeed.
func TestRevalidationConsistency(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "one")
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatalf("unable to create sub: %v", err)
	}
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "two")

	settings := Settings{Mode: Hash}
	built, err := BuildEphemeral(root, settings, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral failed: %v", err)
	}

	encoded, err := encodeManifest(built)
	if err != nil {
		t.Fatalf("encodeManifest failed: %v", err)
	}
	loaded, err := decodeManifest(encoded, root)
	if err != nil {
		t.Fatalf("decodeManifest failed: %v", err)
	}

	if !Revalidate(loaded, settings, nil) {
		t.Fatalf("expected an unmodified tree to revalidate successfully")
	}
}

// TestRevalidationAfterTouch covers scenario E: touching a file's mtime
// after a persistent manifest was written must cause revalidation to fail.
func TestRevalidationAfterTouch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "one")

	settings := Settings{Mode: Hash}
	built, err := BuildEphemeral(root, settings, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral failed: %v", err)
	}
	built.RootPath = root

	if !Revalidate(built, settings, nil) {
		t.Fatalf("expected the freshly built manifest to revalidate before any change")
	}

	future := built.Root.Files[0].ModificationTime
	touched := time.Unix(future.Seconds+1, 0)
	setModTime(t, path, touched)

	if Revalidate(built, settings, nil) {
		t.Fatalf("expected revalidation to fail after touching a file's mtime")
	}
}

func TestRevalidationFailsOnMissingRoot(t *testing.T) {
	root := t.TempDir()
	m := &Manifest{Root: &DirectoryEntry{}, RootPath: filepath.Join(root, "does-not-exist")}
	if Revalidate(m, Settings{Mode: Hash}, nil) {
		t.Fatalf("expected revalidation to fail for a missing root")
	}
}

func TestRevalidationFailsOnNewFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "one")

	settings := Settings{Mode: Hash}
	built, err := BuildEphemeral(root, settings, nil)
	if err != nil {
		t.Fatalf("BuildEphemeral failed: %v", err)
	}
	built.RootPath = root

	writeFile(t, filepath.Join(root, "b.txt"), "two")

	if Revalidate(built, settings, nil) {
		t.Fatalf("expected revalidation to fail after a new file appears")
	}
}
