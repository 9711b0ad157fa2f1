package cache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestDirectFileAccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("direct"), 0644); err != nil {
		t.Fatalf("unable to write fixture: %v", err)
	}

	var access FileAccess = Direct{}
	meta, err := access.Metadata(path)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta.Size != int64(len("direct")) {
		t.Fatalf("got size %d, want %d", meta.Size, len("direct"))
	}

	reader, err := access.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, err := ioutil.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "direct" {
		t.Fatalf("got %q, want %q", data, "direct")
	}
}

func TestRegistryAsFileAccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("cached"), 0644); err != nil {
		t.Fatalf("unable to write fixture: %v", err)
	}

	var access FileAccess = New().AsFileAccess()
	meta, err := access.Metadata(path)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta.Size != int64(len("cached")) {
		t.Fatalf("got size %d, want %d", meta.Size, len("cached"))
	}
}
