package cache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryMetadataAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello cache"), 0644); err != nil {
		t.Fatalf("unable to write fixture: %v", err)
	}

	r := New()
	meta, err := r.Metadata(path)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta.Size != int64(len("hello cache")) {
		t.Fatalf("got size %d, want %d", meta.Size, len("hello cache"))
	}

	reader, err := r.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, err := ioutil.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "hello cache" {
		t.Fatalf("got %q, want %q", data, "hello cache")
	}
}

func TestRegistryIndependentCursors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatalf("unable to write fixture: %v", err)
	}

	r := New()
	first, err := r.Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	second, err := r.Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}

	buf := make([]byte, 4)
	if _, err := first.Read(buf); err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if string(buf) != "0123" {
		t.Fatalf("first reader got %q", buf)
	}

	buf2 := make([]byte, 4)
	if _, err := second.Read(buf2); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if string(buf2) != "0123" {
		t.Fatalf("second reader's cursor should be independent, got %q", buf2)
	}
}

func TestRegistryHandlesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("unable to write fixture: %v", err)
	}

	r := New()
	meta, err := r.Metadata(path)
	if err != nil {
		t.Fatalf("Metadata failed on empty file: %v", err)
	}
	if meta.Size != 0 {
		t.Fatalf("expected size 0, got %d", meta.Size)
	}

	reader, err := r.Open(path)
	if err != nil {
		t.Fatalf("Open failed on empty file: %v", err)
	}
	data, err := ioutil.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll failed on empty file: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected no data, got %d bytes", len(data))
	}
}
