package codec

import (
	"bytes"
	"testing"
)

func TestRoundTripPrimitives(t *testing.T) {
	var buffer bytes.Buffer
	enc := NewEncoder(&buffer)

	if err := enc.WriteUint8(7); err != nil {
		t.Fatalf("WriteUint8: %v", err)
	}
	if err := enc.WriteUint32(1 << 20); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	if err := enc.WriteUint64(1 << 40); err != nil {
		t.Fatalf("WriteUint64: %v", err)
	}
	if err := enc.WriteInt64(-12345); err != nil {
		t.Fatalf("WriteInt64: %v", err)
	}
	if err := enc.WriteString("hello, usync"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := enc.WriteBytes([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := enc.WriteBytes(nil); err != nil {
		t.Fatalf("WriteBytes(nil): %v", err)
	}

	dec := NewDecoder(&buffer)

	if v, err := dec.ReadUint8(); err != nil || v != 7 {
		t.Fatalf("ReadUint8: got %v, %v", v, err)
	}
	if v, err := dec.ReadUint32(); err != nil || v != 1<<20 {
		t.Fatalf("ReadUint32: got %v, %v", v, err)
	}
	if v, err := dec.ReadUint64(); err != nil || v != 1<<40 {
		t.Fatalf("ReadUint64: got %v, %v", v, err)
	}
	if v, err := dec.ReadInt64(); err != nil || v != -12345 {
		t.Fatalf("ReadInt64: got %v, %v", v, err)
	}
	if v, err := dec.ReadString(); err != nil || v != "hello, usync" {
		t.Fatalf("ReadString: got %q, %v", v, err)
	}
	if v, err := dec.ReadBytes(); err != nil || !bytes.Equal(v, []byte{1, 2, 3, 4}) {
		t.Fatalf("ReadBytes: got %v, %v", v, err)
	}
	if v, err := dec.ReadBytes(); err != nil || len(v) != 0 {
		t.Fatalf("ReadBytes(empty): got %v, %v", v, err)
	}
}

func TestRoundTripFixed(t *testing.T) {
	var buffer bytes.Buffer
	enc := NewEncoder(&buffer)
	hash := [32]byte{1, 2, 3}
	if err := enc.WriteFixed(hash[:]); err != nil {
		t.Fatalf("WriteFixed: %v", err)
	}

	dec := NewDecoder(&buffer)
	var result [32]byte
	if err := dec.ReadFixed(result[:]); err != nil {
		t.Fatalf("ReadFixed: %v", err)
	}
	if result != hash {
		t.Fatalf("fixed round trip mismatch: got %v, want %v", result, hash)
	}
}

// TestOversizedLengthRejected exercises scenario G: a peer that frames an
// object with a declared length above the sanity limit must be rejected
// before any attempt is made to allocate or read that much data.
func TestOversizedLengthRejected(t *testing.T) {
	var buffer bytes.Buffer
	enc := NewEncoder(&buffer)
	// Directly encode a length prefix claiming a 1 GiB payload, without
	// actually writing that much data.
	if err := enc.WriteUint64(1 << 30); err != nil {
		t.Fatalf("WriteUint64: %v", err)
	}

	dec := NewDecoder(&buffer)
	if _, err := dec.ReadBytes(); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestMaxObjectSizeBoundary(t *testing.T) {
	var buffer bytes.Buffer
	enc := NewEncoder(&buffer)
	data := make([]byte, MaxObjectSize)
	if err := enc.WriteBytes(data); err != nil {
		t.Fatalf("unable to encode boundary-sized object: %v", err)
	}

	oversized := make([]byte, MaxObjectSize+1)
	if err := enc.WriteBytes(oversized); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge encoding oversized object, got %v", err)
	}
}
