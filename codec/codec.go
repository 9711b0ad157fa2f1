// Package codec implements the little-endian, length-prefixed, size-limited
// binary encoding used both to persist manifests to disk and to exchange
// commands and structured values across the transport protocol.
//
// It is grounded on the teacher's top-level framing and encoding packages:
// framing.Encoder/Decoder provide the staging-buffer and sanity-limit
// conventions, though here the length prefix is a fixed-width uint64 rather
// than a protobuf varint, since codec values are plain Go structs rather than
// gogo/protobuf-generated messages.
package codec

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	// MaxObjectSize is the maximum size, in bytes, of any single decoded
	// object: a string, a byte sequence, or a sequence length. Decoding any
	// value whose declared length exceeds this is refused, guarding against a
	// malicious or corrupt peer claiming an enormous manifest or file size.
	MaxObjectSize = 64 * 1024 * 1024

	// lengthPrefixSize is the width, in bytes, of a length prefix.
	lengthPrefixSize = 8
)

// ErrTooLarge is returned when a decoded length prefix exceeds MaxObjectSize.
var ErrTooLarge = errors.New("decoded object exceeds 64 MiB sanity limit")

// Encoder writes primitive values to an underlying writer using the codec's
// wire format. It does not buffer internally; callers that need buffering
// (e.g. transport sessions) should wrap writer in a *bufio.Writer themselves
// and flush after each logical message, matching the teacher's mandate that
// writers be flushed after every command.
type Encoder struct {
	writer io.Writer
	header [lengthPrefixSize]byte
}

// NewEncoder creates a new codec encoder writing to writer.
func NewEncoder(writer io.Writer) *Encoder {
	return &Encoder{writer: writer}
}

// WriteUint8 writes a single byte.
func (e *Encoder) WriteUint8(value uint8) error {
	_, err := e.writer.Write([]byte{value})
	return errors.Wrap(err, "unable to write byte")
}

// WriteUint32 writes a fixed-width little-endian 32-bit unsigned integer.
func (e *Encoder) WriteUint32(value uint32) error {
	var buffer [4]byte
	binary.LittleEndian.PutUint32(buffer[:], value)
	_, err := e.writer.Write(buffer[:])
	return errors.Wrap(err, "unable to write uint32")
}

// WriteUint64 writes a fixed-width little-endian 64-bit unsigned integer.
func (e *Encoder) WriteUint64(value uint64) error {
	binary.LittleEndian.PutUint64(e.header[:], value)
	_, err := e.writer.Write(e.header[:])
	return errors.Wrap(err, "unable to write uint64")
}

// WriteInt64 writes a fixed-width little-endian 64-bit signed integer.
func (e *Encoder) WriteInt64(value int64) error {
	return e.WriteUint64(uint64(value))
}

// WriteBytes writes a length-prefixed byte sequence. It refuses to encode a
// sequence longer than MaxObjectSize.
func (e *Encoder) WriteBytes(data []byte) error {
	if len(data) > MaxObjectSize {
		return ErrTooLarge
	}
	if err := e.WriteUint64(uint64(len(data))); err != nil {
		return errors.Wrap(err, "unable to write length prefix")
	}
	if len(data) == 0 {
		return nil
	}
	_, err := e.writer.Write(data)
	return errors.Wrap(err, "unable to write data")
}

// WriteString writes a length-prefixed UTF-8 string.
func (e *Encoder) WriteString(value string) error {
	return e.WriteBytes([]byte(value))
}

// WriteFixed writes exactly len(data) raw bytes with no length prefix. It is
// used for fixed-size fields, such as 32-byte hash values, whose length is
// already known to both ends.
func (e *Encoder) WriteFixed(data []byte) error {
	_, err := e.writer.Write(data)
	return errors.Wrap(err, "unable to write fixed-size field")
}

// Decoder reads primitive values from an underlying reader using the codec's
// wire format.
type Decoder struct {
	reader io.Reader
	header [lengthPrefixSize]byte
}

// NewDecoder creates a new codec decoder reading from reader. Callers that
// will perform many small reads (as the transport protocol does) should wrap
// reader in a *bufio.Reader before passing it in, to avoid per-field syscall
// overhead; this constructor does not impose buffering itself so that callers
// retain control of buffer sizing and reuse.
func NewDecoder(reader io.Reader) *Decoder {
	return &Decoder{reader: reader}
}

// ReadUint8 reads a single byte.
func (d *Decoder) ReadUint8() (uint8, error) {
	var buffer [1]byte
	if _, err := io.ReadFull(d.reader, buffer[:]); err != nil {
		return 0, errors.Wrap(err, "unable to read byte")
	}
	return buffer[0], nil
}

// ReadUint32 reads a fixed-width little-endian 32-bit unsigned integer.
func (d *Decoder) ReadUint32() (uint32, error) {
	var buffer [4]byte
	if _, err := io.ReadFull(d.reader, buffer[:]); err != nil {
		return 0, errors.Wrap(err, "unable to read uint32")
	}
	return binary.LittleEndian.Uint32(buffer[:]), nil
}

// ReadUint64 reads a fixed-width little-endian 64-bit unsigned integer.
func (d *Decoder) ReadUint64() (uint64, error) {
	if _, err := io.ReadFull(d.reader, d.header[:]); err != nil {
		return 0, errors.Wrap(err, "unable to read uint64")
	}
	return binary.LittleEndian.Uint64(d.header[:]), nil
}

// ReadInt64 reads a fixed-width little-endian 64-bit signed integer.
func (d *Decoder) ReadInt64() (int64, error) {
	value, err := d.ReadUint64()
	return int64(value), err
}

// ReadBytes reads a length-prefixed byte sequence, rejecting any declared
// length above MaxObjectSize before attempting to allocate or read it.
func (d *Decoder) ReadBytes() ([]byte, error) {
	length, err := d.ReadUint64()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read length prefix")
	}
	if length > MaxObjectSize {
		return nil, ErrTooLarge
	}
	if length == 0 {
		return []byte{}, nil
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(d.reader, data); err != nil {
		return nil, errors.Wrap(err, "unable to read data")
	}
	return data, nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	data, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFixed reads exactly len(buffer) raw bytes into buffer with no length
// prefix, the counterpart to WriteFixed.
func (d *Decoder) ReadFixed(buffer []byte) error {
	_, err := io.ReadFull(d.reader, buffer)
	return errors.Wrap(err, "unable to read fixed-size field")
}

// BufferedReader returns reader wrapped in a *bufio.Reader if it is not
// already one, for use by callers that need to construct a Decoder over a
// raw connection.
func BufferedReader(reader io.Reader) *bufio.Reader {
	if br, ok := reader.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReaderSize(reader, 64*1024)
}

// BufferedWriter returns writer wrapped in a *bufio.Writer if it is not
// already one.
func BufferedWriter(writer io.Writer) *bufio.Writer {
	if bw, ok := writer.(*bufio.Writer); ok {
		return bw
	}
	return bufio.NewWriterSize(writer, 64*1024)
}
