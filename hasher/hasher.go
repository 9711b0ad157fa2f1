// Package hasher provides the streaming SHA-256 primitive shared by the
// manifest engine's file and directory hashing.
package hasher

import (
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
)

const (
	// copyBufferSize is the size of the buffer used when streaming file
	// content into the hash function.
	copyBufferSize = 64 * 1024
)

// Size is the length in bytes of a hash produced by this package.
const Size = sha256.Size

// Stream computes the SHA-256 digest of the entire contents of reader. It
// handles empty input by producing the fixed empty-string SHA-256 digest.
func Stream(reader io.Reader) ([Size]byte, error) {
	h := sha256.New()
	buffer := make([]byte, copyBufferSize)

	if _, err := io.CopyBuffer(h, reader, buffer); err != nil {
		return [Size]byte{}, errors.Wrap(err, "unable to hash stream contents")
	}

	var result [Size]byte
	copy(result[:], h.Sum(nil))
	return result, nil
}

// Bytes computes the SHA-256 digest of an in-memory byte slice. Used for the
// directory composite hash, which is built from a small concatenated buffer
// rather than streamed.
func Bytes(data []byte) [Size]byte {
	var result [Size]byte
	sum := sha256.Sum256(data)
	copy(result[:], sum[:])
	return result
}

// Zero is the fixed all-zero hash value used in TimestampTest manifest mode,
// where content is never actually hashed.
var Zero [Size]byte
