// Package transmit implements the Transmitter abstraction (§4.4): the
// capability that materializes a single file on the target side, guaranteed
// on success to exist with the source's content and modification time.
//
// Grounded on original_source/src/file_transfer.rs and
// src/file_transfer/{local,remote}.rs's Transmitter trait and its two
// implementations (LocalTransmitter, CommandTransmitter), adapted to a
// narrow Go interface per spec.md §9's "do not introduce deep hierarchies"
// guidance.
package transmit

// Transmitter materializes a single file, named by its root-relative,
// slash-separated path, on the target side.
type Transmitter interface {
	Transmit(relativePath string) error
}
