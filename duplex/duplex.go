package duplex

import "io"

// Side is one endpoint of a Pair: an io.ReadWriteCloser backed by one queue
// for outbound data and another for inbound data.
type Side struct {
	in  *queue
	out *queue
}

// Read implements io.Reader, draining the inbound queue. A closed, drained
// write side surfaces as io.EOF: the queue itself produces a zero-length
// read with no error once closed, but io.Reader's contract requires io.EOF
// for callers like io.Copy and bufio.Reader to terminate instead of spinning,
// so Read translates the zero-length, no-error condition into io.EOF here.
func (s *Side) Read(buffer []byte) (int, error) {
	n, err := s.in.pull(buffer)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write implements io.Writer, appending to the outbound queue.
func (s *Side) Write(buffer []byte) (int, error) {
	return s.out.push(buffer)
}

// Close closes the outbound queue's write side, signaling EOF to whatever is
// reading the other Side of the pair. It does not affect this Side's own
// Read.
func (s *Side) Close() error {
	s.out.closeWrite()
	return nil
}

// Pair is a pair of connected duplex endpoints: whatever is written to one
// Side's Write is what the other Side's Read observes, and vice versa. It
// models spec.md §4.7's "two unidirectional byte queues stitched into a
// reader/writer pair for same-process sender/receiver pairing".
type Pair struct {
	A *Side
	B *Side
}

// NewPair creates a connected pair of in-process duplex endpoints.
func NewPair() *Pair {
	ab := newQueue()
	ba := newQueue()
	return &Pair{
		A: &Side{in: ba, out: ab},
		B: &Side{in: ab, out: ba},
	}
}
