// Package duplex implements the in-process byte duplex used for "local
// pipeline" mode: a sender task and a receiver task running in the same
// process, coupled by two unidirectional byte queues instead of an OS pipe
// or socket.
//
// Grounded on the teacher's mux package (mutex-guarded shared state, sticky
// error handling, bufio-friendly Read/Write signatures), but without
// multiplexing or channel tagging: each queue carries exactly one stream.
package duplex

import (
	"sync"

	"github.com/pkg/errors"
)

// maxWriteSize caps a single Write call's buffer, matching the 16 MiB limit
// from spec.md §4.7.
const maxWriteSize = 16 * 1024 * 1024

// ErrWriteTooLarge is returned by Write when the supplied buffer exceeds
// maxWriteSize.
var ErrWriteTooLarge = errors.New("write exceeds 16 MiB duplex limit")

// queue is a single unidirectional byte channel: a FIFO of buffers, drained
// in order with a cursor into the head buffer. Closing the write side turns
// a drained queue into EOF rather than blocking forever.
type queue struct {
	lock    sync.Mutex
	notify  sync.Cond
	buffers [][]byte
	cursor  int
	closed  bool
}

func newQueue() *queue {
	q := &queue{}
	q.notify.L = &q.lock
	return q
}

// push appends a copy of buffer to the queue, so callers may reuse their
// slice as soon as push returns.
func (q *queue) push(buffer []byte) (int, error) {
	if len(buffer) > maxWriteSize {
		return 0, ErrWriteTooLarge
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return 0, errors.New("write to closed duplex queue")
	}

	if len(buffer) > 0 {
		// Copy defensively: callers of io.Writer may reuse their buffer
		// immediately after Write returns.
		stored := make([]byte, len(buffer))
		copy(stored, buffer)
		q.buffers = append(q.buffers, stored)
	}
	q.notify.Broadcast()

	return len(buffer), nil
}

// closeWrite marks the write side closed; any data already queued remains
// readable, but once drained the read side sees EOF.
func (q *queue) closeWrite() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.closed = true
	q.notify.Broadcast()
}

// pull copies as much available data as fits into buffer, blocking until at
// least one byte is available or the queue is closed and drained (EOF, n=0,
// err=nil).
func (q *queue) pull(buffer []byte) (int, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for len(q.buffers) == 0 {
		if q.closed {
			return 0, nil
		}
		q.notify.Wait()
	}

	head := q.buffers[0]
	n := copy(buffer, head[q.cursor:])
	q.cursor += n

	if q.cursor >= len(head) {
		q.buffers = q.buffers[1:]
		q.cursor = 0
	}

	return n, nil
}
