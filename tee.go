package httpcache

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ErrTeeBufferExceeded is the error a slow view's Read returns once its
// unread backlog has exceeded the tee's configured buffer cap. The slow
// view is cancelled at that point; the fast view is unaffected.
var ErrTeeBufferExceeded = errors.New("httpcache: tee slow view exceeded buffer cap")

// ErrTeeCancelled is returned by a slow view's Read after Close has been
// called on the slow view, or on the fast view before the source reached
// EOF or a read error.
var ErrTeeCancelled = errors.New("httpcache: tee view cancelled")

// defaultTeeBufferCap bounds how much of the body the slow (capture) view
// may buffer before it is auto-cancelled, so a fast consumer that drains
// far ahead of a slow or absent insertion path cannot grow memory
// unbounded. 8 MiB covers the overwhelming majority of cacheable
// representations while staying well clear of pathological bodies.
const defaultTeeBufferCap = 8 << 20

// NewTee splits a single upstream byte source into a fast view (handed to
// the application) and a slow view (drained by the insertion path). Only
// the fast view ever reads from source; each fast Read enqueues a private
// copy of the bytes it returns for the slow view to consume later, unless
// the slow view has already been cancelled. bufferCap bounds the slow
// view's backlog; a value <= 0 uses defaultTeeBufferCap.
//
// Closing the fast view closes source; it also cancels the slow view if
// source had not yet reached EOF or a read error, and otherwise leaves the
// slow view to drain its backlog. Closing the slow view only latches its own cancellation; source and fast are
// unaffected. This matches §4.10: the application can consume at its own
// pace while the cache captures the same bytes without a second read of
// source.
func NewTee(source io.ReadCloser, bufferCap int) (fast, slow io.ReadCloser) {
	if bufferCap <= 0 {
		bufferCap = defaultTeeBufferCap
	}
	t := &teeState{source: source, bufferCap: bufferCap}
	t.cond = sync.NewCond(&t.mu)
	return &teeFast{t: t}, &teeSlow{t: t}
}

type teeState struct {
	mu        sync.Mutex
	cond      *sync.Cond
	source    io.ReadCloser
	bufferCap int

	slowBuf       bytes.Buffer
	slowCancelled bool
	slowErr       error // error to surface from the slow view once cancelled, or after the backlog drains

	fastClosed bool
	sourceErr  error // EOF or a genuine read error from source; nil while still open
}

type teeFast struct{ t *teeState }

func (f *teeFast) Read(p []byte) (int, error) {
	t := f.t
	t.mu.Lock()
	if t.fastClosed {
		t.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	t.mu.Unlock()

	n, rerr := t.source.Read(p)

	t.mu.Lock()
	if n > 0 {
		if !t.slowCancelled {
			if t.slowBuf.Len()+n > t.bufferCap {
				t.slowCancelled = true
				t.slowBuf.Reset()
				t.slowErr = ErrTeeBufferExceeded
			} else {
				t.slowBuf.Write(p[:n])
			}
		}
	}
	if rerr != nil && t.sourceErr == nil {
		t.sourceErr = rerr
	}
	t.cond.Broadcast()
	t.mu.Unlock()

	return n, rerr
}

func (f *teeFast) Close() error {
	t := f.t
	t.mu.Lock()
	t.fastClosed = true
	if !t.slowCancelled && t.sourceErr == nil {
		// The fast view is closing before the source reached EOF (or a
		// read error) — a genuine early cancellation, not the ordinary
		// "read to completion, then Close" pattern net/http callers use
		// to release a response body. Only in that case does the slow
		// view have no hope of ever seeing the rest of the bytes, so
		// only then is it cancelled; otherwise it keeps draining its
		// already-buffered backlog and discovers sourceErr on its own.
		t.slowCancelled = true
		t.slowErr = ErrTeeCancelled
		t.slowBuf.Reset()
	}
	t.cond.Broadcast()
	t.mu.Unlock()
	return t.source.Close()
}

type teeSlow struct{ t *teeState }

func (s *teeSlow) Read(p []byte) (int, error) {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		if t.slowCancelled {
			if t.slowBuf.Len() > 0 {
				n, _ := t.slowBuf.Read(p)
				return n, nil
			}
			if t.slowErr != nil {
				return 0, t.slowErr
			}
			return 0, ErrTeeCancelled
		}
		if t.slowBuf.Len() > 0 {
			n, _ := t.slowBuf.Read(p)
			return n, nil
		}
		if t.sourceErr != nil {
			return 0, t.sourceErr
		}
		t.cond.Wait()
	}
}

// Close latches cancellation of the slow view. Per §4.10 this does not
// cancel the upstream source or the fast view.
func (s *teeSlow) Close() error {
	t := s.t
	t.mu.Lock()
	if !t.slowCancelled {
		t.slowCancelled = true
		t.slowErr = ErrTeeCancelled
		t.slowBuf.Reset()
	}
	t.cond.Broadcast()
	t.mu.Unlock()
	return nil
}
