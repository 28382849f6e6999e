package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

type writeOp struct {
	data []byte
	ack  chan error
}

// asyncWriter fans log lines out to its sinks from a single goroutine. Sinks
// are flushed whenever the queue drains, so bursts are written in batches.
type asyncWriter struct {
	ops   chan writeOp
	done  chan struct{}
	sinks []*bufio.Writer

	mu     sync.RWMutex // guards closed and sends on ops
	closed bool

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		ops:  make(chan writeOp, 256),
		done: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for op := range w.ops {
		if len(op.data) > 0 {
			w.fail(w.writeAll(op.data))
		}
		switch {
		case op.ack != nil:
			op.ack <- w.flushAll()
		case len(w.ops) == 0:
			w.fail(w.flushAll())
		}
	}
	w.fail(w.flushAll())
}

// Write queues a copy of p. It blocks while the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := w.firstErr(); err != nil {
		return err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return io.ErrClosedPipe
	}
	w.ops <- writeOp{data: append([]byte(nil), p...)}
	return nil
}

// Flush returns once everything queued before it reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.firstErr(); err != nil {
		return err
	}
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return nil
	}
	ack := make(chan error, 1)
	w.ops <- writeOp{ack: ack}
	w.mu.RUnlock()
	return <-ack
}

// Close drains the queue and returns the first write error.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ops)
	}
	w.mu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) writeAll(p []byte) error {
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushAll() error {
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
