package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// fanoutWriter serializes writes to one or more buffered sinks. Log lines
// are flushed per write so tail -f on a file sink stays current.
type fanoutWriter struct {
	mu    sync.Mutex
	sinks []*bufio.Writer
}

func newFanoutWriter(writers []io.Writer, bufSize int) *fanoutWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	sinks := make([]*bufio.Writer, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		sinks = append(sinks, bufio.NewWriterSize(w, bufSize))
	}
	return &fanoutWriter{sinks: sinks}
}

// Write fans the payload out to all sinks, stopping at the first error.
func (w *fanoutWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			return err
		}
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Flush drains all sink buffers and joins any errors encountered.
func (w *fanoutWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
