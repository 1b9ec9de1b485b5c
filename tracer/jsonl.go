package tracer

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// JSONLWriter writes ExecutionStep records as JSON Lines (one JSON object per
// line) to a caller-supplied io.Writer. It is safe for concurrent use by
// multiple goroutines.
type JSONLWriter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	buf    *bufio.Writer
	closed bool
}

// ErrTraceWriterClosed is returned when WriteStep is called after Close.
var ErrTraceWriterClosed = errors.New("jsonl trace writer is closed")

// NewJSONLWriter creates a JSONLWriter over the provided io.Writer. The
// writer passed in is never closed by JSONLWriter; Close only flushes the
// internal buffer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	buf := bufio.NewWriterSize(w, 64*1024)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	return &JSONLWriter{
		enc: enc,
		buf: buf,
	}
}

// WriteStep encodes a single step as a JSON object followed by a newline.
func (w *JSONLWriter) WriteStep(step *ExecutionStep) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrTraceWriterClosed
	}

	// json.Encoder.Encode() writes a single JSON value followed by '\n'.
	return w.enc.Encode(step)
}

// WriteTrace encodes every step of the trace in recorded order.
func (w *JSONLWriter) WriteTrace(trace Trace) error {
	for i := range trace {
		if err := w.WriteStep(&trace[i]); err != nil {
			return err
		}
	}
	return nil
}

// Flush forces buffered data to be written to the underlying writer.
func (w *JSONLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrTraceWriterClosed
	}

	return w.buf.Flush()
}

// Close flushes any buffered data and rejects further writes. The underlying
// writer stays open; the caller owns it.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	return w.buf.Flush()
}
