package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Encoder writes events in the format read by Decoder. When the underlying
// writer is an http.Flusher every frame is flushed as soon as it is written.
type Encoder struct {
	w io.Writer
	f http.Flusher
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.f = f
	}
	return e
}

// WriteEvent marshals v and writes it as one data frame.
func (e *Encoder) WriteEvent(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return e.writeFrame(payload)
}

// WriteDelta writes a text fragment.
func (e *Encoder) WriteDelta(text string) error {
	return e.WriteEvent(TextDelta(text))
}

// WriteError writes an error event. Readers ignore it, it is informational.
func (e *Encoder) WriteError(message string) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal error event: %w", err)
	}
	return e.WriteEvent(Event{Type: TypeError, Error: raw})
}

// WriteDone writes the end-of-stream sentinel.
func (e *Encoder) WriteDone() error {
	return e.writeFrame([]byte(DoneSentinel))
}

func (e *Encoder) writeFrame(payload []byte) error {
	frame := make([]byte, 0, len(DataPrefix)+len(payload)+2)
	frame = append(frame, DataPrefix...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')

	if _, err := e.w.Write(frame); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if e.f != nil {
		e.f.Flush()
	}
	return nil
}
