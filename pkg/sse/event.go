// Package sse reads and writes the line-oriented event stream relayed by the
// chat proxy: one `data: <JSON>` line per event, optionally terminated by
// `data: [DONE]`.
package sse

import "encoding/json"

const (
	// DataPrefix starts every event line that carries a payload.
	DataPrefix = "data: "

	// DoneSentinel is the payload of the end-of-stream line.
	DoneSentinel = "[DONE]"

	TypeContentBlockDelta = "content_block_delta"
	TypeTextDelta         = "text_delta"
	TypeError             = "error"
)

// Event is the discriminated payload of one data line. Only content block
// deltas carrying a text delta are accumulated; every other shape is ignored.
//
// Error is kept raw: the proxy sends a string, upstream providers send an object.
type Event struct {
	Type  string          `json:"type"`
	Delta *Delta          `json:"delta,omitempty"`
	Error json.RawMessage `json:"error,omitempty"`
}

// Delta is the incremental part of a content_block_delta event.
type Delta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Fragment returns the text carried by the event and whether it is a text delta.
func (e Event) Fragment() (string, bool) {
	if e.Type != TypeContentBlockDelta || e.Delta == nil || e.Delta.Type != TypeTextDelta {
		return "", false
	}
	return e.Delta.Text, true
}

// TextDelta builds the event that carries one text fragment.
func TextDelta(text string) Event {
	return Event{
		Type:  TypeContentBlockDelta,
		Delta: &Delta{Type: TypeTextDelta, Text: text},
	}
}
