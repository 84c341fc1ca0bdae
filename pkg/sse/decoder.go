package sse

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Decoder turns a raw byte stream into the text fragments it carries. Lines
// are reassembled across reads, so the result does not depend on how the
// stream was split into network chunks.
//
// A Decoder is single-use: once it reports the end of the stream it keeps
// doing so.
type Decoder struct {
	r       *bufio.Reader
	done    bool
	skipped int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Fragments is shorthand for NewDecoder(r).Fragments().
func Fragments(r io.Reader) iter.Seq2[string, error] {
	return NewDecoder(r).Fragments()
}

// Next returns the next text fragment. It returns io.EOF when the stream ends
// or the [DONE] sentinel is read. Any other error comes from the underlying
// reader and ends decoding.
func (d *Decoder) Next() (string, error) {
	for !d.done {
		line, err := d.r.ReadString('\n')
		if err != nil {
			d.done = true
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("read event stream: %w", err)
			}
		}

		text, ok, stop := d.parseLine(line)
		if stop {
			d.done = true
			break
		}
		if ok {
			return text, nil
		}
	}
	return "", io.EOF
}

// Fragments returns a lazy sequence over the remaining fragments, in arrival
// order. A read error is yielded once and ends the sequence; a clean end of
// stream simply ends it.
func (d *Decoder) Fragments() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			text, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// Skipped reports how many data lines were dropped because their payload
// could not be parsed.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// parseLine classifies one logical line. ok is set when the line carried a
// text fragment, stop when it was the end-of-stream sentinel.
func (d *Decoder) parseLine(line string) (text string, ok bool, stop bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" || !strings.HasPrefix(line, DataPrefix) {
		return "", false, false
	}

	data := strings.TrimSpace(line[len(DataPrefix):])
	if data == DoneSentinel {
		return "", false, true
	}

	var ev Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		// malformed lines never abort the stream
		d.skipped++
		return "", false, false
	}

	text, ok = ev.Fragment()
	return text, ok, false
}
