// Package conversation holds the chat transcript and the state machine that
// drives one exchange at a time: a user submission opens an assistant
// message, streamed fragments replace its content, and the exchange either
// finishes or fails back to idle.
package conversation

import (
	"errors"
	"strings"
)

var (
	// ErrBusy is returned when a submission arrives while an exchange is open.
	ErrBusy = errors.New("an exchange is already in flight")

	// ErrEmptySubmission is returned for blank user input.
	ErrEmptySubmission = errors.New("submission is empty")

	// ErrNoOpenMessage is returned when updating without an open assistant message.
	ErrNoOpenMessage = errors.New("no open assistant message")
)

// State of the in-flight exchange.
type State int

const (
	StateIdle State = iota
	StateUserSubmitted
	StateAssistantOpen
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUserSubmitted:
		return "user-submitted"
	case StateAssistantOpen:
		return "assistant-open"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the conversation suitable for rendering.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Busy     bool      `json:"busy"`
	State    string    `json:"state"`
}

// Conversation is an ordered transcript with at most one open message. The
// open message, when present, is always the last element and always has the
// assistant role.
//
// Conversation is not safe for concurrent use; callers serialize access.
type Conversation struct {
	messages []Message
	open     bool
	state    State
}

// New returns an empty, idle conversation.
func New() *Conversation {
	return &Conversation{messages: make([]Message, 0)}
}

// State returns the current exchange state.
func (c *Conversation) State() State {
	return c.state
}

// Busy reports whether an exchange is in flight.
func (c *Conversation) Busy() bool {
	return c.state != StateIdle
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Open returns the open assistant message, if any.
func (c *Conversation) Open() (Message, bool) {
	if !c.open {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Snapshot returns a copy of the current state.
func (c *Conversation) Snapshot() Snapshot {
	return Snapshot{
		Messages: c.Messages(),
		Busy:     c.Busy(),
		State:    c.state.String(),
	}
}

// Begin starts an exchange: the trimmed text is appended as a user message,
// followed by an empty open assistant message. It returns the history to send
// upstream, which excludes the placeholder.
//
// A submission while not idle, or a blank one, leaves the conversation untouched.
func (c *Conversation) Begin(text string) ([]Message, error) {
	if c.state != StateIdle {
		return nil, ErrBusy
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySubmission
	}

	c.messages = append(c.messages, UserMessage(text))
	c.state = StateUserSubmitted
	history := c.Messages()

	c.messages = append(c.messages, AssistantMessage(""))
	c.open = true
	c.state = StateAssistantOpen

	return history, nil
}

// Update replaces the content of the open message.
func (c *Conversation) Update(content string) error {
	if !c.open {
		return ErrNoOpenMessage
	}
	c.messages[len(c.messages)-1] = AssistantMessage(content)
	return nil
}

// Finish closes the open message and returns to idle.
func (c *Conversation) Finish() {
	c.open = false
	c.state = StateIdle
}

// Fail runs the error branch and returns to idle. An open message that never
// received content is removed; a partial answer is kept and followed by a
// separate assistant message describing err.
func (c *Conversation) Fail(err error) {
	c.state = StateError

	if c.open {
		last := c.messages[len(c.messages)-1]
		if last.Content == "" {
			c.messages = c.messages[:len(c.messages)-1]
		}
		c.open = false
	}

	c.messages = append(c.messages, AssistantMessage(Describe(err)))
	c.state = StateIdle
}
