package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/rizzard/rizzard/internal/services/completion"
	"github.com/rs/zerolog/log"
)

// ErrNoMessages is returned when nothing remains to send after blank turns are dropped.
var ErrNoMessages = errors.New("no messages with content")

type Implementation struct {
	mu       sync.RWMutex
	provider completion.Service
}

func NewService(provider completion.Service) (*Implementation, error) {
	if provider == nil {
		return nil, fmt.Errorf("completion provider is required")
	}

	return &Implementation{provider: provider}, nil
}

func (s *Implementation) StreamChat(ctx context.Context, messages []conversation.Message) (*Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages = completion.Prepare(messages)
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	log.Debug().Int("message_count", len(messages)).Msg("Opening completion stream")

	stream, err := s.provider.Stream(ctx, messages)
	if err != nil {
		return nil, err
	}

	// Pull the first fragment so that authentication and request errors are
	// reported before the caller commits to a streamed response.
	first, err := stream.Recv()
	switch {
	case errors.Is(err, io.EOF):
		return &Reply{stream: stream, done: true}, nil
	case err != nil:
		_ = stream.Close()
		return nil, err
	}

	return &Reply{stream: stream, pending: first, primed: true}, nil
}

// Reply is a streamed completion whose first fragment has already been read.
type Reply struct {
	stream  completion.Stream
	pending string
	primed  bool
	done    bool
}

// Recv returns the next fragment, or io.EOF once the reply is complete.
func (r *Reply) Recv() (string, error) {
	if r.primed {
		r.primed = false
		return r.pending, nil
	}
	if r.done {
		return "", io.EOF
	}

	text, err := r.stream.Recv()
	if err != nil {
		r.done = true
	}
	return text, err
}

func (r *Reply) Close() error {
	return r.stream.Close()
}
