package widget

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/rizzard/rizzard/internal/metrics"
	"github.com/rizzard/rizzard/pkg/logger"
	"github.com/rizzard/rizzard/pkg/sse"
	"github.com/rs/zerolog"
)

// Transport opens the streamed reply for a conversation history.
type Transport interface {
	Send(ctx context.Context, history []conversation.Message) (io.ReadCloser, error)
}

// Session is one widget's conversation. Submit may be called from any
// goroutine; only one exchange runs at a time.
type Session struct {
	id        string
	mu        sync.Mutex
	conv      *conversation.Conversation
	transport Transport
	publish   func(conversation.Snapshot)
	log       zerolog.Logger
}

// NewSession returns an idle session. publish receives a snapshot after every
// change to the conversation and must not call back into the session.
func NewSession(transport Transport, publish func(conversation.Snapshot)) *Session {
	if publish == nil {
		publish = func(conversation.Snapshot) {}
	}

	id := uuid.NewString()
	return &Session{
		id:        id,
		conv:      conversation.New(),
		transport: transport,
		publish:   publish,
		log:       logger.For(logger.WIDGET).With().Str("session_id", id).Logger(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current conversation.
func (s *Session) Snapshot() conversation.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Snapshot()
}

// Submit runs one exchange for text and returns when it has finished or
// failed. It returns conversation.ErrBusy or conversation.ErrEmptySubmission
// without touching the conversation. Failures of the exchange itself are
// recorded in the transcript, not returned.
func (s *Session) Submit(ctx context.Context, text string) error {
	done, err := s.Start(ctx, text)
	if err != nil {
		return err
	}
	<-done
	return nil
}

// Start begins an exchange and streams the reply in the background. The
// submission is accepted or rejected before Start returns; the returned
// channel is closed once the exchange has finished or failed.
func (s *Session) Start(ctx context.Context, text string) (<-chan struct{}, error) {
	history, err := s.apply(func(c *conversation.Conversation) ([]conversation.Message, error) {
		return c.Begin(text)
	})
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.stream(ctx, history)
	}()
	return done, nil
}

func (s *Session) stream(ctx context.Context, history []conversation.Message) {
	s.log.Debug().Int("history", len(history)).Msg("Exchange started")

	body, err := s.transport.Send(ctx, history)
	if err != nil {
		s.fail(err, 0)
		return
	}

	// Abandoning the exchange releases the response body.
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer func() {
		stop()
		body.Close()
	}()

	var acc conversation.Accumulator
	dec := sse.NewDecoder(body)
	defer func() {
		if n := dec.Skipped(); n > 0 {
			metrics.SkippedEvents.Add(float64(n))
			s.log.Debug().Int("skipped", n).Msg("Ignored malformed stream events")
		}
	}()

	for fragment, err := range dec.Fragments() {
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			s.fail(err, acc.Count())
			return
		}

		content := acc.Add(fragment)
		s.apply(func(c *conversation.Conversation) ([]conversation.Message, error) {
			return nil, c.Update(content)
		})
	}

	// Reaching the sentinel or the end of the body finishes the exchange even
	// if ctx was cancelled meanwhile.
	s.apply(func(c *conversation.Conversation) ([]conversation.Message, error) {
		c.Finish()
		return nil, nil
	})
	metrics.WidgetExchanges.WithLabelValues(metrics.OutcomeOK).Inc()
	s.log.Debug().Int("fragments", acc.Count()).Msg("Exchange finished")
}

func (s *Session) fail(err error, fragments int) {
	outcome := metrics.OutcomeUpstream
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome = metrics.OutcomeCanceled
	}
	metrics.WidgetExchanges.WithLabelValues(outcome).Inc()
	s.log.Warn().Err(err).Int("fragments", fragments).Msg("Exchange failed")

	s.apply(func(c *conversation.Conversation) ([]conversation.Message, error) {
		c.Fail(err)
		return nil, nil
	})
}

// apply mutates the conversation under the lock and publishes the result.
// Publishing happens under the lock so subscribers see snapshots in order.
func (s *Session) apply(fn func(*conversation.Conversation) ([]conversation.Message, error)) ([]conversation.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := fn(s.conv)
	if err != nil {
		return nil, err
	}
	s.publish(s.conv.Snapshot())
	return out, nil
}
