// Package completion defines the upstream streaming contract the chat proxy
// relays from. Concrete providers live under internal/infrastructure.
package completion

import (
	"context"
	"errors"

	"github.com/rizzard/rizzard/internal/conversation"
)

var (
	// ErrNotConfigured is returned when the selected provider has no credential.
	ErrNotConfigured = errors.New("completion provider is not configured")

	// ErrInvalidCredential wraps upstream authentication failures.
	ErrInvalidCredential = errors.New("invalid API key")
)

// Stream yields text fragments in order. Recv returns io.EOF once the
// upstream response is complete.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Service opens a streamed completion for a conversation history
type Service interface {
	Stream(ctx context.Context, messages []conversation.Message) (Stream, error)
}

// NotConfiguredError carries the operator-facing detail for a missing
// credential. It matches ErrNotConfigured with errors.Is.
type NotConfiguredError struct {
	Detail string
}

func (e *NotConfiguredError) Error() string {
	return e.Detail
}

func (e *NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}

// Unconfigured is the Service used when no provider credential is present.
// Every call fails so the proxy can report it per request.
type Unconfigured struct {
	Detail string
}

func (u Unconfigured) Stream(context.Context, []conversation.Message) (Stream, error) {
	return nil, &NotConfiguredError{Detail: u.Detail}
}
