package chat

import (
	"context"

	"github.com/rizzard/rizzard/internal/conversation"
)

// Service defines the interface for chat operations
type Service interface {
	// StreamChat opens a streamed reply to a conversation history. Failures to
	// reach the upstream provider surface here, before any fragment is relayed.
	StreamChat(ctx context.Context, messages []conversation.Message) (*Reply, error)
}
