package anthropic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/rizzard/rizzard/internal/config"
	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/rizzard/rizzard/internal/services/completion"
	"github.com/rizzard/rizzard/pkg/logger"
)

type Service struct {
	mu        sync.RWMutex
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewService builds the Anthropic provider from CLAUDE_API. It returns nil
// when the key is missing.
func NewService() *Service {
	log := logger.For(logger.COMPLETION)
	log.Info().Msg("Initialising Anthropic service")

	key := config.GetClaudeAPIKey()
	if key == "" {
		log.Warn().Msg("Anthropic service not configured - CLAUDE_API missing")
		return nil
	}

	return newService(config.GetClaudeModel(), int64(config.GetClaudeMaxTokens()), option.WithAPIKey(key))
}

func newService(model string, maxTokens int64, opts ...option.RequestOption) *Service {
	return &Service{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (s *Service) Stream(ctx context.Context, messages []conversation.Message) (completion.Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		Messages:  toMessageParams(messages),
	}

	return &Stream{upstream: s.client.Messages.NewStreaming(ctx, params)}, nil
}

func toMessageParams(messages []conversation.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == conversation.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}

// Stream adapts the SDK event stream to text fragments.
type Stream struct {
	upstream *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

func (s *Stream) Recv() (string, error) {
	for s.upstream.Next() {
		event := s.upstream.Current()
		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type == "text_delta" {
				return event.Delta.Text, nil
			}
		case "message_stop":
			return "", io.EOF
		}
	}

	if err := s.upstream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: anthropic stream: %w", completion.ErrInvalidCredential, err)
		}
		return "", fmt.Errorf("anthropic stream: %w", err)
	}
	return "", io.EOF
}

func (s *Stream) Close() error {
	return s.upstream.Close()
}
