package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rizzard/rizzard/internal/config"
	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/rizzard/rizzard/internal/services/completion"
	"github.com/rizzard/rizzard/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

type Service struct {
	mu        sync.RWMutex
	client    *openai.Client
	model     string
	maxTokens int
}

func NewService() *Service {
	log := logger.For(logger.COMPLETION)
	log.Info().Msg("Initialising OpenAI service")

	key := config.GetOpenAIKey()
	if key == "" {
		log.Warn().Msg("OpenAI service not configured - OPENAI_KEY missing")
		return nil
	}

	return newService(openai.DefaultConfig(key), config.GetOpenAIModel(), config.GetOpenAIMaxTokens())
}

func newService(cfg openai.ClientConfig, model string, maxTokens int) *Service {
	return &Service{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *Service) Stream(ctx context.Context, messages []conversation.Message) (completion.Stream, error) {
	req := openai.ChatCompletionRequest{
		Model:     s.model,
		Messages:  toChatMessages(messages),
		MaxTokens: s.maxTokens,
		Stream:    true,
	}

	stream, err := s.GetClient().CreateChatCompletionStream(ctx, req)
	if err != nil {
		if unauthorized(err) {
			return nil, fmt.Errorf("%w: openai stream: %w", completion.ErrInvalidCredential, err)
		}
		return nil, fmt.Errorf("openai stream: %w", err)
	}

	return &Stream{upstream: stream}, nil
}

func unauthorized(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusUnauthorized
	}
	return false
}

func toChatMessages(messages []conversation.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}

// Stream skips chunks that carry no content, such as the opening role chunk.
type Stream struct {
	upstream *openai.ChatCompletionStream
}

func (s *Stream) Recv() (string, error) {
	for {
		resp, err := s.upstream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *Stream) Close() error {
	return s.upstream.Close()
}
