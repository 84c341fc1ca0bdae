package services

import (
	"fmt"
	"sync"

	"github.com/rizzard/rizzard/internal/config"
	"github.com/rizzard/rizzard/internal/connections"
	"github.com/rizzard/rizzard/internal/infrastructure/anthropic"
	"github.com/rizzard/rizzard/internal/infrastructure/openai"
	"github.com/rizzard/rizzard/internal/services/chat"
	"github.com/rizzard/rizzard/internal/services/completion"
	"github.com/rizzard/rizzard/internal/services/widget"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

const (
	claudeNotConfigured = "Claude API key is not configured. Please set CLAUDE_API environment variable."
	openAINotConfigured = "OpenAI API key is not configured. Please set OPENAI_KEY environment variable."
)

type Services struct {
	chatService       *chat.Implementation
	completionService completion.Service
	widgetClient      *widget.Client
	connections       *connections.Manager
}

// InitializeServices initializes all required services. A missing provider
// credential does not stop startup; the chat proxy reports it per request.
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	provider := config.GetCompletionProvider()
	completionService := newCompletionService(provider)
	log.Info().Str("provider", provider).Msg("Initializing completion service")

	chatService, err := chat.NewService(completionService)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize chat service - required for message processing")
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	log.Info().Msg("Initializing chat service")

	widgetURL := config.GetWidgetAPIURL()
	widgetClient := widget.NewClient(widgetURL, nil)
	log.Info().Str("url", widgetURL).Msg("Initializing widget client")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		chatService:       chatService,
		completionService: completionService,
		widgetClient:      widgetClient,
		connections:       connections.NewManager(connections.DefaultTimeouts),
	}, nil
}

// newCompletionService returns the configured provider, or a stand-in that
// fails every request when its credential is missing.
func newCompletionService(provider string) completion.Service {
	switch provider {
	case config.ProviderOpenAI:
		if svc := openai.NewService(); svc != nil {
			return svc
		}
		return completion.Unconfigured{Detail: openAINotConfigured}
	default:
		if svc := anthropic.NewService(); svc != nil {
			return svc
		}
		return completion.Unconfigured{Detail: claudeNotConfigured}
	}
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Implementation {
	return s.chatService
}

// GetWidgetClient returns the client widget sessions stream through
func (s *Services) GetWidgetClient() *widget.Client {
	return s.widgetClient
}

// GetConnectionManager returns the widget connection manager
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connections
}
