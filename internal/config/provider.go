package config

import (
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// GetCompletionProvider returns which upstream serves the chat proxy.
// Unknown values fall back to anthropic.
func GetCompletionProvider() string {
	provider := strings.ToLower(GetEnvOrDefault("COMPLETION_PROVIDER", ProviderAnthropic))
	switch provider {
	case ProviderAnthropic, ProviderOpenAI:
		return provider
	default:
		log.Warn().Str("provider", provider).Msg("Unknown completion provider, using anthropic")
		return ProviderAnthropic
	}
}
