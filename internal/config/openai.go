package config

import "github.com/sashabaranov/go-openai"

const DefaultOpenAIMaxTokens = 700

// GetOpenAIKey returns the current OpenAI key
func GetOpenAIKey() string {
	return GetEnvOrDefault("OPENAI_KEY", "")
}

func GetOpenAIModel() string {
	return GetEnvOrDefault("OPENAI_MODEL", openai.GPT4oMini)
}

func GetOpenAIMaxTokens() int {
	return parseEnvInt("OPENAI_MAX_TOKENS", DefaultOpenAIMaxTokens)
}
