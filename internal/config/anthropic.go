package config

const (
	DefaultClaudeModel     = "claude-3-5-haiku-latest"
	DefaultClaudeMaxTokens = 700
)

// GetClaudeAPIKey returns the Anthropic credential, or an empty string when unset
func GetClaudeAPIKey() string {
	return GetEnvOrDefault("CLAUDE_API", "")
}

func GetClaudeModel() string {
	return GetEnvOrDefault("CLAUDE_MODEL", DefaultClaudeModel)
}

func GetClaudeMaxTokens() int {
	return parseEnvInt("CLAUDE_MAX_TOKENS", DefaultClaudeMaxTokens)
}
