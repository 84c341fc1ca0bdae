package widget

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when the proxy answers with a success status
// and no body.
var ErrEmptyResponse = errors.New("empty response from chat service")

const configurationGuidance = "Sorry, there was an error connecting to Claude. Please check your API key in the .env file (CLAUDE_API)."

// ServiceError is a non-success answer from the chat proxy.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ConfigurationError is a ServiceError caused by a missing or rejected
// credential. It is shown with setup guidance instead of the raw message.
type ConfigurationError struct {
	Err *ServiceError
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s", e.Err.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) UserMessage() string {
	return configurationGuidance
}

var credentialPatterns = []string{"API key", "not set", "not configured", "x-api-key", "authentication_error"}

func classify(err *ServiceError) error {
	for _, p := range credentialPatterns {
		if strings.Contains(err.Message, p) {
			return &ConfigurationError{Err: err}
		}
	}
	return err
}
