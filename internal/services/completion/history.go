package completion

import (
	"strings"

	"github.com/rizzard/rizzard/internal/conversation"
)

// Prepare drops messages with blank content and returns what remains.
// Upstream providers reject empty turns, and a finished exchange that
// produced no text leaves one in the transcript.
func Prepare(messages []conversation.Message) []conversation.Message {
	out := make([]conversation.Message, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
