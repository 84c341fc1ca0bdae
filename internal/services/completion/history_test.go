package completion

import (
	"context"
	"testing"

	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	in := []conversation.Message{
		conversation.UserMessage("hi"),
		conversation.AssistantMessage(""),
		conversation.UserMessage("  "),
		conversation.UserMessage("again"),
	}

	assert.Equal(t, []conversation.Message{
		conversation.UserMessage("hi"),
		conversation.UserMessage("again"),
	}, Prepare(in))
	assert.Empty(t, Prepare(nil))
}

func TestUnconfigured(t *testing.T) {
	var svc Service = Unconfigured{Detail: "key missing"}

	stream, err := svc.Stream(context.Background(), []conversation.Message{conversation.UserMessage("hi")})
	assert.Nil(t, stream)
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nc *NotConfiguredError
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, "key missing", nc.Detail)
}
