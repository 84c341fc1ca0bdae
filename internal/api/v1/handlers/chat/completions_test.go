package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rizzard/rizzard/internal/conversation"
	chatService "github.com/rizzard/rizzard/internal/services/chat"
	"github.com/rizzard/rizzard/internal/services/completion"
	"github.com/rizzard/rizzard/internal/services/widget"
	"github.com/rizzard/rizzard/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider mocks the upstream completion provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Stream(ctx context.Context, messages []conversation.Message) (completion.Stream, error) {
	args := m.Called(ctx, messages)
	stream, _ := args.Get(0).(completion.Stream)
	return stream, args.Error(1)
}

type fakeStream struct {
	fragments []string
	err       error
}

func (s *fakeStream) Recv() (string, error) {
	if len(s.fragments) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	next := s.fragments[0]
	s.fragments = s.fragments[1:]
	return next, nil
}

func (s *fakeStream) Close() error { return nil }

func serve(t *testing.T, provider completion.Service, body string) *httptest.ResponseRecorder {
	t.Helper()

	svc, err := chatService.NewService(provider)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	HandleChat(svc, rr, req)
	return rr
}

func fragmentsOf(t *testing.T, body string) []string {
	t.Helper()
	var out []string
	for text, err := range sse.Fragments(strings.NewReader(body)) {
		require.NoError(t, err)
		out = append(out, text)
	}
	return out
}

const validBody = `{"messages":[{"role":"user","content":"Hello!"}]}`

func TestHandleChatStreams(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Stream", mock.Anything, []conversation.Message{conversation.UserMessage("Hello!")}).
		Return(&fakeStream{fragments: []string{"Hel", "lo"}}, nil)

	rr := serve(t, provider, validBody)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rr.Header().Get("Connection"))
	assert.True(t, rr.Flushed)

	assert.Equal(t, []string{"Hel", "lo"}, fragmentsOf(t, rr.Body.String()))
	assert.True(t, strings.HasSuffix(rr.Body.String(), "data: [DONE]\n\n"))
	provider.AssertExpectations(t)
}

func TestHandleChatDropsBlankMessages(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Stream", mock.Anything, []conversation.Message{
		conversation.UserMessage("one"),
		conversation.UserMessage("two"),
	}).Return(&fakeStream{fragments: []string{"ok"}}, nil)

	rr := serve(t, provider, `{"messages":[
		{"role":"user","content":"one"},
		{"role":"assistant","content":""},
		{"role":"user","content":"two"}]}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	provider.AssertExpectations(t)
}

func TestHandleChatMidStreamError(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Stream", mock.Anything, mock.Anything).
		Return(&fakeStream{fragments: []string{"Hel"}, err: errors.New("overloaded")}, nil)

	rr := serve(t, provider, validBody)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data: {"type":"error","error":"overloaded"}`)
	assert.NotContains(t, rr.Body.String(), "[DONE]")
	assert.Equal(t, []string{"Hel"}, fragmentsOf(t, rr.Body.String()))
}

func TestHandleChatErrors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		provider       func() completion.Service
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "malformed JSON",
			body:           `{"messages":`,
			provider:       func() completion.Service { return new(MockProvider) },
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "empty messages",
			body:           `{"messages":[]}`,
			provider:       func() completion.Service { return new(MockProvider) },
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request",
		},
		{
			name:           "unknown role",
			body:           `{"messages":[{"role":"system","content":"x"}]}`,
			provider:       func() completion.Service { return new(MockProvider) },
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request",
		},
		{
			name:           "only blank content",
			body:           `{"messages":[{"role":"user","content":"  "}]}`,
			provider:       func() completion.Service { return new(MockProvider) },
			expectedStatus: http.StatusBadRequest,
			expectedError:  "non-empty",
		},
		{
			name: "missing credential",
			body: validBody,
			provider: func() completion.Service {
				return completion.Unconfigured{Detail: "Claude API key is not configured. Please set CLAUDE_API environment variable."}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Claude API key is not configured. Please set CLAUDE_API environment variable.",
		},
		{
			name: "upstream rejects before first fragment",
			body: validBody,
			provider: func() completion.Service {
				p := new(MockProvider)
				p.On("Stream", mock.Anything, mock.Anything).Return(&fakeStream{err: errors.New("invalid x-api-key")}, nil)
				return p
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Error setting up chat: invalid x-api-key",
		},
		{
			name: "invalid claude key",
			body: validBody,
			provider: func() completion.Service {
				err := fmt.Errorf("%w: anthropic stream: 401 Unauthorized", completion.ErrInvalidCredential)
				p := new(MockProvider)
				p.On("Stream", mock.Anything, mock.Anything).Return(&fakeStream{err: err}, nil)
				return p
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Error setting up chat: invalid API key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, tt.provider(), tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp map[string]string
			require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&resp))
			assert.Contains(t, resp["error"], tt.expectedError)
		})
	}
}

func TestHandleChatInvalidCredentialReachesWidgetAsConfiguration(t *testing.T) {
	upstreamErr := fmt.Errorf("%w: anthropic stream: 401 Unauthorized invalid x-api-key", completion.ErrInvalidCredential)

	tests := []struct {
		name string
		err  error
	}{
		{"wrapped by provider", upstreamErr},
		{"raw anthropic text", errors.New(`401 Unauthorized {"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockProvider)
			provider.On("Stream", mock.Anything, mock.Anything).Return(&fakeStream{err: tt.err}, nil)

			svc, err := chatService.NewService(provider)
			require.NoError(t, err)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				HandleChat(svc, w, r)
			}))
			defer server.Close()

			_, err = widget.NewClient(server.URL, server.Client()).Send(context.Background(),
				[]conversation.Message{conversation.UserMessage("Hello!")})

			var ce *widget.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, http.StatusInternalServerError, ce.Err.StatusCode)
			assert.Equal(t,
				"Sorry, there was an error connecting to Claude. Please check your API key in the .env file (CLAUDE_API).",
				conversation.Describe(err))
		})
	}
}
