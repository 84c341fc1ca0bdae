// Package widget runs the chat widget's exchanges on the server: it posts the
// conversation to the chat proxy, decodes the streamed reply and drives the
// conversation state for one websocket client.
package widget

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/rizzard/rizzard/pkg/httpext"
)

// Client posts conversations to the chat proxy route
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a Client for the proxy at url. A nil httpClient uses
// http.DefaultClient.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, httpClient: httpClient}
}

type sendRequest struct {
	Messages []conversation.Message `json:"messages"`
}

// Send posts history and returns the streamed response body, which the caller
// must close. Cancelling ctx aborts the request and any read in progress.
func (c *Client) Send(ctx context.Context, history []conversation.Message) (io.ReadCloser, error) {
	payload, err := json.Marshal(sendRequest{Messages: history})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send chat request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		message := httpext.ReadError(resp.Body)
		if message == "" {
			message = fmt.Sprintf("API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return nil, classify(&ServiceError{StatusCode: resp.StatusCode, Message: message})
	}

	body := bufio.NewReader(resp.Body)
	if _, err := body.Peek(1); err != nil {
		resp.Body.Close()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyResponse
		}
		return nil, fmt.Errorf("read chat response: %w", err)
	}

	return &responseBody{Reader: body, closer: resp.Body}, nil
}

type responseBody struct {
	*bufio.Reader
	closer io.Closer
}

func (b *responseBody) Close() error {
	return b.closer.Close()
}
