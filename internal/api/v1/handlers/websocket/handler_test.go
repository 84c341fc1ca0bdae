package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rizzard/rizzard/internal/connections"
	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/rizzard/rizzard/internal/services/widget"
	"github.com/rizzard/rizzard/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProxy(t *testing.T, release <-chan struct{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		enc := sse.NewEncoder(w)
		_ = enc.WriteDelta("Hel")
		if release != nil {
			<-release
		}
		_ = enc.WriteDelta("lo")
		_ = enc.WriteDone()
	}))
}

func dial(t *testing.T, manager *connections.Manager, proxyURL string) *websocket.Conn {
	t.Helper()

	client := widget.NewClient(proxyURL, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWidgetWebSocket(manager, client, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerFrame) bool) ServerFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var frame ServerFrame
		require.NoError(t, conn.ReadJSON(&frame))
		if match(frame) {
			return frame
		}
	}
}

func TestWidgetExchange(t *testing.T) {
	proxy := newProxy(t, nil)
	defer proxy.Close()

	manager := connections.NewManager(connections.DefaultTimeouts)
	conn := dial(t, manager, proxy.URL)

	initial := readUntil(t, conn, func(f ServerFrame) bool { return true })
	assert.Equal(t, FrameConversation, initial.Type)
	assert.False(t, initial.Busy)
	assert.Empty(t, initial.Messages)
	assert.Equal(t, 1, manager.GetConnectionCount())

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameSubmit, Content: "hi"}))

	final := readUntil(t, conn, func(f ServerFrame) bool {
		return !f.Busy && len(f.Messages) == 2
	})
	assert.Equal(t, []conversation.Message{
		conversation.UserMessage("hi"),
		conversation.AssistantMessage("Hello"),
	}, final.Messages)
}

func TestWidgetDropsSubmissionWhileBusy(t *testing.T) {
	release := make(chan struct{})
	proxy := newProxy(t, release)
	defer proxy.Close()

	conn := dial(t, connections.NewManager(connections.DefaultTimeouts), proxy.URL)
	readUntil(t, conn, func(f ServerFrame) bool { return true })

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameSubmit, Content: "first"}))
	readUntil(t, conn, func(f ServerFrame) bool {
		return f.Busy && len(f.Messages) == 2 && f.Messages[1].Content == "Hel"
	})

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameSubmit, Content: "second"}))
	// Frames are handled in order, so the error reply means "second" was seen.
	require.NoError(t, conn.WriteJSON(ClientFrame{Type: "noop"}))
	readUntil(t, conn, func(f ServerFrame) bool { return f.Type == FrameError })
	close(release)

	final := readUntil(t, conn, func(f ServerFrame) bool { return !f.Busy })
	assert.Equal(t, []conversation.Message{
		conversation.UserMessage("first"),
		conversation.AssistantMessage("Hello"),
	}, final.Messages)
}

func TestWidgetUnknownFrame(t *testing.T) {
	conn := dial(t, connections.NewManager(connections.DefaultTimeouts), "http://127.0.0.1:0")
	readUntil(t, conn, func(f ServerFrame) bool { return true })

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	frame := readUntil(t, conn, func(f ServerFrame) bool { return f.Type == FrameError })
	assert.Equal(t, "unknown frame type: ping", frame.Error)
}

func TestWidgetDisconnectUnregisters(t *testing.T) {
	manager := connections.NewManager(connections.DefaultTimeouts)
	conn := dial(t, manager, "http://127.0.0.1:0")
	readUntil(t, conn, func(f ServerFrame) bool { return true })
	require.Equal(t, 1, manager.GetConnectionCount())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_, _, _ = conn.ReadMessage()

	assert.Eventually(t, func() bool { return manager.GetConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
