package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rizzard/rizzard/internal/connections"
	"github.com/rizzard/rizzard/internal/conversation"
	"github.com/rizzard/rizzard/internal/services/widget"
	"github.com/rizzard/rizzard/pkg/logger"
)

const (
	FrameSubmit       = "submit"
	FrameConversation = "conversation"
	FrameError        = "error"

	maxMessageSize = 64 * 1024
	outboundBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the configured site origin once the widget is embedded cross-site
		return true
	},
}

// ClientFrame is a message sent by the widget
type ClientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ServerFrame is a message sent to the widget
type ServerFrame struct {
	Type     string                 `json:"type"`
	Busy     bool                   `json:"busy"`
	Messages []conversation.Message `json:"messages,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

func conversationFrame(s conversation.Snapshot) ServerFrame {
	return ServerFrame{Type: FrameConversation, Busy: s.Busy, Messages: s.Messages}
}

// HandleWidgetWebSocket binds one widget session to a websocket connection.
// Every change to the conversation is pushed as a conversation frame.
func HandleWidgetWebSocket(manager *connections.Manager, transport widget.Transport, w http.ResponseWriter, r *http.Request) {
	log := logger.For(logger.WIDGET)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("client_ip", r.RemoteAddr).Msg("Failed to upgrade widget connection")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outbound := make(chan ServerFrame, outboundBuffer)
	publish := func(s conversation.Snapshot) {
		select {
		case outbound <- conversationFrame(s):
		case <-ctx.Done():
		}
	}

	session := widget.NewSession(transport, publish)
	manager.AddConnection(conn, session)
	defer manager.RemoveConnection(conn)

	sessionLog := log.With().Str("session_id", session.ID()).Str("client_ip", r.RemoteAddr).Logger()
	sessionLog.Info().Msg("Widget connected")

	timeouts := manager.GetTimeouts()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeLoop(ctx, conn, outbound, timeouts)
		// A dead writer means a dead connection; unblock the reader.
		conn.Close()
	}()

	publish(session.Snapshot())

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	for {
		var frame ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sessionLog.Warn().Err(err).Msg("Unexpected widget connection closure")
			} else {
				sessionLog.Info().Msg("Widget disconnected")
			}
			break
		}

		switch frame.Type {
		case FrameSubmit:
			_, err := session.Start(ctx, frame.Content)
			switch {
			case errors.Is(err, conversation.ErrBusy):
				sessionLog.Debug().Msg("Dropped submission while an exchange is in flight")
			case errors.Is(err, conversation.ErrEmptySubmission):
				sessionLog.Debug().Msg("Dropped blank submission")
			}
		default:
			sessionLog.Debug().Str("type", frame.Type).Msg("Unknown widget frame")
			select {
			case outbound <- ServerFrame{Type: FrameError, Error: "unknown frame type: " + frame.Type}:
			case <-ctx.Done():
			}
		}
	}

	cancel()
	<-writerDone
}

func writeLoop(ctx context.Context, conn *websocket.Conn, outbound <-chan ServerFrame, timeouts connections.TimeoutConfig) {
	ticker := time.NewTicker(timeouts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(timeouts.WriteWait))
			return
		case frame := <-outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(timeouts.WriteWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.WriteWait)); err != nil {
				return
			}
		}
	}
}
