package connections

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rizzard/rizzard/internal/metrics"
	"github.com/rizzard/rizzard/internal/services/widget"
)

// TimeoutConfig holds the keepalive settings for widget connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// Manager tracks open widget connections and the session bound to each
type Manager struct {
	mu          sync.RWMutex
	connections sync.Map
	timeouts    TimeoutConfig
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   60 * time.Second,
	PingPeriod: 54 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// AddConnection registers conn with its widget session
func (m *Manager) AddConnection(conn *websocket.Conn, session *widget.Session) {
	if _, loaded := m.connections.LoadOrStore(conn, session); !loaded {
		metrics.WidgetConnections.Inc()
	}
}

// RemoveConnection forgets conn. Removing an unknown connection is a no-op.
func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	if _, loaded := m.connections.LoadAndDelete(conn); loaded {
		metrics.WidgetConnections.Dec()
	}
}

// Session returns the widget session bound to conn
func (m *Manager) Session(conn *websocket.Conn) (*widget.Session, bool) {
	v, ok := m.connections.Load(conn)
	if !ok {
		return nil, false
	}
	return v.(*widget.Session), true
}

// GetConnectionCount returns the current number of active connections
func (m *Manager) GetConnectionCount() int {
	count := 0
	m.connections.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// HasConnection checks if a specific connection exists
func (m *Manager) HasConnection(conn *websocket.Conn) bool {
	_, exists := m.connections.Load(conn)
	return exists
}

func (m *Manager) GetTimeouts() TimeoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeouts
}

func (m *Manager) SetTimeouts(timeouts TimeoutConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = timeouts
}
