package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"salon-chat-client/internal/chat"
)

// State tracks the lifecycle of the single chat connection.
type State string

const (
	StateIdle          State = "idle"
	StateConnecting    State = "connecting"
	StateOpen          State = "open"
	StateClosedByPeer  State = "closed-by-peer"
	StateClosedByError State = "closed-by-error"
)

// DefaultReconnectDelay matches the widget's fixed retry window.
const DefaultReconnectDelay = 3 * time.Second

const keepAliveInterval = 30 * time.Second

type Config struct {
	// WSBaseURL is the websocket origin, e.g. ws://host:8000.
	WSBaseURL      string
	ReconnectDelay time.Duration
}

type outboundMessage struct {
	Message string `json:"message"`
}

// Manager owns exactly one live connection per visitor session, scoped to the
// lifetime of the widget that created it. On any closure it flips to
// not-connected immediately and schedules a single reconnect after the fixed
// delay; the reconnect callback is expected to rebuild widget state from
// scratch and dial again, mirroring the reload-style recovery the server-side
// history makes safe.
type Manager struct {
	cfg         Config
	dialer      *websocket.Dialer
	log         *logrus.Logger
	onFrame     func(chat.Frame)
	onReconnect func()

	mu             sync.Mutex
	conn           *websocket.Conn
	state          State
	done           chan struct{}
	reconnectTimer *time.Timer
	closed         bool
}

func NewManager(cfg Config, log *logrus.Logger, onFrame func(chat.Frame), onReconnect func()) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		cfg:         cfg,
		dialer:      websocket.DefaultDialer,
		log:         log,
		onFrame:     onFrame,
		onReconnect: onReconnect,
		state:       StateIdle,
	}
}

// Connect dials the conversation channel for the given session identifier.
// An empty identifier is ignored so the widget can mount before the identity
// provider has produced one.
func (m *Manager) Connect(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	if m.state == StateOpen || m.state == StateConnecting {
		m.mu.Unlock()
		return nil
	}
	m.state = StateConnecting
	m.mu.Unlock()

	url := m.cfg.WSBaseURL + "/ws/chat/" + sessionID + "/"
	conn, _, err := m.dialer.DialContext(ctx, url, nil)
	if err != nil {
		m.log.WithError(err).WithField("session_key", sessionID).Warn("chat channel dial failed")
		m.transition(StateClosedByError)
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return nil
	}
	m.conn = conn
	m.state = StateOpen
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	connectsTotal.Inc()
	m.log.WithField("session_key", sessionID).Info("chat channel connected")

	go m.readLoop(conn)
	go m.keepAlive(conn, done)

	return nil
}

// Send writes one outbound message frame. Anything but an open connection is
// a silent no-op: the UI-level gate owns the closed-status affordance, the
// channel only respects its own connectivity.
func (m *Manager) Send(text string) {
	m.mu.Lock()
	if m.state != StateOpen || m.conn == nil {
		m.mu.Unlock()
		return
	}
	err := m.conn.WriteJSON(outboundMessage{Message: text})
	m.mu.Unlock()

	if err != nil {
		m.log.WithError(err).Warn("chat channel write failed")
		m.transition(StateClosedByError)
		return
	}
	messagesSent.Inc()
}

func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateOpen
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close tears the channel down for good: the connection is closed and any
// pending reconnect is cancelled. Used when the widget unmounts.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.closeConnLocked(StateIdle)
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(512 * 1024)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			state := StateClosedByError
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					state = StateClosedByPeer
				}
			}
			m.transition(state)
			return
		}

		framesReceived.Inc()

		var frame chat.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Fatal to this frame only: drop it, keep the channel alive.
			framesDropped.Inc()
			m.log.WithError(err).Debug("dropping malformed chat frame")
			continue
		}

		if m.onFrame != nil {
			m.onFrame(frame)
		}
	}
}

func (m *Manager) keepAlive(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.conn != conn || m.state != StateOpen {
				m.mu.Unlock()
				return
			}
			err := conn.WriteMessage(websocket.PingMessage, nil)
			m.mu.Unlock()

			if err != nil {
				m.log.WithError(err).Debug("chat channel ping failed")
				return
			}
		}
	}
}

// transition records a closure and schedules the single reconnect cycle.
func (m *Manager) transition(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.closeConnLocked(state)

	if m.reconnectTimer != nil {
		return
	}
	reconnectsScheduled.Inc()
	m.reconnectTimer = time.AfterFunc(m.cfg.ReconnectDelay, func() {
		m.mu.Lock()
		m.reconnectTimer = nil
		closed := m.closed
		m.mu.Unlock()

		if closed || m.onReconnect == nil {
			return
		}
		m.onReconnect()
	})
}

func (m *Manager) closeConnLocked(state State) {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.state = state
}
