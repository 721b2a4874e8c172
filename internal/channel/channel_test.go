package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"salon-chat-client/internal/chat"
)

var testUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// chatServer is a minimal stand-in for the conversation backend.
type chatServer struct {
	t *testing.T

	mu       sync.Mutex
	conns    []*websocket.Conn
	paths    []string
	received []string
	gotMsg   chan string
}

func newChatServer(t *testing.T) (*chatServer, *httptest.Server) {
	cs := &chatServer{t: t, gotMsg: make(chan string, 16)}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}

		cs.mu.Lock()
		cs.conns = append(cs.conns, conn)
		cs.paths = append(cs.paths, r.URL.Path)
		cs.mu.Unlock()

		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var msg struct {
					Message string `json:"message"`
				}
				if err := json.Unmarshal(data, &msg); err != nil {
					cs.t.Errorf("client sent non-JSON payload: %v", err)
					continue
				}
				cs.mu.Lock()
				cs.received = append(cs.received, msg.Message)
				cs.mu.Unlock()
				cs.gotMsg <- msg.Message
			}
		}()
	}))

	t.Cleanup(ts.Close)
	return cs, ts
}

func (cs *chatServer) sendRaw(t *testing.T, payload string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.conns) == 0 {
		t.Fatal("no server-side connection")
	}
	conn := cs.conns[len(cs.conns)-1]
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("server write failed: %v", err)
	}
}

func (cs *chatServer) sendFrame(t *testing.T, frame chat.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	cs.sendRaw(t, string(data))
}

func (cs *chatServer) closeConn(t *testing.T) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.conns) == 0 {
		t.Fatal("no server-side connection")
	}
	cs.conns[len(cs.conns)-1].Close()
}

func (cs *chatServer) lastPath() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.paths) == 0 {
		return ""
	}
	return cs.paths[len(cs.paths)-1]
}

func wsBase(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1)
}

type frameSink struct {
	mu     sync.Mutex
	frames []chat.Frame
	ch     chan chat.Frame
}

func newFrameSink() *frameSink {
	return &frameSink{ch: make(chan chat.Frame, 64)}
}

func (s *frameSink) onFrame(frame chat.Frame) {
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.mu.Unlock()
	s.ch <- frame
}

func (s *frameSink) waitFor(t *testing.T, n int) []chat.Frame {
	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		if len(s.frames) >= n {
			out := make([]chat.Frame, len(s.frames))
			copy(out, s.frames)
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()

		select {
		case <-s.ch:
		case <-deadline:
			t.Fatalf("timed out waiting for %d frames", n)
		}
	}
}

func TestConnectWithEmptySessionIDIsIgnored(t *testing.T) {
	m := NewManager(Config{WSBaseURL: "ws://127.0.0.1:0"}, nil, nil, nil)

	if err := m.Connect(context.Background(), ""); err != nil {
		t.Fatalf("empty session id must be a no-op, got %v", err)
	}
	if m.State() != StateIdle {
		t.Fatalf("expected idle state, got %q", m.State())
	}
}

func TestConnectAddressesChannelBySessionKey(t *testing.T) {
	cs, ts := newChatServer(t)

	m := NewManager(Config{WSBaseURL: wsBase(ts)}, nil, nil, nil)
	defer m.Close()

	if err := m.Connect(context.Background(), "visitor-42"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if !m.IsConnected() {
		t.Fatal("expected connected state after dial")
	}
	if got, want := cs.lastPath(), "/ws/chat/visitor-42/"; got != want {
		t.Fatalf("expected channel path %q, got %q", want, got)
	}
}

func TestFramesDeliveredInArrivalOrder(t *testing.T) {
	cs, ts := newChatServer(t)
	sink := newFrameSink()

	m := NewManager(Config{WSBaseURL: wsBase(ts)}, nil, sink.onFrame, nil)
	defer m.Close()

	if err := m.Connect(context.Background(), "visitor-1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		cs.sendFrame(t, chat.Frame{
			Type:      "bot",
			Message:   string(rune('a' + i)),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	frames := sink.waitFor(t, 10)
	for i, frame := range frames {
		if want := string(rune('a' + i)); frame.Message != want {
			t.Fatalf("frame %d out of order: got %q, want %q", i, frame.Message, want)
		}
	}
}

func TestMalformedFrameIsDroppedWithoutKillingChannel(t *testing.T) {
	cs, ts := newChatServer(t)
	sink := newFrameSink()

	m := NewManager(Config{WSBaseURL: wsBase(ts)}, nil, sink.onFrame, nil)
	defer m.Close()

	if err := m.Connect(context.Background(), "visitor-1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	cs.sendRaw(t, "{not valid json")
	cs.sendFrame(t, chat.Frame{Type: "bot", Message: "still alive"})

	frames := sink.waitFor(t, 1)
	if frames[0].Message != "still alive" {
		t.Fatalf("expected only the valid frame, got %q", frames[0].Message)
	}
	if !m.IsConnected() {
		t.Fatal("channel must survive a malformed frame")
	}
}

func TestSendWritesMessageFrame(t *testing.T) {
	cs, ts := newChatServer(t)

	m := NewManager(Config{WSBaseURL: wsBase(ts)}, nil, nil, nil)
	defer m.Close()

	if err := m.Connect(context.Background(), "visitor-1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	m.Send("سلام")

	select {
	case got := <-cs.gotMsg:
		if got != "سلام" {
			t.Fatalf("expected message body %q, got %q", "سلام", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the message frame")
	}
}

func TestSendWhileNotConnectedIsSilentNoop(t *testing.T) {
	m := NewManager(Config{WSBaseURL: "ws://127.0.0.1:0"}, nil, nil, nil)

	// Must not panic, queue, or error out.
	m.Send("dropped on the floor")

	if m.State() != StateIdle {
		t.Fatalf("send must not change state, got %q", m.State())
	}
}

func TestClosureFlipsStateAndSchedulesOneReconnect(t *testing.T) {
	cs, ts := newChatServer(t)

	var mu sync.Mutex
	reconnects := 0

	m := NewManager(
		Config{WSBaseURL: wsBase(ts), ReconnectDelay: 100 * time.Millisecond},
		nil,
		nil,
		func() {
			mu.Lock()
			reconnects++
			mu.Unlock()
		},
	)
	defer m.Close()

	if err := m.Connect(context.Background(), "visitor-1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	cs.closeConn(t)

	// Disconnect is observable before the reconnect delay elapses.
	deadline := time.Now().Add(50 * time.Millisecond)
	for m.IsConnected() {
		if time.Now().After(deadline) {
			t.Fatal("state should flip to not-connected immediately on closure")
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	early := reconnects
	mu.Unlock()
	if early != 0 {
		t.Fatal("reconnect fired before the fixed delay")
	}

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	got := reconnects
	mu.Unlock()
	if got != 1 {
		t.Fatalf("expected exactly one reconnect cycle, got %d", got)
	}
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	cs, ts := newChatServer(t)

	var mu sync.Mutex
	reconnects := 0

	m := NewManager(
		Config{WSBaseURL: wsBase(ts), ReconnectDelay: 100 * time.Millisecond},
		nil,
		nil,
		func() {
			mu.Lock()
			reconnects++
			mu.Unlock()
		},
	)

	if err := m.Connect(context.Background(), "visitor-1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	cs.closeConn(t)
	time.Sleep(20 * time.Millisecond)
	m.Close()

	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if reconnects != 0 {
		t.Fatalf("teardown must cancel the pending reconnect, got %d", reconnects)
	}
}

func TestSendAfterClosureIsNoop(t *testing.T) {
	cs, ts := newChatServer(t)

	m := NewManager(Config{WSBaseURL: wsBase(ts), ReconnectDelay: time.Minute}, nil, nil, nil)
	defer m.Close()

	if err := m.Connect(context.Background(), "visitor-1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	cs.closeConn(t)
	deadline := time.Now().Add(time.Second)
	for m.IsConnected() {
		if time.Now().After(deadline) {
			t.Fatal("channel never observed the closure")
		}
		time.Sleep(time.Millisecond)
	}

	m.Send("into the void")

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.received) != 0 {
		t.Fatalf("no frame should have been emitted, got %v", cs.received)
	}
}

func TestReconnectResumesSameConversationAddress(t *testing.T) {
	cs, ts := newChatServer(t)

	m := NewManager(Config{WSBaseURL: wsBase(ts), ReconnectDelay: time.Minute}, nil, nil, nil)
	defer m.Close()

	ctx := context.Background()
	if err := m.Connect(ctx, "visitor-9"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	cs.closeConn(t)
	deadline := time.Now().Add(time.Second)
	for m.IsConnected() {
		if time.Now().After(deadline) {
			t.Fatal("channel never observed the closure")
		}
		time.Sleep(time.Millisecond)
	}

	// A reconnect under the same identifier routes to the same conversation.
	if err := m.Connect(ctx, "visitor-9"); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.paths) != 2 || cs.paths[0] != cs.paths[1] {
		t.Fatalf("expected both dials on the same path, got %v", cs.paths)
	}
}
