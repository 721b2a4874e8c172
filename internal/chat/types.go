package chat

import "time"

// Status mirrors the server's projection of a chat session. The backend owns
// the state machine; the client never invents a transition on its own.
type Status string

const (
	StatusBot    Status = "bot"
	StatusQueued Status = "queued"
	StatusAdmin  Status = "admin"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBot, StatusQueued, StatusAdmin, StatusClosed:
		return true
	}
	return false
}

// Frame is one inbound websocket event as it appears on the wire.
type Frame struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	Sender        string `json:"sender,omitempty"`
	Timestamp     string `json:"timestamp"`
	Status        Status `json:"status,omitempty"`
	QueuePosition *int   `json:"queue_position,omitempty"`
}

// Entry is one transcript line. Entries are appended in arrival order and
// never reordered or deduplicated.
type Entry struct {
	Type      string
	Message   string
	Sender    string
	Timestamp time.Time
}
