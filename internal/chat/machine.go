package chat

import (
	"sync"
	"time"
)

// Machine accumulates inbound frames into an append-only transcript and
// mirrors the status field the server sends. Frames with a status the client
// has never seen are accepted as-is; validating transitions here would reject
// legitimate server-driven moves such as an admin releasing a chat back to
// the queue.
type Machine struct {
	mu            sync.Mutex
	status        Status
	transcript    []Entry
	queuePosition int
	hasQueuePos   bool
	now           func() time.Time
}

func NewMachine() *Machine {
	return &Machine{
		status: StatusBot,
		now:    time.Now,
	}
}

func NewMachineWithClock(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{
		status: StatusBot,
		now:    now,
	}
}

// Apply folds one inbound frame into the machine. Every frame is appended to
// the transcript; status and queue position update only when the frame
// carries them.
func (m *Machine) Apply(frame Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame.Status != "" {
		m.status = frame.Status
	}
	if frame.QueuePosition != nil {
		m.queuePosition = *frame.QueuePosition
		m.hasQueuePos = true
	}

	ts, err := time.Parse(time.RFC3339, frame.Timestamp)
	if err != nil {
		ts = m.now()
	}

	m.transcript = append(m.transcript, Entry{
		Type:      frame.Type,
		Message:   frame.Message,
		Sender:    frame.Sender,
		Timestamp: ts,
	})
}

func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// QueuePosition reports the most recent queue position the server sent, if
// any frame carried one.
func (m *Machine) QueuePosition() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queuePosition, m.hasQueuePos
}

// Transcript returns a copy of the accumulated entries in arrival order.
func (m *Machine) Transcript() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.transcript))
	copy(out, m.transcript)
	return out
}

func (m *Machine) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transcript)
}
