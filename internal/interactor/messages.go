package interactor

import (
	"sync"
	"sync/atomic"

	"github.com/anselmoalexandre/tivi/internal/observe"
)

// UiMessage is an ephemeral user-facing notification. The ID is used to
// clear exactly one message later.
type UiMessage struct {
	ID      uint64 `json:"id"`
	Message string `json:"message"`
}

// MessageManager keeps an ordered queue of pending messages. Identical text
// is deduplicated while still pending; clearing removes a single message by
// ID. Observers see the full pending queue and can read the head message.
type MessageManager struct {
	mu      sync.Mutex
	nextID  atomic.Uint64
	pending []UiMessage
	queue   *observe.Value[[]UiMessage]
}

func NewMessageManager() *MessageManager {
	return &MessageManager{queue: observe.NewValueOf([]UiMessage(nil))}
}

// EmitMessage appends a message and returns its ID. If a message with the
// same text is already pending, its ID is returned instead.
func (m *MessageManager) EmitMessage(text string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.pending {
		if msg.Message == text {
			return msg.ID
		}
	}
	msg := UiMessage{ID: m.nextID.Add(1), Message: text}
	m.pending = append(m.pending, msg)
	m.publish()
	return msg.ID
}

// ClearMessage removes only the message with the given ID.
func (m *MessageManager) ClearMessage(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.pending {
		if msg.ID == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			m.publish()
			return
		}
	}
}

// Head returns the oldest pending message, or nil when the queue is empty.
func (m *MessageManager) Head() *UiMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	head := m.pending[0]
	return &head
}

// Observable returns the pending-queue snapshot stream.
func (m *MessageManager) Observable() *observe.Value[[]UiMessage] {
	return m.queue
}

// publish snapshots the queue for observers. Caller holds m.mu.
func (m *MessageManager) publish() {
	snapshot := make([]UiMessage, len(m.pending))
	copy(snapshot, m.pending)
	m.queue.Set(snapshot)
}
