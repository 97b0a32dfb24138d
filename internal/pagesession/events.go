package pagesession

import (
	"sync"

	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	"github.com/wolfman30/medibook/internal/i18n"
)

// EventType names a pushed page update.
type EventType string

const (
	EventMessage  EventType = "message"
	EventTyping   EventType = "typing"
	EventStatus   EventType = "status"
	EventLanguage EventType = "language"
	EventClosed   EventType = "closed"
)

// Event is one update pushed to the page's live connections.
type Event struct {
	Type        EventType       `json:"type"`
	Message     *chat.Message   `json:"message,omitempty"`
	Typing      *bool           `json:"typing,omitempty"`
	Status      *booking.Status `json:"status,omitempty"`
	ButtonLabel string          `json:"buttonLabel,omitempty"`
	Language    i18n.Language   `json:"language,omitempty"`
}

const subscriberBuffer = 32

// hub fans events out to subscribers. A subscriber that falls behind loses
// events rather than blocking the session.
type hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Event
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan Event)}
}

func (h *hub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

// publish reports how many subscribers dropped the event.
func (h *hub) publish(evt Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	dropped := 0
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			dropped++
		}
	}
	return dropped
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		select {
		case ch <- Event{Type: EventClosed}:
		default:
		}
		close(ch)
		delete(h.subs, id)
	}
}
