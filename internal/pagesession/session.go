// Package pagesession keeps the state of each open landing page: its
// language, booking form and chat transcript.
package pagesession

import (
	"sync"
	"time"

	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/pkg/logging"
)

// Session is one open page. Its components share only the localizer.
type Session struct {
	ID        string
	CreatedAt time.Time
	Localizer *i18n.Localizer
	Booking   *booking.Pipeline
	Chat      *chat.Session

	events *hub
	logger *logging.Logger

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

// Snapshot is everything the page needs to render.
type Snapshot struct {
	ID          string              `json:"id"`
	Language    i18n.Language       `json:"language"`
	Strings     map[i18n.Key]string `json:"strings"`
	Booking     booking.State       `json:"booking"`
	ButtonLabel string              `json:"buttonLabel"`
	Chat        chat.State          `json:"chat"`
}

// Snapshot captures the current state of every component.
func (s *Session) Snapshot() Snapshot {
	state := s.Booking.State()
	return Snapshot{
		ID:          s.ID,
		Language:    s.Localizer.Language(),
		Strings:     s.Localizer.Strings(),
		Booking:     state,
		ButtonLabel: booking.ButtonLabel(s.Localizer, state.Status),
		Chat:        s.Chat.State(),
	}
}

// Subscribe streams page events until cancel is called or the session closes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

func (s *Session) wire() {
	s.Chat.OnAppend(func(m chat.Message) {
		msg := m
		s.publish(Event{Type: EventMessage, Message: &msg})
	})
	s.Chat.OnPendingChange(func(pending bool) {
		typing := pending
		s.publish(Event{Type: EventTyping, Typing: &typing})
	})
	s.Booking.OnStatusChange(func(status booking.Status) {
		st := status
		s.publish(Event{Type: EventStatus, Status: &st, ButtonLabel: booking.ButtonLabel(s.Localizer, st)})
	})
	s.Localizer.Subscribe(func(lang i18n.Language) {
		s.publish(Event{Type: EventLanguage, Language: lang})
	})
}

func (s *Session) publish(evt Event) {
	if dropped := s.events.publish(evt); dropped > 0 {
		s.logger.Warn("pagesession: slow subscriber dropped event", "type", string(evt.Type), "dropped", dropped)
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// close tears every component down. Late collaborator results are dropped by
// the components themselves.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Booking.Close()
	s.Chat.Close()
	s.events.close()
}
