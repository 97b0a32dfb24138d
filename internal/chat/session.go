// Package chat manages the per-page MediBot conversation: the transcript,
// the pending-reply flag and the generative AI providers behind it.
package chat

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/pkg/logging"
)

// State is a snapshot of the session for rendering.
type State struct {
	Transcript []Message `json:"transcript"`
	Pending    bool      `json:"pending"`
}

// Session is the linear transcript of one page. Turns are strictly
// sequential: a new message is refused while a reply is pending.
type Session struct {
	converser Converser
	localizer *i18n.Localizer
	logger    *logging.Logger
	now       func() time.Time
	newID     func() string

	mu         sync.Mutex
	transcript []Message
	pending    bool
	activated  bool
	closed     bool
	onAppend   []func(Message)
	onPending  []func(bool)

	// notifyMu keeps observer callbacks in mutation order.
	notifyMu sync.Mutex
}

// NewSession binds a converser to the page's localizer. Call Activate once
// observers are registered.
func NewSession(converser Converser, localizer *i18n.Localizer, logger *logging.Logger) *Session {
	if converser == nil {
		panic("chat: converser cannot be nil")
	}
	if localizer == nil {
		localizer = i18n.NewLocalizer(nil, i18n.DefaultLanguage)
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Session{
		converser: converser,
		localizer: localizer,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	localizer.Subscribe(func(i18n.Language) { s.seedGreeting() })
	return s
}

// OnAppend registers fn to run after each transcript append.
func (s *Session) OnAppend(fn func(Message)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onAppend = append(s.onAppend, fn)
	s.mu.Unlock()
}

// OnPendingChange registers fn to run when the typing indicator flips.
func (s *Session) OnPendingChange(fn func(bool)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onPending = append(s.onPending, fn)
	s.mu.Unlock()
}

// Activate seeds the greeting in the active language when the transcript is
// empty. Later language switches re-seed only while it is still empty.
func (s *Session) Activate() {
	s.mu.Lock()
	s.activated = true
	s.mu.Unlock()
	s.seedGreeting()
}

func (s *Session) seedGreeting() {
	s.mu.Lock()
	if !s.activated || s.closed || len(s.transcript) > 0 {
		s.mu.Unlock()
		return
	}
	greeting := s.appendLocked(RoleModel, s.localizer.Text(i18n.KeyChatHelp))
	s.notify([]Message{greeting}, nil)
}

// SendTurn appends the user's message, asks the converser for a reply and
// appends it. It blocks until the reply arrives.
func (s *Session) SendTurn(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Turn{}, ErrClosed
	}
	if s.pending {
		s.mu.Unlock()
		return Turn{}, ErrReplyPending
	}
	user := s.appendLocked(RoleUser, text)
	s.pending = true
	lang := s.localizer.Language()
	pending := true
	s.notify([]Message{user}, &pending)

	start := s.now()
	reply := s.converser.Converse(ctx, text, lang)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("chat: dropping reply for closed session")
		return Turn{User: user}, ErrClosed
	}
	model := s.appendLocked(RoleModel, reply)
	s.pending = false
	pending = false
	s.notify([]Message{model}, &pending)

	s.logger.Info("chat: turn completed", "language", lang.String(), "duration_ms", s.now().Sub(start).Milliseconds())
	return Turn{User: user, Reply: model}, nil
}

// Transcript returns a copy of the messages so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Pending reports whether a reply is outstanding.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// State returns the transcript and pending flag together.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return State{Transcript: out, Pending: s.pending}
}

// Close discards the session. A reply that resolves afterwards is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if closer, ok := s.converser.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("chat: close converser", "error", err)
		}
	}
}

func (s *Session) appendLocked(role Role, text string) Message {
	msg := Message{ID: s.newID(), Role: role, Text: text, Timestamp: s.now()}
	s.transcript = append(s.transcript, msg)
	return msg
}

// notify must be called with s.mu held; it releases s.mu before running
// observers.
func (s *Session) notify(appended []Message, pending *bool) {
	onAppend := make([]func(Message), len(s.onAppend))
	copy(onAppend, s.onAppend)
	onPending := make([]func(bool), len(s.onPending))
	copy(onPending, s.onPending)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, msg := range appended {
		for _, fn := range onAppend {
			fn(msg)
		}
	}
	if pending != nil {
		for _, fn := range onPending {
			fn(*pending)
		}
	}
}
