package pagesession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/internal/observability/metrics"
	"github.com/wolfman30/medibook/pkg/logging"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("pagesession: session not found")

// DefaultTTL is how long an untouched page session survives.
const DefaultTTL = 30 * time.Minute

// SubmitterFactory builds the booking submitter for one page. language
// reports the page's active language at submit time.
type SubmitterFactory func(language func() string) booking.Submitter

// Config wires the collaborators shared by every page session.
type Config struct {
	TTL             time.Duration
	DefaultLanguage i18n.Language
	Catalog         *i18n.Catalog
	Submitters      SubmitterFactory
	ChatProvider    chat.Provider
	Pipeline        booking.PipelineConfig
	Logger          *logging.Logger
	Metrics         *metrics.SessionMetrics
}

// Registry owns every live page session.
type Registry struct {
	cfg    Config
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry validates cfg and returns an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.Submitters == nil {
		panic("pagesession: submitter factory cannot be nil")
	}
	if cfg.ChatProvider == nil {
		panic("pagesession: chat provider cannot be nil")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if !cfg.DefaultLanguage.Valid() {
		cfg.DefaultLanguage = i18n.DefaultLanguage
	}
	if cfg.Catalog == nil {
		cfg.Catalog = i18n.DefaultCatalog
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Registry{
		cfg:      cfg,
		logger:   cfg.Logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// DefaultLanguage is the language used when the page does not ask for one.
func (r *Registry) DefaultLanguage() i18n.Language {
	return r.cfg.DefaultLanguage
}

// Create opens a page session in lang and seeds the chat greeting.
func (r *Registry) Create(lang i18n.Language) *Session {
	if !lang.Valid() {
		lang = r.cfg.DefaultLanguage
	}
	now := r.now()
	localizer := i18n.NewLocalizer(r.cfg.Catalog, lang)
	id := uuid.NewString()
	logger := &logging.Logger{Logger: r.logger.With("session_id", id)}

	pipelineCfg := r.cfg.Pipeline
	pipelineCfg.Logger = logger
	s := &Session{
		ID:        id,
		CreatedAt: now,
		Localizer: localizer,
		Booking:   booking.NewPipeline(r.cfg.Submitters(func() string { return localizer.Language().String() }), pipelineCfg),
		Chat:      chat.NewSession(r.cfg.ChatProvider.NewConverser(), localizer, logger),
		events:    newHub(),
		logger:    logger,
		lastSeen:  now,
	}
	s.wire()
	s.Chat.Activate()

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	r.cfg.Metrics.Opened()
	r.logger.Info("pagesession: opened", "session_id", id, "language", lang.String())
	return s
}

// Get returns a live session and marks it as recently used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete tears a session down.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.close()
	r.cfg.Metrics.Closed(false)
	r.logger.Info("pagesession: closed", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep discards sessions idle longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.TTL)
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
		r.cfg.Metrics.Closed(true)
	}
	if len(expired) > 0 {
		r.logger.Info("pagesession: expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.close()
		r.cfg.Metrics.Closed(false)
	}
}
