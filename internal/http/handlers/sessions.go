package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/internal/pagesession"
	"github.com/wolfman30/medibook/pkg/logging"
)

// PageSessionHandler exposes page sessions over JSON.
type PageSessionHandler struct {
	sessions      *pagesession.Registry
	guard         booking.Guard
	submitTimeout time.Duration
	chatTimeout   time.Duration
	logger        *logging.Logger
}

// PageSessionConfig configures PageSessionHandler.
type PageSessionConfig struct {
	Guard         booking.Guard
	SubmitTimeout time.Duration
	ChatTimeout   time.Duration
}

// NewPageSessionHandler creates the handler. A nil guard uses an in-process one.
func NewPageSessionHandler(sessions *pagesession.Registry, cfg PageSessionConfig, logger *logging.Logger) *PageSessionHandler {
	if sessions == nil {
		panic("handlers: page session registry cannot be nil")
	}
	if cfg.Guard == nil {
		cfg.Guard = booking.NewMemoryGuard(0)
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 15 * time.Second
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PageSessionHandler{
		sessions:      sessions,
		guard:         cfg.Guard,
		submitTimeout: cfg.SubmitTimeout,
		chatTimeout:   cfg.ChatTimeout,
		logger:        logger,
	}
}

// Routes mounts under /api/sessions.
func (h *PageSessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Put("/language", h.SetLanguage)
		r.Post("/language/toggle", h.ToggleLanguage)
		r.Patch("/booking", h.UpdateBooking)
		r.Post("/booking/submit", h.SubmitBooking)
		r.Get("/chat", h.GetChat)
		r.Post("/chat/messages", h.SendChatMessage)
	})
	return r
}

type languageRequest struct {
	Language string `json:"language"`
}

// CreateSession opens a page session.
// POST /api/sessions
func (h *PageSessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	var lang i18n.Language
	if req.Language != "" {
		parsed, err := i18n.ParseLanguage(req.Language)
		if err != nil {
			jsonError(w, "unsupported language", http.StatusBadRequest)
			return
		}
		lang = parsed
	} else {
		lang = i18n.Negotiate(r.Header.Get("Accept-Language"), h.sessions.DefaultLanguage())
	}

	s := h.sessions.Create(lang)
	w.Header().Set("Location", "/api/sessions/"+s.ID)
	h.writeSnapshot(w, http.StatusCreated, s)
}

// GetSession returns the full page state.
// GET /api/sessions/{sessionID}
func (h *PageSessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writeSnapshot(w, http.StatusOK, s)
}

// DeleteSession tears the page session down.
// DELETE /api/sessions/{sessionID}
func (h *PageSessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetLanguage switches the page language.
// PUT /api/sessions/{sessionID}/language
func (h *PageSessionHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req languageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	lang, err := i18n.ParseLanguage(req.Language)
	if err == nil {
		err = s.Localizer.SetLanguage(lang)
	}
	if err != nil {
		jsonError(w, "unsupported language", http.StatusBadRequest)
		return
	}
	h.writeSnapshot(w, http.StatusOK, s)
}

// ToggleLanguage flips between Korean and English.
// POST /api/sessions/{sessionID}/language/toggle
func (h *PageSessionHandler) ToggleLanguage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.Localizer.Toggle()
	h.writeSnapshot(w, http.StatusOK, s)
}

// UpdateBooking merges form fields. Values may be strings or booleans; a
// request with any bad entry changes nothing.
// PATCH /api/sessions/{sessionID}/booking
func (h *PageSessionHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(fields))
	for name, raw := range fields {
		value, err := rawFieldValue(raw)
		if err != nil {
			jsonError(w, fmt.Sprintf("%s: %v", name, err), http.StatusBadRequest)
			return
		}
		values[name] = value
	}

	switch err := s.Booking.UpdateFields(values); {
	case err == nil:
	case errors.Is(err, booking.ErrClosed):
		jsonError(w, "session not found", http.StatusNotFound)
		return
	default:
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.Booking.State())
}

type submitResponse struct {
	Status      booking.Status `json:"status"`
	ButtonLabel string         `json:"buttonLabel"`
	Form        booking.Form   `json:"form"`
}

type rejectedResponse struct {
	Status booking.Status           `json:"status"`
	Report booking.ValidationReport `json:"report"`
}

// SubmitBooking validates and submits the form.
// POST /api/sessions/{sessionID}/booking/submit
//
// 422 carries the localized validation report; 409 means submit is disabled
// or another submit for this page is in flight.
func (h *PageSessionHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.guard.Acquire(r.Context(), s.ID); err != nil {
		if errors.Is(err, booking.ErrDuplicateSubmission) {
			jsonError(w, "submission already in progress", http.StatusConflict)
			return
		}
		h.logger.Error("booking: submit guard unavailable", "session_id", s.ID, "error", err)
		jsonError(w, "booking temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	defer h.guard.Release(r.Context(), s.ID)

	// The submission resolves even if the page goes away mid-request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.submitTimeout)
	defer cancel()

	outcome, err := s.Booking.AttemptSubmit(ctx)
	switch {
	case errors.Is(err, booking.ErrSubmitDisabled):
		writeJSON(w, http.StatusConflict, submitResponse{
			Status:      outcome.Status,
			ButtonLabel: booking.ButtonLabel(s.Localizer, outcome.Status),
		})
		return
	case errors.Is(err, booking.ErrClosed):
		jsonError(w, "session not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("booking: submit failed unexpectedly", "session_id", s.ID, "error", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if report, rejected := outcome.Report(s.Localizer); rejected {
		writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{Status: outcome.Status, Report: report})
		return
	}
	state := s.Booking.State()
	writeJSON(w, http.StatusOK, submitResponse{
		Status:      outcome.Status,
		ButtonLabel: booking.ButtonLabel(s.Localizer, outcome.Status),
		Form:        state.Form,
	})
}

// GetChat returns the transcript and typing flag.
// GET /api/sessions/{sessionID}/chat
func (h *PageSessionHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Chat.State())
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

// SendChatMessage runs one chat turn and returns the two appended messages.
// POST /api/sessions/{sessionID}/chat/messages
func (h *PageSessionHandler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req chatMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.chatTimeout)
	defer cancel()

	turn, err := s.Chat.SendTurn(ctx, req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		jsonError(w, "message is empty", http.StatusBadRequest)
	case errors.Is(err, chat.ErrReplyPending):
		jsonError(w, "reply pending", http.StatusConflict)
	case errors.Is(err, chat.ErrClosed):
		jsonError(w, "session not found", http.StatusNotFound)
	case err != nil:
		h.logger.Error("chat: turn failed unexpectedly", "session_id", s.ID, "error", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"messages": []chat.Message{turn.User, turn.Reply},
		})
	}
}

func (h *PageSessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*pagesession.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func (h *PageSessionHandler) writeSnapshot(w http.ResponseWriter, status int, s *pagesession.Session) {
	snap := s.Snapshot()
	w.Header().Set("Content-Language", snap.Language.String())
	writeJSON(w, status, snap)
}

func rawFieldValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", fmt.Errorf("%w: expected string or boolean", booking.ErrInvalidValue)
}
