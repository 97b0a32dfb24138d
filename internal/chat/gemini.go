package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/internal/observability/metrics"
	"github.com/wolfman30/medibook/pkg/logging"
)

// ErrMissingAPIKey is returned when a Gemini session is opened without a key.
var ErrMissingAPIKey = errors.New("chat: gemini api key is not configured")

// geminiChat is a live conversation handle. History lives inside it.
type geminiChat interface {
	Send(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ProviderConfig carries the ambient dependencies shared by providers.
type ProviderConfig struct {
	Catalog *i18n.Catalog
	Logger  *logging.Logger
	Metrics *metrics.ChatMetrics
}

func (c ProviderConfig) withDefaults() ProviderConfig {
	if c.Catalog == nil {
		c.Catalog = i18n.DefaultCatalog
	}
	if c.Logger == nil {
		c.Logger = logging.Default()
	}
	return c
}

// GeminiProvider hands out Gemini-backed conversers.
type GeminiProvider struct {
	apiKey  string
	modelID string
	cfg     ProviderConfig
	tracer  trace.Tracer
	open    func(ctx context.Context) (geminiChat, error)
}

// NewGeminiProvider configures Gemini access. An empty key is accepted; every
// turn then answers with the localized connection fallback.
func NewGeminiProvider(apiKey, modelID string, cfg ProviderConfig) *GeminiProvider {
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	p := &GeminiProvider{
		apiKey:  strings.TrimSpace(apiKey),
		modelID: modelID,
		cfg:     cfg.withDefaults(),
		tracer:  otel.Tracer("medibook.internal.chat.gemini"),
	}
	p.open = p.openSession
	return p
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) NewConverser() Converser {
	return &GeminiConverser{provider: p}
}

func (p *GeminiProvider) openSession(ctx context.Context) (geminiChat, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: create gemini client: %w", err)
	}
	model := client.GenerativeModel(p.modelID)
	model.SystemInstruction = genai.NewUserContent(genai.Text(SystemInstruction))
	return &geminiSession{client: client, cs: model.StartChat()}, nil
}

// geminiSession owns one client and its chat history.
type geminiSession struct {
	client *genai.Client
	cs     *genai.ChatSession
}

func (s *geminiSession) Send(ctx context.Context, prompt string) (string, error) {
	resp, err := s.cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("chat: gemini send: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func (s *geminiSession) Close() error {
	return s.client.Close()
}

// GeminiConverser is the per-page conversation with Gemini. The session is
// opened on the first turn; if opening fails the turn falls back and the next
// turn tries again.
type GeminiConverser struct {
	provider *GeminiProvider

	mu      sync.Mutex
	session geminiChat
	closed  bool
}

func (c *GeminiConverser) Converse(ctx context.Context, message string, lang i18n.Language) string {
	p := c.provider
	ctx, span := p.tracer.Start(ctx, "chat.gemini.converse")
	defer span.End()
	span.SetAttributes(attribute.String("chat.language", lang.String()))
	start := time.Now()

	session, err := c.acquire(ctx)
	if err != nil {
		span.RecordError(err)
		p.cfg.Logger.Warn("chat: gemini session unavailable", "error", err)
		p.cfg.Metrics.ObserveTurn(p.Name(), outcomeUnavailable, time.Since(start).Seconds())
		return p.cfg.Catalog.Text(lang, i18n.KeyChatUnavailable)
	}

	reply, err := session.Send(ctx, message+LanguageDirective(lang))
	elapsed := time.Since(start).Seconds()
	switch {
	case err != nil:
		span.RecordError(err)
		p.cfg.Logger.Error("chat: gemini turn failed", "error", err)
		p.cfg.Metrics.ObserveTurn(p.Name(), outcomeError, elapsed)
		return p.cfg.Catalog.Text(lang, i18n.KeyChatError)
	case reply == "":
		p.cfg.Metrics.ObserveTurn(p.Name(), outcomeEmpty, elapsed)
		return p.cfg.Catalog.Text(lang, i18n.KeyChatEmptyReply)
	default:
		p.cfg.Metrics.ObserveTurn(p.Name(), outcomeOK, elapsed)
		return reply
	}
}

// acquire returns the live session, opening one if needed.
func (c *GeminiConverser) acquire(ctx context.Context) (geminiChat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.session == nil {
		session, err := c.provider.open(ctx)
		if err != nil {
			return nil, err
		}
		c.session = session
	}
	return c.session, nil
}

// Close releases the Gemini client, if one was opened.
func (c *GeminiConverser) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}
