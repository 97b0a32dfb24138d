package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/medibook/internal/i18n"
)

// ErrMissingModel is returned when Bedrock is selected without a model id.
var ErrMissingModel = errors.New("chat: bedrock model id is not configured")

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider hands out conversers backed by the Bedrock Converse API.
type BedrockProvider struct {
	api     bedrockConverseAPI
	modelID string
	cfg     ProviderConfig
	tracer  trace.Tracer
}

// NewBedrockProvider accepts a nil api; turns then answer with the connection
// fallback.
func NewBedrockProvider(api bedrockConverseAPI, modelID string, cfg ProviderConfig) *BedrockProvider {
	return &BedrockProvider{
		api:     api,
		modelID: strings.TrimSpace(modelID),
		cfg:     cfg.withDefaults(),
		tracer:  otel.Tracer("medibook.internal.chat.bedrock"),
	}
}

func (p *BedrockProvider) Name() string { return "bedrock" }

func (p *BedrockProvider) NewConverser() Converser {
	return &BedrockConverser{provider: p}
}

// bedrockSession is the message history sent with every Converse call.
// Only completed exchanges are kept so roles always alternate.
type bedrockSession struct {
	history []brtypes.Message
}

// BedrockConverser is one page's conversation on Bedrock.
type BedrockConverser struct {
	provider *BedrockProvider

	mu      sync.Mutex
	session *bedrockSession
	closed  bool
}

func (c *BedrockConverser) Converse(ctx context.Context, message string, lang i18n.Language) string {
	p := c.provider
	ctx, span := p.tracer.Start(ctx, "chat.bedrock.converse")
	defer span.End()
	span.SetAttributes(attribute.String("chat.language", lang.String()))
	start := time.Now()

	history, err := c.snapshot()
	if err != nil {
		span.RecordError(err)
		p.cfg.Logger.Warn("chat: bedrock session unavailable", "error", err)
		p.cfg.Metrics.ObserveTurn(p.Name(), outcomeUnavailable, time.Since(start).Seconds())
		return p.cfg.Catalog.Text(lang, i18n.KeyChatUnavailable)
	}

	prompt := brtypes.Message{
		Role:    brtypes.ConversationRoleUser,
		Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: message + LanguageDirective(lang)}},
	}
	out, err := p.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:  aws.String(p.modelID),
		System:   []brtypes.SystemContentBlock{&brtypes.SystemContentBlockMemberText{Value: SystemInstruction}},
		Messages: append(history, prompt),
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		p.cfg.Logger.Error("chat: bedrock turn failed", "error", err)
		p.cfg.Metrics.ObserveTurn(p.Name(), outcomeError, elapsed)
		return p.cfg.Catalog.Text(lang, i18n.KeyChatError)
	}

	reply := outputText(out)
	if reply == "" {
		p.cfg.Metrics.ObserveTurn(p.Name(), outcomeEmpty, elapsed)
		return p.cfg.Catalog.Text(lang, i18n.KeyChatEmptyReply)
	}

	c.record(prompt, brtypes.Message{
		Role:    brtypes.ConversationRoleAssistant,
		Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: reply}},
	})
	p.cfg.Metrics.ObserveTurn(p.Name(), outcomeOK, elapsed)
	return reply
}

// snapshot opens the session on first use and copies its history.
func (c *BedrockConverser) snapshot() ([]brtypes.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.session == nil {
		if c.provider.api == nil {
			return nil, errors.New("chat: bedrock client is not configured")
		}
		if c.provider.modelID == "" {
			return nil, ErrMissingModel
		}
		c.session = &bedrockSession{}
	}
	history := make([]brtypes.Message, len(c.session.history), len(c.session.history)+1)
	copy(history, c.session.history)
	return history, nil
}

func (c *BedrockConverser) record(msgs ...brtypes.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.session == nil {
		return
	}
	c.session.history = append(c.session.history, msgs...)
}

// Close drops the conversation history.
func (c *BedrockConverser) Close() error {
	c.mu.Lock()
	c.closed = true
	c.session = nil
	c.mu.Unlock()
	return nil
}

func outputText(out *bedrockruntime.ConverseOutput) string {
	if out == nil {
		return ""
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	return strings.TrimSpace(b.String())
}
