package chat

import (
	"context"

	"github.com/wolfman30/medibook/internal/i18n"
)

// Converser produces the model reply for one user message. It never fails:
// collaborator problems come back as localized fallback text.
type Converser interface {
	Converse(ctx context.Context, message string, lang i18n.Language) string
}

// ConverserFunc adapts a function to Converser.
type ConverserFunc func(ctx context.Context, message string, lang i18n.Language) string

func (f ConverserFunc) Converse(ctx context.Context, message string, lang i18n.Language) string {
	return f(ctx, message, lang)
}

// Provider creates one Converser per page session. Conversers may also
// implement io.Closer; the session closes them on teardown.
type Provider interface {
	Name() string
	NewConverser() Converser
}

// SystemInstruction is the fixed MediBot persona given to every provider.
const SystemInstruction = `You are MediBot, a helpful AI assistant for a hospital booking application called "MediBook".
Your goal is to assist users in finding the right care and understanding the booking process.
You are polite, professional, and concise.
The application supports both Korean and English.

You can answer questions about:
- General hospital information.
- What to bring to an appointment.
- How to book (fill out the form).
- General medical triage advice (always include a disclaimer that you are an AI and this is not professional medical advice).

If a user asks about specific waiting times or doctor availability, explain that you don't have real-time access but they can call the hospital directly using the phone number on the main page.`

// LanguageDirective is appended to each outgoing message so the reply follows
// the page language of that turn.
func LanguageDirective(lang i18n.Language) string {
	switch lang {
	case i18n.English:
		return "\n(System: Please answer strictly in English.)"
	case i18n.Korean:
		return "\n(System: 반드시 한국어로 답변해주세요.)"
	default:
		return "\n(System: 반드시 한국어로 답변해주세요.)"
	}
}

// Turn outcomes recorded in metrics.
const (
	outcomeOK          = "ok"
	outcomeEmpty       = "empty"
	outcomeError       = "error"
	outcomeUnavailable = "unavailable"
)
