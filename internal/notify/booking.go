package notify

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
)

// ErrNotConfigured is returned by a sender that has no client.
var ErrNotConfigured = errors.New("notify: email sender not configured")

// BookingNotice is a booking request as announced to the clinic inbox.
type BookingNotice struct {
	FullName   string
	Phone      string
	Email      string
	Consent    bool
	Language   string
	ReceivedAt time.Time
}

// Message renders the notice as an email addressed to the clinic inbox.
func (n BookingNotice) Message(to string) EmailMessage {
	received := n.ReceivedAt.UTC().Format("2006-01-02 15:04 MST")
	consent := "no"
	if n.Consent {
		consent = "yes"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "New booking request received %s.\n\n", received)
	fmt.Fprintf(&body, "Name: %s\n", n.FullName)
	fmt.Fprintf(&body, "Phone: %s\n", n.Phone)
	fmt.Fprintf(&body, "Email: %s\n", n.Email)
	fmt.Fprintf(&body, "Privacy consent: %s\n", consent)
	if n.Language != "" {
		fmt.Fprintf(&body, "Page language: %s\n", n.Language)
	}
	body.WriteString("\nPlease call the patient to confirm a time.\n\n- MediBook")

	rows := []string{
		htmlRow("Name", html.EscapeString(n.FullName)),
		htmlRow("Phone", fmt.Sprintf(`<a href="tel:%s">%s</a>`, html.EscapeString(n.Phone), html.EscapeString(n.Phone))),
		htmlRow("Email", html.EscapeString(n.Email)),
		htmlRow("Privacy consent", consent),
	}
	if n.Language != "" {
		rows = append(rows, htmlRow("Page language", html.EscapeString(n.Language)))
	}

	return EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("New booking request - %s", n.FullName),
		Body:    body.String(),
		HTML: fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>New booking request</h2>
<p>Received %s</p>
<table style="border-collapse: collapse; margin: 20px 0;">
%s
</table>
<p>Please call the patient to confirm a time.</p>
</div>`, html.EscapeString(received), strings.Join(rows, "\n")),
	}
}

// htmlRow expects value to be escaped already.
func htmlRow(label, value string) string {
	return fmt.Sprintf(`<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, label, value)
}
