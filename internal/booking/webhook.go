package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WebhookSubmitter posts the raw form record as JSON to a spreadsheet web app
// (Google Apps Script doPost). Any 2xx response is success; the body is ignored.
type WebhookSubmitter struct {
	url    string
	client *http.Client
	tracer trace.Tracer
}

// NewWebhookSubmitter creates a webhook submitter. A nil client gets a 15s timeout.
func NewWebhookSubmitter(url string, client *http.Client) (*WebhookSubmitter, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("booking: webhook url is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &WebhookSubmitter{
		url:    url,
		client: client,
		tracer: otel.Tracer("medibook.internal.booking.webhook"),
	}, nil
}

func (s *WebhookSubmitter) Submit(ctx context.Context, form Form) error {
	ctx, span := s.tracer.Start(ctx, "booking.webhook.submit")
	defer span.End()

	payload, err := json.Marshal(form)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: webhook returned status %d", ErrSubmissionFailed, resp.StatusCode)
	}
	return nil
}

var _ Submitter = (*WebhookSubmitter)(nil)
