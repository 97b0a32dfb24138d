package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// SheetsConfig selects the spreadsheet that receives booking rows.
type SheetsConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
}

// SheetsSubmitter appends one row per booking through the Google Sheets API.
type SheetsSubmitter struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	rng           string
	tracer        trace.Tracer
	now           func() time.Time
}

// NewSheetsSubmitter builds a Sheets client. Extra client options are appended
// after the credentials option.
func NewSheetsSubmitter(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsSubmitter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("booking: spreadsheet id is required")
	}
	if strings.TrimSpace(cfg.Range) == "" {
		cfg.Range = "Bookings!A:F"
	}
	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("booking: create sheets service: %w", err)
	}
	return &SheetsSubmitter{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		rng:           cfg.Range,
		tracer:        otel.Tracer("medibook.internal.booking.sheets"),
		now:           time.Now,
	}, nil
}

func (s *SheetsSubmitter) Submit(ctx context.Context, form Form) error {
	ctx, span := s.tracer.Start(ctx, "booking.sheets.append")
	defer span.End()

	row := &sheets.ValueRange{
		Values: [][]interface{}{sheetRow(form, s.now())},
	}
	_, err := s.values.Append(s.spreadsheetID, s.rng, row).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: sheets append: %v", ErrSubmissionFailed, err)
	}
	return nil
}

func sheetRow(form Form, at time.Time) []interface{} {
	return []interface{}{
		at.UTC().Format(time.RFC3339),
		form.FullName,
		form.Phone,
		form.Email,
		form.Consent,
	}
}

var _ Submitter = (*SheetsSubmitter)(nil)
