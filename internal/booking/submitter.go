package booking

import (
	"context"
	"time"

	"github.com/wolfman30/medibook/pkg/logging"
)

// Submitter hands a validated booking to the external spreadsheet.
// A nil error means the booking was accepted.
type Submitter interface {
	Submit(ctx context.Context, form Form) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, form Form) error

func (f SubmitterFunc) Submit(ctx context.Context, form Form) error {
	return f(ctx, form)
}

// SimulatedSubmitter stands in for the spreadsheet when none is configured:
// it waits, logs, and accepts every booking.
type SimulatedSubmitter struct {
	delay  time.Duration
	logger *logging.Logger
}

// NewSimulatedSubmitter creates a submitter that always succeeds after delay.
func NewSimulatedSubmitter(delay time.Duration, logger *logging.Logger) *SimulatedSubmitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &SimulatedSubmitter{delay: delay, logger: logger}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, form Form) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	s.logger.Info("booking: simulated spreadsheet submission",
		"has_name", form.FullName != "",
		"has_phone", form.Phone != "",
		"has_email", form.Email != "",
		"consent", form.Consent,
	)
	return nil
}

var _ Submitter = (*SimulatedSubmitter)(nil)
