package booking

import (
	"context"
	"time"

	"github.com/wolfman30/medibook/internal/notify"
	"github.com/wolfman30/medibook/pkg/logging"
)

const notifyTimeout = 10 * time.Second

// NotifyingSubmitter forwards to an inner submitter and, once a booking is
// accepted, emails the clinic inbox in the background. Email failures are
// logged only; they never change the booking result.
type NotifyingSubmitter struct {
	inner    Submitter
	sender   notify.EmailSender
	to       string
	language func() string
	logger   *logging.Logger
	now      func() time.Time
}

// NewNotifyingSubmitter wraps inner. An empty recipient or nil sender returns
// inner unchanged. language may be nil.
func NewNotifyingSubmitter(inner Submitter, sender notify.EmailSender, to string, language func() string, logger *logging.Logger) Submitter {
	if sender == nil || to == "" {
		return inner
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotifyingSubmitter{
		inner:    inner,
		sender:   sender,
		to:       to,
		language: language,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *NotifyingSubmitter) Submit(ctx context.Context, form Form) error {
	if err := s.inner.Submit(ctx, form); err != nil {
		return err
	}

	notice := notify.BookingNotice{
		FullName:   form.FullName,
		Phone:      form.Phone,
		Email:      form.Email,
		Consent:    form.Consent,
		ReceivedAt: s.now(),
	}
	if s.language != nil {
		notice.Language = s.language()
	}
	msg := notice.Message(s.to)

	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.sender.Send(sendCtx, msg); err != nil {
			s.logger.Warn("booking: clinic notification failed", "error", err)
		}
	}()
	return nil
}
