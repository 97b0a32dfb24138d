package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/wolfman30/medibook/internal/booking"
	appconfig "github.com/wolfman30/medibook/internal/config"
	"github.com/wolfman30/medibook/internal/notify"
	"github.com/wolfman30/medibook/internal/pagesession"
	"github.com/wolfman30/medibook/pkg/logging"
)

// BuildEmailSender returns the sender used for clinic booking notices, or nil
// when no notification address is configured.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil || strings.TrimSpace(cfg.BookingNotifyEmail) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "", "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("SENDGRID_API_KEY not set; booking notices are logged only")
			return notify.NewStubEmailSender(logger), nil
		}
		return sender, nil
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger), nil
	case "stub":
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}

// BuildSubmitterFactory picks the spreadsheet transport: the web app webhook,
// the Sheets API, or the simulated submitter when neither is configured.
// Every page's submitter also mails the clinic when sender is set.
func BuildSubmitterFactory(ctx context.Context, cfg *appconfig.Config, sender notify.EmailSender, logger *logging.Logger) (pagesession.SubmitterFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var inner booking.Submitter
	switch {
	case strings.TrimSpace(cfg.BookingWebhookURL) != "":
		webhook, err := booking.NewWebhookSubmitter(cfg.BookingWebhookURL, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("booking submitter configured", "transport", "webhook")
		inner = webhook
	case strings.TrimSpace(cfg.BookingSheetID) != "":
		sheet, err := booking.NewSheetsSubmitter(ctx, booking.SheetsConfig{
			SpreadsheetID:   cfg.BookingSheetID,
			Range:           cfg.BookingSheetRange,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("booking submitter configured", "transport", "sheets", "range", cfg.BookingSheetRange)
		inner = sheet
	default:
		logger.Warn("no spreadsheet configured; bookings are simulated")
		inner = booking.NewSimulatedSubmitter(cfg.BookingSimulatedDelay, logger)
	}

	return func(language func() string) booking.Submitter {
		return booking.NewNotifyingSubmitter(inner, sender, cfg.BookingNotifyEmail, language, logger)
	}, nil
}
