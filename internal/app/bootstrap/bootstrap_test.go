package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	appconfig "github.com/wolfman30/medibook/internal/config"
	"github.com/wolfman30/medibook/internal/notify"
	"github.com/wolfman30/medibook/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "error")
}

func TestLoadAWSConfigUsesStaticKeys(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:          "ap-northeast-2",
		AWSAccessKeyID:     "AKIDEXAMPLE",
		AWSSecretAccessKey: "secret",
	}
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "ap-northeast-2" {
		t.Fatalf("expected region ap-northeast-2, got %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "AKIDEXAMPLE" {
		t.Fatalf("expected static access key, got %q", creds.AccessKeyID)
	}
}

func TestBuildChatProviderRequiresConfig(t *testing.T) {
	if _, err := BuildChatProvider(context.Background(), nil, chat.ProviderConfig{}, testLogger()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildChatProviderDefaultsToGemini(t *testing.T) {
	provider, err := BuildChatProvider(context.Background(), &appconfig.Config{}, chat.ProviderConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "gemini" {
		t.Fatalf("expected gemini provider, got %q", provider.Name())
	}
}

func TestBuildChatProviderBedrock(t *testing.T) {
	cfg := &appconfig.Config{ChatProvider: "bedrock", AWSRegion: "us-east-1"}
	if _, err := BuildChatProvider(context.Background(), cfg, chat.ProviderConfig{}, testLogger()); err == nil {
		t.Fatalf("expected error when bedrock model id is empty")
	}

	cfg.BedrockModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	cfg.AWSAccessKeyID = "AKIDEXAMPLE"
	cfg.AWSSecretAccessKey = "secret"
	provider, err := BuildChatProvider(context.Background(), cfg, chat.ProviderConfig{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "bedrock" {
		t.Fatalf("expected bedrock provider, got %q", provider.Name())
	}
}

func TestBuildChatProviderUnknown(t *testing.T) {
	cfg := &appconfig.Config{ChatProvider: "palm"}
	if _, err := BuildChatProvider(context.Background(), cfg, chat.ProviderConfig{}, testLogger()); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestBuildEmailSender(t *testing.T) {
	ctx := context.Background()

	sender, err := BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "sendgrid"}, testLogger())
	if err != nil || sender != nil {
		t.Fatalf("expected no sender without a recipient, got %v, %v", sender, err)
	}

	cfg := &appconfig.Config{BookingNotifyEmail: "desk@clinic.example", EmailProvider: "sendgrid"}
	sender, err = BuildEmailSender(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sender.(*notify.StubEmailSender); !ok {
		t.Fatalf("expected stub sender without a SendGrid key, got %T", sender)
	}

	cfg.SendGridAPIKey = "SG.test"
	sender, err = BuildEmailSender(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sender.(*notify.SendGridSender); !ok {
		t.Fatalf("expected SendGrid sender, got %T", sender)
	}

	cfg.EmailProvider = "ses"
	cfg.AWSRegion = "ap-northeast-2"
	cfg.AWSAccessKeyID = "AKIDEXAMPLE"
	cfg.AWSSecretAccessKey = "secret"
	sender, err = BuildEmailSender(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sender.(*notify.SESSender); !ok {
		t.Fatalf("expected SES sender, got %T", sender)
	}

	cfg.EmailProvider = "pigeon"
	if _, err := BuildEmailSender(ctx, cfg, testLogger()); err == nil {
		t.Fatalf("expected error for unknown email provider")
	}
}

func TestBuildSubmitterFactorySimulated(t *testing.T) {
	factory, err := BuildSubmitterFactory(context.Background(), &appconfig.Config{}, nil, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	submitter := factory(func() string { return "ko" })
	if _, ok := submitter.(*booking.SimulatedSubmitter); !ok {
		t.Fatalf("expected simulated submitter, got %T", submitter)
	}
	if err := submitter.Submit(context.Background(), booking.Form{FullName: "Kim"}); err != nil {
		t.Fatalf("simulated submit failed: %v", err)
	}
}

func TestBuildSubmitterFactoryWebhookWithNotice(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &appconfig.Config{BookingWebhookURL: srv.URL, BookingNotifyEmail: "desk@clinic.example"}
	factory, err := BuildSubmitterFactory(context.Background(), cfg, notify.NewStubEmailSender(testLogger()), testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	submitter := factory(func() string { return "en" })
	if _, ok := submitter.(*booking.NotifyingSubmitter); !ok {
		t.Fatalf("expected notifying submitter, got %T", submitter)
	}
	if err := submitter.Submit(context.Background(), booking.Form{FullName: "Kim", Phone: "010", Email: "a@b.c", Consent: true}); err != nil {
		t.Fatalf("webhook submit failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one webhook call, got %d", hits.Load())
	}
}

func TestBuildRedisClient(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, testLogger(), true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, testLogger(), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, testLogger(), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildSubmitGuard(t *testing.T) {
	guard, cleanup := BuildSubmitGuard(context.Background(), &appconfig.Config{BookingGuardTTL: time.Second}, testLogger())
	defer cleanup()
	if _, ok := guard.(*booking.MemoryGuard); !ok {
		t.Fatalf("expected memory guard, got %T", guard)
	}

	mr := miniredis.RunT(t)
	guard, cleanupRedis := BuildSubmitGuard(context.Background(), &appconfig.Config{RedisAddr: mr.Addr(), BookingGuardTTL: time.Second}, testLogger())
	defer cleanupRedis()
	if _, ok := guard.(*booking.RedisGuard); !ok {
		t.Fatalf("expected redis guard, got %T", guard)
	}
	if err := guard.Acquire(context.Background(), "page-1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := guard.Acquire(context.Background(), "page-1"); err == nil {
		t.Fatalf("expected duplicate acquire to fail")
	}
}
