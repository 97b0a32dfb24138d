package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/medibook/internal/app/bootstrap"
	"github.com/wolfman30/medibook/internal/chat"
	appconfig "github.com/wolfman30/medibook/internal/config"
	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	langFlag := flag.String("lang", "ko", "reply language (ko or en)")
	timeout := flag.Duration("timeout", 30*time.Second, "per-turn timeout")
	flag.Parse()

	lang, err := i18n.ParseLanguage(*langFlag)
	if err != nil {
		log.Fatalf("invalid -lang: %v", err)
	}

	messages := flag.Args()
	if len(messages) == 0 {
		messages = []string{
			"강남 근처에 예약 가능한 병원이 있나요?",
			"What should I bring to my first visit?",
		}
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	provider, err := bootstrap.BuildChatProvider(ctx, cfg, chat.ProviderConfig{}, logger)
	if err != nil {
		log.Fatalf("chat provider: %v", err)
	}
	converser := provider.NewConverser()
	if closer, ok := converser.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	fmt.Printf("Chat probe: provider=%s lang=%s\n", provider.Name(), lang)
	for i, msg := range messages {
		turnCtx, cancel := context.WithTimeout(ctx, *timeout)
		start := time.Now()
		reply := converser.Converse(turnCtx, msg, lang)
		cancel()
		fmt.Printf("\n[%d] user: %s\n    model (%v): %s\n", i+1, msg, time.Since(start).Round(time.Millisecond), reply)
	}

	if cfg.GeminiAPIKey == "" && provider.Name() == "gemini" {
		fmt.Println("\nGEMINI_API_KEY is not set; replies above are the connection fallback.")
	}
}
