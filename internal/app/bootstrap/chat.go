package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/medibook/internal/chat"
	appconfig "github.com/wolfman30/medibook/internal/config"
	"github.com/wolfman30/medibook/pkg/logging"
)

// BuildChatProvider selects the generative model behind the assistant.
// Gemini is the default; "bedrock" routes turns through the Converse API.
func BuildChatProvider(ctx context.Context, cfg *appconfig.Config, pcfg chat.ProviderConfig, logger *logging.Logger) (chat.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if pcfg.Logger == nil {
		pcfg.Logger = logger
	}

	switch cfg.ChatProvider {
	case "", "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			logger.Warn("GEMINI_API_KEY not set; chat will answer with the connection fallback")
		}
		logger.Info("chat provider configured", "provider", "gemini", "model", cfg.GeminiModelID)
		return chat.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModelID, pcfg), nil
	case "bedrock":
		model := strings.TrimSpace(cfg.BedrockModelID)
		if model == "" {
			return nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for the bedrock chat provider")
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("chat provider configured", "provider", "bedrock", "model", model, "region", cfg.AWSRegion)
		return chat.NewBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), model, pcfg), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown chat provider %q", cfg.ChatProvider)
	}
}
