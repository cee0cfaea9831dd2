package ai

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/logsentinel/internal/config"
	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
	"github.com/bryanwahyu/logsentinel/internal/infra/ai/gemini"
	"github.com/bryanwahyu/logsentinel/internal/infra/ai/openai"
)

// NewAnalyzer builds the analyzer backend selected in config.
func NewAnalyzer(ctx context.Context, cfg config.AIConfig) (analysis.Analyzer, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewClient(ctx, cfg.APIKey, cfg.Model, cfg.EnforceScoreLevel)

	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewClient(cfg.APIKey, cfg.Model, cfg.EnforceScoreLevel), nil

	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
}
