package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/relevance"
)

// NewScorer builds the configured relevance backend wrapped in a retrying
// adapter. The returned func releases backend resources.
func NewScorer(cfg config.Config, stats *relevance.Stats, log *slog.Logger) (relevance.Scorer, func(), error) {
	var model relevance.Model
	closeFn := func() {}

	switch cfg.Scorer {
	case config.ScorerKeyword, "":
		model = relevance.KeywordModel{}
	case config.ScorerClaude:
		c := relevance.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		model, closeFn = c, c.Close
	case config.ScorerOllama:
		model = relevance.NewOllamaClient(
			relevance.WithOllamaURL(cfg.OllamaURL),
			relevance.WithOllamaModel(cfg.OllamaModel),
		)
	default:
		return nil, nil, fmt.Errorf("unknown scorer %q", cfg.Scorer)
	}

	log.Info("relevance scorer ready", "backend", cfg.Scorer)
	opts := []relevance.Option{
		relevance.WithLogger(log),
		relevance.WithMaxRetries(cfg.ScorerMaxRetries),
	}
	if stats != nil {
		opts = append(opts, relevance.WithStats(stats))
	}
	return relevance.NewAdapter(model, opts...), closeFn, nil
}
