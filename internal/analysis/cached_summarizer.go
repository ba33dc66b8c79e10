package analysis

import (
	"context"
	"log/slog"
	"time"
)

type SummaryCache interface {
	GetSummary(ctx context.Context, model, text string) (string, bool)
	StoreSummary(ctx context.Context, model, text, summary string, ttl time.Duration) error
}

// CachedSummarizer consults cache before calling the wrapped summarizer and
// stores fresh summaries for ttl. Cache failures only cost a model call.
type CachedSummarizer struct {
	next  Summarizer
	cache SummaryCache
	model string
	ttl   time.Duration
}

func NewCachedSummarizer(next Summarizer, cache SummaryCache, model string, ttl time.Duration) *CachedSummarizer {
	return &CachedSummarizer{next: next, cache: cache, model: model, ttl: ttl}
}

func (c *CachedSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if summary, ok := c.cache.GetSummary(ctx, c.model, text); ok {
		slog.Debug("[SummaryCache] Hit", slog.String("model", c.model))
		return summary, nil
	}

	summary, err := c.next.Summarize(ctx, text)
	if err != nil {
		return "", err
	}

	if err := c.cache.StoreSummary(ctx, c.model, text, summary, c.ttl); err != nil {
		slog.Warn("[SummaryCache] Failed to store summary",
			slog.String("model", c.model),
			slog.String("error", err.Error()))
	}
	return summary, nil
}
