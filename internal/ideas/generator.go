// Package ideas expands a user's idea with a causal language model.
package ideas

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/insightsyn/internal/modelcache"
)

const promptTemplate = "Based on the following context: '%s'. Please brainstorm and expand on this idea: '%s'"

// Completer sends a single-turn prompt to a language model and returns the
// text it generated.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator loads its model through the shared cache on first use, so the
// one-time load cost is paid by the first request only.
type Generator struct {
	cache   *modelcache.Cache
	modelID string
	load    func(ctx context.Context) (Completer, error)
}

func NewGenerator(cache *modelcache.Cache, modelID string, load func(ctx context.Context) (Completer, error)) *Generator {
	return &Generator{cache: cache, modelID: modelID, load: load}
}

func BuildPrompt(userText, ideaContext string) string {
	return fmt.Sprintf(promptTemplate, ideaContext, userText)
}

// Generate returns only the model's continuation of the prompt built from
// userText and ideaContext.
func (g *Generator) Generate(ctx context.Context, userText, ideaContext string) (string, error) {
	model, err := modelcache.Load(ctx, g.cache, "generation/"+g.modelID, g.load)
	if err != nil {
		return "", fmt.Errorf("load generator: %w", err)
	}

	prompt := BuildPrompt(userText, ideaContext)
	start := time.Now()
	output, err := model.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	continuation := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(output), prompt))
	slog.Info("[IdeaGenerator] Generated continuation",
		slog.Int("chars", len(continuation)),
		slog.Duration("elapsed", time.Since(start)))
	return continuation, nil
}
