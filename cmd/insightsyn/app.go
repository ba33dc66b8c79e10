package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/insightsyn/config"
	"github.com/spacesedan/insightsyn/internal/analysis"
	"github.com/spacesedan/insightsyn/internal/clients"
	"github.com/spacesedan/insightsyn/internal/ideas"
	"github.com/spacesedan/insightsyn/internal/insight"
	"github.com/spacesedan/insightsyn/internal/modelcache"
	"github.com/spacesedan/insightsyn/internal/sentiment"
	"github.com/spacesedan/insightsyn/internal/state"
	"github.com/spacesedan/insightsyn/internal/themes"
)

// app is the wired object graph shared by every command.
type app struct {
	service    *insight.Service
	summarizer *clients.HuggingFaceClient
	cache      *modelcache.Cache
	hugot      *clients.HugotClient
	valkey     *clients.ValkeyClient
}

// progressHook tells the user a call is about to block on a model load.
type progressHook struct {
	w io.Writer
}

func (p progressHook) OnLoadStart(id string) {
	fmt.Fprintf(p.w, "Loading model %s...\n", id)
}

func (p progressHook) OnLoadDone(id string, elapsed time.Duration, err error) {
	if err != nil {
		fmt.Fprintf(p.w, "Loading model %s failed: %v\n", id, err)
		return
	}
	fmt.Fprintf(p.w, "Model %s ready (%s)\n", id, elapsed.Round(time.Millisecond))
}

func buildApp(cfg config.Config, progress io.Writer) (*app, error) {
	cache := modelcache.New(modelcache.WithHook(progressHook{w: progress}))

	hugotClient, err := clients.NewHugotClient(cfg.HugotBackend, cfg.OnnxLibraryPath, cfg.ModelDir, cfg.HFToken, cache)
	if err != nil {
		return nil, err
	}

	a := &app{cache: cache, hugot: hugotClient}
	a.summarizer = clients.NewHuggingFaceClient(cfg.HFInferenceURL, cfg.SummaryModel, cfg.HFToken, cfg.Env)

	var summarizer analysis.Summarizer = a.summarizer
	if cfg.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(cfg.ValkeyAddress, cfg.ValkeyPassword, cfg.ValkeyTLS)
		if err != nil {
			slog.Warn("[Main] Summary cache unavailable, continuing without it",
				slog.String("error", err.Error()))
		} else {
			a.valkey = vc
			summarizer = analysis.NewCachedSummarizer(a.summarizer, vc, cfg.SummaryModel, cfg.SummaryCacheTTL)
		}
	}

	var sentimentClassifier analysis.Classifier
	switch cfg.SentimentBackend {
	case "vader":
		sentimentClassifier = sentiment.NewVaderClassifier()
	case "model", "":
		sentimentClassifier = hugotClient.TextClassifier(clients.ModelRef{Repo: cfg.SentimentModel})
	default:
		a.Close()
		return nil, fmt.Errorf("unknown sentiment backend %q", cfg.SentimentBackend)
	}

	generator := ideas.NewGenerator(cache, cfg.LLMModel, func(ctx context.Context) (ideas.Completer, error) {
		return clients.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens), nil
	})

	a.service = insight.NewService(insight.Deps{
		Text: analysis.NewTextAnalyzer(
			summarizer,
			sentimentClassifier,
			hugotClient.TokenClassifier(clients.ModelRef{Repo: cfg.NERModel}),
		),
		Emotion: analysis.NewEmotionAnalyzer(
			hugotClient.TextClassifier(clients.ModelRef{Repo: cfg.EmotionModel, OnnxFile: cfg.EmotionOnnxFile, MultiLabel: true}),
		),
		Clusterer: themes.NewClusterer(
			hugotClient.FeatureExtractor(clients.ModelRef{Repo: cfg.EmbeddingModel}),
			cfg.ClusterSeed,
		),
		Generator: generator,
		Store:     state.NewStore(cfg.StateFile),
	}, cfg.NumThemes)

	return a, nil
}

// Close releases the loaded pipelines, then the session that owns them.
func (a *app) Close() error {
	var errs []error
	if err := a.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close model cache: %w", err))
	}
	if err := a.hugot.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close hugot session: %w", err))
	}
	if a.valkey != nil {
		if err := a.valkey.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close valkey: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withApp builds the app, runs fn and always releases the app afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := buildApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("[Main] Shutdown was not clean", slog.String("error", err.Error()))
		}
	}()
	return fn(cmd.Context(), a)
}
