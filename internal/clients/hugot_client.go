package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/insightsyn/internal/modelcache"
	"github.com/spacesedan/insightsyn/internal/models"
	"github.com/spacesedan/insightsyn/internal/utils"
)

// ModelRef names a model on the HuggingFace hub and, for repositories that
// ship several exports, which ONNX file to load. MultiLabel marks
// classifiers trained with independent per-class sigmoids.
type ModelRef struct {
	Repo       string
	OnnxFile   string
	MultiLabel bool
}

func (r ModelRef) String() string {
	name := r.Repo
	if r.OnnxFile != "" {
		name += ":" + r.OnnxFile
	}
	if r.MultiLabel {
		name += "+multilabel"
	}
	return name
}

func (r ModelRef) onnxFilename() string {
	if r.OnnxFile == "" {
		return ""
	}
	return filepath.Base(r.OnnxFile)
}

// LocalDir is where the model lands inside modelDir once downloaded.
func (r ModelRef) LocalDir(modelDir string) string {
	return filepath.Join(modelDir, strings.ReplaceAll(r.Repo, "/", "_"))
}

// HugotClient owns the hugot session and builds pipelines on demand. Every
// pipeline is memoized in the shared model cache.
type HugotClient struct {
	session   *hugot.Session
	cache     *modelcache.Cache
	modelDir  string
	authToken string

	// hugot sessions are not safe for concurrent pipeline creation
	mu sync.Mutex
}

func NewHugotClient(backend, onnxLibraryPath, modelDir, authToken string, cache *modelcache.Cache) (*HugotClient, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		slog.Error("[HugotClient] Failed to create model directory",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("create model dir: %w", err)
	}

	var session *hugot.Session
	var err error
	switch backend {
	case "ort":
		var opts []options.WithOption
		if onnxLibraryPath != "" {
			opts = append(opts, options.WithOnnxLibraryPath(onnxLibraryPath))
		}
		session, err = hugot.NewORTSession(opts...)
	case "go", "":
		session, err = hugot.NewGoSession()
	default:
		return nil, fmt.Errorf("unknown hugot backend %q", backend)
	}
	if err != nil {
		slog.Error("[HugotClient] Failed to initialize Hugot session", slog.String("error", err.Error()))
		return nil, fmt.Errorf("hugot session: %w", err)
	}

	slog.Info("[HugotClient] Session ready",
		slog.String("backend", backend),
		slog.String("model_dir", modelDir))

	return &HugotClient{
		session:   session,
		cache:     cache,
		modelDir:  modelDir,
		authToken: authToken,
	}, nil
}

func (h *HugotClient) Close() error {
	if h.session == nil {
		return nil
	}
	return h.session.Destroy()
}

// EnsureModel downloads ref into the model directory unless it is there
// already, and returns the local path.
func (h *HugotClient) EnsureModel(ref ModelRef) (string, error) {
	path := ref.LocalDir(h.modelDir)
	if _, err := os.Stat(path); err == nil {
		slog.Info("[HugotClient] Using existing model", slog.String("path", path))
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat model dir: %w", err)
	}

	slog.Info("[HugotClient] Model not found, downloading...", slog.String("model", ref.Repo))
	opts := hugot.NewDownloadOptions()
	opts.AuthToken = h.authToken
	opts.OnnxFilePath = ref.OnnxFile
	modelPath, err := hugot.DownloadModel(ref.Repo, h.modelDir, opts)
	if err != nil {
		slog.Error("[HugotClient] Failed to download model",
			slog.String("model", ref.Repo),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("download %s: %w", ref.Repo, err)
	}
	slog.Info("[HugotClient] Model downloaded successfully", slog.String("path", modelPath))
	return modelPath, nil
}

func pipelineName(task string, ref ModelRef) string {
	return task + "/" + ref.String()
}

func (h *HugotClient) textClassificationPipeline(ctx context.Context, ref ModelRef) (*pipelines.TextClassificationPipeline, error) {
	name := pipelineName("text-classification", ref)
	return modelcache.Load(ctx, h.cache, name, func(context.Context) (*pipelines.TextClassificationPipeline, error) {
		path, err := h.EnsureModel(ref)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		return hugot.NewPipeline(h.session, hugot.TextClassificationConfig{
			ModelPath:    path,
			Name:         name,
			OnnxFilename: ref.onnxFilename(),
			Options:      textClassificationOptions(ref),
		})
	})
}

// textClassificationOptions scores multi-label models with a sigmoid per
// class; single-label models keep the softmax default.
func textClassificationOptions(ref ModelRef) []hugot.TextClassificationOption {
	if !ref.MultiLabel {
		return nil
	}
	return []hugot.TextClassificationOption{
		pipelines.WithSigmoid(),
		pipelines.WithMultiLabel(),
	}
}

func (h *HugotClient) tokenClassificationPipeline(ctx context.Context, ref ModelRef) (*pipelines.TokenClassificationPipeline, error) {
	name := pipelineName("token-classification", ref)
	return modelcache.Load(ctx, h.cache, name, func(context.Context) (*pipelines.TokenClassificationPipeline, error) {
		path, err := h.EnsureModel(ref)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		return hugot.NewPipeline(h.session, hugot.TokenClassificationConfig{
			ModelPath:    path,
			Name:         name,
			OnnxFilename: ref.onnxFilename(),
			Options: []hugot.TokenClassificationOption{
				pipelines.WithSimpleAggregation(),
				pipelines.WithIgnoreLabels([]string{"O"}),
			},
		})
	})
}

func (h *HugotClient) featureExtractionPipeline(ctx context.Context, ref ModelRef) (*pipelines.FeatureExtractionPipeline, error) {
	name := pipelineName("feature-extraction", ref)
	return modelcache.Load(ctx, h.cache, name, func(context.Context) (*pipelines.FeatureExtractionPipeline, error) {
		path, err := h.EnsureModel(ref)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		return hugot.NewPipeline(h.session, hugot.FeatureExtractionConfig{
			ModelPath:    path,
			Name:         name,
			OnnxFilename: ref.onnxFilename(),
			Options: []hugot.FeatureExtractionOption{
				pipelines.WithNormalization(),
			},
		})
	})
}

// TextClassifier runs a sequence classification model (sentiment, emotion).
type TextClassifier struct {
	client *HugotClient
	ref    ModelRef
}

func (h *HugotClient) TextClassifier(ref ModelRef) *TextClassifier {
	return &TextClassifier{client: h, ref: ref}
}

// Classify returns the model's predictions for text, best first.
func (c *TextClassifier) Classify(ctx context.Context, text string) ([]models.Prediction, error) {
	p, err := c.client.textClassificationPipeline(ctx, c.ref)
	if err != nil {
		return nil, err
	}
	out, err := p.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("classify with %s: %w", c.ref, err)
	}
	if len(out.ClassificationOutputs) == 0 {
		return nil, nil
	}

	predictions := make([]models.Prediction, 0, len(out.ClassificationOutputs[0]))
	for _, o := range out.ClassificationOutputs[0] {
		predictions = append(predictions, models.Prediction{Label: o.Label, Score: float64(o.Score)})
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Score > predictions[j].Score
	})
	return predictions, nil
}

// TokenClassifier runs a named-entity recognition model with grouped spans.
type TokenClassifier struct {
	client *HugotClient
	ref    ModelRef
}

func (h *HugotClient) TokenClassifier(ref ModelRef) *TokenClassifier {
	return &TokenClassifier{client: h, ref: ref}
}

func (c *TokenClassifier) Extract(ctx context.Context, text string) ([]models.Entity, error) {
	p, err := c.client.tokenClassificationPipeline(ctx, c.ref)
	if err != nil {
		return nil, err
	}
	out, err := p.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("extract entities with %s: %w", c.ref, err)
	}
	if len(out.Entities) == 0 {
		return nil, nil
	}

	entities := make([]models.Entity, 0, len(out.Entities[0]))
	for _, e := range out.Entities[0] {
		entities = append(entities, models.Entity{
			Word:  e.Word,
			Label: e.Entity,
			Score: float64(e.Score),
		})
	}
	return entities, nil
}

// FeatureExtractor embeds sentences into fixed-length normalized vectors.
type FeatureExtractor struct {
	client *HugotClient
	ref    ModelRef
}

func (h *HugotClient) FeatureExtractor(ref ModelRef) *FeatureExtractor {
	return &FeatureExtractor{client: h, ref: ref}
}

func (f *FeatureExtractor) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p, err := f.client.featureExtractionPipeline(ctx, f.ref)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, 0, len(texts))
	for _, batch := range utils.Batches(texts, utils.BATCH_SIZE) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := p.RunPipeline(batch)
		if err != nil {
			return nil, fmt.Errorf("embed with %s: %w", f.ref, err)
		}
		if len(out.Embeddings) != len(batch) {
			return nil, fmt.Errorf("embed with %s: got %d vectors for %d inputs", f.ref, len(out.Embeddings), len(batch))
		}
		embeddings = append(embeddings, out.Embeddings...)
	}
	return embeddings, nil
}
