package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the runtime configuration for every insightsyn command.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Port     int    `env:"PORT" envDefault:"8080"`

	// State
	StateFile string `env:"STATE_FILE" envDefault:"state.json"`

	// Local models (hugot)
	ModelDir        string `env:"MODEL_DIR" envDefault:"./models"`
	HugotBackend    string `env:"HUGOT_BACKEND" envDefault:"go"` // "go" (pure Go) or "ort" (onnxruntime)
	OnnxLibraryPath string `env:"ONNX_LIBRARY_PATH"`
	HFToken         string `env:"HF_TOKEN"`

	SentimentBackend string `env:"SENTIMENT_BACKEND" envDefault:"model"` // "model" or "vader"
	SentimentModel   string `env:"SENTIMENT_MODEL" envDefault:"KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"`
	NERModel         string `env:"NER_MODEL" envDefault:"KnightsAnalytics/distilbert-NER"`
	EmotionModel     string `env:"EMOTION_MODEL" envDefault:"SamLowe/roberta-base-go_emotions-onnx"`
	EmotionOnnxFile  string `env:"EMOTION_ONNX_FILE" envDefault:"onnx/model.onnx"`
	EmbeddingModel   string `env:"EMBEDDING_MODEL" envDefault:"KnightsAnalytics/all-MiniLM-L6-v2"`

	// Remote summarization (HuggingFace inference API)
	HFInferenceURL string `env:"HF_INFERENCE_URL" envDefault:"https://api-inference.huggingface.co/models/"`
	SummaryModel   string `env:"SUMMARY_MODEL" envDefault:"t5-small"`

	// Themes
	NumThemes   int   `env:"NUM_THEMES" envDefault:"2"`
	ClusterSeed int64 `env:"CLUSTER_SEED" envDefault:"42"`

	// Idea generation (OpenAI-compatible endpoint)
	LLMBaseURL   string `env:"LLM_BASE_URL" envDefault:"http://localhost:8000/v1/"`
	LLMAPIKey    string `env:"LLM_API_KEY"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"TinyLlama/TinyLlama-1.1B-Chat-v1.0"`
	LLMMaxTokens int64  `env:"LLM_MAX_TOKENS" envDefault:"250"`

	// Summary cache (optional)
	ValkeyAddress   string        `env:"VALKEY_INIT_ADDRESS"`
	ValkeyPassword  string        `env:"VALKEY_PASSWORD"`
	ValkeyTLS       bool          `env:"VALKEY_TLS" envDefault:"false"`
	SummaryCacheTTL time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"24h"`
}

// Load reads configuration from environment variables with defaults. A
// variable that is set but cannot be parsed is an error rather than a
// silent zero value.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("[Config] Failed to parse env",
			slog.String("error", err.Error()))
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
