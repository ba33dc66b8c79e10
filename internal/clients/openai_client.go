package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIRequestTimeout = 120 * time.Second // local models on CPU are slow
)

// ErrNoCompletion is returned when the endpoint answers without any choice.
var ErrNoCompletion = errors.New("generation returned no completion")

// OpenAIClient drives a causal language model behind an OpenAI-compatible
// chat completions endpoint (OpenAI itself, or a local llama.cpp/Ollama
// server hosting the chat model).
type OpenAIClient struct {
	Client    *openai.Client
	model     string
	maxTokens int64
}

func NewOpenAIClient(baseURL, apiKey, model string, maxTokens int64, extra ...option.RequestOption) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
		option.WithHeader("User-Agent", USER_AGENT),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/"))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	opts = append(opts, extra...)

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model),
		slog.String("base_url", baseURL),
		slog.Int64("max_tokens", maxTokens),
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClient{
		Client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends prompt as a single user turn and returns the generated
// continuation.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	completion, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:     openai.F(openai.ChatModel(c.model)),
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		slog.Error("[OpenAIClient] Completion request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", ErrNoCompletion
	}

	slog.Info("[OpenAIClient] Completion finished",
		slog.String("finish_reason", string(completion.Choices[0].FinishReason)),
		slog.Int64("completion_tokens", completion.Usage.CompletionTokens),
		slog.Duration("elapsed", time.Since(start)))

	return completion.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) MaxTokens() int64 {
	return c.maxTokens
}
