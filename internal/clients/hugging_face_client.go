package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/insightsyn/internal/models"
)

// ErrNoSummary is returned when the inference API answers without a summary.
var ErrNoSummary = errors.New("summarizer returned no summary")

// HuggingFaceClient talks to the HuggingFace inference API for the models
// that are not run locally (summarization).
type HuggingFaceClient struct {
	Client         *http.Client
	baseURL        string
	model          string
	token          string
	initialBackoff time.Duration
}

type HuggingFaceOption func(*HuggingFaceClient)

func WithHTTPClient(c *http.Client) HuggingFaceOption {
	return func(h *HuggingFaceClient) { h.Client = c }
}

func WithInitialBackoff(d time.Duration) HuggingFaceOption {
	return func(h *HuggingFaceClient) { h.initialBackoff = d }
}

func NewHuggingFaceClient(baseURL, model, token, env string, opts ...HuggingFaceOption) *HuggingFaceClient {
	var timeout time.Duration
	if env == "production" {
		timeout = 10 * time.Second
	} else {
		timeout = 60 * time.Second
	}
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.Duration("timeout", timeout),
		slog.String("model", model),
		slog.String("env", env))

	h := &HuggingFaceClient{
		Client:         &http.Client{Timeout: timeout},
		baseURL:        strings.TrimSuffix(baseURL, "/") + "/",
		model:          model,
		token:          token,
		initialBackoff: INITIAL_BACKOFF,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HuggingFaceClient) endpoint() string {
	return h.baseURL + h.model
}

// DoWithRetry sends the request built by newReq, retrying transport errors
// and 5xx answers with exponential backoff.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.initialBackoff

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		var req *http.Request
		req, err = newReq()
		if err != nil {
			return nil, err
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if attempt == MAX_RETRIES-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	if err == nil {
		err = fmt.Errorf("%s", errMsg(nil, resp))
	}
	return nil, err
}

// Summarize produces a deterministic summary of text bounded to
// SUMMARY_MIN_LENGTH..SUMMARY_MAX_LENGTH tokens.
func (h *HuggingFaceClient) Summarize(ctx context.Context, text string) (string, error) {
	var result models.SummaryBatchResponse
	slog.Info("[HuggingFaceClient] Requesting summary from summarization service",
		slog.String("model", h.model))
	start := time.Now()

	input := models.SummaryRequest{
		Inputs: text,
		Parameters: models.SummaryParameters{
			MinLength: SUMMARY_MIN_LENGTH,
			MaxLength: SUMMARY_MAX_LENGTH,
			DoSample:  false,
		},
		Options: models.InferenceOptions{WaitForModel: true, UseCache: true},
	}

	if err := h.postJSON(ctx, h.endpoint(), input, &result); err != nil {
		slog.Error("[HuggingFaceClient] Summary Request Failed",
			slog.Duration("elapsed", time.Since(start)))
		return "", err
	}

	if len(result) == 0 || strings.TrimSpace(result[0].SummaryText) == "" {
		return "", ErrNoSummary
	}

	slog.Info("[HuggingFaceClient] Summary request successful",
		slog.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(result[0].SummaryText), nil
}

// HealthCheck reports whether the summarization endpoint is reachable and
// not failing server side.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint(), nil)
	if err != nil {
		return false
	}
	h.setHeaders(req)

	resp, err := h.Client.Do(req)
	if err != nil {
		slog.Warn("[HuggingFaceClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// helper function for posting data to the inference API
func (h *HuggingFaceClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			slog.Error("[HuggingFaceClient] Failed to build request",
				slog.String("endpoint", endpoint),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		h.setHeaders(req)
		return req, nil
	})
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))

		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to read response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr models.InferenceError
		_ = json.Unmarshal(respBody, &apiErr)
		slog.Error("[HuggingFaceClient] Inference API rejected request",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		if apiErr.Error != "" {
			return fmt.Errorf("inference api: status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("inference api: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(string(respBody))))

		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func (h *HuggingFaceClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", USER_AGENT)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
