package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

const VALKEY_SUMMARY_KEY_PREFIX = "insightsyn:summary:"

// ValkeyClient memoizes summaries across restarts, keyed by model and input
// text. Summarization is the one remote call in an analysis, so it is the
// one worth caching.
type ValkeyClient struct {
	Client valkey.Client
	opts   valkey.ClientOption
	mu     sync.Mutex
}

func NewValkeyClient(addr, password string, useTLS bool) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			addr,
		},
		Password:         password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if useTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := connectValkey(opts)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", addr))
	return &ValkeyClient{Client: client, opts: opts}, nil
}

func connectValkey(opts valkey.ClientOption) (valkey.Client, error) {
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")

	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() error {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.Client.Close()
	return nil
}

// GetSummary returns a cached summary for text, if one exists.
func (vc *ValkeyClient) GetSummary(ctx context.Context, model, text string) (string, bool) {
	client := vc.client()
	res := vc.DoWithRetry(ctx, client.B().Get().Key(SummaryKey(model, text)).Build(), 3)

	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false
		}
		if isConnectionError(err) {
			vc.recreateClient()
		}
		slog.Warn("[ValkeyClient] Summary lookup failed",
			slog.String("error", err.Error()))
		return "", false
	}

	summary, err := res.ToString()
	if err != nil {
		return "", false
	}
	return summary, true
}

// StoreSummary caches summary for ttl.
func (vc *ValkeyClient) StoreSummary(ctx context.Context, model, text, summary string, ttl time.Duration) error {
	client := vc.client()
	cmd := client.B().Set().Key(SummaryKey(model, text)).Value(summary).ExSeconds(ttlSeconds(ttl)).Build()
	if err := vc.DoWithRetry(ctx, cmd, 3).Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return err
	}

	slog.Debug("[ValkeyClient] Summary cached",
		slog.String("model", model))
	return nil
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	client := vc.client()
	for i := 0; i < retries; i++ {
		result = client.Do(ctx, completed)
		if result.Error() == nil || valkey.IsValkeyNil(result.Error()) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

// ttlSeconds converts ttl to whole seconds for EX, which rejects anything
// below 1.
func ttlSeconds(ttl time.Duration) int64 {
	return max(int64(ttl/time.Second), 1)
}

// SummaryKey derives the cache key for a summary of text by model.
func SummaryKey(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return VALKEY_SUMMARY_KEY_PREFIX + hex.EncodeToString(hash[:])
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
