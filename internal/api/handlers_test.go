package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/insightsyn/internal/insight"
	"github.com/spacesedan/insightsyn/internal/models"
	"github.com/spacesedan/insightsyn/internal/themes"
)

func newTestServer(analyst Analyst, healthy *atomic.Bool) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(analyst, healthy, 2, log).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalyzeHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*MockAnalyst)
		wantStatus int
		check      func(*testing.T, map[string]any)
	}{
		{
			name: "success",
			body: `{"text": "Apple released a new iPhone."}`,
			setup: func(m *MockAnalyst) {
				m.On("Analyze", mock.Anything, "Apple released a new iPhone.").Return(models.AnalysisResult{
					ID:        "a1",
					Summary:   "Apple released a new iPhone.",
					Sentiment: models.Sentiment{Label: "POSITIVE", Score: 0.9998},
					Entities:  []string{"Apple"},
					Themes:    models.SingleTheme([]string{"Apple"}),
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "a1", body["id"])
				assert.Equal(t, map[string]any{"Theme 1": []any{"Apple"}}, body["themes"])
				assert.NotContains(t, body, "errors")
			},
		},
		{
			name: "blank text",
			body: `{"text": "   "}`,
			setup: func(m *MockAnalyst) {
				m.On("Analyze", mock.Anything, "   ").Return(models.AnalysisResult{}, insight.ErrEmptyInput).Once()
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, insight.ErrEmptyInput.Error(), body["error"])
			},
		},
		{
			name:       "malformed body",
			body:       `{"text":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "backend failure",
			body: `{"text": "hello"}`,
			setup: func(m *MockAnalyst) {
				m.On("Analyze", mock.Anything, "hello").
					Return(models.AnalysisResult{}, fmt.Errorf("%w: backend down", insight.ErrAnalysisFailed)).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockAnalyst{}
			if tt.setup != nil {
				tt.setup(m)
			}
			rec := do(t, newTestServer(m, nil), http.MethodPost, "/api/analyze", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.check != nil {
				tt.check(t, decodeBody(t, rec))
			}
			m.AssertExpectations(t)
		})
	}
}

func TestEmotionHandler(t *testing.T) {
	m := &MockAnalyst{}
	m.On("AnalyzeTextEmotion", mock.Anything, "").Return(models.Emotion{Primary: models.EmotionUnknown}).Once()

	rec := do(t, newTestServer(m, nil), http.MethodPost, "/api/emotion", `{"text": ""}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"primary": "unknown", "score": 0.0}, decodeBody(t, rec))
	m.AssertExpectations(t)
}

func TestThemesHandler(t *testing.T) {
	t.Run("defaults k", func(t *testing.T) {
		m := &MockAnalyst{}
		m.On("ClusterKeypoints", mock.Anything, []string{"a"}, 2).Return(models.SingleTheme([]string{"a"}), nil).Once()

		rec := do(t, newTestServer(m, nil), http.MethodPost, "/api/themes", `{"items": ["a"]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"Theme 1": ["a"]}`, rec.Body.String())
		m.AssertExpectations(t)
	})

	t.Run("missing items is empty", func(t *testing.T) {
		m := &MockAnalyst{}
		m.On("ClusterKeypoints", mock.Anything, []string{}, 3).Return(models.SingleTheme(nil), nil).Once()

		rec := do(t, newTestServer(m, nil), http.MethodPost, "/api/themes", `{"k": 3}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"Theme 1": []}`, rec.Body.String())
		m.AssertExpectations(t)
	})

	t.Run("invalid k", func(t *testing.T) {
		m := &MockAnalyst{}
		m.On("ClusterKeypoints", mock.Anything, []string{"a", "b"}, 0).
			Return(nil, fmt.Errorf("%w: got 0", themes.ErrInvalidClusterCount)).Once()

		rec := do(t, newTestServer(m, nil), http.MethodPost, "/api/themes", `{"items": ["a", "b"], "k": 0}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		m.AssertExpectations(t)
	})
}

func TestBrainstormHandler(t *testing.T) {
	m := &MockAnalyst{}
	m.On("Brainstorm", mock.Anything, "plant app", "social").
		Return(models.BrainstormResult{ID: "b1", Input: "plant app", Context: "social", Response: "Share cuttings."}, nil).Once()
	m.On("Brainstorm", mock.Anything, "broken", "").
		Return(models.BrainstormResult{}, errors.New("connection refused")).Once()
	srv := newTestServer(m, nil)

	rec := do(t, srv, http.MethodPost, "/api/brainstorm", `{"idea": "plant app", "context": "social"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Share cuttings.", decodeBody(t, rec)["response"])

	rec = do(t, srv, http.MethodPost, "/api/brainstorm", `{"idea": "broken"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "connection refused", decodeBody(t, rec)["error"])

	m.AssertExpectations(t)
}

func TestHistoryHandler(t *testing.T) {
	m := &MockAnalyst{}
	m.On("History").Return(models.NewAppState()).Once()

	rec := do(t, newTestServer(m, nil), http.MethodGet, "/api/history", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"analysis_history": [], "brainstorm_history": []}`, rec.Body.String())
	m.AssertExpectations(t)
}

func TestHealthHandler(t *testing.T) {
	var healthy atomic.Bool
	srv := newTestServer(&MockAnalyst{}, &healthy)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decodeBody(t, rec)["status"])

	healthy.Store(true)
	rec = do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRecovererReturnsJSON500(t *testing.T) {
	m := &MockAnalyst{}
	m.On("History").Panic("boom").Once()

	rec := do(t, newTestServer(m, nil), http.MethodGet, "/api/history", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decodeBody(t, rec)["error"])
}
