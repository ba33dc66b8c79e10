package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spacesedan/insightsyn/internal/insight"
	"github.com/spacesedan/insightsyn/internal/models"
	"github.com/spacesedan/insightsyn/internal/themes"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 5 * time.Minute
)

// Analyst is the part of insight.Service the API serves.
type Analyst interface {
	Analyze(ctx context.Context, text string) (models.AnalysisResult, error)
	AnalyzeTextEmotion(ctx context.Context, text string) models.Emotion
	ClusterKeypoints(ctx context.Context, items []string, k int) (*models.Themes, error)
	Brainstorm(ctx context.Context, idea, ideaContext string) (models.BrainstormResult, error)
	History() models.AppState
}

type Server struct {
	analyst   Analyst
	healthy   *atomic.Bool
	numThemes int
	log       *slog.Logger
}

// NewServer returns the API for analyst. healthy is read by /healthz and
// may be nil, in which case the service always reports ok.
func NewServer(analyst Analyst, healthy *atomic.Bool, numThemes int, log *slog.Logger) *Server {
	return &Server{analyst: analyst, healthy: healthy, numThemes: numThemes, log: log}
}

func (s *Server) Routes() http.Handler {
	r := NewRouter(s.log, requestTimeout)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/emotion", s.handleEmotion)
		r.Post("/themes", s.handleThemes)
		r.Post("/brainstorm", s.handleBrainstorm)
		r.Get("/history", s.handleHistory)
	})
	return r
}

type textRequest struct {
	Text string `json:"text"`
}

type themesRequest struct {
	Items []string `json:"items"`
	K     *int     `json:"k,omitempty"`
}

type brainstormRequest struct {
	Idea    string `json:"idea"`
	Context string `json:"context"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.healthy != nil && !s.healthy.Load() {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.analyst.Analyze(r.Context(), req.Text)
	if err != nil {
		s.fail(w, "analysis failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleEmotion(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, s.analyst.AnalyzeTextEmotion(r.Context(), req.Text))
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	var req themesRequest
	if !s.decode(w, r, &req) {
		return
	}
	k := s.numThemes
	if req.K != nil {
		k = *req.K
	}
	if req.Items == nil {
		req.Items = []string{}
	}
	result, err := s.analyst.ClusterKeypoints(r.Context(), req.Items, k)
	if err != nil {
		s.fail(w, "clustering failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleBrainstorm(w http.ResponseWriter, r *http.Request) {
	var req brainstormRequest
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.analyst.Brainstorm(r.Context(), req.Idea, req.Context)
	if err != nil {
		s.fail(w, "brainstorm failed", err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, s.analyst.History())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		s.log.Warn("[API] Malformed request body",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("[API] "+message, slog.String("error", err.Error()))
	}
	WriteJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, insight.ErrEmptyInput), errors.Is(err, themes.ErrInvalidClusterCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
