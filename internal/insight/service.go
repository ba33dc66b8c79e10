// Package insight sequences the analyzers, the clusterer and the idea
// generator into the two user interactions, and keeps their history.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/insightsyn/internal/analysis"
	"github.com/spacesedan/insightsyn/internal/models"
)

var (
	ErrEmptyInput = errors.New("input text is empty")
	// ErrAnalysisFailed is returned when none of the text sub-analyses
	// produced anything worth recording.
	ErrAnalysisFailed = errors.New("text analysis failed")
)

type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (models.AnalysisFragment, error)
}

type EmotionAnalyzer interface {
	Analyze(ctx context.Context, text string) models.Emotion
}

type KeypointClusterer interface {
	Cluster(ctx context.Context, items []string, k int) (*models.Themes, error)
}

type IdeaGenerator interface {
	Generate(ctx context.Context, userText, ideaContext string) (string, error)
}

type StateStore interface {
	Load(def models.AppState) models.AppState
	Save(state models.AppState) error
}

// Deps are the collaborators of a Service. All of them are required.
type Deps struct {
	Text      TextAnalyzer
	Emotion   EmotionAnalyzer
	Clusterer KeypointClusterer
	Generator IdeaGenerator
	Store     StateStore
}

type Service struct {
	text      TextAnalyzer
	emotion   EmotionAnalyzer
	clusterer KeypointClusterer
	generator IdeaGenerator
	store     StateStore
	numThemes int

	mu    sync.Mutex
	state models.AppState
}

// NewService loads the persisted history from the store and returns a
// service that appends to it.
func NewService(deps Deps, numThemes int) *Service {
	s := &Service{
		text:      deps.Text,
		emotion:   deps.Emotion,
		clusterer: deps.Clusterer,
		generator: deps.Generator,
		store:     deps.Store,
		numThemes: numThemes,
	}
	s.state = s.LoadState(models.NewAppState())
	return s
}

func (s *Service) AnalyzeText(ctx context.Context, text string) (models.AnalysisFragment, error) {
	return s.text.Analyze(ctx, text)
}

func (s *Service) AnalyzeTextEmotion(ctx context.Context, text string) models.Emotion {
	return s.emotion.Analyze(ctx, text)
}

func (s *Service) ClusterKeypoints(ctx context.Context, items []string, k int) (*models.Themes, error) {
	return s.clusterer.Cluster(ctx, items, k)
}

func (s *Service) RunIdeaGenerator(ctx context.Context, text, ideaContext string) (string, error) {
	return s.generator.Generate(ctx, text, ideaContext)
}

func (s *Service) LoadState(def models.AppState) models.AppState {
	return s.store.Load(def)
}

func (s *Service) SaveState(state models.AppState) error {
	return s.store.Save(state)
}

// Analyze runs every analysis on text, records the result at the head of
// the analysis history and persists the history. Failing sub-analyses are
// listed on the result; the call only fails when summary, sentiment and
// entities all failed, in which case nothing is recorded.
//
// When the result was recorded but could not be persisted, both the result
// and the error are returned.
func (s *Service) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.AnalysisResult{}, ErrEmptyInput
	}
	start := time.Now()

	fragment, err := s.AnalyzeText(ctx, text)
	stageErrs := analysis.StageErrors(err)
	if allTextStagesFailed(stageErrs) {
		slog.Error("[Insight] Text analysis failed",
			slog.String("error", err.Error()))
		return models.AnalysisResult{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	emotion := s.AnalyzeTextEmotion(ctx, text)
	if emotion.Primary == models.EmotionError {
		stageErrs = append(stageErrs, models.StageError{
			Stage:   models.StageEmotion,
			Message: "emotion model failed",
		})
	}

	keypoints := append([]string{}, fragment.Entities...)
	if fragment.Summary != "" {
		keypoints = append(keypoints, fragment.Summary)
	}
	themes, err := analysis.RunStage(ctx, models.StageThemes, func(ctx context.Context) (*models.Themes, error) {
		return s.ClusterKeypoints(ctx, keypoints, s.numThemes)
	})
	if err != nil {
		stageErrs = append(stageErrs, analysis.StageErrors(err)...)
		themes = models.SingleTheme(keypoints)
	}

	result := models.NewAnalysisResult(text, fragment, emotion, themes)
	result.Errors = stageErrs

	slog.Info("[Insight] Analysis finished",
		slog.String("id", result.ID),
		slog.Int("entities", len(result.Entities)),
		slog.Int("themes", result.Themes.Len()),
		slog.Int("failed_stages", len(stageErrs)),
		slog.Duration("elapsed", time.Since(start)))

	if err := s.record(func(st *models.AppState) { st.RecordAnalysis(result) }); err != nil {
		return result, err
	}
	return result, nil
}

// Brainstorm expands idea, optionally steered by ideaContext, and records
// the exchange at the head of the brainstorm history.
func (s *Service) Brainstorm(ctx context.Context, idea, ideaContext string) (models.BrainstormResult, error) {
	if strings.TrimSpace(idea) == "" {
		return models.BrainstormResult{}, ErrEmptyInput
	}

	response, err := s.RunIdeaGenerator(ctx, idea, ideaContext)
	if err != nil {
		slog.Error("[Insight] Idea generation failed",
			slog.String("error", err.Error()))
		return models.BrainstormResult{}, fmt.Errorf("generate ideas: %w", err)
	}

	result := models.NewBrainstormResult(idea, ideaContext, response)
	if err := s.record(func(st *models.AppState) { st.RecordBrainstorm(result) }); err != nil {
		return result, err
	}
	return result, nil
}

// History returns a copy of the current state.
func (s *Service) History() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Service) record(update func(*models.AppState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	update(&s.state)
	if err := s.SaveState(s.state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func allTextStagesFailed(errs []models.StageError) bool {
	failed := make(map[string]bool, len(errs))
	for _, e := range errs {
		failed[e.Stage] = true
	}
	return failed[models.StageSummary] && failed[models.StageSentiment] && failed[models.StageEntities]
}
