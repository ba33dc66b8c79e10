package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spacesedan/insightsyn/internal/models"
)

// MockAnalyst is a mock implementation of Analyst using testify/mock.
type MockAnalyst struct {
	mock.Mock
}

func (m *MockAnalyst) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(models.AnalysisResult), args.Error(1)
}

func (m *MockAnalyst) AnalyzeTextEmotion(ctx context.Context, text string) models.Emotion {
	args := m.Called(ctx, text)
	return args.Get(0).(models.Emotion)
}

func (m *MockAnalyst) ClusterKeypoints(ctx context.Context, items []string, k int) (*models.Themes, error) {
	args := m.Called(ctx, items, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Themes), args.Error(1)
}

func (m *MockAnalyst) Brainstorm(ctx context.Context, idea, ideaContext string) (models.BrainstormResult, error) {
	args := m.Called(ctx, idea, ideaContext)
	return args.Get(0).(models.BrainstormResult), args.Error(1)
}

func (m *MockAnalyst) History() models.AppState {
	args := m.Called()
	return args.Get(0).(models.AppState)
}
