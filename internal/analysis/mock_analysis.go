package analysis

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spacesedan/insightsyn/internal/models"
)

// MockSummarizer is a mock implementation of Summarizer using testify/mock.
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// MockClassifier is a mock implementation of Classifier using testify/mock.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) ([]models.Prediction, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Prediction), args.Error(1)
}

// MockEntityExtractor is a mock implementation of EntityExtractor using testify/mock.
type MockEntityExtractor struct {
	mock.Mock
}

func (m *MockEntityExtractor) Extract(ctx context.Context, text string) ([]models.Entity, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Entity), args.Error(1)
}

// MockSummaryCache is a mock implementation of SummaryCache using testify/mock.
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) GetSummary(ctx context.Context, model, text string) (string, bool) {
	args := m.Called(ctx, model, text)
	return args.String(0), args.Bool(1)
}

func (m *MockSummaryCache) StoreSummary(ctx context.Context, model, text, summary string, ttl time.Duration) error {
	args := m.Called(ctx, model, text, summary, ttl)
	return args.Error(0)
}
