package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedSummarizerHit(t *testing.T) {
	next, cache := &MockSummarizer{}, &MockSummaryCache{}
	cache.On("GetSummary", mock.Anything, "t5-small", launchText).Return("cached", true).Once()

	got, err := NewCachedSummarizer(next, cache, "t5-small", time.Hour).Summarize(context.Background(), launchText)
	require.NoError(t, err)

	assert.Equal(t, "cached", got)
	next.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestCachedSummarizerMissStores(t *testing.T) {
	next, cache := &MockSummarizer{}, &MockSummaryCache{}
	cache.On("GetSummary", mock.Anything, "t5-small", launchText).Return("", false).Once()
	next.On("Summarize", mock.Anything, launchText).Return("fresh", nil).Once()
	cache.On("StoreSummary", mock.Anything, "t5-small", launchText, "fresh", time.Hour).Return(errors.New("valkey down")).Once()

	got, err := NewCachedSummarizer(next, cache, "t5-small", time.Hour).Summarize(context.Background(), launchText)
	require.NoError(t, err)

	assert.Equal(t, "fresh", got)
	next.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCachedSummarizerDoesNotStoreFailures(t *testing.T) {
	next, cache := &MockSummarizer{}, &MockSummaryCache{}
	cache.On("GetSummary", mock.Anything, "t5-small", launchText).Return("", false).Once()
	next.On("Summarize", mock.Anything, launchText).Return("", errors.New("timeout")).Once()

	_, err := NewCachedSummarizer(next, cache, "t5-small", time.Hour).Summarize(context.Background(), launchText)
	require.Error(t, err)
	cache.AssertNotCalled(t, "StoreSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
