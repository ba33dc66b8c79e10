package ideas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/insightsyn/internal/modelcache"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"Based on the following context: ''. Please brainstorm and expand on this idea: 'a mobile app for plant care'",
		BuildPrompt("a mobile app for plant care", ""))
	assert.Equal(t,
		"Based on the following context: 'indoor plants'. Please brainstorm and expand on this idea: 'watering reminders'",
		BuildPrompt("watering reminders", "indoor plants"))
}

func TestGenerateLoadsModelOnce(t *testing.T) {
	m := &mockCompleter{}
	prompt := BuildPrompt("a mobile app for plant care", "")
	m.On("Complete", mock.Anything, prompt).Return("  1. Watering reminders\n2. Light meter  ", nil).Twice()

	loads := 0
	g := NewGenerator(modelcache.New(), "tinyllama", func(context.Context) (Completer, error) {
		loads++
		return m, nil
	})

	for i := 0; i < 2; i++ {
		out, err := g.Generate(context.Background(), "a mobile app for plant care", "")
		require.NoError(t, err)
		assert.Equal(t, "1. Watering reminders\n2. Light meter", out)
		assert.NotEqual(t, "a mobile app for plant care", out)
	}
	assert.Equal(t, 1, loads)
	m.AssertExpectations(t)
}

func TestGenerateStripsEchoedPrompt(t *testing.T) {
	m := &mockCompleter{}
	prompt := BuildPrompt("plant care", "")
	m.On("Complete", mock.Anything, prompt).Return(prompt+"\nTrack soil moisture.", nil)

	g := NewGenerator(modelcache.New(), "echoing", func(context.Context) (Completer, error) { return m, nil })
	out, err := g.Generate(context.Background(), "plant care", "")
	require.NoError(t, err)
	assert.Equal(t, "Track soil moisture.", out)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("load failure", func(t *testing.T) {
		boom := errors.New("no endpoint")
		g := NewGenerator(modelcache.New(), "broken", func(context.Context) (Completer, error) { return nil, boom })

		_, err := g.Generate(context.Background(), "idea", "")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("completion failure", func(t *testing.T) {
		m := &mockCompleter{}
		boom := errors.New("context length exceeded")
		m.On("Complete", mock.Anything, mock.Anything).Return("", boom)

		g := NewGenerator(modelcache.New(), "failing", func(context.Context) (Completer, error) { return m, nil })
		_, err := g.Generate(context.Background(), "idea", "")
		assert.ErrorIs(t, err, boom)
	})
}
