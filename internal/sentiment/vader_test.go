package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMarkdownToText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Apple released a new iPhone. Critics are thrilled.", "Apple released a new iPhone. Critics are thrilled."},
		{"emphasis", "Critics are **thrilled**", "Critics are thrilled"},
		{"markdown link", "Read [the review](https://example.com/review) now", "Read the review now"},
		{"bare url", "See https://example.com for details", "See for details"},
		{"entities", `Q&A with "Apple"`, `Q&A with "Apple"`},
		{"headings and lines", "# Launch\n\nThe phone\nis out", "Launch The phone is out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConvertMarkdownToText(tt.input))
		})
	}
}

func TestVaderClassifier(t *testing.T) {
	v := NewVaderClassifier()

	positive, err := v.Classify(context.Background(), "I love this, it is wonderful and great!")
	require.NoError(t, err)
	require.Len(t, positive, 2)
	assert.Equal(t, LabelPositive, positive[0].Label)
	assert.Greater(t, positive[0].Score, 0.5)

	negative, err := v.Classify(context.Background(), "This is terrible, awful and I hate it.")
	require.NoError(t, err)
	assert.Equal(t, LabelNegative, negative[0].Label)
	assert.InDelta(t, 1.0, negative[0].Score+negative[1].Score, 1e-9)
}
