package analysis

import (
	"context"
	"strings"

	"github.com/spacesedan/insightsyn/internal/models"
)

// EmotionAnalyzer reports the dominant emotion of a text. It never fails:
// blank input yields the "unknown" sentinel and any model failure the
// "error" sentinel, so it cannot abort the request around it.
type EmotionAnalyzer struct {
	classifier Classifier
}

func NewEmotionAnalyzer(classifier Classifier) *EmotionAnalyzer {
	return &EmotionAnalyzer{classifier: classifier}
}

func (a *EmotionAnalyzer) Analyze(ctx context.Context, text string) models.Emotion {
	if strings.TrimSpace(text) == "" {
		return models.Emotion{Primary: models.EmotionUnknown, Score: 0}
	}

	top, err := RunStage(ctx, models.StageEmotion, func(ctx context.Context) (models.Prediction, error) {
		predictions, err := a.classifier.Classify(ctx, text)
		if err != nil {
			return models.Prediction{}, err
		}
		if len(predictions) == 0 {
			return models.Prediction{}, ErrNoPrediction
		}
		return predictions[0], nil
	})
	if err != nil {
		return models.Emotion{Primary: models.EmotionError, Score: 0}
	}

	return models.Emotion{
		Primary: top.Label,
		Score:   models.RoundScore(top.Score),
	}
}
