package analysis

import (
	"context"
	"errors"
	"strings"

	"github.com/spacesedan/insightsyn/internal/models"
)

// TextAnalyzer produces the summary, sentiment and entities of a text.
type TextAnalyzer struct {
	summarizer Summarizer
	sentiment  Classifier
	entities   EntityExtractor
}

func NewTextAnalyzer(summarizer Summarizer, sentiment Classifier, entities EntityExtractor) *TextAnalyzer {
	return &TextAnalyzer{
		summarizer: summarizer,
		sentiment:  sentiment,
		entities:   entities,
	}
}

// Analyze runs the three sub-analyses in sequence on text as given. A failing stage leaves
// its field zero-valued; the failures are returned joined, alongside
// whatever the other stages produced.
func (a *TextAnalyzer) Analyze(ctx context.Context, text string) (models.AnalysisFragment, error) {
	fragment := models.AnalysisFragment{Entities: []string{}}
	var errs []error

	summary, err := RunStage(ctx, models.StageSummary, func(ctx context.Context) (string, error) {
		return a.summarizer.Summarize(ctx, text)
	})
	if err != nil {
		errs = append(errs, err)
	}
	fragment.Summary = summary

	label, err := RunStage(ctx, models.StageSentiment, func(ctx context.Context) (models.Sentiment, error) {
		return a.classifySentiment(ctx, text)
	})
	if err != nil {
		errs = append(errs, err)
	}
	fragment.Sentiment = label

	entities, err := RunStage(ctx, models.StageEntities, func(ctx context.Context) ([]string, error) {
		return a.extractEntities(ctx, text)
	})
	if err != nil {
		errs = append(errs, err)
	} else {
		fragment.Entities = entities
	}

	return fragment, errors.Join(errs...)
}

func (a *TextAnalyzer) classifySentiment(ctx context.Context, text string) (models.Sentiment, error) {
	predictions, err := a.sentiment.Classify(ctx, text)
	if err != nil {
		return models.Sentiment{}, err
	}
	if len(predictions) == 0 {
		return models.Sentiment{}, ErrNoPrediction
	}
	top := predictions[0]
	return models.Sentiment{
		Label: strings.ToUpper(top.Label),
		Score: models.RoundScore(top.Score),
	}, nil
}

// extractEntities keeps the surface form of every grouped entity, in
// order, dropping those without one.
func (a *TextAnalyzer) extractEntities(ctx context.Context, text string) ([]string, error) {
	found, err := a.entities.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(found))
	for _, e := range found {
		word := strings.TrimSpace(e.Word)
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	return words, nil
}
