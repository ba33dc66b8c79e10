package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// EmotionUnknown is reported when there is no text to classify.
	EmotionUnknown = "unknown"
	// EmotionError is reported when the emotion model fails.
	EmotionError = "error"
)

// EmotionLabels are the go_emotions classes the default emotion model emits.
var EmotionLabels = []string{
	"admiration", "amusement", "anger", "annoyance", "approval", "caring",
	"confusion", "curiosity", "desire", "disappointment", "disapproval",
	"disgust", "embarrassment", "excitement", "fear", "gratitude", "grief",
	"joy", "love", "nervousness", "optimism", "pride", "realization",
	"relief", "remorse", "sadness", "surprise", "neutral",
}

// Analysis stages, used to tag partial failures.
const (
	StageSummary   = "summary"
	StageSentiment = "sentiment"
	StageEntities  = "entities"
	StageEmotion   = "emotion"
	StageThemes    = "themes"
)

type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Entity struct {
	Word  string  `json:"word"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Emotion struct {
	Primary string  `json:"primary"`
	Score   float64 `json:"score"`
}

// StageError records a sub-analysis that failed without aborting the request.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (e StageError) Error() string {
	return e.Stage + ": " + e.Message
}

// AnalysisFragment is what the text analyzer produces for one input.
type AnalysisFragment struct {
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
	Entities  []string  `json:"entities"`
}

// AnalysisResult is one entry of the analysis history. It is never mutated
// after it has been recorded.
type AnalysisResult struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Input     string       `json:"input"`
	Summary   string       `json:"summary"`
	Sentiment Sentiment    `json:"sentiment"`
	Entities  []string     `json:"entities"`
	Emotion   Emotion      `json:"emotion"`
	Themes    *Themes      `json:"themes"`
	Errors    []StageError `json:"errors,omitempty"`
}

func NewAnalysisResult(input string, fragment AnalysisFragment, emotion Emotion, themes *Themes) AnalysisResult {
	entities := fragment.Entities
	if entities == nil {
		entities = []string{}
	}
	if themes == nil {
		themes = NewThemes()
	}
	return AnalysisResult{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Input:     input,
		Summary:   fragment.Summary,
		Sentiment: fragment.Sentiment,
		Entities:  entities,
		Emotion:   emotion,
		Themes:    themes,
	}
}

// Clone returns a deep copy. Nil slices and a nil Themes stay nil.
func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	if r.Entities != nil {
		out.Entities = append([]string{}, r.Entities...)
	}
	if r.Themes != nil {
		out.Themes = r.Themes.Clone()
	}
	if r.Errors != nil {
		out.Errors = append([]StageError{}, r.Errors...)
	}
	return out
}

// RoundScore rounds a model score to 4 decimal digits.
func RoundScore(score float64) float64 {
	return math.Round(score*1e4) / 1e4
}
