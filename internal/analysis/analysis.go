// Package analysis wraps the pretrained models behind the text and emotion
// analyzers. Every model call goes through a narrow interface so a backend
// can be swapped for a local pipeline, a remote endpoint, or a test double.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/insightsyn/internal/models"
)

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Classifier returns predictions for text, best first.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]models.Prediction, error)
}

type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]models.Entity, error)
}

// ErrNoPrediction is returned when a classifier yields nothing to pick from.
var ErrNoPrediction = errors.New("model returned no prediction")

// StageFailure is the error of one sub-analysis.
type StageFailure struct {
	Stage string
	Err   error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageFailure) Unwrap() error {
	return e.Err
}

// RunStage runs fn inside its own failure boundary: errors and panics both
// come back as a *StageFailure tagged with stage.
func RunStage[T any](ctx context.Context, stage string, fn func(context.Context) (T, error)) (v T, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			slog.Warn("[Analysis] Stage failed",
				slog.String("stage", stage),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("error", err.Error()))
			err = &StageFailure{Stage: stage, Err: err}
			return
		}
		slog.Debug("[Analysis] Stage finished",
			slog.String("stage", stage),
			slog.Duration("elapsed", time.Since(start)))
	}()
	return fn(ctx)
}

// StageErrors flattens err (possibly an errors.Join of stage failures) into
// serializable records.
func StageErrors(err error) []models.StageError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []models.StageError
		for _, e := range joined.Unwrap() {
			out = append(out, StageErrors(e)...)
		}
		return out
	}
	var sf *StageFailure
	if errors.As(err, &sf) {
		return []models.StageError{{Stage: sf.Stage, Message: sf.Err.Error()}}
	}
	return []models.StageError{{Stage: "unknown", Message: err.Error()}}
}
