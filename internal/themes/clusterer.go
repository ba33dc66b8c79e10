// Package themes groups short snippets of text into labeled themes by
// clustering their sentence embeddings.
package themes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spacesedan/insightsyn/internal/models"
)

const DefaultSeed = 42

var ErrInvalidClusterCount = errors.New("number of themes must be at least 1")

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Clusterer struct {
	embedder Embedder
	seed     int64
}

func NewClusterer(embedder Embedder, seed int64) *Clusterer {
	return &Clusterer{embedder: embedder, seed: seed}
}

// Cluster groups items into at most k themes labeled "Theme 1".."Theme k".
// With no items, or fewer items than k, everything lands in "Theme 1"
// without touching the embedding model. Themes are ordered by first
// appearance in items, and each theme keeps its items in input order.
func (c *Clusterer) Cluster(ctx context.Context, items []string, k int) (*models.Themes, error) {
	if len(items) == 0 || len(items) < k {
		return models.SingleTheme(items), nil
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidClusterCount, k)
	}

	vectors, err := c.embedder.Embed(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("embed keypoints: %w", err)
	}
	if len(vectors) != len(items) {
		return nil, fmt.Errorf("embed keypoints: got %d vectors for %d items", len(vectors), len(items))
	}

	points := make([][]float64, len(vectors))
	for i, v := range vectors {
		points[i] = make([]float64, len(v))
		for j, x := range v {
			points[i][j] = float64(x)
		}
	}

	labels := kmeans(points, min(k, len(items)), uint64(c.seed))

	themes := models.NewThemes()
	for i, item := range items {
		themes.Add(models.ThemeLabel(labels[i]), item)
	}

	slog.Debug("[Themes] Clustered keypoints",
		slog.Int("items", len(items)),
		slog.Int("themes", themes.Len()))
	return themes, nil
}
