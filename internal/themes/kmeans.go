package themes

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

const (
	maxIterations = 300
	tolerance     = 1e-4
)

// kmeans partitions points into k clusters with Lloyd's algorithm seeded by
// k-means++, and returns the cluster index of every point. Results are fully
// determined by seed.
func kmeans(points [][]float64, k int, seed uint64) []int {
	n := len(points)
	labels := make([]int, n)
	if n == 0 || k <= 1 {
		return labels
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := initCentroids(points, k, rng)

	for iter := 0; iter < maxIterations; iter++ {
		for i, p := range points {
			labels[i] = nearest(p, centroids)
		}

		next := recompute(points, labels, centroids)
		shift := 0.0
		for c := range centroids {
			shift += floats.Distance(centroids[c], next[c], 2)
		}
		centroids = next
		if shift <= tolerance {
			break
		}
	}

	for i, p := range points {
		labels[i] = nearest(p, centroids)
	}
	return labels
}

// initCentroids picks k starting centroids with k-means++: each new centroid
// is sampled with probability proportional to its squared distance from the
// closest centroid chosen so far.
func initCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))

	dist := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := floats.Distance(p, centroids[nearest(p, centroids)], 2)
			dist[i] = d * d
			total += dist[i]
		}

		// every point sits on a centroid already, duplicates are all that is left
		if total == 0 {
			centroids = append(centroids, clone(points[rng.Intn(len(points))]))
			continue
		}

		target := rng.Float64() * total
		chosen := len(points) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(points[chosen]))
	}
	return centroids
}

// recompute moves each centroid to the mean of its members. A cluster that
// lost all its members is re-seeded with the point farthest from its own
// centroid.
func recompute(points [][]float64, labels []int, prev [][]float64) [][]float64 {
	dim := len(points[0])
	next := make([][]float64, len(prev))
	counts := make([]int, len(prev))
	for c := range next {
		next[c] = make([]float64, dim)
	}
	for i, p := range points {
		floats.Add(next[labels[i]], p)
		counts[labels[i]]++
	}

	for c := range next {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), next[c])
			continue
		}
		far, farDist := 0, -1.0
		for i, p := range points {
			if d := floats.Distance(p, prev[labels[i]], 2); d > farDist {
				far, farDist = i, d
			}
		}
		next[c] = clone(points[far])
	}
	return next
}

func nearest(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(p, centroid, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
