// Package cluster implements seeded k-means clustering for color quantization.
package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/pixlator/internal/pattern"
)

// KMeans clusters points with k-means++ seeding followed by Lloyd iterations.
// The zero value uses the defaults below.
type KMeans struct {
	// MaxIterations bounds the Lloyd loop. Default 300.
	MaxIterations int
	// Tolerance stops the loop once the summed squared centroid shift drops
	// below Tolerance times the mean per-dimension variance. Default 1e-4.
	Tolerance float64
}

var _ pattern.Clusterer = (*KMeans)(nil)

// Cluster implements pattern.Clusterer. When the points hold fewer than k
// distinct values, surplus centroids duplicate existing ones and stay empty.
func (km *KMeans) Cluster(points []pattern.Point, k int, seed uint64) ([]pattern.Point, []int, error) {
	if k < 1 {
		return nil, nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(points) < k {
		return nil, nil, fmt.Errorf("%d points cannot form %d clusters", len(points), k)
	}
	maxIter := km.MaxIterations
	if maxIter <= 0 {
		maxIter = 300
	}
	tol := km.Tolerance
	if tol <= 0 {
		tol = 1e-4
	}
	tol *= meanVariance(points)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	centroids := seedPlusPlus(points, k, rng)
	labels := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		assign(points, centroids, labels)
		next := recompute(points, labels, centroids)
		shift := 0.0
		for i := range centroids {
			shift += sqDist(centroids[i], next[i])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}
	assign(points, centroids, labels)
	return centroids, labels, nil
}

// seedPlusPlus picks k initial centroids, each drawn with probability
// proportional to its squared distance from the nearest centroid so far.
func seedPlusPlus(points []pattern.Point, k int, rng *rand.Rand) []pattern.Point {
	centroids := make([]pattern.Point, 0, k)
	centroids = append(centroids, points[rng.IntN(len(points))])

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = sqDist(p, centroids[0])
	}
	for len(centroids) < k {
		total := 0.0
		for _, d := range dist {
			total += d
		}
		var pick int
		if total == 0 {
			// Every point already coincides with a centroid.
			pick = rng.IntN(len(points))
		} else {
			target := rng.Float64() * total
			for pick = 0; pick < len(points)-1; pick++ {
				target -= dist[pick]
				if target < 0 {
					break
				}
			}
		}
		c := points[pick]
		centroids = append(centroids, c)
		for i, p := range points {
			if d := sqDist(p, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// assign labels each point with its nearest centroid; ties go to the lower
// index.
func assign(points, centroids []pattern.Point, labels []int) {
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for j, c := range centroids {
			if d := sqDist(p, c); d < bestDist {
				best, bestDist = j, d
			}
		}
		labels[i] = best
	}
}

// recompute returns the mean of each cluster. Empty clusters keep their
// previous centroid.
func recompute(points []pattern.Point, labels []int, prev []pattern.Point) []pattern.Point {
	sums := make([]pattern.Point, len(prev))
	counts := make([]int, len(prev))
	for i, p := range points {
		l := labels[i]
		for d := 0; d < 3; d++ {
			sums[l][d] += p[d]
		}
		counts[l]++
	}
	next := make([]pattern.Point, len(prev))
	for j := range next {
		if counts[j] == 0 {
			next[j] = prev[j]
			continue
		}
		for d := 0; d < 3; d++ {
			next[j][d] = sums[j][d] / float64(counts[j])
		}
	}
	return next
}

func meanVariance(points []pattern.Point) float64 {
	var mean pattern.Point
	for _, p := range points {
		for d := 0; d < 3; d++ {
			mean[d] += p[d]
		}
	}
	n := float64(len(points))
	for d := 0; d < 3; d++ {
		mean[d] /= n
	}
	v := 0.0
	for _, p := range points {
		v += sqDist(p, mean)
	}
	return v / (3 * n)
}

func sqDist(a, b pattern.Point) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}
