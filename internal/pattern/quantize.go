package pattern

import (
	"fmt"
	"math"
)

// DefaultSeed is the clustering seed used when none is configured.
const DefaultSeed uint64 = 0

// Point is a sample in RGB space.
type Point [3]float64

// Clusterer groups points into k clusters. Labels[i] is the index into
// centroids of the cluster holding points[i]. Implementations must return the
// same output for the same points, k and seed.
type Clusterer interface {
	Cluster(points []Point, k int, seed uint64) (centroids []Point, labels []int, err error)
}

// Quantizer reduces a raster to at most K colors.
type Quantizer struct {
	Clusterer Clusterer
	Seed      uint64
}

// Quantize replaces every pixel with the rounded centroid of its cluster. A k
// larger than the number of pixels is lowered to the pixel count.
func (q *Quantizer) Quantize(src *Raster, k int) (*Raster, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: color_count must be positive, got %d", ErrInvalidParams, k)
	}
	if q.Clusterer == nil {
		return nil, fmt.Errorf("quantizer has no clusterer")
	}
	points := make([]Point, len(src.pix))
	for i, c := range src.pix {
		points[i] = Point{float64(c.R), float64(c.G), float64(c.B)}
	}
	k = min(k, len(points))

	centroids, labels, err := q.Clusterer.Cluster(points, k, q.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster colors: %w", err)
	}
	if len(labels) != len(points) {
		return nil, fmt.Errorf("clusterer returned %d labels for %d points", len(labels), len(points))
	}

	palette := make([]RGB, len(centroids))
	for i, c := range centroids {
		palette[i] = RGB{R: roundChannel(c[0]), G: roundChannel(c[1]), B: roundChannel(c[2])}
	}
	pix := make([]RGB, len(labels))
	for i, l := range labels {
		if l < 0 || l >= len(palette) {
			return nil, fmt.Errorf("clusterer label %d out of range for %d centroids", l, len(palette))
		}
		pix[i] = palette[l]
	}
	return &Raster{width: src.width, height: src.height, pix: pix}, nil
}

func roundChannel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
