package pattern

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// ResizedDimensions returns the size of a width x height raster scaled so its
// longer side equals maxDimension. The shorter side is truncated using the
// original ratio and clamped to 1.
func ResizedDimensions(width, height, maxDimension int) (int, int) {
	var w, h int
	if width > height {
		w = maxDimension
		h = height * maxDimension / width
	} else {
		h = maxDimension
		w = width * maxDimension / height
	}
	return max(w, 1), max(h, 1)
}

// Resize scales src so its longer side equals maxDimension. Sampling is
// nearest-neighbor, so no new colors are introduced.
func Resize(src *Raster, maxDimension int) (*Raster, error) {
	if maxDimension <= 0 {
		return nil, fmt.Errorf("%w: max_size must be positive, got %d", ErrInvalidParams, maxDimension)
	}
	w, h := ResizedDimensions(src.width, src.height, maxDimension)
	if w == src.width && h == src.height {
		return src, nil
	}
	return FromImage(imaging.Resize(src.Image(), w, h, imaging.NearestNeighbor))
}
