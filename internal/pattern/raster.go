package pattern

import (
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit color triple. It is comparable and safe to use as a map key.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as "#RRGGBB" with uppercase digits.
func (c RGB) Hex() string {
	return strings.ToUpper(c.toColorful().Hex())
}

// Luminance returns the perceived lightness of the color in the range 0-1.
func (c RGB) Luminance() float64 {
	l, _, _ := c.toColorful().Lab()
	return l
}

func (c RGB) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// MarshalJSON encodes the color as a [r, g, b] array.
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]uint8{c.R, c.G, c.B})
}

// UnmarshalJSON decodes a [r, g, b] array.
func (c *RGB) UnmarshalJSON(data []byte) error {
	var v [3]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	for _, ch := range v {
		if ch < 0 || ch > 255 {
			return fmt.Errorf("color channel %d out of range 0-255", ch)
		}
	}
	*c = RGB{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2])}
	return nil
}

// ParseHex parses a "#RRGGBB" or "RRGGBB" string.
func ParseHex(s string) (RGB, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := col.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Raster is an immutable grid of RGB colors stored row-major.
type Raster struct {
	width  int
	height int
	pix    []RGB
}

// NewRaster builds a raster from row-major pixels. The slice is copied.
func NewRaster(width, height int, pix []RGB) (*Raster, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: raster dimensions %dx%d must be at least 1x1", ErrInvalidParams, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("raster of %dx%d needs %d pixels, got %d", width, height, width*height, len(pix))
	}
	cp := make([]RGB, len(pix))
	copy(cp, pix)
	return &Raster{width: width, height: height, pix: cp}, nil
}

// FromImage converts any decoded image into a raster. Alpha is dropped without
// compositing, matching a plain RGB conversion.
func FromImage(img image.Image) (*Raster, error) {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: image has zero size (%dx%d)", ErrInvalidParams, w, h)
	}
	pix := make([]RGB, 0, w*h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			pix = append(pix, RGB{R: row[x*4], G: row[x*4+1], B: row[x*4+2]})
		}
	}
	return &Raster{width: w, height: h, pix: pix}, nil
}

// Width returns the number of columns.
func (r *Raster) Width() int { return r.width }

// Height returns the number of rows.
func (r *Raster) Height() int { return r.height }

// At returns the color at (x, y). It panics if the point is outside the grid.
func (r *Raster) At(x, y int) RGB {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		panic(fmt.Sprintf("pattern: point (%d,%d) outside %dx%d raster", x, y, r.width, r.height))
	}
	return r.pix[y*r.width+x]
}

// Image returns an opaque NRGBA copy of the raster.
func (r *Raster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	for i, c := range r.pix {
		img.Pix[i*4] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// DistinctColors returns the number of different colors in the raster.
func (r *Raster) DistinctColors() int {
	seen := make(map[RGB]struct{})
	for _, c := range r.pix {
		seen[c] = struct{}{}
	}
	return len(seen)
}
