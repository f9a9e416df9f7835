package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// DefaultGridColor is used when a grid is requested without a color.
const DefaultGridColor = "#000000"

// DefaultGridEvery is the usual spacing of heavy chart lines, in cells.
const DefaultGridEvery = 10

// minCellLinePixelSize is the smallest block that still gets a line on every
// cell boundary; smaller blocks only get the heavy lines.
const minCellLinePixelSize = 4

// DrawGrid outlines the cells of a rendered pattern in place. Every cell
// boundary gets a one pixel line, and every majorEvery-th boundary a two
// pixel line. majorEvery <= 0 disables the heavy lines. Lines are composited
// over the pattern, so a translucent gridColor keeps the cell color visible.
func DrawGrid(img *image.NRGBA, pixelSize, majorEvery int, gridColor color.NRGBA) {
	if pixelSize < 1 {
		return
	}
	bounds := img.Bounds()
	src := image.NewUniform(gridColor)

	line := func(r image.Rectangle) {
		draw.Draw(img, r.Intersect(bounds), src, image.Point{}, draw.Over)
	}

	// Vertical lines
	for x := bounds.Min.X + pixelSize; x < bounds.Max.X; x += pixelSize {
		cell := (x - bounds.Min.X) / pixelSize
		heavy := majorEvery > 0 && cell%majorEvery == 0
		switch {
		case heavy:
			line(image.Rect(x-1, bounds.Min.Y, x+1, bounds.Max.Y))
		case pixelSize >= minCellLinePixelSize:
			line(image.Rect(x, bounds.Min.Y, x+1, bounds.Max.Y))
		}
	}

	// Horizontal lines
	for y := bounds.Min.Y + pixelSize; y < bounds.Max.Y; y += pixelSize {
		cell := (y - bounds.Min.Y) / pixelSize
		heavy := majorEvery > 0 && cell%majorEvery == 0
		switch {
		case heavy:
			line(image.Rect(bounds.Min.X, y-1, bounds.Max.X, y+1))
		case pixelSize >= minCellLinePixelSize:
			line(image.Rect(bounds.Min.X, y, bounds.Max.X, y+1))
		}
	}
}

// ParseGridColor parses a hex color string like "#FF0000" or "#FF000080".
// An empty string yields DefaultGridColor.
func ParseGridColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		hex = DefaultGridColor
	}
	s := hex
	if s[0] == '#' {
		s = s[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(s) {
	case 6:
		val, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid grid color %q", hex)
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid grid color %q", hex)
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid grid color %q: want #RRGGBB or #RRGGBBAA", hex)
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
