package pattern

// Number returns the 1-based line number of pixel (x, y) in a width x height
// grid. Unknown modes are numbered like DiagonalBottomRight.
func Number(mode Mode, x, y, width, height int) int {
	switch mode {
	case TopToBottom:
		return y + 1
	case BottomToTop:
		return height - y
	case DiagonalBottomLeft:
		return (height - 1 - y) + x + 1
	default:
		return (width - 1 - x) + (height - 1 - y) + 1
	}
}

// LineCount returns how many distinct line numbers mode produces.
func LineCount(mode Mode, width, height int) int {
	switch mode {
	case TopToBottom, BottomToTop:
		return height
	default:
		return width + height - 1
	}
}

// NumberGrid holds the line number of every pixel, row-major.
type NumberGrid struct {
	Width   int
	Height  int
	Lines   int
	numbers []int
}

// At returns the line number of (x, y).
func (g *NumberGrid) At(x, y int) int {
	return g.numbers[y*g.Width+x]
}

// NumberPixels numbers every pixel of r.
func NumberPixels(r *Raster, mode Mode) *NumberGrid {
	g := &NumberGrid{
		Width:   r.width,
		Height:  r.height,
		Lines:   LineCount(mode, r.width, r.height),
		numbers: make([]int, r.width*r.height),
	}
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			g.numbers[y*r.width+x] = Number(mode, x, y, r.width, r.height)
		}
	}
	return g
}
