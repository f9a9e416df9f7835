package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixlator/internal/pattern"
)

// CellRegion selects a rectangle of pattern cells. (X1,Y1) is inclusive,
// (X2,Y2) exclusive.
type CellRegion struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Validate checks r against a pattern of the given size.
func (r CellRegion) Validate(dims pattern.Dimensions) error {
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > dims.Width || r.Y2 > dims.Height {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside pattern bounds %dx%d",
			r.X1, r.Y1, r.X2, r.Y2, dims.Width, dims.Height)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	return nil
}

// CropCells cuts the blocks of r out of a pattern rendered at pixelSize.
func CropCells(img image.Image, pixelSize int, r CellRegion) *image.NRGBA {
	rect := image.Rect(r.X1*pixelSize, r.Y1*pixelSize, r.X2*pixelSize, r.Y2*pixelSize)
	return imaging.Crop(img, rect.Add(img.Bounds().Min))
}

// Pages splits a pattern into regions of at most pageWidth x pageHeight
// cells, row by row from the top-left.
func Pages(dims pattern.Dimensions, pageWidth, pageHeight int) ([]CellRegion, error) {
	if pageWidth < 1 || pageHeight < 1 {
		return nil, fmt.Errorf("page size must be positive, got %dx%d", pageWidth, pageHeight)
	}
	var pages []CellRegion
	for y := 0; y < dims.Height; y += pageHeight {
		for x := 0; x < dims.Width; x += pageWidth {
			pages = append(pages, CellRegion{
				X1: x,
				Y1: y,
				X2: min(x+pageWidth, dims.Width),
				Y2: min(y+pageHeight, dims.Height),
			})
		}
	}
	return pages, nil
}
