package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/pixlator/internal/pattern"
)

// labelFace is the font used for line numbers on exported patterns.
var labelFace = basicfont.Face7x13

// MinLabelPixelSize is the smallest block edge that can carry a line number.
const MinLabelPixelSize = 14

// MaxExportPixels bounds the area of a rendered pattern before cropping.
const MaxExportPixels = 40_000_000

// ExportResult contains an encoded pattern image.
type ExportResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PixelSize   int    `json:"pixel_size"`
	Format      string `json:"format"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

// RenderPattern magnifies a pattern so that every cell becomes a
// pixelSize x pixelSize block of its color. With showNumbers, blocks large
// enough to hold the text are labelled with their line number.
func RenderPattern(pixels [][]pattern.PixelRecord, dims pattern.Dimensions, pixelSize int, showNumbers bool) (*image.NRGBA, error) {
	if pixelSize < 1 {
		return nil, fmt.Errorf("pixel_size must be at least 1, got %d", pixelSize)
	}
	if dims.Width < 1 || dims.Height < 1 {
		return nil, fmt.Errorf("invalid pattern dimensions %dx%d", dims.Width, dims.Height)
	}
	if len(pixels) != dims.Height {
		return nil, fmt.Errorf("pattern has %d rows, expected %d", len(pixels), dims.Height)
	}

	base := image.NewNRGBA(image.Rect(0, 0, dims.Width, dims.Height))
	for y, row := range pixels {
		if len(row) != dims.Width {
			return nil, fmt.Errorf("pattern row %d has %d cells, expected %d", y, len(row), dims.Width)
		}
		for x, p := range row {
			base.SetNRGBA(x, y, color.NRGBA{R: p.Color.R, G: p.Color.G, B: p.Color.B, A: 0xff})
		}
	}

	// Integer upscaling with nearest-neighbor maps every output pixel back to
	// exactly one cell.
	out := imaging.Resize(base, dims.Width*pixelSize, dims.Height*pixelSize, imaging.NearestNeighbor)

	if showNumbers && pixelSize >= MinLabelPixelSize {
		for _, row := range pixels {
			for _, p := range row {
				drawNumber(out, p, pixelSize)
			}
		}
	}
	return out, nil
}

// drawNumber centers the line number of p inside its block, in black on
// light colors and white on dark ones. Numbers too wide for the block are
// skipped.
func drawNumber(img *image.NRGBA, p pattern.PixelRecord, pixelSize int) {
	text := strconv.Itoa(p.Number)
	d := &font.Drawer{Dst: img, Face: labelFace}
	width := d.MeasureString(text).Ceil()
	if width > pixelSize-2 {
		return
	}

	fg := color.Black
	if p.Color.Luminance() < 0.5 {
		fg = color.White
	}
	d.Src = image.NewUniform(fg)

	m := labelFace.Metrics()
	textHeight := (m.Ascent + m.Descent).Ceil()
	left := p.X*pixelSize + (pixelSize-width)/2
	top := p.Y*pixelSize + (pixelSize-textHeight)/2
	d.Dot = fixed.P(left, top+m.Ascent.Ceil())
	d.DrawString(text)
}

// ParseExportFormat normalizes an export type to "png" or "jpeg".
func ParseExportFormat(s string) (imaging.Format, string, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return imaging.PNG, "png", nil
	case "jpg", "jpeg":
		return imaging.JPEG, "jpeg", nil
	}
	return 0, "", fmt.Errorf("unsupported export type %q (use png or jpg)", s)
}

// EncodeExport encodes img as PNG or JPEG.
func EncodeExport(img image.Image, exportType string) ([]byte, string, error) {
	format, name, err := ParseExportFormat(exportType)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(95)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), name, nil
}

// ExportOptions controls how a pattern is rendered and encoded.
type ExportOptions struct {
	PixelSize int
	// Type is "png" (default), "jpg" or "jpeg".
	Type        string
	ShowNumbers bool
	ShowGrid    bool
	// GridEvery is the spacing of heavy grid lines in cells; 0 draws only
	// cell lines.
	GridEvery int
	// GridColor is a #RRGGBB or #RRGGBBAA string; empty means black.
	GridColor string
	// Region limits the output to some cells; nil renders the whole pattern.
	Region *CellRegion
}

// Validate checks the options without rendering anything.
func (o ExportOptions) Validate() error {
	if o.PixelSize < 1 {
		return fmt.Errorf("pixel_size must be at least 1, got %d", o.PixelSize)
	}
	if _, _, err := ParseExportFormat(o.Type); err != nil {
		return err
	}
	if o.GridEvery < 0 {
		return fmt.Errorf("grid_every must not be negative, got %d", o.GridEvery)
	}
	if o.ShowGrid {
		if _, err := ParseGridColor(o.GridColor); err != nil {
			return err
		}
	}
	return nil
}

// CheckExportSize reports whether a dims pattern can be rendered at
// pixelSize without exceeding MaxExportPixels.
func CheckExportSize(dims pattern.Dimensions, pixelSize int) error {
	w := int64(dims.Width) * int64(pixelSize)
	h := int64(dims.Height) * int64(pixelSize)
	if w > MaxExportPixels || h > MaxExportPixels || w*h > MaxExportPixels {
		return fmt.Errorf("%w: pixel_size %d renders a %dx%d image, above the %d pixel limit",
			pattern.ErrInvalidParams, pixelSize, w, h, MaxExportPixels)
	}
	return nil
}

// Render draws the pattern of res according to o.
func (o ExportOptions) Render(res *pattern.Result) (*image.NRGBA, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := CheckExportSize(res.Dimensions, o.PixelSize); err != nil {
		return nil, err
	}
	if o.Region != nil {
		if err := o.Region.Validate(res.Dimensions); err != nil {
			return nil, err
		}
	}
	img, err := RenderPattern(res.PixelData, res.Dimensions, o.PixelSize, o.ShowNumbers)
	if err != nil {
		return nil, err
	}
	if o.ShowGrid {
		gridColor, _ := ParseGridColor(o.GridColor)
		DrawGrid(img, o.PixelSize, o.GridEvery, gridColor)
	}
	if o.Region != nil {
		img = CropCells(img, o.PixelSize, *o.Region)
	}
	return img, nil
}

// Export renders and encodes a processed pattern. The returned bytes are the
// encoded image; the result carries the same bytes base64-encoded.
func Export(res *pattern.Result, opts ExportOptions) (*ExportResult, []byte, error) {
	img, err := opts.Render(res)
	if err != nil {
		return nil, nil, err
	}
	data, format, err := EncodeExport(img, opts.Type)
	if err != nil {
		return nil, nil, err
	}
	return &ExportResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		PixelSize:   opts.PixelSize,
		Format:      format,
		MimeType:    "image/" + format,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
	}, data, nil
}
