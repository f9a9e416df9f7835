package pattern

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"
)

var (
	colorA = RGB{255, 0, 0}
	colorB = RGB{0, 0, 255}
	colorC = RGB{0, 255, 0}
)

// mustRaster builds a raster from rows of colors.
func mustRaster(t *testing.T, rows [][]RGB) *Raster {
	t.Helper()
	var pix []RGB
	for _, row := range rows {
		pix = append(pix, row...)
	}
	r, err := NewRaster(len(rows[0]), len(rows), pix)
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	return r
}

// createGradientImage creates an image whose red channel follows x and green follows y.
func createGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(255 * x / width), uint8(255 * y / height), 128, 255})
		}
	}
	return img
}

func TestRGB_Hex(t *testing.T) {
	tests := []struct {
		c    RGB
		want string
	}{
		{RGB{0, 0, 0}, "#000000"},
		{RGB{255, 255, 255}, "#FFFFFF"},
		{RGB{255, 128, 64}, "#FF8040"},
		{RGB{10, 171, 205}, "#0AABCD"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.c.Hex(); got != tt.want {
				t.Errorf("Hex: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	for _, s := range []string{"#FF8040", "FF8040", "#ff8040"} {
		c, err := ParseHex(s)
		if err != nil {
			t.Fatalf("ParseHex(%q) failed: %v", s, err)
		}
		if c != (RGB{255, 128, 64}) {
			t.Errorf("ParseHex(%q): got %v", s, c)
		}
	}

	if _, err := ParseHex("#XYZ"); err == nil {
		t.Error("ParseHex should fail for invalid input")
	}
}

func TestRGB_JSON(t *testing.T) {
	b, err := json.Marshal(RGB{1, 2, 3})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != "[1,2,3]" {
		t.Errorf("Marshal: got %s, want [1,2,3]", b)
	}

	var c RGB
	if err := json.Unmarshal([]byte("[4,5,6]"), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if c != (RGB{4, 5, 6}) {
		t.Errorf("Unmarshal: got %v", c)
	}

	if err := json.Unmarshal([]byte("[4,5,300]"), &c); err == nil {
		t.Error("Unmarshal should reject out-of-range channel")
	}
}

func TestRGB_Luminance(t *testing.T) {
	if l := (RGB{255, 255, 255}).Luminance(); l < 0.99 {
		t.Errorf("white luminance: got %f, want ~1", l)
	}
	if l := (RGB{0, 0, 0}).Luminance(); l > 0.01 {
		t.Errorf("black luminance: got %f, want ~0", l)
	}
}

func TestNewRaster_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		pix           int
	}{
		{"zero width", 0, 2, 0},
		{"zero height", 2, 0, 0},
		{"short pixels", 2, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRaster(tt.width, tt.height, make([]RGB, tt.pix))
			if err == nil {
				t.Error("NewRaster should fail")
			}
		})
	}

	_, err := NewRaster(0, 1, nil)
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("zero-size raster should wrap ErrInvalidParams, got %v", err)
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.NRGBA{10, 20, 30, 255})
	img.Set(6, 5, color.NRGBA{40, 50, 60, 128})

	r, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if r.Width() != 2 || r.Height() != 1 {
		t.Fatalf("dimensions: got %dx%d, want 2x1", r.Width(), r.Height())
	}
	if got := r.At(0, 0); got != (RGB{10, 20, 30}) {
		t.Errorf("At(0,0): got %v", got)
	}
	// Alpha is dropped, not composited.
	if got := r.At(1, 0); got != (RGB{40, 50, 60}) {
		t.Errorf("At(1,0): got %v", got)
	}
}

func TestFromImage_Empty(t *testing.T) {
	_, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestRaster_ImageRoundTrip(t *testing.T) {
	r := mustRaster(t, [][]RGB{{colorA, colorB}, {colorC, colorA}})
	back, err := FromImage(r.Image())
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if back.At(x, y) != r.At(x, y) {
				t.Errorf("pixel (%d,%d): got %v, want %v", x, y, back.At(x, y), r.At(x, y))
			}
		}
	}
	if r.DistinctColors() != 3 {
		t.Errorf("DistinctColors: got %d, want 3", r.DistinctColors())
	}
}
