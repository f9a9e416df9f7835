package imaging

import (
	"image"
	"image/color"
	"testing"
)

func solidNRGBA(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDrawGrid_CellLines(t *testing.T) {
	bg := color.NRGBA{200, 200, 200, 255}
	line := color.NRGBA{255, 0, 0, 255}
	img := solidNRGBA(30, 20, bg)

	DrawGrid(img, 10, 0, line)

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{10, 5, line},  // vertical boundary
		{20, 15, line}, // vertical boundary
		{5, 10, line},  // horizontal boundary
		{9, 5, bg},     // last column of first cell
		{0, 0, bg},     // outer edge is not outlined
		{15, 15, bg},   // interior
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDrawGrid_HeavyLines(t *testing.T) {
	bg := color.NRGBA{255, 255, 255, 255}
	line := color.NRGBA{0, 0, 0, 255}
	img := solidNRGBA(12, 12, bg)

	// Blocks of 2 are too small for cell lines; only boundary 3 (x=6) is heavy
	// and covers the columns on both sides of it.
	DrawGrid(img, 2, 3, line)

	for x := 0; x < 12; x++ {
		want := bg
		if x == 5 || x == 6 {
			want = line
		}
		if got := img.NRGBAAt(x, 1); got != want {
			t.Errorf("pixel (%d,1): got %v, want %v", x, got, want)
		}
	}
}

func TestDrawGrid_Translucent(t *testing.T) {
	img := solidNRGBA(8, 8, color.NRGBA{0, 0, 255, 255})

	DrawGrid(img, 4, 0, color.NRGBA{255, 0, 0, 128})

	got := img.NRGBAAt(4, 0)
	if got.R == 0 || got.B == 0 || got.A != 255 {
		t.Errorf("translucent line should blend, got %v", got)
	}
}

func TestParseGridColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"", color.NRGBA{0, 0, 0, 255}, false},
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGridColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGridColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseGridColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
