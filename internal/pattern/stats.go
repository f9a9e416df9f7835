package pattern

import (
	"encoding/json"
	"slices"
)

// Position is a pixel coordinate, encoded in JSON as [x, y].
type Position struct {
	X, Y int
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var v [2]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.X, p.Y = v[0], v[1]
	return nil
}

// Palette maps each distinct color to a dense 1-based index assigned in
// row-major first-encounter order.
type Palette struct {
	index  map[RGB]int
	colors []RGB
}

// Index returns the palette index of c and whether c is in the palette.
func (p *Palette) Index(c RGB) (int, bool) {
	i, ok := p.index[c]
	return i, ok
}

// Color returns the color with the given 1-based index.
func (p *Palette) Color(index int) RGB {
	return p.colors[index-1]
}

// Len returns the number of distinct colors.
func (p *Palette) Len() int {
	return len(p.colors)
}

func (p *Palette) add(c RGB) (int, bool) {
	if i, ok := p.index[c]; ok {
		return i, false
	}
	p.colors = append(p.colors, c)
	p.index[c] = len(p.colors)
	return len(p.colors), true
}

// ColorStat describes how one palette color is used.
type ColorStat struct {
	ColorIndex int        `json:"color_index"`
	RGB        RGB        `json:"rgb"`
	Hex        string     `json:"hex"`
	Count      int        `json:"count"`
	Positions  []Position `json:"positions"`
}

// Aggregate scans r once in row-major order, building the palette and the
// per-color stats. Stats are sorted by count descending; equal counts keep
// first-encounter order.
func Aggregate(r *Raster) (*Palette, []ColorStat) {
	p := &Palette{index: make(map[RGB]int)}
	var stats []ColorStat
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := r.pix[y*r.width+x]
			idx, added := p.add(c)
			if added {
				stats = append(stats, ColorStat{ColorIndex: idx, RGB: c, Hex: c.Hex()})
			}
			s := &stats[idx-1]
			s.Count++
			s.Positions = append(s.Positions, Position{X: x, Y: y})
		}
	}
	slices.SortStableFunc(stats, func(a, b ColorStat) int {
		return b.Count - a.Count
	})
	return p, stats
}
