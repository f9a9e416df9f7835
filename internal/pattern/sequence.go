package pattern

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Run is one stretch of identical palette indices, encoded in JSON as
// [color_index, count].
type Run struct {
	ColorIndex int
	Count      int
}

func (r Run) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.ColorIndex, r.Count})
}

func (r *Run) UnmarshalJSON(data []byte) error {
	var v [2]int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.ColorIndex, r.Count = v[0], v[1]
	return nil
}

// NumberStat is the run-length encoded color sequence of one line.
type NumberStat struct {
	Number   int   `json:"number"`
	Sequence []Run `json:"sequence"`
}

// Expand returns the palette indices the sequence stands for.
func (s NumberStat) Expand() []int {
	var out []int
	for _, r := range s.Sequence {
		for i := 0; i < r.Count; i++ {
			out = append(out, r.ColorIndex)
		}
	}
	return out
}

// LineOrder returns the pixels of every line in zigzag order: odd lines run
// right-to-left, even lines left-to-right. The result is indexed by line
// number minus one.
func LineOrder(g *NumberGrid) [][]Position {
	lines := make([][]Position, g.Lines)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			n := g.At(x, y)
			lines[n-1] = append(lines[n-1], Position{X: x, Y: y})
		}
	}
	for i, line := range lines {
		if (i+1)%2 == 1 {
			slices.SortStableFunc(line, func(a, b Position) int { return b.X - a.X })
		} else {
			slices.SortStableFunc(line, func(a, b Position) int { return a.X - b.X })
		}
	}
	return lines
}

// RunLength compresses a list of palette indices into runs.
func RunLength(indices []int) []Run {
	runs := []Run{}
	for _, idx := range indices {
		if n := len(runs); n > 0 && runs[n-1].ColorIndex == idx {
			runs[n-1].Count++
			continue
		}
		runs = append(runs, Run{ColorIndex: idx, Count: 1})
	}
	return runs
}

// Encode produces one NumberStat per line number, in ascending order.
func Encode(r *Raster, g *NumberGrid, p *Palette) ([]NumberStat, error) {
	if g.Width != r.width || g.Height != r.height {
		return nil, fmt.Errorf("number grid %dx%d does not match raster %dx%d", g.Width, g.Height, r.width, r.height)
	}
	lines := LineOrder(g)
	stats := make([]NumberStat, len(lines))
	for i, line := range lines {
		indices := make([]int, len(line))
		for j, pos := range line {
			idx, ok := p.Index(r.pix[pos.Y*r.width+pos.X])
			if !ok {
				return nil, fmt.Errorf("color at (%d,%d) missing from palette", pos.X, pos.Y)
			}
			indices[j] = idx
		}
		stats[i] = NumberStat{Number: i + 1, Sequence: RunLength(indices)}
	}
	return stats, nil
}
