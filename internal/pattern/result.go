package pattern

// Dimensions is the size of the processed raster.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PixelRecord describes one grid cell.
type PixelRecord struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Number int    `json:"number"`
	Color  RGB    `json:"color"`
	Hex    string `json:"hex"`
}

// ProcessingParams echoes the parameters together with the processed size.
type ProcessingParams struct {
	Params
	ProcessedDimensions Dimensions `json:"processed_dimensions"`
}

// Result is the complete, read-only output of one processing run.
type Result struct {
	ProcessingParams ProcessingParams `json:"processing_params"`
	PixelData        [][]PixelRecord  `json:"pixel_data"`
	ColorStats       []ColorStat      `json:"color_stats"`
	NumberStats      []NumberStat     `json:"number_stats"`
	Dimensions       Dimensions       `json:"dimensions"`
}

// Assemble composes the stage outputs into a Result.
func Assemble(params Params, r *Raster, g *NumberGrid, colors []ColorStat, numbers []NumberStat) *Result {
	dims := Dimensions{Width: r.width, Height: r.height}
	pixels := make([][]PixelRecord, r.height)
	for y := range pixels {
		row := make([]PixelRecord, r.width)
		for x := range row {
			c := r.pix[y*r.width+x]
			row[x] = PixelRecord{X: x, Y: y, Number: g.At(x, y), Color: c, Hex: c.Hex()}
		}
		pixels[y] = row
	}
	return &Result{
		ProcessingParams: ProcessingParams{Params: params, ProcessedDimensions: dims},
		PixelData:        pixels,
		ColorStats:       colors,
		NumberStats:      numbers,
		Dimensions:       dims,
	}
}
