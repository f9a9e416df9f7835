package pattern

import (
	"fmt"
	"image"
	"log"
)

// Processor runs the full pipeline. It holds no per-image state and may be
// used from several goroutines at once.
type Processor struct {
	Quantizer Quantizer
	// Debug enables one log line per stage.
	Debug bool
}

// NewProcessor returns a Processor that quantizes with c and seed.
func NewProcessor(c Clusterer, seed uint64) *Processor {
	return &Processor{Quantizer: Quantizer{Clusterer: c, Seed: seed}}
}

// Process converts img into a pattern. It either returns a fully populated
// result or an error; partial results are never returned.
func (p *Processor) Process(img image.Image, params Params) (*Result, error) {
	raster, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	return p.ProcessRaster(raster, params)
}

// ProcessRaster is Process for an already decoded raster.
func (p *Processor) ProcessRaster(src *Raster, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	r, err := Resize(src, params.MaxSize)
	if err != nil {
		return nil, err
	}
	p.debugf("Image resized to: %dx%d pixels", r.width, r.height)

	if params.ColorCount > 0 {
		r, err = p.Quantizer.Quantize(r, params.ColorCount)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce colors: %w", err)
		}
		p.debugf("Colors reduced to %d (requested %d)", r.DistinctColors(), params.ColorCount)
	}

	grid := NumberPixels(r, params.NumberingMode)
	palette, colors := Aggregate(r)
	numbers, err := Encode(r, grid, palette)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lines: %w", err)
	}

	p.debugf("Pattern built: %dx%d, %d colors, %d lines (%s)", r.width, r.height, palette.Len(), len(numbers), params.NumberingMode)
	return Assemble(params, r, grid, colors, numbers), nil
}

func (p *Processor) debugf(format string, args ...interface{}) {
	if p.Debug {
		log.Printf(format, args...)
	}
}
