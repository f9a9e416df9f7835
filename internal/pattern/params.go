package pattern

import (
	"errors"
	"fmt"
)

// ErrInvalidParams marks a request rejected because of bad parameters or an
// unusable raster.
var ErrInvalidParams = errors.New("invalid parameters")

// Mode selects how pixels are grouped into numbered lines.
type Mode string

const (
	TopToBottom         Mode = "top_to_bottom"
	BottomToTop         Mode = "bottom_to_top"
	DiagonalBottomLeft  Mode = "diagonal_bottom_left"
	DiagonalBottomRight Mode = "diagonal_bottom_right"
)

// DefaultMode is used when a request leaves the numbering mode empty.
const DefaultMode = DiagonalBottomRight

// DefaultMaxSize is the longest side of the processed raster when none is given.
const DefaultMaxSize = 100

// Modes lists every supported numbering mode.
var Modes = []Mode{TopToBottom, BottomToTop, DiagonalBottomLeft, DiagonalBottomRight}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case TopToBottom, BottomToTop, DiagonalBottomLeft, DiagonalBottomRight:
		return true
	}
	return false
}

// ParseMode converts a request string to a Mode. An empty string yields
// DefaultMode; anything unknown is rejected.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unsupported numbering mode %q", ErrInvalidParams, s)
	}
	return m, nil
}

// Params is the configuration that produced a result. It is stored with the
// result so the run can be reproduced.
type Params struct {
	MaxSize int `json:"max_size"`
	// ColorCount of 0 skips quantization.
	ColorCount    int  `json:"color_count"`
	NumberingMode Mode `json:"numbering_mode"`
}

// Validate checks the parameters. It fills in the default numbering mode when
// none was given but never substitutes numeric values.
func (p *Params) Validate() error {
	if p.MaxSize <= 0 {
		return fmt.Errorf("%w: max_size must be positive, got %d", ErrInvalidParams, p.MaxSize)
	}
	if p.ColorCount < 0 {
		return fmt.Errorf("%w: color_count must be positive, got %d", ErrInvalidParams, p.ColorCount)
	}
	mode, err := ParseMode(string(p.NumberingMode))
	if err != nil {
		return err
	}
	p.NumberingMode = mode
	return nil
}
