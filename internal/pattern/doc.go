// Package pattern turns a decoded image into a paint/stitch-by-number pattern.
//
// The pipeline runs strictly in this order:
//
//	raster -> Resize -> Quantize (optional) -> Number -> {Aggregate, Encode} -> Result
//
// Every stage reads its input and allocates a new output, so a Processor can be
// shared by goroutines working on different images. Nothing is cached between
// calls.
//
// # Coordinates
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// rightward and Y growing downward. Line numbers are 1-based.
//
// # Colors
//
// Colors are 8-bit RGB triples. The RGB type is a comparable value and is used
// directly as a map key, so two pixels share a palette index exactly when their
// three channels are equal. Hex strings always use the "#RRGGBB" form with
// uppercase digits.
//
// # Numbering Modes
//
//   - top_to_bottom: number = y + 1
//   - bottom_to_top: number = H - y
//   - diagonal_bottom_left: number = (H-1-y) + x + 1
//   - diagonal_bottom_right: number = (W-1-x) + (H-1-y) + 1 (default)
//
// Within a line, pixels are read right-to-left when the line number is odd and
// left-to-right when it is even, so consecutive lines form one zigzag path.
//
// # Reproducibility
//
// Identical inputs always produce identical results. Palette indices follow
// row-major first-encounter order, stats ties keep discovery order, and the
// clustering step runs with an explicit seed.
package pattern
