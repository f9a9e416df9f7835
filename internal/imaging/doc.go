// Package imaging loads source images and renders processed patterns back
// into images.
//
// # Loading
//
// ImageCache decodes files once and keeps them by path. JPEG, PNG, GIF, BMP
// and WebP are recognized. DecodeDimensions reads only the header, which is
// enough to validate an upload.
//
// # Rendering
//
// RenderPattern magnifies every pattern cell into a pixelSize x pixelSize
// block. On top of that an export may carry:
//   - line numbers, centered in each block when the block is at least
//     MinLabelPixelSize pixels wide
//   - a chart grid with a one pixel line per cell and a heavier line every
//     few cells (DrawGrid)
//   - a crop to a rectangle of cells (CropCells), used to print large
//     charts page by page (Pages)
//
// Cell coordinates are 0-based from the top-left corner. Regions include
// (X1,Y1) and exclude (X2,Y2).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Rendering functions are
// stateless.
package imaging
