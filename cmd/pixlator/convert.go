package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/pixlator/internal/cluster"
	"github.com/ironsheep/pixlator/internal/config"
	"github.com/ironsheep/pixlator/internal/imaging"
	"github.com/ironsheep/pixlator/internal/pattern"
)

// runConvert processes one image without the server and writes
// <stem>.json and <stem>_pattern.png into the output directory, plus
// <stem>_pattern_p<N>.png per page when paging is enabled.
func runConvert(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	maxSize := fs.Int("size", cfg.DefaultMaxSize, "longest pattern edge in cells")
	colors := fs.Int("colors", 0, "reduce to this many colors; 0 keeps the originals")
	mode := fs.String("mode", string(pattern.DefaultMode), "numbering mode: "+modeList())
	pixelSize := fs.Int("pixel-size", 10, "block edge of the rendered pattern in pixels")
	numbers := fs.Bool("numbers", false, "draw line numbers on the rendered pattern")
	grid := fs.Bool("grid", false, "outline cells on the rendered pattern")
	gridEvery := fs.Int("grid-every", imaging.DefaultGridEvery, "heavy grid line spacing in cells")
	gridColor := fs.String("grid-color", imaging.DefaultGridColor, "grid `color` as #RRGGBB or #RRGGBBAA")
	page := fs.Int("page", 0, "also write the chart in pages of `N`xN cells; 0 disables")
	outDir := fs.String("out", ".", "output `directory`")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: pixlator convert [flags] <image>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one image, got %d arguments", fs.NArg())
	}
	src := fs.Arg(0)

	opts := imaging.ExportOptions{
		PixelSize:   *pixelSize,
		ShowNumbers: *numbers,
		ShowGrid:    *grid,
		GridEvery:   *gridEvery,
		GridColor:   *gridColor,
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if *page < 0 {
		return fmt.Errorf("page size must not be negative, got %d", *page)
	}

	img, err := imgio.Open(src)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	processor := pattern.NewProcessor(&cluster.KMeans{}, cfg.ClusterSeed)
	processor.Debug = cfg.Debug
	res, err := processor.Process(img, pattern.Params{
		MaxSize:       *maxSize,
		ColorCount:    *colors,
		NumberingMode: pattern.Mode(*mode),
	})
	if err != nil {
		return err
	}

	rendered, err := opts.Render(res)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	jsonPath := filepath.Join(*outDir, stem+".json")
	pngPath := filepath.Join(*outDir, stem+"_pattern.png")

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := imgio.Save(pngPath, rendered, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to write pattern image: %w", err)
	}

	fmt.Fprintf(stdout, "%s: %dx%d, %d colors, %d lines\n", base, res.Dimensions.Width, res.Dimensions.Height, len(res.ColorStats), len(res.NumberStats))
	fmt.Fprintf(stdout, "  %s\n  %s\n", jsonPath, pngPath)

	if *page > 0 {
		pages, err := imaging.Pages(res.Dimensions, *page, *page)
		if err != nil {
			return err
		}
		for i, r := range pages {
			p := filepath.Join(*outDir, fmt.Sprintf("%s_pattern_p%d.png", stem, i+1))
			if err := imgio.Save(p, imaging.CropCells(rendered, opts.PixelSize, r), imgio.PNGEncoder()); err != nil {
				return fmt.Errorf("failed to write page %d: %w", i+1, err)
			}
			fmt.Fprintf(stdout, "  %s (cells %d,%d-%d,%d)\n", p, r.X1, r.Y1, r.X2, r.Y2)
		}
	}
	return nil
}

func modeList() string {
	names := make([]string, len(pattern.Modes))
	for i, m := range pattern.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
