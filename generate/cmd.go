package generate

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"okpal/gamut"
	"okpal/okcolor"
	"okpal/palette"
	"okpal/selector"

	"github.com/alecthomas/kong"
)

// OpParams are the search and output flags shared by every generator.
type OpParams struct {
	Seeds    []okcolor.SRGB `help:"Seed colors, kept at the start of the palette" default:"#000000" group:"search"`
	SeedFile string         `help:"Append the colors of a PAL file, hex list or image to the seeds" type:"existingfile" group:"search"`
	Metric   okcolor.Metric `help:"Distance metric (eab, hyab)" default:"hyab" group:"search"`
	D65      bool           `name:"d65" help:"Measure on D65 referenced lightness" default:"false" group:"search"`
	Step     int            `help:"Sample every step-th level of each channel; must divide 256" default:"1" group:"search"`

	Prefilter       selector.Prefilter `help:"Skip candidates closer to the first seed than this statistic of all distances to it (none, mean, geomean, median)" default:"none" group:"filter"`
	MinSeedDistance float64            `help:"Skip candidates closer than this to the first seed" default:"0" group:"filter"`
	Hue             selector.HueMode   `help:"Hue separation filter (off, angle, deltah, relative)" default:"off" group:"filter"`
	HueLimit        float64            `help:"Smallest allowed hue separation; radians for angle" default:"0" group:"filter"`
	HueSpread       bool               `help:"Divide the hue limit by the number of chromatic palette colors" default:"false" group:"filter"`

	Pal        string `help:"Write the palette as a RIFF PAL file" type:"path" group:"output"`
	Hex        string `help:"Write the palette as a #rrggbb list, - for stdout" group:"output"`
	Swatch     string `help:"Write a swatch image; the extension picks the format (png, gif, bmp, tiff)" type:"path" group:"output"`
	SwatchSize int    `help:"Swatch square size in pixels" default:"32" group:"output"`

	seeds palette.Set `kong:"-"`
}

func (c *OpParams) Validate(kctx *kong.Context) error {
	if len(c.Seeds) == 0 && c.SeedFile == "" {
		return selector.ErrNoSeeds
	}
	all := c.Seeds
	if c.SeedFile != "" {
		more, err := palette.Load(c.SeedFile)
		if err != nil {
			return fmt.Errorf("invalid seed file %q: %w", c.SeedFile, err)
		}
		all = append(slices.Clip(all), more...)
	}
	// first occurrence wins
	c.seeds = palette.Set{}
	for _, col := range all {
		if !c.seeds.Contains(col) {
			c.seeds = append(c.seeds, col)
		}
	}
	if len(c.seeds) == 0 {
		return selector.ErrNoSeeds
	}

	if err := (gamut.Grid{Step: c.Step}).Validate(); err != nil {
		return err
	}
	if c.Hue != selector.HueOff && c.HueLimit <= 0 {
		return fmt.Errorf("hue filter %s needs a positive --hue-limit", c.Hue)
	}
	if c.Swatch != "" {
		if c.SwatchSize < 1 {
			return fmt.Errorf("invalid swatch size: %d", c.SwatchSize)
		}
		switch ext := filepath.Ext(c.Swatch); ext {
		case ".png", ".gif", ".bmp", ".tif", ".tiff":
		default:
			return fmt.Errorf("unsupported swatch format %q", ext)
		}
	}
	return nil
}

func (c *OpParams) options(logger *slog.Logger, workers int) selector.Options {
	return selector.Options{
		Metric:          c.Metric,
		D65:             c.D65,
		Prefilter:       c.Prefilter,
		MinSeedDistance: c.MinSeedDistance,
		Hue: selector.HueFilter{
			Mode:   c.Hue,
			Limit:  c.HueLimit,
			Spread: c.HueSpread,
		},
		Grid:    gamut.Grid{Step: c.Step},
		Workers: workers,
		Logger:  logger,
	}
}

// write stores the finished palette in every requested format. previews, if
// any, become the second swatch row.
func (c *OpParams) write(logger *slog.Logger, pal, previews palette.Set) error {
	if c.Pal != "" {
		if err := palette.Save(c.Pal, func(w io.Writer) error {
			_, err := palette.WriteRIFF(w, pal)
			return err
		}); err != nil {
			return err
		}
		logger.Info("wrote palette", "file", c.Pal, "colors", len(pal))
	}

	switch c.Hex {
	case "":
	case "-":
		if _, err := pal.WriteHex(os.Stdout); err != nil {
			return err
		}
	default:
		if err := palette.Save(c.Hex, func(w io.Writer) error {
			_, err := pal.WriteHex(w)
			return err
		}); err != nil {
			return err
		}
		logger.Info("wrote color list", "file", c.Hex, "colors", len(pal))
	}

	if c.Swatch != "" {
		rows := []palette.Set{pal}
		if len(previews) > 0 {
			// previews start after the seeds
			row := make(palette.Set, len(pal)-len(previews), len(pal))
			copy(row, pal)
			rows = append(rows, append(row, previews...))
		}
		img := palette.Swatch(c.SwatchSize, okcolor.White, rows...)
		if err := palette.Save(c.Swatch, func(w io.Writer) error {
			return palette.Encode(w, img, filepath.Ext(c.Swatch))
		}); err != nil {
			return err
		}
		logger.Info("wrote swatch", "file", c.Swatch, "rows", len(rows))
	}

	return nil
}

type GreedyCmd struct {
	OpParams

	Count int  `arg:"" optional:"" help:"Number of colors to add"`
	All   bool `help:"Keep adding colors until no candidate is left" default:"false"`

	PreviewLightness float64        `help:"Lightness multiplier of the per color preview; 0 disables previews" default:"0" group:"preview"`
	PreviewChroma    float64        `help:"Chroma multiplier of the per color preview" default:"1" group:"preview"`
	PreviewStrategy  gamut.Strategy `help:"Gamut mapping of previews (clip, project, chroma, lightness, closest)" default:"chroma" group:"preview"`
}

func (c *GreedyCmd) Validate(kctx *kong.Context) error {
	if err := c.OpParams.Validate(kctx); err != nil {
		return err
	}
	switch {
	case c.All && c.Count > 0:
		return fmt.Errorf("either give a color count or --all")
	case c.All:
		c.Count = selector.UntilExhausted
	case c.Count < 1:
		return fmt.Errorf("invalid color count: %d", c.Count)
	}
	if c.PreviewLightness < 0 || c.PreviewChroma < 0 {
		return fmt.Errorf("invalid preview multipliers: %g, %g", c.PreviewLightness, c.PreviewChroma)
	}
	return nil
}

func (c *GreedyCmd) Run(logger *slog.Logger, workers int) error {
	opts := c.options(logger, workers)
	opts.Preview = selector.Preview{
		Lightness: c.PreviewLightness,
		Chroma:    c.PreviewChroma,
		Strategy:  c.PreviewStrategy,
	}

	s, err := selector.New(c.seeds, opts)
	if err != nil {
		return fmt.Errorf("could not start palette: %w", err)
	}

	logger.Info("generating", "seeds", len(c.seeds), "count", c.Count, "metric", c.Metric,
		"colors", opts.Grid.Len(), "workers", workers)
	start := time.Now()
	var previews palette.Set
	res, err := s.Run(c.Count, func(step selector.Step) {
		logger.Info("color", "step", step)
		if step.HasPreview {
			previews = append(previews, step.Preview)
		}
	})
	if err != nil {
		return err
	}

	if res.Exhausted {
		logger.Warn("no candidates left, palette is short", "requested", c.Count, "added", len(res.Steps))
	}
	logger.Info("stats", "colors", len(res.Palette), "added", len(res.Steps),
		"min_distance", selector.MinDistance(res.Palette, c.Metric, c.D65),
		"threshold", res.Threshold, "took", time.Since(start))

	return c.write(logger, res.Palette, previews)
}

// minOptimalStep keeps the combinatorial search tractable.
const minOptimalStep = 8

type OptimalCmd struct {
	OpParams

	Count int `arg:"" help:"Number of colors to place together"`
}

func (c *OptimalCmd) Validate(kctx *kong.Context) error {
	if err := c.OpParams.Validate(kctx); err != nil {
		return err
	}
	if c.Count < 1 {
		return fmt.Errorf("invalid color count: %d", c.Count)
	}
	if c.Step < minOptimalStep {
		return fmt.Errorf("optimal search needs a --step of at least %d, got %d", minOptimalStep, c.Step)
	}
	return nil
}

func (c *OptimalCmd) Run(logger *slog.Logger, workers int) error {
	opts := c.options(logger, workers)
	logger.Info("searching", "seeds", len(c.seeds), "count", c.Count, "metric", c.Metric,
		"colors", opts.Grid.Len(), "workers", workers)

	start := time.Now()
	res, err := selector.Optimal(c.seeds, c.Count, opts)
	if err != nil {
		return fmt.Errorf("could not search palette: %w", err)
	}
	if !res.Found {
		return fmt.Errorf("only %d candidates pass the filters, %d needed", res.Candidates, c.Count)
	}

	for i, col := range res.Colors {
		logger.Info("color", "index", len(c.seeds)+i, "color", col)
	}
	logger.Info("stats", "colors", len(res.Colors), "candidates", res.Candidates,
		"min_distance", res.Score, "took", time.Since(start))

	return c.write(logger, append(c.seeds, res.Colors...), nil)
}

type CLICmd struct {
	Greedy  GreedyCmd  `cmd:"" help:"Add colors one at a time, each as far as possible from all earlier ones"`
	Optimal OptimalCmd `cmd:"" help:"Place colors together to maximize their smallest distance on a coarse grid"`
}
