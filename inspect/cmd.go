package inspect

import (
	"fmt"
	"log/slog"
	"math"

	"okpal/gamut"
	"okpal/okcolor"

	"github.com/alecthomas/kong"
)

type ConvertCmd struct {
	Colors []okcolor.SRGB `arg:"" help:"Colors as #RGB or #RRGGBB"`
	D65    bool           `name:"d65" help:"Report D65 referenced lightness" default:"false"`
}

func (c *ConvertCmd) Run(logger *slog.Logger) error {
	for _, col := range c.Colors {
		lab := col.Lab().Reference(c.D65)
		lch := lab.LCh()
		attrs := []any{"color", col,
			"linear", col.Linear(),
			"lab", lab,
			"lch", lch,
			"hue_deg", degrees(lch.H),
		}
		// saturation is undefined for black
		if col != okcolor.Black {
			attrs = append(attrs, "saturation", lab.Saturation(), "saturation_hyab", lab.SaturationHyab())
		}
		attrs = append(attrs,
			"contrast_eab", (gamut.Search{Metric: okcolor.MetricEab}).Contrast(lab),
			"contrast_hyab", (gamut.Search{Metric: okcolor.MetricHyab}).Contrast(lab))
		logger.Info("color", attrs...)
	}

	for i, a := range c.Colors {
		for _, b := range c.Colors[i+1:] {
			x, y := a.Lab().Reference(c.D65), b.Lab().Reference(c.D65)
			attrs := []any{"from", a, "to", b,
				"eab", okcolor.DeltaEab(x, y),
				"hyab", okcolor.DeltaEHyab(x, y),
				"dc", okcolor.DeltaC(x, y),
				"dh", okcolor.DeltaH(x, y),
			}
			if d, ok := okcolor.HueDistance(x, y); ok {
				attrs = append(attrs, "hue_deg", degrees(d))
			}
			logger.Info("distance", attrs...)
		}
	}
	return nil
}

type MapCmd struct {
	L float64 `arg:"" help:"Oklch lightness"`
	C float64 `arg:"" help:"Oklch chroma"`
	H float64 `arg:"" help:"Oklch hue in degrees"`

	D65      bool             `name:"d65" help:"Lightness is D65 referenced" default:"false"`
	Metric   okcolor.Metric   `help:"Distance metric for the closest strategy and the reported error (eab, hyab)" default:"hyab"`
	Strategy []gamut.Strategy `help:"Gamut mapping strategies (clip, project, chroma, lightness, closest)" default:"clip,project,chroma,lightness"`
}

func (c *MapCmd) Validate(kctx *kong.Context) error {
	if c.C < 0 || math.IsNaN(c.C) {
		return fmt.Errorf("invalid chroma: %g", c.C)
	}
	if math.IsNaN(c.L) || math.IsNaN(c.H) {
		return fmt.Errorf("invalid color: %g %g %g", c.L, c.C, c.H)
	}
	return nil
}

func (c *MapCmd) Run(logger *slog.Logger, workers int) error {
	target := okcolor.LCh{L: c.L, C: c.C, H: c.H * math.Pi / 180, D65: c.D65}
	lab := target.Lab()
	search := gamut.Search{Metric: c.Metric, Workers: workers}

	logger.Info("target", "lch", target, "lab", lab, "linear", lab.Linear(), "in_gamut", gamut.InGamut(lab))
	for _, st := range c.Strategy {
		got := search.Map(lab, st)
		out := got.Lab().Reference(c.D65)
		logger.Info("mapped", "strategy", st, "color", got, "lch", out.LCh(),
			"error", c.Metric.Distance(lab, out))
	}
	return nil
}

type CLICmd struct {
	Convert ConvertCmd `cmd:"" help:"Show colors in every color space, with their pairwise distances"`
	Map     MapCmd     `cmd:"" help:"Bring an Oklch color into the sRGB gamut"`
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
