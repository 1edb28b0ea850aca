package gamut

import (
	"okpal/okcolor"
)

const (
	// Tolerance is how far, in linear light, a channel may leave [0, 1] and
	// still count as in gamut: a quarter of an 8-bit step.
	Tolerance = 0.25 / 255
	// Iterations is the number of halvings of every bisection, one per bit
	// of float64 mantissa.
	Iterations = 50
	// MaxChroma bounds the chroma of any sRGB color (the real maximum is
	// about 0.3225, reached by magenta).
	MaxChroma = 0.5
)

// InGamut reports whether lc converts to linear RGB within Tolerance.
func InGamut(lc okcolor.Lab) bool {
	return lc.Linear().InGamut(Tolerance)
}

// Clip clamps each linear channel into [0, 1]. It is cheap and may shift hue
// and chroma.
func Clip(lc okcolor.Lab) okcolor.SRGB {
	return lc.Linear().Clamp().SRGB()
}

// Project uses the analytic adaptive clipper, which keeps the hue and trades
// lightness against chroma.
func Project(lc okcolor.Lab) okcolor.SRGB {
	return lc.ClippedLinear(okcolor.ClipAdaptive05(0.05)).SRGB()
}

// bisect returns the largest m in [0, hi] for which feasible holds, given it
// holds at 0. The first probe is hi/2.
func bisect(hi float64, feasible func(m float64) bool) float64 {
	lo := 0.0
	for range Iterations {
		m := (lo + hi) / 2
		if feasible(m) {
			lo = m
		} else {
			hi = m
		}
	}
	return lo
}

// ClampChroma keeps lightness and hue and scales chroma down until the color
// fits. Lightness outside [0, 1] is clamped first.
func ClampChroma(lch okcolor.LCh) okcolor.LCh {
	lch.L = clamp01(lch.L)
	if InGamut(lch.Lab()) {
		return lch
	}

	c := lch.C
	m := bisect(1, func(m float64) bool {
		lch.C = c * m
		return InGamut(lch.Lab())
	})
	lch.C = c * m
	return lch
}

// ClampLightness keeps chroma and hue and scales lightness down until no
// channel exceeds 1. When the chroma is too high for the hue at any
// lightness, chroma is clamped afterwards.
func ClampLightness(lch okcolor.LCh) okcolor.LCh {
	lch.L = max(lch.L, 0)
	if InGamut(lch.Lab()) {
		return lch
	}

	if !belowWhite(lch) {
		l := lch.L
		m := bisect(1, func(m float64) bool {
			lch.L = l * m
			return belowWhite(lch)
		})
		lch.L = l * m
	}

	if !InGamut(lch.Lab()) {
		return ClampChroma(lch)
	}
	return lch
}

// MaximizeChroma returns the most colorful in-gamut color with the
// lightness and hue of lch, searching down from MaxChroma.
func MaximizeChroma(lch okcolor.LCh) okcolor.LCh {
	lch.L = clamp01(lch.L)
	lch.C = bisect(MaxChroma, func(c float64) bool {
		lch.C = c
		return InGamut(lch.Lab())
	})
	return lch
}

// MaximizeLightness returns the lightest color with the chroma and hue of
// lch whose channels stay at or below 1, searching down from white. If the
// chroma cannot be shown at that lightness it is clamped.
func MaximizeLightness(lch okcolor.LCh) okcolor.LCh {
	lch.L = bisect(1, func(l float64) bool {
		lch.L = l
		return belowWhite(lch)
	})
	if !InGamut(lch.Lab()) {
		return ClampChroma(lch)
	}
	return lch
}

func belowWhite(lch okcolor.LCh) bool {
	return lch.Lab().Linear().Max() <= 1+Tolerance
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

// Search configures the exhaustive mappers.
type Search struct {
	Metric  okcolor.Metric
	Workers int
}

// Closest returns the sRGB color nearest to lc. Colors already in gamut are
// converted directly; anything else costs a scan of the full gamut.
func (s Search) Closest(lc okcolor.Lab) okcolor.SRGB {
	if InGamut(lc) {
		return lc.SRGB()
	}

	scan := Scan{Grid: Full, Workers: s.Workers, D65: lc.D65}
	c, _, _ := scan.Min(func(_ okcolor.SRGB, sample okcolor.Lab) (float64, bool) {
		return s.Metric.Distance(lc, sample), true
	})
	return c
}

// Contrast returns the corner of the RGB cube (black, white, a primary or a
// secondary) farthest from lc.
func (s Search) Contrast(lc okcolor.Lab) okcolor.SRGB {
	scan := Scan{Grid: Corners, Workers: 1, D65: lc.D65}
	c, _, _ := scan.Max(func(_ okcolor.SRGB, sample okcolor.Lab) (float64, bool) {
		return s.Metric.Distance(lc, sample), true
	})
	return c
}

// Map converts lc with the given strategy.
func (s Search) Map(lc okcolor.Lab, st Strategy) okcolor.SRGB {
	switch st {
	case StrategyProject:
		return Project(lc)
	case StrategyChroma:
		return ClampChroma(lc.LCh()).Lab().SRGB()
	case StrategyLightness:
		return ClampLightness(lc.LCh()).Lab().SRGB()
	case StrategyClosest:
		return s.Closest(lc)
	default:
		return Clip(lc)
	}
}
