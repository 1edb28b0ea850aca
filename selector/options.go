package selector

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"okpal/gamut"
	"okpal/okcolor"
)

// Options configures a palette search. The zero value measures with ΔEab
// over the full gamut with no filters.
type Options struct {
	Metric okcolor.Metric
	// D65 measures every distance on D65 referenced lightness.
	D65 bool

	// Prefilter rejects candidates whose distance to the first seed is below
	// a statistic of the distances from that seed to the whole grid. It is
	// computed once, before the first pick.
	Prefilter Prefilter
	// MinSeedDistance rejects candidates closer than this to the first seed.
	MinSeedDistance float64
	Hue             HueFilter

	// Grid subsamples the candidates; the zero value is the full gamut.
	Grid    gamut.Grid
	Workers int

	Preview Preview
	Logger  *slog.Logger
}

func (o Options) Validate() error {
	if err := o.Grid.Validate(); err != nil {
		return err
	}
	if o.MinSeedDistance < 0 || math.IsNaN(o.MinSeedDistance) {
		return fmt.Errorf("invalid minimum seed distance: %g", o.MinSeedDistance)
	}
	if o.Hue.Mode != HueOff && !(o.Hue.Limit > 0) {
		return fmt.Errorf("hue filter %s needs a positive limit, got %g", o.Hue.Mode, o.Hue.Limit)
	}
	if o.Preview.Lightness < 0 || o.Preview.Chroma < 0 {
		return fmt.Errorf("invalid preview multipliers: %g, %g", o.Preview.Lightness, o.Preview.Chroma)
	}
	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Prefilter is the statistic used for the global seed threshold.
type Prefilter int

const (
	PrefilterNone Prefilter = iota
	PrefilterMean
	PrefilterGeometricMean
	PrefilterMedian
)

var prefilterNames = []string{
	PrefilterNone:          "none",
	PrefilterMean:          "mean",
	PrefilterGeometricMean: "geomean",
	PrefilterMedian:        "median",
}

func (p Prefilter) String() string {
	return enumString("Prefilter", prefilterNames, int(p))
}

func (p Prefilter) MarshalText() ([]byte, error) {
	return enumMarshal("prefilter", prefilterNames, int(p))
}

func (p *Prefilter) UnmarshalText(text []byte) error {
	i, err := enumUnmarshal("prefilter", prefilterNames, text)
	if err == nil {
		*p = Prefilter(i)
	}
	return err
}

// HueMode selects how hue separation is measured.
type HueMode int

const (
	HueOff HueMode = iota
	// HueAngle compares circular hue angles, in radians.
	HueAngle
	// HueDeltaH compares |ΔH|, the hue contribution to the color difference.
	HueDeltaH
	// HueRelative compares |ΔH| divided by the chroma of the palette color.
	HueRelative
)

var hueModeNames = []string{
	HueOff:      "off",
	HueAngle:    "angle",
	HueDeltaH:   "deltah",
	HueRelative: "relative",
}

func (m HueMode) String() string {
	return enumString("HueMode", hueModeNames, int(m))
}

func (m HueMode) MarshalText() ([]byte, error) {
	return enumMarshal("hue mode", hueModeNames, int(m))
}

func (m *HueMode) UnmarshalText(text []byte) error {
	i, err := enumUnmarshal("hue mode", hueModeNames, text)
	if err == nil {
		*m = HueMode(i)
	}
	return err
}

// HueFilter rejects a candidate whose hue is closer than Limit to any
// chromatic palette color. Achromatic candidates always pass.
type HueFilter struct {
	Mode  HueMode
	Limit float64
	// Spread divides Limit by one plus the number of chromatic palette
	// colors, so the limit tightens as the palette grows.
	Spread bool
}

// separated reports whether lc keeps the required hue distance from every
// chromatic color in palette.
func (h HueFilter) separated(lc okcolor.Lab, palette []okcolor.Lab) bool {
	if h.Mode == HueOff || lc.Chroma() < okcolor.Eps {
		return true
	}

	limit := h.Limit
	if h.Spread {
		n := 1
		for _, p := range palette {
			if p.Chroma() >= okcolor.Eps {
				n++
			}
		}
		limit /= float64(n)
	}

	for _, p := range palette {
		if p.Chroma() < okcolor.Eps {
			continue
		}

		var d float64
		switch h.Mode {
		case HueAngle:
			d, _ = okcolor.HueDistance(lc, p)
		case HueDeltaH:
			d = math.Abs(okcolor.DeltaH(lc, p))
		case HueRelative:
			d, _ = okcolor.DeltaHRelative(p, lc)
		}
		if d < limit {
			return false
		}
	}
	return true
}

// Preview derives a darker, duller companion of each picked color:
// lightness and chroma are scaled and the result mapped with Strategy.
// A zero Lightness disables previews.
type Preview struct {
	Lightness float64
	Chroma    float64
	Strategy  gamut.Strategy
}

func (p Preview) enabled() bool {
	return p.Lightness > 0
}

func (p Preview) of(c okcolor.SRGB, search gamut.Search) okcolor.SRGB {
	lc := c.Lab()
	lc.L *= p.Lightness
	lc.A *= p.Chroma
	lc.B *= p.Chroma
	return search.Map(lc, p.Strategy)
}

func enumString(kind string, names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, i)
	}
	return names[i]
}

func enumMarshal(kind string, names []string, i int) ([]byte, error) {
	if i < 0 || i >= len(names) {
		return nil, fmt.Errorf("unknown %s: %d", kind, i)
	}
	return []byte(names[i]), nil
}

func enumUnmarshal(kind string, names []string, text []byte) (int, error) {
	s := strings.ToLower(string(text))
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q, should be one of %s", kind, s, strings.Join(names, ", "))
}
