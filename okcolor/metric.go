package okcolor

import (
	"fmt"
	"math"
	"strings"
)

// Eps is the chroma below which a color is treated as achromatic and its hue
// as undefined.
const Eps = 0.00001

// Chroma is the colorfulness against a gray of the same lightness.
func (lc Lab) Chroma() float64 {
	return math.Hypot(lc.A, lc.B)
}

// Hue is the angle in (-pi, pi] from the positive a (red) axis. It carries no
// meaning once Chroma is below Eps, and is 0 when a and b are both zero.
func (lc Lab) Hue() float64 {
	if lc.A == 0 && lc.B == 0 {
		return 0
	}
	return normalizeHue(math.Atan2(lc.B, lc.A))
}

// Saturation is chroma relative to the total color sensation, taken as the
// DeltaEab distance to black. It is NaN for black.
func (lc Lab) Saturation() float64 {
	return lc.Chroma() / DeltaEab(lc, LabBlack)
}

// SaturationHyab is Saturation measured with DeltaEHyab. It is NaN for black.
func (lc Lab) SaturationHyab() float64 {
	return lc.Chroma() / DeltaEHyab(lc, LabBlack)
}

// DeltaEab is the Euclidean distance. Black against white gives the largest
// value in the sRGB gamut, 1.0.
func DeltaEab(x, y Lab) float64 {
	y = y.Reference(x.D65)
	dL, da, db := x.L-y.L, x.A-y.A, x.B-y.B
	return math.Sqrt(dL*dL + da*da + db*db)
}

// DeltaEHyab is the hybrid |dL| + hypot(da, db) distance. It weighs
// lightness more than DeltaEab: black against yellow (~1.179) beats black
// against white (1.0).
func DeltaEHyab(x, y Lab) float64 {
	y = y.Reference(x.D65)
	return math.Abs(x.L-y.L) + math.Hypot(x.A-y.A, x.B-y.B)
}

// DeltaC is the difference of chroma magnitudes, not the distance between
// the (a, b) pairs.
func DeltaC(x, y Lab) float64 {
	return x.Chroma() - y.Chroma()
}

// DeltaH is the signed hue contribution to the color difference. Its sign
// follows the hue difference from y to x.
func DeltaH(x, y Lab) float64 {
	da, db, dC := x.A-y.A, x.B-y.B, DeltaC(x, y)
	// rounding makes the operand slightly negative when chroma is nearly equal
	h := math.Sqrt(math.Abs(da*da + db*db - dC*dC))
	if normalizeHue(x.Hue()-y.Hue()) < 0 {
		return -h
	}
	return h
}

// DeltaHRelative is |DeltaH| scaled by the chroma of the reference color.
// It reports false when ref is achromatic and the ratio is meaningless.
func DeltaHRelative(ref, sample Lab) (float64, bool) {
	c := ref.Chroma()
	if c < Eps {
		return 0, false
	}
	return math.Abs(DeltaH(sample, ref)) / c, true
}

// HueDistance is the circular hue angle difference in [0, pi]. It reports
// false when either color is achromatic.
func HueDistance(x, y Lab) (float64, bool) {
	if x.Chroma() < Eps || y.Chroma() < Eps {
		return 0, false
	}
	return math.Abs(normalizeHue(x.Hue() - y.Hue())), true
}

// Metric selects the distance used to compare colors.
type Metric int

const (
	MetricEab Metric = iota
	MetricHyab
)

var metricNames = map[Metric]string{
	MetricEab:  "eab",
	MetricHyab: "hyab",
}

func (m Metric) Distance(x, y Lab) float64 {
	if m == MetricHyab {
		return DeltaEHyab(x, y)
	}
	return DeltaEab(x, y)
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

func (m Metric) MarshalText() ([]byte, error) {
	if _, ok := metricNames[m]; !ok {
		return nil, fmt.Errorf("unknown metric: %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for k, v := range metricNames {
		if v == s {
			*m = k
			return nil
		}
	}
	return fmt.Errorf("unknown metric %q, should be eab or hyab", s)
}
