// based on:
// https://bottosson.github.io/posts/oklab/
// https://bottosson.github.io/posts/colorpicker/#intermission---a-new-lightness-estimate-for-oklab

package okcolor

import (
	"fmt"
	"image/color"
	"math"
)

type Lab struct {
	L   float64 // perceived lightness
	A   float64 // how green/red the color is
	B   float64 // how blue/yellow the color is
	D65 bool    // L is the D65 referenced lightness estimate
}

var (
	LabBlack = Lab{}
	LabWhite = Lab{L: 1}
)

var LabModel = color.ModelFunc(labConvert)

func labConvert(c color.Color) color.Color {
	switch lc := c.(type) {
	case Lab:
		return c
	case LCh:
		return lc.Lab()
	case SRGB:
		return lc.Lab()
	}

	return linearRGBConvert(c).(LinearRGB).Lab()
}

func (lc LinearRGB) Lab() Lab {
	l := math.Cbrt(0.4122214708*lc.R + 0.5363325363*lc.G + 0.0514459929*lc.B)
	m := math.Cbrt(0.2119034982*lc.R + 0.6806995451*lc.G + 0.1073969566*lc.B)
	s := math.Cbrt(0.0883024619*lc.R + 0.2817188376*lc.G + 0.6299787005*lc.B)

	return Lab{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}

// RGBA maps out of gamut values with the adaptive L0 = 0.5 clipper.
func (lc Lab) RGBA() (uint32, uint32, uint32, uint32) {
	return lc.ClippedLinear(ClipAdaptive05(0.05)).RGBA()
}

// Linear converts to linear light, un-referencing a D65 lightness first.
func (lc Lab) Linear() LinearRGB {
	lc = lc.ToUnreferenced()

	l := lc.L + 0.3963377774*lc.A + 0.2158037573*lc.B
	l = l * l * l
	m := lc.L - 0.1055613458*lc.A - 0.0638541728*lc.B
	m = m * m * m
	s := lc.L - 0.0894841775*lc.A - 1.2914855480*lc.B
	s = s * s * s

	return LinearRGB{
		R: +4.0767416621*l - 3.3077115913*m + 0.2309699292*s,
		G: -1.2684380046*l + 2.6097574011*m - 0.3413193965*s,
		B: -0.0041960863*l - 0.7034186147*m + 1.7076147010*s,
	}
}

// ClippedLinear converts to linear light and, when the result leaves the unit
// cube, retries with clipFunc applied. A nil clipFunc disables clipping.
func (lc Lab) ClippedLinear(clipFunc Clipper) LinearRGB {
	rgb := lc.Linear()
	if clipFunc != nil && !rgb.InGamut(0) {
		return clipFunc(lc).Linear()
	}
	return rgb
}

// SRGB is the plain per-channel clip. See the gamut package for better
// mappings.
func (lc Lab) SRGB() SRGB {
	return lc.Linear().SRGB()
}

func (lc Lab) LCh() LCh {
	return LCh{
		L:   lc.L,
		C:   lc.Chroma(),
		H:   lc.Hue(),
		D65: lc.D65,
	}
}

const (
	k1 = 0.206
	k2 = 0.03
	k3 = (1 + k1) / (1 + k2)
)

// ToD65 replaces L with the D65 referenced lightness estimate (the "toe").
func (lc Lab) ToD65() Lab {
	if lc.D65 {
		return lc
	}
	x := k3*lc.L - k1
	lc.L = 0.5 * (x + math.Sqrt(x*x+4*k2*k3*lc.L))
	lc.D65 = true
	return lc
}

// ToUnreferenced undoes ToD65.
func (lc Lab) ToUnreferenced() Lab {
	if !lc.D65 {
		return lc
	}
	lc.L = (lc.L*lc.L + k1*lc.L) / (k3 * (lc.L + k2))
	lc.D65 = false
	return lc
}

// Reference converts lc to the requested lightness definition.
func (lc Lab) Reference(d65 bool) Lab {
	if d65 {
		return lc.ToD65()
	}
	return lc.ToUnreferenced()
}

// Mix is the linear average of both colors, in lc's reference.
func (lc Lab) Mix(other Lab) Lab {
	other = other.Reference(lc.D65)
	return Lab{
		L:   (lc.L + other.L) / 2,
		A:   (lc.A + other.A) / 2,
		B:   (lc.B + other.B) / 2,
		D65: lc.D65,
	}
}

func (lc Lab) String() string {
	return fmt.Sprintf("Lab(%g, %g, %g)", lc.L, lc.A, lc.B)
}

type LCh struct {
	L   float64 // perceived lightness
	C   float64 // chroma
	H   float64 // hue, radians in (-pi, pi]
	D65 bool    // L is the D65 referenced lightness estimate
}

var LChModel = color.ModelFunc(lchConvert)

func lchConvert(c color.Color) color.Color {
	switch lc := c.(type) {
	case LCh:
		return c
	case Lab:
		return lc.LCh()
	}

	return labConvert(c).(Lab).LCh()
}

func (lc LCh) RGBA() (uint32, uint32, uint32, uint32) {
	return lc.Lab().RGBA()
}

func (lc LCh) Linear() LinearRGB {
	return lc.Lab().Linear()
}

func (lc LCh) Lab() Lab {
	return Lab{
		L:   lc.L,
		A:   lc.C * math.Cos(lc.H),
		B:   lc.C * math.Sin(lc.H),
		D65: lc.D65,
	}
}

// Mix averages lightness and chroma and follows the shorter arc between the
// two hues.
func (lc LCh) Mix(other LCh) LCh {
	if other.D65 != lc.D65 {
		other = other.Lab().Reference(lc.D65).LCh()
	}
	h := (lc.H + other.H) / 2
	if math.Abs(lc.H-other.H) > math.Pi {
		h += math.Pi
	}
	return LCh{
		L:   (lc.L + other.L) / 2,
		C:   (lc.C + other.C) / 2,
		H:   normalizeHue(h),
		D65: lc.D65,
	}
}

func (lc LCh) String() string {
	return fmt.Sprintf("LCh(%g, %g, %g)", lc.L, lc.C, lc.H)
}

// normalizeHue wraps h into (-pi, pi].
func normalizeHue(h float64) float64 {
	h = math.Remainder(h, 2*math.Pi)
	if h <= -math.Pi {
		h += 2 * math.Pi
	}
	return h
}
