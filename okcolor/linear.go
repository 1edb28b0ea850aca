package okcolor

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// SRGB is an 8-bit gamma encoded sRGB color.
type SRGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	Black = SRGB{}
	White = SRGB{R: 0xff, G: 0xff, B: 0xff}
)

var SRGBModel = color.ModelFunc(srgbConvert)

func srgbConvert(c color.Color) color.Color {
	if _, ok := c.(SRGB); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return SRGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

func (c SRGB) RGBA() (uint32, uint32, uint32, uint32) {
	r, g, b := uint32(c.R), uint32(c.G), uint32(c.B)
	return r | r<<8, g | g<<8, b | b<<8, 0xffff
}

func (c SRGB) Linear() LinearRGB {
	return LinearRGB{
		R: linearLUT[c.R],
		G: linearLUT[c.G],
		B: linearLUT[c.B],
	}
}

func (c SRGB) Lab() Lab {
	return c.Linear().Lab()
}

func (c SRGB) LCh() LCh {
	return c.Linear().Lab().LCh()
}

// Index packs the color as 0xRRGGBB. Ordering by Index is the lexicographic
// (r, g, b) order.
func (c SRGB) Index() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func FromIndex(i uint32) SRGB {
	return SRGB{R: uint8(i >> 16), G: uint8(i >> 8), B: uint8(i)}
}

func (c SRGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c SRGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *SRGB) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var ErrInvalidHex = errors.New("invalid color, should be #RGB or #RRGGBB")

// ParseHex reads #RGB or #RRGGBB. The leading '#' is optional.
func ParseHex(s string) (SRGB, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}

	var c SRGB
	switch len(s) {
	case 3:
		n, err := fmt.Sscanf(s, "%1x%1x%1x", &c.R, &c.G, &c.B)
		if err != nil {
			return SRGB{}, fmt.Errorf("could not read color %q: %w", s, errors.Join(ErrInvalidHex, err))
		} else if n < 3 {
			return SRGB{}, fmt.Errorf("insufficient color fields in %q: %d: %w", s, n, ErrInvalidHex)
		}

		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
	case 6:
		n, err := fmt.Sscanf(s, "%2x%2x%2x", &c.R, &c.G, &c.B)
		if err != nil {
			return SRGB{}, fmt.Errorf("could not read color %q: %w", s, errors.Join(ErrInvalidHex, err))
		} else if n < 3 {
			return SRGB{}, fmt.Errorf("insufficient color fields in %q: %d: %w", s, n, ErrInvalidHex)
		}
	default:
		return SRGB{}, fmt.Errorf("%q: %w", s, ErrInvalidHex)
	}

	return c, nil
}

// LinearRGB is gamma decoded RGB. Channels are in [0, 1] when derived from an
// SRGB value but may leave that range after arithmetic.
type LinearRGB struct {
	R float64
	G float64
	B float64
}

var LinearRGBModel = color.ModelFunc(linearRGBConvert)

func linearRGBConvert(c color.Color) color.Color {
	if _, ok := c.(LinearRGB); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return LinearRGB{
		R: toLinear(float64(r) / 0xffff),
		G: toLinear(float64(g) / 0xffff),
		B: toLinear(float64(b) / 0xffff),
	}
}

// RGBA clips channels into the cube. Use the gamut package for anything
// better than a plain clip.
func (lc LinearRGB) RGBA() (uint32, uint32, uint32, uint32) {
	return lc.SRGB().RGBA()
}

// SRGB gamma encodes, rounds and clamps each channel. The clamp is a lossy
// per-channel clip, not a gamut mapping.
func (lc LinearRGB) SRGB() SRGB {
	return SRGB{
		R: encode(lc.R),
		G: encode(lc.G),
		B: encode(lc.B),
	}
}

func (lc LinearRGB) Clamp() LinearRGB {
	return LinearRGB{
		R: clamp(lc.R, 0, 1),
		G: clamp(lc.G, 0, 1),
		B: clamp(lc.B, 0, 1),
	}
}

// InGamut reports whether every channel lies in [-tol, 1+tol].
func (lc LinearRGB) InGamut(tol float64) bool {
	return lc.Min() >= -tol && lc.Max() <= 1+tol
}

func (lc LinearRGB) Min() float64 {
	return min(lc.R, lc.G, lc.B)
}

func (lc LinearRGB) Max() float64 {
	return max(lc.R, lc.G, lc.B)
}

func (lc LinearRGB) String() string {
	return fmt.Sprintf("LinearRGB(%g, %g, %g)", lc.R, lc.G, lc.B)
}

var linearLUT = func() (lut [256]float64) {
	for i := range lut {
		lut[i] = toLinear(float64(i) / 255)
	}
	return lut
}()

func toLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	} else {
		return x / 12.92
	}
}

const pow float64 = 1.0 / 2.4

func fromLinear(x float64) float64 {
	if x >= 0.0031308 {
		return math.Pow(x, pow)*1.055 - 0.055
	} else {
		return x * 12.92
	}
}

func encode(x float64) uint8 {
	v := math.Round(fromLinear(x) * 255)
	// NaN falls through both comparisons and ends up as 0
	if !(v > 0) {
		return 0
	} else if v > 255 {
		return 255
	}
	return uint8(v)
}
