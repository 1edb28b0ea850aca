// Package palette stores, loads and renders finished palettes.
package palette

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"slices"
	"strings"

	"okpal/okcolor"
)

// Set is an ordered list of sRGB colors.
type Set []okcolor.SRGB

// FromPalette converts any color.Palette, dropping alpha.
func FromPalette(p color.Palette) Set {
	s := make(Set, len(p))
	for i, c := range p {
		s[i] = okcolor.SRGBModel.Convert(c).(okcolor.SRGB)
	}
	return s
}

// Palette returns s as a color.Palette, usable with image.Paletted.
func (s Set) Palette() color.Palette {
	p := make(color.Palette, len(s))
	for i, c := range s {
		p[i] = c
	}
	return p
}

// Labs converts every color to Oklab.
func (s Set) Labs(d65 bool) []okcolor.Lab {
	labs := make([]okcolor.Lab, len(s))
	for i, c := range s {
		labs[i] = c.Lab().Reference(d65)
	}
	return labs
}

// Index returns the position of the color nearest to c under metric, or -1
// for an empty set.
func (s Set) Index(c color.Color, metric okcolor.Metric) int {
	lc := okcolor.LabModel.Convert(c).(okcolor.Lab)
	ret, best := -1, math.Inf(1)
	for i, v := range s {
		d := metric.Distance(lc, v.Lab())
		if d < best {
			if d == 0 {
				return i
			}
			ret, best = i, d
		}
	}
	return ret
}

// Model maps colors to their nearest member of s, measured perceptually
// rather than in RGB as color.Palette does.
func (s Set) Model(metric okcolor.Metric) color.Model {
	return color.ModelFunc(func(c color.Color) color.Color {
		if i := s.Index(c, metric); i >= 0 {
			return s[i]
		}
		return c
	})
}

// Contains reports whether c is a member of s.
func (s Set) Contains(c okcolor.SRGB) bool {
	return slices.Contains(s, c)
}

// FromImage collects the distinct opaque colors of img in row-major order of
// first appearance. It fails once more than limit colors were found.
func FromImage(img image.Image, limit int) (Set, error) {
	var s Set
	seen := make(map[okcolor.SRGB]struct{})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.At(x, y)
			if _, _, _, a := px.RGBA(); a == 0 {
				continue
			}
			c := okcolor.SRGBModel.Convert(px).(okcolor.SRGB)
			if _, ok := seen[c]; ok {
				continue
			}
			if len(s) == limit {
				return nil, fmt.Errorf("image has more than %d colors", limit)
			}
			seen[c] = struct{}{}
			s = append(s, c)
		}
	}
	return s, nil
}

// ReadHex reads one color per line. Blank lines and lines starting with
// ';' or "//" are skipped.
func ReadHex(r io.Reader) (Set, error) {
	var s Set
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "//") {
			continue
		}
		c, err := okcolor.ParseHex(text)
		if err != nil {
			return s, fmt.Errorf("line %d: %w", line, err)
		}
		s = append(s, c)
	}
	if err := sc.Err(); err != nil {
		return s, fmt.Errorf("could not read colors: %w", err)
	}
	return s, nil
}

// WriteHex writes one #rrggbb color per line.
func (s Set) WriteHex(w io.Writer) (int64, error) {
	var count int64
	for i, c := range s {
		n, err := fmt.Fprintln(w, c)
		count += int64(n)
		if err != nil {
			return count, fmt.Errorf("could not write color %d/%d: %w", i, len(s), err)
		}
	}
	return count, nil
}
