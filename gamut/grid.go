package gamut

import (
	"fmt"
	"iter"

	"okpal/okcolor"
)

// Grid is a subsampling of the sRGB cube. Step s keeps the channel levels
// 0, s-1, 2s-1, ..., 255, so every grid includes the eight corners. Step 1
// (or 0) is the full 16,777,216 color gamut and step 256 only the corners.
type Grid struct {
	Step int
}

var (
	Full    = Grid{Step: 1}
	Corners = Grid{Step: 256}
)

func (g Grid) Validate() error {
	s := g.step()
	if s < 1 || s > 256 || 256%s != 0 {
		return fmt.Errorf("invalid grid step %d, should divide 256", g.Step)
	}
	return nil
}

func (g Grid) step() int {
	if g.Step == 0 {
		return 1
	}
	return g.Step
}

// Levels are the channel values of the grid, ascending.
func (g Grid) Levels() []uint8 {
	s := g.step()
	levels := []uint8{0}
	for v := s; v <= 256; v += s {
		if l := uint8(v - 1); l != levels[len(levels)-1] {
			levels = append(levels, l)
		}
	}
	return levels
}

func (g Grid) Len() int {
	n := len(g.Levels())
	return n * n * n
}

// All yields the grid colors in ascending Index order.
func (g Grid) All() iter.Seq[okcolor.SRGB] {
	levels := g.Levels()
	return func(yield func(okcolor.SRGB) bool) {
		for _, r := range levels {
			for _, gr := range levels {
				for _, b := range levels {
					if !yield(okcolor.SRGB{R: r, G: gr, B: b}) {
						return
					}
				}
			}
		}
	}
}

func (g Grid) String() string {
	return fmt.Sprintf("grid/%d (%d colors)", g.step(), g.Len())
}
