package gamut

import (
	"okpal/okcolor"
	"okpal/parallel"
)

// Scan fans a computation out over every color of a grid. Work is split into
// red planes, one pool job each.
type Scan struct {
	Grid    Grid
	Workers int
	D65     bool // hand D65 referenced Lab values to the callbacks
}

// Scorer rates one candidate. Returning false excludes it.
type Scorer func(c okcolor.SRGB, lc okcolor.Lab) (float64, bool)

func (s Scan) Planes() int {
	return len(s.Grid.Levels())
}

// Each calls visit for every grid color. Calls for one plane run in order on
// a single goroutine; different planes run concurrently.
func (s Scan) Each(visit func(plane int, c okcolor.SRGB, lc okcolor.Lab)) {
	s.run(visit, nil)
}

// run is Each with done called on the plane's goroutine once it is finished.
func (s Scan) run(visit func(plane int, c okcolor.SRGB, lc okcolor.Lab), done func(plane int)) {
	levels := s.Grid.Levels()
	pool := parallel.Start(s.Workers)
	pool.Run(len(levels), func(plane int) {
		c := okcolor.SRGB{R: levels[plane]}
		for _, g := range levels {
			c.G = g
			for _, b := range levels {
				c.B = b
				visit(plane, c, c.Lab().Reference(s.D65))
			}
		}
		if done != nil {
			done(plane)
		}
	})
}

// Max returns the highest scoring color. Among equal scores the lowest Index
// wins, so the result does not depend on scheduling. ok is false when every
// candidate was excluded.
func (s Scan) Max(score Scorer) (c okcolor.SRGB, best float64, ok bool) {
	return s.reduce(parallel.NewMax(lowerIndex), score)
}

// Min is Max for the lowest score.
func (s Scan) Min(score Scorer) (c okcolor.SRGB, best float64, ok bool) {
	return s.reduce(parallel.NewMin(lowerIndex), score)
}

func (s Scan) reduce(shared *parallel.Best[okcolor.SRGB], score Scorer) (okcolor.SRGB, float64, bool) {
	locals := make([]parallel.Local[okcolor.SRGB], s.Planes())
	s.run(func(plane int, c okcolor.SRGB, lc okcolor.Lab) {
		if v, ok := score(c, lc); ok {
			locals[plane].Consider(shared, v, c)
		}
	}, func(plane int) {
		locals[plane].Merge(shared)
	})
	return shared.Load()
}

func lowerIndex(a, b okcolor.SRGB) bool {
	return a.Index() < b.Index()
}
