// Package selector grows palettes by greedy maximin selection: every step
// adds the color whose distance to the nearest palette color is largest.
package selector

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"okpal/gamut"
	"okpal/okcolor"
)

// UntilExhausted makes Run continue until no candidate is left.
const UntilExhausted = -1

var ErrNoSeeds = errors.New("at least one seed color is required")

// Step is one color added by the selector.
type Step struct {
	Index int // position in the palette, seeds included
	Color okcolor.SRGB
	// Score is the distance from Color to the nearest earlier palette color.
	Score      float64
	Preview    okcolor.SRGB
	HasPreview bool
}

func (s Step) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("index", s.Index),
		slog.String("color", s.Color.String()),
		slog.Float64("score", s.Score),
	}
	if s.HasPreview {
		attrs = append(attrs, slog.String("preview", s.Preview.String()))
	}
	return slog.GroupValue(attrs...)
}

// Result is the outcome of Run.
type Result struct {
	Palette   []okcolor.SRGB
	Steps     []Step
	Threshold float64
	// Exhausted is set when the run stopped because every candidate was
	// excluded before reaching the requested count.
	Exhausted bool
}

// Selector holds a growing palette. It is not safe for concurrent use; the
// scan behind each step is parallel.
type Selector struct {
	opts    Options
	log     *slog.Logger
	scan    gamut.Scan
	search  gamut.Search
	palette []okcolor.SRGB
	labs    []okcolor.Lab
	member  map[okcolor.SRGB]struct{}

	threshold     float64
	haveThreshold bool
}

// New starts a palette from seeds. Duplicate seeds are kept once.
func New(seeds []okcolor.SRGB, opts Options) (*Selector, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Selector{
		opts:   opts,
		log:    opts.logger(),
		scan:   gamut.Scan{Grid: opts.Grid, Workers: opts.Workers, D65: opts.D65},
		search: gamut.Search{Metric: opts.Metric, Workers: opts.Workers},
		member: make(map[okcolor.SRGB]struct{}, len(seeds)),
	}
	for _, c := range seeds {
		s.add(c)
	}
	if opts.Prefilter == PrefilterNone {
		s.haveThreshold = true
	}
	return s, nil
}

func (s *Selector) add(c okcolor.SRGB) bool {
	if _, ok := s.member[c]; ok {
		return false
	}
	s.member[c] = struct{}{}
	s.palette = append(s.palette, c)
	s.labs = append(s.labs, c.Lab().Reference(s.opts.D65))
	return true
}

// Palette returns a copy of the current palette, seeds first.
func (s *Selector) Palette() []okcolor.SRGB {
	return slices.Clone(s.palette)
}

// Threshold returns the prefilter threshold, computing it on first use.
func (s *Selector) Threshold() float64 {
	if !s.haveThreshold {
		start := time.Now()
		s.threshold = Threshold(s.labs[0], s.opts.Metric, s.opts.Prefilter, s.scan)
		s.haveThreshold = true
		s.log.Debug("computed prefilter threshold",
			slog.String("prefilter", s.opts.Prefilter.String()),
			slog.String("seed", s.palette[0].String()),
			slog.Float64("threshold", s.threshold),
			slog.Duration("took", time.Since(start)))
	}
	return s.threshold
}

// score rates lc as the next palette color: the distance to the nearest
// palette color. ok is false when a filter excludes it.
func (s *Selector) score(c okcolor.SRGB, lc okcolor.Lab, threshold float64) (float64, bool) {
	if _, ok := s.member[c]; ok {
		return 0, false
	}

	metric := s.opts.Metric
	seed := metric.Distance(s.labs[0], lc)
	if seed < threshold || seed < s.opts.MinSeedDistance {
		return 0, false
	}
	if !s.opts.Hue.separated(lc, s.labs) {
		return 0, false
	}

	nearest := seed
	for _, p := range s.labs[1:] {
		nearest = min(nearest, metric.Distance(lc, p))
	}
	return nearest, true
}

// Next adds one color. It returns false, leaving the palette unchanged, when
// no candidate is left.
func (s *Selector) Next() (Step, bool) {
	threshold := s.Threshold()

	start := time.Now()
	c, score, ok := s.scan.Max(func(c okcolor.SRGB, lc okcolor.Lab) (float64, bool) {
		return s.score(c, lc, threshold)
	})
	if !ok {
		s.log.Debug("no candidates left", slog.Int("palette", len(s.palette)))
		return Step{}, false
	}

	s.add(c)
	step := Step{Index: len(s.palette) - 1, Color: c, Score: score}
	if s.opts.Preview.enabled() {
		step.Preview = s.opts.Preview.of(c, s.search)
		step.HasPreview = true
	}
	s.log.Debug("picked color", slog.Any("step", step), slog.Duration("took", time.Since(start)))
	return step, true
}

// Run adds count colors, or keeps going until exhaustion when count is
// UntilExhausted. Each step is also passed to onStep if it is not nil.
func (s *Selector) Run(count int, onStep func(Step)) (Result, error) {
	if count < 0 && count != UntilExhausted {
		return Result{}, fmt.Errorf("invalid color count: %d", count)
	}

	var res Result
	for i := 0; count == UntilExhausted || i < count; i++ {
		step, ok := s.Next()
		if !ok {
			res.Exhausted = count != UntilExhausted
			break
		}
		res.Steps = append(res.Steps, step)
		if onStep != nil {
			onStep(step)
		}
	}
	res.Palette = s.Palette()
	res.Threshold = s.Threshold()
	return res, nil
}

// MinDistance is the smallest distance between any two colors, or +Inf for
// fewer than two.
func MinDistance(colors []okcolor.SRGB, metric okcolor.Metric, d65 bool) float64 {
	labs := make([]okcolor.Lab, len(colors))
	for i, c := range colors {
		labs[i] = c.Lab().Reference(d65)
	}
	d := math.Inf(1)
	for i := range labs {
		for j := i + 1; j < len(labs); j++ {
			d = min(d, metric.Distance(labs[i], labs[j]))
		}
	}
	return d
}
