package selector

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"okpal/okcolor"
	"okpal/parallel"
)

// OptimalResult is the outcome of Optimal.
type OptimalResult struct {
	Colors []okcolor.SRGB // the added colors, without the seeds
	// Score is the smallest distance between any two colors of seeds plus
	// Colors.
	Score      float64
	Candidates int
	Found      bool
}

type candidate struct {
	c    okcolor.SRGB
	lc   okcolor.Lab
	seed float64 // distance to the nearest seed
}

// Optimal searches every n-color subset of the grid for the one that
// maximizes the smallest pairwise distance together with seeds. Branches
// that cannot beat the best set found so far are pruned, and the first
// placement is spread over the workers. Among equal scores the
// lexicographically smallest set of grid indices wins.
//
// The work grows with the n-th power of the grid size, so it is only
// practical on coarse grids. Prefilter, MinSeedDistance and Hue apply to
// the candidates as in the greedy search, with hue measured against the
// seeds.
func Optimal(seeds []okcolor.SRGB, n int, opts Options) (OptimalResult, error) {
	if len(seeds) == 0 {
		return OptimalResult{}, ErrNoSeeds
	}
	if n < 1 {
		return OptimalResult{}, fmt.Errorf("invalid color count: %d", n)
	}
	s, err := New(seeds, opts)
	if err != nil {
		return OptimalResult{}, err
	}

	start := time.Now()
	threshold := s.Threshold()
	metric := opts.Metric
	var cands []candidate
	for c := range opts.Grid.All() {
		lc := c.Lab().Reference(opts.D65)
		if _, ok := s.score(c, lc, threshold); !ok {
			continue
		}
		d := math.Inf(1)
		for _, p := range s.labs {
			d = min(d, metric.Distance(lc, p))
		}
		cands = append(cands, candidate{c: c, lc: lc, seed: d})
	}

	res := OptimalResult{Candidates: len(cands)}
	log := opts.logger().With(slog.Int("n", n), slog.Int("candidates", len(cands)))
	if len(cands) < n {
		log.Debug("not enough candidates")
		return res, nil
	}

	base := MinDistance(s.palette, metric, opts.D65)
	best := parallel.NewMax(lessIndices)
	var visited atomic.Int64

	var place func(chosen []int, bound float64)
	place = func(chosen []int, bound float64) {
		visited.Add(1)
		if len(chosen) == n {
			best.Offer(bound, slices.Clone(chosen))
			return
		}
		last := len(cands) - (n - len(chosen))
		for i := chosen[len(chosen)-1] + 1; i <= last; i++ {
			d := min(bound, cands[i].seed)
			for _, j := range chosen {
				if d < best.Score() {
					break
				}
				d = min(d, metric.Distance(cands[i].lc, cands[j].lc))
			}
			// equal scores are still explored so the tie-break sees them
			if d < best.Score() {
				continue
			}
			place(append(chosen, i), d)
		}
	}

	pool := parallel.Start(opts.Workers)
	pool.Run(len(cands)-n+1, func(i int) {
		d := min(base, cands[i].seed)
		if d < best.Score() {
			return
		}
		chosen := make([]int, 1, n)
		chosen[0] = i
		place(chosen, d)
	})

	indices, score, ok := best.Load()
	if !ok {
		return res, nil
	}
	res.Found, res.Score = true, score
	for _, i := range indices {
		res.Colors = append(res.Colors, cands[i].c)
	}
	log.Debug("optimal search done",
		slog.Float64("score", score),
		slog.Int64("nodes", visited.Load()),
		slog.Duration("took", time.Since(start)))
	return res, nil
}

func lessIndices(a, b []int) bool {
	return slices.Compare(a, b) < 0
}
