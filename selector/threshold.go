package selector

import (
	"math"
	"sync/atomic"

	"okpal/gamut"
	"okpal/okcolor"
)

const (
	// histogramRange bounds any distance between two sRGB colors under
	// either metric.
	histogramRange = 2.0
	histogramBins  = 1 << 21
)

// Threshold computes the prefilter statistic of the distances between ref
// and every color of the scan's grid, ref's own distance included.
func Threshold(ref okcolor.Lab, metric okcolor.Metric, p Prefilter, scan gamut.Scan) float64 {
	scan.D65 = ref.D65
	switch p {
	case PrefilterMean:
		return mean(ref, metric, scan, false)
	case PrefilterGeometricMean:
		return mean(ref, metric, scan, true)
	case PrefilterMedian:
		return median(ref, metric, scan)
	default:
		return 0
	}
}

// mean sums per plane and adds the planes afterwards. The geometric mean
// skips the zero distances, which would otherwise pin it to zero.
func mean(ref okcolor.Lab, metric okcolor.Metric, scan gamut.Scan, geometric bool) float64 {
	type acc struct {
		sum float64
		n   int
	}
	planes := make([]acc, scan.Planes())
	scan.Each(func(plane int, _ okcolor.SRGB, lc okcolor.Lab) {
		d := metric.Distance(ref, lc)
		if geometric {
			if d <= 0 {
				return
			}
			d = math.Log(d)
		}
		planes[plane].sum += d
		planes[plane].n++
	})

	var total acc
	for _, p := range planes {
		total.sum += p.sum
		total.n += p.n
	}
	if total.n == 0 {
		return 0
	}
	m := total.sum / float64(total.n)
	if geometric {
		return math.Exp(m)
	}
	return m
}

// median bins the distances into a fixed histogram and interpolates within
// the middle bin, accurate to about a millionth.
func median(ref okcolor.Lab, metric okcolor.Metric, scan gamut.Scan) float64 {
	bins := make([]atomic.Uint32, histogramBins)
	width := histogramRange / histogramBins
	scan.Each(func(_ int, _ okcolor.SRGB, lc okcolor.Lab) {
		i := int(metric.Distance(ref, lc) / width)
		bins[min(max(i, 0), histogramBins-1)].Add(1)
	})

	half := float64(scan.Grid.Len()) / 2
	seen := 0.0
	for i := range bins {
		n := float64(bins[i].Load())
		if n > 0 && seen+n >= half {
			return (float64(i) + (half-seen)/n) * width
		}
		seen += n
	}
	return histogramRange
}
