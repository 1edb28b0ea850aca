package gamut

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"okpal/okcolor"
)

func TestGridLevels(t *testing.T) {
	tests := []struct {
		step int
		want []uint8
	}{
		{256, []uint8{0, 255}},
		{128, []uint8{0, 127, 255}},
		{32, []uint8{0, 31, 63, 95, 127, 159, 191, 223, 255}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Grid{Step: tt.step}.Levels()); diff != "" {
			t.Errorf("step %d (-want +got):\n%s", tt.step, diff)
		}
	}

	full := Full.Levels()
	if len(full) != 256 || full[0] != 0 || full[255] != 255 {
		t.Errorf("full grid has %d levels", len(full))
	}
	if (Grid{}).Len() != 1<<24 {
		t.Errorf("zero grid should be the full gamut, has %d colors", Grid{}.Len())
	}
}

func TestGridValidate(t *testing.T) {
	for _, step := range []int{0, 1, 2, 64, 256} {
		if err := (Grid{Step: step}).Validate(); err != nil {
			t.Errorf("step %d: %v", step, err)
		}
	}
	for _, step := range []int{-1, 3, 100, 512} {
		if err := (Grid{Step: step}).Validate(); err == nil {
			t.Errorf("step %d should be rejected", step)
		}
	}
}

func TestGridAll(t *testing.T) {
	g := Grid{Step: 16}
	n := 0
	var last okcolor.SRGB
	for c := range g.All() {
		if n > 0 && c.Index() <= last.Index() {
			t.Fatalf("%s after %s is not ascending", c, last)
		}
		last = c
		n++
	}
	if n != g.Len() || last != okcolor.White {
		t.Errorf("visited %d of %d colors, last %s", n, g.Len(), last)
	}
}

func TestScanEachVisitsOnce(t *testing.T) {
	scan := Scan{Grid: Grid{Step: 8}, Workers: 4}
	var mu sync.Mutex
	seen := map[okcolor.SRGB]int{}
	var mismatched atomic.Int32
	scan.Each(func(_ int, c okcolor.SRGB, lc okcolor.Lab) {
		if lc != c.Lab() {
			mismatched.Add(1)
		}
		mu.Lock()
		seen[c]++
		mu.Unlock()
	})
	if mismatched.Load() > 0 {
		t.Errorf("%d colors were handed the wrong Lab value", mismatched.Load())
	}
	n := 0
	for c := range scan.Grid.All() {
		if seen[c] != 1 {
			t.Fatalf("%s visited %d times", c, seen[c])
		}
		n++
	}
	if n != scan.Grid.Len() {
		t.Errorf("grid has %d colors", n)
	}
}

func TestScanTieBreak(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		scan := Scan{Grid: Grid{Step: 32}, Workers: workers}
		c, score, ok := scan.Max(func(c okcolor.SRGB, _ okcolor.Lab) (float64, bool) {
			return 1, c.R > 100
		})
		if !ok || score != 1 || c != (okcolor.SRGB{R: 127}) {
			t.Errorf("%d workers: got %s (%g, %v)", workers, c, score, ok)
		}
	}
}

func TestScanNoCandidates(t *testing.T) {
	scan := Scan{Grid: Grid{Step: 64}}
	if _, _, ok := scan.Min(func(okcolor.SRGB, okcolor.Lab) (float64, bool) { return 0, false }); ok {
		t.Error("expected no result when every candidate is excluded")
	}
}

func TestScanD65(t *testing.T) {
	scan := Scan{Grid: Corners, Workers: 1, D65: true}
	scan.Each(func(_ int, _ okcolor.SRGB, lc okcolor.Lab) {
		if !lc.D65 {
			t.Fatal("expected D65 referenced values")
		}
	})
}

func TestClampChroma(t *testing.T) {
	for _, L := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		for h := -3.1; h < math.Pi; h += 0.2 {
			in := okcolor.LCh{L: L, C: 0.4, H: h}
			got := ClampChroma(in)
			rgb := got.Linear()
			if rgb.Min() < -Tolerance || rgb.Max() > 1+Tolerance {
				t.Fatalf("%s: clamped to %s, linear %s", in, got, rgb)
			}
			if got.L != in.L || got.H != in.H || got.C > in.C {
				t.Fatalf("%s: clamped to %s", in, got)
			}
			// the search stops at the boundary
			if over := (okcolor.LCh{L: L, C: got.C + 1e-4, H: h}); InGamut(over.Lab()) {
				t.Errorf("%s: %s is not the largest in gamut chroma", in, got)
			}
		}
	}

	in := okcolor.LCh{L: 0.5, C: 0.05, H: 1}
	if got := ClampChroma(in); got != in {
		t.Errorf("in gamut color changed to %s", got)
	}
	if got := ClampChroma(okcolor.LCh{L: 1.4, C: 0.3, H: 1}); !InGamut(got.Lab()) || got.L != 1 {
		t.Errorf("too light color clamped to %s", got)
	}
}

func TestClampLightness(t *testing.T) {
	got := ClampLightness(okcolor.LCh{L: 1.3})
	if !InGamut(got.Lab()) || math.Abs(got.L-1) > 1e-3 {
		t.Errorf("bright gray clamped to %s", got)
	}

	in := okcolor.LCh{L: 1.05, C: 0.05, H: 2}
	got = ClampLightness(in)
	if !InGamut(got.Lab()) || got.L >= in.L || got.C != in.C {
		t.Errorf("%s clamped to %s", in, got)
	}

	// too much chroma for any lightness falls back to the chroma clamp
	in = okcolor.LCh{L: 0.5, C: 0.45, H: 2}
	if got = ClampLightness(in); !InGamut(got.Lab()) {
		t.Errorf("%s clamped to %s, linear %s", in, got, got.Linear())
	}
}

func TestMaximizeChroma(t *testing.T) {
	magenta := okcolor.SRGB{R: 255, B: 255}.LCh()
	got := MaximizeChroma(okcolor.LCh{L: magenta.L, H: magenta.H})
	if !InGamut(got.Lab()) || got.C < magenta.C-1e-6 || got.C > magenta.C+5e-3 {
		t.Errorf("most colorful at magenta's lightness: %s, magenta is %s", got, magenta)
	}
	if got := MaximizeChroma(okcolor.LCh{L: 1, H: 1}); got.C > 1e-2 {
		t.Errorf("white has no room for chroma: %s", got)
	}
}

func TestMaximizeLightness(t *testing.T) {
	if got := MaximizeLightness(okcolor.LCh{}); math.Abs(got.L-1) > 1e-3 {
		t.Errorf("lightest gray: %s", got)
	}

	yellow := okcolor.SRGB{R: 255, G: 255}.LCh()
	got := MaximizeLightness(okcolor.LCh{C: yellow.C, H: yellow.H})
	if !InGamut(got.Lab()) || math.Abs(got.L-yellow.L) > 2e-3 {
		t.Errorf("lightest at yellow's chroma: %s, yellow is %s", got, yellow)
	}
}

func TestClosestEarlyExit(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	search := Search{Metric: okcolor.MetricHyab}
	for range 200 {
		c := okcolor.SRGB{R: uint8(rng.UintN(256)), G: uint8(rng.UintN(256)), B: uint8(rng.UintN(256))}
		lc := c.Lab()
		if got := search.Closest(lc); got != lc.SRGB() || got != c {
			t.Fatalf("%s: closest gave %s", c, got)
		}
		if got := search.Closest(lc.ToD65()); got != c {
			t.Fatalf("%s (D65): closest gave %s", c, got)
		}
	}
}

func TestClosestSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("scans the full gamut")
	}
	search := Search{Metric: okcolor.MetricEab}
	if got := search.Closest(okcolor.Lab{L: 1.1}); got != okcolor.White {
		t.Errorf("beyond white: %s", got)
	}
	if got := search.Closest(okcolor.Lab{L: -0.1}); got != okcolor.Black {
		t.Errorf("below black: %s", got)
	}
}

func TestContrast(t *testing.T) {
	tests := []struct {
		metric okcolor.Metric
		from   okcolor.SRGB
		want   okcolor.SRGB
	}{
		{okcolor.MetricEab, okcolor.Black, okcolor.White},
		{okcolor.MetricHyab, okcolor.Black, okcolor.SRGB{R: 255, G: 255}},
		{okcolor.MetricEab, okcolor.White, okcolor.Black},
		{okcolor.MetricHyab, okcolor.SRGB{R: 255, G: 255}, okcolor.Black},
		{okcolor.MetricEab, okcolor.SRGB{R: 40, G: 40, B: 40}, okcolor.White},
	}
	for _, tt := range tests {
		if got := (Search{Metric: tt.metric}).Contrast(tt.from.Lab()); got != tt.want {
			t.Errorf("%s from %s: got %s, want %s", tt.metric, tt.from, got, tt.want)
		}
	}
}

func TestMapStrategies(t *testing.T) {
	out := okcolor.LCh{L: 0.75, C: 0.35, H: 2.5}.Lab()
	search := Search{Workers: 2}
	for _, st := range []Strategy{StrategyClip, StrategyProject, StrategyChroma, StrategyLightness} {
		got := search.Map(out, st)
		if got == okcolor.Black {
			t.Errorf("%s mapped a bright color to black", st)
		}
	}
	if got, want := search.Map(out, StrategyClip), Clip(out); got != want {
		t.Errorf("clip strategy: %s, want %s", got, want)
	}
	if got, want := search.Map(out, StrategyChroma), ClampChroma(out.LCh()).Lab().SRGB(); got != want {
		t.Errorf("chroma strategy: %s, want %s", got, want)
	}

	in := okcolor.SRGB{R: 30, G: 90, B: 160}
	for _, st := range []Strategy{StrategyClip, StrategyChroma, StrategyLightness, StrategyClosest} {
		if got := search.Map(in.Lab(), st); got != in {
			t.Errorf("%s changed in gamut %s to %s", st, in, got)
		}
	}
}

func TestStrategyText(t *testing.T) {
	for st := StrategyClip; st <= StrategyClosest; st++ {
		text, err := st.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Strategy
		if err := got.UnmarshalText(text); err != nil || got != st {
			t.Errorf("%s round tripped to %s (%v)", st, got, err)
		}
	}
	var st Strategy
	if err := st.UnmarshalText([]byte("nearest")); err == nil {
		t.Error("expected an error")
	}
}
