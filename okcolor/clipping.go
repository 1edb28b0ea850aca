// based on:
// https://bottosson.github.io/posts/gamutclipping/

package okcolor

import "math"

// Clipper maps a color onto the sRGB gamut boundary. Clippers expect an out
// of gamut input; in gamut colors may move slightly.
type Clipper func(Lab) Lab

// ClipPreserveChroma projects toward the gray of the same lightness.
func ClipPreserveChroma(lc Lab) Lab {
	return project(lc, func(L, _, _, _ float64) float64 {
		return clamp(L, 0, 1)
	})
}

// ClipProjectTo05 projects toward mid gray.
func ClipProjectTo05(lc Lab) Lab {
	return ClipProjectToL0(lc, 0.5)
}

func ClipperProjectToL0(L0 float64) Clipper {
	return func(lc Lab) Lab {
		return ClipProjectToL0(lc, L0)
	}
}

// ClipProjectToL0 projects toward the gray of lightness L0.
func ClipProjectToL0(lc Lab, L0 float64) Lab {
	return project(lc, func(_, _, _, _ float64) float64 {
		return L0
	})
}

// ClipProjectToLCusp projects toward the gray at the lightness of the cusp
// of the hue slice.
func ClipProjectToLCusp(lc Lab) Lab {
	return project(lc, func(_, _, lC, _ float64) float64 {
		return lC
	})
}

func ClipAdaptive05(alpha float64) Clipper {
	return func(lc Lab) Lab {
		return project(lc, func(L, C, _, _ float64) float64 {
			ld := L - 0.5
			e1 := 0.5 + math.Abs(ld) + alpha*C
			return 0.5 * (1 + sgn(ld)*(e1-math.Sqrt(e1*e1-2*math.Abs(ld))))
		})
	}
}

func ClipAdaptiveLCusp(alpha float64) Clipper {
	return func(lc Lab) Lab {
		return project(lc, func(L, C, lC, _ float64) float64 {
			ld := L - lC
			k := 2 * lC
			if ld > 0 {
				k = 2 * (1 - lC)
			}

			e1 := 0.5*k + math.Abs(ld) + alpha*C/k
			return lC + 0.5*(sgn(ld)*(e1-math.Sqrt(e1*e1-2*k*math.Abs(ld))))
		})
	}
}

// project moves lc along the line toward (L0, 0) until it meets the gamut
// boundary. target picks L0 from the lightness, chroma and cusp of lc.
func project(lc Lab, target func(L, C, lCusp, cCusp float64) float64) Lab {
	d65 := lc.D65
	lc = lc.ToUnreferenced()

	c := max(Eps, lc.Chroma())
	a_ := lc.A / c
	b_ := lc.B / c

	lC, cC := findCusp(a_, b_)
	L0 := target(lc.L, c, lC, cC)

	t := findGamutIntersection(a_, b_, lc.L, c, L0, lC, cC)
	lClipped := L0*(1-t) + t*lc.L
	cClipped := t * c

	return Lab{
		L: lClipped,
		A: cClipped * a_,
		B: cClipped * b_,
	}.Reference(d65)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	} else if x > max {
		return max
	} else {
		return x
	}
}

func sgn(x float64) float64 {
	if x < 0 {
		return -1
	} else if x > 0 {
		return 1
	}
	return 0
}

// findGamutIntersection finds intersection of the line defined by
// L = L0 * (1 - t) + t * L1
// C = t * C1
// with the gamut triangle of the hue whose cusp is (lC, cC).
// a and b must be normalized so a^2 + b^2 == 1
func findGamutIntersection(a, b, L1, C1, L0, lC, cC float64) float64 {
	// lower half: the triangle is exact
	if ((L1-L0)*cC - (lC-L0)*C1) <= 0 {
		return cC * L0 / (C1*lC + cC*(L0-L1))
	}

	// upper half: intersect with the triangle, then one step of Halley's
	// method per channel against the real boundary
	t := cC * (L0 - 1) / (C1*(lC-1) + cC*(L0-L1))

	dL := L1 - L0
	dC := C1

	kL := +0.3963377774*a + 0.2158037573*b
	kM := -0.1055613458*a - 0.0638541728*b
	kS := -0.0894841775*a - 1.2914855480*b

	lDt := dL + dC*kL
	mDt := dL + dC*kM
	sDt := dL + dC*kS

	L := L0*(1-t) + t*L1
	C := t * C1

	l_ := L + C*kL
	l := l_ * l_ * l_
	ldt := 3 * lDt * l_ * l_
	ldt2 := 6 * lDt * lDt * l_

	m_ := L + C*kM
	m := m_ * m_ * m_
	mdt := 3 * mDt * m_ * m_
	mdt2 := 6 * mDt * mDt * m_

	s_ := L + C*kS
	s := s_ * s_ * s_
	sdt := 3 * sDt * s_ * s_
	sdt2 := 6 * sDt * sDt * s_

	tR := halleyStep(
		4.0767416621*l-3.3077115913*m+0.2309699292*s-1,
		4.0767416621*ldt-3.3077115913*mdt+0.2309699292*sdt,
		4.0767416621*ldt2-3.3077115913*mdt2+0.2309699292*sdt2,
	)
	tG := halleyStep(
		-1.2684380046*l+2.6097574011*m-0.3413193965*s-1,
		-1.2684380046*ldt+2.6097574011*mdt-0.3413193965*sdt,
		-1.2684380046*ldt2+2.6097574011*mdt2-0.3413193965*sdt2,
	)
	tB := halleyStep(
		-0.0041960863*l-0.7034186147*m+1.7076147010*s-1,
		-0.0041960863*ldt-0.7034186147*mdt+1.7076147010*sdt,
		-0.0041960863*ldt2-0.7034186147*mdt2+1.7076147010*sdt2,
	)

	return t + min(tR, tG, tB)
}

func halleyStep(f, f1, f2 float64) float64 {
	u := f1 / (f1*f1 - 0.5*f*f2)
	if u >= 0 {
		return -f * u
	}
	return math.MaxFloat64
}

// findCusp finds lCusp and cCusp for a given hue
// a and b must be normalized so a^2 + b^2 == 1
func findCusp(a, b float64) (float64, float64) {
	// first, find the maximum saturation (saturation S = C/L)
	sCusp := computeMaxSaturation(a, b)

	// convert to linear sRGB to find the first point where at least one of r,g or b >= 1:
	rgbAtMax := Lab{
		L: 1,
		A: sCusp * a,
		B: sCusp * b,
	}.Linear()
	lCusp := math.Cbrt(1 / rgbAtMax.Max())
	cCusp := lCusp * sCusp

	return lCusp, cCusp
}

// computeMaxSaturation finds the maximum saturation possible for a given hue that fits in sRGB
// Saturation here is defined as S = C/L
// a and b must be normalized so a^2 + b^2 == 1
func computeMaxSaturation(a, b float64) float64 {
	// max saturation will be when one of r, g or b goes below zero.

	// select different coefficients depending on which component goes below zero first
	var k0, k1, k2, k3, k4, wl, wm, ws float64
	if (-1.88170328*a - 0.80936493*b) > 1 { // red component
		k0, k1, k2, k3, k4 = +1.19086277, +1.76576728, +0.59662641, +0.75515197, +0.56771245
		wl, wm, ws = +4.0767416621, -3.3077115913, +0.2309699292
	} else if (1.81444104*a - 1.19445276*b) > 1 { // green component
		k0, k1, k2, k3, k4 = +0.73956515, -0.45954404, +0.08285427, +0.12541070, +0.14503204
		wl, wm, ws = -1.2684380046, +2.6097574011, -0.3413193965
	} else { // blue component
		k0, k1, k2, k3, k4 = +1.35733652, -0.00915799, -1.15130210, -0.50559606, +0.00692167
		wl, wm, ws = -0.0041960863, -0.7034186147, +1.7076147010
	}

	// approximate max saturation using a polynomial:
	sat := k0 + k1*a + k2*b + k3*a*a + k4*a*b

	// one step of Halley's method; error is below 10e6 except for some blue
	// hues where dS/dh is close to infinite
	kL := +0.3963377774*a + 0.2158037573*b
	kM := -0.1055613458*a - 0.0638541728*b
	kS := -0.0894841775*a - 1.2914855480*b

	l_ := 1 + sat*kL
	m_ := 1 + sat*kM
	s_ := 1 + sat*kS

	l := l_ * l_ * l_
	m := m_ * m_ * m_
	s := s_ * s_ * s_

	lDS := 3 * kL * l_ * l_
	mDS := 3 * kM * m_ * m_
	sDS := 3 * kS * s_ * s_

	lDS2 := 6 * kL * kL * l_
	mDS2 := 6 * kM * kM * m_
	sDS2 := 6 * kS * kS * s_

	f := wl*l + wm*m + ws*s
	f1 := wl*lDS + wm*mDS + ws*sDS
	f2 := wl*lDS2 + wm*mDS2 + ws*sDS2

	return sat - f*f1/(f1*f1-0.5*f*f2)
}
