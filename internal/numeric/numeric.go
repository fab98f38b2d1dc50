// Package numeric provides the tolerance-aware scalar math shared by the
// projection code: domain-clamped inverse trigonometry, a bracketed
// bisection root finder, a quadratic solver for angles, and polynomial
// evaluation and solving.
package numeric

import (
	"errors"
	"fmt"
	"math"
)

// Eps is the tolerance used for every floating-point comparison in the
// projection code. It absorbs rounding error from trigonometric
// identities without hiding genuinely out-of-domain values.
const Eps = 1e-12

// ErrNoConvergence reports that a root finder found no sign change or
// exhausted its iteration budget.
var ErrNoConvergence = errors.New("no convergence")

// AlmostEqual reports whether a and b differ by less than Eps.
func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < Eps
}

// Asin behaves like math.Asin but clamps arguments exceeding the [-1, 1]
// domain by less than Eps. Larger excesses return NaN, which callers
// treat as "no solution".
func Asin(x float64) float64 {
	if x > 1 {
		if x > 1+Eps {
			return math.NaN()
		}
		return math.Pi / 2
	}
	if x < -1 {
		if x < -1-Eps {
			return math.NaN()
		}
		return -math.Pi / 2
	}
	return math.Asin(x)
}

// Acos is the Asin counterpart for math.Acos: clamped within Eps of the
// domain edge, NaN beyond it.
func Acos(x float64) float64 {
	if x > 1 {
		if x > 1+Eps {
			return math.NaN()
		}
		return 0
	}
	if x < -1 {
		if x < -1-Eps {
			return math.NaN()
		}
		return math.Pi
	}
	return math.Acos(x)
}

// Atan2 behaves like math.Atan2 but returns fallback when both
// arguments are within Eps of zero. That is the "projection radius is
// exactly zero" case at a zenithal projection's reference point, where
// the azimuth is undefined and the conventional value (normally 0) is
// wanted instead of an arbitrary one.
func Atan2(y, x, fallback float64) float64 {
	if math.Abs(x) < Eps && math.Abs(y) < Eps {
		return fallback
	}
	return math.Atan2(y, x)
}

// Bisect finds a root of f on [lo, hi]. The interval must bracket a
// sign change; establishing the bracket is the caller's job. The search
// stops once the interval is narrower than tol or an endpoint evaluates
// exactly to zero, and fails with ErrNoConvergence if maxIter halvings
// are not enough.
func Bisect(f func(float64) float64, lo, hi float64, maxIter int, tol float64) (float64, error) {
	flo := f(lo)
	if flo == 0 {
		return lo, nil
	}
	fhi := f(hi)
	if fhi == 0 {
		return hi, nil
	}
	if (flo > 0) == (fhi > 0) {
		return 0, fmt.Errorf("bisect [%g, %g]: %w: no sign change", lo, hi, ErrNoConvergence)
	}
	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (lo + hi)
		fm := f(mid)
		if fm == 0 || hi-lo < tol {
			return mid, nil
		}
		if (fm > 0) == (flo > 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return 0, fmt.Errorf("bisect: %w after %d iterations", ErrNoConvergence, maxIter)
}

// QuadraticNearest solves a·u² + b·u + c = 0 for u = cos z and returns
// the angle z in [0, π] closest to ref. Roots within Eps of the domain
// edge are clamped onto it (Acos does the clamping); a discriminant
// below -Eps, or no root inside [-1, 1], is reported as no convergence.
// |a| < Eps degenerates to the linear case.
func QuadraticNearest(a, b, c, ref float64) (float64, error) {
	if math.Abs(a) < Eps {
		if math.Abs(b) < Eps {
			return 0, fmt.Errorf("quadratic: %w: degenerate coefficients", ErrNoConvergence)
		}
		z := Acos(-c / b)
		if math.IsNaN(z) {
			return 0, fmt.Errorf("quadratic: %w: root outside the unit interval", ErrNoConvergence)
		}
		return z, nil
	}
	d := b*b - 4*a*c
	if d < 0 {
		if d < -Eps {
			return 0, fmt.Errorf("quadratic: %w: negative discriminant %g", ErrNoConvergence, d)
		}
		d = 0
	}
	sq := math.Sqrt(d)
	z1 := Acos((-b + sq) / (2 * a))
	z2 := Acos((-b - sq) / (2 * a))
	switch {
	case math.IsNaN(z1) && math.IsNaN(z2):
		return 0, fmt.Errorf("quadratic: %w: no root inside the unit interval", ErrNoConvergence)
	case math.IsNaN(z1):
		return z2, nil
	case math.IsNaN(z2):
		return z1, nil
	case math.Abs(z1-ref) <= math.Abs(z2-ref):
		return z1, nil
	default:
		return z2, nil
	}
}
