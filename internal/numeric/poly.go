package numeric

import (
	"fmt"
	"math"
)

// Horner evaluates the polynomial with the given coefficients (constant
// term first) at x.
func Horner(coeffs []float64, x float64) float64 {
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*x + coeffs[i]
	}
	return v
}

// Derivative returns the coefficients of the derivative polynomial.
func Derivative(coeffs []float64) []float64 {
	if len(coeffs) < 2 {
		return nil
	}
	d := make([]float64, len(coeffs)-1)
	for i := 1; i < len(coeffs); i++ {
		d[i-1] = float64(i) * coeffs[i]
	}
	return d
}

// Degree returns the effective degree of the polynomial: the index of
// the highest nonzero coefficient, or -1 for an all-zero vector.
func Degree(coeffs []float64) int {
	for i := len(coeffs) - 1; i >= 0; i-- {
		if coeffs[i] != 0 {
			return i
		}
	}
	return -1
}

// SolvePoly finds x in [lo, hi] with Horner(coeffs, x) == target.
// Effective degree 1 and 2 use the closed forms; higher degrees fall
// back to bisection, which requires target to be bracketed on [lo, hi].
// When the closed forms produce two admissible roots the one nearer lo
// wins, matching the bracket convention of the callers (zenith distance
// measured from the pole).
func SolvePoly(coeffs []float64, target, lo, hi float64) (float64, error) {
	switch Degree(coeffs) {
	case -1, 0:
		c0 := 0.0
		if len(coeffs) > 0 {
			c0 = coeffs[0]
		}
		if AlmostEqual(c0, target) {
			return lo, nil
		}
		return 0, fmt.Errorf("polynomial: %w: constant polynomial cannot reach %g", ErrNoConvergence, target)
	case 1:
		x := (target - coeffs[0]) / coeffs[1]
		return clampToBracket(x, lo, hi)
	case 2:
		a, b, c := coeffs[2], coeffs[1], coeffs[0]-target
		d := b*b - 4*a*c
		if d < 0 {
			if d < -Eps {
				return 0, fmt.Errorf("polynomial: %w: negative discriminant %g", ErrNoConvergence, d)
			}
			d = 0
		}
		sq := math.Sqrt(d)
		x1, err1 := clampToBracket((-b+sq)/(2*a), lo, hi)
		x2, err2 := clampToBracket((-b-sq)/(2*a), lo, hi)
		switch {
		case err1 == nil && err2 == nil:
			if math.Abs(x1-lo) <= math.Abs(x2-lo) {
				return x1, nil
			}
			return x2, nil
		case err1 == nil:
			return x1, nil
		case err2 == nil:
			return x2, nil
		default:
			return 0, err1
		}
	default:
		f := func(x float64) float64 { return Horner(coeffs, x) - target }
		return Bisect(f, lo, hi, 100, 1e-13)
	}
}

func clampToBracket(x, lo, hi float64) (float64, error) {
	if x < lo {
		if x < lo-Eps {
			return 0, fmt.Errorf("polynomial: %w: root %g below bracket [%g, %g]", ErrNoConvergence, x, lo, hi)
		}
		return lo, nil
	}
	if x > hi {
		if x > hi+Eps {
			return 0, fmt.Errorf("polynomial: %w: root %g above bracket [%g, %g]", ErrNoConvergence, x, lo, hi)
		}
		return hi, nil
	}
	return x, nil
}
