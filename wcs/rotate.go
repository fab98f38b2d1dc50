package wcs

import (
	"math"

	"github.com/skymath/wcsproj/internal/numeric"
)

// rotator converts between native spherical coordinates (phi, theta)
// and celestial coordinates (alpha, delta), all in radians. It is the
// standard Euler rotation of Calabretta & Greisen (2002) parameterized
// by the celestial position of the native pole (alphaP, deltaP) and the
// native longitude of the celestial pole phiP. A rotator is immutable
// once built, so both directions are safe for concurrent use.
type rotator struct {
	alphaP, deltaP float64
	phiP           float64

	sinDeltaP, cosDeltaP float64
	mode                 rotMode
}

type rotMode int

const (
	rotGeneral rotMode = iota
	rotNorthPolar       // deltaP = +90°: a longitude shift
	rotSouthPolar       // deltaP = -90°: a longitude shift with flipped latitude
)

// newRotator derives the celestial position of the native pole from the
// fiducial point (alpha0, delta0), the family's native reference
// (phi0, theta0), the native longitude of the celestial pole phiP and
// the preferred native-pole latitude thetaP. An error here means the
// caller supplied a contradictory configuration: no valid native-pole
// latitude exists. That is a configuration-level failure, never a
// per-point one.
func newRotator(alpha0, delta0, phi0, theta0, phiP, thetaP float64) (rotator, error) {
	alphaP, deltaP, err := solveNativePole(alpha0, delta0, phi0, theta0, phiP, thetaP)
	if err != nil {
		return rotator{}, err
	}

	r := rotator{
		alphaP: normalizeLon(alphaP),
		deltaP: deltaP,
		phiP:   phiP,
	}
	r.sinDeltaP, r.cosDeltaP = math.Sincos(deltaP)
	switch {
	case numeric.AlmostEqual(deltaP, math.Pi/2):
		r.mode = rotNorthPolar
	case numeric.AlmostEqual(deltaP, -math.Pi/2):
		r.mode = rotSouthPolar
	}
	return r, nil
}

// solveNativePole computes (alphaP, deltaP). The closed-form expression
// for deltaP generally has two valid roots; both are computed, roots
// outside [-90°, 90°] are discarded, and if both remain the one nearer
// the preferred thetaP wins. The fully unconstrained sub-case
// (theta0 = 0, delta0 = 0, |phiP - phi0| = 90°) returns thetaP itself.
func solveNativePole(alpha0, delta0, phi0, theta0, phiP, thetaP float64) (alphaP, deltaP float64, err error) {
	dphi := phiP - phi0
	sinDphi, cosDphi := math.Sincos(dphi)
	sinTheta0, cosTheta0 := math.Sincos(theta0)

	switch {
	case numeric.AlmostEqual(theta0, 0) && numeric.AlmostEqual(delta0, 0) &&
		numeric.AlmostEqual(math.Abs(math.Sin(dphi)), 1):
		deltaP = thetaP
	default:
		den := math.Sqrt(1 - cosTheta0*cosTheta0*sinDphi*sinDphi)
		if den < numeric.Eps {
			// cosTheta0 = 1 and |sin dphi| = 1 with delta0 != 0:
			// the fiducial point cannot lie on the prescribed circle.
			return 0, 0, paramErrf("native pole: fiducial point unreachable from (phi0, theta0)")
		}
		off := numeric.Acos(math.Sin(delta0) / den)
		if math.IsNaN(off) {
			return 0, 0, paramErrf("native pole: |sin(delta0)| exceeds the reachable range")
		}
		base := math.Atan2(sinTheta0, cosTheta0*cosDphi)
		deltaP, err = pickPoleLatitude(foldLatitude(base+off), foldLatitude(base-off), thetaP)
		if err != nil {
			return 0, 0, err
		}
	}

	switch {
	case numeric.AlmostEqual(math.Abs(delta0), math.Pi/2):
		// Fiducial point at a celestial pole: alpha is degenerate there,
		// carry it through unchanged.
		alphaP = alpha0
	case numeric.AlmostEqual(deltaP, math.Pi/2):
		alphaP = alpha0 + dphi - math.Pi
	case numeric.AlmostEqual(deltaP, -math.Pi/2):
		alphaP = alpha0 - dphi
	default:
		sinDeltaP, cosDeltaP := math.Sincos(deltaP)
		y := cosTheta0 * sinDphi
		x := sinTheta0*cosDeltaP - cosTheta0*sinDeltaP*cosDphi
		alphaP = alpha0 - numeric.Atan2(y, x, 0)
	}
	return alphaP, deltaP, nil
}

// foldLatitude brings base±offset results back into [-π, π].
func foldLatitude(d float64) float64 {
	if d > math.Pi {
		return d - 2*math.Pi
	}
	if d < -math.Pi {
		return d + 2*math.Pi
	}
	return d
}

func pickPoleLatitude(d1, d2, thetaP float64) (float64, error) {
	ok1 := latInRange(d1)
	ok2 := latInRange(d2)
	switch {
	case ok1 && ok2:
		if math.Abs(d1-thetaP) <= math.Abs(d2-thetaP) {
			return clampLat(d1), nil
		}
		return clampLat(d2), nil
	case ok1:
		return clampLat(d1), nil
	case ok2:
		return clampLat(d2), nil
	default:
		return 0, paramErrf("native pole: no root in [-90, 90] (candidates %g, %g rad)", d1, d2)
	}
}

func latInRange(d float64) bool {
	return math.Abs(d) <= math.Pi/2+numeric.Eps
}

func clampLat(d float64) float64 {
	if d > math.Pi/2 {
		return math.Pi / 2
	}
	if d < -math.Pi/2 {
		return -math.Pi / 2
	}
	return d
}

// toCelestial maps native (phi, theta) to celestial (alpha, delta).
// alpha is normalized to [0, 2π).
func (r rotator) toCelestial(phi, theta float64) (alpha, delta float64) {
	switch r.mode {
	case rotNorthPolar:
		return normalizeLon(r.alphaP + phi - r.phiP + math.Pi), theta
	case rotSouthPolar:
		return normalizeLon(r.alphaP + r.phiP - phi), -theta
	}
	sinTheta, cosTheta := math.Sincos(theta)
	sinDphi, cosDphi := math.Sincos(phi - r.phiP)
	delta = numeric.Asin(sinTheta*r.sinDeltaP + cosTheta*r.cosDeltaP*cosDphi)
	alpha = r.alphaP + numeric.Atan2(-cosTheta*sinDphi,
		sinTheta*r.cosDeltaP-cosTheta*r.sinDeltaP*cosDphi, 0)
	return normalizeLon(alpha), delta
}

// toNative maps celestial (alpha, delta) to native (phi, theta).
// phi is normalized into (-π, π].
func (r rotator) toNative(alpha, delta float64) (phi, theta float64) {
	switch r.mode {
	case rotNorthPolar:
		return normalizePhi(r.phiP + alpha - r.alphaP - math.Pi), delta
	case rotSouthPolar:
		return normalizePhi(r.phiP + r.alphaP - alpha), -delta
	}
	sinDelta, cosDelta := math.Sincos(delta)
	sinDalpha, cosDalpha := math.Sincos(alpha - r.alphaP)
	theta = numeric.Asin(sinDelta*r.sinDeltaP + cosDelta*r.cosDeltaP*cosDalpha)
	phi = r.phiP + numeric.Atan2(-cosDelta*sinDalpha,
		sinDelta*r.cosDeltaP-cosDelta*r.sinDeltaP*cosDalpha, 0)
	return normalizePhi(phi), theta
}

// normalizePhi folds a native longitude into (-π, π]. Applying it twice
// is the same as applying it once.
func normalizePhi(phi float64) float64 {
	phi = math.Mod(phi, 2*math.Pi)
	if phi <= -math.Pi {
		phi += 2 * math.Pi
	} else if phi > math.Pi {
		phi -= 2 * math.Pi
	}
	return phi
}

// normalizeLon folds a celestial longitude into [0, 2π).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon
}
