package wcs

import (
	"math"

	"github.com/skymath/wcsproj/internal/numeric"
)

// polyconic carries what the polyconic and pseudoconic projections
// share: the equatorial native reference and the permissive footprint.
type polyconic struct{}

func (polyconic) nativeReference() (float64, float64) { return 0, 0 }

func (polyconic) visible(phi, theta float64) bool { return true }

// BON, the Bonne equal-area pseudoconic projection with standard
// parallel theta1. theta1 = 90 gives Werner's projection; theta1 = 0
// is excluded because the cone degenerates into the Sanson-Flamsteed
// cylinder (use SFL for that).
type bonProj struct {
	polyconic
	theta1 float64 // radians
	y0     float64 // degrees
}

func newBON(pv paramSet) (*bonProj, error) {
	theta1Deg := pv.get(1, 0)
	if theta1Deg < -90 || theta1Deg > 90 {
		return nil, paramErrf("BON: standard parallel %g outside [-90, 90]", theta1Deg)
	}
	if numeric.AlmostEqual(theta1Deg, 0) {
		return nil, paramErrf("BON: standard parallel 0 degenerates to SFL")
	}
	theta1 := rad(theta1Deg)
	s, c := math.Sincos(theta1)
	return &bonProj{theta1: theta1, y0: degPerRad * (c/s + theta1)}, nil
}

func (p *bonProj) code() string { return "BON" }
func (p *bonProj) name() string { return "Bonne" }

func (p *bonProj) params() []Param {
	return []Param{{Name: "theta1", Index: 1, Min: -90, Max: 90, Default: 0}}
}

func (p *bonProj) project(x, y float64) (phi, theta float64, err error) {
	r := math.Hypot(x, p.y0-y)
	if p.theta1 < 0 {
		r = -r
	}
	theta = (p.y0 - r) / degPerRad
	if !latInRange(theta) {
		return 0, 0, domainErrf("BON: plane point (%g, %g) beyond the pole", x, y)
	}
	theta = clampLat(theta)
	if math.Abs(r) < numeric.Eps {
		// Apex of the parallels; only reachable for theta1 = ±90.
		return 0, theta, nil
	}
	a := numeric.Atan2(x/r, (p.y0-y)/r, 0)
	c := math.Cos(theta)
	if c < numeric.Eps {
		if math.Abs(a*r) > numeric.Eps {
			return 0, 0, domainErrf("BON: plane point (%g, %g) off the pole point", x, y)
		}
		return 0, theta, nil
	}
	return a * r / (degPerRad * c), theta, nil
}

func (p *bonProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	r := p.y0 - degPerRad*theta
	if math.Abs(r) < numeric.Eps {
		return 0, p.y0, nil
	}
	a := degPerRad * phi * math.Cos(theta) / r
	s, c := math.Sincos(a)
	return r * s, p.y0 - r*c, nil
}

// PCO, the polyconic projection proper: every parallel is projected
// onto its own tangent cone at true scale. The plane-to-sphere
// direction has no closed form and bisects for theta.
type pcoProj struct{ polyconic }

func (pcoProj) code() string    { return "PCO" }
func (pcoProj) name() string    { return "polyconic" }
func (pcoProj) params() []Param { return nil }

func (pcoProj) project(x, y float64) (phi, theta float64, err error) {
	if math.Abs(y) < numeric.Eps && math.Abs(x) < numeric.Eps {
		return 0, 0, nil
	}

	// A plane point sits on the circle of its parallel:
	//   x² + (y - R·theta)² = 2·R·cot(theta)·(y - R·theta)   (R = deg/rad)
	// The residual is multiplied through by sin(theta) so it stays
	// finite at the equator and brackets [-90, 90] with certainty.
	f := func(t float64) float64 {
		s, c := math.Sincos(t)
		v := y - degPerRad*t
		return s*(x*x+v*v) - 2*degPerRad*c*v
	}
	theta, err = numeric.Bisect(f, -math.Pi/2, math.Pi/2, 100, 1e-13)
	if err != nil {
		return 0, 0, domainErrf("PCO: no latitude for plane point (%g, %g) (%v)", x, y, err)
	}

	if math.Abs(theta) < numeric.Eps {
		return x / degPerRad, 0, nil
	}
	s, c := math.Sincos(theta)
	cot := degPerRad * c / s
	v := cot - (y - degPerRad*theta)
	if cot < 0 {
		// Southern parallels have a negative circle radius; fold its
		// sign out of both components so atan2 lands on the branch
		// the forward direction used.
		x, v = -x, -v
	}
	return numeric.Atan2(x, v, 0) / s, theta, nil
}

func (pcoProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	if math.Abs(theta) < numeric.Eps {
		return degPerRad * phi, 0, nil
	}
	s, c := math.Sincos(theta)
	cot := c / s
	sa, ca := math.Sincos(phi * s)
	x = degPerRad * cot * sa
	y = degPerRad * (theta + cot*(1-ca))
	return x, y, nil
}
