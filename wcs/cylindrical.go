package wcs

import (
	"math"

	"github.com/skymath/wcsproj/internal/numeric"
)

// cylindrical carries the geometry shared by the cylindrical and
// pseudo-cylindrical projections: the native reference point is on the
// equator and the footprint is the whole sphere, so the visibility
// predicate is permissive. Projections with genuine per-point domain
// limits (singular parallels, the Aitoff ellipse) enforce them inside
// project/projectInverse.
type cylindrical struct{}

func (cylindrical) nativeReference() (float64, float64) { return 0, 0 }

func (cylindrical) visible(phi, theta float64) bool { return true }

// CYP, the cylindrical perspective projection: projection from a point
// mu sphere radii behind the axis onto a cylinder of radius lambda.
type cypProj struct {
	cylindrical
	mu, lambda float64
}

func newCYP(pv paramSet) (*cypProj, error) {
	mu := pv.get(1, 1)
	lambda := pv.get(2, 1)
	if lambda <= 0 {
		return nil, paramErrf("CYP: lambda = %g must be positive", lambda)
	}
	if numeric.AlmostEqual(mu, -lambda) {
		return nil, paramErrf("CYP: mu = -lambda is degenerate")
	}
	return &cypProj{mu: mu, lambda: lambda}, nil
}

func (p *cypProj) code() string { return "CYP" }
func (p *cypProj) name() string { return "cylindrical perspective" }

func (p *cypProj) params() []Param {
	return []Param{
		unbounded("mu", 1, 1),
		{Name: "lambda", Index: 2, Min: 0, Max: math.Inf(1), Default: 1},
	}
}

func (p *cypProj) project(x, y float64) (phi, theta float64, err error) {
	phi = x / (degPerRad * p.lambda)
	eta := y / (degPerRad * (p.mu + p.lambda))
	s := eta * p.mu / math.Sqrt(eta*eta+1)
	off := numeric.Asin(s)
	if math.IsNaN(off) {
		return 0, 0, domainErrf("CYP: plane point (%g, %g) misses the sphere", x, y)
	}
	return phi, math.Atan2(eta, 1) + off, nil
}

func (p *cypProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	s, c := math.Sincos(theta)
	den := p.mu + c
	if math.Abs(den) < numeric.Eps {
		return 0, 0, domainErrf("CYP: singular denominator at theta=%g rad", theta)
	}
	x = degPerRad * p.lambda * phi
	y = degPerRad * (p.mu + p.lambda) * s / den
	return x, y, nil
}

// CEA, the cylindrical equal-area projection with squashing parameter
// lambda.
type ceaProj struct {
	cylindrical
	lambda float64
}

func newCEA(pv paramSet) (*ceaProj, error) {
	lambda := pv.get(1, 1)
	if lambda <= 0 || lambda > 1 {
		return nil, paramErrf("CEA: lambda = %g outside (0, 1]", lambda)
	}
	return &ceaProj{lambda: lambda}, nil
}

func (p *ceaProj) code() string { return "CEA" }
func (p *ceaProj) name() string { return "cylindrical equal-area" }

func (p *ceaProj) params() []Param {
	return []Param{{Name: "lambda", Index: 1, Min: 0, Max: 1, Default: 1}}
}

func (p *ceaProj) project(x, y float64) (phi, theta float64, err error) {
	theta = numeric.Asin(y * p.lambda / degPerRad)
	if math.IsNaN(theta) {
		return 0, 0, domainErrf("CEA: y = %g deg beyond the pole", y)
	}
	return x / degPerRad, theta, nil
}

func (p *ceaProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	return degPerRad * phi, degPerRad * math.Sin(theta) / p.lambda, nil
}

// CAR, the plate carrée projection: plane coordinates are the native
// longitude and latitude in degrees.
type carProj struct{ cylindrical }

func (carProj) code() string    { return "CAR" }
func (carProj) name() string    { return "plate carrée" }
func (carProj) params() []Param { return nil }

func (carProj) project(x, y float64) (phi, theta float64, err error) {
	phi = x / degPerRad
	theta = y / degPerRad
	if math.Abs(phi) > math.Pi+numeric.Eps {
		return 0, 0, domainErrf("CAR: x = %g deg outside [-180, 180]", x)
	}
	if math.Abs(theta) > math.Pi/2+numeric.Eps {
		return 0, 0, domainErrf("CAR: y = %g deg outside [-90, 90]", y)
	}
	return normalizePhi(phi), clampLat(theta), nil
}

func (carProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	return degPerRad * phi, degPerRad * theta, nil
}

// MER, the Mercator projection.
type merProj struct{ cylindrical }

func (merProj) code() string    { return "MER" }
func (merProj) name() string    { return "Mercator" }
func (merProj) params() []Param { return nil }

func (merProj) project(x, y float64) (phi, theta float64, err error) {
	return x / degPerRad, 2*math.Atan(math.Exp(y/degPerRad)) - math.Pi/2, nil
}

func (merProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	if math.Pi/2-math.Abs(theta) < numeric.Eps {
		return 0, 0, domainErrf("MER: pole is infinitely far")
	}
	return degPerRad * phi, degPerRad * math.Log(math.Tan(math.Pi/4+theta/2)), nil
}

// SFL, the Sanson-Flamsteed (sinusoidal) projection.
type sflProj struct{ cylindrical }

func (sflProj) code() string    { return "SFL" }
func (sflProj) name() string    { return "Sanson-Flamsteed" }
func (sflProj) params() []Param { return nil }

func (sflProj) project(x, y float64) (phi, theta float64, err error) {
	theta = y / degPerRad
	if math.Abs(theta) > math.Pi/2+numeric.Eps {
		return 0, 0, domainErrf("SFL: y = %g deg outside [-90, 90]", y)
	}
	theta = clampLat(theta)
	c := math.Cos(theta)
	if c < numeric.Eps {
		if math.Abs(x) > numeric.Eps {
			return 0, 0, domainErrf("SFL: x = %g deg off the pole point", x)
		}
		return 0, theta, nil
	}
	return x / (degPerRad * c), theta, nil
}

func (sflProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	return degPerRad * phi * math.Cos(theta), degPerRad * theta, nil
}

// PAR, the parabolic (Craster) projection.
type parProj struct{ cylindrical }

func (parProj) code() string    { return "PAR" }
func (parProj) name() string    { return "parabolic" }
func (parProj) params() []Param { return nil }

func (parProj) project(x, y float64) (phi, theta float64, err error) {
	t := y / 180
	if math.Abs(t) > 0.5+numeric.Eps {
		return 0, 0, domainErrf("PAR: y = %g deg beyond the pole", y)
	}
	theta = 3 * numeric.Asin(math.Max(-0.5, math.Min(0.5, t)))
	den := 2*math.Cos(2*theta/3) - 1
	if math.Abs(den) < numeric.Eps {
		if math.Abs(x) > numeric.Eps {
			return 0, 0, domainErrf("PAR: x = %g deg off the pole point", x)
		}
		return 0, theta, nil
	}
	return x / (degPerRad * den), theta, nil
}

func (parProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	x = degPerRad * phi * (2*math.Cos(2*theta/3) - 1)
	y = 180 * math.Sin(theta/3)
	return x, y, nil
}

// MOL, the Mollweide projection. The sphere-to-plane direction solves
// the transcendental gamma - π·sin(theta) + sin(gamma) = 0 by bisection;
// the plane-to-sphere direction is closed-form up to a nested arcsine.
type molProj struct{ cylindrical }

func (molProj) code() string    { return "MOL" }
func (molProj) name() string    { return "Mollweide" }
func (molProj) params() []Param { return nil }

func (molProj) project(x, y float64) (phi, theta float64, err error) {
	s := y / (degPerRad * math.Sqrt2)
	g2 := numeric.Asin(s) // gamma/2
	if math.IsNaN(g2) {
		return 0, 0, domainErrf("MOL: y = %g deg outside the ellipse", y)
	}
	theta = numeric.Asin((2*g2 + math.Sin(2*g2)) / math.Pi)
	if math.IsNaN(theta) {
		return 0, 0, domainErrf("MOL: plane point (%g, %g) outside the ellipse", x, y)
	}
	c := math.Cos(g2)
	if c < numeric.Eps {
		if math.Abs(x) > numeric.Eps {
			return 0, 0, domainErrf("MOL: x = %g deg off the pole point", x)
		}
		return 0, theta, nil
	}
	phi = math.Pi * x / (2 * math.Sqrt2 * degPerRad * c)
	return phi, theta, nil
}

func (molProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	sinTheta := math.Sin(theta)
	gamma, err := numeric.Bisect(func(g float64) float64 {
		return g - math.Pi*sinTheta + math.Sin(g)
	}, -math.Pi, math.Pi, 100, 1e-13)
	if err != nil {
		return 0, 0, domainErrf("MOL: solving for the auxiliary angle (%v)", err)
	}
	s2, c2 := math.Sincos(gamma / 2)
	x = 2 * math.Sqrt2 * degPerRad * phi * c2 / math.Pi
	y = math.Sqrt2 * degPerRad * s2
	return x, y, nil
}

// AIT, the Hammer-Aitoff projection.
type aitProj struct{ cylindrical }

func (aitProj) code() string    { return "AIT" }
func (aitProj) name() string    { return "Hammer-Aitoff" }
func (aitProj) params() []Param { return nil }

func (aitProj) project(x, y float64) (phi, theta float64, err error) {
	xr := x / degPerRad
	yr := y / degPerRad
	w := 1 - xr*xr/16 - yr*yr/4 // square of the auxiliary factor
	if w < 0.5-numeric.Eps {
		return 0, 0, domainErrf("AIT: plane point (%g, %g) outside the ellipse", x, y)
	}
	z := math.Sqrt(math.Max(w, 0))
	theta = numeric.Asin(yr * z)
	if math.IsNaN(theta) {
		return 0, 0, domainErrf("AIT: plane point (%g, %g) outside the ellipse", x, y)
	}
	phi = 2 * numeric.Atan2(z*xr/2, 2*w-1, 0)
	return phi, theta, nil
}

func (aitProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	s, c := math.Sincos(theta)
	gamma := math.Sqrt(2 / (1 + c*math.Cos(phi/2)))
	x = 2 * degPerRad * gamma * c * math.Sin(phi/2)
	y = degPerRad * gamma * s
	return x, y, nil
}
