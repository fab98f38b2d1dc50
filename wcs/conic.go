package wcs

import (
	"math"

	"github.com/skymath/wcsproj/internal/numeric"
)

// conic carries the machinery shared by the conic projections. The two
// standard parallels are supplied as their mean thetaA and half
// difference eta; the native reference latitude is thetaA. Concrete
// projections contribute the cone constant c, the plane offset y0 and
// the radius law. Plane coordinates follow x = R·sin(c·phi),
// y = y0 - R·cos(c·phi), with R negative for southern cones.
type conic struct {
	thetaA, eta    float64 // radians
	theta1, theta2 float64
	c              float64
	y0             float64
}

func newConicBase(pv paramSet, code string) (conic, error) {
	thetaADeg := pv.get(1, 0)
	etaDeg := pv.get(2, 0)
	if thetaADeg < -90 || thetaADeg > 90 {
		return conic{}, paramErrf("%s: mean parallel %g outside [-90, 90]", code, thetaADeg)
	}
	theta1 := thetaADeg - etaDeg
	theta2 := thetaADeg + etaDeg
	if theta1 < -90 || theta1 > 90 || theta2 < -90 || theta2 > 90 {
		return conic{}, paramErrf("%s: standard parallels (%g, %g) outside [-90, 90]", code, theta1, theta2)
	}
	return conic{
		thetaA: rad(thetaADeg),
		eta:    rad(etaDeg),
		theta1: rad(theta1),
		theta2: rad(theta2),
	}, nil
}

func (c conic) nativeReference() (float64, float64) { return 0, c.thetaA }

func (c conic) visible(phi, theta float64) bool { return true }

func (c conic) conicParams() []Param {
	return []Param{
		{Name: "thetaA", Index: 1, Min: -90, Max: 90, Default: 0},
		{Name: "eta", Index: 2, Min: -90, Max: 90, Default: 0},
	}
}

// toPlane lays a signed radius (degrees) out along the scaled native
// longitude.
func (c conic) toPlane(phi, r float64) (x, y float64) {
	s, co := math.Sincos(c.c * phi)
	return r * s, c.y0 - r*co
}

// fromPlane recovers the native longitude and the signed radius.
func (c conic) fromPlane(x, y float64) (phi, r float64) {
	dy := c.y0 - y
	r = math.Hypot(x, dy)
	if c.c < 0 {
		r = -r
	}
	if r == 0 {
		return 0, 0
	}
	return numeric.Atan2(x/r, dy/r, 0) / c.c, r
}

// COP, the conic perspective projection.
type copProj struct {
	conic
	cosEta float64
	cotA   float64
}

func newCOP(pv paramSet) (*copProj, error) {
	base, err := newConicBase(pv, "COP")
	if err != nil {
		return nil, err
	}
	sinA, cosA := math.Sincos(base.thetaA)
	if math.Abs(sinA) < numeric.Eps {
		return nil, paramErrf("COP: mean parallel on the equator degenerates the cone")
	}
	p := &copProj{conic: base, cosEta: math.Cos(base.eta), cotA: cosA / sinA}
	p.c = sinA
	p.y0 = degPerRad * p.cosEta * p.cotA
	return p, nil
}

func (p *copProj) code() string    { return "COP" }
func (p *copProj) name() string    { return "conic perspective" }
func (p *copProj) params() []Param { return p.conicParams() }

func (p *copProj) project(x, y float64) (phi, theta float64, err error) {
	phi, r := p.fromPlane(x, y)
	theta = p.thetaA + math.Atan(p.cotA-r/(degPerRad*p.cosEta))
	if !latInRange(theta) {
		return 0, 0, domainErrf("COP: plane point (%g, %g) beyond the pole", x, y)
	}
	return phi, clampLat(theta), nil
}

func (p *copProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	d := theta - p.thetaA
	if math.Cos(d) < numeric.Eps {
		return 0, 0, domainErrf("COP: theta %g rad is 90 deg from the standard parallels", theta)
	}
	r := degPerRad * p.cosEta * (p.cotA - math.Tan(d))
	x, y = p.toPlane(phi, r)
	return x, y, nil
}

// COE, the conic equal-area projection.
type coeProj struct {
	conic
	gamma float64 // sin(theta1) + sin(theta2)
	s12   float64 // 1 + sin(theta1)·sin(theta2)
}

func newCOE(pv paramSet) (*coeProj, error) {
	base, err := newConicBase(pv, "COE")
	if err != nil {
		return nil, err
	}
	s1 := math.Sin(base.theta1)
	s2 := math.Sin(base.theta2)
	gamma := s1 + s2
	if math.Abs(gamma) < numeric.Eps {
		return nil, paramErrf("COE: opposite standard parallels degenerate the cone")
	}
	p := &coeProj{conic: base, gamma: gamma, s12: 1 + s1*s2}
	p.c = gamma / 2
	p.y0 = p.radius(base.thetaA)
	return p, nil
}

func (p *coeProj) radius(theta float64) float64 {
	t := p.s12 - p.gamma*math.Sin(theta)
	if t < 0 {
		t = 0
	}
	return 2 * degPerRad * math.Sqrt(t) / p.gamma
}

func (p *coeProj) code() string    { return "COE" }
func (p *coeProj) name() string    { return "conic equal-area" }
func (p *coeProj) params() []Param { return p.conicParams() }

func (p *coeProj) project(x, y float64) (phi, theta float64, err error) {
	phi, r := p.fromPlane(x, y)
	w := r * p.gamma / (2 * degPerRad)
	theta = numeric.Asin((p.s12 - w*w) / p.gamma)
	if math.IsNaN(theta) {
		return 0, 0, domainErrf("COE: plane point (%g, %g) outside the cone", x, y)
	}
	return phi, theta, nil
}

func (p *coeProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	x, y = p.toPlane(phi, p.radius(theta))
	return x, y, nil
}

// COD, the conic equidistant projection.
type codProj struct {
	conic
	t float64 // eta·cot(eta)·cot(thetaA)
}

func newCOD(pv paramSet) (*codProj, error) {
	base, err := newConicBase(pv, "COD")
	if err != nil {
		return nil, err
	}
	sinA, cosA := math.Sincos(base.thetaA)
	var c float64
	if numeric.AlmostEqual(base.eta, 0) {
		// Single standard parallel: the eta terms reduce to their
		// limits and the constant matches the one-parallel cone.
		c = sinA
	} else {
		c = sinA * math.Sin(base.eta) / base.eta
	}
	if math.Abs(c) < numeric.Eps {
		return nil, paramErrf("COD: mean parallel on the equator degenerates the cone")
	}
	p := &codProj{conic: base}
	p.c = c
	if numeric.AlmostEqual(base.eta, 0) {
		p.t = cosA / sinA
	} else {
		p.t = base.eta * (math.Cos(base.eta) / math.Sin(base.eta)) * (cosA / sinA)
	}
	p.y0 = degPerRad * p.t
	return p, nil
}

func (p *codProj) code() string    { return "COD" }
func (p *codProj) name() string    { return "conic equidistant" }
func (p *codProj) params() []Param { return p.conicParams() }

func (p *codProj) project(x, y float64) (phi, theta float64, err error) {
	phi, r := p.fromPlane(x, y)
	theta = p.thetaA + p.t - r/degPerRad
	if !latInRange(theta) {
		return 0, 0, domainErrf("COD: plane point (%g, %g) beyond the pole", x, y)
	}
	return phi, clampLat(theta), nil
}

func (p *codProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	r := degPerRad * (p.t + p.thetaA - theta)
	x, y = p.toPlane(phi, r)
	return x, y, nil
}

// COO, the conic orthomorphic (conformal) projection.
type cooProj struct {
	conic
	psi float64 // radius scale, degrees
}

func newCOO(pv paramSet) (*cooProj, error) {
	base, err := newConicBase(pv, "COO")
	if err != nil {
		return nil, err
	}
	cos1 := math.Cos(base.theta1)
	cos2 := math.Cos(base.theta2)
	if cos1 < numeric.Eps || cos2 < numeric.Eps {
		return nil, paramErrf("COO: standard parallel at a pole")
	}
	t1 := math.Tan((math.Pi/2 - base.theta1) / 2)
	t2 := math.Tan((math.Pi/2 - base.theta2) / 2)
	var c float64
	if numeric.AlmostEqual(base.theta1, base.theta2) {
		c = math.Sin(base.theta1)
	} else {
		c = math.Log(cos2/cos1) / math.Log(t2/t1)
	}
	if math.Abs(c) < numeric.Eps {
		return nil, paramErrf("COO: opposite standard parallels degenerate the cone")
	}
	p := &cooProj{conic: base}
	p.c = c
	p.psi = degPerRad * cos1 / (c * math.Pow(t1, c))
	p.y0 = p.psi * math.Pow(math.Tan((math.Pi/2-base.thetaA)/2), c)
	return p, nil
}

func (p *cooProj) code() string    { return "COO" }
func (p *cooProj) name() string    { return "conic orthomorphic" }
func (p *cooProj) params() []Param { return p.conicParams() }

func (p *cooProj) project(x, y float64) (phi, theta float64, err error) {
	phi, r := p.fromPlane(x, y)
	t := r / p.psi
	if t <= 0 {
		if math.Abs(t) < numeric.Eps {
			return phi, math.Pi / 2, nil
		}
		return 0, 0, domainErrf("COO: plane point (%g, %g) on the wrong side of the apex", x, y)
	}
	z := 2 * math.Atan(math.Pow(t, 1/p.c))
	return phi, math.Pi/2 - z, nil
}

func (p *cooProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	tz := math.Tan((math.Pi/2 - theta) / 2)
	r := p.psi * math.Pow(tz, p.c)
	if math.IsInf(r, 0) {
		return 0, 0, domainErrf("COO: pole is infinitely far at theta=%g rad", theta)
	}
	x, y = p.toPlane(phi, r)
	return x, y, nil
}
