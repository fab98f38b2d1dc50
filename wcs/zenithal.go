package wcs

import (
	"fmt"
	"math"

	"github.com/skymath/wcsproj/internal/numeric"
)

// zenithal carries the geometry shared by all zenithal (azimuthal)
// projections. The native reference point is the pole: the fiducial
// point projects to the plane origin and the radius grows with zenith
// distance. The default footprint is the hemisphere around the fiducial
// point, which in native coordinates is simply theta >= 0.
type zenithal struct{}

func (zenithal) nativeReference() (float64, float64) { return 0, math.Pi / 2 }

func (zenithal) visible(phi, theta float64) bool { return theta >= -numeric.Eps }

// planeRadius returns the radial plane coordinate in degrees.
func planeRadius(x, y float64) float64 { return math.Hypot(x, y) }

// planeAngle returns the native longitude of a plane point, with 0 as
// the conventional value at the origin where the azimuth is undefined.
func planeAngle(x, y float64) float64 { return numeric.Atan2(x, -y, 0) }

// planeXY lays a radius (degrees) out along a native longitude.
func planeXY(r, phi float64) (x, y float64) {
	s, c := math.Sincos(phi)
	return r * s, -r * c
}

// TAN, the gnomonic projection: projection from the center of the
// sphere onto the tangent plane. Only the hemisphere around the
// fiducial point has finite plane coordinates.
type tanProj struct{ zenithal }

func (tanProj) code() string    { return "TAN" }
func (tanProj) name() string    { return "gnomonic" }
func (tanProj) params() []Param { return nil }

func (tanProj) project(x, y float64) (phi, theta float64, err error) {
	r := planeRadius(x, y)
	return planeAngle(x, y), math.Atan2(degPerRad, r), nil
}

func (tanProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	s := math.Sin(theta)
	if s < numeric.Eps {
		return 0, 0, domainErrf("TAN: point at or beyond the horizon (theta=%g rad)", theta)
	}
	x, y = planeXY(degPerRad*math.Cos(theta)/s, phi)
	return x, y, nil
}

func (tanProj) visible(phi, theta float64) bool { return theta > numeric.Eps }

// STG, the stereographic projection: projection from the antipode of
// the fiducial point. Conformal; covers the whole sphere except the
// antipode itself.
type stgProj struct{ zenithal }

func (stgProj) code() string    { return "STG" }
func (stgProj) name() string    { return "stereographic" }
func (stgProj) params() []Param { return nil }

func (stgProj) project(x, y float64) (phi, theta float64, err error) {
	r := planeRadius(x, y)
	return planeAngle(x, y), math.Pi/2 - 2*math.Atan(r/(2*degPerRad)), nil
}

func (stgProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	den := 1 + math.Sin(theta)
	if den < numeric.Eps {
		return 0, 0, domainErrf("STG: antipode of the fiducial point")
	}
	x, y = planeXY(2*degPerRad*math.Cos(theta)/den, phi)
	return x, y, nil
}

func (stgProj) visible(phi, theta float64) bool { return 1+math.Sin(theta) >= numeric.Eps }

// ARC, the zenithal equidistant projection: the plane radius equals
// the zenith distance. Covers the whole sphere.
type arcProj struct{ zenithal }

func (arcProj) code() string    { return "ARC" }
func (arcProj) name() string    { return "zenithal equidistant" }
func (arcProj) params() []Param { return nil }

func (arcProj) project(x, y float64) (phi, theta float64, err error) {
	r := planeRadius(x, y)
	z := r / degPerRad
	if z > math.Pi {
		if z > math.Pi+numeric.Eps {
			return 0, 0, domainErrf("ARC: radius %g deg beyond the antipode", r)
		}
		z = math.Pi
	}
	return planeAngle(x, y), math.Pi/2 - z, nil
}

func (arcProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	x, y = planeXY(degPerRad*(math.Pi/2-theta), phi)
	return x, y, nil
}

func (arcProj) visible(phi, theta float64) bool { return true }

// ZEA, the zenithal equal-area projection. Covers the whole sphere.
type zeaProj struct{ zenithal }

func (zeaProj) code() string    { return "ZEA" }
func (zeaProj) name() string    { return "zenithal equal-area" }
func (zeaProj) params() []Param { return nil }

func (zeaProj) project(x, y float64) (phi, theta float64, err error) {
	s := planeRadius(x, y) / (2 * degPerRad)
	z := 2 * numeric.Asin(s)
	if math.IsNaN(z) {
		return 0, 0, domainErrf("ZEA: radius beyond the antipode")
	}
	return planeAngle(x, y), math.Pi/2 - z, nil
}

func (zeaProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	x, y = planeXY(2*degPerRad*math.Sin((math.Pi/2-theta)/2), phi)
	return x, y, nil
}

func (zeaProj) visible(phi, theta float64) bool { return true }

// AZP, the zenithal perspective projection: projection from a point on
// the polar axis mu sphere radii from the center, onto a plane that may
// be tilted by the slant angle gamma.
type azpProj struct {
	zenithal
	mu       float64
	gamma    float64 // radians
	tanGamma float64
	cosGamma float64
	sinGamma float64
}

func newAZP(pv paramSet) (*azpProj, error) {
	mu := pv.get(1, 0)
	gammaDeg := pv.get(2, 0)
	if numeric.AlmostEqual(mu, -1) {
		return nil, paramErrf("AZP: mu = -1 puts the projection point on the plane")
	}
	if numeric.AlmostEqual(math.Abs(gammaDeg), 90) {
		return nil, paramErrf("AZP: slant angle gamma = ±90 is degenerate")
	}
	gamma := rad(gammaDeg)
	return &azpProj{
		mu:       mu,
		gamma:    gamma,
		tanGamma: math.Tan(gamma),
		cosGamma: math.Cos(gamma),
		sinGamma: math.Sin(gamma),
	}, nil
}

func (p *azpProj) code() string { return "AZP" }
func (p *azpProj) name() string { return "zenithal perspective" }

func (p *azpProj) params() []Param {
	return []Param{
		unbounded("mu", 1, 0),
		{Name: "gamma", Index: 2, Min: -90, Max: 90, Default: 0},
	}
}

func (p *azpProj) project(x, y float64) (phi, theta float64, err error) {
	yc := y * p.cosGamma
	r := math.Hypot(x, yc)
	phi = numeric.Atan2(x, -yc, 0)

	w := degPerRad*(p.mu+1) + y*p.sinGamma
	if math.Abs(w) < numeric.Eps {
		// The perspective denominator collapsed; theta is pinned to
		// sin(theta) = -mu.
		theta = numeric.Asin(-p.mu)
		if math.IsNaN(theta) {
			return 0, 0, domainErrf("AZP: no latitude for plane point (%g, %g)", x, y)
		}
		return phi, theta, nil
	}

	hyp := math.Hypot(r, w)
	s := r * p.mu / hyp
	if s > 1 || s < -1 {
		if s > 1+numeric.Eps || s < -1-numeric.Eps {
			return 0, 0, domainErrf("AZP: plane point (%g, %g) misses the sphere", x, y)
		}
		s = math.Max(-1, math.Min(1, s))
	}
	psi := math.Atan2(w, r)
	omega := math.Asin(s)

	theta, err = pickZenithalRoot(foldLatitude(psi-omega), foldLatitude(psi+omega-math.Pi))
	if err != nil {
		return 0, 0, domainErrf("AZP: plane point (%g, %g) has no valid latitude", x, y)
	}
	return phi, theta, nil
}

func (p *azpProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	s, c := math.Sincos(theta)
	den := p.mu + s + c*math.Cos(phi)*p.tanGamma
	if math.Abs(den) < numeric.Eps {
		return 0, 0, domainErrf("AZP: singular denominator at (phi=%g, theta=%g)", phi, theta)
	}
	if !p.visible(phi, theta) {
		return 0, 0, domainErrf("AZP: point (phi=%g, theta=%g) on the far side", phi, theta)
	}
	r := degPerRad * (p.mu + 1) * c / den
	sp, cp := math.Sincos(phi)
	return r * sp, -r * cp / p.cosGamma, nil
}

func (p *azpProj) visible(phi, theta float64) bool {
	s, c := math.Sincos(theta)
	den := p.mu + s + c*math.Cos(phi)*p.tanGamma
	switch {
	case p.mu > 1:
		// External projection point: only the cap it can see.
		return s >= 1/p.mu-numeric.Eps && den > numeric.Eps
	case p.mu < -1:
		return s <= 1/p.mu+numeric.Eps && den > numeric.Eps
	default:
		return den > numeric.Eps
	}
}

// pickZenithalRoot selects between the two latitude candidates of a
// perspective solve. Candidates outside [-90, 90] (beyond tolerance)
// are discarded. With the projection point inside the sphere at most
// one candidate survives; with it outside both can, and the root
// nearest the north pole wins.
func pickZenithalRoot(t1, t2 float64) (float64, error) {
	ok1 := latInRange(t1)
	ok2 := latInRange(t2)
	switch {
	case ok1 && ok2:
		if math.Abs(t1-math.Pi/2) <= math.Abs(t2-math.Pi/2) {
			return clampLat(t1), nil
		}
		return clampLat(t2), nil
	case ok1:
		return clampLat(t1), nil
	case ok2:
		return clampLat(t2), nil
	default:
		return 0, numeric.ErrNoConvergence
	}
}

// SZP, the slant zenithal perspective projection. The projection point
// sits mu sphere radii from the center in the direction of native
// longitude phiC and latitude thetaC; the plane stays tangent at the
// pole. AZP is the special case phiC=0 with the plane tilted instead.
type szpProj struct {
	zenithal
	mu, phiC, thetaC float64 // phiC, thetaC radians
	xp, yp, zp       float64
}

func newSZP(pv paramSet) (*szpProj, error) {
	mu := pv.get(1, 0)
	phiC := rad(pv.get(2, 0))
	thetaC := rad(pv.get(3, 90))
	sp, cp := math.Sincos(phiC)
	st, ct := math.Sincos(thetaC)
	zp := mu*st + 1
	if math.Abs(zp) < numeric.Eps {
		return nil, paramErrf("SZP: mu*sin(thetaC) = -1 puts the projection point in the plane")
	}
	return &szpProj{
		mu: mu, phiC: phiC, thetaC: thetaC,
		xp: -mu * ct * sp,
		yp: mu * ct * cp,
		zp: zp,
	}, nil
}

func (p *szpProj) code() string { return "SZP" }
func (p *szpProj) name() string { return "slant zenithal perspective" }

func (p *szpProj) params() []Param {
	return []Param{
		unbounded("mu", 1, 0),
		{Name: "phiC", Index: 2, Min: -180, Max: 180, Default: 0},
		{Name: "thetaC", Index: 3, Min: -90, Max: 90, Default: 90},
	}
}

func (p *szpProj) project(x, y float64) (phi, theta float64, err error) {
	xr := x / degPerRad
	yr := y / degPerRad

	a := xr*(p.zp-1) + p.xp
	b := xr - p.xp
	cc := -yr*(p.zp-1) - p.yp
	d := p.yp - yr

	z, err := numeric.QuadraticNearest(b*b+d*d+1, 2*(a*b+cc*d), a*a+cc*cc-1, 0)
	if err != nil {
		return 0, 0, domainErrf("SZP: plane point (%g, %g) misses the sphere", x, y)
	}
	s := math.Cos(z) // sin(theta)
	theta = math.Pi/2 - z
	phi = numeric.Atan2(a+b*s, cc+d*s, 0)
	return phi, theta, nil
}

func (p *szpProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	s, c := math.Sincos(theta)
	den := p.zp - (1 - s)
	if math.Abs(den) < numeric.Eps {
		return 0, 0, domainErrf("SZP: singular denominator at (phi=%g, theta=%g)", phi, theta)
	}
	if !p.visible(phi, theta) {
		return 0, 0, domainErrf("SZP: point (phi=%g, theta=%g) on the far side", phi, theta)
	}
	sp, cp := math.Sincos(phi)
	x = degPerRad * (c*sp - p.xp*(1-s)) / den
	y = -degPerRad * (c*cp + p.yp*(1-s)) / den
	return x, y, nil
}

// visible applies the three-part test: the perspective denominator must
// be nonzero, the latitude must sit on the near side of the projection
// point (den > 0), and the point must lie on the nearest-pole branch of
// the two sphere intersections (the fold condition).
func (p *szpProj) visible(phi, theta float64) bool {
	s, c := math.Sincos(theta)
	den := p.zp - (1 - s)
	if math.Abs(den) < numeric.Eps {
		return false
	}
	if den < 0 {
		return false
	}
	sp, cp := math.Sincos(phi)
	fold := s*den + c*c - c*p.zp*(p.xp*sp-p.yp*cp)
	return fold >= -numeric.Eps
}

// SIN, the slant orthographic projection: parallel projection onto the
// tangent plane, with the NCP generalization through the obliqueness
// parameters xi and eta.
type sinProj struct {
	zenithal
	xi, eta float64
}

func newSIN(pv paramSet) (*sinProj, error) {
	return &sinProj{xi: pv.get(1, 0), eta: pv.get(2, 0)}, nil
}

func (p *sinProj) code() string { return "SIN" }
func (p *sinProj) name() string { return "slant orthographic" }

func (p *sinProj) params() []Param {
	return []Param{
		unbounded("xi", 1, 0),
		unbounded("eta", 2, 0),
	}
}

func (p *sinProj) project(x, y float64) (phi, theta float64, err error) {
	xr := x / degPerRad
	yr := y / degPerRad

	a := xr - p.xi
	cc := p.eta - yr

	z, err := numeric.QuadraticNearest(
		p.xi*p.xi+p.eta*p.eta+1,
		2*(a*p.xi-cc*p.eta),
		a*a+cc*cc-1,
		0)
	if err != nil {
		return 0, 0, domainErrf("SIN: plane point (%g, %g) misses the sphere", x, y)
	}
	s := math.Cos(z) // sin(theta)
	theta = math.Pi/2 - z
	phi = numeric.Atan2(a+p.xi*s, cc-p.eta*s, 0)
	return phi, theta, nil
}

func (p *sinProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	if !p.visible(phi, theta) {
		return 0, 0, domainErrf("SIN: point (phi=%g, theta=%g) on the far side", phi, theta)
	}
	s, c := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	x = degPerRad * (c*sp + p.xi*(1-s))
	y = -degPerRad * (c*cp - p.eta*(1-s))
	return x, y, nil
}

// visible is the fold condition of the orthographic quadratic: the
// point must be on the branch nearest the pole. For xi = eta = 0 it
// reduces to the visible hemisphere theta >= 0.
func (p *sinProj) visible(phi, theta float64) bool {
	s, c := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	return s+c*(p.xi*sp-p.eta*cp) >= -numeric.Eps
}

// ZPN, the zenithal polynomial projection: the plane radius is an
// arbitrary polynomial in the zenith distance. The plane-to-sphere
// direction roots that polynomial; degree 1 and 2 use closed forms and
// higher degrees bisect up to the polynomial's first maximum, which is
// located once at construction.
type zpnProj struct {
	zenithal
	coeffs []float64
	zMax   float64 // upper bracket: first maximum of the polynomial on [0, π]
	rMax   float64
}

// maxZPNCoeffs is the FITS limit of PV slots carrying ZPN coefficients.
const maxZPNCoeffs = 30

func newZPN(pv paramSet) (*zpnProj, error) {
	n := -1
	for i := 0; i < maxZPNCoeffs; i++ {
		if pv.has(i) {
			n = i
		}
	}
	if n < 0 {
		return nil, paramErrf("ZPN: no polynomial coefficients supplied")
	}
	coeffs := make([]float64, n+1)
	for i := range coeffs {
		coeffs[i] = pv.get(i, 0)
	}
	if numeric.Degree(coeffs) < 1 {
		return nil, paramErrf("ZPN: polynomial needs at least one nonzero non-constant coefficient")
	}

	p := &zpnProj{coeffs: coeffs, zMax: math.Pi}
	d := numeric.Derivative(coeffs)
	const step = math.Pi / 180
	for i := 1; i <= 180; i++ {
		z := float64(i) * step
		if numeric.Horner(d, z) < 0 {
			lo := z - step
			root, err := numeric.Bisect(func(zz float64) float64 {
				return numeric.Horner(d, zz)
			}, lo, z, 100, 1e-13)
			if err != nil {
				root = lo
			}
			p.zMax = root
			break
		}
	}
	if p.zMax < step/2 {
		return nil, paramErrf("ZPN: polynomial is decreasing at the pole")
	}
	p.rMax = numeric.Horner(coeffs, p.zMax)
	return p, nil
}

func (p *zpnProj) code() string { return "ZPN" }
func (p *zpnProj) name() string { return "zenithal polynomial" }

func (p *zpnProj) params() []Param {
	ps := make([]Param, len(p.coeffs))
	for i := range p.coeffs {
		ps[i] = unbounded(fmt.Sprintf("P%d", i), i, 0)
	}
	return ps
}

func (p *zpnProj) project(x, y float64) (phi, theta float64, err error) {
	target := planeRadius(x, y) / degPerRad
	if target > p.rMax+numeric.Eps {
		return 0, 0, domainErrf("ZPN: radius %g deg beyond the polynomial maximum", planeRadius(x, y))
	}
	z, err := numeric.SolvePoly(p.coeffs, target, 0, p.zMax)
	if err != nil {
		return 0, 0, domainErrf("ZPN: no zenith distance for radius %g deg (%v)", planeRadius(x, y), err)
	}
	return planeAngle(x, y), math.Pi/2 - z, nil
}

func (p *zpnProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	z := math.Pi/2 - theta
	if z > p.zMax+numeric.Eps {
		return 0, 0, domainErrf("ZPN: zenith distance %g rad beyond the invertible branch", z)
	}
	x, y = planeXY(degPerRad*numeric.Horner(p.coeffs, z), phi)
	return x, y, nil
}

func (p *zpnProj) visible(phi, theta float64) bool {
	return math.Pi/2-theta <= p.zMax+numeric.Eps
}

// AIR, the Airy projection: minimizes mean squared plane distortion
// inside the boundary zenith distance set by thetaB. The radius is
// transcendental in theta, so the plane-to-sphere direction bisects.
// For boundary latitudes near the south pole the radius peaks partway
// down the sphere instead of growing without bound, so only the branch
// between the north pole and that first maximum is kept.
type airProj struct {
	zenithal
	thetaB   float64 // radians
	aCoef    float64 // asymptotic boundary constant
	thetaMin float64 // lowest latitude on the invertible branch
	rMax     float64 // radius at thetaMin, degrees
}

func newAIR(pv paramSet) (*airProj, error) {
	thetaBDeg := pv.get(1, 90)
	if thetaBDeg < -90 || thetaBDeg > 90 {
		return nil, paramErrf("AIR: boundary latitude %g outside [-90, 90]", thetaBDeg)
	}
	thetaB := rad(thetaBDeg)
	xiB := (math.Pi/2 - thetaB) / 2

	// The boundary constant ln(cos xiB)/tan²(xiB) is 0/0 at both ends
	// of its range and needs its limits there.
	var a float64
	switch {
	case xiB < numeric.Eps: // thetaB = 90
		a = -0.5
	case math.Pi/2-xiB < numeric.Eps: // thetaB = -90
		a = 0
	default:
		t := math.Tan(xiB)
		a = math.Log(math.Cos(xiB)) / (t * t)
	}
	p := &airProj{thetaB: thetaB, aCoef: a, thetaMin: -math.Pi / 2, rMax: math.Inf(1)}

	// Locate the first radius maximum moving away from the pole, if
	// any. Like ZPN, everything beyond it is unreachable: visible,
	// project and projectInverse all stop at the same bound.
	const step = math.Pi / 180
	const h = 1e-6
	slope := func(t float64) float64 { return p.radius(t+h) - p.radius(t-h) }
	for i := 1; i < 180; i++ {
		t := math.Pi/2 - float64(i)*step
		if slope(t) > 0 {
			root, err := numeric.Bisect(slope, t, t+step, 100, 1e-13)
			if err != nil {
				root = t + step
			}
			p.thetaMin = root
			p.rMax = p.radius(root)
			break
		}
	}
	return p, nil
}

func (p *airProj) code() string { return "AIR" }
func (p *airProj) name() string { return "Airy" }

func (p *airProj) params() []Param {
	return []Param{{Name: "thetaB", Index: 1, Min: -90, Max: 90, Default: 90}}
}

// radius returns the Airy plane radius in degrees, +Inf at the
// antipode.
func (p *airProj) radius(theta float64) float64 {
	xi := (math.Pi/2 - theta) / 2
	if xi < numeric.Eps {
		return 0
	}
	cosXi := math.Cos(xi)
	if cosXi < numeric.Eps {
		return math.Inf(1)
	}
	t := math.Tan(xi)
	return -2 * degPerRad * (math.Log(cosXi)/t + p.aCoef*t)
}

func (p *airProj) project(x, y float64) (phi, theta float64, err error) {
	r := planeRadius(x, y)
	if r < numeric.Eps {
		return planeAngle(x, y), math.Pi / 2, nil
	}
	if r > p.rMax {
		if r > p.rMax+numeric.Eps {
			return 0, 0, domainErrf("AIR: radius %g deg beyond the invertible branch", r)
		}
		r = p.rMax
	}
	theta, err = numeric.Bisect(func(t float64) float64 {
		return p.radius(t) - r
	}, p.thetaMin, math.Pi/2, 100, 1e-13)
	if err != nil {
		return 0, 0, domainErrf("AIR: no latitude for radius %g deg (%v)", r, err)
	}
	return planeAngle(x, y), theta, nil
}

func (p *airProj) projectInverse(phi, theta float64) (x, y float64, err error) {
	if theta < p.thetaMin-numeric.Eps {
		return 0, 0, domainErrf("AIR: latitude %g rad below the invertible branch", theta)
	}
	r := p.radius(theta)
	if math.IsInf(r, 0) {
		return 0, 0, domainErrf("AIR: antipode of the fiducial point")
	}
	x, y = planeXY(r, phi)
	return x, y, nil
}

func (p *airProj) visible(phi, theta float64) bool {
	return theta >= p.thetaMin-numeric.Eps && !math.IsInf(p.radius(theta), 1)
}
