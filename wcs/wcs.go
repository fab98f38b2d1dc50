// Package wcs implements the spherical map projections of the FITS
// World Coordinate System standard (Calabretta & Greisen 2002, A&A 395,
// 1077). It converts between projection-plane coordinates and celestial
// longitude/latitude for the zenithal, cylindrical, conic and polyconic
// projection families.
//
// Plane coordinates (x, y) are in degrees, the FITS intermediate world
// coordinate convention. Celestial longitudes and latitudes cross the
// public API in degrees; native spherical coordinates (phi, theta) are
// radians, with phi normalized into (-π, π].
//
// A Projection is immutable after construction and safe for concurrent
// use: every conversion is a pure read. Header parsing is not handled
// here; callers supply the fiducial point and the PV parameters as
// already-parsed numbers.
package wcs

import (
	"fmt"
	"math"
	"strings"
)

// degPerRad converts radians to the degree-valued plane coordinates.
const degPerRad = 180 / math.Pi

func rad(d float64) float64 { return d * (math.Pi / 180) }
func deg(r float64) float64 { return r * degPerRad }

// projector is the per-geometry core of a projection: the pure
// plane<->native-sphere mapping plus its validity predicate and
// parameter metadata. One implementation exists per FITS code.
type projector interface {
	code() string
	name() string

	// project converts plane coordinates (degrees) to native spherical
	// coordinates (radians).
	project(x, y float64) (phi, theta float64, err error)

	// projectInverse converts native spherical coordinates (radians) to
	// plane coordinates (degrees).
	projectInverse(phi, theta float64) (x, y float64, err error)

	// visible reports whether a native coordinate lies inside the
	// projection's footprint. It matches exactly the domain boundary
	// enforced by project and projectInverse.
	visible(phi, theta float64) bool

	params() []Param

	// nativeReference returns (phi0, theta0), the native coordinates of
	// the fiducial point fixed by the projection's family.
	nativeReference() (phi0, theta0 float64)
}

// Projection converts between projection-plane coordinates and
// celestial coordinates for one FITS projection code.
type Projection struct {
	p   projector
	rot rotator

	lon0, lat0 float64 // fiducial point, radians
}

// Option adjusts the construction of a Projection.
type Option func(*projConfig)

type projConfig struct {
	lonPole    float64 // radians
	hasLonPole bool
	latPole    float64 // radians
}

// WithLonPole overrides the native longitude of the celestial pole
// (the LONPOLE convention), in degrees. Without it the default is 0 for
// a fiducial latitude at or above the native reference latitude and 180
// otherwise.
func WithLonPole(deg float64) Option {
	return func(c *projConfig) {
		c.lonPole = rad(deg)
		c.hasLonPole = true
	}
}

// WithLatPole sets the preferred native-pole latitude (the LATPOLE
// convention), in degrees. It only matters when the native-pole
// computation has two admissible solutions; the one nearer this value
// is chosen. The default is +90.
func WithLatPole(deg float64) Option {
	return func(c *projConfig) {
		c.latPole = rad(deg)
	}
}

// New builds a projection for the given FITS code with its fiducial
// point (celestial longitude and latitude, degrees) and PV parameters
// keyed by slot index. Construction validates every parameter against
// its projection-specific domain and fails before any instance exists.
func New(code string, lon0, lat0 float64, pv map[int]float64, opts ...Option) (*Projection, error) {
	p, err := newProjector(strings.ToUpper(strings.TrimSpace(code)), paramSet(pv))
	if err != nil {
		return nil, err
	}

	cfg := projConfig{latPole: math.Pi / 2}
	for _, opt := range opts {
		opt(&cfg)
	}

	phi0, theta0 := p.nativeReference()
	lat0r := rad(lat0)
	if !cfg.hasLonPole {
		if lat0r >= theta0 {
			cfg.lonPole = phi0
		} else {
			cfg.lonPole = phi0 + math.Pi
		}
	}

	rot, err := newRotator(rad(lon0), lat0r, phi0, theta0, cfg.lonPole, cfg.latPole)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.code(), err)
	}
	return &Projection{p: p, rot: rot, lon0: rad(lon0), lat0: lat0r}, nil
}

// Code returns the three-letter FITS projection code.
func (pr *Projection) Code() string { return pr.p.code() }

// Name returns the projection's descriptive name.
func (pr *Projection) Name() string { return pr.p.name() }

// Params returns the projection's parameter metadata: display name,
// FITS PV slot, valid interval and default.
func (pr *Projection) Params() []Param { return pr.p.params() }

// Reference returns the fiducial point in degrees.
func (pr *Projection) Reference() (lon, lat float64) {
	return deg(pr.lon0), deg(pr.lat0)
}

// NativePole returns the celestial position of the native pole in
// degrees, the derived value the rotation is built on.
func (pr *Projection) NativePole() (lon, lat float64) {
	return deg(pr.rot.alphaP), deg(pr.rot.deltaP)
}

// ToSky converts plane coordinates (degrees) to celestial longitude and
// latitude (degrees). Per-point failures wrap ErrDomain.
func (pr *Projection) ToSky(x, y float64) (lon, lat float64, err error) {
	phi, theta, err := pr.p.project(x, y)
	if err != nil {
		return 0, 0, err
	}
	alpha, delta := pr.rot.toCelestial(phi, theta)
	return deg(alpha), deg(delta), nil
}

// FromSky converts celestial longitude and latitude (degrees) to plane
// coordinates (degrees). The longitude is normalized before use.
func (pr *Projection) FromSky(lon, lat float64) (x, y float64, err error) {
	phi, theta := pr.rot.toNative(rad(lon), rad(lat))
	return pr.p.projectInverse(phi, theta)
}

// Project converts plane coordinates (degrees) to native spherical
// coordinates (radians).
func (pr *Projection) Project(x, y float64) (phi, theta float64, err error) {
	return pr.p.project(x, y)
}

// ProjectInverse converts native spherical coordinates (radians) to
// plane coordinates (degrees).
func (pr *Projection) ProjectInverse(phi, theta float64) (x, y float64, err error) {
	return pr.p.projectInverse(phi, theta)
}

// Visible reports whether the celestial position (degrees) lies inside
// the projection's footprint. Graticule-drawing callers use it to
// decide whether a point can be rendered at all; it matches exactly the
// boundary enforced by FromSky.
func (pr *Projection) Visible(lon, lat float64) bool {
	phi, theta := pr.rot.toNative(rad(lon), rad(lat))
	return pr.p.visible(phi, theta)
}

// Codes lists the supported projection codes. The set is closed: adding
// a projection means extending newProjector and this list together.
func Codes() []string {
	return []string{
		"AZP", "SZP", "TAN", "STG", "SIN", "ARC", "ZPN", "ZEA", "AIR",
		"CYP", "CEA", "CAR", "MER", "SFL", "PAR", "MOL", "AIT",
		"COP", "COE", "COD", "COO",
		"BON", "PCO",
	}
}

func newProjector(code string, pv paramSet) (projector, error) {
	switch code {
	case "AZP":
		return newAZP(pv)
	case "SZP":
		return newSZP(pv)
	case "TAN":
		return tanProj{}, nil
	case "STG":
		return stgProj{}, nil
	case "SIN":
		return newSIN(pv)
	case "ARC":
		return arcProj{}, nil
	case "ZPN":
		return newZPN(pv)
	case "ZEA":
		return zeaProj{}, nil
	case "AIR":
		return newAIR(pv)
	case "CYP":
		return newCYP(pv)
	case "CEA":
		return newCEA(pv)
	case "CAR":
		return carProj{}, nil
	case "MER":
		return merProj{}, nil
	case "SFL":
		return sflProj{}, nil
	case "PAR":
		return parProj{}, nil
	case "MOL":
		return molProj{}, nil
	case "AIT":
		return aitProj{}, nil
	case "COP":
		return newCOP(pv)
	case "COE":
		return newCOE(pv)
	case "COD":
		return newCOD(pv)
	case "COO":
		return newCOO(pv)
	case "BON":
		return newBON(pv)
	case "PCO":
		return pcoProj{}, nil
	default:
		return nil, paramErrf("unknown projection code %q", code)
	}
}
