package wcs

import (
	"errors"
	"math"
	"testing"
)

// testConfigs pairs every projection code with parameters and a
// fiducial point that make it well defined.
var testConfigs = []struct {
	code string
	lat0 float64
	pv   map[int]float64
}{
	{"AZP", 60, map[int]float64{1: 2.5, 2: 30}},
	{"SZP", 60, map[int]float64{1: 2, 2: 30, 3: 60}},
	{"TAN", -35, nil},
	{"STG", 40, nil},
	{"SIN", 50, map[int]float64{1: 0.05, 2: -0.03}},
	{"ARC", 45, nil},
	{"ZPN", 30, map[int]float64{0: 0, 1: 1, 3: 0.1}},
	{"ZEA", -50, nil},
	{"AIR", 30, map[int]float64{1: 45}},
	{"CYP", 0, map[int]float64{1: 1, 2: 1}},
	{"CEA", 20, map[int]float64{1: 0.75}},
	{"CAR", 30, nil},
	{"MER", 10, nil},
	{"SFL", -45, nil},
	{"PAR", 15, nil},
	{"MOL", 25, nil},
	{"AIT", 0, nil},
	{"COP", 45, map[int]float64{1: 45, 2: 15}},
	{"COE", -30, map[int]float64{1: -30, 2: 20}},
	{"COD", 45, map[int]float64{1: 45, 2: 20}},
	{"COO", 45, map[int]float64{1: 45, 2: 20}},
	{"BON", 30, map[int]float64{1: 45}},
	{"PCO", 25, nil},
}

func TestCodesCovered(t *testing.T) {
	if len(Codes()) != len(testConfigs) {
		t.Fatalf("Codes() lists %d projections, test table has %d", len(Codes()), len(testConfigs))
	}
	have := make(map[string]bool)
	for _, cfg := range testConfigs {
		have[cfg.code] = true
	}
	for _, c := range Codes() {
		if !have[c] {
			t.Errorf("code %s missing from the test table", c)
		}
	}
}

func TestPlateCarreeIdentity(t *testing.T) {
	p, err := New("CAR", 0, 0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	phi, theta, err := p.Project(45, 30)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if math.Abs(phi-0.785398) > 1e-6 || math.Abs(theta-0.523599) > 1e-6 {
		t.Errorf("Project(45, 30) = (%.6f, %.6f), want (0.785398, 0.523599)", phi, theta)
	}
}

func TestNativeRoundTrip(t *testing.T) {
	phis := []float64{-150, -90, -30, 0, 60, 120, 180}
	thetas := []float64{-85, -60, -30, 0, 30, 60, 85}

	for _, cfg := range testConfigs {
		t.Run(cfg.code, func(t *testing.T) {
			pr, err := New(cfg.code, 0, cfg.lat0, cfg.pv)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			checked := 0
			for _, phiDeg := range phis {
				for _, thetaDeg := range thetas {
					phi, theta := rad(phiDeg), rad(thetaDeg)
					if !pr.p.visible(phi, theta) {
						continue
					}
					x, y, err := pr.ProjectInverse(phi, theta)
					if err != nil {
						// Permissive footprints still have singular
						// parallels (conic far side, Mercator pole).
						continue
					}
					gotPhi, gotTheta, err := pr.Project(x, y)
					if err != nil {
						t.Errorf("Project(%g, %g) after inverse of (%g, %g) deg: %v",
							x, y, phiDeg, thetaDeg, err)
						continue
					}
					if math.Abs(normalizePhi(gotPhi-phi)) > 1e-9 || math.Abs(gotTheta-theta) > 1e-9 {
						t.Errorf("round trip (%g, %g) deg: got (%.9g, %.9g) deg",
							phiDeg, thetaDeg, deg(gotPhi), deg(gotTheta))
					}
					checked++
				}
			}
			if checked < 10 {
				t.Errorf("only %d grid points round-tripped, footprint too small", checked)
			}
		})
	}
}

func TestFiducialMapsToPlaneOrigin(t *testing.T) {
	const lon0 = 120.0

	for _, cfg := range testConfigs {
		t.Run(cfg.code, func(t *testing.T) {
			pr, err := New(cfg.code, lon0, cfg.lat0, cfg.pv)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			x, y, err := pr.FromSky(lon0, cfg.lat0)
			if err != nil {
				t.Fatalf("FromSky(fiducial): %v", err)
			}
			if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
				t.Errorf("fiducial point maps to (%g, %g), want plane origin", x, y)
			}

			lon, lat, err := pr.ToSky(0, 0)
			if err != nil {
				t.Fatalf("ToSky(0, 0): %v", err)
			}
			if lonDiff(lon, lon0, lat) > 1e-6 || math.Abs(lat-cfg.lat0) > 1e-6 {
				t.Errorf("plane origin maps to (%g, %g), want (%g, %g)", lon, lat, lon0, cfg.lat0)
			}
		})
	}
}

// lonDiff folds a longitude difference and discounts it entirely at
// the poles, where longitude is degenerate.
func lonDiff(a, b, lat float64) float64 {
	if math.Abs(lat) > 90-1e-9 {
		return 0
	}
	d := math.Abs(math.Mod(a-b, 360))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func TestSkyRoundTrip(t *testing.T) {
	for _, cfg := range testConfigs {
		t.Run(cfg.code, func(t *testing.T) {
			pr, err := New(cfg.code, 75, cfg.lat0, cfg.pv)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			checked := 0
			for lon := 0.0; lon < 360; lon += 40 {
				for lat := -80.0; lat <= 80; lat += 20 {
					if !pr.Visible(lon, lat) {
						continue
					}
					x, y, err := pr.FromSky(lon, lat)
					if err != nil {
						continue
					}
					gotLon, gotLat, err := pr.ToSky(x, y)
					if err != nil {
						t.Errorf("ToSky after FromSky(%g, %g): %v", lon, lat, err)
						continue
					}
					if lonDiff(gotLon, lon, lat) > 1e-8 || math.Abs(gotLat-lat) > 1e-8 {
						t.Errorf("sky round trip (%g, %g): got (%.9g, %.9g)", lon, lat, gotLon, gotLat)
					}
					checked++
				}
			}
			if checked < 10 {
				t.Errorf("only %d sky points round-tripped", checked)
			}
		})
	}
}

func TestGnomonicPole(t *testing.T) {
	p, err := New("TAN", 0, 90, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	phi, theta, err := p.Project(0, 0)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if phi != 0 || math.Abs(theta-math.Pi/2) > 1e-12 {
		t.Errorf("Project(0, 0) = (%g, %g), want (0, pi/2)", phi, theta)
	}
}

func TestZenithalAzimuthConvention(t *testing.T) {
	// A point straight down the plane (x=0, y<0) sits at native
	// longitude 0; straight up at 180.
	p, err := New("ARC", 0, 90, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	phi, theta, err := p.Project(0, -30)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if math.Abs(phi) > 1e-12 || math.Abs(deg(theta)-60) > 1e-9 {
		t.Errorf("Project(0, -30) = (%g, %g deg), want (0, 60 deg)", phi, deg(theta))
	}
	phi, _, err = p.Project(0, 30)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if math.Abs(deg(phi)-180) > 1e-9 {
		t.Errorf("Project(0, 30) phi = %g deg, want 180", deg(phi))
	}
}

func TestZPNDegreeOneMatchesEquidistant(t *testing.T) {
	// P0=0, P1=1 makes the polynomial radius the zenith distance.
	zpn, err := New("ZPN", 0, 90, map[int]float64{0: 0, 1: 1})
	if err != nil {
		t.Fatalf("New(ZPN): %v", err)
	}
	arc, err := New("ARC", 0, 90, nil)
	if err != nil {
		t.Fatalf("New(ARC): %v", err)
	}

	for _, pt := range [][2]float64{{0, -30}, {45, 45}, {-60, 10}, {120, -80}} {
		p1, t1, err := zpn.Project(pt[0], pt[1])
		if err != nil {
			t.Fatalf("ZPN Project(%v): %v", pt, err)
		}
		p2, t2, err := arc.Project(pt[0], pt[1])
		if err != nil {
			t.Fatalf("ARC Project(%v): %v", pt, err)
		}
		if math.Abs(p1-p2) > 1e-12 || math.Abs(t1-t2) > 1e-12 {
			t.Errorf("ZPN(%v) = (%g, %g), ARC = (%g, %g)", pt, p1, t1, p2, t2)
		}
	}
}

func TestAiryFullBoundaryNearEquidistant(t *testing.T) {
	// With the boundary at the pole the Airy radius approaches the
	// equidistant one near the reference point.
	air, err := New("AIR", 0, 90, map[int]float64{1: 90})
	if err != nil {
		t.Fatalf("New(AIR): %v", err)
	}

	phi, theta, err := air.Project(0, 0)
	if err != nil {
		t.Fatalf("Project(0, 0): %v", err)
	}
	if phi != 0 || math.Abs(theta-math.Pi/2) > 1e-12 {
		t.Errorf("Project(0, 0) = (%g, %g), want (0, pi/2)", phi, theta)
	}

	xa, ya, err := air.ProjectInverse(0, rad(89.9))
	if err != nil {
		t.Fatalf("AIR ProjectInverse: %v", err)
	}
	xe, ye := 0.0, -0.1 // ARC radius of a 0.1 deg zenith distance
	if math.Abs(xa-xe) > 1e-4 || math.Abs(ya-ye) > 1e-4 {
		t.Errorf("AIR radius near the pole = (%g, %g), want about (%g, %g)", xa, ya, xe, ye)
	}
}

func TestAirySouthernBoundaryBranch(t *testing.T) {
	// With the boundary near the south pole the Airy radius peaks
	// partway down the sphere; latitudes below that peak are off the
	// invertible branch and must be rejected, not silently mapped to
	// the wrong latitude.
	air, err := New("AIR", 0, 90, map[int]float64{1: -85})
	if err != nil {
		t.Fatalf("New(AIR): %v", err)
	}

	if air.p.visible(0, rad(-60)) {
		t.Error("latitude below the branch reported visible")
	}
	if _, _, err := air.ProjectInverse(0, rad(-60)); !errors.Is(err, ErrDomain) {
		t.Errorf("ProjectInverse below the branch: err = %v, want ErrDomain", err)
	}

	checked := 0
	for thetaDeg := -30.0; thetaDeg <= 89; thetaDeg++ {
		phi, theta := 0.3, rad(thetaDeg)
		if !air.p.visible(phi, theta) {
			t.Fatalf("latitude %g deg on the branch reported invisible", thetaDeg)
		}
		x, y, err := air.ProjectInverse(phi, theta)
		if err != nil {
			t.Fatalf("ProjectInverse(%g, %g deg): %v", phi, thetaDeg, err)
		}
		gotPhi, gotTheta, err := air.Project(x, y)
		if err != nil {
			t.Fatalf("Project after inverse of %g deg: %v", thetaDeg, err)
		}
		if math.Abs(normalizePhi(gotPhi-phi)) > 1e-9 || math.Abs(gotTheta-theta) > 1e-9 {
			t.Errorf("round trip at %g deg: got (%.9g, %.9g) deg",
				thetaDeg, deg(gotPhi), deg(gotTheta))
		}
		checked++
	}
	if checked < 100 {
		t.Errorf("only %d latitudes round-tripped", checked)
	}
}

func TestSTGAntipodeBoundary(t *testing.T) {
	// Visibility and invertibility share the 1+sin(theta) criterion;
	// just inside the singular band both must refuse the point, just
	// outside both must accept it.
	p, err := New("STG", 0, 90, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	inside := -math.Pi/2 + 1e-7
	if p.p.visible(0, inside) {
		t.Error("point inside the singular band reported visible")
	}
	if _, _, err := p.ProjectInverse(0, inside); !errors.Is(err, ErrDomain) {
		t.Errorf("ProjectInverse inside the band: err = %v, want ErrDomain", err)
	}

	outside := -math.Pi/2 + 1e-5
	if !p.p.visible(0, outside) {
		t.Error("point outside the singular band reported invisible")
	}
	if _, _, err := p.ProjectInverse(0, outside); err != nil {
		t.Errorf("ProjectInverse outside the band: %v", err)
	}
}

func TestPCOSouthernHemisphere(t *testing.T) {
	// Below the equator the polyconic circle radius is negative and
	// the azimuth recovery has to land on the same branch the forward
	// direction used.
	p, err := New("PCO", 0, 25, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, tc := range []struct{ phiDeg, thetaDeg float64 }{
		{-150, -60},
		{-30, -85},
		{45, -30},
		{120, -5},
		{180, -45},
	} {
		phi, theta := rad(tc.phiDeg), rad(tc.thetaDeg)
		x, y, err := p.ProjectInverse(phi, theta)
		if err != nil {
			t.Fatalf("ProjectInverse(%g, %g deg): %v", tc.phiDeg, tc.thetaDeg, err)
		}
		gotPhi, gotTheta, err := p.Project(x, y)
		if err != nil {
			t.Fatalf("Project after inverse of (%g, %g) deg: %v", tc.phiDeg, tc.thetaDeg, err)
		}
		if math.Abs(normalizePhi(gotPhi-phi)) > 1e-9 || math.Abs(gotTheta-theta) > 1e-9 {
			t.Errorf("round trip (%g, %g) deg: got (%.9g, %.9g) deg",
				tc.phiDeg, tc.thetaDeg, deg(gotPhi), deg(gotTheta))
		}
	}
}

func TestSZPFarSide(t *testing.T) {
	p, err := New("SZP", 0, 90, map[int]float64{1: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// With mu=2 and the projection point over the pole only
	// sin(theta) >= -1/2 is visible.
	if p.Visible(0, -60) {
		t.Error("far-side point reported visible")
	}
	_, _, err = p.FromSky(0, -60)
	if !errors.Is(err, ErrDomain) {
		t.Errorf("FromSky far side: err = %v, want ErrDomain", err)
	}
	if !p.Visible(0, -20) {
		t.Error("near-side point reported invisible")
	}
}

func TestSZPSingularDenominator(t *testing.T) {
	// mu = -0.5 with the projection point over the pole gives
	// zp = 0.5, so the perspective denominator vanishes exactly at
	// sin(theta) = 0.5.
	p, err := New("SZP", 0, 90, map[int]float64{1: -0.5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x, y, err := p.ProjectInverse(0, rad(30))
	if !errors.Is(err, ErrDomain) {
		t.Errorf("ProjectInverse at the singular parallel: (%g, %g, %v), want ErrDomain", x, y, err)
	}
}

func TestAZPVisibility(t *testing.T) {
	// External projection point mu=2: only the cap sin(theta) >= 1/2.
	p, err := New("AZP", 0, 90, map[int]float64{1: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Visible(0, 20) {
		t.Error("point below the visible cap reported visible")
	}
	if !p.Visible(0, 40) {
		t.Error("point inside the visible cap reported invisible")
	}
	if _, _, err := p.FromSky(0, 0); !errors.Is(err, ErrDomain) {
		t.Errorf("FromSky outside the cap: err = %v, want ErrDomain", err)
	}
}

func TestCODSingleParallel(t *testing.T) {
	// eta = 0 takes the limit of the two-parallel cone constant.
	p, err := newCOD(paramSet{1: 45, 2: 0})
	if err != nil {
		t.Fatalf("newCOD: %v", err)
	}
	want := math.Sin(rad(45))
	if math.Abs(p.c-want) > 1e-12 {
		t.Errorf("cone constant = %.15g, want sin(45 deg) = %.15g", p.c, want)
	}
	if math.Abs(p.t-1) > 1e-12 {
		t.Errorf("radius offset = %.15g, want cot(45 deg) = 1", p.t)
	}
}

func TestEllipseBoundaries(t *testing.T) {
	tests := []struct {
		code string
		pv   map[int]float64
		x, y float64
	}{
		{"AIT", nil, 200, 0},
		{"AIT", nil, 0, 100},
		{"MOL", nil, 0, 130},
		{"ZEA", nil, 0, 250},
		{"CEA", map[int]float64{1: 1}, 0, 100},
		{"PAR", nil, 0, 120},
		{"CAR", nil, 0, 100},
		{"SFL", nil, 0, 100},
		{"ARC", nil, 0, 200},
	}

	for _, tt := range tests {
		p, err := New(tt.code, 0, 0, tt.pv)
		if err != nil {
			t.Fatalf("New(%s): %v", tt.code, err)
		}
		if _, _, err := p.Project(tt.x, tt.y); !errors.Is(err, ErrDomain) {
			t.Errorf("%s Project(%g, %g): err = %v, want ErrDomain", tt.code, tt.x, tt.y, err)
		}
	}
}

func TestBadParams(t *testing.T) {
	tests := []struct {
		name string
		code string
		pv   map[int]float64
	}{
		{"AZP mu on plane", "AZP", map[int]float64{1: -1}},
		{"AZP degenerate slant", "AZP", map[int]float64{2: 90}},
		{"SZP point in plane", "SZP", map[int]float64{1: -1, 3: 90}},
		{"ZPN no coefficients", "ZPN", nil},
		{"ZPN constant only", "ZPN", map[int]float64{0: 1}},
		{"AIR boundary out of range", "AIR", map[int]float64{1: 100}},
		{"CYP flat cylinder", "CYP", map[int]float64{2: 0}},
		{"CYP degenerate", "CYP", map[int]float64{1: -2, 2: 2}},
		{"CEA lambda high", "CEA", map[int]float64{1: 1.5}},
		{"CEA lambda zero", "CEA", map[int]float64{1: 0}},
		{"COP equatorial cone", "COP", map[int]float64{1: 0}},
		{"COE opposite parallels", "COE", map[int]float64{1: 0, 2: 30}},
		{"COD out of range", "COD", map[int]float64{1: 100}},
		{"COO parallel at pole", "COO", map[int]float64{1: 45, 2: 45}},
		{"BON degenerates to SFL", "BON", map[int]float64{1: 0}},
		{"unknown code", "XXX", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.code, 0, 0, tt.pv)
			if !errors.Is(err, ErrBadParam) {
				t.Errorf("New(%s, %v): err = %v, want ErrBadParam", tt.code, tt.pv, err)
			}
		})
	}
}

func TestLatPolePreference(t *testing.T) {
	// CAR at lat0=30 admits native pole latitudes 60 and -60; the
	// preference picks between them.
	north, err := New("CAR", 0, 30, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, lat := north.NativePole(); math.Abs(lat-60) > 1e-9 {
		t.Errorf("default pole latitude = %g, want 60", lat)
	}

	south, err := New("CAR", 0, 30, nil, WithLatPole(-90))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, lat := south.NativePole(); math.Abs(lat-(-60)) > 1e-9 {
		t.Errorf("preferred southern pole latitude = %g, want -60", lat)
	}
}

func TestLonPoleOverride(t *testing.T) {
	// Flipping the pole longitude rotates the image by 180 degrees
	// about the fiducial point.
	a, err := New("TAN", 150, -35, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New("TAN", 150, -35, nil, WithLonPole(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	lonA, latA, err := a.ToSky(10, 5)
	if err != nil {
		t.Fatalf("ToSky: %v", err)
	}
	lonB, latB, err := b.ToSky(-10, -5)
	if err != nil {
		t.Fatalf("ToSky: %v", err)
	}
	if lonDiff(lonA, lonB, latA) > 1e-8 || math.Abs(latA-latB) > 1e-8 {
		t.Errorf("flipped pole longitude: (%g, %g) vs (%g, %g)", lonA, latA, lonB, latB)
	}
}

func TestParamsMetadata(t *testing.T) {
	p, err := New("AZP", 0, 90, map[int]float64{1: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	params := p.Params()
	if len(params) != 2 {
		t.Fatalf("AZP has %d params, want 2", len(params))
	}
	if params[0].Name != "mu" || params[0].Index != 1 {
		t.Errorf("param 0 = %+v, want mu at slot 1", params[0])
	}
	if params[1].Name != "gamma" || params[1].Min != -90 || params[1].Max != 90 {
		t.Errorf("param 1 = %+v, want gamma in [-90, 90]", params[1])
	}

	if p.Code() != "AZP" || p.Name() != "zenithal perspective" {
		t.Errorf("Code/Name = %q/%q", p.Code(), p.Name())
	}
}

func TestMercatorPole(t *testing.T) {
	p, err := New("MER", 0, 0, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := p.ProjectInverse(0, math.Pi/2); !errors.Is(err, ErrDomain) {
		t.Errorf("ProjectInverse at the pole: err = %v, want ErrDomain", err)
	}
}

func TestCaseInsensitiveCode(t *testing.T) {
	p, err := New(" tan ", 0, 90, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Code() != "TAN" {
		t.Errorf("Code() = %q, want TAN", p.Code())
	}
}
