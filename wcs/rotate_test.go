package wcs

import (
	"math"
	"testing"

	"github.com/golang/geo/s2"
)

func TestRotatorRoundTrip(t *testing.T) {
	configs := []struct {
		name           string
		alpha0, delta0 float64 // degrees
		phi0, theta0   float64 // radians
		phiP, thetaP   float64 // radians
	}{
		{"zenithal oblique", 150, -35, 0, math.Pi / 2, math.Pi, math.Pi / 2},
		{"zenithal north", 30, 90, 0, math.Pi / 2, 0, math.Pi / 2},
		{"zenithal south", 210, -90, 0, math.Pi / 2, math.Pi, math.Pi / 2},
		{"cylindrical oblique", 45, 30, 0, 0, 0, math.Pi / 2},
		{"cylindrical equatorial", 0, 0, 0, 0, math.Pi, math.Pi / 2},
		{"conic oblique", 90, 60, 0, rad(45), 0, math.Pi / 2},
	}

	for _, cfg := range configs {
		t.Run(cfg.name, func(t *testing.T) {
			r, err := newRotator(rad(cfg.alpha0), rad(cfg.delta0), cfg.phi0, cfg.theta0, cfg.phiP, cfg.thetaP)
			if err != nil {
				t.Fatalf("newRotator: %v", err)
			}

			for _, phiDeg := range []float64{-170, -90, -30, 0, 45, 120, 180} {
				for _, thetaDeg := range []float64{-80, -45, 0, 30, 60, 85} {
					phi, theta := rad(phiDeg), rad(thetaDeg)
					alpha, delta := r.toCelestial(phi, theta)
					gotPhi, gotTheta := r.toNative(alpha, delta)

					if math.Abs(normalizePhi(gotPhi-phi)) > 1e-9 || math.Abs(gotTheta-theta) > 1e-9 {
						t.Errorf("round trip (%g, %g) deg: got (%g, %g) deg",
							phiDeg, thetaDeg, deg(gotPhi), deg(gotTheta))
					}
				}
			}
		})
	}
}

func TestRotatorPreservesSeparation(t *testing.T) {
	// The rotation is rigid: the on-sky separation between any two
	// points survives the native-to-celestial mapping.
	r, err := newRotator(rad(80), rad(25), 0, math.Pi/2, math.Pi, math.Pi/2)
	if err != nil {
		t.Fatalf("newRotator: %v", err)
	}

	pts := [][2]float64{{0, 0}, {30, 45}, {-120, -60}, {170, 10}, {90, -85}}
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			a := s2.PointFromLatLng(s2.LatLngFromDegrees(pts[i][1], pts[i][0]))
			b := s2.PointFromLatLng(s2.LatLngFromDegrees(pts[j][1], pts[j][0]))
			native := a.Distance(b)

			aa, ad := r.toCelestial(rad(pts[i][0]), rad(pts[i][1]))
			ba, bd := r.toCelestial(rad(pts[j][0]), rad(pts[j][1]))
			ca := s2.PointFromLatLng(s2.LatLngFromDegrees(deg(ad), deg(aa)))
			cb := s2.PointFromLatLng(s2.LatLngFromDegrees(deg(bd), deg(ba)))
			celestial := ca.Distance(cb)

			if math.Abs(float64(native-celestial)) > 1e-9 {
				t.Errorf("separation %d-%d changed: native %v, celestial %v", i, j, native, celestial)
			}
		}
	}
}

func TestNativePoleZenithal(t *testing.T) {
	// For a zenithal projection with the default pole longitude the
	// native pole coincides with the fiducial point.
	r, err := newRotator(rad(150), rad(-35), 0, math.Pi/2, math.Pi, math.Pi/2)
	if err != nil {
		t.Fatalf("newRotator: %v", err)
	}
	if math.Abs(deg(r.alphaP)-150) > 1e-9 {
		t.Errorf("alphaP = %g, want 150", deg(r.alphaP))
	}
	if math.Abs(deg(r.deltaP)-(-35)) > 1e-9 {
		t.Errorf("deltaP = %g, want -35", deg(r.deltaP))
	}

	// The native reference point must land on the fiducial point.
	alpha, delta := r.toCelestial(0, math.Pi/2)
	if math.Abs(deg(alpha)-150) > 1e-9 || math.Abs(deg(delta)-(-35)) > 1e-9 {
		t.Errorf("reference maps to (%g, %g), want (150, -35)", deg(alpha), deg(delta))
	}
}

func TestNativePoleAmbiguity(t *testing.T) {
	// theta0 = 0, delta0 = 0, |phiP - phi0| = 90 deg leaves the pole
	// latitude unconstrained; the preference decides.
	for _, thetaP := range []float64{rad(90), rad(30), rad(-60)} {
		r, err := newRotator(0, 0, 0, 0, math.Pi/2, thetaP)
		if err != nil {
			t.Fatalf("newRotator(thetaP=%g): %v", deg(thetaP), err)
		}
		if math.Abs(r.deltaP-thetaP) > 1e-12 {
			t.Errorf("deltaP = %g, want the preferred %g", deg(r.deltaP), deg(thetaP))
		}
	}
}

func TestNativePoleUnreachable(t *testing.T) {
	// theta0 = 0 and |phiP - phi0| = 90 deg constrain the fiducial
	// point to the equator; a nonzero delta0 is contradictory.
	_, err := newRotator(0, rad(20), 0, 0, math.Pi/2, math.Pi/2)
	if err == nil {
		t.Fatal("expected configuration error, got nil")
	}
}

func TestPolarModes(t *testing.T) {
	// A fiducial point at the celestial north pole reduces the
	// rotation to a longitude shift.
	r, err := newRotator(rad(30), rad(90), 0, math.Pi/2, 0, math.Pi/2)
	if err != nil {
		t.Fatalf("newRotator: %v", err)
	}
	if r.mode != rotNorthPolar {
		t.Fatalf("mode = %d, want rotNorthPolar", r.mode)
	}
	alpha, delta := r.toCelestial(rad(40), rad(70))
	if math.Abs(deg(delta)-70) > 1e-9 {
		t.Errorf("delta = %g, want 70 (latitude passes through)", deg(delta))
	}
	gotPhi, gotTheta := r.toNative(alpha, delta)
	if math.Abs(deg(gotPhi)-40) > 1e-9 || math.Abs(deg(gotTheta)-70) > 1e-9 {
		t.Errorf("round trip = (%g, %g), want (40, 70)", deg(gotPhi), deg(gotTheta))
	}

	// South pole: latitude flips sign.
	r, err = newRotator(rad(30), rad(-90), 0, math.Pi/2, math.Pi, math.Pi/2)
	if err != nil {
		t.Fatalf("newRotator: %v", err)
	}
	if r.mode != rotSouthPolar {
		t.Fatalf("mode = %d, want rotSouthPolar", r.mode)
	}
	_, delta = r.toCelestial(0, rad(70))
	if math.Abs(deg(delta)-(-70)) > 1e-9 {
		t.Errorf("delta = %g, want -70", deg(delta))
	}
}

func TestNormalizePhi(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}

	for _, tt := range tests {
		got := normalizePhi(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("normalizePhi(%g) = %g, want %g", tt.in, got, tt.want)
		}
		if again := normalizePhi(got); again != got {
			t.Errorf("normalizePhi not idempotent at %g: %g then %g", tt.in, got, again)
		}
	}
}

func TestNormalizeLon(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{2 * math.Pi, 0},
		{5 * math.Pi / 2, math.Pi / 2},
	}

	for _, tt := range tests {
		if got := normalizeLon(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("normalizeLon(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}
