package healpix

import (
	"math"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestResolutionAndArea(t *testing.T) {
	if got := Npix(1); got != 12 {
		t.Fatalf("Npix(1) = %d, want 12", got)
	}
	if got := Npix(64); got != 49152 {
		t.Fatalf("Npix(64) = %d, want 49152", got)
	}
	if got := Resolution(1); !near(got, math.Sqrt(math.Pi/3), 1e-12) {
		t.Fatalf("Resolution(1) = %g", got)
	}
	if total := PixelArea(16) * float64(Npix(16)); !near(total, 4*math.Pi, 1e-9) {
		t.Fatalf("total area = %g, want 4π", total)
	}
}

func TestNsideForResolution(t *testing.T) {
	base := Resolution(1)
	tests := []struct {
		name      string
		threshold float64
		want      int
	}{
		{name: "base resolution keeps base grid", threshold: base, want: 1},
		{name: "quarter resolution", threshold: base / 4, want: 4},
		{name: "one degree", threshold: math.Pi / 180, want: 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nside, err := NsideForResolution(1, tt.threshold, 0)
			if err != nil {
				t.Fatalf("NsideForResolution failed: %v", err)
			}
			if nside != tt.want {
				t.Fatalf("nside = %d, want %d", nside, tt.want)
			}
			if Resolution(nside) > tt.threshold {
				t.Fatalf("resolution %g coarser than threshold %g", Resolution(nside), tt.threshold)
			}
			if nside > 1 && Resolution(nside/2) <= tt.threshold {
				t.Fatalf("nside %d is not the smallest grid satisfying %g", nside, tt.threshold)
			}
		})
	}
}

func TestNsideForResolutionLimits(t *testing.T) {
	tests := []struct {
		name      string
		base      int
		threshold float64
		max       int
	}{
		{name: "above max nside", base: 1, threshold: 1e-6, max: 1024},
		{name: "base not power of two", base: 3, threshold: 0.1},
		{name: "zero threshold", base: 1, threshold: 0},
	}
	for _, tt := range tests {
		if _, err := NsideForResolution(tt.base, tt.threshold, tt.max); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}
}

func TestPix2AngKnownValues(t *testing.T) {
	// nside=1: first ring at z=2/3, equator ring at z=0, last ring at z=-2/3.
	theta, phi := Pix2Ang(1, 0)
	if !near(theta, math.Acos(2.0/3.0), 1e-12) || !near(phi, math.Pi/4, 1e-12) {
		t.Fatalf("pix 0: theta=%g phi=%g", theta, phi)
	}
	theta, phi = Pix2Ang(1, 4)
	if !near(theta, math.Pi/2, 1e-12) || !near(phi, 0, 1e-12) {
		t.Fatalf("pix 4: theta=%g phi=%g", theta, phi)
	}
	if theta, _ = Pix2Ang(1, 11); !near(theta, math.Acos(-2.0/3.0), 1e-12) {
		t.Fatalf("pix 11: theta=%g", theta)
	}
}

func TestAng2PixRoundTrip(t *testing.T) {
	for _, nside := range []int{1, 2, 8, 64} {
		for pix := 0; pix < Npix(nside); pix++ {
			theta, phi := Pix2Ang(nside, pix)
			if got := Ang2Pix(nside, theta, phi); got != pix {
				t.Fatalf("nside=%d: Ang2Pix(Pix2Ang(%d)) = %d", nside, pix, got)
			}
		}
	}
}

func TestAng2PixWrapsLongitude(t *testing.T) {
	theta, phi := Pix2Ang(8, 100)
	if got := Ang2Pix(8, theta, phi+2*math.Pi); got != 100 {
		t.Fatalf("phi+2π: got pixel %d", got)
	}
	if got := Ang2Pix(8, theta, phi-2*math.Pi); got != 100 {
		t.Fatalf("phi-2π: got pixel %d", got)
	}
}

func TestCentersLatitudeConvention(t *testing.T) {
	lon, lat := Centers(2)
	if len(lon) != Npix(2) || len(lat) != Npix(2) {
		t.Fatalf("expected %d centres, got %d/%d", Npix(2), len(lon), len(lat))
	}
	for i := range lat {
		if lat[i] < -math.Pi/2 || lat[i] > math.Pi/2 {
			t.Fatalf("lat[%d] = %g out of range", i, lat[i])
		}
		if lon[i] < 0 || lon[i] >= 2*math.Pi {
			t.Fatalf("lon[%d] = %g out of range", i, lon[i])
		}
	}
	if lat[0] <= 0 {
		t.Fatalf("ring ordering must start at the north pole, lat[0] = %g", lat[0])
	}
}
