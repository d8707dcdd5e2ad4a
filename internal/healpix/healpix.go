// Package healpix implements the parts of the HEALPix RING scheme needed to
// pixelise the sky: resolution bookkeeping and pixel/angle conversion.
package healpix

import (
	"fmt"
	"math"
)

// Npix returns the number of pixels of a map with the given nside.
func Npix(nside int) int {
	return 12 * nside * nside
}

// Resolution returns the approximate pixel side length in radians.
func Resolution(nside int) float64 {
	return math.Sqrt(PixelArea(nside))
}

// PixelArea returns the solid angle of one pixel in steradians.
func PixelArea(nside int) float64 {
	return 4 * math.Pi / float64(Npix(nside))
}

// NsideForResolution doubles base until the pixel resolution is no coarser
// than threshold radians. maxNside bounds the search; zero disables the bound.
func NsideForResolution(base int, threshold float64, maxNside int) (int, error) {
	if base <= 0 || base&(base-1) != 0 {
		return 0, fmt.Errorf("healpix: base nside %d is not a positive power of two", base)
	}
	if !(threshold > 0) {
		return 0, fmt.Errorf("healpix: resolution threshold %g must be positive", threshold)
	}
	nside := base
	for Resolution(nside) > threshold {
		nside *= 2
		if maxNside > 0 && nside > maxNside {
			return 0, fmt.Errorf("healpix: resolution %g rad needs nside above limit %d", threshold, maxNside)
		}
	}
	return nside, nil
}

// Pix2Ang returns the colatitude theta and longitude phi of a RING pixel centre.
func Pix2Ang(nside, pix int) (theta, phi float64) {
	z, phi := pix2zphi(nside, pix)
	return math.Acos(z), phi
}

func pix2zphi(nside, pix int) (z, phi float64) {
	ncap := 2 * nside * (nside - 1)
	npix := Npix(nside)
	fact2 := 4.0 / float64(npix)

	switch {
	case pix < ncap:
		iring := (1 + isqrt(1+2*pix)) >> 1
		iphi := pix + 1 - 2*iring*(iring-1)
		z = 1 - float64(iring*iring)*fact2
		phi = (float64(iphi) - 0.5) * (math.Pi / 2) / float64(iring)
	case pix < npix-ncap:
		fact1 := float64(2*nside) * fact2
		ip := pix - ncap
		iring := ip/(4*nside) + nside
		iphi := ip%(4*nside) + 1
		fodd := 0.5
		if (iring+nside)&1 == 1 {
			fodd = 1
		}
		nl2 := 2 * nside
		z = float64(nl2-iring) * fact1
		phi = (float64(iphi) - fodd) * math.Pi / float64(nl2)
	default:
		ip := npix - pix
		iring := (1 + isqrt(2*ip-1)) >> 1
		iphi := 4*iring + 1 - (ip - 2*iring*(iring-1))
		z = -1 + float64(iring*iring)*fact2
		phi = (float64(iphi) - 0.5) * (math.Pi / 2) / float64(iring)
	}
	return z, phi
}

// Ang2Pix returns the RING pixel containing colatitude theta and longitude phi.
func Ang2Pix(nside int, theta, phi float64) int {
	z := math.Cos(theta)
	za := math.Abs(z)
	tt := math.Mod(phi, 2*math.Pi)
	if tt < 0 {
		tt += 2 * math.Pi
	}
	tt /= math.Pi / 2 // in [0,4)

	if za <= 2.0/3.0 {
		n := float64(nside)
		temp1 := n * (0.5 + tt)
		temp2 := n * z * 0.75
		jp := int(temp1 - temp2)
		jm := int(temp1 + temp2)
		ir := nside + 1 + jp - jm // in [1, 2nside+1]
		kshift := 1 - (ir & 1)
		ip := (jp + jm - nside + kshift + 1) / 2
		ip = imod(ip, 4*nside)
		return 2*nside*(nside-1) + (ir-1)*4*nside + ip
	}

	tp := tt - math.Floor(tt)
	tmp := float64(nside) * math.Sqrt(3*(1-za))
	jp := int(tp * tmp)
	jm := int((1 - tp) * tmp)
	ir := jp + jm + 1
	ip := imod(int(tt*float64(ir)), 4*ir)
	if z > 0 {
		return 2*ir*(ir-1) + ip
	}
	return Npix(nside) - 2*ir*(ir+1) + ip
}

// Centers returns the (longitude, latitude) of every pixel centre in RING
// order, latitude being pi/2 minus colatitude.
func Centers(nside int) (lon, lat []float64) {
	n := Npix(nside)
	lon = make([]float64, n)
	lat = make([]float64, n)
	for pix := 0; pix < n; pix++ {
		theta, phi := Pix2Ang(nside, pix)
		lon[pix] = phi
		lat[pix] = math.Pi/2 - theta
	}
	return lon, lat
}

func isqrt(v int) int {
	r := int(math.Sqrt(float64(v) + 0.5))
	for r*r > v {
		r--
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}

func imod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
