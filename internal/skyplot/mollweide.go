package skyplot

import (
	"math"

	"skyarea/internal/healpix"
)

// mollweideGrid rasterises a HEALPix map onto a regular grid covering the
// Mollweide ellipse. Cells outside the ellipse hold NaN.
type mollweideGrid struct {
	cols, rows int
	z          []float64
	min, max   float64
}

func newMollweideGrid(nside int, density []float64, cols int) *mollweideGrid {
	rows := cols / 2
	g := &mollweideGrid{cols: cols, rows: rows, z: make([]float64, cols*rows)}
	g.min, g.max = math.Inf(1), math.Inf(-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			lon, lat, ok := inverseMollweide(g.X(c), g.Y(r))
			if !ok {
				g.z[r*cols+c] = math.NaN()
				continue
			}
			v := density[healpix.Ang2Pix(nside, math.Pi/2-lat, lon)]
			g.z[r*cols+c] = v
			g.min = math.Min(g.min, v)
			g.max = math.Max(g.max, v)
		}
	}
	if math.IsInf(g.min, 1) {
		g.min, g.max = 0, 1
	}
	if g.max <= g.min {
		g.max = g.min + 1
	}
	return g
}

func (g *mollweideGrid) Dims() (c, r int) { return g.cols, g.rows }

func (g *mollweideGrid) Z(c, r int) float64 { return g.z[r*g.cols+c] }

func (g *mollweideGrid) X(c int) float64 {
	return -2*math.Sqrt2 + (float64(c)+0.5)*4*math.Sqrt2/float64(g.cols)
}

func (g *mollweideGrid) Y(r int) float64 {
	return -math.Sqrt2 + (float64(r)+0.5)*2*math.Sqrt2/float64(g.rows)
}

// inverseMollweide maps projected coordinates to sky longitude in [0, 2pi)
// and latitude. Longitude grows towards negative x (east on the left).
func inverseMollweide(x, y float64) (lon, lat float64, ok bool) {
	if x*x/8+y*y/2 > 1 {
		return 0, 0, false
	}
	aux := math.Asin(y / math.Sqrt2)
	lat = math.Asin((2*aux + math.Sin(2*aux)) / math.Pi)
	cos := math.Cos(aux)
	if cos == 0 {
		return 0, lat, true
	}
	lon = -math.Pi * x / (2 * math.Sqrt2 * cos)
	lon = math.Mod(lon, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon, lat, true
}
