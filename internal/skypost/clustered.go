package skypost

import (
	"fmt"
	"math"
	"slices"

	"skyarea/internal/healpix"
	"skyarea/internal/services"
)

const squareDegreesPerSteradian = (180 / math.Pi) * (180 / math.Pi)

// ClusteredKDE is a mixture of per-cluster Gaussian KDEs weighted by cluster size.
type ClusteredKDE struct {
	pts       [][2]float64
	assign    []int
	k         int
	areaNside int

	kernels []*gaussianKDE
	weights []float64

	greedy *greedyGrid
}

// greedyGrid is the posterior evaluated on a HEALPix grid, sorted by
// decreasing density with the running enclosed probability.
type greedyGrid struct {
	density    []float64 // descending
	cumulative []float64
	pixArea    float64
}

func newClusteredKDE(pts [][2]float64, assign []int, k, areaNside int) (*ClusteredKDE, error) {
	if len(pts) != len(assign) {
		return nil, fmt.Errorf("skypost: %d points but %d labels", len(pts), len(assign))
	}
	members := make([][][2]float64, k)
	for i, label := range assign {
		if label < 0 || label >= k {
			return nil, fmt.Errorf("skypost: label %d outside [0, %d)", label, k)
		}
		members[label] = append(members[label], pts[i])
	}

	post := &ClusteredKDE{
		pts:       pts,
		assign:    assign,
		k:         k,
		areaNside: areaNside,
		kernels:   make([]*gaussianKDE, k),
		weights:   make([]float64, k),
	}
	for i, cluster := range members {
		kernel, err := fitKDE(cluster)
		if err != nil {
			return nil, fmt.Errorf("cluster %d: %w", i, err)
		}
		post.kernels[i] = kernel
		post.weights[i] = float64(len(cluster)) / float64(len(pts))
	}
	return post, nil
}

func (p *ClusteredKDE) K() int { return p.k }

func (p *ClusteredKDE) Assignments() []int { return slices.Clone(p.assign) }

func (p *ClusteredKDE) Points() [][2]float64 { return slices.Clone(p.pts) }

// Density evaluates the mixture at each coordinate.
func (p *ClusteredKDE) Density(pts []Coord) []float64 {
	out := make([]float64, len(pts))
	for i, c := range pts {
		out[i] = p.densityAt(c.Lon, math.Sin(c.Lat))
	}
	return out
}

func (p *ClusteredKDE) densityAt(x, y float64) float64 {
	var total float64
	for j, kernel := range p.kernels {
		total += p.weights[j] * kernel.eval(x, y)
	}
	return total
}

// logLikelihood scores the mixture with each point's own kernel left out,
// so shrinking bandwidths by splitting clusters is not rewarded.
func (p *ClusteredKDE) logLikelihood() float64 {
	var ll float64
	for i, pt := range p.pts {
		c := p.assign[i]
		density := p.densityAt(pt[0], pt[1]) - p.weights[c]*p.kernels[c].norm
		ll += math.Log(math.Max(density, math.SmallestNonzeroFloat64))
	}
	return ll
}

// Areas returns, for each level, the smallest sky area in square degrees
// whose pixels enclose that fraction of the posterior.
func (p *ClusteredKDE) Areas(levels []float64) ([]float64, error) {
	grid, err := p.grid()
	if err != nil {
		return nil, err
	}
	areas := make([]float64, len(levels))
	for i, level := range levels {
		if level < 0 || level > 1 {
			return nil, services.Wrap(services.ErrValidation, "skypost", "areas", fmt.Sprintf("level %g outside [0, 1]", level), nil)
		}
		n, _ := slices.BinarySearch(grid.cumulative, level)
		if n < len(grid.cumulative) {
			n++
		}
		areas[i] = float64(n) * grid.pixArea * squareDegreesPerSteradian
	}
	return areas, nil
}

// PValues returns the posterior probability contained in pixels denser
// than the posterior at each position.
func (p *ClusteredKDE) PValues(pts []Coord) ([]float64, error) {
	grid, err := p.grid()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(pts))
	for i, density := range p.Density(pts) {
		// Index of the first pixel whose density is not greater than the target.
		n, _ := slices.BinarySearchFunc(grid.density, density, func(pix, target float64) int {
			switch {
			case pix > target:
				return -1
			case pix < target:
				return 1
			default:
				return 0
			}
		})
		if n == 0 {
			out[i] = 0
			continue
		}
		out[i] = grid.cumulative[n-1]
	}
	return out, nil
}

func (p *ClusteredKDE) grid() (*greedyGrid, error) {
	if p.greedy != nil {
		return p.greedy, nil
	}
	lon, lat := healpix.Centers(p.areaNside)
	coords := make([]Coord, len(lon))
	for i := range lon {
		coords[i] = Coord{Lon: lon[i], Lat: lat[i]}
	}
	density := p.Density(coords)
	slices.SortFunc(density, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	})

	var total float64
	for _, d := range density {
		total += d
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, services.Wrap(services.ErrTransient, "skypost", "grid", "posterior has no mass on the area grid", nil)
	}
	cumulative := make([]float64, len(density))
	var running float64
	for i, d := range density {
		running += d
		cumulative[i] = running / total
	}

	p.greedy = &greedyGrid{
		density:    density,
		cumulative: cumulative,
		pixArea:    healpix.PixelArea(p.areaNside),
	}
	return p.greedy, nil
}
