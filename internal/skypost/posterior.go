package skypost

import (
	"context"
	"io"

	"skyarea/internal/samples"
)

// Coord is a sky position given as longitude and latitude in radians.
type Coord struct {
	Lon float64
	Lat float64
}

// Posterior is a queryable sky-location density.
type Posterior interface {
	// Density evaluates the posterior density per steradian at each coordinate.
	Density(pts []Coord) []float64
	// K returns the number of clusters.
	K() int
	// Assignments returns the cluster label of each clustering input point.
	Assignments() []int
	// Points returns the clustering input points as (ra, sin dec) pairs.
	Points() [][2]float64
	// Areas returns the credible region area in square degrees for each level.
	Areas(levels []float64) ([]float64, error)
	// PValues returns the probability enclosed by the density contour through each position.
	PValues(pts []Coord) ([]float64, error)
}

// Engine builds and persists posteriors.
type Engine interface {
	Build(ctx context.Context, pts samples.Set) (Posterior, error)
	Save(w io.Writer, p Posterior) error
	Load(r io.Reader) (Posterior, error)
}
