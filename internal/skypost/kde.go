package skypost

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"skyarea/internal/services"
)

// maxCovarianceCond rejects kernels whose covariance is numerically singular.
const maxCovarianceCond = 1e12

// gaussianKDE is a 2-D Gaussian kernel density estimate with a full
// covariance bandwidth from Scott's rule. The first axis is ra and wraps
// at 2π.
type gaussianKDE struct {
	pts  [][2]float64
	inv  [3]float64 // inverse covariance: xx, xy, yy
	norm float64    // 1 / (n * 2pi * sqrt(det))
}

func fitKDE(pts [][2]float64) (*gaussianKDE, error) {
	n := len(pts)
	if n < 3 {
		return nil, services.Wrap(services.ErrTransient, "kde", "fit", fmt.Sprintf("cluster has %d points", n), nil)
	}

	// Unwrap ra around the cluster's mean direction so a cluster straddling
	// ra=0 gets a compact covariance.
	ras := make([]float64, n)
	for i, p := range pts {
		ras[i] = p[0]
	}
	centre := circularMean(ras)
	local := make([][2]float64, n)
	data := make([]float64, 0, 2*n)
	for i, p := range pts {
		local[i] = [2]float64{centre + wrapAngle(p[0]-centre), p[1]}
		data = append(data, local[i][0], local[i][1])
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, mat.NewDense(n, 2, data), nil)

	factor := math.Pow(float64(n), -1.0/6.0) // Scott's rule for d=2
	cov.ScaleSym(factor*factor, &cov)

	var chol mat.Cholesky
	if ok := chol.Factorize(&cov); !ok {
		return nil, services.Wrap(services.ErrTransient, "kde", "fit", "covariance is not positive definite", nil)
	}
	if cond := chol.Cond(); cond > maxCovarianceCond || math.IsNaN(cond) {
		return nil, services.Wrap(services.ErrTransient, "kde", "fit", fmt.Sprintf("covariance condition number %.3g", cond), nil)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, services.Wrap(services.ErrTransient, "kde", "fit", "invert covariance", err)
	}

	det := math.Exp(chol.LogDet())
	return &gaussianKDE{
		pts:  local,
		inv:  [3]float64{inv.At(0, 0), inv.At(0, 1), inv.At(1, 1)},
		norm: 1 / (float64(n) * 2 * math.Pi * math.Sqrt(det)),
	}, nil
}

func (k *gaussianKDE) eval(x, y float64) float64 {
	var sum float64
	for _, p := range k.pts {
		dx := wrapAngle(x - p[0])
		dy := y - p[1]
		m := k.inv[0]*dx*dx + 2*k.inv[1]*dx*dy + k.inv[2]*dy*dy
		sum += math.Exp(-0.5 * m)
	}
	return sum * k.norm
}
