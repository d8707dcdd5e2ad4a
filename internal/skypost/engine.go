package skypost

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"skyarea/internal/logging"
	"skyarea/internal/samples"
	"skyarea/internal/services"
)

// Options configures the clustered KDE engine.
type Options struct {
	MaxClusters      int
	KMeansIterations int
	KMeansRestarts   int
	MinClusterPoints int
	// AreaNside is the HEALPix grid used for credible areas and p-values.
	AreaNside int
	Rand      *rand.Rand
	Logger    *slog.Logger
}

// KDEEngine builds ClusteredKDE posteriors and persists them as snapshots.
type KDEEngine struct {
	opts   Options
	rng    *rand.Rand
	logger *slog.Logger
}

// NewKDEEngine constructs the default engine, filling zero options with defaults.
func NewKDEEngine(opts Options) *KDEEngine {
	if opts.MaxClusters <= 0 {
		opts.MaxClusters = 20
	}
	if opts.KMeansIterations <= 0 {
		opts.KMeansIterations = 100
	}
	if opts.KMeansRestarts <= 0 {
		opts.KMeansRestarts = 5
	}
	if opts.MinClusterPoints < 3 {
		opts.MinClusterPoints = 3
	}
	if opts.AreaNside <= 0 {
		opts.AreaNside = 128
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &KDEEngine{
		opts:   opts,
		rng:    rng,
		logger: logging.NewComponentLogger(opts.Logger, "kde"),
	}
}

// Build clusters the samples for every admissible k and keeps the mixture
// with the highest BIC.
func (e *KDEEngine) Build(ctx context.Context, set samples.Set) (Posterior, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	n := len(set)
	if n < e.opts.MinClusterPoints {
		return nil, services.Wrap(services.ErrValidation, "kde", "build",
			fmt.Sprintf("need at least %d samples, have %d", e.opts.MinClusterPoints, n), nil)
	}

	pts := make([][2]float64, n)
	for i, p := range set {
		pts[i] = [2]float64{p.RA, math.Sin(p.Dec)}
	}

	maxK := min(e.opts.MaxClusters, n/e.opts.MinClusterPoints)

	var best *ClusteredKDE
	bestBIC := math.Inf(-1)
	var lastErr error
	for k := 1; k <= maxK; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		labels := e.bestLabels(pts, k)
		if smallest(labels, k) < e.opts.MinClusterPoints {
			continue
		}
		candidate, err := newClusteredKDE(pts, labels, k, e.opts.AreaNside)
		if err != nil {
			lastErr = err
			e.logger.Debug("cluster count rejected", logging.Int("k", k), logging.Error(err))
			continue
		}
		bic := candidate.logLikelihood() - 0.5*float64(parameterCount(k))*math.Log(float64(n))
		e.logger.Debug("cluster count evaluated", logging.Int("k", k), logging.Float64("bic", bic))
		if bic > bestBIC {
			best, bestBIC = candidate, bic
		}
	}
	if best == nil {
		if lastErr == nil {
			lastErr = services.Wrap(services.ErrTransient, "kde", "build", "no cluster count produced a usable density", nil)
		}
		return nil, lastErr
	}

	e.logger.Info("sky posterior built",
		logging.Int("points", n),
		logging.Int("clusters", best.k),
		logging.Float64("bic", bestBIC),
	)
	return best, nil
}

func (e *KDEEngine) bestLabels(pts [][2]float64, k int) []int {
	var best []int
	bestInertia := math.Inf(1)
	for r := 0; r < e.opts.KMeansRestarts; r++ {
		labels, inertia := kmeans(pts, k, e.opts.KMeansIterations, e.rng)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
		if k == 1 {
			break
		}
	}
	return best
}

// parameterCount counts the mean, covariance, and mixture weight of each cluster.
func parameterCount(k int) int {
	return 5*k + (k - 1)
}

func smallest(labels []int, k int) int {
	counts := make([]int, k)
	for _, label := range labels {
		counts[label]++
	}
	low := math.MaxInt
	for _, c := range counts {
		low = min(low, c)
	}
	return low
}
