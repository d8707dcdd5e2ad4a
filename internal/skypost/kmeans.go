package skypost

import (
	"math"
	"math/rand"
)

// kmeans runs Lloyd's algorithm on (ra, sin dec) points from a random
// initial selection of centroids. Right ascension is periodic: distances use
// the shorter way round and centroids use the circular mean. It returns
// labels and the within-cluster sum of squares.
func kmeans(pts [][2]float64, k, maxIter int, rng *rand.Rand) ([]int, float64) {
	n := len(pts)
	centroids := make([][2]float64, k)
	perm := rng.Perm(n)
	for i := 0; i < k; i++ {
		centroids[i] = pts[perm[i]]
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	// sin ra, cos ra, y
	sums := make([][3]float64, k)
	counts := make([]int, k)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range pts {
			best := nearest(p, centroids)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		for j := range sums {
			sums[j] = [3]float64{}
			counts[j] = 0
		}
		for i, p := range pts {
			c := labels[i]
			sums[c][0] += math.Sin(p[0])
			sums[c][1] += math.Cos(p[0])
			sums[c][2] += p[1]
			counts[c]++
		}
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				// Reseed an empty cluster from a random point.
				centroids[j] = pts[rng.Intn(n)]
				continue
			}
			centroids[j] = [2]float64{
				math.Atan2(sums[j][0], sums[j][1]),
				sums[j][2] / float64(counts[j]),
			}
		}
	}

	var inertia float64
	for i, p := range pts {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return labels, inertia
}

func nearest(p [2]float64, centroids [][2]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for j, c := range centroids {
		if d := sqDist(p, c); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

func sqDist(a, b [2]float64) float64 {
	dx := wrapAngle(a[0] - b[0])
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}

// wrapAngle maps an angle difference into [-π, π).
func wrapAngle(d float64) float64 {
	d = math.Mod(d+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}

// circularMean returns the mean direction of angles in radians.
func circularMean(angles []float64) float64 {
	var s, c float64
	for _, a := range angles {
		s += math.Sin(a)
		c += math.Cos(a)
	}
	return math.Atan2(s, c)
}
