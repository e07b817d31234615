package trajectory

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// annotateMotion fills in speed and acceleration by central differencing
// (one-sided at the ends) and flags power spots: samples whose speed is a
// strict local maximum among immediate neighbors and reaches the 90th
// percentile of the whole series.
func annotateMotion(points []Point) {
	n := len(points)
	if n < 2 {
		return
	}

	speeds := make([]float64, n)
	for i := range points {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		dt := points[hi].Timestamp - points[lo].Timestamp
		if dt <= 0 {
			continue
		}
		d := points[hi].Position.Sub(points[lo].Position)
		speeds[i] = math.Hypot(d.X, d.Y) / dt
	}
	for i := range points {
		v := speeds[i]
		points[i].Velocity = &v
	}

	for i := range points {
		lo, hi := i-1, i+1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		dt := points[hi].Timestamp - points[lo].Timestamp
		if dt <= 0 {
			continue
		}
		a := (speeds[hi] - speeds[lo]) / dt
		points[i].Acceleration = &a
	}

	sorted := make([]float64, n)
	copy(sorted, speeds)
	sort.Float64s(sorted)
	threshold := stat.Quantile(powerSpotQuantile, stat.Empirical, sorted, nil)

	for i := 1; i < n-1; i++ {
		if speeds[i] > speeds[i-1] && speeds[i] > speeds[i+1] && speeds[i] >= threshold {
			points[i].IsPowerSpot = true
		}
	}
}
