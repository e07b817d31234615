package trajectory

import "math"

// smoothSavitzkyGolay applies local-polynomial regression: for each point it
// fits an order-k polynomial independently to x(t) and y(t) over a centered
// window (shrinking at the edges) and takes the fitted value at offset 0.
// Length and timestamps are always preserved. A window too small for the
// order, or a singular normal system, falls back to the unmodified point
// rather than aborting the computation.
func smoothSavitzkyGolay(points []Point, window, order int) []Point {
	if window < 2 || order < 0 || len(points) < 2 {
		return points
	}

	out := make([]Point, len(points))
	copy(out, points)
	half := window / 2

	for i := range points {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(points)-1 {
			hi = len(points) - 1
		}
		m := hi - lo + 1
		if m < order+1 {
			continue
		}

		offsets := make([]float64, m)
		xs := make([]float64, m)
		ys := make([]float64, m)
		for j := 0; j < m; j++ {
			p := points[lo+j]
			offsets[j] = p.Timestamp - points[i].Timestamp
			xs[j] = p.Position.X
			ys[j] = p.Position.Y
		}

		cx, okX := fitPolynomial(offsets, xs, order)
		cy, okY := fitPolynomial(offsets, ys, order)
		if !okX || !okY {
			continue
		}

		// Constant term is the fitted value at offset 0.
		out[i].Position.X = cx[0]
		out[i].Position.Y = cy[0]
	}
	return out
}

// fitPolynomial least-squares fits an order-k polynomial to (t, v) via the
// normal equations, solved by Gaussian elimination with partial pivoting.
// ok is false when the system is singular or underdetermined.
func fitPolynomial(t, v []float64, order int) (coeffs []float64, ok bool) {
	k := order + 1
	if len(t) < k || len(t) != len(v) {
		return nil, false
	}

	// Normal equations: (A^T A) c = A^T v with A the Vandermonde matrix of t.
	ata := make([][]float64, k)
	atv := make([]float64, k)
	for r := 0; r < k; r++ {
		ata[r] = make([]float64, k)
	}
	for j := range t {
		powers := make([]float64, k)
		p := 1.0
		for d := 0; d < k; d++ {
			powers[d] = p
			p *= t[j]
		}
		for r := 0; r < k; r++ {
			for c := 0; c < k; c++ {
				ata[r][c] += powers[r] * powers[c]
			}
			atv[r] += powers[r] * v[j]
		}
	}

	return solveLinearSystem(ata, atv)
}

// solveLinearSystem solves the square system a*x = b in place using Gaussian
// elimination with partial pivoting. ok is false for singular systems.
func solveLinearSystem(a [][]float64, b []float64) (x []float64, ok bool) {
	n := len(b)
	const pivotEpsilon = 1e-12

	for col := 0; col < n; col++ {
		// Partial pivot: swap in the row with the largest magnitude in this
		// column at or below the diagonal.
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < pivotEpsilon {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	x = make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, true
}
