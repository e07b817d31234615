package trajectory

import "github.com/victorzhrn/swingmaster/internal/pose"

// missingSamples returns how many samples a gap between consecutive points
// would hold at the nominal interval: 0 for an ordinary step.
func missingSamples(dt, interval float64) int {
	n := int(dt/interval + 0.5)
	if n < 1 {
		return 0
	}
	return n - 1
}

// gapConfidence is the confidence assigned to synthesized points: the weaker
// bounding confidence, discounted.
func gapConfidence(a, b Point) float64 {
	c := a.Confidence
	if b.Confidence < c {
		c = b.Confidence
	}
	return c * interpolatedConfidenceFactor
}

// fillGapsLinear bridges gaps of at most maxGapFrames missing samples with
// evenly spaced linear interpolation. Larger gaps are left as true holes.
// With no qualifying gaps the input is returned unchanged.
func fillGapsLinear(points []Point, interval float64, maxGapFrames int) []Point {
	if !hasFillableGap(points, interval, maxGapFrames) {
		return points
	}

	out := make([]Point, 0, len(points))
	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		out = append(out, p1)

		g := missingSamples(p2.Timestamp-p1.Timestamp, interval)
		if g == 0 || g > maxGapFrames {
			continue
		}
		conf := gapConfidence(p1, p2)
		for k := 1; k <= g; k++ {
			u := float64(k) / float64(g+1)
			out = append(out, Point{
				Position: pose.Point{
					X: p1.Position.X + (p2.Position.X-p1.Position.X)*u,
					Y: p1.Position.Y + (p2.Position.Y-p1.Position.Y)*u,
				},
				Timestamp:    p1.Timestamp + (p2.Timestamp-p1.Timestamp)*u,
				Confidence:   conf,
				Interpolated: true,
			})
		}
	}
	return append(out, points[len(points)-1])
}

// fillGapsCubic bridges qualifying gaps with a Catmull-Rom style cubic
// Hermite blend, producing curved in-fill appropriate for arcing racket and
// ball motion. Tangents fall back to one-sided differences at the sequence
// boundaries, which can kink the curve right at the edges; accepted behavior.
func fillGapsCubic(points []Point, interval float64, maxGapFrames int) []Point {
	if !hasFillableGap(points, interval, maxGapFrames) {
		return points
	}

	out := make([]Point, 0, len(points))
	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		out = append(out, p1)

		g := missingSamples(p2.Timestamp-p1.Timestamp, interval)
		if g == 0 || g > maxGapFrames {
			continue
		}

		// Tangent at the near end: Catmull-Rom over the point two samples
		// back from the far bound when available, else forward difference.
		var m1 pose.Point
		if i >= 1 {
			p0 := points[i-1]
			m1 = pose.Point{
				X: (p2.Position.X - p0.Position.X) / 2,
				Y: (p2.Position.Y - p0.Position.Y) / 2,
			}
		} else {
			m1 = p2.Position.Sub(p1.Position)
		}

		// Tangent at the far end: the point one sample ahead when available,
		// else backward difference.
		var m2 pose.Point
		if i+2 < len(points) {
			p3 := points[i+2]
			m2 = pose.Point{
				X: (p3.Position.X - p1.Position.X) / 2,
				Y: (p3.Position.Y - p1.Position.Y) / 2,
			}
		} else {
			m2 = p2.Position.Sub(p1.Position)
		}

		conf := gapConfidence(p1, p2)
		for k := 1; k <= g; k++ {
			u := float64(k) / float64(g+1)
			u2 := u * u
			u3 := u2 * u

			// Standard Hermite basis.
			h00 := 2*u3 - 3*u2 + 1
			h10 := u3 - 2*u2 + u
			h01 := -2*u3 + 3*u2
			h11 := u3 - u2

			out = append(out, Point{
				Position: pose.Point{
					X: h00*p1.Position.X + h10*m1.X + h01*p2.Position.X + h11*m2.X,
					Y: h00*p1.Position.Y + h10*m1.Y + h01*p2.Position.Y + h11*m2.Y,
				},
				Timestamp:    p1.Timestamp + (p2.Timestamp-p1.Timestamp)*u,
				Confidence:   conf,
				Interpolated: true,
			})
		}
	}
	return append(out, points[len(points)-1])
}

// hasFillableGap reports whether any gap would actually receive points, so
// the fillers can return their input untouched in the common no-gap case.
func hasFillableGap(points []Point, interval float64, maxGapFrames int) bool {
	for i := 1; i < len(points); i++ {
		g := missingSamples(points[i].Timestamp-points[i-1].Timestamp, interval)
		if g > 0 && g <= maxGapFrames {
			return true
		}
	}
	return false
}
