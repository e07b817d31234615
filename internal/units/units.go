// Package units provides shared angle conversions and normalization used by
// the kinematics and trajectory math.
package units

import "math"

// DegreesPerRadian converts radians to degrees when multiplied.
const DegreesPerRadian = 180.0 / math.Pi

// ToDegrees converts an angle in radians to degrees.
func ToDegrees(rad float64) float64 { return rad * DegreesPerRadian }

// ToRadians converts an angle in degrees to radians.
func ToRadians(deg float64) float64 { return deg / DegreesPerRadian }

// NormalizeAngle wraps an angle difference onto the shortest rotational path,
// into (-pi, pi]. Used when finite-differencing orientations so a crossing of
// the +/-pi seam does not read as a near-full rotation.
func NormalizeAngle(rad float64) float64 {
	for rad > math.Pi {
		rad -= 2 * math.Pi
	}
	for rad <= -math.Pi {
		rad += 2 * math.Pi
	}
	return rad
}
