// Package kinematics derives per-frame motion signals from pose snapshots:
// angular and linear wrist velocity, joint angles, torso rotations, and wrist
// height. All functions are pure; the engine is stateless given its Config
// and safe for concurrent use.
package kinematics

import (
	"math"

	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/units"
)

// minDeltaSeconds floors the elapsed time used in velocity division so that
// duplicate or near-duplicate timestamps cannot blow up the signal.
const minDeltaSeconds = 0.001

// Config holds the smoothing window sizes for the derived signals.
type Config struct {
	// VelocityWindowSize is the causal moving-average window (samples) for
	// the angular and linear velocity signals.
	VelocityWindowSize int

	// AngleWindowSize is the causal moving-average window (samples) for the
	// joint-angle, rotation, and wrist-height signals.
	AngleWindowSize int
}

// DefaultConfig returns smoothing windows tuned for 30 Hz pose streams.
func DefaultConfig() Config {
	return Config{
		VelocityWindowSize: 5,
		AngleWindowSize:    3,
	}
}

// AngleID identifies one of the fixed joint-angle measurements.
type AngleID uint8

const (
	RightElbowAngle AngleID = iota
	LeftElbowAngle
	RightShoulderAngle
	LeftShoulderAngle
	RightKneeAngle
	LeftKneeAngle
	RightHipAngle
	LeftHipAngle

	angleIDCount
)

// AngleIDCount is the number of joint-angle measurements.
const AngleIDCount = int(angleIDCount)

// angleTriple is a (center, a, b) joint triple: the measured angle is the one
// at center between the center->a and center->b rays.
type angleTriple struct {
	center, a, b pose.Joint
}

var angleTriples = [angleIDCount]angleTriple{
	RightElbowAngle:    {pose.RightElbow, pose.RightShoulder, pose.RightWrist},
	LeftElbowAngle:     {pose.LeftElbow, pose.LeftShoulder, pose.LeftWrist},
	RightShoulderAngle: {pose.RightShoulder, pose.RightElbow, pose.RightHip},
	LeftShoulderAngle:  {pose.LeftShoulder, pose.LeftElbow, pose.LeftHip},
	RightKneeAngle:     {pose.RightKnee, pose.RightHip, pose.RightAnkle},
	LeftKneeAngle:      {pose.LeftKnee, pose.LeftHip, pose.LeftAnkle},
	RightHipAngle:      {pose.RightHip, pose.RightShoulder, pose.RightKnee},
	LeftHipAngle:       {pose.LeftHip, pose.LeftShoulder, pose.LeftKnee},
}

// FrameSeries holds the derived signals, one entry per input snapshot. All
// slices have the same length as the input sequence.
type FrameSeries struct {
	Timestamps       []float64
	AngularVelocity  []float64 // signed, rad/s, dominant shoulder->wrist orientation
	LinearVelocity   []float64 // normalized units per second, dominant wrist
	JointAngles      []map[AngleID]float64 // degrees; absent key = undefined this frame
	ShoulderRotation []float64 // degrees from horizontal; 0 when a shoulder is missing
	HipRotation      []float64 // degrees from horizontal; 0 when a hip is missing
	WristHeight      []float64 // dominant wrist vertical coordinate; 0 when absent
}

// Len returns the number of frames in the series.
func (fs FrameSeries) Len() int { return len(fs.Timestamps) }

// dominantSide returns the wrist/shoulder pair to use for velocity math:
// right wrist when tracked, else left, else right by default.
func dominantSide(s pose.Snapshot) (wrist, shoulder pose.Joint) {
	if _, ok := s.Joint(pose.RightWrist); ok {
		return pose.RightWrist, pose.RightShoulder
	}
	if _, ok := s.Joint(pose.LeftWrist); ok {
		return pose.LeftWrist, pose.LeftShoulder
	}
	return pose.RightWrist, pose.RightShoulder
}

// ComputeSeries derives all per-frame signals for the snapshot sequence.
// Output slices are parallel to the input; missing joints contribute zeros or
// undefined entries, never errors.
func ComputeSeries(frames []pose.Snapshot, cfg Config) FrameSeries {
	n := len(frames)
	fs := FrameSeries{
		Timestamps:       make([]float64, n),
		AngularVelocity:  make([]float64, n),
		LinearVelocity:   make([]float64, n),
		JointAngles:      make([]map[AngleID]float64, n),
		ShoulderRotation: make([]float64, n),
		HipRotation:      make([]float64, n),
		WristHeight:      make([]float64, n),
	}

	// Previous valid sample for finite differencing. A missing-joint gap
	// clears these so the sample after the gap contributes zero velocity
	// rather than a spike across the hole.
	var (
		prevTheta     float64
		prevThetaTime float64
		haveTheta     bool
		prevWrist     pose.Point
		prevWristTime float64
		haveWrist     bool
	)

	for i, frame := range frames {
		fs.Timestamps[i] = frame.Timestamp
		wristJoint, shoulderJoint := dominantSide(frame)

		wrist, wristOK := frame.Joint(wristJoint)
		shoulder, shoulderOK := frame.Joint(shoulderJoint)

		// Angular velocity from the orientation of shoulder->wrist.
		if wristOK && shoulderOK {
			v := wrist.Position.Sub(shoulder.Position)
			theta := math.Atan2(v.Y, v.X)
			if haveTheta {
				dt := frame.Timestamp - prevThetaTime
				if dt < minDeltaSeconds {
					dt = minDeltaSeconds
				}
				fs.AngularVelocity[i] = units.NormalizeAngle(theta-prevTheta) / dt
			}
			prevTheta = theta
			prevThetaTime = frame.Timestamp
			haveTheta = true
		} else {
			haveTheta = false
		}

		// Linear velocity of the dominant wrist.
		if wristOK {
			if haveWrist {
				dt := frame.Timestamp - prevWristTime
				if dt < minDeltaSeconds {
					dt = minDeltaSeconds
				}
				d := wrist.Position.Sub(prevWrist)
				fs.LinearVelocity[i] = math.Hypot(d.X, d.Y) / dt
			}
			prevWrist = wrist.Position
			prevWristTime = frame.Timestamp
			haveWrist = true

			fs.WristHeight[i] = wrist.Position.Y
		} else {
			haveWrist = false
		}

		fs.JointAngles[i] = jointAngles(frame)
		fs.ShoulderRotation[i] = lineRotation(frame, pose.LeftShoulder, pose.RightShoulder)
		fs.HipRotation[i] = lineRotation(frame, pose.LeftHip, pose.RightHip)
	}

	smoothCausal(fs.AngularVelocity, cfg.VelocityWindowSize)
	smoothCausal(fs.LinearVelocity, cfg.VelocityWindowSize)
	smoothCausal(fs.ShoulderRotation, cfg.AngleWindowSize)
	smoothCausal(fs.HipRotation, cfg.AngleWindowSize)
	smoothCausal(fs.WristHeight, cfg.AngleWindowSize)
	smoothJointAngles(fs.JointAngles, cfg.AngleWindowSize)

	return fs
}

// jointAngles measures every fixed triple present in the frame, in degrees.
// A triple with any missing joint is skipped.
func jointAngles(frame pose.Snapshot) map[AngleID]float64 {
	angles := make(map[AngleID]float64, AngleIDCount)
	for id, t := range angleTriples {
		center, okC := frame.Joint(t.center)
		a, okA := frame.Joint(t.a)
		b, okB := frame.Joint(t.b)
		if !okC || !okA || !okB {
			continue
		}
		va := a.Position.Sub(center.Position)
		vb := b.Position.Sub(center.Position)
		magA := math.Hypot(va.X, va.Y)
		magB := math.Hypot(vb.X, vb.Y)
		if magA == 0 || magB == 0 {
			continue
		}
		cos := (va.X*vb.X + va.Y*vb.Y) / (magA * magB)
		cos = math.Max(-1, math.Min(1, cos))
		angles[AngleID(id)] = units.ToDegrees(math.Acos(cos))
	}
	return angles
}

// lineRotation returns the angle of the a->b line relative to horizontal in
// degrees, or 0 when either joint is absent.
func lineRotation(frame pose.Snapshot, a, b pose.Joint) float64 {
	ja, okA := frame.Joint(a)
	jb, okB := frame.Joint(b)
	if !okA || !okB {
		return 0
	}
	d := jb.Position.Sub(ja.Position)
	return units.ToDegrees(math.Atan2(d.Y, d.X))
}

// smoothCausal applies an in-place causal moving average with a shrinking
// window near the stream start. No lookahead: sample i averages samples
// [i-window+1, i] clamped to the start.
func smoothCausal(values []float64, window int) {
	if window <= 1 || len(values) == 0 {
		return
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		count := i + 1
		if count > window {
			count = window
		}
		out[i] = sum / float64(count)
	}
	copy(values, out)
}

// smoothJointAngles applies the causal moving average per angle ID, averaging
// only the frames where the angle was defined. Undefined frames stay
// undefined.
func smoothJointAngles(frames []map[AngleID]float64, window int) {
	if window <= 1 || len(frames) == 0 {
		return
	}
	smoothed := make([]map[AngleID]float64, len(frames))
	for i := range frames {
		smoothed[i] = make(map[AngleID]float64, len(frames[i]))
		for id, v := range frames[i] {
			sum, count := v, 1
			for j := i - 1; j >= 0 && j > i-window; j-- {
				if prev, ok := frames[j][id]; ok {
					sum += prev
					count++
				}
			}
			smoothed[i][id] = sum / float64(count)
		}
	}
	copy(frames, smoothed)
}
