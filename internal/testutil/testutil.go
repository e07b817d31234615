// Package testutil provides shared fixtures for the analysis packages:
// synthetic pose sequences with known geometry, so tests can assert on
// derived signals without recorded data.
package testutil

import "github.com/victorzhrn/swingmaster/internal/pose"

// DefaultConfidence is the joint confidence assigned by the builders.
const DefaultConfidence = 0.9

// FullBodySnapshot returns a snapshot at time t with every primary joint
// tracked at a neutral standing position. Derived midpoints are filled in.
func FullBodySnapshot(t float64) pose.Snapshot {
	positions := map[pose.Joint]pose.Point{
		pose.Nose:          {X: 0.50, Y: 0.10},
		pose.LeftEye:       {X: 0.48, Y: 0.09},
		pose.RightEye:      {X: 0.52, Y: 0.09},
		pose.LeftEar:       {X: 0.46, Y: 0.10},
		pose.RightEar:      {X: 0.54, Y: 0.10},
		pose.LeftShoulder:  {X: 0.42, Y: 0.22},
		pose.RightShoulder: {X: 0.58, Y: 0.22},
		pose.LeftElbow:     {X: 0.38, Y: 0.34},
		pose.RightElbow:    {X: 0.62, Y: 0.34},
		pose.LeftWrist:     {X: 0.36, Y: 0.46},
		pose.RightWrist:    {X: 0.64, Y: 0.46},
		pose.LeftHip:       {X: 0.45, Y: 0.50},
		pose.RightHip:      {X: 0.55, Y: 0.50},
		pose.LeftKnee:      {X: 0.44, Y: 0.70},
		pose.RightKnee:     {X: 0.56, Y: 0.70},
		pose.LeftAnkle:     {X: 0.44, Y: 0.90},
		pose.RightAnkle:    {X: 0.56, Y: 0.90},
	}

	snap := pose.Snapshot{
		Timestamp: t,
		Joints:    make(map[pose.Joint]pose.JointSample, len(positions)),
	}
	for j, p := range positions {
		snap.Joints[j] = pose.JointSample{Position: p, Confidence: DefaultConfidence}
	}
	snap.DeriveMidpoints()
	return snap
}

// Sequence builds n full-body snapshots at the given frame rate, optionally
// mutated per frame. mutate may be nil.
func Sequence(n int, hz float64, mutate func(i int, s *pose.Snapshot)) []pose.Snapshot {
	frames := make([]pose.Snapshot, n)
	for i := range frames {
		frames[i] = FullBodySnapshot(float64(i) / hz)
		if mutate != nil {
			mutate(i, &frames[i])
		}
	}
	return frames
}

// SetJoint places joint j at (x, y) with the default confidence.
func SetJoint(s *pose.Snapshot, j pose.Joint, x, y float64) {
	s.Joints[j] = pose.JointSample{Position: pose.Point{X: x, Y: y}, Confidence: DefaultConfidence}
}

// DropJoint removes joint j from the snapshot.
func DropJoint(s *pose.Snapshot, j pose.Joint) {
	delete(s.Joints, j)
}
