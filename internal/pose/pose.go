// Package pose defines the frame-level data model shared by the analysis
// pipeline: timestamped body-joint snapshots from the pose estimator and
// racket/ball detections from the object detector.
//
// Joints are a closed enumeration keyed directly into a sparse map. The
// string-keyed wire form used by exported tracker files is handled only in
// codec.go; nothing else in the repository sees joint names as strings.
package pose

// Joint identifies one body landmark in a snapshot.
type Joint uint8

const (
	Nose Joint = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle

	// Derived landmarks, computed from detected pairs rather than estimated
	// directly: Neck is the shoulder midpoint, Root the hip midpoint.
	Neck
	Root

	jointCount
)

// JointCount is the number of joints in the enumeration, derived included.
const JointCount = int(jointCount)

// Point is a 2D position in normalized image coordinates [0,1]x[0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q as a vector.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// JointSample is one joint's estimated position and confidence.
type JointSample struct {
	Position   Point
	Confidence float64 // [0, 1]
}

// Snapshot is one timestamped reading of joint estimates for a video frame.
// Missing joints are simply absent from the map. Snapshots are immutable once
// produced; the pipeline never mutates them after extraction.
type Snapshot struct {
	// Timestamp is seconds from the start of the run, non-decreasing within
	// one snapshot stream.
	Timestamp float64

	// Joints is a sparse enum-keyed map of tracked landmarks.
	Joints map[Joint]JointSample
}

// Joint returns the sample for j and whether it is tracked in this frame.
func (s Snapshot) Joint(j Joint) (JointSample, bool) {
	js, ok := s.Joints[j]
	return js, ok
}

// Has reports whether every joint in js is tracked in this frame.
func (s Snapshot) Has(js ...Joint) bool {
	for _, j := range js {
		if _, ok := s.Joints[j]; !ok {
			return false
		}
	}
	return true
}

// DeriveMidpoints fills in Neck (shoulder midpoint) and Root (hip midpoint)
// when both members of the pair are tracked. Confidence is the pair minimum.
// Already-present derived joints are left alone.
func (s *Snapshot) DeriveMidpoints() {
	derive := func(target, a, b Joint) {
		if _, ok := s.Joints[target]; ok {
			return
		}
		ja, okA := s.Joints[a]
		jb, okB := s.Joints[b]
		if !okA || !okB {
			return
		}
		conf := ja.Confidence
		if jb.Confidence < conf {
			conf = jb.Confidence
		}
		s.Joints[target] = JointSample{
			Position: Point{
				X: (ja.Position.X + jb.Position.X) / 2,
				Y: (ja.Position.Y + jb.Position.Y) / 2,
			},
			Confidence: conf,
		}
	}
	derive(Neck, LeftShoulder, RightShoulder)
	derive(Root, LeftHip, RightHip)
}

// Box is an axis-aligned bounding box in normalized coordinates.
type Box struct {
	X      float64 `json:"x"` // top-left
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the box midpoint.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Detection is one detected object instance.
type Detection struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

// ObjectSnapshot is one timestamped reading from the object detector.
// Either detection may be absent when the detector lost the object.
type ObjectSnapshot struct {
	Timestamp float64    `json:"timestamp"`
	Racket    *Detection `json:"racket,omitempty"`
	Ball      *Detection `json:"ball,omitempty"`
}
