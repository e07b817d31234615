package pose

import (
	"encoding/json"
	"fmt"
)

// jointNames is the wire vocabulary used by exported tracker files. The
// string keys exist only at this boundary; everything downstream works with
// the Joint enumeration.
var jointNames = map[Joint]string{
	Nose:          "nose",
	LeftEye:       "left_eye",
	RightEye:      "right_eye",
	LeftEar:       "left_ear",
	RightEar:      "right_ear",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftElbow:     "left_elbow",
	RightElbow:    "right_elbow",
	LeftWrist:     "left_wrist",
	RightWrist:    "right_wrist",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
	LeftKnee:      "left_knee",
	RightKnee:     "right_knee",
	LeftAnkle:     "left_ankle",
	RightAnkle:    "right_ankle",
	Neck:          "neck",
	Root:          "root",
}

var jointsByName = func() map[string]Joint {
	m := make(map[string]Joint, len(jointNames))
	for j, name := range jointNames {
		m[name] = j
	}
	return m
}()

// String returns the wire name for j.
func (j Joint) String() string {
	if name, ok := jointNames[j]; ok {
		return name
	}
	return fmt.Sprintf("joint(%d)", uint8(j))
}

// ParseJoint maps a wire name back to the enumeration.
func ParseJoint(name string) (Joint, bool) {
	j, ok := jointsByName[name]
	return j, ok
}

// wireJoint is the per-joint wire record.
type wireJoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// wireSnapshot is the string-keyed wire form of a Snapshot.
type wireSnapshot struct {
	Timestamp float64              `json:"timestamp"`
	Joints    map[string]wireJoint `json:"joints"`
}

// MarshalJSON encodes the snapshot with string joint keys.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	w := wireSnapshot{
		Timestamp: s.Timestamp,
		Joints:    make(map[string]wireJoint, len(s.Joints)),
	}
	for j, js := range s.Joints {
		w.Joints[j.String()] = wireJoint{
			X:          js.Position.X,
			Y:          js.Position.Y,
			Confidence: js.Confidence,
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the string-keyed wire form. Unknown joint names are
// skipped rather than rejected so newer tracker exports stay readable.
// Derived midpoints are recomputed after decoding.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode pose snapshot: %w", err)
	}
	s.Timestamp = w.Timestamp
	s.Joints = make(map[Joint]JointSample, len(w.Joints))
	for name, wj := range w.Joints {
		j, ok := ParseJoint(name)
		if !ok {
			continue
		}
		s.Joints[j] = JointSample{
			Position:   Point{X: wj.X, Y: wj.Y},
			Confidence: wj.Confidence,
		}
	}
	s.DeriveMidpoints()
	return nil
}
