package classify

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/mudra/internal/detector"
)

// FingerState records which of the five fingers are extended. It is derived
// fresh for each hand in each frame and never retained.
type FingerState struct {
	Thumb  bool
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
}

// FingerExtractor derives a FingerState from a hand's normalized landmarks.
// ok is false when the hand cannot be evaluated (fewer than 21 points);
// such hands classify as Unknown upstream.
type FingerExtractor interface {
	Extract(points []detector.Point3D) (state FingerState, ok bool)
}

// Joint-angle thresholds in degrees. A finger counts as extended when the
// angle at its middle joint exceeds the threshold. The thumb bends around a
// different axis than the other fingers and gets a much looser threshold.
const (
	FingerAngleThreshold = 160.0
	ThumbAngleThreshold  = 100.0
)

// fingerTriplet names the three landmarks whose joint angle decides whether
// a finger is extended: the base, the joint the angle is measured at, and
// the tip.
type fingerTriplet struct {
	base, joint, tip int
}

var angleTriplets = [5]fingerTriplet{
	{detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	{detector.IndexMCP, detector.IndexPIP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddlePIP, detector.MiddleTip},
	{detector.RingMCP, detector.RingPIP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyPIP, detector.PinkyTip},
}

// AngleExtractor decides finger states from the angle at each finger's middle
// joint. This is the default strategy: it is independent of hand orientation
// and camera resolution once the landmarks are normalized.
type AngleExtractor struct{}

// NewAngleExtractor creates an AngleExtractor.
func NewAngleExtractor() *AngleExtractor {
	return &AngleExtractor{}
}

// Extract computes the joint angle for each finger and compares it against
// the per-finger threshold.
func (e *AngleExtractor) Extract(points []detector.Point3D) (FingerState, bool) {
	if len(points) < detector.NumLandmarks {
		return FingerState{}, false
	}

	var state FingerState
	for i, tr := range angleTriplets {
		angle := jointAngle(points[tr.base], points[tr.joint], points[tr.tip])

		threshold := FingerAngleThreshold
		if i == 0 {
			threshold = ThumbAngleThreshold
		}

		extended := angle > threshold
		switch i {
		case 0:
			state.Thumb = extended
		case 1:
			state.Index = extended
		case 2:
			state.Middle = extended
		case 3:
			state.Ring = extended
		case 4:
			state.Pinky = extended
		}
	}

	return state, true
}

// jointAngle returns the angle in degrees at joint b formed by the segments
// b->a and b->c, in the range [0, 180]. Coincident landmarks produce a
// zero-length segment; the angle is undefined there and reported as 0 so the
// finger reads as flexed instead of failing.
func jointAngle(a, b, c detector.Point3D) float64 {
	u := []float64{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
	v := []float64{c.X - b.X, c.Y - b.Y, c.Z - b.Z}

	nu := floats.Norm(u, 2)
	nv := floats.Norm(v, 2)
	if nu == 0 || nv == 0 {
		return 0
	}

	cos := floats.Dot(u, v) / (nu * nv)

	// Clamp against floating point drift before arccos.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}

	return math.Acos(cos) * 180 / math.Pi
}

// PositionExtractor decides finger states from relative landmark positions:
// a finger is extended when its tip sits above its PIP joint, which in turn
// sits above the knuckle, in image coordinates. The thumb is extended when
// its tip lies to the right of its knuckle. This is simpler than the angle
// strategy but assumes an upright right hand facing the camera, so it
// misreads rotated or left hands.
type PositionExtractor struct{}

// NewPositionExtractor creates a PositionExtractor.
func NewPositionExtractor() *PositionExtractor {
	return &PositionExtractor{}
}

// Extract compares tip, PIP, and MCP coordinates per finger.
func (e *PositionExtractor) Extract(points []detector.Point3D) (FingerState, bool) {
	if len(points) < detector.NumLandmarks {
		return FingerState{}, false
	}

	up := func(tip, pip, mcp int) bool {
		return points[tip].Y < points[pip].Y && points[pip].Y < points[mcp].Y
	}

	return FingerState{
		Thumb:  points[detector.ThumbTip].X > points[detector.ThumbMCP].X,
		Index:  up(detector.IndexTip, detector.IndexPIP, detector.IndexMCP),
		Middle: up(detector.MiddleTip, detector.MiddlePIP, detector.MiddleMCP),
		Ring:   up(detector.RingTip, detector.RingPIP, detector.RingMCP),
		Pinky:  up(detector.PinkyTip, detector.PinkyPIP, detector.PinkyMCP),
	}, true
}
