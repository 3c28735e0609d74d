package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Preset geometry below describes an upright right hand in a 640x480 pixel
// frame, wrist near the bottom. Extended fingers are drawn as straight
// vertical chains so their joint angles read close to 180 degrees; curled
// fingers fold the tip back toward the palm. The same shapes satisfy the
// position heuristic (tip above PIP above knuckle).
const (
	// MockFrameWidth and MockFrameHeight are the frame dimensions the
	// preset landmark coordinates are expressed in.
	MockFrameWidth  = 640
	MockFrameHeight = 480
)

// knuckle x positions across the palm, index to pinky.
var fingerBaseX = [4]float64{360, 320, 280, 240}

// SynthHand builds hand landmarks with each finger either extended or
// curled. The thumb angles out to the side; the other four fingers point
// straight up when extended.
func SynthHand(thumb, index, middle, ring, pinky bool) HandLandmarks {
	points := make([]Point3D, NumLandmarks)

	points[Wrist] = Point3D{X: 320, Y: 440}
	points[ThumbCMC] = Point3D{X: 350, Y: 420}
	points[ThumbMCP] = Point3D{X: 380, Y: 390}

	if thumb {
		points[ThumbIP] = Point3D{X: 410, Y: 360}
		points[ThumbTip] = Point3D{X: 440, Y: 330}
	} else {
		points[ThumbIP] = Point3D{X: 390, Y: 370}
		points[ThumbTip] = Point3D{X: 370, Y: 365}
	}

	extended := [4]bool{index, middle, ring, pinky}
	for i, ext := range extended {
		base := IndexMCP + 4*i
		x := fingerBaseX[i]

		points[base] = Point3D{X: x, Y: 320}
		if ext {
			points[base+1] = Point3D{X: x, Y: 260}
			points[base+2] = Point3D{X: x, Y: 210}
			points[base+3] = Point3D{X: x, Y: 160}
		} else {
			points[base+1] = Point3D{X: x, Y: 290}
			points[base+2] = Point3D{X: x - 5, Y: 310}
			points[base+3] = Point3D{X: x - 8, Y: 330}
		}
	}

	return HandLandmarks{
		Points:     points,
		Handedness: "Right",
		Score:      0.95,
	}
}

// OpenHandLandmarks returns a preset hand with all five fingers extended.
func OpenHandLandmarks() HandLandmarks {
	return SynthHand(true, true, true, true, true)
}

// FistLandmarks returns a preset hand with all five fingers curled.
func FistLandmarks() HandLandmarks {
	return SynthHand(false, false, false, false, false)
}

// ThumbsUpLandmarks returns a preset hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return SynthHand(true, false, false, false, false)
}

// PointingLandmarks returns a preset hand with only the index extended.
func PointingLandmarks() HandLandmarks {
	return SynthHand(false, true, false, false, false)
}

// PeaceLandmarks returns a preset hand with index and middle extended.
func PeaceLandmarks() HandLandmarks {
	return SynthHand(false, true, true, false, false)
}

// MalformedLandmarks returns a hand with fewer than NumLandmarks points,
// as a pose model can emit when a hand is partially occluded.
func MalformedLandmarks(n int) HandLandmarks {
	h := SynthHand(false, false, false, false, false)
	if n < 0 {
		n = 0
	}
	if n > NumLandmarks {
		n = NumLandmarks
	}
	h.Points = h.Points[:n]
	return h
}
