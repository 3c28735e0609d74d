package classify

import (
	"errors"

	"github.com/ayusman/mudra/internal/detector"
)

// ErrFrameNotReady is returned when a frame reports non-positive dimensions,
// typically before the camera has delivered its first full frame.
var ErrFrameNotReady = errors.New("frame dimensions not ready")

// NormalizeHand converts pixel-space landmarks into a resolution-independent
// frame: x and y are divided by the frame width and height, z is a relative
// depth estimate and passes through unchanged. The input is not modified.
func NormalizeHand(points []detector.Point3D, width, height int) ([]detector.Point3D, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrFrameNotReady
	}

	w := float64(width)
	h := float64(height)

	normalized := make([]detector.Point3D, len(points))
	for i, p := range points {
		normalized[i] = detector.Point3D{
			X: p.X / w,
			Y: p.Y / h,
			Z: p.Z,
		}
	}

	return normalized, nil
}
