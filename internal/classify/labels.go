// Package classify maps detected hand landmarks to discrete gesture labels.
// It derives a per-finger extended/flexed state from landmark geometry, runs
// an ordered rule table over that state, composes two simultaneous hands into
// a single label, and smooths the per-frame result over a short history so
// the displayed gesture does not flicker.
package classify

// Gesture labels form a closed vocabulary. Every frame classifies to exactly
// one of these values; the classifier never fails.
const (
	// Single-hand labels.
	LabelOpenHand = "Open Hand"
	LabelThumbsUp = "Thumbs Up (Yes)"
	LabelNo       = "No (Index Finger Shaking)"
	LabelFist     = "Fist (Sorry)"
	LabelPeace    = "Peace Sign (Play)"

	// LabelUnknown is the terminal label for any hand that matches no rule,
	// including malformed hands. It is a valid result, not an error.
	LabelUnknown = "Unknown"

	// LabelNoHand is emitted for frames with zero detected hands. It also
	// resets the smoothing history.
	LabelNoHand = "No hand detected"

	// Two-hand composite labels.
	LabelAllDone        = "All Done"
	LabelMore           = "More"
	LabelHelp           = "Help"
	LabelUnknownTwoHand = "Unknown Two-Hand Gesture"
)
