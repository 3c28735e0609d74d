package classify

import (
	"sync"

	"github.com/ayusman/mudra/internal/detector"
)

// Strategy names a finger-state extraction heuristic.
type Strategy string

const (
	// StrategyAngle selects joint-angle extraction (the default).
	StrategyAngle Strategy = "angle"
	// StrategyPosition selects relative-position extraction.
	StrategyPosition Strategy = "position"
)

// Config holds configuration options for a Classifier.
type Config struct {
	// Strategy selects the finger-state extraction heuristic.
	Strategy Strategy

	// SmoothingWindow is the majority-vote window size in frames.
	// Values below 1 use DefaultSmoothingWindow.
	SmoothingWindow int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Strategy:        StrategyAngle,
		SmoothingWindow: DefaultSmoothingWindow,
	}
}

// Classifier turns per-frame hand landmarks into a stable displayed gesture.
// One Classifier owns one smoothing session; calls are serialized internally
// so a host that overlaps frame processing cannot corrupt the history.
type Classifier struct {
	extractor FingerExtractor
	smoother  *Smoother
	userRules []Rule
	mu        sync.Mutex
}

// New creates a Classifier with the given configuration.
func New(config Config) *Classifier {
	var extractor FingerExtractor
	switch config.Strategy {
	case StrategyPosition:
		extractor = NewPositionExtractor()
	default:
		extractor = NewAngleExtractor()
	}

	return &Classifier{
		extractor: extractor,
		smoother:  NewSmoother(config.SmoothingWindow),
	}
}

// SetUserRules replaces the user-defined rules evaluated after the built-in
// decision table. Rules with malformed patterns are dropped.
func (c *Classifier) SetUserRules(rules []Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.userRules = c.userRules[:0]
	for _, r := range rules {
		if ValidatePattern(r.Pattern) == nil && r.Label != "" {
			c.userRules = append(c.userRules, r)
		}
	}
}

// ClassifyFrame processes one frame's detections and returns the displayed
// gesture. It is total: every input, including malformed hands and
// not-yet-ready frames, yields a label from the closed vocabulary.
//
// A frame with zero hands clears the smoothing history and returns
// LabelNoHand immediately. Frames with more than two hands use the first
// two and ignore the rest.
func (c *Classifier) ClassifyFrame(hands [][]detector.Point3D, width, height int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(hands) == 0 {
		c.smoother.Reset()
		return LabelNoHand
	}

	// Dimensions are unknown until the camera delivers its first frame.
	// Skip the frame without disturbing the accumulated history.
	if width <= 0 || height <= 0 {
		return LabelUnknown
	}

	if len(hands) > 2 {
		hands = hands[:2]
	}

	labels := make([]string, len(hands))
	for i, hand := range hands {
		labels[i] = c.classifyHand(hand, width, height)
	}

	frameLabel := labels[0]
	if len(labels) == 2 {
		frameLabel = ComposeTwoHands(labels[0], labels[1])
	}

	return c.smoother.Observe(frameLabel)
}

// classifyHand labels a single hand. Any hand that cannot be normalized or
// evaluated is Unknown rather than an error.
func (c *Classifier) classifyHand(points []detector.Point3D, width, height int) string {
	normalized, err := NormalizeHand(points, width, height)
	if err != nil {
		return LabelUnknown
	}

	state, ok := c.extractor.Extract(normalized)
	if !ok {
		return LabelUnknown
	}

	return classifyState(state, c.userRules)
}

// Reset clears the smoothing history, starting a fresh detection session.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.smoother.Reset()
}
